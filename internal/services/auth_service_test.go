package services_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "secret", zap.NewNop())
	ctx := context.Background()

	user := &models.User{Username: "asha", Email: "asha@example.com", Password: "password123", Role: models.RoleAdmin}
	mockRepo.On("GetByUsername", ctx, "asha").Return(nil, apperr.NewNotFoundError("user", "asha")).Once()
	mockRepo.On("GetByEmail", ctx, "asha@example.com").Return(nil, apperr.NewNotFoundError("user", "asha@example.com")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	require.NoError(t, authService.RegisterUser(ctx, user))
	assert.Equal(t, models.RoleUser, user.Role, "self-registration never grants admin")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	mockRepo.On("GetByUsername", ctx, "taken").Return(&models.User{ID: "1"}, nil).Once()
	err := authService.RegisterUser(ctx, &models.User{Username: "taken", Email: "t@example.com", Password: "password123"})
	assert.True(t, apperr.IsValidation(err))
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	authService := services.NewAuthService(repo, "secret", zap.NewNop())
	ctx := context.Background()

	require.NoError(t, authService.RegisterUser(ctx, &models.User{Username: "asha", Email: "asha@example.com", Password: "password123"}))

	_, err := authService.LoginUser(ctx, "asha", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = authService.LoginUser(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	token, err := authService.LoginUser(ctx, "asha", "password123")
	require.NoError(t, err)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "asha", claims["username"])
	assert.Equal(t, models.RoleUser, claims["role"])

	_, err = services.NewAuthService(repo, "other", zap.NewNop()).ValidateToken(token)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = authService.ValidateToken(signed)
	assert.Error(t, err)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	authService := services.NewAuthService(repo, "secret", zap.NewNop())
	ctx := context.Background()

	created, err := authService.EnsureAdmin(ctx, &models.User{Username: "admin", Email: "admin@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = authService.EnsureAdmin(ctx, &models.User{Username: "admin2", Email: "admin2@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.False(t, created)

	n, err := repo.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
