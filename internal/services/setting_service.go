package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const settingsLoadTimeout = 5 * time.Second

// SettingService serves the site settings from a process-wide cache.
type SettingService struct {
	repo     repositories.SettingRepository
	validate *validator.Validate
	log      *zap.Logger

	mu         sync.RWMutex
	cached     *models.Setting
	generation uint64
	group      singleflight.Group
}

// NewSettingService creates a new SettingService.
func NewSettingService(repo repositories.SettingRepository, log *zap.Logger) *SettingService {
	return &SettingService{
		repo:     repo,
		validate: validator.New(),
		log:      log,
	}
}

// Get returns a copy of the current settings. The first call loads them from the repository,
// or falls back to the built-in defaults when none were saved; concurrent cold reads share one
// load, which is detached from the caller's cancellation and bounded by its own timeout.
func (s *SettingService) Get(ctx context.Context) (models.Setting, error) {
	s.mu.RLock()
	if s.cached != nil {
		setting := s.cached.Clone()
		s.mu.RUnlock()
		return setting, nil
	}
	gen := s.generation
	s.mu.RUnlock()

	v, err, _ := s.group.Do("settings", func() (interface{}, error) {
		s.mu.RLock()
		if s.cached != nil {
			setting := *s.cached
			s.mu.RUnlock()
			return setting, nil
		}
		s.mu.RUnlock()

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settingsLoadTimeout)
		defer cancel()
		setting, err := s.repo.Get(loadCtx)
		if apperr.IsNotFound(err) {
			s.log.Info("no stored settings, using defaults")
			d := models.DefaultSetting()
			setting, err = &d, nil
		}
		if err != nil {
			return nil, apperr.External("load settings", err)
		}

		s.mu.Lock()
		if s.generation == gen {
			s.cached = setting
		}
		s.mu.Unlock()
		return *setting, nil
	})
	if err != nil {
		return models.Setting{}, err
	}
	return v.(models.Setting).Clone(), nil
}

// Update validates and stores new settings, then replaces the cached copy.
func (s *SettingService) Update(ctx context.Context, setting models.Setting) (models.Setting, error) {
	if err := s.validate.Struct(setting); err != nil {
		return models.Setting{}, validationError(err)
	}
	if err := checkDefaults(setting); err != nil {
		return models.Setting{}, err
	}

	if current, err := s.repo.Get(ctx); err == nil {
		setting.CreatedAt = current.CreatedAt
	}
	if err := s.repo.Save(ctx, &setting); err != nil {
		return models.Setting{}, apperr.External("save settings", err)
	}

	s.mu.Lock()
	saved := setting.Clone()
	s.cached = &saved
	s.generation++
	s.mu.Unlock()

	s.log.Info("settings updated",
		zap.String("default_currency", setting.DefaultCurrency),
		zap.Int("page_size", setting.Common.PageSize))
	return setting, nil
}

// checkDefaults enforces that every default names an entry of its list.
func checkDefaults(s models.Setting) error {
	found := false
	for _, c := range s.AvailableCurrencies {
		if strings.EqualFold(c.Code, s.DefaultCurrency) {
			found = true
		}
	}
	if !found {
		return apperr.NewValidationError("defaultCurrency", "must be one of the available currencies")
	}
	if !s.HasPaymentMethod(s.DefaultPaymentMethod) {
		return apperr.NewValidationError("defaultPaymentMethod", "must be one of the available payment methods")
	}
	if _, ok := s.DeliveryDateByName(s.DefaultDeliveryDate); !ok {
		return apperr.NewValidationError("defaultDeliveryDate", "must be one of the available delivery dates")
	}
	return nil
}

// Currency resolves the display currency for code.
func (s *SettingService) Currency(ctx context.Context, code string) (models.Currency, error) {
	setting, err := s.Get(ctx)
	if err != nil {
		return models.Currency{}, err
	}
	return pricing.NewCurrencyTable(setting).Lookup(code), nil
}
