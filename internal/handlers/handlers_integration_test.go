package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app         *fiber.App
	authService *services.AuthService
	products    repositories.ProductRepository
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}, &models.Setting{}, &models.User{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	log := zap.NewNop()
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	carts := repositories.NewMemoryCartStore()

	settingService := services.NewSettingService(repositories.NewGORMSettingRepository(db), log)
	productService := services.NewProductService(productRepo, settingService, log)
	searchService := services.NewSearchService(productRepo, settingService, log)
	cartService := services.NewCartService(carts, productRepo, settingService, log)
	orderService := services.NewOrderService(orderRepo, productRepo, carts, settingService, nil, 0.15, log)
	paymentService := services.NewPaymentService(orderRepo, nil, 5*time.Second, log)
	authService := services.NewAuthService(userRepo, "test_jwt_secret", log)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	settingHandler := handlers.NewSettingHandler(settingService, log)
	orderHandler := handlers.NewOrderHandler(orderService, time.Hour, log)

	handlers.NewCatalogHandler(searchService, productService, log).RegisterRoutes(apiV1)
	settingHandler.RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService, time.Hour, log).RegisterRoutes(apiV1)
	handlers.NewAuthHandler(authService, log).RegisterRoutes(apiV1)

	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	handlers.NewProductHandler(productService, log).RegisterAdminRoutes(admin)
	settingHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	orderHandler.RegisterRoutes(protected)
	handlers.NewPaymentHandler(paymentService, log).RegisterRoutes(protected)

	seedProductsForTest(t, productRepo)
	return &testEnv{app: app, authService: authService, products: productRepo}
}

// seedProductsForTest populates the product repository for tests.
func seedProductsForTest(t *testing.T, repo repositories.ProductRepository) {
	products := []models.Product{
		{ID: "prod-1", Slug: "trail-runner", Name: "Trail Runner", Category: "Shoes", Tags: models.Tags{"featured"},
			Colors: []string{"Red"}, Sizes: []string{"42"}, Price: 599, ListPrice: 899, CountInStock: 5, AvgRating: 4.5, NumSales: 10, IsPublished: true},
		{ID: "prod-2", Slug: "city-sneaker", Name: "City Sneaker", Category: "Shoes",
			Price: 150, ListPrice: 150, CountInStock: 10, AvgRating: 3.5, NumSales: 30, IsPublished: true},
		{ID: "prod-3", Slug: "denim-jacket", Name: "Denim Jacket", Category: "Jackets", Tags: models.Tags{"featured"},
			Price: 1200, ListPrice: 1200, CountInStock: 2, AvgRating: 4, NumSales: 5, IsPublished: true},
		{ID: "prod-4", Slug: "draft-boot", Name: "Draft Boot", Category: "Shoes",
			Price: 300, ListPrice: 300, CountInStock: 3, IsPublished: false},
	}
	for i := range products {
		require.NoError(t, repo.Create(context.Background(), &products[i]))
	}
}

type request struct {
	method  string
	path    string
	body    interface{}
	token   string
	session string
}

func (e *testEnv) do(t *testing.T, r request) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if r.body != nil {
		jsonBody, err := json.Marshal(r.body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(r.method, r.path, reader)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.session != "" {
		req.Header.Set(middleware.CartSessionHeader, r.session)
	}

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func (e *testEnv) register(t *testing.T, username string) string {
	t.Helper()
	resp, _ := e.do(t, request{method: http.MethodPost, path: "/api/v1/auth/register", body: map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := e.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login", body: map[string]string{
		"username": username,
		"password": "password123",
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["token"].(string)
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	_, err := e.authService.EnsureAdmin(ctx, &models.User{Username: "admin", Email: "admin@example.com", Password: "password123"})
	require.NoError(t, err)
	token, err := e.authService.LoginUser(ctx, "admin", "password123")
	require.NoError(t, err)
	return token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)

	user := map[string]string{"username": "testuser", "email": "test@example.com", "password": "password123"}
	resp, body := env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/register", body: user})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered successfully", body["message"])
	registered := body["user"].(map[string]interface{})
	assert.Equal(t, models.RoleUser, registered["role"])
	assert.NotContains(t, registered, "password")

	// Duplicate registration (username)
	resp, _ = env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/register", body: user})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/register", body: map[string]string{"username": "x"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["message"])

	resp, _ = env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login", body: map[string]string{"username": "testuser", "password": "wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = env.do(t, request{method: http.MethodPost, path: "/api/v1/auth/login", body: map[string]string{"username": "testuser", "password": "password123"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	claims, err := env.authService.ValidateToken(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])
}

func TestSearchEndpoints(t *testing.T) {
	env := setupApp(t)

	resp, body := env.do(t, request{method: http.MethodGet, path: "/api/v1/search?category=Shoes&sort=price-low-to-high"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["totalProducts"])
	products := body["products"].([]interface{})
	require.Len(t, products, 2)
	assert.Equal(t, "prod-2", products[0].(map[string]interface{})["id"])
	assert.Equal(t, false, body["isCleared"])

	resp, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/search?q=JACKET&price=1000-5000&rating=4"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["totalProducts"])

	resp, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/search?tag=featured&page=9"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["totalProducts"])
	assert.Empty(t, body["products"])
	assert.Equal(t, float64(0), body["from"])

	resp, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/search?page=1024819115206086202"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["products"])
	assert.Equal(t, float64(0), body["from"])
	assert.Equal(t, float64(0), body["to"])

	resp, _ = env.do(t, request{method: http.MethodGet, path: "/api/v1/search?sort=cheapest"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/search/filter-url?category=Shoes&page=3&set_tag=featured"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/search?q=all&category=Shoes&tag=featured&price=all&rating=all&sort=best-selling", body["url"])

	resp, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/search/filter-url?category=Shoes&set_page=2"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/search?q=all&category=Shoes&tag=all&price=all&rating=all&sort=best-selling&page=2", body["url"])
}

func TestCatalogEndpoints(t *testing.T) {
	env := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	var categories []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	resp.Body.Close()
	assert.Equal(t, []string{"Jackets", "Shoes"}, categories)

	resp, body := env.do(t, request{method: http.MethodGet, path: "/api/v1/products/trail-runner"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(33), body["discount"])
	assert.Equal(t, "₹599.00", body["formattedPrice"])

	resp, _ = env.do(t, request{method: http.MethodGet, path: "/api/v1/products/draft-boot"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/settings"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "INR", body["defaultCurrency"])
}

func TestCartEndpoints(t *testing.T) {
	env := setupApp(t)

	resp, body := env.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", body: map[string]interface{}{
		"productId": "prod-1",
		"quantity":  9,
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := resp.Header.Get(middleware.CartSessionHeader)
	require.NotEmpty(t, session)
	assert.Equal(t, float64(5), body["quantity"], "clamped to stock")
	clientID := body["clientId"].(string)

	resp, body = env.do(t, request{method: http.MethodPatch, path: "/api/v1/cart/items/" + clientID, session: session, body: map[string]int{"quantity": 2}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart := body["cart"].(map[string]interface{})
	assert.Equal(t, float64(1198), cart["itemsPrice"])
	assert.Equal(t, true, cart["freeShipping"])

	resp, _ = env.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", session: session, body: map[string]interface{}{
		"productId": "prod-1",
		"color":     "Purple",
		"quantity":  1,
	}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", session: session, body: map[string]interface{}{
		"productId": "prod-1",
	}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/cart", session: session})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["count"])

	resp, _ = env.do(t, request{method: http.MethodDelete, path: "/api/v1/cart/items/unknown", session: session})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, request{method: http.MethodDelete, path: "/api/v1/cart/items/" + clientID, session: session})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["itemsPrice"])

	resp, _ = env.do(t, request{method: http.MethodDelete, path: "/api/v1/cart", session: session})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCheckoutAndPayment(t *testing.T) {
	env := setupApp(t)
	token := env.register(t, "shopper")

	resp, _ := env.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", body: map[string]interface{}{"productId": "prod-1", "quantity": 1}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := resp.Header.Get(middleware.CartSessionHeader)

	address := map[string]string{
		"fullName": "Asha Menon", "street": "1 MG Road", "city": "Kochi", "province": "Kerala",
		"postalCode": "682001", "country": "India", "phone": "9999999999",
	}

	resp, _ = env.do(t, request{method: http.MethodPost, path: "/api/v1/orders", session: session, body: map[string]interface{}{"shippingAddress": address}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.do(t, request{method: http.MethodPost, path: "/api/v1/orders", token: token, session: session, body: map[string]interface{}{
		"shippingAddress": map[string]string{"fullName": "Asha"},
	}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["message"])

	resp, body = env.do(t, request{method: http.MethodPost, path: "/api/v1/orders", token: token, session: session, body: map[string]interface{}{
		"shippingAddress": address,
		"paymentMethod":   models.PaymentMethodUPI,
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := body["id"].(string)
	assert.Equal(t, 12.9, body["shippingPrice"])
	assert.Equal(t, 89.85, body["taxPrice"])
	assert.Equal(t, 701.75, body["totalPrice"])

	resp, _ = env.do(t, request{method: http.MethodPost, path: "/api/v1/orders", token: token, session: session, body: map[string]interface{}{"shippingAddress": address}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "the cart was emptied by checkout")

	resp, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/orders", token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	other := env.register(t, "stranger")
	resp, _ = env.do(t, request{method: http.MethodGet, path: "/api/v1/orders/" + orderID, token: other})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	verify := func(amount int64) (*http.Response, map[string]interface{}) {
		return env.do(t, request{method: http.MethodPost, path: "/api/v1/payments/upi/verify", token: token, body: map[string]interface{}{
			"orderId":       orderID,
			"transactionId": "UPI-123456",
			"email":         "shopper@example.com",
			"amount":        amount,
			"paymentMethod": models.PaymentMethodUPI,
		}})
	}

	resp, body = verify(70000)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Amount mismatch", body["message"])

	resp, body = verify(70175)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	paid := body["order"].(map[string]interface{})
	assert.Equal(t, true, paid["isPaid"])
	assert.Equal(t, "70175", paid["paymentResult"].(map[string]interface{})["pricePaid"])

	resp, body = verify(70175)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestAdminEndpoints(t *testing.T) {
	env := setupApp(t)
	userToken := env.register(t, "shopper")
	adminToken := env.adminToken(t)

	resp, _ := env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/products"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/products", token: userToken})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/products", token: adminToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(4), body["totalProducts"], "unpublished products are listed too")

	resp, body = env.do(t, request{method: http.MethodPost, path: "/api/v1/admin/products", token: adminToken, body: map[string]interface{}{
		"name": "Rain Jacket", "category": "Jackets", "price": 80, "countInStock": 4, "isPublished": true,
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)
	assert.Equal(t, "rain-jacket", body["slug"])
	assert.Equal(t, float64(80), body["listPrice"])

	resp, _ = env.do(t, request{method: http.MethodPost, path: "/api/v1/admin/products", token: adminToken, body: map[string]interface{}{
		"name": "Rain Jacket", "category": "Jackets", "price": 90,
	}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "duplicate slug")

	resp, body = env.do(t, request{method: http.MethodPut, path: "/api/v1/admin/products/" + id, token: adminToken, body: map[string]interface{}{
		"name": "Rain Jacket Pro", "slug": "rain-jacket", "category": "Jackets", "price": 95, "listPrice": 120, "countInStock": 4, "isPublished": true,
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Rain Jacket Pro", body["name"])

	resp, body = env.do(t, request{method: http.MethodDelete, path: "/api/v1/admin/products/" + id, token: adminToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["message"], "deleted successfully")

	resp, _ = env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/products/" + id, token: adminToken})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	setting := models.DefaultSetting()
	setting.DefaultCurrency = "USD"
	resp, _ = env.do(t, request{method: http.MethodPut, path: "/api/v1/admin/settings", token: adminToken, body: setting})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	setting = models.DefaultSetting()
	setting.Common.PageSize = 2
	resp, body = env.do(t, request{method: http.MethodPut, path: "/api/v1/admin/settings", token: adminToken, body: setting})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/search", token: adminToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["pageSize"])
	assert.Equal(t, float64(2), body["totalPages"])
}

func TestAdminOrderLifecycle(t *testing.T) {
	env := setupApp(t)
	userToken := env.register(t, "shopper")
	adminToken := env.adminToken(t)

	resp, _ := env.do(t, request{method: http.MethodPost, path: "/api/v1/cart/items", body: map[string]interface{}{"productId": "prod-2", "quantity": 1}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := resp.Header.Get(middleware.CartSessionHeader)

	resp, body := env.do(t, request{method: http.MethodPost, path: "/api/v1/orders", token: userToken, session: session, body: map[string]interface{}{
		"shippingAddress": map[string]string{
			"fullName": "Asha Menon", "street": "1 MG Road", "city": "Kochi", "province": "Kerala",
			"postalCode": "682001", "country": "India", "phone": "9999999999",
		},
	}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := body["id"].(string)
	assert.Equal(t, models.PaymentMethodCOD, body["paymentMethod"])

	resp, body = env.do(t, request{method: http.MethodGet, path: "/api/v1/admin/orders", token: adminToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	resp, _ = env.do(t, request{method: http.MethodPatch, path: "/api/v1/admin/orders/" + orderID + "/deliver", token: userToken})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.do(t, request{method: http.MethodPatch, path: "/api/v1/admin/orders/" + orderID + "/deliver", token: adminToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["isDelivered"])

	resp, _ = env.do(t, request{method: http.MethodPatch, path: "/api/v1/admin/orders/" + orderID + "/deliver", token: adminToken})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, request{method: http.MethodPatch, path: "/api/v1/admin/orders/" + orderID + "/pay", token: adminToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["isPaid"])

	resp, _ = env.do(t, request{method: http.MethodPatch, path: "/api/v1/admin/orders/missing/pay", token: adminToken})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
