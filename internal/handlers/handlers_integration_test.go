package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"kedai/internal/handlers"
	"kedai/internal/middleware"
	"kedai/internal/models"
	"kedai/internal/repositories"
	"kedai/internal/services"
	"kedai/pkg/gateway"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubGateway stands in for the hosted provider so the full redirect flow can
// run in-process.
type stubGateway struct {
	initErr      error
	verifyStatus string
	verifyErr    error
	initCalls    int
	verifyCalls  int
}

func (g *stubGateway) Initialize(ctx context.Context, email string, amountMinor int64, reference, callbackURL string) (*gateway.InitResult, error) {
	g.initCalls++
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &gateway.InitResult{
		AuthorizationURL: "https://checkout.example/" + reference,
		AccessCode:       "ac_" + reference,
		Reference:        reference,
	}, nil
}

func (g *stubGateway) Verify(ctx context.Context, reference string) (*gateway.VerifyResult, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &gateway.VerifyResult{Status: g.verifyStatus, AmountMinor: 10150, GatewayResponse: "stubbed"}, nil
}

// setupApp boots a Fiber app over in-memory SQLite with all handlers wired,
// mirroring main.go.
func setupApp(t *testing.T, gw *stubGateway) *fiber.App {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.PaymentMethod{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	methodRepo := repositories.NewGORMPaymentMethodRepository(db)
	cartRepo := repositories.NewMockCartRepository()

	methods := []models.PaymentMethod{
		{Code: "card_paystack", Name: "Card (Paystack)", Kind: models.KindCardRedirect, FeeType: models.FeePercentage, FeeValue: 1.5, Active: true},
		{Code: "bank_transfer", Name: "Bank Transfer", Kind: models.KindBankTransfer, FeeType: models.FeeFixed, FeeValue: 0, Active: true},
		{Code: "cod", Name: "Cash on Delivery", Kind: models.KindCashOnDelivery, FeeType: models.FeeFixed, FeeValue: 100, Active: true},
	}
	for i := range methods {
		if _, err := methodRepo.GetByCode(methods[i].Code); err != nil {
			assert.NoError(t, methodRepo.Create(&methods[i]))
		}
	}

	authService := services.NewAuthService(userRepo, jwtSecret)
	methodService := services.NewPaymentMethodService(methodRepo)
	checkoutService := services.NewCheckoutService(
		orderRepo, cartRepo, methodService, gw,
		services.NewReferenceGenerator("KDI"), nil,
		"http://localhost:8080/api/v1/payments/callback",
		services.BankAccount{BankName: "Bank Sentosa", AccountName: "Kedai Store", AccountNumber: "0123456789"},
	)
	verificationService := services.NewVerificationService(orderRepo, gw, nil)
	orderService := services.NewOrderService(orderRepo, nil)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	authRequired := middleware.AuthRequired(authService)

	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartRepo).RegisterRoutes(apiV1, authRequired)
	handlers.NewCheckoutHandler(checkoutService, verificationService, methodService, cartRepo).RegisterRoutes(apiV1, authRequired)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1, authRequired)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func registerAndLogin(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"name":     "Test Customer",
		"phone":    "+628123456789",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": username,
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func fillCart(t *testing.T, app *fiber.App, token string) {
	t.Helper()
	resp, _ := doJSON(t, app, http.MethodPut, "/api/v1/cart", token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": "prod-1", "name": "Keyboard", "unit_price": 7500, "quantity": 1},
			{"product_id": "prod-2", "name": "Mouse", "unit_price": 2500, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCheckoutFlows(t *testing.T) {
	gw := &stubGateway{verifyStatus: "success"}
	app := setupApp(t, gw)
	token := registerAndLogin(t, app, "amina")

	checkoutBody := func(method string) map[string]interface{} {
		return map[string]interface{}{
			"payment_method_code":  method,
			"delivery_address_ref": "addr-1",
			"delivery_method":      "courier",
			"customer_name":        "Amina Yusuf",
			"customer_phone":       "+2348012345678",
		}
	}

	t.Run("UnauthenticatedCheckoutRejected", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/checkout", "", checkoutBody("cod"))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("ListPaymentMethods", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/payment-methods", nil)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var methods []models.PaymentMethod
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&methods))
		assert.Len(t, methods, 3)
	})

	t.Run("EmptyCartRejected", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, checkoutBody("cod"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("CashOnDelivery", func(t *testing.T) {
		fillCart(t, app, token)
		resp, body := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, checkoutBody("cod"))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		order := body["order"].(map[string]interface{})
		// 10000 subtotal + 100 fixed fee
		assert.Equal(t, float64(10100), order["total"])
		assert.Equal(t, string(models.OrderProcessing), order["status"])
		assert.Equal(t, string(models.PaymentPending), order["payment_status"])
		assert.Equal(t, 0, gw.initCalls, "COD must not touch the gateway")

		// Cart was cleared by the checkout
		resp, cart := doJSON(t, app, http.MethodGet, "/api/v1/cart", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, cart["items"])
	})

	t.Run("BankTransfer", func(t *testing.T) {
		fillCart(t, app, token)
		resp, body := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, checkoutBody("bank_transfer"))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		order := body["order"].(map[string]interface{})
		assert.Equal(t, string(models.OrderPending), order["status"])
		assert.Equal(t, body["payment_memo"], order["reference"])
		account := body["bank_account"].(map[string]interface{})
		assert.Equal(t, "0123456789", account["account_number"])
	})

	t.Run("RedirectAndCallback", func(t *testing.T) {
		fillCart(t, app, token)
		resp, body := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, checkoutBody("card_paystack"))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		order := body["order"].(map[string]interface{})
		reference := order["reference"].(string)
		assert.Equal(t, "https://checkout.example/"+reference, body["redirect_url"])
		assert.Equal(t, string(models.OrderPending), order["status"])

		// Gateway sends the customer back with the reference
		callback := fmt.Sprintf("/api/v1/payments/callback?reference=%s", reference)
		resp, verified := doJSON(t, app, http.MethodGet, callback, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, string(models.OrderCompleted), verified["status"])
		assert.Equal(t, string(models.PaymentPaid), verified["payment_status"])

		// Reloading the return page must not re-verify or regress
		resp, again := doJSON(t, app, http.MethodGet, callback, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, string(models.OrderCompleted), again["status"])
		assert.Equal(t, 1, gw.verifyCalls)
	})

	t.Run("CallbackUnknownReference", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/payments/callback?reference=KDI-unknown", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("CallbackMissingReference", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/payments/callback", "", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ListOwnOrders", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var orders []models.Order
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
		assert.Len(t, orders, 3) // cod + bank transfer + card
	})
}

func TestCheckoutGatewayDown(t *testing.T) {
	gw := &stubGateway{initErr: gateway.ErrUnavailable}
	app := setupApp(t, gw)
	token := registerAndLogin(t, app, "budi")
	fillCart(t, app, token)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, map[string]interface{}{
		"payment_method_code":  "card_paystack",
		"delivery_address_ref": "addr-1",
		"delivery_method":      "courier",
		"customer_name":        "Budi Santoso",
		"customer_phone":       "+628123456789",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// The failed order rides along so the UI can offer a retry
	order := body["order"].(map[string]interface{})
	assert.Equal(t, string(models.OrderFailed), order["status"])
	assert.Equal(t, string(models.PaymentFailed), order["payment_status"])
}

func TestBankTransferConfirmation(t *testing.T) {
	gw := &stubGateway{}
	app := setupApp(t, gw)
	token := registerAndLogin(t, app, "citra")
	fillCart(t, app, token)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, map[string]interface{}{
		"payment_method_code":  "bank_transfer",
		"delivery_address_ref": "addr-1",
		"delivery_method":      "pickup",
		"customer_name":        "Citra Dewi",
		"customer_phone":       "+628123450000",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := body["order"].(map[string]interface{})["id"].(string)

	// Operator confirms the transfer arrived
	confirmPath := fmt.Sprintf("/api/v1/orders/%s/confirm-transfer", orderID)
	resp, confirmed := doJSON(t, app, http.MethodPatch, confirmPath, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	order := confirmed["order"].(map[string]interface{})
	assert.Equal(t, string(models.OrderProcessing), order["status"])
	assert.Equal(t, string(models.PaymentPaid), order["payment_status"])

	// Confirming again conflicts instead of double-applying
	resp, _ = doJSON(t, app, http.MethodPatch, confirmPath, token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
