package handlers

import (
	"errors"
	"fmt"
	"log"

	"kedai/internal/middleware"
	"kedai/internal/repositories"
	"kedai/internal/services"
	"kedai/pkg/gateway"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles HTTP requests for checkout and the gateway's
// return callback.
type CheckoutHandler struct {
	checkout     *services.CheckoutService
	verification *services.VerificationService
	methods      *services.PaymentMethodService
	carts        repositories.CartRepository
	validate     *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout *services.CheckoutService, verification *services.VerificationService, methods *services.PaymentMethodService, carts repositories.CartRepository) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:     checkout,
		verification: verification,
		methods:      methods,
		carts:        carts,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers checkout routes. The callback route stays public:
// the gateway redirects the customer's browser there without our bearer token.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/payment-methods", h.HandleListPaymentMethods)
	router.Get("/payments/callback", h.HandleGatewayReturn)
	router.Post("/checkout", auth, h.HandleCheckout)
}

// CheckoutRequest is the body for POST /checkout. The cart itself is read
// from the user's stored cart, not from the request.
type CheckoutRequest struct {
	PaymentMethodCode  string `json:"payment_method_code" validate:"required"`
	DeliveryAddressRef string `json:"delivery_address_ref" validate:"required"`
	DeliveryMethod     string `json:"delivery_method" validate:"required"`
	CustomerName       string `json:"customer_name" validate:"required,max=100"`
	CustomerEmail      string `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone      string `json:"customer_phone" validate:"required,max=32"`
}

// HandleListPaymentMethods returns the methods a customer may choose from.
func (h *CheckoutHandler) HandleListPaymentMethods(c *fiber.Ctx) error {
	methods, err := h.methods.ListActive()
	if err != nil {
		log.Printf("Error listing payment methods: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve payment methods",
			"error":   err.Error(),
		})
	}
	return c.JSON(methods)
}

// HandleCheckout submits the current user's cart through the checkout state
// machine.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	userID := middleware.UserID(c)
	customerEmail := req.CustomerEmail
	if customerEmail == "" {
		customerEmail = middleware.UserEmail(c)
	}

	items, err := h.carts.Get(userID)
	if err != nil {
		log.Printf("Error loading cart for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load cart",
			"error":   err.Error(),
		})
	}

	result, err := h.checkout.Submit(c.UserContext(), userID, services.CheckoutInput{
		Items:              items,
		MethodCode:         req.PaymentMethodCode,
		DeliveryAddressRef: req.DeliveryAddressRef,
		DeliveryMethod:     req.DeliveryMethod,
		CustomerName:       req.CustomerName,
		CustomerEmail:      customerEmail,
		CustomerPhone:      req.CustomerPhone,
	})
	if err != nil {
		return h.checkoutError(c, result, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// checkoutError maps the service error taxonomy onto HTTP responses. The
// order, if one was created, rides along so the UI can route the customer
// back to cart/retry instead of a dead end.
func (h *CheckoutHandler) checkoutError(c *fiber.Ctx, result *services.CheckoutResult, err error) error {
	log.Printf("Checkout failed: %v", err)

	body := fiber.Map{
		"message": "Checkout failed",
		"error":   err.Error(),
	}
	if result != nil && result.Order != nil {
		body["order"] = result.Order
	}

	switch {
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrAmountOutOfRange):
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, services.ErrMethodNotFound):
		return c.Status(fiber.StatusNotFound).JSON(body)
	case errors.Is(err, gateway.ErrRejected):
		return c.Status(fiber.StatusPaymentRequired).JSON(body)
	case errors.Is(err, gateway.ErrUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(body)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}

// HandleGatewayReturn receives the gateway's return redirect. Paystack sends
// the reference as both "reference" and "trxref"; either is accepted, neither
// means the callback is rejected.
func (h *CheckoutHandler) HandleGatewayReturn(c *fiber.Ctx) error {
	reference := c.Query("reference")
	if reference == "" {
		reference = c.Query("trxref")
	}
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Missing payment reference",
		})
	}

	order, err := h.verification.HandleReturn(c.UserContext(), reference)
	if err != nil {
		log.Printf("Error verifying payment for reference %s: %v", reference, err)
		if errors.Is(err, services.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("No order found for reference %s", reference),
			})
		}
		if errors.Is(err, gateway.ErrUnavailable) {
			// Order stays pending; the customer can reload this page to retry.
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"message": "Payment verification is temporarily unavailable, please retry",
				"order":   order,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not verify payment",
			"error":   err.Error(),
		})
	}

	return c.JSON(order)
}
