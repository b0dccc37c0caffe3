package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"funneltrack/internal/orders"
)

// ProcessPaymentAction handles the simulated card payment at the end of the
// checkout funnel.
func ProcessPaymentAction(ctx *cartridge.Context) error {
	var req orders.PaymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}

	order, err := orders.ProcessPayment(ctx.Logger, &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": capitalizeError(err),
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Payment processed successfully",
		"order":   order,
	})
}

// SignupAction handles the simulated SaaS trial signup.
func SignupAction(ctx *cartridge.Context) error {
	var req orders.SignupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}

	account, err := orders.ProcessSignup(ctx.Logger, &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": capitalizeError(err),
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Account created successfully",
		"account": account,
	})
}

// ServiceCheckoutAction handles the simulated done-for-you service signup.
func ServiceCheckoutAction(ctx *cartridge.Context) error {
	var req orders.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request",
		})
	}

	order, err := orders.ProcessServiceCheckout(ctx.Logger, &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": capitalizeError(err),
		})
	}

	ctx.Logger.Info("Service checkout completed", slog.String("order_id", order.OrderID))
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Service signup successful",
		"order":   order,
	})
}

// capitalizeError upper-cases the first letter of a validation error for
// client-facing messages.
func capitalizeError(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	if msg[0] >= 'a' && msg[0] <= 'z' {
		return string(msg[0]-'a'+'A') + msg[1:]
	}
	return msg
}
