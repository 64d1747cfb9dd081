package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

type checkoutView struct {
	checkout.View
	Summary models.CartSummary `json:"summary"`
}

func (h *Handler) currentCheckout(c *gin.Context) checkoutView {
	s := currentSession(c)
	return checkoutView{View: s.Checkout.View(), Summary: s.Cart.State().Summary()}
}

func (h *Handler) GetCheckout(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(h.currentCheckout(c)))
}

func (h *Handler) SubmitShipping(c *gin.Context) {
	var info models.ShippingInfo
	if !bindJSON(c, &info) {
		return
	}

	if err := currentSession(c).Checkout.SubmitShipping(info); err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid shipping information", verr.Fields))
			return
		}
		h.checkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.currentCheckout(c)))
}

func (h *Handler) CheckoutBack(c *gin.Context) {
	if err := currentSession(c).Checkout.Back(); err != nil {
		h.checkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.currentCheckout(c)))
}

// SubmitPayment starts payment and answers 202 while it runs; the client polls
// the checkout or navigation endpoints. With ?wait=true the request blocks
// until the payment settles.
func (h *Handler) SubmitPayment(c *gin.Context) {
	var details models.PaymentDetails
	if c.Request.ContentLength > 0 && !bindJSON(c, &details) {
		return
	}

	ctx := c.Request.Context()
	done, err := currentSession(c).Checkout.SubmitPayment(ctx, details)
	if err != nil {
		h.checkoutError(c, err)
		return
	}

	if wait, _ := strconv.ParseBool(c.Query("wait")); !wait {
		c.JSON(http.StatusAccepted, global.SuccessResponse(h.currentCheckout(c)))
		return
	}

	select {
	case outcome := <-done:
		if outcome.Err != nil {
			h.checkoutError(c, outcome.Err)
			return
		}
		c.JSON(http.StatusOK, global.SuccessResponse(h.currentCheckout(c)))
	case <-ctx.Done():
		// the payment keeps running; nobody is left to answer
	}
}

func (h *Handler) CancelPayment(c *gin.Context) {
	if err := currentSession(c).Checkout.Cancel(); err != nil {
		h.checkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.currentCheckout(c)))
}

func (h *Handler) ResetCheckout(c *gin.Context) {
	currentSession(c).Checkout.Reset()
	c.JSON(http.StatusOK, global.SuccessResponse(h.currentCheckout(c)))
}

func (h *Handler) checkoutError(c *gin.Context, err error) {
	view := currentSession(c).Checkout.View()
	message := view.Error
	if message == "" {
		message = "Payment could not be processed"
	}

	switch {
	case errors.Is(err, checkout.ErrInvalidStep):
		c.JSON(http.StatusConflict, global.ErrorResponse("Action not allowed at this checkout step", []global.ValidationError{
			{Field: "step", Message: "checkout is at step " + string(view.Step), Code: "invalid_step"},
		}))
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusConflict, global.ErrorResponse("Cart is empty", []global.ValidationError{
			{Field: "cart", Message: "add items before paying", Code: "empty_cart"},
		}))
	case errors.Is(err, checkout.ErrPaymentDeclined):
		c.JSON(http.StatusPaymentRequired, global.ErrorResponse(message, nil))
	case errors.Is(err, checkout.ErrCancelled):
		c.JSON(http.StatusConflict, global.ErrorResponse("Payment was cancelled", nil))
	default:
		h.log.Error("checkout failed", "session_id", currentSession(c).ID, "error", err)
		c.JSON(http.StatusBadGateway, global.ErrorResponse(message, nil))
	}
}
