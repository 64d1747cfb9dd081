package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/prefs"
	"julianmorley.ca/con-plar/storefront/pkg/session"
	"julianmorley.ca/con-plar/storefront/pkg/wishlist"
)

type startSessionRequest struct {
	SessionID string `json:"session_id"`
}

type sessionView struct {
	SessionID string                 `json:"session_id"`
	CreatedAt time.Time              `json:"created_at"`
	Cart      models.CartSummary     `json:"cart"`
	Wishlist  models.WishlistSummary `json:"wishlist"`
	Theme     string                 `json:"theme"`
}

func (h *Handler) viewSession(c *gin.Context, s *session.Session) sessionView {
	return sessionView{
		SessionID: s.ID,
		CreatedAt: s.CreatedAt,
		Cart:      s.Cart.State().Summary(),
		Wishlist:  s.Wishlist.State().Summary(),
		Theme:     prefs.Load(c.Request.Context(), s.Storage).Theme,
	}
}

// StartSession creates a session, or resumes the one named in the body
func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if req.SessionID == "" {
		s := h.sessions.Create(ctx)
		h.log.Info("session created", "session_id", s.ID)
		c.JSON(http.StatusCreated, global.SuccessResponse(h.viewSession(c, s)))
		return
	}

	s, err := h.sessions.Resume(ctx, req.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Session not found", []global.ValidationError{
			{Field: "session_id", Message: "session_id is not a valid session id", Code: "invalid_format"},
		}))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(h.viewSession(c, s)))
}

func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(h.viewSession(c, currentSession(c))))
}

// GetNavigation returns the last route the session was asked to show
func (h *Handler) GetNavigation(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(currentSession(c).Navigation.Last()))
}

// Cart

func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(currentSession(c).Cart.State().Summary()))
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	product, ok := h.lookupProduct(c, req.ProductID)
	if !ok {
		return
	}
	h.dispatchCart(c, cart.AddItem{Product: product})
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, ok := productIDParam(c, "productId")
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	h.dispatchCart(c, cart.UpdateQuantity{ID: id, Quantity: *req.Quantity})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	id, ok := productIDParam(c, "productId")
	if !ok {
		return
	}
	h.dispatchCart(c, cart.RemoveItem{ID: id})
}

func (h *Handler) ClearCart(c *gin.Context)  { h.dispatchCart(c, cart.ClearCart{}) }
func (h *Handler) OpenCart(c *gin.Context)   { h.dispatchCart(c, cart.OpenCart{}) }
func (h *Handler) CloseCart(c *gin.Context)  { h.dispatchCart(c, cart.CloseCart{}) }
func (h *Handler) ToggleCart(c *gin.Context) { h.dispatchCart(c, cart.ToggleCart{}) }

func (h *Handler) dispatchCart(c *gin.Context, action cart.Action) {
	state := currentSession(c).Cart.Dispatch(action)
	c.JSON(http.StatusOK, global.SuccessResponse(state.Summary()))
}

// Wishlist

func (h *Handler) GetWishlist(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(currentSession(c).Wishlist.State().Summary()))
}

func (h *Handler) AddToWishlist(c *gin.Context) {
	var req models.AddToWishlistRequest
	if !bindJSON(c, &req) {
		return
	}
	product, ok := h.lookupProduct(c, req.ProductID)
	if !ok {
		return
	}
	h.dispatchWishlist(c, wishlist.AddItem{Product: product})
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	id, ok := productIDParam(c, "productId")
	if !ok {
		return
	}
	h.dispatchWishlist(c, wishlist.RemoveItem{ID: id})
}

func (h *Handler) ClearWishlist(c *gin.Context)  { h.dispatchWishlist(c, wishlist.ClearWishlist{}) }
func (h *Handler) OpenWishlist(c *gin.Context)   { h.dispatchWishlist(c, wishlist.OpenWishlist{}) }
func (h *Handler) CloseWishlist(c *gin.Context)  { h.dispatchWishlist(c, wishlist.CloseWishlist{}) }
func (h *Handler) ToggleWishlist(c *gin.Context) { h.dispatchWishlist(c, wishlist.ToggleWishlist{}) }

func (h *Handler) dispatchWishlist(c *gin.Context, action wishlist.Action) {
	state := currentSession(c).Wishlist.Dispatch(c.Request.Context(), action)
	c.JSON(http.StatusOK, global.SuccessResponse(state.Summary()))
}
