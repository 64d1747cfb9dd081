package router

import (
	"context"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/config"
	"julianmorley.ca/con-plar/storefront/pkg/query"
	"julianmorley.ca/con-plar/storefront/pkg/session"
)

type Deps struct {
	Config   config.Config
	Catalog  *catalog.Catalog
	Sessions *session.Registry
	Suggest  query.SuggestOptions
	Logger   *slog.Logger
	// Ping checks the storage backend for the health endpoint. Optional.
	Ping func(ctx context.Context) error
}

type Handler struct {
	catalog  *catalog.Catalog
	sessions *session.Registry
	suggest  query.SuggestOptions
	log      *slog.Logger
	ping     func(ctx context.Context) error
}

var registerTagNames sync.Once

func New(deps Deps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	// binding errors report JSON field names
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonTagName)
		}
	})

	engine := gin.New()
	engine.Use(gin.Recovery())
	if gin.Mode() == gin.DebugMode {
		engine.Use(gin.Logger())
	}
	engine.Use(cors.New(corsConfig(deps.Config.AllowOrigins)))

	h := &Handler{
		catalog:  deps.Catalog,
		sessions: deps.Sessions,
		suggest:  deps.Suggest,
		log:      deps.Logger,
		ping:     deps.Ping,
	}
	h.routes(engine)
	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length", "X-Total-Count"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func jsonTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func (h *Handler) routes(engine *gin.Engine) {
	api := engine.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/categories", h.GetCategories)
		api.GET("/search/suggestions", h.GetSuggestions)

		products := api.Group("/products")
		{
			products.GET("", h.GetProducts)
			products.GET("/facets", h.GetFacets)
			products.GET("/:id", h.GetProductByID)
		}

		api.POST("/sessions", h.StartSession)

		s := api.Group("/sessions/:sessionId")
		s.Use(SessionMiddleware(h.sessions))
		{
			s.GET("", h.GetSession)
			s.GET("/navigation", h.GetNavigation)
			s.GET("/orders", h.GetOrders)

			cart := s.Group("/cart")
			{
				cart.GET("", h.GetCart)
				cart.DELETE("", h.ClearCart)
				cart.POST("/items", h.AddToCart)
				cart.PUT("/items/:productId", h.UpdateCartItem)
				cart.DELETE("/items/:productId", h.RemoveFromCart)
				cart.POST("/open", h.OpenCart)
				cart.POST("/close", h.CloseCart)
				cart.POST("/toggle", h.ToggleCart)
			}

			wishlist := s.Group("/wishlist")
			{
				wishlist.GET("", h.GetWishlist)
				wishlist.DELETE("", h.ClearWishlist)
				wishlist.POST("/items", h.AddToWishlist)
				wishlist.DELETE("/items/:productId", h.RemoveFromWishlist)
				wishlist.POST("/open", h.OpenWishlist)
				wishlist.POST("/close", h.CloseWishlist)
				wishlist.POST("/toggle", h.ToggleWishlist)
			}

			checkout := s.Group("/checkout")
			{
				checkout.GET("", h.GetCheckout)
				checkout.POST("/shipping", h.SubmitShipping)
				checkout.POST("/back", h.CheckoutBack)
				checkout.POST("/payment", h.SubmitPayment)
				checkout.POST("/cancel", h.CancelPayment)
				checkout.POST("/reset", h.ResetCheckout)
			}

			auth := s.Group("/auth")
			{
				auth.GET("", h.GetAuth)
				auth.POST("/login", h.Login)
				auth.POST("/register", h.Register)
				auth.POST("/logout", h.Logout)
				auth.PUT("/preferences", h.UpdatePreferences)
			}

			settings := s.Group("/settings")
			{
				settings.GET("/theme", h.GetTheme)
				settings.PUT("/theme", h.UpdateTheme)
			}

			chat := s.Group("/chat")
			{
				chat.GET("", h.GetChat)
				chat.POST("", h.SendChatMessage)
			}
		}
	}
}
