package rest

import (
	"net/http"

	"storefront-be/internal/logger"
	"storefront-be/internal/middleware"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type RouterOptions struct {
	Tokens     middleware.TokenParser
	Limiter    *middleware.RateLimiter
	CORSOrigin string

	// Events streams product updates to the storefront.
	Events http.Handler
}

// NewRouter wires every endpoint. Middleware order: request id, CORS, request
// logging, auth, rate limiting.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	if opts.CORSOrigin != "" {
		r.Use(middleware.CORS(opts.CORSOrigin))
	}
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.Auth(opts.Tokens))
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	active := middleware.RequireActive(h.Users)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.With(middleware.RequireAuth).Get("/me", h.Me)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			if opts.Events != nil {
				r.Handle("/events", opts.Events)
			}
			r.Get("/{id}", h.GetProduct)
		})

		r.Get("/categories", h.ListCategories)

		r.Route("/rating/{productID}", func(r chi.Router) {
			r.Get("/", h.RatingSummary)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth, active)
				r.Get("/me", h.MyRating)
				r.Post("/", h.Rate)
				r.Delete("/", h.RemoveRating)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/product/{productID}", h.ListComments)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth, active)
				r.Post("/", h.CreateComment)
				r.Delete("/{id}", h.DeleteComment)
			})
		})

		r.Route("/search", func(r chi.Router) {
			r.Get("/products", h.KeywordSearch)
			r.Post("/image", h.ImageSearch)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth, active)

			r.Get("/user/products/purchased", h.PurchasedProducts)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Post("/items", h.AddToCart)
				r.Patch("/items/{itemID}", h.UpdateCartItem)
				r.Delete("/items/{itemID}", h.RemoveCartItem)
				r.Post("/checkout", h.CheckoutCart)
			})

			r.Route("/buy-now", func(r chi.Router) {
				r.Post("/", h.CreateBuyNow)
				r.Get("/{sessionID}", h.GetBuyNow)
				r.Post("/{sessionID}/checkout", h.CheckoutBuyNow)
				r.Delete("/{sessionID}", h.CancelBuyNow)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.ListOrders)
				r.Post("/", h.PlaceOrder)
				r.Get("/{id}", h.GetOrder)
				r.Post("/{id}/cancel", h.CancelOrder)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(utils.RoleAdmin), active)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.AdminListProducts)
				r.Post("/", h.CreateProduct)
				r.Get("/low-stock", h.LowStock)
				r.Patch("/{id}", h.UpdateProduct)
				r.Delete("/{id}", h.DeleteProduct)
				r.Post("/{id}/stock", h.AdjustStock)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.AdminListOrders)
				r.Get("/{id}", h.GetOrder)
				r.Patch("/{id}/status", h.UpdateOrderStatus)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Patch("/{id}/status", h.SetUserStatus)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/overview", h.DashboardOverview)
				r.Get("/sales", h.DashboardSales)
				r.Get("/top-products", h.DashboardTopProducts)
			})
		})
	})

	return r
}
