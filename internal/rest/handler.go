package rest

import (
	"errors"
	"net/http"
	"strconv"

	"storefront-be/internal/auth"
	"storefront-be/internal/buynow"
	"storefront-be/internal/cart"
	"storefront-be/internal/category"
	"storefront-be/internal/comment"
	"storefront-be/internal/dashboard"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/rating"
	"storefront-be/internal/search"
	"storefront-be/internal/user"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Users      user.Service
	Products   product.Service
	Categories category.Service
	Ratings    rating.Service
	Comments   comment.Service
	Cart       cart.Service
	BuyNow     buynow.Service
	Orders     order.Service
	Search     search.Service
	Dashboard  dashboard.Service
}

type Handler struct {
	Services

	LowStockThreshold int
	CookieSecure      bool
	TokenTTLSeconds   int
}

func NewHandler(svc Services) *Handler {
	return &Handler{Services: svc, LowStockThreshold: 5, TokenTTLSeconds: 24 * 3600}
}

// statusFor maps domain errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, comment.ErrCommentNotFound),
		errors.Is(err, rating.ErrRatingNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, buynow.ErrSessionNotFound):
		return http.StatusNotFound

	case errors.Is(err, buynow.ErrSessionExpired):
		return http.StatusGone

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized

	case errors.Is(err, user.ErrUserBlocked),
		errors.Is(err, user.ErrUserSuspended),
		errors.Is(err, user.ErrAdminStatus),
		errors.Is(err, comment.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, product.ErrInsufficientStock),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, cart.ErrItemUnavailable):
		return http.StatusConflict

	case errors.Is(err, search.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, search.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType

	case errors.Is(err, search.ErrImageSearchUnavailable):
		return http.StatusServiceUnavailable

	case errors.Is(err, order.ErrCartEmpty),
		errors.Is(err, order.ErrEmptyOrder):
		return http.StatusUnprocessableEntity

	case errors.Is(err, product.ErrInvalidProduct),
		errors.Is(err, product.ErrNoFieldsToUpdate),
		errors.Is(err, user.ErrInvalidInput),
		errors.Is(err, rating.ErrInvalidRating),
		errors.Is(err, comment.ErrInvalidComment),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidSize),
		errors.Is(err, buynow.ErrInvalidQuantity),
		errors.Is(err, buynow.ErrInvalidSize),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidLine),
		errors.Is(err, order.ErrInvalidShipping),
		errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, dashboard.ErrInvalidRange),
		errors.Is(err, category.ErrInvalidQuery):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "internal server error", code)
		return
	}
	utils.WriteJSONError(w, err.Error(), code)
}

func badRequest(w http.ResponseWriter, msg string) {
	utils.WriteJSONError(w, msg, http.StatusBadRequest)
}

// idParam reads a positive numeric URL parameter.
func idParam(r *http.Request, name string) (uint, bool) {
	id, err := utils.ToUint(chi.URLParam(r, name))
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

func currentUser(r *http.Request) uint {
	id, _ := utils.GetUserIDFromContext(r.Context())
	return id
}
