package rest

import (
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/user"
	"storefront-be/internal/utils"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type sessionResponse struct {
	Token string     `json:"token"`
	Role  user.Role  `json:"role"`
	User  *user.User `json:"user"`
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	token, u, err := h.Users.Register(r.Context(), in.Email, in.Password, in.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setTokenCookie(w, token, h.TokenTTLSeconds)
	utils.WriteJSON(w, http.StatusCreated, sessionResponse{Token: token, Role: u.Role, User: u})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := utils.DecodeJSON(r, &in); err != nil {
		badRequest(w, err.Error())
		return
	}

	token, u, err := h.Users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setTokenCookie(w, token, h.TokenTTLSeconds)
	utils.WriteJSON(w, http.StatusOK, sessionResponse{Token: token, Role: u.Role, User: u})
}

// Logout only clears the cookie; tokens are stateless.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setTokenCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.GetByID(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, u)
}
