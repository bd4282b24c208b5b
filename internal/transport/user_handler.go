package transport

import (
	"net/http"

	"abc-retailers/internal/auth"
	"abc-retailers/internal/logger"
	"abc-retailers/internal/middleware"
	"abc-retailers/internal/user"
	"abc-retailers/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type authResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

type UserHandler struct {
	users        user.Service
	secureCookie bool
}

func NewUserHandler(users user.Service, secureCookie bool) *UserHandler {
	return &UserHandler{users: users, secureCookie: secureCookie}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	r.Route("/api/account", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
	})
}

func (h *UserHandler) setTokenCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in user.RegisterInput
	if !decode(w, r, &in) {
		return
	}

	token, u, err := h.users.Register(r.Context(), in)
	if err != nil {
		respondError(w, r, err, "failed to register user")
		return
	}

	h.setTokenCookie(w, token, int(auth.TokenTTL.Seconds()))
	logger.FromCtx(r.Context()).Info("user registered", zap.String("user_id", u.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in user.LoginInput
	if !decode(w, r, &in) {
		return
	}

	token, u, err := h.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		respondError(w, r, err, "failed to login")
		return
	}

	h.setTokenCookie(w, token, int(auth.TokenTTL.Seconds()))
	middleware.RespondWithJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setTokenCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := utils.GetUserIDFromContext(r.Context())

	u, err := h.users.GetProfile(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "failed to get user profile")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in user.ProfileInput
	if !decode(w, r, &in) {
		return
	}
	id, _ := utils.GetUserIDFromContext(r.Context())

	u, err := h.users.UpdateProfile(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err, "failed to update profile")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, u)
}
