package handlers

import (
	"net/http"
	"time"

	"github.com/upb/inventory-admin/app"
	"github.com/upb/inventory-admin/middleware"
	"github.com/upb/inventory-admin/services/identity"
	"github.com/upb/inventory-admin/utils"
	"go.uber.org/zap"
)

// SignInRequest is the body of POST /api/identity/signin
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,min=6,max=30"`
}

// UpdateProfileRequest is the body of PUT /api/identity
type UpdateProfileRequest struct {
	Fullname        string `json:"fullname" validate:"required,min=2,max=50"`
	Email           string `json:"email" validate:"required,email,max=50"`
	CurrentPassword string `json:"currentPassword" validate:"omitempty,min=6,max=30"`
	NewPassword     string `json:"newPassword" validate:"omitempty,min=6,max=30"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword"`
}

// SignInHandler exchanges credentials for a token and sets it as an HttpOnly cookie
func SignInHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignInRequest
		if !decodeAndValidate(w, r, &req, deps.Logger) {
			return
		}

		result, err := deps.Identity.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		setTokenCookie(w, deps, result.Token, result.ExpiresAt)
		_ = utils.WriteOK(w, result)
	}
}

// SignOutHandler clears the token cookie. Issued tokens stay valid until they expire.
func SignOutHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.AuthTokenCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secureCookies(deps),
			SameSite: http.SameSiteStrictMode,
		})
		utils.WriteNoContent(w)
	}
}

// CurrentUserHandler returns the caller's profile with current role and permissions
func CurrentUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.GetUserIDFromContext(r.Context())
		if userID == "" {
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		profile, err := deps.Identity.GetProfile(r.Context(), userID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, profile)
	}
}

// UpdateProfileHandler changes the caller's own name, email and password
func UpdateProfileHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.GetUserIDFromContext(ctx)
		if userID == "" {
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		var req UpdateProfileRequest
		if !decodeAndValidate(w, r, &req, deps.Logger) {
			return
		}

		err := deps.Identity.UpdateProfile(ctx, identity.UpdateProfileInput{
			UserID:          userID,
			Fullname:        req.Fullname,
			Email:           req.Email,
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
		})
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		profile, err := deps.Identity.GetProfile(ctx, userID)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		deps.Logger.Debug("profile updated via api",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.String("user_id", userID))
		_ = utils.WriteOK(w, profile)
	}
}

func setTokenCookie(w http.ResponseWriter, deps *app.Dependencies, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthTokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secureCookies(deps),
		SameSite: http.SameSiteStrictMode,
	})
}

func secureCookies(deps *app.Dependencies) bool {
	return deps.Config.Server.TLS.Enabled || deps.Config.IsProduction()
}
