package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/inventory-admin/middleware"
	"github.com/upb/inventory-admin/permissions"
	"github.com/upb/inventory-admin/services/identity"
)

func TestSignInHandler(t *testing.T) {
	deps := newTestDeps(t)
	router := testRouter(deps)

	t.Run("valid credentials return token and set cookie", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/identity/signin",
			SignInRequest{Email: testAdminEmail, Password: testAdminPassword}, nil)

		require.Equal(t, http.StatusOK, w.Code)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, middleware.AuthTokenCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)

		var result identity.AuthResult
		decodeData(t, w, &result)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, cookies[0].Value, result.Token)
		assert.Equal(t, "Admin", result.Role)
		assert.ElementsMatch(t, permissions.AllPermissionIDs(), result.Permissions)

		claims, err := deps.Tokens.Validate(result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.UserID, claims.UserID)
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/identity/signin",
			SignInRequest{Email: testAdminEmail, Password: "wrong-password"}, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid Credentials for")
	})

	t.Run("unknown account is 401 with its own message", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/identity/signin",
			SignInRequest{Email: "nobody@example.com", Password: "secret123"}, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "No Accounts Registered with nobody@example.com.")
	})

	t.Run("malformed request is 400", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/identity/signin",
			SignInRequest{Email: "not-an-email", Password: "123"}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "'email' invalid format.")
	})

	t.Run("empty body is 400", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/identity/signin", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSignOutHandler(t *testing.T) {
	deps := newTestDeps(t)

	w := do(t, testRouter(deps), http.MethodPost, "/api/identity/signout", nil, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestCurrentUserHandler(t *testing.T) {
	deps := newTestDeps(t)
	router := testRouter(deps)
	admin, err := deps.Repos.Users.GetByEmail(context.Background(), testAdminEmail)
	require.NoError(t, err)

	t.Run("returns the caller's profile", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/identity/me", nil, &middleware.Claims{UserID: admin.ID})

		require.Equal(t, http.StatusOK, w.Code)
		var profile identity.Profile
		decodeData(t, w, &profile)
		assert.Equal(t, admin.ID, profile.UserID)
		assert.Equal(t, "Admin", profile.Role)
		assert.True(t, profile.IsVerified)
	})

	t.Run("missing claims is 401", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/identity/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown principal is 404", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/identity/me", nil, &middleware.Claims{UserID: "ghost"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateProfileHandler(t *testing.T) {
	deps := newTestDeps(t)
	router := testRouter(deps)
	admin, err := deps.Repos.Users.GetByEmail(context.Background(), testAdminEmail)
	require.NoError(t, err)
	claims := &middleware.Claims{UserID: admin.ID}

	t.Run("mismatched confirmation is 400", func(t *testing.T) {
		w := do(t, router, http.MethodPut, "/api/identity", UpdateProfileRequest{
			Fullname: "Admin", Email: testAdminEmail,
			CurrentPassword: testAdminPassword, NewPassword: "NewPass1!", ConfirmPassword: "Other1!",
		}, claims)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong current password is 400", func(t *testing.T) {
		w := do(t, router, http.MethodPut, "/api/identity", UpdateProfileRequest{
			Fullname: "Admin", Email: testAdminEmail,
			CurrentPassword: "not-it-at-all", NewPassword: "NewPass1!", ConfirmPassword: "NewPass1!",
		}, claims)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Incorrect password.")
	})

	t.Run("renames the caller and changes the password", func(t *testing.T) {
		w := do(t, router, http.MethodPut, "/api/identity", UpdateProfileRequest{
			Fullname: "Head Admin", Email: testAdminEmail,
			CurrentPassword: testAdminPassword, NewPassword: "NewPass1!", ConfirmPassword: "NewPass1!",
		}, claims)

		require.Equal(t, http.StatusOK, w.Code)
		var profile identity.Profile
		decodeData(t, w, &profile)
		assert.Equal(t, "Head Admin", profile.Fullname)

		_, err := deps.Identity.Authenticate(context.Background(), testAdminEmail, "NewPass1!")
		assert.NoError(t, err)
	})
}
