package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/inventory-admin/services"
	"github.com/upb/inventory-admin/utils"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedError   string
		expectedMessage string
	}{
		{
			name:            "validation error",
			err:             services.NewValidationError(services.Violation{Field: "name", Rule: "name.required", Message: "'Name' is required."}),
			expectedStatus:  http.StatusBadRequest,
			expectedError:   "bad_request",
			expectedMessage: "'Name' is required.",
		},
		{
			name:            "authentication error",
			err:             services.NewAuthenticationError("Invalid Credentials for '%s'.", "a@b.c"),
			expectedStatus:  http.StatusUnauthorized,
			expectedError:   "unauthorized",
			expectedMessage: "Invalid Credentials for 'a@b.c'.",
		},
		{
			name:            "forbidden error",
			err:             services.NewForbiddenError("The admin user cannot be modified."),
			expectedStatus:  http.StatusForbidden,
			expectedError:   "forbidden",
			expectedMessage: "The admin user cannot be modified.",
		},
		{
			name:            "not found error",
			err:             services.NewNotFoundError("Role with the Id : '%s' was not found.", "r1"),
			expectedStatus:  http.StatusNotFound,
			expectedError:   "not_found",
			expectedMessage: "Role with the Id : 'r1' was not found.",
		},
		{
			name:            "conflict error",
			err:             services.NewConflictError("The role with the Name %s already exists.", "Admin"),
			expectedStatus:  http.StatusConflict,
			expectedError:   "conflict",
			expectedMessage: "The role with the Name Admin already exists.",
		},
		{
			name:            "disabled error",
			err:             services.NewDisabledError("Role with the Id : '%s' it's disabled.", "r1"),
			expectedStatus:  http.StatusUnprocessableEntity,
			expectedError:   "unprocessable",
			expectedMessage: "Role with the Id : 'r1' it's disabled.",
		},
		{
			name:            "wrapped internal error hides the cause",
			err:             fmt.Errorf("outer: %w", services.WrapInternal("failed to create role", errors.New("db down"))),
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   "internal_error",
			expectedMessage: "An internal error occurred",
		},
		{
			name:            "cancelled context",
			err:             context.Canceled,
			expectedStatus:  utils.StatusClientClosedRequest,
			expectedError:   "request_cancelled",
			expectedMessage: "The request was cancelled",
		},
		{
			name:            "deadline inside an internal error",
			err:             services.WrapInternal("failed to load role", context.DeadlineExceeded),
			expectedStatus:  http.StatusGatewayTimeout,
			expectedError:   "timeout",
			expectedMessage: "The request timed out",
		},
		{
			name:            "plain error",
			err:             errors.New("boom"),
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   "internal_error",
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var response utils.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedError, response.Error)
			assert.Equal(t, tt.expectedMessage, response.Message)
		})
	}

	t.Run("validation violations are itemized in details", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := services.NewValidationError(
			services.Violation{Field: "name", Rule: "name.required", Message: "'Name' is required."},
			services.Violation{Field: "description", Rule: "description.required", Message: "'Description' is required."},
		)

		HandleServiceError(w, err, logger)

		var response struct {
			Details struct {
				Violations []services.Violation `json:"violations"`
			} `json:"details"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response.Details.Violations, 2)
		assert.Equal(t, "description.required", response.Details.Violations[1].Rule)
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleServiceError(w, nil, logger)
		assert.Equal(t, 0, w.Body.Len())
	})
}

func TestHandleValidationError(t *testing.T) {
	logger := zap.NewNop()

	t.Run("field errors become details", func(t *testing.T) {
		type request struct {
			Email string `json:"email" validate:"required,email"`
		}
		err := utils.ValidateStruct(&request{})
		require.Error(t, err)

		w := httptest.NewRecorder()
		HandleValidationError(w, err, logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response utils.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "Validation failed", response.Message)
		assert.Equal(t, "'email' is required.", response.Details["email"])
	})

	t.Run("generic error message is passed through", func(t *testing.T) {
		w := httptest.NewRecorder()
		HandleValidationError(w, errors.New("request body is required"), logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "request body is required")
	})
}

func TestCreateRoleHandler_CancelledRequest(t *testing.T) {
	deps := newTestDeps(t)
	router := testRouter(deps)

	body := `{"name":"Clerk","description":"Front desk","modules":[{"id":"Modules.Users","permissionsIds":["Permissions.Users.View"]}]}`
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/roles", strings.NewReader(body)).WithContext(ctx)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, utils.StatusClientClosedRequest, w.Code)
	var response utils.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "request_cancelled", response.Error)

	_, err := deps.Repos.Roles.GetByName(context.Background(), "Clerk")
	assert.Error(t, err)
}
