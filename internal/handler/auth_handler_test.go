package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/beams-api/internal/pkg/errors"
	"github.com/yourusername/beams-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestGinContext создает *gin.Context для тестов с JSON body
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// ============================================================================
// Request validation tests — не требуют реального AuthService
// Handler возвращает 400 до вызова сервиса
// ============================================================================

func TestRegister_ValidationErrors(t *testing.T) {
	handler := &AuthHandler{}

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "empty body",
			body:       nil,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing email",
			body:       map[string]string{"username": "student", "password": "password123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid email format",
			body:       map[string]string{"username": "student", "email": "not-an-email", "password": "password123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "username too short",
			body:       map[string]string{"username": "ab", "email": "user@test.com", "password": "password123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "password shorter than 8",
			body:       map[string]string{"username": "student", "email": "user@test.com", "password": "1234567"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed birth_date",
			body:       map[string]string{"username": "student", "email": "user@test.com", "password": "password123", "birth_date": "17.09.2010"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext("POST", "/api/auth/register", tt.body)
			handler.Register(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := parseJSONResponse(t, w)
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestLogin_ValidationErrors(t *testing.T) {
	handler := &AuthHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "empty body", body: nil},
		{name: "missing password", body: map[string]string{"email": "user@test.com"}},
		{name: "missing email", body: map[string]string{"password": "password123"}},
		{name: "invalid email", body: map[string]string{"email": "nope", "password": "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext("POST", "/api/auth/login", tt.body)
			handler.Login(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Contains(t, resp["error"], "Invalid request data")
		})
	}
}

func TestCompleteTwoFactorLogin_ValidationErrors(t *testing.T) {
	handler := &AuthHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "empty body", body: nil},
		{name: "code too short", body: map[string]string{"email": "user@test.com", "code": "123"}},
		{name: "code too long", body: map[string]string{"email": "user@test.com", "code": "1234567"}},
		{name: "missing email", body: map[string]string{"code": "123456"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext("POST", "/api/auth/login/2fa", tt.body)
			handler.CompleteTwoFactorLogin(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRefresh_MissingToken(t *testing.T) {
	handler := &AuthHandler{}

	// Ни куки, ни тела — отказ до обращения к сервису
	c, w := newTestGinContext("POST", "/api/auth/refresh", nil)
	handler.Refresh(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "token_invalid", resp["error_type"])
}

func TestGoogleAuth_NotConfigured(t *testing.T) {
	handler := &AuthHandler{} // googleService == nil

	c, w := newTestGinContext("POST", "/api/auth/google", map[string]string{"id_token": "some-token"})
	handler.GoogleAuth(c)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "feature_disabled", resp["error_type"])
}

func TestGoogleAuth_MissingCredential(t *testing.T) {
	handler := &AuthHandler{googleService: &service.GoogleOAuthService{}}

	c, w := newTestGinContext("POST", "/api/auth/google", map[string]string{"device_id": "dev1"})
	handler.GoogleAuth(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "validation_error", resp["error_type"])
}

// ============================================================================
// handleAuthError — тестирование маппинга ошибок
// ============================================================================

func TestHandleAuthError_Mapping(t *testing.T) {
	handler := &AuthHandler{}

	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantErrorType string
	}{
		{"password login disabled", service.ErrPasswordLoginDisabled, http.StatusForbidden, "password_login_disabled"},
		{"invalid 2fa code", service.ErrInvalidTwoFactorCode, http.StatusUnauthorized, "invalid_2fa_code"},
		{"expired 2fa code", service.ErrTwoFactorExpired, http.StatusUnauthorized, "2fa_code_expired"},
		{"google token rejected", service.ErrGoogleTokenVerificationFailed, http.StatusUnauthorized, "google_token_invalid"},
		{"expired session", apperrors.ErrExpiredToken, http.StatusUnauthorized, "token_expired"},
		{"bad credentials", service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"duplicate user", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"validation error", apperrors.ErrValidation, http.StatusBadRequest, "validation_error"},
		{"not found", apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext("POST", "/api/auth/login", nil)
			handler.handleAuthError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Equal(t, tt.wantErrorType, resp["error_type"])
		})
	}
}
