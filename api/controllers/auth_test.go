package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/api/middleware"
	"github.com/angelmondragon/minimart-backend/internal/auth"
	pkgauth "github.com/angelmondragon/minimart-backend/pkg/auth"
	"github.com/angelmondragon/minimart-backend/pkg/auth/session"
	"github.com/angelmondragon/minimart-backend/pkg/config"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}

type stubAuthService struct {
	loginResp     *auth.LoginResponse
	loginErr      error
	refreshResp   *auth.TokenPair
	lastLogout    string
	resetEmail    string
	confirmCalled bool
	phoneLookup   string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.TokenPair, error) {
	return s.refreshResp, nil
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.lastLogout = accessID
	return nil
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	s.resetEmail = email
	return nil
}

func (s *stubAuthService) ConfirmPasswordReset(ctx context.Context, req auth.PasswordResetConfirmRequest) error {
	s.confirmCalled = true
	return nil
}

func (s *stubAuthService) FindEmailByPhone(ctx context.Context, phone string) (string, error) {
	s.phoneLookup = phone
	if phone != "010-1234-5678" {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "no account registered with this phone")
	}
	return "t***@google.com", nil
}

type allowSessions struct{}

func (allowSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

func mintTestToken(t *testing.T, role enums.UserRole) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(testJWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	return token, accessID
}

func TestAuthLoginSetsTokenHeader(t *testing.T) {
	svc := &stubAuthService{loginResp: &auth.LoginResponse{TokenPair: auth.TokenPair{AccessToken: "access", RefreshToken: "refresh"}}}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.co","password":"pw123456"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(AccessTokenHeader); got != "access" {
		t.Fatalf("expected token header, got %q", got)
	}
}

func TestAuthLoginMapsServiceError(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.co","password":"nope"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthLoginRejectsMissingFields(t *testing.T) {
	handler := AuthLogin(&stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"not-an-email"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthLogoutRevokesCurrentSession(t *testing.T) {
	svc := &stubAuthService{}
	handler := middleware.Auth(testJWT, allowSessions{}, nil)(AuthLogout(svc, nil))

	token, jti := mintTestToken(t, enums.UserRoleBuyer)
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastLogout != jti {
		t.Fatalf("expected revoked %s got %s", jti, svc.lastLogout)
	}
}

func TestAuthLogoutWithoutSession(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthLogout(&stubAuthService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRefresh(t *testing.T) {
	svc := &stubAuthService{refreshResp: &auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}}
	handler := AuthRefresh(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{"access_token":"old","refresh_token":"r"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "new-refresh") {
		t.Fatalf("expected rotated refresh token in body: %s", rec.Body.String())
	}
}

func TestAuthPasswordResetRequestAccepted(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/password-reset/request", strings.NewReader(`{"email":"who@example.com"}`))
	rec := httptest.NewRecorder()
	AuthPasswordResetRequest(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", rec.Code)
	}
	if svc.resetEmail != "who@example.com" {
		t.Fatalf("unexpected email %q", svc.resetEmail)
	}
}

func TestAuthPasswordResetConfirmValidatesCode(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/password-reset/confirm", strings.NewReader(`{"email":"who@example.com","code":"12","new_password":"longenough"}`))
	rec := httptest.NewRecorder()
	AuthPasswordResetConfirm(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.confirmCalled {
		t.Fatal("service should not be called with an invalid code")
	}
}

func TestAuthFindByPhone(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthFindByPhone(svc, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/find-by-phone", strings.NewReader(`{"phone":"010-1234-5678"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"masked_email":"t***@google.com"`) {
		t.Fatalf("expected masked email in body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/find-by-phone", strings.NewReader(`{"phone":"010-9999-9999"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}

	svc.phoneLookup = ""
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/find-by-phone", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.phoneLookup != "" {
		t.Fatal("service should not be called without a phone")
	}
}

func TestNilServiceIsInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthLogin(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
