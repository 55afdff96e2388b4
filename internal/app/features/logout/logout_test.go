package logout

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/dealdocs/internal/app/system/auth"
	"github.com/dalemusser/dealdocs/internal/testutil"
	"go.uber.org/zap"
)

const testSessionKey = "test-session-key-0123456789abcdefghij"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	sessionMgr, err := auth.NewSessionManager(testSessionKey, "dealdocs-test", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}

	h := NewHandler(sessionMgr, nil, zap.NewNop())
	return Routes(h, sessionMgr)
}

func TestLogout(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = testutil.WithUser(req, testutil.StaffUser())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestLogout_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
