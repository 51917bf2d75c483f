package wallet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"creator-platform/internal/auth"
	"creator-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

type fakeBalanceService struct {
	bal Balance
	err error
}

func (f fakeBalanceService) GetBalance(ctx context.Context, userID, walletID string) (Balance, error) {
	return f.bal, f.err
}

func balanceRouter(svc BalanceService, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), "u", role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}, RequireSufficientBalance(svc), func(c *gin.Context) {
		c.Status(200)
	})
	return r
}

func balanceRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Wallet-Id", "w1")
	req.Header.Set("X-Estimated-Tokens", "100")
	return req
}

func TestRequireSufficientBalance_BlocksWhenInsufficient(t *testing.T) {
	svc := fakeBalanceService{bal: Balance{WalletID: "w1", Currency: TokenCurrency, BalanceTokens: 50}}
	r := balanceRouter(svc, rbac.RoleFan)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, balanceRequest())
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", w.Code)
	}
}

func TestRequireSufficientBalance_AllowsWhenCovered(t *testing.T) {
	svc := fakeBalanceService{bal: Balance{WalletID: "w1", Currency: TokenCurrency, BalanceTokens: 100}}
	r := balanceRouter(svc, rbac.RoleFan)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, balanceRequest())
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireSufficientBalance_AllowsAdminOverride(t *testing.T) {
	svc := fakeBalanceService{bal: Balance{WalletID: "w1", Currency: TokenCurrency, BalanceTokens: 0}}
	r := balanceRouter(svc, rbac.RoleAdmin)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, balanceRequest())
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireSufficientBalance_RejectsBadHeaders(t *testing.T) {
	svc := fakeBalanceService{bal: Balance{WalletID: "w1", BalanceTokens: 100}}
	r := balanceRouter(svc, rbac.RoleFan)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Estimated-Tokens", "100")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing wallet header: expected 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Wallet-Id", "w1")
	req.Header.Set("X-Estimated-Tokens", "nope")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad estimate header: expected 400, got %d", w.Code)
	}
}
