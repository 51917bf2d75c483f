package wallet

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"creator-platform/internal/auth"
	"creator-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

const (
	headerWalletID        = "X-Wallet-Id"
	headerEstimatedTokens = "X-Estimated-Tokens"
)

// BalanceService is the minimal wallet service interface needed by middleware.
type BalanceService interface {
	GetBalance(ctx context.Context, userID, walletID string) (Balance, error)
}

// RequireSufficientBalance blocks the request when the caller's token balance
// is below the estimated charge (rate times duration for a call request).
//
// - Reads wallet_id from header: X-Wallet-Id
// - Reads the estimated token charge from header: X-Estimated-Tokens (int64)
// - Uses auth context for user_id and role
//
// Admins bypass the check.
func RequireSufficientBalance(svc BalanceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := auth.Role(c.Request.Context())
		if rbac.IsAdmin(role) {
			c.Next()
			return
		}

		userID, err := auth.UserID(c.Request.Context())
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_id required"})
			return
		}

		walletID := strings.TrimSpace(c.GetHeader(headerWalletID))
		if walletID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "wallet id required"})
			return
		}

		estStr := strings.TrimSpace(c.GetHeader(headerEstimatedTokens))
		if estStr == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "estimated tokens required"})
			return
		}
		est, err := strconv.ParseInt(estStr, 10, 64)
		if err != nil || est <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "estimated tokens invalid"})
			return
		}

		bal, err := svc.GetBalance(c.Request.Context(), userID, walletID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "balance lookup failed"})
			return
		}
		if bal.BalanceTokens < est {
			// 402 Payment Required is semantically appropriate.
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "insufficient token balance"})
			return
		}

		c.Next()
	}
}
