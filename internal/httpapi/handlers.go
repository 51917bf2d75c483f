package httpapi

import (
	"errors"
	"net/http"
	"time"

	"creator-platform/internal/audit"
	"creator-platform/internal/auth"
	"creator-platform/internal/billing"
	"creator-platform/internal/callrequest"
	"creator-platform/internal/notify"
	"creator-platform/internal/reporting"
	"creator-platform/internal/session"
	"creator-platform/internal/wallet"
	"creator-platform/pkg/logger"
	"creator-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth     *auth.Manager
	Requests *callrequest.Service
	Sessions *session.Service
	Billing  *billing.Service
	Wallet   *wallet.Service
	Reports  *reporting.Service
	Audit    *audit.Service
	Hub      *notify.Hub

	// RingWindow bounds how long a new request may ring unanswered.
	RingWindow time.Duration

	// Redis backs the per-creator cap on simultaneously ringing requests.
	// When nil the cap is not enforced (tests, local runs without redis).
	Redis                *redis.Client
	MaxConcurrentPending int
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Call requests ---

type createRequestBody struct {
	CreatorID       string `json:"creator_id"`
	Type            string `json:"type"`
	ScheduledDate   string `json:"scheduled_date"`
	ScheduledTime   string `json:"scheduled_time"`
	DurationMinutes int    `json:"duration_minutes"`
	RatePerMinute   int64  `json:"rate_per_minute"`
	Message         string `json:"message,omitempty"`
	FanUsername     string `json:"fan_username"`
}

// CreateRequest opens a new fan-initiated call request and starts it ringing
// on the creator's notifier socket.
func (h Handlers) CreateRequest(c *gin.Context) {
	fanID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if h.Redis != nil && body.CreatorID != "" {
		// The slot's TTL matches the ring window, so a crashed process never
		// leaks a creator's cap.
		ok, err := utils.AcquirePendingCap(c.Request.Context(), h.Redis, utils.PendingCapKey(body.CreatorID), h.MaxConcurrentPending, h.RingWindow)
		if err != nil {
			logger.FromGin(c).Error("pending cap acquire failed", "creator_id", body.CreatorID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "creator has too many ringing requests"})
			return
		}
	}

	req, err := h.Requests.Create(c.Request.Context(), callrequest.CreateRequest{
		CreatorID:       body.CreatorID,
		FanID:           fanID,
		FanUsername:     body.FanUsername,
		Type:            callrequest.CallType(body.Type),
		ScheduledDate:   body.ScheduledDate,
		ScheduledTime:   body.ScheduledTime,
		DurationMinutes: body.DurationMinutes,
		RatePerMinute:   body.RatePerMinute,
		Message:         body.Message,
		PendingWindow:   h.RingWindow,
	})
	if err != nil {
		h.releasePendingCap(c, body.CreatorID)
		abortRequestError(c, err)
		return
	}

	if h.Hub != nil {
		h.Hub.Notify(c.Request.Context(), notify.RingEvent{
			TargetCreatorID: req.CreatorID,
			Event:           notify.EventIncomingRequest,
			Request:         &req,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"request": req})
}

// ListRequests returns the caller's call requests, optionally filtered by
// status (pending, accepted, all).
func (h Handlers) ListRequests(c *gin.Context) {
	creatorID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	filter := callrequest.ListFilter(c.Query("status"))
	requests, err := h.Requests.List(c.Request.Context(), creatorID, filter)
	if err != nil {
		abortRequestError(c, err)
		return
	}
	if requests == nil {
		requests = []callrequest.CallRequest{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

type acceptBody struct {
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
}

// AcceptRequest accepts a pending request, books its session, and opens the
// billing session the fan will pay against.
func (h Handlers) AcceptRequest(c *gin.Context) {
	creatorID, role, ok := identity(c)
	if !ok {
		return
	}

	var body acceptBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req, err := h.Requests.Accept(c.Request.Context(), c.Param("id"), creatorID, body.ScheduledDate, body.ScheduledTime)
	if err != nil {
		abortRequestError(c, err)
		return
	}

	// The request is no longer pending, so its ring slot frees regardless of
	// how booking goes.
	h.releasePendingCap(c, creatorID)

	sess, err := h.Sessions.BookFromRequest(c.Request.Context(), &req)
	if err != nil {
		logger.FromGin(c).Error("session booking failed after accept", "request_id", req.ID, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session booking failed"})
		return
	}

	if h.Billing != nil {
		if _, err := h.Billing.CreateForSession(c.Request.Context(), sess); err != nil {
			logger.FromGin(c).Error("billing session creation failed", "session_id", sess.ID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "billing session creation failed"})
			return
		}
	}

	h.logDecision(c, audit.EventTypeRequestAccepted, req.ID, creatorID, role, "")
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

type reasonBody struct {
	Reason string `json:"reason"`
}

// DeclineRequest declines a pending request with a required reason.
func (h Handlers) DeclineRequest(c *gin.Context) {
	creatorID, role, ok := identity(c)
	if !ok {
		return
	}

	var body reasonBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req, err := h.Requests.Decline(c.Request.Context(), c.Param("id"), creatorID, body.Reason)
	if err != nil {
		abortRequestError(c, err)
		return
	}

	h.releasePendingCap(c, creatorID)
	h.logDecision(c, audit.EventTypeRequestDeclined, req.ID, creatorID, role, body.Reason)
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// CancelRequest cancels an accepted request with a required reason and drops
// the booked session.
func (h Handlers) CancelRequest(c *gin.Context) {
	creatorID, role, ok := identity(c)
	if !ok {
		return
	}

	var body reasonBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req, err := h.Requests.Cancel(c.Request.Context(), c.Param("id"), creatorID, body.Reason)
	if err != nil {
		abortRequestError(c, err)
		return
	}

	if err := h.Sessions.CancelForRequest(c.Request.Context(), req.ID); err != nil {
		logger.FromGin(c).Error("session cancellation failed", "request_id", req.ID, "error", err)
	}

	h.logDecision(c, audit.EventTypeRequestCancelled, req.ID, creatorID, role, body.Reason)
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// --- Sessions / billing ---

// GetSession returns a booked session visible to either participant.
func (h Handlers) GetSession(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	sess, err := h.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortSessionError(c, err)
		return
	}
	if sess.CreatorID != userID && sess.FanID != userID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// GetSessionBilling serves the billing details a fan confirms payment with.
// Only the paying fan may fetch the client secret.
func (h Handlers) GetSessionBilling(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	sess, err := h.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortSessionError(c, err)
		return
	}
	if sess.FanID != userID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	b, err := h.Billing.Get(c.Request.Context(), sess.ID)
	if err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "billing session not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "billing lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"billing": b.Details()})
}

// ConfirmSessionBilling settles a confirmed billing session: the fan's token
// wallet is debited and the creator's credited, idempotently per session.
func (h Handlers) ConfirmSessionBilling(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if h.Wallet == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "wallet not configured"})
		return
	}

	sess, err := h.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortSessionError(c, err)
		return
	}
	if sess.FanID != userID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	b, err := h.Billing.Get(c.Request.Context(), sess.ID)
	if err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "billing session not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "billing lookup failed"})
		return
	}

	fanBal, _, err := h.Wallet.Transfer(c.Request.Context(), wallet.TransferRequest{
		FromUserID:     sess.FanID,
		FromWalletID:   wallet.DefaultWalletID(sess.FanID),
		ToUserID:       sess.CreatorID,
		ToWalletID:     wallet.DefaultWalletID(sess.CreatorID),
		AmountTokens:   b.TotalTokens,
		ExternalRef:    sess.ID,
		IdempotencyKey: "settle:" + sess.ID,
	})
	if err != nil {
		abortWalletError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"billing": b.Details(), "balance": fanBal})
}

// --- Wallet ---

func (h Handlers) GetWalletBalance(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	walletID := c.Param("wallet_id")
	if walletID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "wallet_id required"})
		return
	}
	bal, err := h.Wallet.GetBalance(c.Request.Context(), userID, walletID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "balance lookup failed"})
		return
	}
	c.JSON(http.StatusOK, bal)
}

type adminManualCreditRequest struct {
	UserID   string `json:"user_id"`
	WalletID string `json:"wallet_id"`

	AmountTokens   int64  `json:"amount_tokens"`
	Reason         string `json:"reason"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata,omitempty"`
}

// AdminManualCredit performs an admin-only wallet credit.
func (h Handlers) AdminManualCredit(c *gin.Context) {
	adminUserID, _ := auth.UserID(c.Request.Context())
	adminRole, _ := auth.Role(c.Request.Context())

	var req adminManualCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.WalletID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, wallet_id required"})
		return
	}

	action, ledger, bal, err := h.Wallet.AdminManualCredit(c.Request.Context(), req.UserID, req.WalletID, adminUserID, adminRole, wallet.AdminCreditRequest{
		AmountTokens:   req.AmountTokens,
		Reason:         req.Reason,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       req.Metadata,
	})
	if err != nil {
		abortWalletError(c, err)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.LogAdminAction(c.Request.Context(), adminUserID, adminRole, c.ClientIP(), "manual wallet credit", req.WalletID); err != nil {
			logger.FromGin(c).Error("audit append failed", "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"action": action, "ledger": ledger, "balance": bal})
}

// --- Reporting ---

func (h Handlers) RequestsSummary(c *gin.Context) {
	creatorID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	rng, ok := parseRange(c)
	if !ok {
		return
	}

	out, err := h.Reports.RequestsSummary(c.Request.Context(), reporting.RequestsSummaryRequest{CreatorID: creatorID, Range: rng})
	if err != nil {
		abortReportingError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) EarningsSummary(c *gin.Context) {
	creatorID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	rng, ok := parseRange(c)
	if !ok {
		return
	}

	out, err := h.Reports.EarningsSummary(c.Request.Context(), reporting.EarningsSummaryRequest{CreatorID: creatorID, Range: rng})
	if err != nil {
		abortReportingError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- helpers ---

func identity(c *gin.Context) (userID, role string, ok bool) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", "", false
	}
	role, _ = auth.Role(c.Request.Context())
	return userID, role, true
}

func parseRange(c *gin.Context) (reporting.TimeRange, bool) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
		return reporting.TimeRange{}, false
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
		return reporting.TimeRange{}, false
	}
	return reporting.TimeRange{From: from, To: to}, true
}

// releasePendingCap frees one ring slot for a creator. Best-effort: the
// slot's TTL reclaims it anyway.
func (h Handlers) releasePendingCap(c *gin.Context, creatorID string) {
	if h.Redis == nil || creatorID == "" {
		return
	}
	if err := utils.ReleasePendingCap(c.Request.Context(), h.Redis, utils.PendingCapKey(creatorID)); err != nil {
		logger.FromGin(c).Error("pending cap release failed", "creator_id", creatorID, "error", err)
	}
}

func (h Handlers) logDecision(c *gin.Context, eventType audit.EventType, requestID, actorUserID, actorRole, reason string) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.LogRequestDecision(c.Request.Context(), eventType, requestID, actorUserID, actorRole, reason); err != nil {
		logger.FromGin(c).Error("audit append failed", "request_id", requestID, "error", err)
	}
}

func abortRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, callrequest.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call request not found"})
	case errors.Is(err, callrequest.ErrNotRecipient):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, callrequest.ErrInvalidTransition), errors.Is(err, callrequest.ErrStatusConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, callrequest.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func abortSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, session.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func abortWalletError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wallet.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
	case errors.Is(err, wallet.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, wallet.ErrInsufficientFunds):
		c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "insufficient balance"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func abortReportingError(c *gin.Context, err error) {
	if errors.Is(err, reporting.ErrInvalidRequest) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
