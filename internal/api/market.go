package api

import (
	"crypto/subtle"
	"net/http"

	"pazaryeri/internal/assistant"
	"pazaryeri/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const cronSecretHeader = "X-Cron-Secret"

// AIAssistant serves the listing helper. Signed-in users are limited to
// AIDailyLimit requests per AIWindow; anonymous requests are not counted.
func (h *APIHandler) AIAssistant(c *gin.Context) {
	var req assistant.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, eris.Wrap(errBadRequest, err.Error()), zap.String("action", "ai_assistant"))
		return
	}
	fields := []zap.Field{zap.String("action", req.Action), zap.String("title", req.Title)}

	if user, ok := auth.CurrentUser(c); ok && h.deps.Limiter != nil && h.deps.AIDailyLimit > 0 {
		fields = append(fields, zap.String("user_id", user.ID))
		if err := h.deps.Limiter.Hit(c.Request.Context(), user.ID, h.deps.AIDailyLimit, AIWindow, h.now()); err != nil {
			h.fail(c, err, fields...)
			return
		}
	}

	resp, err := h.deps.Assistant.Handle(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, fields...)
		return
	}

	body := gin.H{"success": true, "result": resp.Result}
	if resp.Price != nil {
		body["price"] = *resp.Price
	}
	c.JSON(http.StatusOK, body)
}

// RefreshMarket runs one refresher sweep. It is meant for a scheduler and
// checks the shared cron secret when one is configured.
func (h *APIHandler) RefreshMarket(c *gin.Context) {
	if !h.cronAuthorized(c) {
		return
	}

	report, err := h.deps.Sweeper.Run(c.Request.Context())
	if err != nil {
		h.fail(c, err, zap.String("action", "refresh_market"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"refreshed": report.Refreshed,
		"errors":    report.Errors,
		"deleted":   report.Deleted,
		"cost":      report.Cost,
	})
}

// cronAuthorized checks the shared cron secret and writes a 401 when it
// does not match. An empty secret disables the check.
func (h *APIHandler) cronAuthorized(c *gin.Context) bool {
	secret := h.deps.CronSecret
	if secret == "" {
		return true
	}
	got := c.GetHeader(cronSecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Yetkisiz istek"})
		return false
	}
	return true
}

func (h *APIHandler) GetSnapshot(c *gin.Context) {
	key := c.Param("key")
	snap, err := h.deps.Snapshots.FindByKey(c.Request.Context(), key)
	if err != nil {
		h.fail(c, err, zap.String("action", "get_snapshot"), zap.String("product_key", key))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"snapshot": snap,
		"fresh":    snap.IsFresh(h.now()),
	})
}
