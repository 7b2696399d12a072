package api

import (
	"net/http"

	"pazaryeri/internal/refresher"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RefreshEvent is one websocket message of a streamed sweep.
type RefreshEvent struct {
	Type   string            `json:"type"` // progress, done or error
	Done   int               `json:"done,omitempty"`
	Total  int               `json:"total,omitempty"`
	Key    string            `json:"product_key,omitempty"`
	Error  string            `json:"error,omitempty"`
	Report *refresher.Report `json:"report,omitempty"`
}

// StreamRefresh runs a sweep and reports every candidate over a websocket.
func (h *APIHandler) StreamRefresh(c *gin.Context) {
	if !h.cronAuthorized(c) {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("action", "refresh_market_stream"))
	report, err := h.deps.Sweeper.RunWithProgress(c.Request.Context(), func(done, total int, key string, itemErr error) {
		ev := RefreshEvent{Type: "progress", Done: done, Total: total, Key: key}
		if itemErr != nil {
			ev.Error = itemErr.Error()
		}
		if werr := conn.WriteJSON(ev); werr != nil {
			log.Debug("progress write failed", zap.Error(werr))
		}
	})

	final := RefreshEvent{Type: "done", Report: &report}
	if err != nil {
		_, msg := statusFor(err)
		log.Error("sweep failed", zap.Error(err))
		final = RefreshEvent{Type: "error", Error: msg}
	}
	if err := conn.WriteJSON(final); err != nil {
		log.Debug("final write failed", zap.Error(err))
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
