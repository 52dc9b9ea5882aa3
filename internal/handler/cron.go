package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Github-Sonali/ai-calendar/internal/notify"
)

// CronHandler exposes the due-reminder sweep to an external scheduler. The
// endpoint is idempotent: claimed reminders are never processed twice.
type CronHandler struct {
	sweeper *notify.Sweeper
	secret  string
	logger  *slog.Logger
}

func NewCronHandler(sw *notify.Sweeper, secret string, logger *slog.Logger) *CronHandler {
	return &CronHandler{sweeper: sw, secret: secret, logger: logger}
}

// Sweep handles POST /api/cron/notifications
func (h *CronHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	processed, err := h.sweeper.RunOnce()
	if err != nil {
		h.logger.Error("cron sweep", "error", err)
		writeError(w, http.StatusInternalServerError, "sweep failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"processed": processed})
}

func (h *CronHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}
