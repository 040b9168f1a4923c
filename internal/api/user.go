// internal/api/user.go
package api

import (
	"net/http"

	"github.com/google/uuid"
)

const userCookieName = "denken_user"

// userID returns the anonymous identifier for the requesting browser,
// minting and setting one on first contact. Exam sessions and results carry
// it as the optional owning-user id; there is no login.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) string {
	sess, err := h.cookies.Get(r, userCookieName)
	if err != nil {
		// A stale or tampered cookie just gets replaced.
		h.logger.Warn("unreadable user cookie, reissuing", "error", err)
	}

	if id, ok := sess.Values["id"].(string); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	sess.Values["id"] = id
	if err := sess.Save(r, w); err != nil {
		h.logger.Warn("failed to set user cookie", "error", err)
	}
	return id
}
