package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hntran/reelist/adapters/localstore"
	"github.com/hntran/reelist/internal/domain/session"
	"github.com/hntran/reelist/pkg/apperror"
)

// SessionHandler exposes the local identities. Signing in with credentials
// goes through the auth endpoints instead; this handler only switches to the
// identities that never touch cloud rows.
type SessionHandler struct {
	provider *session.Provider
	local    *localstore.Store
}

func NewSessionHandler(provider *session.Provider, local *localstore.Store) *SessionHandler {
	return &SessionHandler{provider: provider, local: local}
}

func (h *SessionHandler) Current(c *gin.Context) {
	identity, _ := h.provider.Current()
	c.JSON(http.StatusOK, gin.H{
		"role":  identity.Role,
		"local": identity.Local(),
	})
}

func (h *SessionHandler) EnterGuest(c *gin.Context) {
	h.provider.Switch(session.Guest())
	c.JSON(http.StatusOK, gin.H{"role": session.RoleGuest})
}

// EnterAdmin switches to the admin bypass identity. It is only honoured on
// installs that carry the local admin marker.
func (h *SessionHandler) EnterAdmin(c *gin.Context) {
	if !h.local.AdminMarker() {
		c.Error(apperror.NewPermissionDenied("admin mode is not enabled on this install"))
		return
	}
	h.provider.Switch(session.Admin())
	c.JSON(http.StatusOK, gin.H{"role": session.RoleAdmin})
}
