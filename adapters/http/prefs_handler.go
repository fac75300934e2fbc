package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hntran/reelist/adapters/localstore"
	"github.com/hntran/reelist/pkg/apperror"
)

type PrefsHandler struct {
	local *localstore.Store
}

func NewPrefsHandler(local *localstore.Store) *PrefsHandler {
	return &PrefsHandler{local: local}
}

func (h *PrefsHandler) GetTheme(c *gin.Context) {
	theme := h.local.Theme()
	if theme == "" {
		theme = "dark"
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

func (h *PrefsHandler) SaveTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for theme", err))
		return
	}

	if err := h.local.SaveTheme(req.Theme); err != nil {
		c.Error(apperror.NewInternal("failed to persist theme", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}
