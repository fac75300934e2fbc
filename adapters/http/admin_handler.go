package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hntran/reelist/internal/application/usecase/admin"
)

type AdminHandler struct {
	stats *admin.PlatformStatsUseCase
}

func NewAdminHandler(stats *admin.PlatformStatsUseCase) *AdminHandler {
	return &AdminHandler{stats: stats}
}

func (h *AdminHandler) PlatformStats(c *gin.Context) {
	out, err := h.stats.Execute(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
