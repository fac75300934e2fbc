package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hntran/reelist/internal/application/usecase/share"
	"github.com/hntran/reelist/pkg/apperror"
)

type ShareHandler struct {
	resolve *share.ResolveUseCase
}

func NewShareHandler(resolve *share.ResolveUseCase) *ShareHandler {
	return &ShareHandler{resolve: resolve}
}

// Resolve serves shared collection views. Modern links carry ?token=, older
// ones carry ?list=<collection id>, and the oldest carry ?ids=1,2,3 with the
// item ids inlined.
func (h *ShareHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()

	if token := c.Query("token"); token != "" {
		viewerID, _ := GetUserIDFromGinContext(c)
		view, err := h.resolve.ResolveByToken(ctx, token, viewerID)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, view)
		return
	}

	if listID := c.Query("list"); listID != "" {
		view, err := h.resolve.ResolveLegacyList(ctx, listID)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, view)
		return
	}

	if raw := c.Query("ids"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			c.Error(apperror.NewInvalidInput("ids must be a comma separated list of numbers", err))
			return
		}
		view, err := h.resolve.ResolveIDList(ctx, ids)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, view)
		return
	}

	c.Error(apperror.NewInvalidInput("one of token, list or ids is required", nil))
}

func parseIDList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
