package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hntran/reelist/internal/application/usecase/views"
	"github.com/hntran/reelist/pkg/apperror"
)

type ViewHandler struct {
	derive *views.DeriveViewUseCase
}

func NewViewHandler(derive *views.DeriveViewUseCase) *ViewHandler {
	return &ViewHandler{derive: derive}
}

// Derive renders the active collection through the filter, sort, group and
// stats pipeline. All parameters are optional; the default view is every
// movie in the active collection, newest first, ungrouped.
func (h *ViewHandler) Derive(c *gin.Context) {
	var q ViewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(apperror.NewInvalidInput("invalid view query", err))
		return
	}

	out, err := h.derive.Execute(views.DeriveViewInput{
		Kind:   q.MediaKind(),
		Filter: q.FilterOptions(),
		Sort:   q.SortKey(),
		Group:  q.GroupDimension(),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
