package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hntran/reelist/adapters/catalog"
	"github.com/hntran/reelist/internal/domain/media"
	"github.com/hntran/reelist/pkg/apperror"
)

type CatalogHandler struct {
	client catalog.Client
}

func NewCatalogHandler(client catalog.Client) *CatalogHandler {
	return &CatalogHandler{client: client}
}

func (h *CatalogHandler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.Error(apperror.NewInvalidInput("query is required", nil))
		return
	}

	page := queryInt(c, "page", 1)
	year := queryInt(c, "year", 0)

	result, err := h.client.Search(c.Request.Context(), query, page, pathKind(c), year)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) Discover(c *gin.Context) {
	opts := catalog.DiscoverOptions{
		SortBy:  c.Query("sortBy"),
		GenreID: queryInt(c, "genre", 0),
		Year:    queryInt(c, "year", 0),
	}

	result, err := h.client.Discover(c.Request.Context(), queryInt(c, "page", 1), opts, pathKind(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) Genres(c *gin.Context) {
	genres, err := h.client.Genres(c.Request.Context(), pathKind(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

func (h *CatalogHandler) Detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("catalog id must be numeric", err))
		return
	}

	item, err := h.client.Detail(c.Request.Context(), id, pathKind(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func pathKind(c *gin.Context) media.Kind {
	if c.Param("kind") == string(media.KindTV) {
		return media.KindTV
	}
	return media.KindMovie
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
