package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hntran/reelist/internal/application/store/reviewstore"
	"github.com/hntran/reelist/pkg/apperror"
)

type ReviewHandler struct {
	store *reviewstore.Store
}

func NewReviewHandler(store *reviewstore.Store) *ReviewHandler {
	return &ReviewHandler{store: store}
}

func (h *ReviewHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.All())
}

func (h *ReviewHandler) Get(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("item id must be numeric", err))
		return
	}

	r, ok := h.store.Get(itemID)
	if !ok {
		c.Error(apperror.NewNotFound("review", c.Param("itemId")))
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReviewHandler) Save(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("item id must be numeric", err))
		return
	}

	var req SaveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for review", err))
		return
	}

	saved, err := h.store.Save(c.Request.Context(), itemID, req.Rating, req.Comment, req.HasSpoiler)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("itemId"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("item id must be numeric", err))
		return
	}

	if err := h.store.Delete(c.Request.Context(), itemID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
