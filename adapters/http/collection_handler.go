package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hntran/reelist/internal/application/store/collectionstore"
	"github.com/hntran/reelist/pkg/apperror"
)

type CollectionHandler struct {
	store *collectionstore.Store
}

func NewCollectionHandler(store *collectionstore.Store) *CollectionHandler {
	return &CollectionHandler{store: store}
}

func (h *CollectionHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      h.store.Status().String(),
		"collections": h.store.Collections(),
	})
}

func (h *CollectionHandler) Status(c *gin.Context) {
	resp := gin.H{"status": h.store.Status().String()}
	if err := h.store.HydrationErr(); err != nil {
		resp["error"] = "Could not load your collections"
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CollectionHandler) RetryHydration(c *gin.Context) {
	h.store.Retry()
	c.JSON(http.StatusAccepted, gin.H{"status": h.store.Status().String()})
}

func (h *CollectionHandler) SetActive(c *gin.Context) {
	if err := h.store.SetActive(c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.store.Active())
}

func (h *CollectionHandler) Create(c *gin.Context) {
	var req CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for collection create", err))
		return
	}

	created, err := h.store.CreateCollection(req.Name)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *CollectionHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteCollection(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CollectionHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for settings update", err))
		return
	}

	updated, err := h.store.UpdateSettings(c.Param("id"), collectionstore.Settings{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *CollectionHandler) RegenerateToken(c *gin.Context) {
	token, err := h.store.RegenerateToken(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shareToken": token})
}

func (h *CollectionHandler) ToggleItem(c *gin.Context) {
	var req ToggleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for item toggle", err))
		return
	}

	added, err := h.store.ToggleItem(c.Request.Context(), req.Item)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"added":      added,
		"collection": h.store.Active(),
	})
}

func (h *CollectionHandler) UpdateFavoriteSlot(c *gin.Context) {
	var req FavoriteSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for favorite slot", err))
		return
	}

	if err := h.store.UpdateFavoriteSlot(req.Slot, req.ItemID, req.Kind); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.store.Active())
}

func (h *CollectionHandler) RefreshStaleDetail(c *gin.Context) {
	refreshed, err := h.store.RefreshStaleDetail(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": refreshed})
}
