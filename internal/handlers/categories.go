package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catalogadmin/internal/models"
	"catalogadmin/internal/repository"
)

type categoryCreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type categoryUpdateRequest struct {
	Name        *string                     `json:"name" binding:"omitempty,min=1"`
	Description repository.Nullable[string] `json:"description"`
}

func (h *Handler) createCategory(c *gin.Context) {
	var req categoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	category := models.Category{Name: req.Name, Description: req.Description}
	if err := h.categories.Create(c.Request.Context(), &category); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) listCategories(c *gin.Context) {
	page, err := pageQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.categories.List(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Category]{Items: items, Total: total})
}

func (h *Handler) getCategory(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	category, err := h.categories.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req categoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	category, err := h.categories.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	patch := repository.CategoryPatch{Name: req.Name, Description: req.Description}
	if err := h.categories.Update(c.Request.Context(), category, patch); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.assets.DeleteCategory(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
