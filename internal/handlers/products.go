package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catalogadmin/internal/models"
	"catalogadmin/internal/repository"
)

type productCreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	IsActive    *bool   `json:"is_active"`
	CategoryID  uint    `json:"category_id" binding:"required"`
}

type productUpdateRequest struct {
	Name        *string                     `json:"name" binding:"omitempty,min=1"`
	Description repository.Nullable[string] `json:"description"`
	Image       repository.Nullable[string] `json:"image"`
	IsActive    *bool                       `json:"is_active"`
	CategoryID  *uint                       `json:"category_id" binding:"omitempty,min=1"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req productCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    true,
		CategoryID:  req.CategoryID,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := h.products.Create(c.Request.Context(), &product); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) listProducts(c *gin.Context) {
	page, err := pageQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var filter repository.ProductFilter
	if filter.CategoryID, err = optionalID(c, "category_id"); err != nil {
		h.fail(c, err)
		return
	}
	if filter.IsActive, err = optionalBool(c, "is_active"); err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.products.List(c.Request.Context(), page, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Product]{Items: items, Total: total})
}

func (h *Handler) getProduct(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req productUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	patch := repository.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    req.IsActive,
		CategoryID:  req.CategoryID,
	}
	if err := h.products.Update(c.Request.Context(), product, patch); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.assets.DeleteProduct(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) uploadImage(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	file, filename, err := h.uploadedFile(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeQuietly(file)

	product, err := h.assets.UploadImage(c.Request.Context(), id, filename, file)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
