package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catalogadmin/internal/models"
	"catalogadmin/internal/repository"
)

type fileCreateRequest struct {
	Name      string `json:"name" binding:"required"`
	Path      string `json:"path" binding:"required"`
	ProductID uint   `json:"product_id" binding:"required"`
}

type fileUpdateRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1"`
	Path      *string `json:"path" binding:"omitempty,min=1"`
	ProductID *uint   `json:"product_id" binding:"omitempty,min=1"`
}

func (h *Handler) createFile(c *gin.Context) {
	var req fileCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	file := models.File{Name: req.Name, Path: req.Path, ProductID: req.ProductID}
	if err := h.files.Create(c.Request.Context(), &file); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (h *Handler) listFiles(c *gin.Context) {
	page, err := pageQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var filter repository.FileFilter
	if filter.ProductID, err = optionalID(c, "product_id"); err != nil {
		h.fail(c, err)
		return
	}
	items, total, err := h.files.List(c.Request.Context(), page, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.File]{Items: items, Total: total})
}

func (h *Handler) getFile(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	file, err := h.files.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

func (h *Handler) updateFile(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req fileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badJSON(c, err)
		return
	}
	file, err := h.files.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	patch := repository.FilePatch{Name: req.Name, Path: req.Path, ProductID: req.ProductID}
	if err := h.files.Update(c.Request.Context(), file, patch); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

func (h *Handler) deleteFile(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.assets.DeleteFile(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// uploadDocument stores a document for the product named by the product_id
// query (or form) parameter.
func (h *Handler) uploadDocument(c *gin.Context) {
	file, filename, err := h.uploadedFile(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer closeQuietly(file)

	// the form is already parsed under the body cap
	raw := c.Query("product_id")
	if raw == "" {
		raw = c.PostForm("product_id")
	}
	productID, err := parseID(raw, "product_id")
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.assets.UploadDocument(c.Request.Context(), productID, filename, file)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
