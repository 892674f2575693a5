package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"catalogadmin/internal/repository"
	"catalogadmin/internal/services/assets"
	"catalogadmin/internal/storage"
)

var errBadRequest = errors.New("bad request")

// multipart framing allowance on top of the payload limit
const formOverhead = 1 << 20

// Handler serves the catalog admin API.
type Handler struct {
	categories     *repository.CategoryRepository
	products       *repository.ProductRepository
	files          *repository.FileRepository
	assets         *assets.Service
	maxUploadBytes int64
	logger         *slog.Logger
}

func New(categories *repository.CategoryRepository, products *repository.ProductRepository, files *repository.FileRepository,
	svc *assets.Service, maxUploadBytes int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		categories:     categories,
		products:       products,
		files:          files,
		assets:         svc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Register mounts every route on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	categories := rg.Group("/categories")
	categories.POST("", h.createCategory)
	categories.GET("", h.listCategories)
	categories.GET("/:id", h.getCategory)
	categories.PATCH("/:id", h.updateCategory)
	categories.DELETE("/:id", h.deleteCategory)

	products := rg.Group("/products")
	products.POST("", h.createProduct)
	products.GET("", h.listProducts)
	products.GET("/:id", h.getProduct)
	products.PATCH("/:id", h.updateProduct)
	products.DELETE("/:id", h.deleteProduct)
	products.POST("/:id/upload-image", h.uploadImage)

	files := rg.Group("/files")
	files.POST("", h.createFile)
	files.GET("", h.listFiles)
	files.POST("/upload", h.uploadDocument)
	files.GET("/:id", h.getFile)
	files.PATCH("/:id", h.updateFile)
	files.DELETE("/:id", h.deleteFile)
}

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// fail maps err onto a status code and a JSON body.
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		notFound *repository.NotFoundError
		badType  *storage.UnsupportedTypeError
		ioErr    *storage.StorageIOError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &badType):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   fmt.Sprintf("unsupported file type %q", badType.Ext),
			"allowed": badType.Allowed,
		})
	case errors.Is(err, storage.ErrMissingFilename),
		errors.Is(err, repository.ErrInvalidPage),
		errors.Is(err, errBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrFileTooLarge), errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     storage.ErrFileTooLarge.Error(),
			"max_bytes": h.maxUploadBytes,
		})
	case errors.As(err, &ioErr):
		h.logger.Error("storage write failed", slog.String("op", ioErr.Op), slog.String("error", ioErr.Err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
	default:
		h.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
	_ = c.Error(err)
}

func (h *Handler) badJSON(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context) (uint, error) {
	return parseID(c.Param("id"), "id")
}

func parseID(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errBadRequest, name)
	}
	return uint(id), nil
}

func pageQuery(c *gin.Context) (repository.Page, error) {
	page := repository.Page{Skip: 0, Limit: repository.DefaultLimit}
	if v := c.Query("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, fmt.Errorf("%w: skip must be an integer", errBadRequest)
		}
		page.Skip = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, fmt.Errorf("%w: limit must be an integer", errBadRequest)
		}
		page.Limit = n
	}
	return page, page.Validate()
}

func optionalID(c *gin.Context, name string) (*uint, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	id, err := parseID(v, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalBool(c *gin.Context, name string) (*bool, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a boolean", errBadRequest, name)
	}
	return &b, nil
}

// uploadedFile opens the multipart "file" field. The request body is capped
// so oversized uploads fail before they are spooled to disk.
func (h *Handler) uploadedFile(c *gin.Context) (multipart.File, string, error) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+formOverhead)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, "", err
		case errors.Is(err, http.ErrMissingFile):
			return nil, "", fmt.Errorf("%w: multipart field \"file\" is required", errBadRequest)
		default:
			return nil, "", fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	if header.Filename == "" {
		return nil, "", storage.ErrMissingFilename
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		return nil, "", storage.ErrFileTooLarge
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", &storage.StorageIOError{Op: "open upload", Err: err}
	}
	return f, header.Filename, nil
}

func closeQuietly(c io.Closer) { _ = c.Close() }
