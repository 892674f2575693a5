// Package assets orchestrates uploads and deletions that touch both the
// database and the image/document storage roots.
package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"catalogadmin/internal/metrics"
	"catalogadmin/internal/models"
	"catalogadmin/internal/repository"
	"catalogadmin/internal/storage"
)

// Deps are the collaborators of a Service. Metrics and Logger may be nil.
type Deps struct {
	Categories *repository.CategoryRepository
	Products   *repository.ProductRepository
	Files      *repository.FileRepository
	Images     *storage.Dir
	Documents  *storage.Dir
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
}

type Service struct {
	categories *repository.CategoryRepository
	products   *repository.ProductRepository
	files      *repository.FileRepository
	images     *storage.Dir
	documents  *storage.Dir
	metrics    *metrics.Recorder
	logger     *slog.Logger
}

func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		categories: d.Categories,
		products:   d.Products,
		files:      d.Files,
		images:     d.Images,
		documents:  d.Documents,
		metrics:    d.Metrics,
		logger:     logger,
	}
}

// DocumentUpload is the confirmation returned for a stored document.
type DocumentUpload struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	ProductID uint   `json:"product_id"`
	Message   string `json:"message"`
}

// UploadImage stores a new image for the product and records its path. A
// previous image is removed from storage once the new path is committed.
func (s *Service) UploadImage(ctx context.Context, productID uint, filename string, r io.Reader) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	cr := &countingReader{r: r}
	rel, err := s.images.Write(ctx, filename, cr, "", storage.ImageExtensions)
	s.metrics.Upload(metrics.Image, cr.n, err)
	if err != nil {
		return nil, err
	}

	var previous string
	if product.Image != nil {
		previous = *product.Image
	}
	if err := s.products.Update(ctx, product, repository.ProductPatch{Image: repository.Some(rel)}); err != nil {
		s.discard(s.images, metrics.Image, rel)
		return nil, fmt.Errorf("recording image for product %d: %w", productID, err)
	}
	if previous != "" && previous != rel {
		s.remove(s.images, metrics.Image, previous)
	}

	s.logger.Info("product image uploaded",
		slog.Uint64("product_id", uint64(productID)),
		slog.String("path", rel),
		slog.Int64("size_bytes", cr.n),
	)
	return product, nil
}

// UploadDocument stores a document under the product's directory and
// creates the File record pointing at it.
func (s *Service) UploadDocument(ctx context.Context, productID uint, filename string, r io.Reader) (*DocumentUpload, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	subdir := storage.SanitizeSubdir(product.Name)
	cr := &countingReader{r: r}
	rel, err := s.documents.Write(ctx, filename, cr, subdir, storage.DocumentExtensions)
	s.metrics.Upload(metrics.Document, cr.n, err)
	if err != nil {
		return nil, err
	}

	f := &models.File{Name: filename, Path: rel, ProductID: product.ID}
	if err := s.files.Create(ctx, f); err != nil {
		s.discard(s.documents, metrics.Document, rel)
		return nil, fmt.Errorf("recording document for product %d: %w", productID, err)
	}

	s.logger.Info("product document uploaded",
		slog.Uint64("product_id", uint64(productID)),
		slog.Uint64("file_id", uint64(f.ID)),
		slog.String("path", rel),
		slog.Int64("size_bytes", cr.n),
	)

	dest := "/files/"
	if subdir != "" {
		dest += subdir + "/"
	}
	return &DocumentUpload{
		ID:        f.ID,
		Name:      f.Name,
		Path:      f.Path,
		ProductID: f.ProductID,
		Message:   "file uploaded to " + dest,
	}, nil
}

// DeleteCategory deletes the category, its products and their files, then
// clears their assets from storage.
func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	orphans, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.cleanup(orphans)
	return nil
}

// DeleteProduct deletes the product and its files, then clears their assets
// from storage.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	orphans, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.cleanup(orphans)
	return nil
}

// DeleteFile deletes the file record, then its document from storage.
func (s *Service) DeleteFile(ctx context.Context, id uint) error {
	orphans, err := s.files.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.cleanup(orphans)
	return nil
}

func (s *Service) cleanup(o repository.Orphans) {
	for _, p := range o.Images {
		s.remove(s.images, metrics.Image, p)
	}
	for _, p := range o.Files {
		s.remove(s.documents, metrics.Document, p)
	}
}

func (s *Service) remove(dir *storage.Dir, class, rel string) {
	removed := dir.Remove(rel)
	s.metrics.Removal(class, removed)
	if !removed {
		s.logger.Debug("stored asset not removed", slog.String("asset_class", class), slog.String("path", rel))
	}
}

// discard drops a file that was stored but could not be recorded.
func (s *Service) discard(dir *storage.Dir, class, rel string) {
	s.remove(dir, class, rel)
	s.logger.Warn("discarded unrecorded upload", slog.String("asset_class", class), slog.String("path", rel))
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
