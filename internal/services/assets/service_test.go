package assets_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalogadmin/internal/metrics"
	"catalogadmin/internal/models"
	"catalogadmin/internal/repository"
	"catalogadmin/internal/services/assets"
	"catalogadmin/internal/storage"
	"catalogadmin/internal/testutil"
)

type fixture struct {
	db     *gorm.DB
	svc    *assets.Service
	images *storage.Dir
	docs   *storage.Dir
	repos  struct {
		products *repository.ProductRepository
		files    *repository.FileRepository
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{db: testutil.NewDB(t)}

	var err error
	f.images, err = storage.NewDir(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)
	f.docs, err = storage.NewDir(filepath.Join(t.TempDir(), "files"))
	require.NoError(t, err)
	rec, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	f.repos.products = repository.NewProductRepository(f.db)
	f.repos.files = repository.NewFileRepository(f.db)
	f.svc = assets.NewService(assets.Deps{
		Categories: repository.NewCategoryRepository(f.db),
		Products:   f.repos.products,
		Files:      f.repos.files,
		Images:     f.images,
		Documents:  f.docs,
		Metrics:    rec,
	})
	return f
}

func exists(t *testing.T, dir *storage.Dir, rel string) bool {
	t.Helper()
	full, err := dir.Path(rel)
	require.NoError(t, err)
	_, err = os.Stat(full)
	return err == nil
}

func entries(t *testing.T, dir *storage.Dir) []os.DirEntry {
	t.Helper()
	list, err := os.ReadDir(dir.Root())
	require.NoError(t, err)
	return list
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := testutil.FixtureCategory(t, f.db, "Tools")
	p := testutil.FixtureProduct(t, f.db, c.ID, "Drill", nil)

	got, err := f.svc.UploadImage(ctx, p.ID, "drill.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.NotNil(t, got.Image)
	assert.Regexp(t, `^[0-9a-f-]{36}\.png$`, *got.Image)

	full, err := f.images.Path(*got.Image)
	require.NoError(t, err)
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	reloaded, err := f.repos.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, *got.Image, *reloaded.Image)
}

func TestUploadImageReplacesPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := testutil.FixtureCategory(t, f.db, "Tools")
	p := testutil.FixtureProduct(t, f.db, c.ID, "Drill", nil)

	first, err := f.svc.UploadImage(ctx, p.ID, "drill.png", strings.NewReader("one"))
	require.NoError(t, err)
	oldPath := *first.Image

	second, err := f.svc.UploadImage(ctx, p.ID, "drill.webp", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, oldPath, *second.Image)
	assert.False(t, exists(t, f.images, oldPath), "old image must be gone")
	assert.True(t, exists(t, f.images, *second.Image))
	assert.Len(t, entries(t, f.images), 1)
}

func TestUploadImageToleratesMissingPrevious(t *testing.T) {
	f := newFixture(t)
	c := testutil.FixtureCategory(t, f.db, "Tools")
	p := testutil.FixtureProduct(t, f.db, c.ID, "Drill", testutil.Ptr("vanished.png"))

	got, err := f.svc.UploadImage(context.Background(), p.ID, "drill.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEqual(t, "vanished.png", *got.Image)
}

func TestUploadImageUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UploadImage(context.Background(), 404, "drill.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, entries(t, f.images))
}

func TestUploadImageRejectedKeepsCurrentImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := testutil.FixtureCategory(t, f.db, "Tools")
	p := testutil.FixtureProduct(t, f.db, c.ID, "Drill", nil)

	first, err := f.svc.UploadImage(ctx, p.ID, "drill.png", strings.NewReader("one"))
	require.NoError(t, err)

	_, err = f.svc.UploadImage(ctx, p.ID, "drill.pdf", strings.NewReader("nope"))
	var typeErr *storage.UnsupportedTypeError
	require.ErrorAs(t, err, &typeErr)

	_, err = f.svc.UploadImage(ctx, p.ID, "", strings.NewReader("nope"))
	assert.ErrorIs(t, err, storage.ErrMissingFilename)

	reloaded, err := f.repos.products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.Image, *reloaded.Image)
	assert.True(t, exists(t, f.images, *first.Image))
}

func TestUploadDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := testutil.FixtureCategory(t, f.db, "Tools")
	p := testutil.FixtureProduct(t, f.db, c.ID, "Drill", nil)

	res, err := f.svc.UploadDocument(ctx, p.ID, "manual.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	assert.Regexp(t, `^Drill/[0-9a-f-]{36}\.pdf$`, res.Path)
	assert.Equal(t, "manual.pdf", res.Name)
	assert.Equal(t, p.ID, res.ProductID)
	assert.Contains(t, res.Message, "/files/Drill/")
	assert.True(t, exists(t, f.docs, res.Path))

	rec, err := f.repos.files.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Path, rec.Path)
}

func TestUploadDocumentSanitizesProductName(t *testing.T) {
	f := newFixture(t)
	c := testutil.FixtureCategory(t, f.db, "Tools")
	p := testutil.FixtureProduct(t, f.db, c.ID, "../Drill / Driver", nil)

	res, err := f.svc.UploadDocument(context.Background(), p.ID, "manual.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Path, "_Drill_Driver/"), res.Path)
	assert.Contains(t, res.Message, "/files/_Drill_Driver/")
}

func TestUploadDocumentRejectedType(t *testing.T) {
	f := newFixture(t)
	c := testutil.FixtureCategory(t, f.db, "Tools")
	p := testutil.FixtureProduct(t, f.db, c.ID, "Drill", nil)

	_, err := f.svc.UploadDocument(context.Background(), p.ID, "setup.exe", strings.NewReader("MZ"))
	var typeErr *storage.UnsupportedTypeError
	require.ErrorAs(t, err, &typeErr)

	var n int64
	f.db.Model(&models.File{}).Count(&n)
	assert.Zero(t, n)
	assert.Empty(t, entries(t, f.docs))
}

func TestUploadDocumentDiscardsFileWhenRecordFails(t *testing.T) {
	f := newFixture(t)
	c := testutil.FixtureCategory(t, f.db, "Tools")
	p := testutil.FixtureProduct(t, f.db, c.ID, "Drill", nil)
	require.NoError(t, f.db.Migrator().DropTable(&models.File{}))

	_, err := f.svc.UploadDocument(context.Background(), p.ID, "manual.pdf", strings.NewReader("%PDF"))
	require.Error(t, err)
	assert.Empty(t, entries(t, f.docs), "stored bytes and the product directory must be cleaned up")
}

func TestDeleteProductCleansStorage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := testutil.FixtureCategory(t, f.db, "Tools")
	p := testutil.FixtureProduct(t, f.db, c.ID, "Drill", nil)

	img, err := f.svc.UploadImage(ctx, p.ID, "drill.png", strings.NewReader("img"))
	require.NoError(t, err)
	doc, err := f.svc.UploadDocument(ctx, p.ID, "manual.pdf", strings.NewReader("doc"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteProduct(ctx, p.ID))

	assert.False(t, exists(t, f.images, *img.Image))
	assert.Empty(t, entries(t, f.docs), "document and its product directory are removed")
	_, err = f.repos.files.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeleteProduct(ctx, p.ID), repository.ErrNotFound)
}

func TestDeleteProductWithMissingAssets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := testutil.FixtureCategory(t, f.db, "Tools")
	p := testutil.FixtureProduct(t, f.db, c.ID, "Drill", testutil.Ptr("gone.png"))
	testutil.FixtureFile(t, f.db, p.ID, "manual.pdf", "Drill/gone.pdf")

	require.NoError(t, f.svc.DeleteProduct(ctx, p.ID))
	_, err := f.repos.products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteCategoryCleansStorage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := testutil.FixtureCategory(t, f.db, "Tools")
	drill := testutil.FixtureProduct(t, f.db, c.ID, "Drill", nil)
	saw := testutil.FixtureProduct(t, f.db, c.ID, "Saw", nil)

	_, err := f.svc.UploadImage(ctx, drill.ID, "drill.png", strings.NewReader("img"))
	require.NoError(t, err)
	_, err = f.svc.UploadDocument(ctx, drill.ID, "manual.pdf", strings.NewReader("doc"))
	require.NoError(t, err)
	_, err = f.svc.UploadDocument(ctx, saw.ID, "manual.pdf", strings.NewReader("doc"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCategory(ctx, c.ID))
	assert.Empty(t, entries(t, f.images))
	assert.Empty(t, entries(t, f.docs))

	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, c.ID), repository.ErrNotFound)
}

func TestDeleteFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := testutil.FixtureCategory(t, f.db, "Tools")
	p := testutil.FixtureProduct(t, f.db, c.ID, "Drill", nil)

	a, err := f.svc.UploadDocument(ctx, p.ID, "a.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := f.svc.UploadDocument(ctx, p.ID, "b.pdf", strings.NewReader("b"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteFile(ctx, a.ID))
	assert.False(t, exists(t, f.docs, a.Path))
	assert.True(t, exists(t, f.docs, b.Path), "sibling document and directory stay")

	require.NoError(t, f.svc.DeleteFile(ctx, b.ID))
	assert.Empty(t, entries(t, f.docs))

	assert.ErrorIs(t, f.svc.DeleteFile(ctx, a.ID), repository.ErrNotFound)
}
