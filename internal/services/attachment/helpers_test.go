package attachment

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/anoixa/taskboard/database"
	"github.com/anoixa/taskboard/database/models"
	"github.com/anoixa/taskboard/database/repo/attachments"
	"github.com/anoixa/taskboard/storage"
	"github.com/anoixa/taskboard/utils/generator"
	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 每个测试一个独立的内存数据库
func setupTestDB(t *testing.T) database.Provider {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return database.NewGormProviderFromDB(db, "sqlite")
}

type testEnv struct {
	db      database.Provider
	fs      afero.Fs
	storage *storage.LocalStorage
	repo    *attachments.Repository
	deps    Dependencies
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	fs := afero.NewMemMapFs()
	store := storage.NewLocalStorageFs(fs)
	repo := attachments.NewRepository(db)

	return &testEnv{
		db:      db,
		fs:      fs,
		storage: store,
		repo:    repo,
		deps: Dependencies{
			Storage:   store,
			Store:     repo,
			Namer:     NewNamer(generator.NewPathGenerator(), store),
			Processor: NewProcessor(store, 2),
			URLs:      NewURLBuilder("/uploads"),
		},
	}
}

// files 返回存储中全部文件
func (e *testEnv) files(t *testing.T) []string {
	t.Helper()

	var out []string
	for _, dir := range sweepDirs() {
		err := e.storage.Walk(context.Background(), dir, func(info storage.FileInfo) error {
			out = append(out, info.Path)
			return nil
		})
		require.NoError(t, err)
	}
	return out
}

func (e *testEnv) exists(t *testing.T, p string) bool {
	t.Helper()
	ok, err := e.storage.Exists(context.Background(), p)
	require.NoError(t, err)
	return ok
}

func (e *testEnv) imageSize(t *testing.T, p string) (int, int) {
	t.Helper()
	dims, err := e.deps.Processor.Probe(context.Background(), p)
	require.NoError(t, err)
	return dims.Width, dims.Height
}

func testUploadConfig() UploadConfig {
	return UploadConfig{
		ConfiguredLimit:   10 * 1024 * 1024,
		AllowedExtensions: []string{"jpg", "jpeg", "png", "gif", "webp", "pdf", "txt", "mp4"},
		ImageMaxWidth:     1920,
		ImageMaxHeight:    1080,
		ImageQuality:      85,
		ThumbnailsEnabled: true,
		ThumbnailSize:     150,
		MaxImageDimension: DefaultMaxImageDimension,
	}
}

// encodeImage 生成纯色测试图片
func encodeImage(t *testing.T, w, h int, f imaging.Format) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, f))
	return buf.Bytes()
}

// multipartFile 通过真实的 multipart 解析得到文件头
func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	headers := form.File["file"]
	require.Len(t, headers, 1)
	return headers[0]
}

func rawUpload(t *testing.T, filename string, content []byte) RawUpload {
	return NewRawUpload(multipartFile(t, filename, content))
}
