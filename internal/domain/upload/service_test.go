package upload

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"bizops/internal/tenant"
)

type MockClients struct {
	mock.Mock
}

func (m *MockClients) Exists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, scope, id)
	return args.Bool(0), args.Error(1)
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func setupTestService(t *testing.T) (*Service, *MockClients, string) {
	t.Helper()
	dsn := fmt.Sprintf("file:upload_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&Upload{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	clients := new(MockClients)
	dir := t.TempDir()
	svc := NewService(NewRepository(db), clients, zap.NewNop(), Options{BaseDir: dir, MaxFileSize: 1024})
	svc.now = func() time.Time { return time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC) }
	return svc, clients, dir
}

func formFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func newScope() tenant.Scope {
	return tenant.New(uuid.New(), uuid.New(), "GHS", "UTC")
}

func TestUploadStoresUnderOrganizationDay(t *testing.T) {
	svc, _, dir := setupTestService(t)
	ctx := context.Background()
	scope := newScope()

	u, err := svc.Upload(ctx, scope, nil, formFile(t, "Receipt March.png", pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "image/png", u.MimeType)
	assert.Equal(t, scope.OrgID, u.OrganizationID)
	assert.Equal(t, scope.UserID, u.UploadedBy)
	assert.Equal(t, "Receipt March.png", u.OriginalName)

	prefix := filepath.Join(scope.OrgID.String(), "2026", "03", "11")
	assert.Equal(t, prefix, filepath.Dir(u.FilePath))
	assert.Contains(t, u.FilePath, "Receipt_March.png")
	assert.Equal(t, "/static/uploads/"+filepath.ToSlash(u.FilePath), u.FileURL)

	data, err := os.ReadFile(filepath.Join(dir, u.FilePath))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestUploadRejectsBadFiles(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()
	scope := newScope()

	_, err := svc.Upload(ctx, scope, nil, formFile(t, "empty.txt", nil))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = svc.Upload(ctx, scope, nil, formFile(t, "big.txt", bytes.Repeat([]byte("a"), 2048)))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = svc.Upload(ctx, scope, nil, formFile(t, "page.png", []byte("<html><body>hi</body></html>")))
	assert.ErrorIs(t, err, ErrInvalidMimeType)
}

func TestUploadExtensionFollowsSniffedType(t *testing.T) {
	svc, _, dir := setupTestService(t)
	ctx := context.Background()
	scope := newScope()

	u, err := svc.Upload(ctx, scope, nil, formFile(t, "note.html", []byte("hi there <script>alert(1)</script>")))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", u.MimeType)
	assert.Equal(t, "note.html", u.OriginalName)
	assert.True(t, strings.HasSuffix(u.FilePath, "_note.txt"), u.FilePath)
	assert.True(t, strings.HasSuffix(u.FileURL, "_note.txt"), u.FileURL)
	_, err = os.Stat(filepath.Join(dir, u.FilePath))
	require.NoError(t, err)

	u, err = svc.Upload(ctx, scope, nil, formFile(t, "scan.pdf", pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.FilePath, "_scan.png"), u.FilePath)
}

func TestUploadForClient(t *testing.T) {
	svc, clients, _ := setupTestService(t)
	ctx := context.Background()
	scope := newScope()
	known, unknown := uuid.New(), uuid.New()
	clients.On("Exists", mock.Anything, scope, known).Return(true, nil)
	clients.On("Exists", mock.Anything, scope, unknown).Return(false, nil)

	u, err := svc.Upload(ctx, scope, &known, formFile(t, "notes.txt", []byte("measurements: 42 / 38")))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", u.MimeType)
	require.NotNil(t, u.ClientID)

	_, err = svc.Upload(ctx, scope, &unknown, formFile(t, "notes.txt", []byte("x")))
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = svc.Upload(ctx, scope, nil, formFile(t, "other.txt", []byte("unrelated")))
	require.NoError(t, err)

	forClient, err := svc.List(ctx, scope, &known)
	require.NoError(t, err)
	assert.Len(t, forClient, 1)
	all, err := svc.List(ctx, scope, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	clients.AssertExpectations(t)
}

func TestDeleteIsTenantScoped(t *testing.T) {
	svc, _, dir := setupTestService(t)
	ctx := context.Background()
	mine, theirs := newScope(), newScope()

	u, err := svc.Upload(ctx, mine, nil, formFile(t, "logo.png", pngBytes))
	require.NoError(t, err)

	_, err = svc.Get(ctx, theirs, u.ID)
	assert.ErrorIs(t, err, ErrUploadNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, theirs, u.ID), ErrUploadNotFound)

	require.NoError(t, svc.Delete(ctx, mine, u.ID))
	_, err = os.Stat(filepath.Join(dir, u.FilePath))
	assert.True(t, os.IsNotExist(err))
	_, err = svc.Get(ctx, mine, u.ID)
	assert.ErrorIs(t, err, ErrUploadNotFound)
}
