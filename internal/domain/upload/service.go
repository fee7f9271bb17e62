package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bizops/internal/tenant"
)

const (
	DefaultMaxFileSize = 10 << 20
	UploadsBaseDir     = "./uploads"
	StaticURLBase      = "/static/uploads"
)

// AllowedMimeTypes is matched against the sniffed content type, not the client's header.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/plain":      true,
}

type Clients interface {
	Exists(ctx context.Context, scope tenant.Scope, id uuid.UUID) (bool, error)
}

type Options struct {
	BaseDir     string
	StaticBase  string
	MaxFileSize int64
}

type Service struct {
	repo    Repository
	clients Clients
	log     *zap.Logger
	opts    Options
	now     func() time.Time
}

func NewService(repo Repository, clients Clients, log *zap.Logger, opts Options) *Service {
	if opts.BaseDir == "" {
		opts.BaseDir = UploadsBaseDir
	}
	if opts.StaticBase == "" {
		opts.StaticBase = StaticURLBase
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	return &Service{repo: repo, clients: clients, log: log, opts: opts, now: time.Now}
}

// Upload stores the file under <base>/<org>/<yyyy>/<mm>/<dd>/ and records it.
func (s *Service) Upload(ctx context.Context, scope tenant.Scope, clientID *uuid.UUID, fileHeader *multipart.FileHeader) (*Upload, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > s.opts.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if clientID != nil {
		ok, err := s.clients.Exists(ctx, scope, *clientID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrClientNotFound
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	now := s.now().UTC()
	relDir := filepath.Join(scope.OrgID.String(), fmt.Sprintf("%d", now.Year()), fmt.Sprintf("%02d", now.Month()), fmt.Sprintf("%02d", now.Day()))
	absDir := filepath.Join(s.opts.BaseDir, relDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	id := uuid.New()
	// The extension decides how the static handler serves the file, so it follows the sniffed type.
	ext := mimeToExt(mimeType)
	filename := fmt.Sprintf("%s_%s%s", id, sanitizeName(fileHeader.Filename), ext)

	absPath := filepath.Join(absDir, filename)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	relPath := filepath.Join(relDir, filename)
	u := &Upload{
		ID:             id,
		OrganizationID: scope.OrgID,
		ClientID:       clientID,
		UploadedBy:     scope.UserID,
		OriginalName:   filepath.Base(fileHeader.Filename),
		FilePath:       relPath,
		FileURL:        s.opts.StaticBase + "/" + filepath.ToSlash(relPath),
		MimeType:       mimeType,
		Size:           fileHeader.Size,
		CreatedAt:      now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to save upload record: %w", err)
	}

	s.log.Info("file uploaded",
		zap.String("org_id", scope.OrgID.String()),
		zap.String("upload_id", id.String()),
		zap.String("mime_type", mimeType),
		zap.Int64("size", u.Size),
	)
	return u, nil
}

func (s *Service) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*Upload, error) {
	return s.repo.GetByID(ctx, scope, id)
}

func (s *Service) List(ctx context.Context, scope tenant.Scope, clientID *uuid.UUID) ([]*Upload, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, scope, clientID)
}

// Delete removes the record and then the file. A file already gone from disk is not an error.
func (s *Service) Delete(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	u, err := s.repo.GetByID(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, scope, id); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.opts.BaseDir, u.FilePath)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove upload file", zap.String("upload_id", id.String()), zap.Error(err))
	}
	return nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		return "file"
	}
	return name
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	case "text/plain":
		return ".txt"
	default:
		return ".bin"
	}
}
