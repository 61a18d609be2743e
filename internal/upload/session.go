// Package upload sends one local office file to Drive as a multipart upload,
// asking Drive to convert it into the matching Google document type.
//
// Each upload is a Session that owns its progress counters, so several
// sessions can run and be observed independently.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"google.golang.org/api/drive/v3"

	"github.com/tonimelisma/gopener/internal/classify"
	"github.com/tonimelisma/gopener/internal/driveapi"
)

// DefaultMaxFileSize caps a single upload. Multipart uploads above this size
// should use a resumable upload, which is not supported.
const DefaultMaxFileSize int64 = 100_000_000

// Validation errors. Use errors.Is(err, upload.ErrUnsupportedFileType) to check.
var (
	ErrFileNotFound        = errors.New("upload: file does not exist")
	ErrUnsupportedFileType = errors.New("upload: unsupported file type")
	ErrFileTooLarge        = errors.New("upload: file too large")
)

const resultFields = "id,name,webViewLink,mimeType"

// Progress is a snapshot of a session's transfer.
type Progress struct {
	BytesUploaded int64   `json:"bytes_uploaded"`
	TotalBytes    int64   `json:"total_bytes"`
	Percentage    float64 `json:"percentage"`
}

// ProgressFunc receives progress notifications. It is called at the start
// (0%) and at completion (100%) of Run, on the goroutine running it.
type ProgressFunc func(Progress)

// Result describes the converted file.
type Result struct {
	FileID      string `json:"file_id"`
	Name        string `json:"name"`
	WebViewLink string `json:"web_view_link"`
	FileType    string `json:"file_type"`
}

// Uploader creates upload sessions against one Drive client.
type Uploader struct {
	client      *driveapi.Client
	tokens      driveapi.TokenSource
	maxFileSize int64
	logger      *slog.Logger
}

// NewUploader creates an Uploader. maxFileSize <= 0 uses DefaultMaxFileSize.
func NewUploader(client *driveapi.Client, tokens driveapi.TokenSource, maxFileSize int64, logger *slog.Logger) *Uploader {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Uploader{
		client:      client,
		tokens:      tokens,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Session is a single upload. Progress may be polled from any goroutine while
// Run is in flight.
type Session struct {
	ID string

	uploader *Uploader
	path     string
	folderID string
	observer ProgressFunc

	uploaded atomic.Int64
	total    atomic.Int64
}

// NewSession prepares an upload of path into folderID (My Drive root when
// empty). observer may be nil.
func (u *Uploader) NewSession(path, folderID string, observer ProgressFunc) *Session {
	return &Session{
		ID:       uuid.NewString(),
		uploader: u,
		path:     path,
		folderID: folderID,
		observer: observer,
	}
}

// Upload runs a session without an observer.
func (u *Uploader) Upload(ctx context.Context, path, folderID string) (*Result, error) {
	return u.NewSession(path, folderID, nil).Run(ctx)
}

// Progress returns the current snapshot. Percentage is 0 while the total is 0.
func (s *Session) Progress() Progress {
	total := s.total.Load()
	uploaded := min(s.uploaded.Load(), total)

	p := Progress{BytesUploaded: uploaded, TotalBytes: total}
	if total > 0 {
		p.Percentage = float64(uploaded) / float64(total) * 100
	}

	return p
}

// Run validates, classifies and uploads the file. Validation failures return
// before any network call; a token failure is returned unchanged.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	u := s.uploader
	logger := u.logger.With(slog.String("session", s.ID))

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, s.path)
		}

		return nil, fmt.Errorf("upload: %w", err)
	}

	desc, err := classify.Describe(s.path)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	if !desc.Supported() {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedFileType, desc.Extension, classify.SupportedExtensions())
	}

	if desc.Size > u.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, desc.Name, desc.Size, u.maxFileSize)
	}

	tok, err := u.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("upload: opening %s: %w", s.path, err)
	}
	defer f.Close()

	// Length and streamed bytes both come from the open handle; the file may
	// have changed since it was classified.
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	size := info.Size()
	if size > u.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, desc.Name, size, u.maxFileSize)
	}

	meta := metadata{
		Name:     norm.NFC.String(desc.Name),
		MimeType: desc.Family.MimeType(),
	}

	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	body, err := newMultipartBody(meta, classify.SourceMimeType(s.path))
	if err != nil {
		return nil, err
	}

	s.reset(size)

	logger.Info("upload started",
		slog.String("name", meta.Name),
		slog.String("family", desc.Family.String()),
		slog.Int64("size", size),
		slog.String("folder", s.folderID),
	)

	started := time.Now()
	content := &countingReader{r: io.LimitReader(f, size), n: &s.uploaded}
	query := url.Values{
		"uploadType": {"multipart"},
		"fields":     {resultFields},
	}

	var created drive.File
	err = u.client.WithToken(tok).PostMultipart(ctx, query, Boundary,
		body.Reader(content), body.Len(size), &created)

	s.complete()

	if err != nil {
		logger.Warn("upload failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("upload: %s: %w", desc.Name, err)
	}

	res := &Result{
		FileID:      created.Id,
		Name:        created.Name,
		WebViewLink: created.WebViewLink,
		FileType:    desc.Family.Label(),
	}

	if res.WebViewLink == "" {
		res.WebViewLink = driveapi.FileURL(created.Id, created.MimeType)
	}

	logger.Info("upload complete",
		slog.String("file_id", res.FileID),
		slog.Duration("elapsed", time.Since(started)),
	)

	return res, nil
}

// reset sets the counters for a new transfer and sends the 0% notification.
func (s *Session) reset(total int64) {
	s.uploaded.Store(0)
	s.total.Store(total)
	s.notify()
}

// complete marks the transfer finished and sends the 100% notification.
func (s *Session) complete() {
	s.uploaded.Store(s.total.Load())
	s.notify()
}

func (s *Session) notify() {
	if s.observer != nil {
		s.observer(s.Progress())
	}
}
