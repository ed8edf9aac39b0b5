package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/frankincense-labs/cx-management/internal/domain/shared"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/id"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

const randomNameLength = 11

// BlobStore persists uploaded bytes under a key.
type BlobStore interface {
	// Put stores everything read from r under key and returns the number of
	// bytes written. A failed Put leaves nothing behind.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	// URL returns the public address of key.
	URL(key string) string
}

// File is one file of an upload request.
type File struct {
	Name    string
	Type    string
	Size    int64
	Content io.Reader
}

// FileError reports why one file of a batch was rejected.
type FileError struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// BatchResult holds the descriptors of the stored files and the failures of
// the rejected ones.
type BatchResult struct {
	Attachments []shared.Attachment
	Errors      []FileError
}

type Service struct {
	store  BlobStore
	now    func() time.Time
	logger logger.Interface
}

func NewService(store BlobStore, log logger.Interface) *Service {
	return &Service{store: store, now: time.Now, logger: log}
}

// Upload validates f and stores it under folder. The returned descriptor is
// meant to be embedded verbatim into the owning record.
func (s *Service) Upload(ctx context.Context, folder string, f File) (shared.Attachment, error) {
	if err := validateFolder(folder); err != nil {
		return shared.Attachment{}, err
	}
	if err := ValidateFile(f.Name, f.Type, f.Size); err != nil {
		return shared.Attachment{}, err
	}

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(f.Content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return shared.Attachment{}, errors.NewUploadError(fmt.Sprintf("failed to read %q", f.Name), err.Error())
	}
	head = head[:n]
	if err := validateContent(f.Name, f.Type, head); err != nil {
		return shared.Attachment{}, err
	}

	key, err := s.newKey(folder, f.Name, f.Type)
	if err != nil {
		return shared.Attachment{}, errors.NewInternalError("failed to name upload", err.Error())
	}

	body := &sizeLimitedReader{r: io.MultiReader(bytes.NewReader(head), f.Content), remaining: MaxFileSize}
	written, err := s.store.Put(ctx, key, body)
	if err != nil {
		if body.exceeded {
			return shared.Attachment{}, errors.NewUploadError(fmt.Sprintf("file %q exceeds the maximum size of 5MB", f.Name))
		}
		s.logger.Errorw("failed to store upload", "key", key, "error", err)
		return shared.Attachment{}, errors.NewUploadError(fmt.Sprintf("failed to upload %q", f.Name), err.Error())
	}

	s.logger.Infow("file uploaded", "key", key, "size", written)
	return shared.Attachment{
		URL:  s.store.URL(key),
		Name: f.Name,
		Size: written,
		Type: baseType(f.Type),
	}, nil
}

// UploadBatch uploads every file independently. Valid files are stored even
// when others in the batch are rejected.
func (s *Service) UploadBatch(ctx context.Context, folder string, files []File) BatchResult {
	result := BatchResult{Attachments: make([]shared.Attachment, 0, len(files))}
	for _, f := range files {
		a, err := s.Upload(ctx, folder, f)
		if err != nil {
			result.Errors = append(result.Errors, FileError{Name: f.Name, Err: err})
			continue
		}
		result.Attachments = append(result.Attachments, a)
	}
	return result
}

// newKey builds <folder>/<unix millis>_<random>.<ext>.
func (s *Service) newKey(folder, name, declaredType string) (string, error) {
	random, err := id.GenerateFrom(id.Base36Lower, randomNameLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%d_%s.%s", folder, s.now().UnixMilli(), random, extensionFor(name, declaredType)), nil
}

// sizeLimitedReader fails once more than remaining bytes have been read.
type sizeLimitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

var errTooLarge = fmt.Errorf("upload exceeds %d bytes", MaxFileSize)

func (l *sizeLimitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		l.exceeded = true
		return n, errTooLarge
	}
	return n, err
}
