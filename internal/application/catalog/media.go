package catalog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// MediaStorage stores uploaded product media and returns public URLs
type MediaStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Upload limits
const (
	DefaultMaxImageSize    int64 = 5 << 20
	DefaultMaxVideoSize    int64 = 50 << 20
	DefaultMaxBulkSize     int64 = 10 << 20
	DefaultMaxImagesPerReq       = 10
)

// UploadLimits bounds media uploads
type UploadLimits struct {
	MaxImageSize    int64
	MaxVideoSize    int64
	MaxBulkSize     int64
	MaxImagesPerReq int
}

func (l UploadLimits) withDefaults() UploadLimits {
	if l.MaxImageSize <= 0 {
		l.MaxImageSize = DefaultMaxImageSize
	}
	if l.MaxVideoSize <= 0 {
		l.MaxVideoSize = DefaultMaxVideoSize
	}
	if l.MaxBulkSize <= 0 {
		l.MaxBulkSize = DefaultMaxBulkSize
	}
	if l.MaxImagesPerReq <= 0 {
		l.MaxImagesPerReq = DefaultMaxImagesPerReq
	}
	return l
}

// UploadFile is one uploaded file. The caller owns and closes Body.
type UploadFile struct {
	Name string
	Size int64
	Body io.Reader
}

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var videoTypes = map[string]string{
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
}

// sniffLen is how many leading bytes content detection looks at
const sniffLen = 3072

// sniff detects the content type from the first bytes of the body. The
// returned reader replays those bytes.
func sniff(body io.Reader) (string, io.Reader, error) {
	br := bufio.NewReaderSize(body, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	ct := mimetype.Detect(head).String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct, br, nil
}

// checkUpload validates size and type and returns the storage extension
func checkUpload(f UploadFile, maxSize int64, allowed map[string]string, kind string) (string, string, io.Reader, error) {
	if f.Size <= 0 {
		return "", "", nil, shared.NewValidationError("%s %q is empty", kind, f.Name)
	}
	if f.Size > maxSize {
		return "", "", nil, shared.NewDomainError(shared.CodeFileTooLarge,
			fmt.Sprintf("%s %q exceeds the %d MiB limit", kind, f.Name, maxSize>>20))
	}
	ct, body, err := sniff(f.Body)
	if err != nil {
		return "", "", nil, err
	}
	ext, ok := allowed[ct]
	if !ok {
		return "", "", nil, shared.NewDomainError(shared.CodeUnsupportedFileType,
			fmt.Sprintf("%s %q has unsupported type %s", kind, f.Name, ct))
	}
	return ct, ext, body, nil
}

// mediaKey builds an object key such as products/<id>/images/2026/01/<uuid>.jpg
func mediaKey(productID uuid.UUID, kind, ext string) string {
	return path.Join("products", productID.String(), kind, time.Now().UTC().Format("2006/01"), uuid.NewString()+ext)
}
