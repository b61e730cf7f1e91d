package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
)

const (
	// multipartOverhead covers part headers and form fields on top of the
	// file payload limit
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

// readMultipart caps the request body at maxPayload plus overhead and
// returns the files posted under field
func (h *BaseHandler) readMultipart(c *gin.Context, field string, maxPayload int64) ([]*multipart.FileHeader, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPayload+multipartOverhead)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	files := c.Request.MultipartForm.File[field]
	if len(files) == 0 {
		h.Error(c, shared.CodeValidation, fmt.Sprintf("Multipart field %q is required", field))
		return nil, false
	}
	return files, true
}

// openUploads opens every header. The returned closer must always be called.
func openUploads(headers []*multipart.FileHeader) ([]catalogapp.UploadFile, func(), error) {
	files := make([]catalogapp.UploadFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, errors.Join(shared.NewValidationError("Failed to read %q", fh.Filename), err)
		}
		opened = append(opened, f)
		files = append(files, catalogapp.UploadFile{Name: fh.Filename, Size: fh.Size, Body: f})
	}
	return files, closeAll, nil
}
