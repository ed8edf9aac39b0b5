package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankincense-labs/cx-management/internal/application/upload"
	"github.com/frankincense-labs/cx-management/internal/domain/shared"
	"github.com/frankincense-labs/cx-management/internal/interfaces/http/middleware"
	"github.com/frankincense-labs/cx-management/internal/shared/errors"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/utils"
)

const (
	defaultUploadFolder = "attachments"
	maxFilesPerUpload   = 10
	// Multipart bodies above this are rejected before parsing.
	maxUploadBodySize = maxFilesPerUpload*upload.MaxFileSize + 1<<20
)

// BatchUploader stores a batch of files and reports failures per file.
type BatchUploader interface {
	UploadBatch(ctx context.Context, folder string, files []upload.File) upload.BatchResult
}

type UploadHandler struct {
	uploader BatchUploader
	logger   logger.Interface
}

func NewUploadHandler(uploader BatchUploader, logger logger.Interface) *UploadHandler {
	return &UploadHandler{uploader: uploader, logger: logger}
}

type UploadFailure struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type UploadResponse struct {
	Attachments []shared.Attachment `json:"attachments"`
	Errors      []UploadFailure     `json:"errors"`
}

// Upload handles POST /api/uploads with multipart fields "files" and an
// optional "folder". Valid files are stored even when others are rejected;
// the request only fails when nothing could be stored.
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBodySize)

	form, err := c.MultipartForm()
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewUploadError("invalid multipart upload", err.Error()))
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		utils.ErrorResponseWithError(c, errors.NewValidationError("at least one file is required"))
		return
	}
	if len(headers) > maxFilesPerUpload {
		utils.ErrorResponseWithError(c, errors.NewValidationError("too many files", "at most 10 files per upload"))
		return
	}

	folder := c.PostForm("folder")
	if folder == "" {
		folder = defaultUploadFolder
	}

	files, closeAll, failures := openParts(headers)
	defer closeAll()

	result := h.uploader.UploadBatch(c.Request.Context(), folder, files)
	for _, fe := range result.Errors {
		failures = append(failures, toUploadFailure(fe))
	}

	h.logger.Infow("upload batch processed",
		"user_id", middleware.UserID(c),
		"folder", folder,
		"stored", len(result.Attachments),
		"rejected", len(failures),
	)

	resp := UploadResponse{Attachments: result.Attachments, Errors: failures}
	if len(result.Attachments) == 0 {
		c.JSON(http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Data:    resp,
			Error:   &utils.ErrorInfo{Type: string(errors.ErrorTypeUpload), Message: "no file could be uploaded"},
		})
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "files uploaded", resp)
}

func openParts(headers []*multipart.FileHeader) ([]upload.File, func(), []UploadFailure) {
	files := make([]upload.File, 0, len(headers))
	closers := make([]multipart.File, 0, len(headers))
	var failures []UploadFailure

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			failures = append(failures, UploadFailure{Name: fh.Filename, Message: "failed to read file"})
			continue
		}
		closers = append(closers, f)
		files = append(files, upload.File{
			Name:    fh.Filename,
			Type:    fh.Header.Get("Content-Type"),
			Size:    fh.Size,
			Content: f,
		})
	}

	return files, func() {
		for _, f := range closers {
			_ = f.Close()
		}
	}, failures
}

func toUploadFailure(fe upload.FileError) UploadFailure {
	out := UploadFailure{Name: fe.Name, Message: fe.Err.Error()}
	if appErr := errors.GetAppError(fe.Err); appErr != nil {
		out.Message = appErr.Message
		out.Details = appErr.Details
	}
	return out
}
