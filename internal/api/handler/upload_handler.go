package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

// MaxUploadBytes bounds a single uploaded file.
const MaxUploadBytes = 15 << 20

// UploadHandler stores files in the remote store.
type UploadHandler struct {
	service ports.RecordService
}

func NewUploadHandler(service ports.RecordService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Upload handles POST /v1/uploads.
//
// @Summary      Upload a file
// @Description  Stores the multipart field "file" and returns a viewer URL.
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "File to upload"
// @Success      201   {object}  uploadResponse
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /v1/uploads [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size > MaxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}

	mime := fh.Header.Get(echo.HeaderContentType)
	if mime == "" {
		mime = http.DetectContentType(content)
	}

	url, err := h.service.Upload(c.Request().Context(), ports.UploadInput{
		FileName: fh.Filename,
		MimeType: mime,
		Content:  content,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, uploadResponse{URL: url})
}
