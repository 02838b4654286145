package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/acebook/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FileHandler serves uploaded images. It is public so <img> tags work
// without a bearer token.
type FileHandler struct {
	fileRepository repositories.FileRepository
}

func NewFileHandler(fileRepo repositories.FileRepository) *FileHandler {
	return &FileHandler{fileRepository: fileRepo}
}

func (h *FileHandler) RegisterFileRoutes(g *echo.Group) {
	g.GET("/:id", h.GetFile)
}

func (h *FileHandler) GetFile(c echo.Context) error {
	fileID, err := objectIDParam(c, "id", "Invalid file ID")
	if err != nil {
		return err
	}

	meta, body, err := h.fileRepository.OpenFile(c.Request().Context(), fileID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "File not found")
		}
		return internalError(err)
	}
	defer body.Close()

	contentType := meta.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, body)
}
