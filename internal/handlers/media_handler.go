package handlers

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/xiabytes/chatX/internal/service"
)

type MediaHandler struct {
	media    *service.MediaService
	validate *validator.Validate
}

func NewMediaHandler(media *service.MediaService, validate *validator.Validate) *MediaHandler {
	return &MediaHandler{media: media, validate: validate}
}

// CreateUploadURL is step one of the two-step upload: the client receives a
// write URL, PUTs the file there, then resolves a readable URL from the key.
func (h *MediaHandler) CreateUploadURL(c *fiber.Ctx) error {
	type Req struct {
		FileName    string `json:"file_name" validate:"required"`
		ContentType string `json:"content_type" validate:"required"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.media.CreateUploadURL(c.Context(), currentUser(c), req.FileName, req.ContentType)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(res)
}

// ResolveURL turns a storage key into a readable URL.
func (h *MediaHandler) ResolveURL(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return badRequest(c, "key required")
	}
	url, err := h.media.ResolveURL(c.Context(), key)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// Upload takes the file directly (multipart field "file"), for clients that
// skip the presign round trip.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file missing")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()

	data := make([]byte, fileHeader.Size)
	if _, err := io.ReadFull(f, data); err != nil && fileHeader.Size > 0 {
		return badRequest(c, "cannot read file")
	}

	ct := fileHeader.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}

	media, err := h.media.Upload(c.Context(), currentUser(c), fileHeader.Filename, ct, data)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"media": media})
}
