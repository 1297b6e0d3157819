package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hyperingenious/fold-backend/pkg/appwrite"
)

const (
	maxBatchFiles = 10
	maxAvatarSize = 5 * 1024 * 1024
)

// Storage is the object-storage surface the upload routes need. The
// Appwrite client satisfies it; tests substitute a fake.
type Storage interface {
	CreateFile(ctx context.Context, fileID, name string, data []byte) (*appwrite.File, error)
	GetFile(ctx context.Context, fileID string) (*appwrite.File, error)
	DeleteFile(ctx context.Context, fileID string) error
	ListFiles(ctx context.Context, limit, offset int) (*appwrite.FileList, error)
	ViewURL(fileID string) string
	PreviewURL(fileID string, width, height, quality int) string
	DownloadURL(fileID string) string
}

// UploadRecorder counts accepted uploads; the metrics collector
// satisfies it.
type UploadRecorder interface {
	RecordUpload(count int)
}

type UploadHandler struct {
	storage Storage
	metrics UploadRecorder
}

func NewUploadHandler(storage Storage, recorder UploadRecorder) *UploadHandler {
	return &UploadHandler{storage: storage, metrics: recorder}
}

func (h *UploadHandler) recordUpload(count int) {
	if h.metrics != nil {
		h.metrics.RecordUpload(count)
	}
}

// fileResponse is the normalized record returned for an uploaded file.
type fileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	Size      int64  `json:"size"`
	URL       string `json:"url"`
	Preview   string `json:"previewUrl,omitempty"`
	Download  string `json:"downloadUrl"`
	CreatedAt string `json:"createdAt"`
}

func (h *UploadHandler) fileResponseFor(file *appwrite.File) fileResponse {
	resp := fileResponse{
		ID:        file.ID,
		Name:      file.Name,
		MimeType:  file.MimeType,
		Size:      file.SizeOriginal,
		URL:       h.storage.ViewURL(file.ID),
		Download:  h.storage.DownloadURL(file.ID),
		CreatedAt: file.CreatedAt,
	}
	if strings.HasPrefix(file.MimeType, "image/") {
		resp.Preview = h.storage.PreviewURL(file.ID, 400, 400, 80)
	}
	return resp
}

// Upload stores a single multipart file
// POST /api/upload
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Upload failed", "file field is required")
	}

	data, err := readMultipartFile(header)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Upload failed", "could not read file")
	}

	file, err := h.storage.CreateFile(c.Context(), uuid.New().String(), header.Filename, data)
	if err != nil {
		return err
	}
	h.recordUpload(1)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    h.fileResponseFor(file),
	})
}

// UploadMultiple stores up to 10 files concurrently. On any provider
// failure the files that did make it are deleted again, so the batch is
// all-or-nothing.
// POST /api/upload/multiple
func (h *UploadHandler) UploadMultiple(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Upload failed", "multipart form is required")
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return fail(c, fiber.StatusBadRequest, "Upload failed", "files field is required")
	}
	if len(headers) > maxBatchFiles {
		return fail(c, fiber.StatusBadRequest, "Upload failed",
			fmt.Sprintf("at most %d files per request", maxBatchFiles))
	}

	// Read everything up front so a bad part fails before any upload
	type pending struct {
		name string
		data []byte
	}
	batch := make([]pending, 0, len(headers))
	for _, header := range headers {
		data, err := readMultipartFile(header)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Upload failed", "could not read file "+header.Filename)
		}
		batch = append(batch, pending{name: header.Filename, data: data})
	}

	var (
		mu       sync.Mutex
		uploaded []*appwrite.File
	)

	g, ctx := errgroup.WithContext(c.Context())
	for _, item := range batch {
		item := item
		g.Go(func() error {
			file, err := h.storage.CreateFile(ctx, uuid.New().String(), item.name, item.data)
			if err != nil {
				return err
			}
			mu.Lock()
			uploaded = append(uploaded, file)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		h.rollback(c.Context(), uploaded)
		return err
	}
	h.recordUpload(len(uploaded))

	responses := make([]fileResponse, 0, len(uploaded))
	for _, file := range uploaded {
		responses = append(responses, h.fileResponseFor(file))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    responses,
	})
}

// UploadAvatar stores an image file of at most 5 MB and returns fixed-size
// preview URLs
// POST /api/upload/avatar
func (h *UploadHandler) UploadAvatar(c *fiber.Ctx) error {
	header, err := c.FormFile("avatar")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Upload failed", "avatar field is required")
	}

	if header.Size > maxAvatarSize {
		return fail(c, fiber.StatusBadRequest, "Upload failed", "avatar must be at most 5 MB")
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return fail(c, fiber.StatusBadRequest, "Upload failed", "avatar must be an image")
	}

	data, err := readMultipartFile(header)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Upload failed", "could not read file")
	}

	file, err := h.storage.CreateFile(c.Context(), uuid.New().String(), header.Filename, data)
	if err != nil {
		return err
	}
	h.recordUpload(1)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":       file.ID,
			"name":     file.Name,
			"mimeType": file.MimeType,
			"size":     file.SizeOriginal,
			"previews": fiber.Map{
				"small":  h.storage.PreviewURL(file.ID, 50, 50, 80),
				"medium": h.storage.PreviewURL(file.ID, 150, 150, 80),
				"large":  h.storage.PreviewURL(file.ID, 400, 400, 80),
			},
			"url":         h.storage.ViewURL(file.ID),
			"downloadUrl": h.storage.DownloadURL(file.ID),
			"createdAt":   file.CreatedAt,
		},
	})
}

// GetFile returns the record of one stored file
// GET /api/upload/:fileId
func (h *UploadHandler) GetFile(c *fiber.Ctx) error {
	file, err := h.storage.GetFile(c.Context(), c.Params("fileId"))
	if err != nil {
		if errors.Is(err, appwrite.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "File not found", "")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    h.fileResponseFor(file),
	})
}

// DeleteFile removes one stored file
// DELETE /api/upload/:fileId
func (h *UploadHandler) DeleteFile(c *fiber.Ctx) error {
	if err := h.storage.DeleteFile(c.Context(), c.Params("fileId")); err != nil {
		if errors.Is(err, appwrite.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "File not found", "")
		}
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "File deleted",
	})
}

// ListFiles returns a page of stored files
// GET /api/upload/list/all?limit&offset
func (h *UploadHandler) ListFiles(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 25)
	if limit < 1 || limit > 100 {
		limit = 25
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	list, err := h.storage.ListFiles(c.Context(), limit, offset)
	if err != nil {
		return err
	}

	responses := make([]fileResponse, 0, len(list.Files))
	for i := range list.Files {
		responses = append(responses, h.fileResponseFor(&list.Files[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    responses,
		"meta": fiber.Map{
			"total":  list.Total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// rollback deletes files that were stored before a batch failed.
func (h *UploadHandler) rollback(ctx context.Context, files []*appwrite.File) {
	for _, file := range files {
		if err := h.storage.DeleteFile(ctx, file.ID); err != nil {
			log.Printf("[UPLOAD] Failed to roll back file %s: %v", file.ID, err)
		}
	}
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
