// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

// maxUploadBytes caps banner image uploads at 10 MB.
const maxUploadBytes = 10 << 20

// allowedImageTypes are the content types accepted for banner uploads.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Media handles banner image uploads to S3-compatible storage.
// storageClient may be nil when storage is not configured; uploads then
// return 503 instead of failing obscurely.
type Media struct {
	store         *store.MediaStore
	storageClient *storage.Client
}

// NewMedia creates a new Media handler group.
func NewMedia(mediaStore *store.MediaStore, storageClient *storage.Client) *Media {
	return &Media{store: mediaStore, storageClient: storageClient}
}

// Upload handles POST /api/v1/media: a multipart form with a single
// "file" field. Returns the stored metadata including the public URL to
// use as a banner_url.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.storageClient == nil {
		respondError(w, http.StatusServiceUnavailable, "media storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "upload too large or malformed (max 10 MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondInternal(w, "read upload", err)
		return
	}

	// Sniff the real content type rather than trusting the client header.
	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		respondError(w, http.StatusBadRequest, "only JPEG, PNG, GIF, and WebP images are accepted")
		return
	}

	key := fmt.Sprintf("banners/%s%s", uuid.NewString(), ext)
	if err := h.storageClient.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		respondInternal(w, "upload to storage", err)
		return
	}

	created, err := h.store.Create(&models.Media{
		OriginalName: sanitizeFilename(header.Filename),
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		S3Key:        key,
		URL:          h.storageClient.FileURL(key),
	})
	if err != nil {
		// The object is already in the bucket; best effort to not leak it.
		_ = h.storageClient.Delete(ctx, key)
		respondInternal(w, "persist media metadata", err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// sanitizeFilename strips any path components from a client filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}
