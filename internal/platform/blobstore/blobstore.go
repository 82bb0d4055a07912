// Package blobstore stores uploaded photos: patient photos and staff
// profile pictures. It defines the Store interface plus an in-memory
// implementation used in development and tests.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPhotoNotFound      = errors.New("photo not found")
	ErrPhotoTooLarge      = errors.New("photo exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
)

// AllowedContentTypes lists the image MIME types accepted for upload.
var AllowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// PhotoMetadata describes a stored photo.
type PhotoMetadata struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UploadedBy  string    `json:"uploaded_by"`
}

// Store is the contract for photo storage backends.
type Store interface {
	Put(ctx context.Context, meta PhotoMetadata, content io.Reader) (*PhotoMetadata, error)
	Get(ctx context.Context, id string) (io.ReadCloser, *PhotoMetadata, error)
	Delete(ctx context.Context, id string) error
}

type storedPhoto struct {
	metadata PhotoMetadata
	content  []byte
}

// Memory is a thread-safe in-memory Store.
type Memory struct {
	maxBytes int64

	mu     sync.RWMutex
	photos map[string]*storedPhoto
}

// NewMemory returns a Memory store limiting uploads to maxBytes.
func NewMemory(maxBytes int64) *Memory {
	return &Memory{
		maxBytes: maxBytes,
		photos:   make(map[string]*storedPhoto),
	}
}

// Put validates the upload, reads the content, and stores it keyed by a
// generated id. The returned metadata carries the size and SHA-256 hash.
func (s *Memory) Put(_ context.Context, meta PhotoMetadata, content io.Reader) (*PhotoMetadata, error) {
	if !AllowedContentTypes[meta.ContentType] {
		return nil, ErrInvalidContentType
	}

	data, err := io.ReadAll(io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrPhotoTooLarge
	}

	h := sha256.Sum256(data)

	meta.ID = uuid.New().String()
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", h)
	meta.UploadedAt = time.Now().UTC()

	s.mu.Lock()
	s.photos[meta.ID] = &storedPhoto{metadata: meta, content: data}
	s.mu.Unlock()

	out := meta
	return &out, nil
}

// Get returns the photo content and metadata.
func (s *Memory) Get(_ context.Context, id string) (io.ReadCloser, *PhotoMetadata, error) {
	s.mu.RLock()
	p, ok := s.photos[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrPhotoNotFound
	}

	meta := p.metadata
	return io.NopCloser(bytes.NewReader(p.content)), &meta, nil
}

// Delete removes a photo by id.
func (s *Memory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.photos[id]; !ok {
		return ErrPhotoNotFound
	}
	delete(s.photos, id)
	return nil
}
