// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attach stages a local file for inclusion in the next outgoing
// message. Validation is local and immediate; the upload happens at send
// time and its failure aborts the whole send.
package attach

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/shopchat-tui/internal/backend"
	"github.com/jeranaias/shopchat-tui/internal/protocol"
)

// MaxFileSize is the largest file the pipeline accepts.
const MaxFileSize = 50 * 1024 * 1024

// allowedTypes maps file extensions to the media types the storefront
// accepts. Anything else is rejected before any network activity.
var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

// ValidationError reports a file rejected locally, before any upload.
type ValidationError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("cannot attach %s: %s", filepath.Base(e.Path), e.Reason)
}

// UploadError reports a staged file that failed to reach the backend.
// The enclosing send must be aborted; the text is not sent without its
// attachment.
type UploadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s failed: %v", filepath.Base(e.Path), e.Err)
}

// Unwrap exposes the underlying cause.
func (e *UploadError) Unwrap() error { return e.Err }

// Pending describes the currently staged file.
type Pending struct {
	Path     string
	MimeType string
	Size     int64
}

// Label is the short form shown in the composer status line.
func (p *Pending) Label() string {
	return fmt.Sprintf("%s (%s)", filepath.Base(p.Path), formatSize(p.Size))
}

// Uploader is the subset of the backend client the pipeline needs.
type Uploader interface {
	UploadFile(ctx context.Context, path string) (*backend.UploadResult, error)
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline holds at most one staged attachment. Selecting a new file
// replaces the previous one. Not safe for concurrent use; all calls come
// from the session's event loop.
type Pipeline struct {
	uploader Uploader
	pending  *Pending
}

// NewPipeline creates a pipeline backed by the given uploader.
func NewPipeline(uploader Uploader) *Pipeline {
	return &Pipeline{uploader: uploader}
}

// Select validates and stages a file. A failure leaves any previously
// staged file in place.
func (p *Pipeline) Select(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &ValidationError{Path: path, Reason: "file not found"}
	}
	if info.IsDir() {
		return &ValidationError{Path: path, Reason: "is a directory"}
	}
	if info.Size() > MaxFileSize {
		return &ValidationError{
			Path:   path,
			Reason: fmt.Sprintf("%s exceeds the %s limit", formatSize(info.Size()), formatSize(MaxFileSize)),
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	mime, ok := allowedTypes[ext]
	if !ok {
		return &ValidationError{Path: path, Reason: "unsupported file type (images and video only)"}
	}

	p.pending = &Pending{Path: path, MimeType: mime, Size: info.Size()}
	return nil
}

// Pending returns the staged file, or nil.
func (p *Pipeline) Pending() *Pending {
	return p.pending
}

// Cancel discards the staged file.
func (p *Pipeline) Cancel() {
	p.pending = nil
}

// Commit uploads the staged file and returns the wire reference for the
// outgoing message. Returns (nil, nil) when nothing is staged. On success
// the pipeline is cleared; on failure the staged file is kept so the user
// can retry or detach.
func (p *Pipeline) Commit(ctx context.Context) (*protocol.Attachment, error) {
	if p.pending == nil {
		return nil, nil
	}

	res, err := p.uploader.UploadFile(ctx, p.pending.Path)
	if err != nil {
		return nil, &UploadError{Path: p.pending.Path, Err: err}
	}

	mime := res.MimeType
	if mime == "" {
		mime = p.pending.MimeType
	}
	p.pending = nil
	return &protocol.Attachment{FileURL: res.FileURL, MimeType: mime}, nil
}

// formatSize renders a byte count for humans.
func formatSize(n int64) string {
	switch {
	case n >= 1024*1024*1024:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1024*1024*1024))
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KiB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
