// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a conversation thread to a file in Markdown or
// JSON format.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/shopchat-tui/internal/model"
	"github.com/jeranaias/shopchat-tui/internal/util"
)

// ErrUnknownFormat is returned when an export format name is not recognized.
var ErrUnknownFormat = fmt.Errorf("unknown export format (want md or json)")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a thread to one target format.
type Exporter interface {
	// Export renders the thread and returns the file content.
	Export(th *model.Thread) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g. ".md").
	FileExtension() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeTimestamps: true,
	}
}

// =============================================================================
// EXPORT TO FILE
// =============================================================================

// ToFile exports a thread using the given exporter and returns the
// output path.
func ToFile(th *model.Thread, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(th)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	name := th.Peer
	if name == "" {
		name = "support"
	}
	filename := fmt.Sprintf("chat_%s_%s%s",
		sanitizeFilename(name),
		time.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// sanitizeFilename strips characters that are unsafe in file names.
func sanitizeFilename(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	out := sb.String()
	if len(out) > 40 {
		out = out[:40]
	}
	if out == "" {
		out = "chat"
	}
	return out
}
