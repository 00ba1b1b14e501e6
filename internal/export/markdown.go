// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/shopchat-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports threads to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// Export converts a thread to Markdown.
func (e *MarkdownExporter) Export(th *model.Thread) ([]byte, error) {
	if th == nil {
		return nil, fmt.Errorf("thread is nil")
	}
	if th.IsEmpty() {
		return nil, fmt.Errorf("thread has no messages")
	}

	var sb strings.Builder

	title := "Support chat"
	if th.Peer != "" {
		title = "Chat with " + th.Peer
	}
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString("Started: " + th.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range th.History() {
		if msg.Kind == model.KindNotice {
			sb.WriteString("> " + msg.Body + "\n\n")
			continue
		}

		label := msg.Origin.DisplayName()
		if msg.Sender != "" {
			label = msg.Sender
		}
		sb.WriteString("**" + label + "**")
		if e.options.IncludeTimestamps {
			sb.WriteString(" (" + msg.Timestamp.Format("15:04") + ")")
		}
		sb.WriteString(":\n\n")

		if msg.Body != "" {
			sb.WriteString(msg.Body + "\n\n")
		}
		if msg.HasAttachment() {
			sb.WriteString(fmt.Sprintf("[attachment: %s](%s)\n\n", msg.MimeType, msg.FileURL))
		}
	}

	return []byte(sb.String()), nil
}
