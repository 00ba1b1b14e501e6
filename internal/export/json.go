// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"

	"github.com/jeranaias/shopchat-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports threads to pretty-printed JSON. The output is a
// faithful dump of the thread; display options do not apply.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string { return ".json" }

// Export converts a thread to JSON.
func (e *JSONExporter) Export(th *model.Thread) ([]byte, error) {
	if th == nil {
		return nil, fmt.Errorf("thread is nil")
	}
	if th.IsEmpty() {
		return nil, fmt.Errorf("thread has no messages")
	}
	return json.MarshalIndent(th, "", "  ")
}
