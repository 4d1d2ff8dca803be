// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"fmt"
)

// ExportDocument is the portable backup of a dataset produced by a manual
// export and consumed by a manual import.
type ExportDocument struct {
	Dataset
	Timestamp int64  `json:"timestamp"`
	User      string `json:"user,omitempty"`
}

// DecodeExportDocument parses an export document. Documents missing any
// dataset field are rejected as a whole. Every failure wraps
// ErrMalformedDocument.
func DecodeExportDocument(data []byte) (ExportDocument, error) {
	if err := requireFields(data, datasetFields...); err != nil {
		return ExportDocument{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return ExportDocument{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	if err := doc.Dataset.Validate(); err != nil {
		return ExportDocument{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	doc.Dataset.Normalize()
	return doc, nil
}
