// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/models"
)

type clientTransferService struct {
	session DatasetSession
	clock   clock.Clock

	logger *logger.Logger
}

// NewClientTransferService returns the export/import service of session.
func NewClientTransferService(session DatasetSession, clk clock.Clock, logger *logger.Logger) ClientTransferService {
	return &clientTransferService{
		session: session,
		clock:   clk,
		logger:  logger,
	}
}

// Export returns an indented JSON export document. The compaction transform
// is not applied.
func (t *clientTransferService) Export(_ context.Context) ([]byte, error) {
	d, ok := t.session.Dataset()
	if !ok {
		return nil, ErrNoDataset
	}
	d.Normalize()

	doc := models.ExportDocument{
		Dataset:   d,
		Timestamp: t.clock.Now(),
		User:      t.session.UserID(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export document: %w", err)
	}

	t.logger.Info().
		Str("func", "clientTransferService.Export").
		Int("bytes", len(data)).
		Msg("dataset exported")

	return data, nil
}

// Import decodes data, asks confirm and replaces the dataset wholesale. A
// nil confirm approves every document.
func (t *clientTransferService) Import(_ context.Context, data []byte, confirm func(models.ExportDocument) bool) error {
	doc, err := models.DecodeExportDocument(data)
	if err != nil {
		t.logger.Warn().Err(err).Str("func", "clientTransferService.Import").Msg("import document rejected")
		return err
	}

	if confirm != nil && !confirm(doc) {
		return ErrImportCancelled
	}

	imported := doc.Dataset.Clone()
	if err = t.session.Mutate(func(d *models.Dataset) error {
		*d = imported
		return nil
	}); err != nil {
		return fmt.Errorf("replace dataset: %w", err)
	}

	t.logger.Info().
		Str("func", "clientTransferService.Import").
		Str("document_user", doc.User).
		Int64("document_timestamp", doc.Timestamp).
		Msg("dataset imported")

	return nil
}
