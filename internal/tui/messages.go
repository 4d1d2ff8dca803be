// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/models"
)

type sessionEventMsg struct {
	event service.Event
}

// openResultMsg arrives once the session has finished opening.
type openResultMsg struct {
	result service.OpenResult
}

// commandDoneMsg ends an asynchronous command. notice is shown on success.
type commandDoneMsg struct {
	notice string
	err    error
}

type importPreviewMsg struct {
	data []byte
	doc  models.ExportDocument
	path string
	err  error
}
