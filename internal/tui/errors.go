// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/nutrilife-sync/internal/adapter"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/models"
)

var (
	errUnknownCommand = errors.New("unknown command, type help")
	errNoWeight       = errors.New("no weight samples to undo")
	errEmptyClipboard = errors.New("nothing to copy")
)

// humanizeError turns a command failure into a one-line message.
func humanizeError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, service.ErrSessionNotReady):
		return "Still loading your data, try again in a moment"
	case errors.Is(err, service.ErrNoDataset):
		return "Create a profile first: profile <name> <height> <weight> <calories>"
	case errors.Is(err, service.ErrMacroOverflow):
		return "Protein and carbs cannot exceed 100%"
	case errors.Is(err, service.ErrImportCancelled):
		return "Import cancelled"
	case errors.Is(err, models.ErrMalformedDocument):
		return "Not a valid export file: " + rootCause(err)
	case errors.Is(err, service.ErrInvalidDataProvided):
		return "Invalid input: " + rootCause(err)
	case errors.Is(err, adapter.ErrRemoteUnavailable):
		return "Server unavailable, changes stay on this device"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "Network is down or the server is unavailable"
	}

	return err.Error()
}

// rootCause returns the innermost message of a "%w: %w" chain.
func rootCause(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
