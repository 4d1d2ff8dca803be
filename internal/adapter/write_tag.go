// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/MKhiriev/nutrilife-sync/models"
)

// writeTagger numbers the pushes of one adapter. The server refuses a push
// numbered below one it already stored from the same writer.
type writeTagger struct {
	writer string
	seq    atomic.Uint64
}

func newWriteTagger() *writeTagger {
	return &writeTagger{writer: uuid.NewString()}
}

// next returns the tag of the next push.
func (w *writeTagger) next() models.WriteTag {
	return models.WriteTag{Writer: w.writer, Seq: w.seq.Add(1)}
}
