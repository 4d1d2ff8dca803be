// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
	"github.com/MKhiriev/nutrilife-sync/internal/validators"
	"github.com/MKhiriev/nutrilife-sync/models"
)

const rawBodyFactor = 4

// getSnapshot returns the caller's snapshot, or 404 when there is none.
func (h *Handler) getSnapshot(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	userID, _ := utils.GetUserIDFromContext(r.Context())

	snapshot, err := h.services.SnapshotService.GetSnapshot(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, log, "*Handler.getSnapshot", err)
		return
	}

	if _, err = utils.WriteJSON(w, snapshot, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.getSnapshot").Msg("failed to write response")
	}
}

// putSnapshot replaces the caller's snapshot with the dataset in the body.
func (h *Handler) putSnapshot(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	userID, _ := utils.GetUserIDFromContext(r.Context())

	body := io.Reader(r.Body)
	if h.maxPayloadBytes > 0 {
		// the limit applies to the re-encoded dataset; raw bodies may carry
		// indentation, so only grossly oversized ones are cut off here
		body = http.MaxBytesReader(w, r.Body, int64(h.maxPayloadBytes)*rawBodyFactor)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeServiceError(w, log, "*Handler.putSnapshot", validators.ErrPayloadTooLarge)
			return
		}
		log.Err(err).Str("func", "*Handler.putSnapshot").Msg("failed to read request body")
		utils.WriteError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	var dataset models.Dataset
	if err = json.Unmarshal(raw, &dataset); err != nil {
		log.Err(err).Str("func", "*Handler.putSnapshot").Msg("invalid JSON")
		utils.WriteError(w, ErrInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tag, tagged, err := writeTagFromRequest(r)
	if err != nil {
		log.Warn().Err(err).Str("func", "*Handler.putSnapshot").Msg("invalid write tag")
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if tagged {
		ctx = utils.WithWriteTag(ctx, tag)
	}

	info, err := h.services.SnapshotService.SaveSnapshot(ctx, userID, dataset)
	if err != nil {
		h.writeServiceError(w, log, "*Handler.putSnapshot", err)
		return
	}

	log.Debug().Str("func", "*Handler.putSnapshot").
		Int64("last_synced", info.LastSynced).
		Int("size_bytes", info.SizeBytes).
		Msg("snapshot stored")

	if _, err = utils.WriteJSON(w, info, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.putSnapshot").Msg("failed to write response")
	}
}

// writeTagFromRequest reads the optional writer and sequence headers. Both
// must be present for a write to be tagged.
func writeTagFromRequest(r *http.Request) (models.WriteTag, bool, error) {
	writer := r.Header.Get(utils.WriterHeader)
	rawSeq := r.Header.Get(utils.WriteSeqHeader)
	if writer == "" && rawSeq == "" {
		return models.WriteTag{}, false, nil
	}
	if writer == "" || rawSeq == "" {
		return models.WriteTag{}, false, ErrIncompleteWriteTag
	}

	seq, err := strconv.ParseUint(rawSeq, 10, 64)
	if err != nil {
		return models.WriteTag{}, false, fmt.Errorf("%w: %w", ErrIncompleteWriteTag, err)
	}
	return models.WriteTag{Writer: writer, Seq: seq}, true, nil
}

// listSnapshots lists every stored snapshot. Admin only.
func (h *Handler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	infos, err := h.services.SnapshotService.ListSnapshots(r.Context())
	if err != nil {
		h.writeServiceError(w, log, "*Handler.listSnapshots", err)
		return
	}
	if infos == nil {
		infos = []models.SnapshotInfo{}
	}

	if _, err = utils.WriteJSON(w, infos, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.listSnapshots").Msg("failed to write response")
	}
}

// deleteSnapshot removes the snapshot of {userID}. Admins may remove any
// account, users only their own.
func (h *Handler) deleteSnapshot(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	target := chi.URLParam(r, "userID")
	callerID, _ := utils.GetUserIDFromContext(r.Context())
	role, _ := utils.GetRoleFromContext(r.Context())

	if role != models.RoleAdmin && target != callerID {
		log.Warn().Str("func", "*Handler.deleteSnapshot").
			Str("caller", callerID).
			Str("target", target).
			Msg("removal of another account denied")
		h.writeServiceError(w, log, "*Handler.deleteSnapshot", service.ErrForbidden)
		return
	}

	if err := h.services.SnapshotService.DeleteSnapshot(r.Context(), target); err != nil {
		h.writeServiceError(w, log, "*Handler.deleteSnapshot", err)
		return
	}

	log.Info().Str("func", "*Handler.deleteSnapshot").Str("user_id", target).Msg("snapshot removed")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *logger.Logger, fn string, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Str("func", fn).Send()
		utils.WriteError(w, http.StatusText(status), status)
		return
	}

	log.Warn().Err(err).Str("func", fn).Int("status", status).Send()
	utils.WriteError(w, err.Error(), status)
}
