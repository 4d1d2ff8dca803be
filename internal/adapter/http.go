// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/utils"
	"github.com/MKhiriev/nutrilife-sync/models"
)

const (
	snapshotPath       = "/api/snapshot"
	adminSnapshotsPath = "/api/admin/snapshots"
)

type httpServerAdapter struct {
	client *utils.HTTPClient
	hasher *utils.Hasher
	tokens *tokenCache
	tags   *writeTagger

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises adapterCfg.HTTPAddress into a base URL and
// signs request bodies with hashKey when it is not empty.
func NewHTTPServerAdapter(adapterCfg config.Adapter, creds Credentials, hashKey string, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpServerAdapter{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		hasher: utils.NewHasher(hashKey),
		tokens: newTokenCache(creds),
		tags:   newWriteTagger(),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// GetSnapshot implements [ServerAdapter] with GET /api/snapshot. A 404
// response means the user has no remote snapshot.
func (h *httpServerAdapter) GetSnapshot(ctx context.Context, userID string) (models.Snapshot, bool, error) {
	req, err := h.authedRequest(ctx, userID)
	if err != nil {
		return models.Snapshot{}, false, err
	}

	resp, err := req.Get(snapshotPath)
	if err != nil {
		return models.Snapshot{}, false, fmt.Errorf("%w: get snapshot request: %w", ErrRemoteUnavailable, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return models.Snapshot{}, false, nil
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Snapshot{}, false, err
	}

	snapshot, err := models.DecodeSnapshot(resp.Body())
	if err != nil {
		return models.Snapshot{}, false, err
	}

	return snapshot, true, nil
}

// PutSnapshot implements [ServerAdapter] with PUT /api/snapshot.
func (h *httpServerAdapter) PutSnapshot(ctx context.Context, userID string, d models.Dataset) bool {
	log := h.logger.With().Str("func", "httpServerAdapter.PutSnapshot").Str("user_id", userID).Logger()

	body, err := json.Marshal(d)
	if err != nil {
		log.Err(err).Msg("failed to encode dataset")
		return false
	}

	req, err := h.authedRequest(ctx, userID)
	if err != nil {
		log.Err(err).Msg("failed to create token")
		return false
	}
	if h.hasher.Enabled() {
		req.SetHeader(utils.HashHeader, h.hasher.HashHex(body))
	}
	tag := h.tags.next()

	var info models.SnapshotInfo
	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetHeader(utils.WriterHeader, tag.Writer).
		SetHeader(utils.WriteSeqHeader, strconv.FormatUint(tag.Seq, 10)).
		SetBody(body).
		SetResult(&info).
		Put(snapshotPath)
	if err != nil {
		log.Warn().Err(err).Msg("put snapshot request failed")
		return false
	}
	if err = mapHTTPError(resp); err != nil {
		log.Warn().Err(err).Msg("put snapshot rejected")
		return false
	}

	log.Debug().Int64("last_synced", info.LastSynced).Int("size_bytes", info.SizeBytes).Msg("snapshot pushed")
	return true
}

// DeleteSnapshot implements [ServerAdapter] with
// DELETE /api/admin/snapshots/{userID}.
func (h *httpServerAdapter) DeleteSnapshot(ctx context.Context, userID string) error {
	req, err := h.authedRequest(ctx, userID)
	if err != nil {
		return err
	}

	resp, err := req.
		SetPathParam("userID", userID).
		Delete(adminSnapshotsPath + "/{userID}")
	if err != nil {
		return fmt.Errorf("%w: delete snapshot request: %w", ErrRemoteUnavailable, err)
	}

	if err = mapHTTPError(resp); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// ListSnapshots implements [ServerAdapter] with GET /api/admin/snapshots.
func (h *httpServerAdapter) ListSnapshots(ctx context.Context) ([]models.SnapshotInfo, error) {
	req, err := h.authedRequest(ctx, "")
	if err != nil {
		return nil, err
	}

	var infos []models.SnapshotInfo
	resp, err := req.SetResult(&infos).Get(adminSnapshotsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: list snapshots request: %w", ErrRemoteUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	if infos == nil {
		infos = []models.SnapshotInfo{}
	}
	return infos, nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context, userID string) (*resty.Request, error) {
	token, err := h.tokens.token(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return h.client.R().
		SetContext(ctx).
		SetAuthToken(token), nil
}
