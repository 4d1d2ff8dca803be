// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/internal/store"
	"github.com/MKhiriev/nutrilife-sync/internal/validators"
	"github.com/MKhiriev/nutrilife-sync/models"
)

var errMissingMetadata = errors.New("missing `authorization` metadata")

var errorCodeMap = map[error]codes.Code{
	service.ErrInvalidDataProvided:     codes.InvalidArgument,
	service.ErrValidationNoUserID:      codes.InvalidArgument,
	service.ErrTokenIsExpiredOrInvalid: codes.Unauthenticated,
	service.ErrForbidden:               codes.PermissionDenied,
	service.ErrStaleWrite:              codes.Aborted,

	validators.ErrInvalidUserID:   codes.InvalidArgument,
	validators.ErrPayloadTooLarge: codes.ResourceExhausted,
	models.ErrMalformedSnapshot:   codes.InvalidArgument,

	store.ErrSnapshotNotFound: codes.NotFound,
}

func codeFromError(err error) codes.Code {
	for target, code := range errorCodeMap {
		if errors.Is(err, target) {
			return code
		}
	}
	return codes.Internal
}

// toStatus converts a service error to a gRPC status error. Internal errors
// are logged and their details withheld from the caller.
func toStatus(ctx context.Context, fn string, err error) error {
	log := logger.FromContext(ctx)

	code := codeFromError(err)
	if code == codes.Internal {
		log.Err(err).Str("func", fn).Send()
		return status.Error(codes.Internal, "internal error")
	}

	log.Warn().Err(err).Str("func", fn).Str("code", code.String()).Send()
	return status.Error(code, err.Error())
}
