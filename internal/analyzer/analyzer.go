// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package analyzer is the image-analysis collaborator: it turns a meal
// photo into nutritional facts. Callers treat every failure as "no facts"
// and fall back to models.PlaceholderFacts.
package analyzer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/models"
)

var (
	ErrAnalysisDisabled = errors.New("image analysis is disabled")
	ErrEmptyImage       = errors.New("image is empty")
	ErrInvalidDataURL   = errors.New("invalid image data url")
	ErrUnparseableFacts = errors.New("analysis response holds no food facts")
	ErrUnsupportedImage = errors.New("unsupported image media type")
)

// Image is a meal photo.
type Image struct {
	Data      []byte
	MediaType string
}

// DataURL encodes the image as a "data:<type>;base64,..." URL, the form in
// which meal photos are kept in the dataset.
func (i Image) DataURL() string {
	return "data:" + i.MediaType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// DecodeDataURL parses a base64 data URL.
func DecodeDataURL(s string) (Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Image{}, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, ErrInvalidDataURL
	}
	mediaType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mediaType == "" {
		return Image{}, ErrInvalidDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}
	return Image{Data: data, MediaType: mediaType}, nil
}

var supportedMediaTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

func (i Image) validate() error {
	if len(i.Data) == 0 {
		return ErrEmptyImage
	}
	if _, ok := supportedMediaTypes[i.MediaType]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedImage, i.MediaType)
	}
	return nil
}

//go:generate mockgen -source=analyzer.go -destination=../mock/analyzer_mock.go -package=mock

// Analyzer produces nutritional facts from a meal photo.
type Analyzer interface {
	Analyze(ctx context.Context, img Image) (models.FoodFacts, error)
}

// Disabled is the analyzer used when no API key is configured.
type Disabled struct{}

func (Disabled) Analyze(context.Context, Image) (models.FoodFacts, error) {
	return models.FoodFacts{}, ErrAnalysisDisabled
}

// New returns the Anthropic analyzer when cfg carries an API key and
// [Disabled] otherwise.
func New(cfg config.Analyzer, log *logger.Logger) Analyzer {
	if cfg.APIKey == "" {
		log.Info().Str("func", "analyzer.New").Msg("no analyzer api key configured, image analysis disabled")
		return Disabled{}
	}
	return NewAnthropicAnalyzer(cfg, log)
}
