// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package analyzer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/models"
)

const maxResponseTokens = 512

const analysisPrompt = `Identify the food in this photo and estimate its nutrition for the whole portion shown.
Answer with a single JSON object and nothing else, using exactly these keys:
{"food_name": string, "calories": number, "protein": number, "carbs": number, "fat": number, "confidence": number}
Macros are grams. confidence is between 0 and 1.`

type anthropicAnalyzer struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	logger  *logger.Logger
}

// NewAnthropicAnalyzer analyzes photos with the Anthropic Messages API.
// opts are applied after the API key, so tests can redirect the base URL.
func NewAnthropicAnalyzer(cfg config.Analyzer, log *logger.Logger, opts ...option.RequestOption) Analyzer {
	clientOpts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)

	return &anthropicAnalyzer{
		client:  anthropic.NewClient(clientOpts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  log,
	}
}

func (a *anthropicAnalyzer) Analyze(ctx context.Context, img Image) (models.FoodFacts, error) {
	if err := img.validate(); err != nil {
		return models.FoodFacts{}, err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	started := time.Now()
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxResponseTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(img.MediaType, base64.StdEncoding.EncodeToString(img.Data)),
				anthropic.NewTextBlock(analysisPrompt),
			),
		},
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("func", "anthropicAnalyzer.Analyze").Msg("analysis request failed")
		return models.FoodFacts{}, fmt.Errorf("analysis request: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	facts, err := parseFacts(text.String())
	if err != nil {
		a.logger.Warn().Err(err).Str("func", "anthropicAnalyzer.Analyze").Msg("analysis response rejected")
		return models.FoodFacts{}, err
	}

	a.logger.Debug().
		Str("func", "anthropicAnalyzer.Analyze").
		Str("food_name", facts.FoodName).
		Dur("took", time.Since(started)).
		Msg("photo analyzed")

	return facts, nil
}

// parseFacts extracts the JSON object from the model answer. Negative or
// non-finite numbers are rejected; confidence is clamped to [0, 1].
func parseFacts(text string) (models.FoodFacts, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return models.FoodFacts{}, ErrUnparseableFacts
	}

	var facts models.FoodFacts
	if err := json.Unmarshal([]byte(text[start:end+1]), &facts); err != nil {
		return models.FoodFacts{}, fmt.Errorf("%w: %w", ErrUnparseableFacts, err)
	}

	for _, v := range []float64{facts.Calories, facts.Protein, facts.Carbs, facts.Fat} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return models.FoodFacts{}, fmt.Errorf("%w: invalid nutrient value %v", ErrUnparseableFacts, v)
		}
	}

	facts.FoodName = strings.TrimSpace(facts.FoodName)
	if facts.FoodName == "" {
		facts.FoodName = models.PlaceholderFacts().FoodName
	}
	facts.Confidence = math.Max(0, math.Min(1, facts.Confidence))

	return facts, nil
}
