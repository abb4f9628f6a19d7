package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trendscout-agent/internal/models"
)

// stripMarkdownCodeBlock removes markdown code block delimiters from AI responses
func stripMarkdownCodeBlock(response string) string {
	response = strings.TrimSpace(response)

	// Find the first { which starts valid JSON
	startIdx := strings.Index(response, "{")
	if startIdx == -1 {
		return response
	}

	// Find the last } which ends valid JSON
	endIdx := strings.LastIndex(response, "}")
	if endIdx == -1 || endIdx < startIdx {
		return response
	}

	// Extract just the JSON object
	return response[startIdx : endIdx+1]
}

// AnalyzeVideo asks Claude for the hook / content-structure / delivery
// / CTA breakdown of one outlier video. The result is attached to the
// record downstream; its internals are not validated here.
func (c *Client) AnalyzeVideo(ctx context.Context, rec *models.Record) (*models.VideoAnalysis, error) {
	userPrompt := fmt.Sprintf(VideoAnalysisUserPrompt,
		rec.Platform,
		rec.URL,
		rec.Caption,
		rec.EngagementRate,
	)

	response, err := c.CompleteWithJSON(ctx, VideoAnalysisSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var analysis models.VideoAnalysis
	if err := json.Unmarshal([]byte(stripMarkdownCodeBlock(response)), &analysis); err != nil {
		c.log.Error().
			Err(err).
			Str("response", response).
			Msg("Failed to parse video analysis response")
		return nil, fmt.Errorf("failed to parse video analysis response: %w", err)
	}

	return &analysis, nil
}
