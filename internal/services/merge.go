package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dlopezkluever/wizardirector/internal/clients/openai"
	"github.com/dlopezkluever/wizardirector/internal/platform/logger"
)

const mergeSystemPrompt = `You merge two descriptions of the same creative asset into one.
Keep every concrete visual detail from both. Prefer the second description's
wording where the two disagree. Answer with the merged description only.`

type llmDescriptionMerger struct {
	log *logger.Logger
	ai  openai.Client
}

func NewDescriptionMerger(log *logger.Logger, ai openai.Client) DescriptionMerger {
	return &llmDescriptionMerger{
		log: log.With("service", "DescriptionMerger"),
		ai:  ai,
	}
}

func (m *llmDescriptionMerger) Merge(ctx context.Context, baseText, additionalText string) (string, error) {
	baseText = strings.TrimSpace(baseText)
	additionalText = strings.TrimSpace(additionalText)
	if additionalText == "" {
		return baseText, nil
	}
	if baseText == "" {
		return additionalText, nil
	}

	user := fmt.Sprintf("Description A:\n%s\n\nDescription B:\n%s", baseText, additionalText)
	merged, err := m.ai.GenerateText(ctx, mergeSystemPrompt, user)
	if err != nil {
		return "", err
	}
	merged = strings.TrimSpace(merged)
	if merged == "" {
		return "", fmt.Errorf("merge produced empty description")
	}
	return merged, nil
}
