package dialogue

import (
	"context"
	"strings"

	"github.com/easeaico/gift-scout/internal/models"
	"github.com/easeaico/gift-scout/internal/prompt"
	"github.com/easeaico/gift-scout/internal/types"
	"github.com/easeaico/gift-scout/internal/utils"
)

const (
	maxGenerationTokens = 4096
	maxProbeTokens      = 512

	probeContextDeadEnd     = "dead_end"
	probeContextExploration = "exploration"

	hypothesesPerRequest = 3
)

// rawHypothesis is the model's hypothesis shape before assembly.
type rawHypothesis struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Reasoning     string   `json:"reasoning"`
	GapTag        string   `json:"gap_tag"`
	SearchQueries []string `json:"search_queries"`
}

// rawTrack is the model's per-topic result before assembly.
type rawTrack struct {
	Topic      string          `json:"topic"`
	IsWide     bool            `json:"is_wide"`
	Question   string          `json:"question"`
	Branches   []string        `json:"branches"`
	Hypotheses []rawHypothesis `json:"hypotheses"`
}

func (s *Service) normalizeTopics(ctx context.Context, quiz types.QuizAnswers) ([]string, error) {
	promptText, err := prompt.NormalizeTopics(quiz)
	if err != nil {
		return nil, err
	}
	raw, err := s.generator.GenerateText(ctx, models.GenerateRequest{
		Prompt:          promptText,
		SystemPrompt:    prompt.NormalizeSystem,
		MaxOutputTokens: maxProbeTokens,
		ResponseSchema:  prompt.TopicsSchema(),
	})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Topics []string `json:"topics"`
	}
	if err := utils.DecodeModelJSON(raw, &payload); err != nil {
		return nil, err
	}
	return utils.DedupeStrings(payload.Topics), nil
}

// generateBulk classifies and proposes hypotheses for all topics in one
// request. Results are keyed by lower-cased topic; a topic the model skipped
// simply has no entry.
func (s *Service) generateBulk(ctx context.Context, quiz types.QuizAnswers, topics, liked, ignored []string) (map[string]rawTrack, error) {
	promptText, err := prompt.BulkGeneration(quiz, topics, liked, ignored)
	if err != nil {
		return nil, err
	}
	raw, err := s.generator.GenerateText(ctx, models.GenerateRequest{
		Prompt:          promptText,
		SystemPrompt:    prompt.GenerationSystem,
		MaxOutputTokens: maxGenerationTokens,
		ResponseSchema:  prompt.TrackBatchSchema(),
	})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Tracks []rawTrack `json:"tracks"`
	}
	if err := utils.DecodeModelJSON(raw, &payload); err != nil {
		return nil, err
	}
	out := make(map[string]rawTrack, len(payload.Tracks))
	for _, track := range payload.Tracks {
		out[strings.ToLower(strings.TrimSpace(track.Topic))] = track
	}
	return out, nil
}

func (s *Service) classifyTopic(ctx context.Context, quiz types.QuizAnswers, topic string) (rawTrack, error) {
	promptText, err := prompt.ClassifyTopic(quiz, topic)
	if err != nil {
		return rawTrack{}, err
	}
	raw, err := s.generator.GenerateText(ctx, models.GenerateRequest{
		Prompt:          promptText,
		SystemPrompt:    prompt.GenerationSystem,
		MaxOutputTokens: maxProbeTokens,
		ResponseSchema:  prompt.ClassifySchema(),
	})
	if err != nil {
		return rawTrack{}, err
	}
	var payload rawTrack
	if err := utils.DecodeModelJSON(raw, &payload); err != nil {
		return rawTrack{}, err
	}
	payload.Topic = topic
	return payload, nil
}

func (s *Service) generateHypotheses(ctx context.Context, quiz types.QuizAnswers, topic string, liked, ignored, existingTitles []string) ([]rawHypothesis, error) {
	promptText, err := prompt.TopicHypotheses(quiz, topic, liked, ignored, existingTitles, hypothesesPerRequest)
	if err != nil {
		return nil, err
	}
	raw, err := s.generator.GenerateText(ctx, models.GenerateRequest{
		Prompt:          promptText,
		SystemPrompt:    prompt.GenerationSystem,
		MaxOutputTokens: maxGenerationTokens,
		ResponseSchema:  prompt.HypothesesSchema(),
	})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Hypotheses []rawHypothesis `json:"hypotheses"`
	}
	if err := utils.DecodeModelJSON(raw, &payload); err != nil {
		return nil, err
	}
	return payload.Hypotheses, nil
}

func (s *Service) generateProbe(ctx context.Context, quiz types.QuizAnswers, topic, probeContext string) (types.DialogueStep, error) {
	promptText, err := prompt.Probe(quiz, topic, probeContext)
	if err != nil {
		return types.DialogueStep{}, err
	}
	raw, err := s.generator.GenerateText(ctx, models.GenerateRequest{
		Prompt:          promptText,
		SystemPrompt:    prompt.ProbeSystem,
		MaxOutputTokens: maxProbeTokens,
		ResponseSchema:  prompt.ProbeSchema(),
	})
	if err != nil {
		return types.DialogueStep{}, err
	}
	var step types.DialogueStep
	if err := utils.DecodeModelJSON(raw, &step); err != nil {
		return types.DialogueStep{}, err
	}
	if strings.TrimSpace(step.Question) == "" {
		return types.DialogueStep{}, errEmptyProbe
	}
	return step, nil
}
