package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/easeaico/gift-scout/internal/prompt"
	"github.com/easeaico/gift-scout/internal/types"
	"github.com/easeaico/gift-scout/internal/utils"
)

var errEmptyProbe = errors.New("model returned an empty probe question")

// InitSession builds a fresh discovery session from the quiz: normalize the
// interests into topics, generate a track per topic, fetch preview products
// for every hypothesis, and persist the assembled session. The session is
// usable even when individual topics fail; only a session-store failure is
// fatal.
func (s *Service) InitSession(ctx context.Context, quiz types.QuizAnswers, userID string) (*types.RecommendationSession, error) {
	now := time.Now()
	sess := &types.RecommendationSession{
		ID:        uuid.NewString(),
		Profile:   types.NewRecipientProfile(quiz),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if userID != "" {
		s.bestEffort("create recipient", func() error {
			return s.store.CreateRecipient(ctx, types.Recipient{
				ID:           uuid.NewString(),
				UserID:       userID,
				Age:          quiz.RecipientAge,
				Gender:       quiz.RecipientGender,
				Relationship: quiz.Relationship,
				Occasion:     quiz.Occasion,
				Interests:    quiz.Interests,
				Budget:       quiz.Budget,
				Language:     s.language(quiz),
				CreatedAt:    now,
			})
		})
	}

	topics, err := s.normalizeTopics(ctx, quiz)
	if err != nil {
		slog.Warn("topic normalization failed, using raw interests", "error", err.Error())
		s.notifier.Notify("normalization_degraded", "session_id", sess.ID)
		topics = utils.DedupeStrings(quiz.Interests)
	}

	if len(topics) == 0 {
		sess.CurrentProbe = s.deadEndProbe(ctx, quiz)
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
		return sess, nil
	}

	sess.Tracks = s.buildAllTracks(ctx, sess.ID, quiz, topics)
	if len(sess.Tracks) > 0 {
		sess.SelectedTopicID = sess.Tracks[0].ID
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// deadEndProbe produces the session-level question asked when the quiz gave
// us nothing to work with. A generation failure degrades to a fixed,
// localized question rather than an empty session.
func (s *Service) deadEndProbe(ctx context.Context, quiz types.QuizAnswers) *types.DialogueStep {
	step, err := s.generateProbe(ctx, quiz, "", probeContextDeadEnd)
	if err != nil {
		slog.Warn("dead-end probe generation failed, using fallback", "error", err.Error())
		s.notifier.Notify("probe_degraded", "context", probeContextDeadEnd)
		return &types.DialogueStep{Question: prompt.FallbackProbe(s.language(quiz))}
	}
	return &step
}

// buildAllTracks tries the single bulk generation first and falls back to
// independent per-topic generation when the bulk call fails. Either way each
// topic is built concurrently and a failing topic never sinks its siblings.
func (s *Service) buildAllTracks(ctx context.Context, sessionID string, quiz types.QuizAnswers, topics []string) []*types.TopicTrack {
	bulk, bulkErr := s.generateBulk(ctx, quiz, topics, nil, nil)
	if bulkErr != nil {
		slog.Warn("bulk generation failed, regenerating per topic", "error", bulkErr.Error())
		s.notifier.Notify("bulk_generation_failed", "session_id", sessionID)
	}

	results := utils.Gather(ctx, len(topics), func(ctx context.Context, i int) (*types.TopicTrack, error) {
		topic := topics[i]
		if bulkErr == nil {
			if raw, ok := bulk[strings.ToLower(strings.TrimSpace(topic))]; ok {
				raw.Topic = topic
				return s.buildTrack(ctx, quiz, raw)
			}
		}
		return s.buildTrackPerTopic(ctx, quiz, topic)
	})

	tracks := make([]*types.TopicTrack, 0, len(topics))
	for _, result := range results {
		if result.Err != nil {
			slog.Warn("track build failed", "topic", topics[result.Index], "error", result.Err.Error())
			s.notifier.Notify("track_generation_failed", "topic", topics[result.Index])
			tracks = append(tracks, &types.TopicTrack{
				ID:     uuid.NewString(),
				Topic:  topics[result.Index],
				Status: types.TrackStatusError,
			})
			continue
		}
		track := result.Value
		tracks = append(tracks, track)
		if track.Status == types.TrackStatusReady {
			s.bestEffort("save hypotheses", func() error {
				return s.store.SaveHypotheses(ctx, sessionID, *track)
			})
		}
	}
	return tracks
}

// buildTrack assembles a track from an already-generated per-topic result:
// a wide topic becomes a branch question, a topic with hypotheses gets its
// preview products fetched, and an empty topic turns into an exploration
// probe.
func (s *Service) buildTrack(ctx context.Context, quiz types.QuizAnswers, raw rawTrack) (*types.TopicTrack, error) {
	track := &types.TopicTrack{
		ID:    uuid.NewString(),
		Topic: raw.Topic,
	}

	if raw.IsWide {
		question := strings.TrimSpace(raw.Question)
		if question == "" {
			question = prompt.FallbackWideQuestion(s.language(quiz), raw.Topic)
		}
		track.Status = types.TrackStatusQuestion
		track.Step = &types.DialogueStep{Question: question, Options: raw.Branches}
		return track, nil
	}

	hypotheses := s.buildHypotheses(ctx, quiz, raw.Hypotheses)
	if len(hypotheses) > 0 {
		track.Status = types.TrackStatusReady
		track.Hypotheses = hypotheses
		return track, nil
	}

	step, err := s.generateProbe(ctx, quiz, raw.Topic, probeContextExploration)
	if err != nil {
		slog.Warn("exploration probe failed, using fallback", "topic", raw.Topic, "error", err.Error())
		step = types.DialogueStep{Question: prompt.FallbackExploreQuestion(s.language(quiz), raw.Topic)}
	}
	track.Status = types.TrackStatusQuestion
	track.Step = &step
	return track, nil
}

// buildTrackPerTopic generates one topic from scratch: classify it, then
// either ask the branch question or generate hypotheses for it.
func (s *Service) buildTrackPerTopic(ctx context.Context, quiz types.QuizAnswers, topic string) (*types.TopicTrack, error) {
	raw, err := s.classifyTopic(ctx, quiz, topic)
	if err != nil {
		return nil, err
	}
	if !raw.IsWide {
		raw.Hypotheses, err = s.generateHypotheses(ctx, quiz, topic, nil, nil, nil)
		if err != nil {
			return nil, err
		}
	}
	return s.buildTrack(ctx, quiz, raw)
}

// buildHypotheses materializes raw model hypotheses: drops malformed ones,
// assigns ids, and fetches preview products concurrently. A retrieval failure
// leaves that hypothesis without products instead of failing the track.
func (s *Service) buildHypotheses(ctx context.Context, quiz types.QuizAnswers, raws []rawHypothesis) []types.Hypothesis {
	hypotheses := make([]types.Hypothesis, 0, len(raws))
	for _, raw := range raws {
		queries := utils.DedupeStrings(raw.SearchQueries)
		if strings.TrimSpace(raw.Title) == "" || len(queries) == 0 {
			continue
		}
		hypotheses = append(hypotheses, types.Hypothesis{
			ID:            uuid.NewString(),
			Title:         raw.Title,
			Description:   raw.Description,
			Reasoning:     raw.Reasoning,
			GapTag:        raw.GapTag,
			SearchQueries: queries,
		})
	}
	if len(hypotheses) == 0 {
		return nil
	}

	results := utils.Gather(ctx, len(hypotheses), func(ctx context.Context, i int) ([]types.GiftCandidate, error) {
		h := hypotheses[i]
		return s.retriever.FindPreviewProducts(ctx, h.SearchQueries, h.Title, quiz.Budget)
	})
	for _, result := range results {
		if result.Err != nil {
			slog.Warn("preview retrieval failed", "hypothesis", hypotheses[result.Index].Title, "error", result.Err.Error())
			continue
		}
		hypotheses[result.Index].Products = result.Value
	}
	return hypotheses
}
