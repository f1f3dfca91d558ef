package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/easeaico/gift-scout/internal/prompt"
	"github.com/easeaico/gift-scout/internal/types"
	"github.com/easeaico/gift-scout/internal/utils"
)

// InteractionInput is one user event against a live session.
type InteractionInput struct {
	Type       string         `json:"type"`
	TargetID   string         `json:"target_id,omitempty"`
	TargetType string         `json:"target_type,omitempty"`
	Value      string         `json:"value,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Interact applies one interaction to the session and saves the result.
// Reads and writes go through the session store whole, so concurrent
// interactions against the same session resolve last-writer-wins.
func (s *Service) Interact(ctx context.Context, sessionID string, input InteractionInput) (*types.RecommendationSession, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	interaction := types.UserInteraction{
		Type:       input.Type,
		TargetID:   input.TargetID,
		TargetType: input.TargetType,
		Value:      input.Value,
		Metadata:   input.Metadata,
		CreatedAt:  time.Now(),
	}
	sess.Profile.AddInteraction(interaction)
	s.bestEffort("save interaction", func() error {
		return s.store.SaveInteraction(ctx, sessionID, interaction)
	})

	switch input.Type {
	case types.InteractionView:
		s.applyView(sess, input)
	case types.InteractionLike:
		err = s.applyLike(ctx, sess, input.TargetID)
	case types.InteractionUnlike:
		err = s.applyUnlike(ctx, sess, input.TargetID)
	case types.InteractionDislike:
		err = s.applyDislike(ctx, sess, input.TargetID)
	case types.InteractionUndislike:
		err = s.applyUndislike(ctx, sess, input.TargetID)
	case types.InteractionAnswer:
		err = s.applyAnswer(ctx, sess, input)
	case types.InteractionLoadMore:
		err = s.applyLoadMore(ctx, sess, input.TargetID)
	case types.InteractionSelectGift:
		s.applySelectGift(sess, input.TargetID)
	case types.InteractionSuggestTopics:
		s.applySuggestTopics(sess, input.Value)
	case types.InteractionComment:
		// Recorded in the history; no session mutation.
	default:
		err = fmt.Errorf("unknown interaction type %q", input.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

func (s *Service) applyView(sess *types.RecommendationSession, input InteractionInput) {
	switch input.TargetType {
	case "topic":
		if sess.FindTrack(input.TargetID) != nil {
			sess.SelectedTopicID = input.TargetID
			sess.SelectedHypothesisID = ""
		}
	case "hypothesis":
		if track, _ := sess.FindHypothesis(input.TargetID); track != nil {
			sess.SelectedTopicID = track.ID
			sess.SelectedHypothesisID = input.TargetID
		}
	}
}

// applyLike records the reaction and upgrades the hypothesis to its deep-dive
// product set. If the heavier search fails, the preview products stay.
func (s *Service) applyLike(ctx context.Context, sess *types.RecommendationSession, hypothesisID string) error {
	_, hypothesis := sess.FindHypothesis(hypothesisID)
	if hypothesis == nil {
		return ErrHypothesisNotFound
	}

	profile := sess.Profile
	profile.LikedHypothesisIDs = appendUnique(profile.LikedHypothesisIDs, hypothesisID)
	profile.LikedLabels = appendUnique(profile.LikedLabels, hypothesis.Title)
	profile.IgnoredHypothesisIDs = removeString(profile.IgnoredHypothesisIDs, hypothesisID)
	profile.IgnoredLabels = removeString(profile.IgnoredLabels, hypothesis.Title)
	s.bestEffort("update reaction", func() error {
		return s.store.UpdateHypothesisReaction(ctx, hypothesisID, "like")
	})

	products, err := s.retriever.FindDeepDiveProducts(ctx, hypothesis.SearchQueries, hypothesis.Title, hypothesis.Description, profile.Quiz.Budget)
	if err != nil {
		slog.Warn("deep dive failed, keeping preview products", "hypothesis", hypothesis.Title, "error", err.Error())
		s.notifier.Notify("deep_dive_degraded", "hypothesis_id", hypothesisID)
		return nil
	}
	// The deep-dive result replaces the previews even when it is empty; an
	// empty catalog answer is a valid outcome, not a failure.
	hypothesis.Products = products
	return nil
}

func (s *Service) applyUnlike(ctx context.Context, sess *types.RecommendationSession, hypothesisID string) error {
	_, hypothesis := sess.FindHypothesis(hypothesisID)
	if hypothesis == nil {
		return ErrHypothesisNotFound
	}
	profile := sess.Profile
	profile.LikedHypothesisIDs = removeString(profile.LikedHypothesisIDs, hypothesisID)
	profile.LikedLabels = removeString(profile.LikedLabels, hypothesis.Title)
	s.bestEffort("update reaction", func() error {
		return s.store.UpdateHypothesisReaction(ctx, hypothesisID, "")
	})
	return nil
}

func (s *Service) applyDislike(ctx context.Context, sess *types.RecommendationSession, hypothesisID string) error {
	_, hypothesis := sess.FindHypothesis(hypothesisID)
	if hypothesis == nil {
		return ErrHypothesisNotFound
	}
	profile := sess.Profile
	profile.IgnoredHypothesisIDs = appendUnique(profile.IgnoredHypothesisIDs, hypothesisID)
	profile.IgnoredLabels = appendUnique(profile.IgnoredLabels, hypothesis.Title)
	profile.LikedHypothesisIDs = removeString(profile.LikedHypothesisIDs, hypothesisID)
	profile.LikedLabels = removeString(profile.LikedLabels, hypothesis.Title)
	s.bestEffort("update reaction", func() error {
		return s.store.UpdateHypothesisReaction(ctx, hypothesisID, "dislike")
	})
	return nil
}

func (s *Service) applyUndislike(ctx context.Context, sess *types.RecommendationSession, hypothesisID string) error {
	_, hypothesis := sess.FindHypothesis(hypothesisID)
	if hypothesis == nil {
		return ErrHypothesisNotFound
	}
	profile := sess.Profile
	profile.IgnoredHypothesisIDs = removeString(profile.IgnoredHypothesisIDs, hypothesisID)
	profile.IgnoredLabels = removeString(profile.IgnoredLabels, hypothesis.Title)
	s.bestEffort("update reaction", func() error {
		return s.store.UpdateHypothesisReaction(ctx, hypothesisID, "")
	})
	return nil
}

// applyAnswer resolves a pending question. An answer to the session-level
// probe seeds a brand new track from the answer text; an answer to a track
// question refines that track's topic and regenerates its hypotheses.
func (s *Service) applyAnswer(ctx context.Context, sess *types.RecommendationSession, input InteractionInput) error {
	answer := strings.TrimSpace(input.Value)
	if answer == "" {
		return fmt.Errorf("answer interaction has no value")
	}
	quiz := sess.Profile.Quiz

	if input.TargetID == "" && sess.CurrentProbe != nil {
		sess.CurrentProbe = nil
		track, err := s.buildTrackPerTopic(ctx, quiz, answer)
		if err != nil {
			slog.Warn("track build from probe answer failed", "answer", answer, "error", err.Error())
			track = &types.TopicTrack{ID: uuid.NewString(), Topic: answer, Status: types.TrackStatusError}
		}
		sess.Tracks = append(sess.Tracks, track)
		sess.SelectedTopicID = track.ID
		if track.Status == types.TrackStatusReady {
			s.bestEffort("save hypotheses", func() error {
				return s.store.SaveHypotheses(ctx, sess.ID, *track)
			})
		}
		return nil
	}

	track := sess.FindTrack(input.TargetID)
	if track == nil {
		return ErrTrackNotFound
	}

	refined := fmt.Sprintf("%s (%s)", track.Topic, answer)
	raws, err := s.generateHypotheses(ctx, quiz, refined,
		snapshot(sess.Profile.LikedLabels), snapshot(sess.Profile.IgnoredLabels), nil)
	if err != nil {
		slog.Warn("hypothesis generation for answer failed", "topic", refined, "error", err.Error())
		s.notifier.Notify("answer_generation_failed", "track_id", track.ID)
		track.Status = types.TrackStatusError
		track.Step = nil
		return nil
	}

	track.Topic = refined
	track.Step = nil
	track.Hypotheses = s.buildHypotheses(ctx, quiz, raws)
	if len(track.Hypotheses) == 0 {
		step, probeErr := s.generateProbe(ctx, quiz, refined, probeContextExploration)
		if probeErr != nil {
			step = types.DialogueStep{Question: prompt.FallbackExploreQuestion(s.language(quiz), refined)}
		}
		track.Status = types.TrackStatusQuestion
		track.Step = &step
		return nil
	}
	track.Status = types.TrackStatusReady
	s.bestEffort("save hypotheses", func() error {
		return s.store.SaveHypotheses(ctx, sess.ID, *track)
	})
	return nil
}

// applyLoadMore appends fresh hypotheses to a ready track, steering the model
// away from titles already shown. On failure the track is left as it was.
func (s *Service) applyLoadMore(ctx context.Context, sess *types.RecommendationSession, trackID string) error {
	track := sess.FindTrack(trackID)
	if track == nil {
		return ErrTrackNotFound
	}
	quiz := sess.Profile.Quiz

	existing := make([]string, 0, len(track.Hypotheses))
	for _, h := range track.Hypotheses {
		existing = append(existing, h.Title)
	}

	raws, err := s.generateHypotheses(ctx, quiz, track.Topic,
		snapshot(sess.Profile.LikedLabels), snapshot(sess.Profile.IgnoredLabels), existing)
	if err != nil {
		slog.Warn("load more generation failed", "topic", track.Topic, "error", err.Error())
		s.notifier.Notify("load_more_failed", "track_id", track.ID)
		return nil
	}

	fresh := s.buildHypotheses(ctx, quiz, raws)
	if len(fresh) == 0 {
		return nil
	}
	track.Hypotheses = append(track.Hypotheses, fresh...)
	track.Status = types.TrackStatusReady
	track.Step = nil
	s.bestEffort("save hypotheses", func() error {
		return s.store.SaveHypotheses(ctx, sess.ID, *track)
	})
	return nil
}

func (s *Service) applySelectGift(sess *types.RecommendationSession, productID string) {
	if strings.TrimSpace(productID) == "" {
		return
	}
	sess.Profile.Shortlist = appendUnique(sess.Profile.Shortlist, productID)
}

func (s *Service) applySuggestTopics(sess *types.RecommendationSession, value string) {
	hints := utils.DedupeStrings(strings.Split(value, ","))
	for _, hint := range hints {
		sess.Profile.TopicHints = appendUnique(sess.Profile.TopicHints, hint)
	}
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, existing := range list {
		if existing != value {
			out = append(out, existing)
		}
	}
	return out
}

func snapshot(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return append([]string(nil), list...)
}
