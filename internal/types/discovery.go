package types

import "time"

// HistoryCap bounds the interaction history kept on the profile so the
// serialized session stays small. The full history lives in the database.
const HistoryCap = 30

// TrackStatus is the lifecycle state of a topic track.
type TrackStatus string

const (
	TrackStatusReady    TrackStatus = "ready"
	TrackStatusQuestion TrackStatus = "question"
	TrackStatusLoading  TrackStatus = "loading"
	TrackStatusError    TrackStatus = "error"
)

// Interaction types recorded against a session.
const (
	InteractionView          = "view"
	InteractionLike          = "like"
	InteractionUnlike        = "unlike"
	InteractionDislike       = "dislike"
	InteractionUndislike     = "undislike"
	InteractionAnswer        = "answer"
	InteractionLoadMore      = "load_more"
	InteractionSelectGift    = "select_gift"
	InteractionSuggestTopics = "suggest_topics"
	InteractionComment       = "comment"
)

// QuizAnswers is the immutable quiz input that starts a discovery session.
type QuizAnswers struct {
	RecipientAge    int      `json:"recipient_age"`
	RecipientGender string   `json:"recipient_gender"`
	Relationship    string   `json:"relationship"`
	Occasion        string   `json:"occasion"`
	Vibe            string   `json:"vibe"`
	Interests       []string `json:"interests"`
	Budget          float64  `json:"budget"`
	Currency        string   `json:"currency"`
	Deadline        string   `json:"deadline"`
	EffortLevel     string   `json:"effort_level"`
	Language        string   `json:"language"`
}

// GiftCandidate is a read-only projection of a catalog product.
type GiftCandidate struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	ImageURL  string  `json:"image_url"`
	Merchant  string  `json:"merchant"`
	Category  string  `json:"category"`
}

// Hypothesis is a single gift thesis inside a track.
type Hypothesis struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Reasoning   string   `json:"reasoning"`
	// GapTag is the psychological angle of the thesis (e.g. "the_optimizer").
	GapTag        string          `json:"gap_tag"`
	SearchQueries []string        `json:"search_queries"`
	Products      []GiftCandidate `json:"products"`
}

// DialogueStep is a clarifying question shown when a topic is too broad or
// yields no hypotheses.
type DialogueStep struct {
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// TopicTrack is the per-topic discovery thread. It holds either a pending
// question or a set of hypotheses, never both.
type TopicTrack struct {
	ID         string        `json:"id"`
	Topic      string        `json:"topic"`
	Status     TrackStatus   `json:"status"`
	Step       *DialogueStep `json:"step,omitempty"`
	Hypotheses []Hypothesis  `json:"hypotheses,omitempty"`
}

// UserInteraction is an append-only event within a session.
type UserInteraction struct {
	Type       string         `json:"type"`
	TargetID   string         `json:"target_id,omitempty"`
	TargetType string         `json:"target_type,omitempty"`
	Value      string         `json:"value,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RecipientProfile accumulates everything the session learns about the
// recipient: the quiz, a capped interaction history, reaction id/label lists
// used as generation context, and the gift shortlist.
type RecipientProfile struct {
	Quiz                 QuizAnswers       `json:"quiz"`
	Interactions         []UserInteraction `json:"interactions,omitempty"`
	LikedHypothesisIDs   []string          `json:"liked_hypothesis_ids,omitempty"`
	IgnoredHypothesisIDs []string          `json:"ignored_hypothesis_ids,omitempty"`
	LikedLabels          []string          `json:"liked_labels,omitempty"`
	IgnoredLabels        []string          `json:"ignored_labels,omitempty"`
	TopicHints           []string          `json:"topic_hints,omitempty"`
	Shortlist            []string          `json:"shortlist,omitempty"`
}

// NewRecipientProfile creates a profile for a fresh session.
func NewRecipientProfile(quiz QuizAnswers) *RecipientProfile {
	return &RecipientProfile{Quiz: quiz}
}

// AddInteraction appends an event and drops the oldest entries beyond HistoryCap.
func (p *RecipientProfile) AddInteraction(interaction UserInteraction) {
	p.Interactions = append(p.Interactions, interaction)
	if len(p.Interactions) > HistoryCap {
		p.Interactions = p.Interactions[len(p.Interactions)-HistoryCap:]
	}
}

// RecommendationSession is the root aggregate stored per session id. The
// profile is persisted with the session but never exposed by the outer API
// layer, which builds its own view.
type RecommendationSession struct {
	ID                   string            `json:"id"`
	Profile              *RecipientProfile `json:"profile"`
	Tracks               []*TopicTrack     `json:"tracks"`
	SelectedTopicID      string            `json:"selected_topic_id,omitempty"`
	SelectedHypothesisID string            `json:"selected_hypothesis_id,omitempty"`
	// CurrentProbe holds the session-level dead-end question when no topics
	// could be derived from the quiz.
	CurrentProbe *DialogueStep `json:"current_probe,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// FindTrack returns the track with the given id, or nil.
func (s *RecommendationSession) FindTrack(trackID string) *TopicTrack {
	for _, track := range s.Tracks {
		if track.ID == trackID {
			return track
		}
	}
	return nil
}

// FindHypothesis returns the hypothesis with the given id and its track.
func (s *RecommendationSession) FindHypothesis(hypothesisID string) (*TopicTrack, *Hypothesis) {
	for _, track := range s.Tracks {
		for i := range track.Hypotheses {
			if track.Hypotheses[i].ID == hypothesisID {
				return track, &track.Hypotheses[i]
			}
		}
	}
	return nil, nil
}

// Recipient is the durable row mirrored from a profile when the session has
// an owning user.
type Recipient struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender"`
	Relationship string    `json:"relationship"`
	Occasion     string    `json:"occasion"`
	Interests    []string  `json:"interests"`
	Budget       float64   `json:"budget"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"created_at"`
}
