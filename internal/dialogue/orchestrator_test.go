package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/easeaico/gift-scout/internal/models"
	"github.com/easeaico/gift-scout/internal/session"
	"github.com/easeaico/gift-scout/internal/types"
)

type fakeGenerator struct {
	fn    func(req models.GenerateRequest) (string, error)
	calls []string
}

func (g *fakeGenerator) GenerateText(ctx context.Context, req models.GenerateRequest) (string, error) {
	g.calls = append(g.calls, req.Prompt)
	return g.fn(req)
}

type fakeRetriever struct {
	preview     []types.GiftCandidate
	previewErr  error
	deepDive    []types.GiftCandidate
	deepDiveErr error
}

func (r *fakeRetriever) FindPreviewProducts(ctx context.Context, queries []string, title string, maxPrice float64) ([]types.GiftCandidate, error) {
	return r.preview, r.previewErr
}

func (r *fakeRetriever) FindDeepDiveProducts(ctx context.Context, queries []string, title, description string, maxPrice float64) ([]types.GiftCandidate, error) {
	return r.deepDive, r.deepDiveErr
}

// fakeSessionStore serializes sessions like the real Redis store so tests
// exercise whole-session read-modify-write.
type fakeSessionStore struct {
	data map[string][]byte
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{data: make(map[string][]byte)}
}

func (s *fakeSessionStore) Get(ctx context.Context, sessionID string) (*types.RecommendationSession, error) {
	raw, ok := s.data[sessionID]
	if !ok {
		return nil, session.ErrNotFound
	}
	var sess types.RecommendationSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *fakeSessionStore) Save(ctx context.Context, sess *types.RecommendationSession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.data[sess.ID] = raw
	return nil
}

type fakeStore struct {
	recipients   []types.Recipient
	savedTracks  []types.TopicTrack
	interactions []types.UserInteraction
	reactions    map[string]string
	fail         bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{reactions: make(map[string]string)}
}

func (s *fakeStore) CreateRecipient(ctx context.Context, recipient types.Recipient) error {
	if s.fail {
		return errors.New("db down")
	}
	s.recipients = append(s.recipients, recipient)
	return nil
}

func (s *fakeStore) SaveHypotheses(ctx context.Context, sessionID string, track types.TopicTrack) error {
	if s.fail {
		return errors.New("db down")
	}
	s.savedTracks = append(s.savedTracks, track)
	return nil
}

func (s *fakeStore) SaveInteraction(ctx context.Context, sessionID string, interaction types.UserInteraction) error {
	if s.fail {
		return errors.New("db down")
	}
	s.interactions = append(s.interactions, interaction)
	return nil
}

func (s *fakeStore) UpdateHypothesisReaction(ctx context.Context, hypothesisID, reaction string) error {
	if s.fail {
		return errors.New("db down")
	}
	s.reactions[hypothesisID] = reaction
	return nil
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Notify(event string, kv ...any) {
	n.events = append(n.events, event)
}

func (n *recordingNotifier) has(event string) bool {
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

func demoQuiz() types.QuizAnswers {
	return types.QuizAnswers{
		RecipientAge: 30,
		Relationship: "friend",
		Occasion:     "birthday",
		Interests:    []string{"coffee"},
		Budget:       60,
		Currency:     "USD",
		Language:     "en",
	}
}

const bulkCoffeeResponse = `{"tracks": [{
	"topic": "coffee",
	"is_wide": false,
	"hypotheses": [{
		"title": "AeroPress travel kit",
		"description": "A compact brewer for coffee on the go.",
		"reasoning": "They already brew at home and travel often.",
		"gap_tag": "the_ritualist",
		"search_queries": ["aeropress kit", "travel coffee maker"]
	}]
}]}`

func TestInitSessionEndToEnd(t *testing.T) {
	generator := &fakeGenerator{fn: func(req models.GenerateRequest) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "Normalize this into"):
			return `{"topics": ["coffee"]}`, nil
		case strings.Contains(req.Prompt, "one track per topic"):
			return bulkCoffeeResponse, nil
		}
		return "", errors.New("unexpected prompt")
	}}
	retriever := &fakeRetriever{preview: []types.GiftCandidate{
		{ProductID: "p1", Title: "AeroPress Go"},
		{ProductID: "p2", Title: "Travel grinder"},
	}}
	sessions := newFakeSessionStore()
	store := newFakeStore()
	service := NewService(generator, retriever, sessions, store, &recordingNotifier{}, "en")

	sess, err := service.InitSession(context.Background(), demoQuiz(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(sess.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(sess.Tracks))
	}
	track := sess.Tracks[0]
	if track.Status != types.TrackStatusReady || track.Topic != "coffee" {
		t.Fatalf("unexpected track: %#v", track)
	}
	if len(track.Hypotheses) != 1 {
		t.Fatalf("expected 1 hypothesis, got %d", len(track.Hypotheses))
	}
	h := track.Hypotheses[0]
	if h.ID == "" || h.Title != "AeroPress travel kit" || len(h.Products) != 2 {
		t.Fatalf("unexpected hypothesis: %#v", h)
	}
	if sess.SelectedTopicID != track.ID {
		t.Fatalf("expected first track selected, got %q", sess.SelectedTopicID)
	}
	if _, err := sessions.Get(context.Background(), sess.ID); err != nil {
		t.Fatalf("session should be persisted: %v", err)
	}
	if len(store.recipients) != 1 || store.recipients[0].UserID != "user-1" {
		t.Fatalf("expected recipient row, got %#v", store.recipients)
	}
	if len(store.savedTracks) != 1 {
		t.Fatalf("expected hypotheses persisted once, got %d", len(store.savedTracks))
	}
}

func TestInitSessionBulkFailureIsolatesTopics(t *testing.T) {
	generator := &fakeGenerator{fn: func(req models.GenerateRequest) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "Normalize this into"):
			return `{"topics": ["coffee", "vinyl"]}`, nil
		case strings.Contains(req.Prompt, "one track per topic"):
			return "", errors.New("model overloaded")
		case strings.Contains(req.Prompt, "specific enough to search"):
			if strings.Contains(req.Prompt, "Topic: vinyl") {
				return "", errors.New("model overloaded")
			}
			return `{"is_wide": false}`, nil
		case strings.Contains(req.Prompt, "gift hypotheses for this topic"):
			return `{"hypotheses": [{"title": "Pour-over set", "search_queries": ["pour over kit"]}]}`, nil
		}
		return "", errors.New("unexpected prompt")
	}}
	notifier := &recordingNotifier{}
	service := NewService(generator, &fakeRetriever{}, newFakeSessionStore(), newFakeStore(), notifier, "en")

	quiz := demoQuiz()
	quiz.Interests = []string{"coffee", "vinyl"}
	sess, err := service.InitSession(context.Background(), quiz, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !notifier.has("bulk_generation_failed") {
		t.Fatalf("expected bulk_generation_failed event, got %v", notifier.events)
	}
	if len(sess.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(sess.Tracks))
	}
	byTopic := make(map[string]*types.TopicTrack)
	for _, track := range sess.Tracks {
		byTopic[track.Topic] = track
	}
	if byTopic["coffee"] == nil || byTopic["coffee"].Status != types.TrackStatusReady {
		t.Fatalf("coffee track should survive: %#v", byTopic["coffee"])
	}
	if byTopic["vinyl"] == nil || byTopic["vinyl"].Status != types.TrackStatusError {
		t.Fatalf("vinyl track should be marked failed: %#v", byTopic["vinyl"])
	}
}

func TestInitSessionWideTopicAsksQuestion(t *testing.T) {
	generator := &fakeGenerator{fn: func(req models.GenerateRequest) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "Normalize this into"):
			return `{"topics": ["sports"]}`, nil
		case strings.Contains(req.Prompt, "one track per topic"):
			return `{"tracks": [{"topic": "sports", "is_wide": true, "question": "Which sport do they play?", "branches": ["running", "climbing"]}]}`, nil
		}
		return "", errors.New("unexpected prompt")
	}}
	service := NewService(generator, &fakeRetriever{}, newFakeSessionStore(), newFakeStore(), &recordingNotifier{}, "en")

	quiz := demoQuiz()
	quiz.Interests = []string{"sports"}
	sess, err := service.InitSession(context.Background(), quiz, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	track := sess.Tracks[0]
	if track.Status != types.TrackStatusQuestion || track.Step == nil {
		t.Fatalf("expected a question track, got %#v", track)
	}
	if track.Step.Question != "Which sport do they play?" || len(track.Step.Options) != 2 {
		t.Fatalf("unexpected step: %#v", track.Step)
	}
	if len(track.Hypotheses) != 0 {
		t.Fatal("a question track must not carry hypotheses")
	}
}

func TestInitSessionEmptyInterestsProbes(t *testing.T) {
	generator := &fakeGenerator{fn: func(req models.GenerateRequest) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "Normalize this into"):
			return `{"topics": []}`, nil
		case strings.Contains(req.Prompt, "no usable interests"):
			return `{"question": "What does this person do on a free Sunday?", "options": []}`, nil
		}
		return "", errors.New("unexpected prompt")
	}}
	service := NewService(generator, &fakeRetriever{}, newFakeSessionStore(), newFakeStore(), &recordingNotifier{}, "en")

	quiz := demoQuiz()
	quiz.Interests = nil
	sess, err := service.InitSession(context.Background(), quiz, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(sess.Tracks) != 0 {
		t.Fatalf("expected no tracks, got %d", len(sess.Tracks))
	}
	if sess.CurrentProbe == nil || sess.CurrentProbe.Question != "What does this person do on a free Sunday?" {
		t.Fatalf("expected the generated probe, got %#v", sess.CurrentProbe)
	}
}

func TestInitSessionProbeFailureUsesFallback(t *testing.T) {
	generator := &fakeGenerator{fn: func(req models.GenerateRequest) (string, error) {
		if strings.Contains(req.Prompt, "Normalize this into") {
			return `{"topics": []}`, nil
		}
		return "", errors.New("model overloaded")
	}}
	notifier := &recordingNotifier{}
	service := NewService(generator, &fakeRetriever{}, newFakeSessionStore(), newFakeStore(), notifier, "en")

	quiz := demoQuiz()
	quiz.Interests = nil
	sess, err := service.InitSession(context.Background(), quiz, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if sess.CurrentProbe == nil || sess.CurrentProbe.Question == "" {
		t.Fatalf("expected a fallback probe, got %#v", sess.CurrentProbe)
	}
	if !notifier.has("probe_degraded") {
		t.Fatalf("expected probe_degraded event, got %v", notifier.events)
	}
}

func TestInitSessionNormalizationFailureUsesRawInterests(t *testing.T) {
	generator := &fakeGenerator{fn: func(req models.GenerateRequest) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "Normalize this into"):
			return "", errors.New("model overloaded")
		case strings.Contains(req.Prompt, "one track per topic"):
			return bulkCoffeeResponse, nil
		}
		return "", errors.New("unexpected prompt")
	}}
	notifier := &recordingNotifier{}
	service := NewService(generator, &fakeRetriever{}, newFakeSessionStore(), newFakeStore(), notifier, "en")

	sess, err := service.InitSession(context.Background(), demoQuiz(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !notifier.has("normalization_degraded") {
		t.Fatalf("expected normalization_degraded event, got %v", notifier.events)
	}
	if len(sess.Tracks) != 1 || sess.Tracks[0].Topic != "coffee" {
		t.Fatalf("expected raw interest track, got %#v", sess.Tracks)
	}
}

func TestInitSessionPreviewFailureLeavesHypothesisWithoutProducts(t *testing.T) {
	generator := &fakeGenerator{fn: func(req models.GenerateRequest) (string, error) {
		switch {
		case strings.Contains(req.Prompt, "Normalize this into"):
			return `{"topics": ["coffee"]}`, nil
		case strings.Contains(req.Prompt, "one track per topic"):
			return bulkCoffeeResponse, nil
		}
		return "", errors.New("unexpected prompt")
	}}
	retriever := &fakeRetriever{previewErr: errors.New("catalog down")}
	service := NewService(generator, retriever, newFakeSessionStore(), newFakeStore(), &recordingNotifier{}, "en")

	sess, err := service.InitSession(context.Background(), demoQuiz(), "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	track := sess.Tracks[0]
	if track.Status != types.TrackStatusReady {
		t.Fatalf("retrieval failure must not fail the track: %#v", track)
	}
	if len(track.Hypotheses[0].Products) != 0 {
		t.Fatalf("expected no products, got %v", track.Hypotheses[0].Products)
	}
}
