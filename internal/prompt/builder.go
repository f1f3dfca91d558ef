// Package prompt assembles generation prompts and fallback texts.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/easeaico/gift-scout/internal/types"
)

// System prompts for the generation calls. Structured output is enforced by
// the response schema; the prompt still states it for weaker backends.
const (
	NormalizeSystem = `You are a gift discovery assistant. You clean up raw quiz input into a usable topic list. Return a valid JSON object that matches the output schema. Do not include any text outside the JSON object.`

	GenerationSystem = `You are a thoughtful gift advisor. For each interest topic you propose concrete gift hypotheses: a short thesis about what kind of gift would resonate and why, with product search queries a shopping catalog can answer. Avoid repeating ideas the user has already seen. Return a valid JSON object that matches the output schema. Do not include any text outside the JSON object.`

	ProbeSystem = `You are a gift discovery assistant. When you lack enough signal to propose gifts, you ask the user exactly one short, warm clarifying question, optionally with a few answer options. Return a valid JSON object that matches the output schema. Do not include any text outside the JSON object.`
)

// Context carries everything prompt templates may reference.
type Context struct {
	Quiz           types.QuizAnswers
	Topics         []string
	Topic          string
	LikedLabels    []string
	IgnoredLabels  []string
	ExistingTitles []string
	ProbeContext   string
	Count          int
}

const recipientPartial = `Recipient:
{{- if .Quiz.RecipientAge}}
- age: {{.Quiz.RecipientAge}}
{{- end}}
{{- if .Quiz.RecipientGender}}
- gender: {{.Quiz.RecipientGender}}
{{- end}}
{{- if .Quiz.Relationship}}
- relationship to the giver: {{.Quiz.Relationship}}
{{- end}}
{{- if .Quiz.Occasion}}
- occasion: {{.Quiz.Occasion}}
{{- end}}
{{- if .Quiz.Vibe}}
- vibe: {{.Quiz.Vibe}}
{{- end}}
{{- if .Quiz.Budget}}
- budget: {{.Quiz.Budget}} {{.Quiz.Currency}}
{{- end}}
{{- if .Quiz.EffortLevel}}
- effort tolerance: {{.Quiz.EffortLevel}}
{{- end}}
{{- if .Quiz.Language}}
- answer language: {{.Quiz.Language}}
{{- end}}`

const reactionsPartial = `{{- if .LikedLabels}}
Ideas the user liked (propose more in this direction, but never the same idea):
{{- range .LikedLabels}}
- {{.}}
{{- end}}
{{- end}}
{{- if .IgnoredLabels}}
Ideas the user rejected (avoid anything similar):
{{- range .IgnoredLabels}}
- {{.}}
{{- end}}
{{- end}}`

const normalizeTemplateText = `{{template "recipient" .}}

Raw interest input from the quiz:
{{- range .Quiz.Interests}}
- {{.}}
{{- end}}

Normalize this into a deduplicated list of concise gift-search topics.
Split compound entries, drop filler words, keep the user's language.
Return {"topics": [...]}; return an empty list if nothing usable remains.`

const bulkTemplateText = `{{template "recipient" .}}
{{template "reactions" .}}

Topics to cover, one track per topic:
{{- range .Topics}}
- {{.}}
{{- end}}

For every topic decide whether it is too wide to shop for directly.
Wide topics get "is_wide": true plus one clarifying question with 2-4 branch
options instead of hypotheses. Specific topics get 2-3 gift hypotheses, each
with a title, a one-sentence description, the reasoning why it fits this
recipient, a gap_tag naming the psychological angle, and 2-4 catalog search
queries. Return {"tracks": [...]} covering every topic exactly once.`

const classifyTemplateText = `{{template "recipient" .}}

Topic: {{.Topic}}

Is this topic specific enough to search a gift catalog directly, or is it too
wide? If wide, provide one clarifying question and 2-4 branch options.
Return {"is_wide": ..., "question": ..., "branches": [...]}.`

const hypothesesTemplateText = `{{template "recipient" .}}
{{template "reactions" .}}

Topic: {{.Topic}}
{{- if .ExistingTitles}}
Hypotheses already shown for this topic (propose different ones):
{{- range .ExistingTitles}}
- {{.}}
{{- end}}
{{- end}}

Propose {{.Count}} gift hypotheses for this topic, each with a title, a
one-sentence description, the reasoning why it fits this recipient, a gap_tag
naming the psychological angle, and 2-4 catalog search queries.
Return {"hypotheses": [...]}.`

const probeTemplateText = `{{template "recipient" .}}

{{if eq .ProbeContext "dead_end" -}}
The quiz produced no usable interests, so discovery cannot start.
Ask one open question that would reveal what the recipient cares about.
{{- else -}}
Topic: {{.Topic}}
No gift hypotheses could be produced for this topic yet.
Ask one question that would narrow it down to something shoppable.
{{- end}}
Return {"question": ..., "options": [...]}; options may be empty.`

var (
	normalizeTemplate  = mustParse("normalize", normalizeTemplateText)
	bulkTemplate       = mustParse("bulk", bulkTemplateText)
	classifyTemplate   = mustParse("classify", classifyTemplateText)
	hypothesesTemplate = mustParse("hypotheses", hypothesesTemplateText)
	probeTemplate      = mustParse("probe", probeTemplateText)
)

func mustParse(name, text string) *template.Template {
	t := template.New(name)
	template.Must(t.New("recipient").Parse(recipientPartial))
	template.Must(t.New("reactions").Parse(reactionsPartial))
	return template.Must(t.Parse(text))
}

// NormalizeTopics renders the topic normalization prompt.
func NormalizeTopics(quiz types.QuizAnswers) (string, error) {
	return render(normalizeTemplate, Context{Quiz: quiz})
}

// BulkGeneration renders the all-topics classification+generation prompt.
func BulkGeneration(quiz types.QuizAnswers, topics, liked, ignored []string) (string, error) {
	return render(bulkTemplate, Context{Quiz: quiz, Topics: topics, LikedLabels: liked, IgnoredLabels: ignored})
}

// ClassifyTopic renders the single-topic wide/specific classification prompt.
func ClassifyTopic(quiz types.QuizAnswers, topic string) (string, error) {
	return render(classifyTemplate, Context{Quiz: quiz, Topic: topic})
}

// TopicHypotheses renders the single-topic hypothesis generation prompt.
// existingTitles lists hypotheses already shown so the model avoids repeats.
func TopicHypotheses(quiz types.QuizAnswers, topic string, liked, ignored, existingTitles []string, count int) (string, error) {
	if count <= 0 {
		count = 3
	}
	return render(hypothesesTemplate, Context{
		Quiz:           quiz,
		Topic:          topic,
		LikedLabels:    liked,
		IgnoredLabels:  ignored,
		ExistingTitles: existingTitles,
		Count:          count,
	})
}

// Probe renders the clarifying question prompt. probeContext is "dead_end"
// for session-level dead ends and "exploration" for topic-scoped ones.
func Probe(quiz types.QuizAnswers, topic, probeContext string) (string, error) {
	return render(probeTemplate, Context{Quiz: quiz, Topic: topic, ProbeContext: probeContext})
}

func render(t *template.Template, data Context) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}
	return buf.String(), nil
}
