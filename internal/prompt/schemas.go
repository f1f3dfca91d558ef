package prompt

import "github.com/google/jsonschema-go/jsonschema"

// Response schemas for the structured generation calls.

func TopicsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"topics": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"topics"},
	}
}

func hypothesisSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"title":       {Type: "string"},
			"description": {Type: "string"},
			"reasoning":   {Type: "string"},
			"gap_tag":     {Type: "string"},
			"search_queries": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"title", "search_queries"},
	}
}

func trackSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"topic":    {Type: "string"},
			"is_wide":  {Type: "boolean"},
			"question": {Type: "string"},
			"branches": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
			"hypotheses": {
				Type:  "array",
				Items: hypothesisSchema(),
			},
		},
		Required: []string{"topic", "is_wide"},
	}
}

func TrackBatchSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"tracks": {
				Type:  "array",
				Items: trackSchema(),
			},
		},
		Required: []string{"tracks"},
	}
}

func ClassifySchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"is_wide":  {Type: "boolean"},
			"question": {Type: "string"},
			"branches": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"is_wide"},
	}
}

func HypothesesSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"hypotheses": {
				Type:  "array",
				Items: hypothesisSchema(),
			},
		},
		Required: []string{"hypotheses"},
	}
}

func ProbeSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"question": {Type: "string"},
			"options": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
		},
		Required: []string{"question"},
	}
}
