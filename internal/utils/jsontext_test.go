package utils

import (
	"reflect"
	"testing"
)

func TestDecodeModelJSONStripsFences(t *testing.T) {
	raw := "Here you go:\n```json\n{\"topics\": [\"coffee\", \"hiking\"]}\n```\nHope that helps!"
	var payload struct {
		Topics []string `json:"topics"`
	}
	if err := DecodeModelJSON(raw, &payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !reflect.DeepEqual(payload.Topics, []string{"coffee", "hiking"}) {
		t.Fatalf("unexpected topics: %v", payload.Topics)
	}
}

func TestDecodeModelJSONPlainObject(t *testing.T) {
	var payload struct {
		Question string `json:"question"`
	}
	if err := DecodeModelJSON(`{"question": "what do they drink?"}`, &payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if payload.Question != "what do they drink?" {
		t.Fatalf("unexpected question: %q", payload.Question)
	}
}

func TestDecodeModelJSONInvalid(t *testing.T) {
	var payload map[string]any
	if err := DecodeModelJSON("no json here", &payload); err == nil {
		t.Fatal("expected an error for non-JSON output")
	}
}

func TestDedupeStrings(t *testing.T) {
	got := DedupeStrings([]string{" Coffee ", "hiking", "coffee", "", "HIKING", "tea"})
	want := []string{"Coffee", "hiking", "tea"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
