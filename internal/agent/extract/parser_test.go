package extract

import (
	"strings"
	"testing"
)

func TestDecodeJSONPlain(t *testing.T) {
	var out struct {
		Scenario   string  `json:"scenario"`
		Confidence float64 `json:"confidence"`
	}
	err := decodeJSON(`{"scenario": "delivery", "confidence": 0.93}`, &out)
	if err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	if out.Scenario != "delivery" || out.Confidence != 0.93 {
		t.Fatalf("decoded %+v", out)
	}
}

func TestDecodeJSONFenced(t *testing.T) {
	content := "```json\n{\"scenario\": \"help\", \"confidence\": 0.2}\n```"
	var out struct {
		Scenario string `json:"scenario"`
	}
	if err := decodeJSON(content, &out); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	if out.Scenario != "help" {
		t.Fatalf("decoded %+v", out)
	}
}

func TestDecodeJSONSurroundingProse(t *testing.T) {
	content := "다음은 추출 결과입니다:\n{\"client\": \"한국상사\"}\n감사합니다."
	var out struct {
		Client string `json:"client"`
	}
	if err := decodeJSON(content, &out); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	if out.Client != "한국상사" {
		t.Fatalf("decoded %+v", out)
	}
}

func TestDecodeJSONNoObject(t *testing.T) {
	var out struct{}
	if err := decodeJSON("죄송합니다, 추출할 수 없습니다.", &out); err == nil {
		t.Fatalf("expected error for non-JSON output")
	}
}

func TestDecodeJSONOversized(t *testing.T) {
	// A valid object inside the cap still decodes after truncation of the tail.
	content := `{"client": "x"}` + strings.Repeat(" ", maxContentLen)
	var out struct {
		Client string `json:"client"`
	}
	if err := decodeJSON(content, &out); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	if out.Client != "x" {
		t.Fatalf("decoded %+v", out)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{}\n```", "{}"},
		{"```\n{}\n```", "{}"},
		{"{}", "{}"},
		{"  {} ", "{}"},
	}
	for _, c := range cases {
		if got := stripFences(c.in); got != c.want {
			t.Fatalf("stripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClampConfidence(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0.7, 0.7},
		{1.8, 1},
	}
	for _, c := range cases {
		if got := clampConfidence(c.in); got != c.want {
			t.Fatalf("clampConfidence(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
