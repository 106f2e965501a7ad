package extract

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string { return "stub-model" }

func TestPhrasesParsesCommaList(t *testing.T) {
	generator := &stubGenerator{response: "Python, SQL,  Communication , Python,,"}
	extractor := New(generator, zap.NewNop(), 0)

	phrases := extractor.Phrases(context.Background(), SourceJob, "We need a backend engineer.")

	want := []string{"Python", "SQL", "Communication"}
	if !reflect.DeepEqual(phrases, want) {
		t.Fatalf("expected %v, got %v", want, phrases)
	}
}

func TestPhrasesSelectsTemplateBySource(t *testing.T) {
	tests := []struct {
		source Source
		marker string
	}{
		{source: SourceJob, marker: "job description"},
		{source: SourceCV, marker: "CV"},
	}

	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			generator := &stubGenerator{response: "Go"}
			extractor := New(generator, zap.NewNop(), 0)

			extractor.Phrases(context.Background(), tt.source, "some text")

			if len(generator.prompts) != 1 {
				t.Fatalf("expected 1 prompt, got %d", len(generator.prompts))
			}
			if !strings.Contains(generator.prompts[0], tt.marker) {
				t.Fatalf("prompt missing %q: %s", tt.marker, generator.prompts[0])
			}
			if !strings.Contains(generator.prompts[0], "some text") {
				t.Fatal("prompt missing source text")
			}
		})
	}
}

func TestPhrasesGeneratorFailure(t *testing.T) {
	generator := &stubGenerator{err: errors.New("backend down")}
	extractor := New(generator, zap.NewNop(), 0)

	phrases := extractor.Phrases(context.Background(), SourceJob, "text")

	if len(phrases) != 0 {
		t.Fatalf("expected empty list on failure, got %v", phrases)
	}
}

func TestPhrasesEmptyInputs(t *testing.T) {
	generator := &stubGenerator{response: ""}
	extractor := New(generator, zap.NewNop(), 0)

	if got := extractor.Phrases(context.Background(), SourceJob, "   "); len(got) != 0 {
		t.Fatalf("expected empty list for blank text, got %v", got)
	}
	if len(generator.prompts) != 0 {
		t.Fatal("expected no generator call for blank text")
	}

	if got := extractor.Phrases(context.Background(), SourceCV, "real text"); len(got) != 0 {
		t.Fatalf("expected empty list for empty response, got %v", got)
	}
}

func TestSplitPhrases(t *testing.T) {
	got := splitPhrases("a,\n b ,a,,c")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
