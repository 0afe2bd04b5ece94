package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sakif/prep-tracker/internal/model"
)

// Response parsers. Models are told to return bare JSON but routinely wrap
// it in markdown fences or prefix it with chatter, so every parser first
// runs the reply through extractJSON. Anything that still doesn't parse is
// a hard error — the caller decides whether that's fatal (question
// generation) or replaceable (feedback).

// ParseQuestions decodes a question-generation reply and validates its
// shape. wantCount == 0 skips the count check.
func ParseQuestions(raw string, wantCount int) ([]model.Question, error) {
	payload := extractJSON(raw, '[', ']')
	if payload == "" {
		return nil, fmt.Errorf("ai: no JSON array in question response")
	}

	var questions []model.Question
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		return nil, fmt.Errorf("ai: decoding questions: %w", err)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("ai: question response was empty")
	}
	if wantCount > 0 && len(questions) != wantCount {
		return nil, fmt.Errorf("ai: expected %d questions, got %d", wantCount, len(questions))
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("ai: question %d has no text", i)
		}
		if len(q.Options) != 4 {
			return nil, fmt.Errorf("ai: question %d has %d options, want 4", i, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex > 3 {
			return nil, fmt.Errorf("ai: question %d has correctIndex %d out of range", i, q.CorrectIndex)
		}
	}

	return questions, nil
}

// ParseFeedback decodes an interview-feedback reply. Ratings outside 1–10
// are clamped rather than rejected — a "11/10 hire them" reply is
// enthusiasm, not corruption.
func ParseFeedback(raw string) (*model.InterviewFeedback, error) {
	payload := extractJSON(raw, '{', '}')
	if payload == "" {
		return nil, fmt.Errorf("ai: no JSON object in feedback response")
	}

	var fb model.InterviewFeedback
	if err := json.Unmarshal([]byte(payload), &fb); err != nil {
		return nil, fmt.Errorf("ai: decoding feedback: %w", err)
	}

	fb.OverallRating = clampRating(fb.OverallRating)
	fb.CommunicationRating = clampRating(fb.CommunicationRating)
	fb.TechnicalRating = clampRating(fb.TechnicalRating)

	return &fb, nil
}

// PlaceholderFeedback is stored when the model's feedback reply could not
// be parsed. The transcript is already persisted at that point; losing the
// whole session over a malformed summary would be a bad trade.
func PlaceholderFeedback() *model.InterviewFeedback {
	return &model.InterviewFeedback{
		Strengths:    []string{},
		Improvements: []string{},
		Verdict:      "Feedback could not be generated for this session.",
	}
}

func clampRating(r int) int {
	if r < 1 {
		return 1
	}
	if r > 10 {
		return 10
	}
	return r
}

// extractJSON returns the substring from the first `open` to the last
// `close` byte. This strips markdown fences, "Here is your JSON:" preambles,
// and trailing commentary in one move. It's deliberately dumb — balancing
// brackets properly would only matter if the model emitted TWO top-level
// JSON values, which the prompts forbid and we've never seen.
func extractJSON(raw string, open, close byte) string {
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, close)
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}
