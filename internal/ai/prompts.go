package ai

import (
	"fmt"

	"github.com/sakif/prep-tracker/internal/model"
)

// Prompt builders. Pure functions — given the same inputs they always
// produce the same messages, which keeps the services' AI calls one line
// and lets the prompt text live in exactly one place.

// QuestionPrompt builds the messages for multiple-choice question
// generation. The system message pins the output to a bare JSON array so
// ParseQuestions has a fighting chance; models still occasionally wrap the
// payload in markdown fences, which extractJSON strips.
func QuestionPrompt(category, subcategory string, difficulty model.Difficulty, count int) []Message {
	system := `You are an exam generator for placement preparation. ` +
		`Respond with ONLY a JSON array, no markdown, no commentary. ` +
		`Each element must have exactly these fields: ` +
		`"text" (string), "options" (array of exactly 4 strings), ` +
		`"correctIndex" (integer 0-3), "explanation" (string).`

	topic := category
	if subcategory != "" {
		topic = fmt.Sprintf("%s (%s)", category, subcategory)
	}

	user := fmt.Sprintf(
		"Generate %d %s-difficulty multiple-choice questions on %s. "+
			"Options must be plausible and exactly one must be correct.",
		count, difficulty, topic,
	)

	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// InterviewSystemMessage builds the persona message that anchors every call
// in an interview session. It is regenerated from the stored session fields
// on each request rather than persisted in the transcript — the transcript
// holds only what either party actually said.
func InterviewSystemMessage(kind model.InterviewType, targetRole string, difficulty model.Difficulty) Message {
	var persona string
	switch kind {
	case model.InterviewHR:
		persona = "an HR interviewer assessing culture fit, motivation, and salary expectations"
	case model.InterviewBehavioral:
		persona = "a behavioral interviewer using STAR-style questions about past situations"
	default:
		persona = "a technical interviewer asking computer-science and problem-solving questions"
	}

	content := fmt.Sprintf(
		"You are %s conducting a %s-difficulty mock interview for a %s position. "+
			"Ask one question at a time, follow up on weak answers, and keep each "+
			"message under 120 words. Do not evaluate the candidate until asked.",
		persona, difficulty, targetRole,
	)

	return Message{Role: "system", Content: content}
}

// OpeningPrompt asks the interviewer for its first question.
func OpeningPrompt() Message {
	return Message{
		Role:    "user",
		Content: "Please greet the candidate briefly and ask your first question.",
	}
}

// FeedbackPrompt asks for the end-of-interview structured evaluation.
// Appended after the full transcript so the model judges the whole session.
func FeedbackPrompt() Message {
	return Message{
		Role: "user",
		Content: `The interview is over. Evaluate the candidate's answers. ` +
			`Respond with ONLY a JSON object, no markdown, with exactly these fields: ` +
			`"overallRating" (integer 1-10), "communicationRating" (integer 1-10), ` +
			`"technicalRating" (integer 1-10), "strengths" (array of strings), ` +
			`"improvements" (array of strings), "verdict" (one short sentence).`,
	}
}

// TranscriptMessages converts a stored transcript into wire messages.
// Our transcript uses domain roles ("interviewer"/"candidate"); the gateway
// speaks "assistant"/"user".
func TranscriptMessages(transcript []model.ChatMessage) []Message {
	out := make([]Message, 0, len(transcript))
	for _, m := range transcript {
		role := "user"
		if m.Role == model.RoleInterviewer {
			role = "assistant"
		}
		out = append(out, Message{Role: role, Content: m.Content})
	}
	return out
}
