package interview

import (
	"fmt"
	"strings"
)

// TranscriptFileName is the download name of an exported transcript.
const TranscriptFileName = "mock_interview_transcript.txt"

func speaker(s Sender) string {
	if s == SenderUser {
		return "Candidate"
	}
	return "Interviewer"
}

func transcriptLines(msgs []ChatMessage) []string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, speaker(m.Sender)+": "+m.Text)
	}
	return lines
}

// scoringTranscript is the compact form sent for feedback.
func scoringTranscript(msgs []ChatMessage) string {
	return strings.Join(transcriptLines(msgs), "\n")
}

// FormatTranscript renders the plain-text export: the feedback block when
// present, then every message separated by a rule.
func FormatTranscript(v View) string {
	var b strings.Builder
	if v.Feedback != nil {
		b.WriteString("--- MOCK INTERVIEW FEEDBACK ---\n\n")
		fmt.Fprintf(&b, "Overall Rating: %.1f / 5.0\n", v.Feedback.Rating)
		fmt.Fprintf(&b, "Overall Score: %d / 100\n\n", v.Feedback.Score)
		b.WriteString("--- DETAILED FEEDBACK ---\n\n")
		b.WriteString(v.Feedback.FeedbackText)
		b.WriteString("\n\n")
	}
	b.WriteString("--- INTERVIEW TRANSCRIPT ---\n\n")
	b.WriteString(strings.Join(transcriptLines(v.Messages), "\n\n---\n\n"))
	return b.String()
}
