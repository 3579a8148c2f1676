package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"career-backend/internal/llm"
	"career-backend/internal/shared/telemetry"
)

// DefaultQuestionCount is how many questions one generation request asks for.
const DefaultQuestionCount = 5

const codeMalformed = "AI_MALFORMED_RESPONSE"

// Service builds prompts, calls the provider and parses its replies.
type Service struct {
	llm           llm.Client
	questionCount int
}

// NewService returns an assistant backed by client.
func NewService(client llm.Client) *Service {
	if client == nil {
		client = llm.Unconfigured{Reason: "nil client"}
	}
	return &Service{llm: client, questionCount: DefaultQuestionCount}
}

// SuggestTitle proposes a one-line title for the content.
func (s *Service) SuggestTitle(ctx context.Context, kind Kind, content string) (string, error) {
	if !kind.Valid() {
		return "", invalid("unknown kind %q", kind)
	}
	if strings.TrimSpace(content) == "" {
		return "", invalid("content is required")
	}
	name := "title_resume"
	if kind == KindJobDescription {
		name = "title_job_description"
	}
	prompt := mustRender(name, "CONTENT", content)

	text, err := s.text(ctx, llm.Prompt("suggest_title", prompt))
	if err != nil {
		return "", s.fail("suggest_title", MsgSuggestion, err)
	}
	return firstLine(text), nil
}

// Improve applies a smart action and returns the rewritten content.
// Generating actions need a title; every other action needs content.
func (s *Service) Improve(ctx context.Context, kind Kind, action Action, title, content string) (string, error) {
	if !kind.Valid() {
		return "", invalid("unknown kind %q", kind)
	}
	title = strings.TrimSpace(title)
	if action.generates() {
		if title == "" {
			return "", invalid("title is required for %s", action)
		}
	} else if strings.TrimSpace(content) == "" {
		return "", invalid("content is required for %s", action)
	}

	prompt, err := render(promptName(kind, action),
		"TITLE", title,
		"CONTEXT", contextLine(kind, title),
		"CONTENT", content,
	)
	if err != nil {
		return "", invalid("action %q is not available for %s", action, kind)
	}

	text, err := s.text(ctx, llm.Prompt("improve_"+string(action), prompt))
	if err != nil {
		return "", s.fail("improve", MsgSmartAction, err)
	}
	return text, nil
}

// ExtractText asks the provider to transcribe an uploaded document.
func (s *Service) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", invalid("document is empty")
	}
	if strings.TrimSpace(mimeType) == "" {
		return "", invalid("mime type is required")
	}
	req := llm.Prompt("extract_text", mustRender("extract_text"))
	req.Attachments = []llm.Attachment{{MIMEType: mimeType, Data: data}}

	text, err := s.text(ctx, req)
	if err != nil {
		return "", s.fail("extract_text", MsgExtract, err)
	}
	return text, nil
}

var tailorSchema = llm.Object(
	llm.Prop("originalBullets", llm.ArrayOf(llm.Prim(llm.TypeString, "")).
		WithDescription("An array of the key bullet points extracted from the original resume.")),
	llm.Prop("tailoredBullets", llm.ArrayOf(llm.Prim(llm.TypeString, "")).
		WithDescription("An array of the rewritten, tailored resume bullet points.")),
)

// TailorBullets rewrites the resume's key bullets toward the job description.
func (s *Service) TailorBullets(ctx context.Context, resume, jobDescription string) (TailoredBullets, error) {
	if strings.TrimSpace(resume) == "" || strings.TrimSpace(jobDescription) == "" {
		return TailoredBullets{}, invalid("resume and job description are required")
	}
	req := llm.Prompt("tailor_bullets", mustRender("tailor_bullets",
		"RESUME", resume,
		"JOB_DESCRIPTION", jobDescription,
	))
	req.Schema = tailorSchema

	resp, err := s.generate(ctx, req)
	if err != nil {
		return TailoredBullets{}, s.fail("tailor_bullets", MsgTailor, err)
	}
	var out TailoredBullets
	if err := decodeObject(resp.Text, &out); err != nil {
		return TailoredBullets{}, s.fail("tailor_bullets", MsgTailor, malformed(err))
	}
	if out.OriginalBullets == nil {
		out.OriginalBullets = []string{}
	}
	if out.TailoredBullets == nil {
		out.TailoredBullets = []string{}
	}
	return out, nil
}

var questionsSchema = llm.ArrayOf(llm.Object(
	llm.Prop("question", llm.Prim(llm.TypeString, "")),
	llm.Prop("answer", llm.Prim(llm.TypeString, "")),
))

// InterviewQuestions generates questions with model answers. Questions in
// exclude are listed in the prompt as ones not to repeat.
func (s *Service) InterviewQuestions(ctx context.Context, jobDescription string, qt QuestionType, exclude []string) ([]QA, error) {
	if qt != Technical && qt != Behavioral {
		return nil, invalid("question type must be Technical or Behavioral")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, invalid("job description is required")
	}

	excludeBlock := ""
	if len(exclude) > 0 {
		list, _ := json.Marshal(exclude)
		excludeBlock = "\n\nIMPORTANT: Do NOT repeat any of the following questions:\n" + string(list)
	}
	req := llm.Prompt("interview_questions", mustRender("interview_questions",
		"COUNT", strconv.Itoa(s.questionCount),
		"TYPE", strings.ToLower(string(qt)),
		"EXCLUDE", excludeBlock,
		"JOB_DESCRIPTION", jobDescription,
	))
	req.Schema = questionsSchema

	msg := questionsMessage(qt)
	resp, err := s.generate(ctx, req)
	if err != nil {
		return nil, s.fail("interview_questions", msg, err)
	}

	var items []QA
	if err := decodeArray(resp.Text, &items); err != nil {
		var envelope struct {
			Items []QA `json:"items"`
		}
		if envErr := decodeObject(resp.Text, &envelope); envErr != nil || envelope.Items == nil {
			return nil, s.fail("interview_questions", msg, malformed(err))
		}
		items = envelope.Items
	}

	out := make([]QA, 0, len(items))
	for _, item := range items {
		item.Question = strings.TrimSpace(item.Question)
		if item.Question == "" {
			continue
		}
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil, s.fail("interview_questions", msg, malformed(errors.New("no questions returned")))
	}
	return out, nil
}

var feedbackSchema = llm.Object(
	llm.Prop("rating", llm.Prim(llm.TypeNumber, "The candidate's overall rating from 1 to 5.")),
	llm.Prop("score", llm.Prim(llm.TypeInteger, "The candidate's overall score out of 100.")),
	llm.Prop("feedbackText", llm.Prim(llm.TypeString, "The detailed feedback in Markdown format (Summary, Strengths, Areas for Improvement).")),
)

// InterviewFeedback scores a finished interview transcript.
func (s *Service) InterviewFeedback(ctx context.Context, jobDescription, transcript string) (Feedback, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return Feedback{}, invalid("job description is required")
	}
	req := llm.Prompt("interview_feedback", mustRender("interview_feedback",
		"JOB_DESCRIPTION", jobDescription,
		"TRANSCRIPT", transcript,
	))
	req.Schema = feedbackSchema

	resp, err := s.generate(ctx, req)
	if err != nil {
		return Feedback{}, s.fail("interview_feedback", MsgFeedback, err)
	}

	var raw struct {
		Rating       float64 `json:"rating"`
		Score        float64 `json:"score"`
		FeedbackText string  `json:"feedbackText"`
	}
	if err := decodeObject(resp.Text, &raw); err != nil {
		return Feedback{}, s.fail("interview_feedback", MsgFeedback, malformed(err))
	}
	fb := Feedback{
		Rating:       raw.Rating,
		Score:        int(math.Round(raw.Score)),
		FeedbackText: strings.TrimSpace(raw.FeedbackText),
	}
	if err := validateFeedback(fb); err != nil {
		return Feedback{}, s.fail("interview_feedback", MsgFeedback, malformed(err))
	}
	return fb, nil
}

func validateFeedback(fb Feedback) error {
	if fb.Rating == 0 || fb.Score == 0 || fb.FeedbackText == "" {
		return errors.New("AI response did not contain the required feedback fields")
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return fmt.Errorf("rating %v out of range", fb.Rating)
	}
	if fb.Score < 0 || fb.Score > 100 {
		return fmt.Errorf("score %d out of range", fb.Score)
	}
	return nil
}

// InterviewerInstruction is the system prompt of the mock interviewer.
func InterviewerInstruction() string {
	return mustRender("interviewer_system")
}

// OpeningMessage is the hidden first user turn that asks the interviewer to begin.
func OpeningMessage(jobDescription string) string {
	return mustRender("interview_start", "JOB_DESCRIPTION", jobDescription)
}

// InterviewReply returns the interviewer's next turn for the conversation so far.
// The last message in history must be from the user.
func (s *Service) InterviewReply(ctx context.Context, history []llm.Message) (string, error) {
	if len(history) == 0 || history[len(history)-1].Role != llm.RoleUser {
		return "", invalid("conversation must end with a user message")
	}
	req := llm.Request{
		Operation: "interview_turn",
		System:    InterviewerInstruction(),
		Messages:  history,
	}
	text, err := s.text(ctx, req)
	if err != nil {
		return "", s.fail("interview_turn", MsgInterviewer, err)
	}
	return text, nil
}

func (s *Service) generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	resp, err := s.llm.Generate(ctx, req)
	if err != nil {
		return llm.Response{}, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return llm.Response{}, llm.ErrEmptyResponse
	}
	return resp, nil
}

func (s *Service) text(ctx context.Context, req llm.Request) (string, error) {
	resp, err := s.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

func (s *Service) fail(op, message string, err error) error {
	code := llm.Classify(err)
	if errors.Is(err, ErrMalformedResponse) {
		code = codeMalformed
	}
	telemetry.Warn("assistant.failed", map[string]any{
		"op":         op,
		"error_code": code,
		"error":      err,
	})
	return &Error{Op: op, Message: message, Err: err}
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.Trim(strings.TrimSpace(text), `"*`)
}
