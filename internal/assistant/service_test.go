package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"career-backend/internal/llm"
)

type stubLLM struct {
	reply string
	err   error
	reqs  []llm.Request
}

func (s *stubLLM) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return llm.Response{}, s.err
	}
	return llm.Response{Text: s.reply}, nil
}

func (s *stubLLM) lastPrompt(t *testing.T) string {
	t.Helper()
	if len(s.reqs) == 0 {
		t.Fatalf("expected a provider call")
	}
	msgs := s.reqs[len(s.reqs)-1].Messages
	return msgs[len(msgs)-1].Text
}

func TestSuggestTitleTrimsToOneLine(t *testing.T) {
	stub := &stubLLM{reply: "  \"Senior Go Engineer\"\nsome explanation"}
	svc := NewService(stub)

	got, err := svc.SuggestTitle(context.Background(), KindResume, "Built APIs in Go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Senior Go Engineer" {
		t.Fatalf("unexpected title %q", got)
	}
	prompt := stub.lastPrompt(t)
	if !strings.HasPrefix(prompt, "Based on the following resume content") {
		t.Fatalf("unexpected prompt: %s", prompt)
	}
	if !strings.HasSuffix(prompt, "CONTENT:\nBuilt APIs in Go") {
		t.Fatalf("content not appended: %s", prompt)
	}
}

func TestSuggestTitleRequiresContent(t *testing.T) {
	stub := &stubLLM{reply: "x"}
	_, err := NewService(stub).SuggestTitle(context.Background(), KindJobDescription, "   ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(stub.reqs) != 0 {
		t.Fatalf("provider should not be called")
	}
}

func TestImprovePrompts(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		action  string
		title   string
		content string
		want    []string
		notWant string
	}{
		{
			name:   "resume template uses title",
			kind:   KindResume,
			action: "Generate Template",
			title:  "Data Engineer",
			want:   []string{`resume template/outline for a "Data Engineer"`},
		},
		{
			name:    "resume grammar has context",
			kind:    KindResume,
			action:  "fix_grammar",
			title:   "Data Engineer",
			content: "i builded pipelines",
			want:    []string{`CONTEXT: The candidate's job title is "Data Engineer".`, "Fix all grammar", "i builded pipelines"},
		},
		{
			name:    "no title drops context",
			kind:    KindResume,
			action:  "Action Verbs",
			content: "did stuff",
			want:    []string{"strong action verbs"},
			notWant: "CONTEXT:",
		},
		{
			name:    "summarize label maps to summary",
			kind:    KindResume,
			action:  "Summarize",
			content: "x",
			want:    []string{"professional summary paragraph"},
		},
		{
			name:    "job description markdown label",
			kind:    KindJobDescription,
			action:  "Add Markdown Formatting",
			title:   "SRE",
			content: "be on call",
			want:    []string{`CONTEXT: The job title is "SRE".`, "proper Markdown"},
		},
		{
			name:    "unknown action improves",
			kind:    KindJobDescription,
			action:  "make it shine",
			content: "be on call",
			want:    []string{"Improve the following job description: be on call"},
		},
		{
			name:    "resume action on job description falls back",
			kind:    KindJobDescription,
			action:  "fix_grammar",
			content: "be on call",
			want:    []string{"Improve the following job description"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubLLM{reply: " rewritten \n"}
			svc := NewService(stub)
			action := ParseAction(tc.kind, tc.action)

			got, err := svc.Improve(context.Background(), tc.kind, action, tc.title, tc.content)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != "rewritten" {
				t.Fatalf("expected trimmed reply, got %q", got)
			}
			prompt := stub.lastPrompt(t)
			for _, want := range tc.want {
				if !strings.Contains(prompt, want) {
					t.Fatalf("prompt missing %q:\n%s", want, prompt)
				}
			}
			if tc.notWant != "" && strings.Contains(prompt, tc.notWant) {
				t.Fatalf("prompt should not contain %q:\n%s", tc.notWant, prompt)
			}
			if strings.HasPrefix(prompt, " ") {
				t.Fatalf("prompt should be trimmed: %q", prompt)
			}
		})
	}
}

func TestImproveValidation(t *testing.T) {
	svc := NewService(&stubLLM{reply: "x"})

	if _, err := svc.Improve(context.Background(), KindResume, ActionGenerateTemplate, "", "content"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("template without title: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Improve(context.Background(), KindResume, ActionFixGrammar, "Title", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("grammar without content: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Improve(context.Background(), Kind("cover-letter"), ActionImprove, "t", "c"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown kind: expected ErrInvalidInput, got %v", err)
	}
}

func TestProviderFailureBecomesGenericError(t *testing.T) {
	cause := errors.New("status 503 overloaded")
	svc := NewService(&stubLLM{err: cause})

	_, err := svc.Improve(context.Background(), KindResume, ActionProfessionalTone, "", "content")
	var aiErr *Error
	if !errors.As(err, &aiErr) {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}
	if aiErr.Message != MsgSmartAction {
		t.Fatalf("unexpected message %q", aiErr.Message)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause should be wrapped")
	}
}

func TestUnconfiguredProvider(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.SuggestTitle(context.Background(), KindResume, "content")
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestEmptyReplyIsFailure(t *testing.T) {
	svc := NewService(&stubLLM{reply: "   "})
	_, err := svc.SuggestTitle(context.Background(), KindResume, "content")
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestExtractTextSendsAttachment(t *testing.T) {
	stub := &stubLLM{reply: "Jane Doe\nEngineer"}
	svc := NewService(stub)

	got, err := svc.ExtractText(context.Background(), []byte("%PDF-1.4"), "application/pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Jane Doe\nEngineer" {
		t.Fatalf("unexpected text %q", got)
	}
	req := stub.reqs[0]
	if len(req.Attachments) != 1 || req.Attachments[0].MIMEType != "application/pdf" {
		t.Fatalf("attachment not forwarded: %+v", req.Attachments)
	}
	if !strings.Contains(stub.lastPrompt(t), "Do not summarize") {
		t.Fatalf("unexpected prompt")
	}

	failing := NewService(&stubLLM{err: llm.ErrAttachmentUnsupported})
	_, err = failing.ExtractText(context.Background(), []byte("x"), "application/pdf")
	var aiErr *Error
	if !errors.As(err, &aiErr) || aiErr.Message != MsgExtract {
		t.Fatalf("expected extract error, got %v", err)
	}
}

func TestTailorBullets(t *testing.T) {
	stub := &stubLLM{reply: "```json\n{\"originalBullets\":[\"Did X\"],\"tailoredBullets\":[\"Delivered X\"]}\n```"}
	svc := NewService(stub)

	got, err := svc.TailorBullets(context.Background(), "resume", "jd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.TailoredBullets) != 1 || got.TailoredBullets[0] != "Delivered X" {
		t.Fatalf("unexpected bullets: %+v", got)
	}
	if stub.reqs[0].Schema == nil || stub.reqs[0].Schema.Type != llm.TypeObject {
		t.Fatalf("expected object schema")
	}
	prompt := stub.lastPrompt(t)
	if !strings.Contains(prompt, "**Resume:**\nresume") || !strings.Contains(prompt, "**Job Description:**\njd") {
		t.Fatalf("unexpected prompt:\n%s", prompt)
	}
}

func TestTailorBulletsNullReply(t *testing.T) {
	svc := NewService(&stubLLM{reply: "null"})
	got, err := svc.TailorBullets(context.Background(), "resume", "jd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OriginalBullets == nil || got.TailoredBullets == nil || len(got.OriginalBullets) != 0 {
		t.Fatalf("expected empty lists, got %+v", got)
	}
}

func TestTailorBulletsMalformed(t *testing.T) {
	svc := NewService(&stubLLM{reply: "I cannot help with that"})
	_, err := svc.TailorBullets(context.Background(), "resume", "jd")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	var aiErr *Error
	if !errors.As(err, &aiErr) || aiErr.Message != MsgTailor {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestInterviewQuestions(t *testing.T) {
	stub := &stubLLM{reply: `[{"question":"Tell me about a conflict","answer":"Situation..."},{"question":"  ","answer":"dropped"}]`}
	svc := NewService(stub)

	got, err := svc.InterviewQuestions(context.Background(), "Platform engineer", Behavioral, []string{"Why us?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Question != "Tell me about a conflict" {
		t.Fatalf("unexpected questions: %+v", got)
	}
	prompt := stub.lastPrompt(t)
	for _, want := range []string{"5 UNIQUE behavioral interview questions", `Do NOT repeat any of the following questions:` + "\n" + `["Why us?"]`, "**Job Description:**\nPlatform engineer"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if stub.reqs[0].Schema.Type != llm.TypeArray {
		t.Fatalf("expected array schema")
	}
}

func TestInterviewQuestionsWithoutExclusions(t *testing.T) {
	stub := &stubLLM{reply: `{"items":[{"question":"What is a goroutine?","answer":"A lightweight thread."}]}`}
	svc := NewService(stub)

	got, err := svc.InterviewQuestions(context.Background(), "Go developer", Technical, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected envelope to be unwrapped, got %+v", got)
	}
	if strings.Contains(stub.lastPrompt(t), "Do NOT repeat") {
		t.Fatalf("exclusion block should be omitted")
	}
}

func TestInterviewQuestionsFailureMessage(t *testing.T) {
	svc := NewService(&stubLLM{reply: "[]"})
	_, err := svc.InterviewQuestions(context.Background(), "jd", Technical, nil)
	var aiErr *Error
	if !errors.As(err, &aiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if aiErr.Message != "Failed to generate Technical interview questions." {
		t.Fatalf("unexpected message %q", aiErr.Message)
	}

	if _, err := svc.InterviewQuestions(context.Background(), "jd", QuestionType("Trivia"), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestInterviewFeedback(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr bool
		want    Feedback
	}{
		{
			name:  "valid",
			reply: `{"rating":4.5,"score":88,"feedbackText":"**Overall Summary**"}`,
			want:  Feedback{Rating: 4.5, Score: 88, FeedbackText: "**Overall Summary**"},
		},
		{
			name:  "float score rounds",
			reply: `{"rating":3,"score":71.6,"feedbackText":"ok"}`,
			want:  Feedback{Rating: 3, Score: 72, FeedbackText: "ok"},
		},
		{name: "missing score", reply: `{"rating":4,"feedbackText":"ok"}`, wantErr: true},
		{name: "missing text", reply: `{"rating":4,"score":80}`, wantErr: true},
		{name: "rating out of range", reply: `{"rating":9,"score":80,"feedbackText":"ok"}`, wantErr: true},
		{name: "not json", reply: `great job`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(&stubLLM{reply: tc.reply})
			got, err := svc.InterviewFeedback(context.Background(), "jd", "Candidate: hi")
			if tc.wantErr {
				var aiErr *Error
				if !errors.As(err, &aiErr) || aiErr.Message != MsgFeedback {
					t.Fatalf("expected feedback error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestInterviewReply(t *testing.T) {
	stub := &stubLLM{reply: "Hello! Are you ready to begin?"}
	svc := NewService(stub)

	history := []llm.Message{{Role: llm.RoleUser, Text: OpeningMessage("Backend role")}}
	got, err := svc.InterviewReply(context.Background(), history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello! Are you ready to begin?" {
		t.Fatalf("unexpected reply %q", got)
	}
	req := stub.reqs[0]
	if !strings.HasPrefix(req.System, "You are a friendly but professional interviewer.") {
		t.Fatalf("unexpected system instruction %q", req.System)
	}
	if req.Messages[0].Text != "The user is applying for this job:\n\nBackend role\n\nPlease start the interview." {
		t.Fatalf("unexpected opening message %q", req.Messages[0].Text)
	}

	_, err = svc.InterviewReply(context.Background(), []llm.Message{{Role: llm.RoleModel, Text: "hi"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseQuestionType(t *testing.T) {
	if qt, ok := ParseQuestionType("technical"); !ok || qt != Technical {
		t.Fatalf("technical not parsed")
	}
	if qt, ok := ParseQuestionType(" Behavioral "); !ok || qt != Behavioral {
		t.Fatalf("behavioral not parsed")
	}
	if _, ok := ParseQuestionType("trivia"); ok {
		t.Fatalf("trivia should be rejected")
	}
}
