package assistant

import (
	"fmt"
	"strings"
)

// Kind selects which record collection a prompt is written for.
type Kind string

const (
	KindResume         Kind = "resume"
	KindJobDescription Kind = "job-description"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindResume || k == KindJobDescription
}

// Action is a one-click rewrite offered next to the record editor.
type Action string

const (
	ActionImprove Action = "improve"

	ActionGenerateTemplate Action = "generate_template"
	ActionFixGrammar       Action = "fix_grammar"
	ActionProfessionalTone Action = "professional_tone"
	ActionActionVerbs      Action = "action_verbs"
	ActionGenerateSummary  Action = "generate_summary"

	ActionGenerateSample          Action = "generate_sample"
	ActionFormatMarkdown          Action = "format_markdown"
	ActionClarifyResponsibilities Action = "clarify_responsibilities"
	ActionSummarizeRequirements   Action = "summarize_requirements"
)

var kindActions = map[Kind][]Action{
	KindResume: {
		ActionGenerateTemplate,
		ActionFixGrammar,
		ActionProfessionalTone,
		ActionActionVerbs,
		ActionGenerateSummary,
	},
	KindJobDescription: {
		ActionGenerateSample,
		ActionFormatMarkdown,
		ActionClarifyResponsibilities,
		ActionSummarizeRequirements,
	},
}

// Button labels used by the web client.
var actionAliases = map[string]Action{
	"summarize":                   ActionGenerateSummary,
	"generate_sample_description": ActionGenerateSample,
	"add_markdown_formatting":     ActionFormatMarkdown,
}

// Actions lists the named actions available for a kind.
func Actions(kind Kind) []Action {
	return append([]Action(nil), kindActions[kind]...)
}

// ParseAction accepts either the slug ("fix_grammar") or the button label
// ("Fix Grammar"). Anything unrecognized falls back to ActionImprove.
func ParseAction(kind Kind, raw string) Action {
	slug := strings.ToLower(strings.TrimSpace(raw))
	slug = strings.NewReplacer(" ", "_", "-", "_").Replace(slug)
	if alias, ok := actionAliases[slug]; ok {
		slug = string(alias)
	}
	for _, a := range kindActions[kind] {
		if string(a) == slug {
			return a
		}
	}
	return ActionImprove
}

// generates reports whether the action writes from a title alone.
func (a Action) generates() bool {
	return a == ActionGenerateTemplate || a == ActionGenerateSample
}

func promptName(kind Kind, action Action) string {
	prefix := "resume"
	if kind == KindJobDescription {
		prefix = "job_description"
	}
	return fmt.Sprintf("%s_%s", prefix, action)
}

func contextLine(kind Kind, title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}
	if kind == KindJobDescription {
		return `CONTEXT: The job title is "` + title + `".`
	}
	return `CONTEXT: The candidate's job title is "` + title + `".`
}
