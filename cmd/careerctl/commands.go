package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"career-backend/internal/assistant"
	"career-backend/internal/bootstrap"
	"career-backend/internal/imports"
	"career-backend/internal/llm"
	"career-backend/internal/prep"
	"career-backend/internal/records"
	"career-backend/internal/shared/config"
	"career-backend/internal/shared/telemetry"
)

// env carries what the commands need from the outside world. Command output
// goes to out; structured logs go to logs so that out stays parseable.
type env struct {
	out       io.Writer
	logs      io.Writer
	loadCfg   func() config.Config
	newClient func(ctx context.Context, cfg config.Config) llm.Client
}

func defaultEnv() env {
	return env{
		out:       os.Stdout,
		logs:      os.Stderr,
		loadCfg:   config.Load,
		newClient: bootstrap.BuildLLM,
	}
}

type rootOptions struct {
	provider string
	model    string
	timeout  time.Duration
}

func newRootCmd(e env) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "careerctl",
		Short:         "Run resume and interview assistant operations from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if e.logs != nil {
				telemetry.SetOutput(e.logs)
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.provider, "provider", "", "LLM provider (gemini, openai, anthropic); defaults to LLM_PROVIDER")
	root.PersistentFlags().StringVar(&opts.model, "model", "", "LLM model; defaults to LLM_MODEL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 3*time.Minute, "Overall timeout")

	assistantFor := func(cmd *cobra.Command) (*assistant.Service, context.Context, context.CancelFunc) {
		cfg := e.loadCfg()
		if opts.provider != "" {
			cfg.LLMProvider = opts.provider
		}
		if opts.model != "" {
			cfg.LLMModel = opts.model
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
		return assistant.NewService(e.newClient(ctx, cfg)), ctx, cancel
	}

	root.AddCommand(
		newSuggestTitleCmd(e, assistantFor),
		newImproveCmd(e, assistantFor),
		newTailorCmd(e, assistantFor),
		newQuestionsCmd(e, assistantFor),
		newExtractCmd(e, assistantFor),
	)
	return root
}

type assistantFactory func(cmd *cobra.Command) (*assistant.Service, context.Context, context.CancelFunc)

func newSuggestTitleCmd(e env, build assistantFactory) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "suggest-title <file>",
		Short: "Suggest a title for a resume or job description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			content, err := readText(args[0])
			if err != nil {
				return err
			}
			svc, ctx, cancel := build(cmd)
			defer cancel()
			title, err := svc.SuggestTitle(ctx, k, content)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(e.out, title)
			return err
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(assistant.KindResume), "resume or job-description")
	return cmd
}

func newImproveCmd(e env, build assistantFactory) *cobra.Command {
	var kind, action, title string
	cmd := &cobra.Command{
		Use:   "improve [file]",
		Short: "Apply a smart action to a resume or job description",
		Long: `Apply a smart action such as "Fix Grammar" or "Generate Template".

Generating actions only need --title; the others read the content file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			content := ""
			if len(args) == 1 {
				if content, err = readText(args[0]); err != nil {
					return err
				}
			}
			svc, ctx, cancel := build(cmd)
			defer cancel()
			out, err := svc.Improve(ctx, k, assistant.ParseAction(k, action), title, content)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(e.out, out)
			return err
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(assistant.KindResume), "resume or job-description")
	cmd.Flags().StringVar(&action, "action", string(assistant.ActionImprove), "smart action label or slug")
	cmd.Flags().StringVar(&title, "title", "", "record title used as context")
	return cmd
}

func newTailorCmd(e env, build assistantFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "tailor <resume-file> <job-description-file>",
		Short: "Rewrite resume bullets toward a job description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resume, err := readText(args[0])
			if err != nil {
				return err
			}
			jd, err := readText(args[1])
			if err != nil {
				return err
			}
			svc, ctx, cancel := build(cmd)
			defer cancel()
			bullets, err := svc.TailorBullets(ctx, resume, jd)
			if err != nil {
				return err
			}
			return writeJSON(e.out, bullets)
		},
	}
}

func newQuestionsCmd(e env, build assistantFactory) *cobra.Command {
	var questionType, exportPath string
	cmd := &cobra.Command{
		Use:   "questions <job-description-file>",
		Short: "Generate interview questions with sample answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qt, ok := assistant.ParseQuestionType(questionType)
			if !ok {
				return fmt.Errorf("--type must be Technical or Behavioral")
			}
			jd, err := readText(args[0])
			if err != nil {
				return err
			}
			svc, ctx, cancel := build(cmd)
			defer cancel()
			qas, err := svc.InterviewQuestions(ctx, jd, qt, nil)
			if err != nil {
				return err
			}
			if exportPath != "" {
				if err := os.WriteFile(exportPath, []byte(prep.Export(qas)), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
			}
			return writeJSON(e.out, qas)
		},
	}
	cmd.Flags().StringVar(&questionType, "type", string(assistant.Technical), "Technical or Behavioral")
	cmd.Flags().StringVar(&exportPath, "export", "", "also write a plain text export to this path")
	return cmd
}

func newExtractCmd(e env, build assistantFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract plain text from a .txt, .pdf or .docx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open: %w", err)
			}
			defer f.Close()

			svc, ctx, cancel := build(cmd)
			defer cancel()
			importer := &imports.Service{AI: svc}
			res, err := importer.Import(ctx, filepath.Base(args[0]), "", f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(e.out, res.Content)
			return err
		},
	}
}

func parseKind(raw string) (assistant.Kind, error) {
	k := assistant.Kind(strings.TrimSpace(raw))
	if !k.Valid() {
		return "", fmt.Errorf("--kind must be %s or %s", records.KindResume, records.KindJobDescription)
	}
	return k, nil
}

func readText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(raw), nil
}

func writeJSON(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}
