package imports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/storage/object"
	"career-backend/internal/shared/telemetry"
)

// DefaultMaxBytes bounds a single upload.
const DefaultMaxBytes = 10 << 20

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTooLarge     = errors.New("file too large")
	// ErrNoText is returned when neither local nor AI extraction produced any text.
	ErrNoText = errors.New("no text could be extracted")
)

// Extraction methods reported in Result.Method.
const (
	MethodPlain = "plain"
	MethodPDF   = "pdf"
	MethodDOCX  = "docx"
	MethodAI    = "ai"
)

// TextExtractor reads text out of a document with the AI provider.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Service turns uploaded files into editor content.
type Service struct {
	// Store archives the original upload and the extracted text. Optional.
	Store    object.ObjectStore
	AI       TextExtractor
	MaxBytes int64
	// Owner namespaces archived uploads.
	Owner string
}

// Result is the outcome of one import.
type Result struct {
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	SizeBytes  int64  `json:"sizeBytes"`
	Method     string `json:"method"`
	Content    string `json:"content"`
	StorageKey string `json:"storageKey,omitempty"`
}

// Import reads r fully, extracts its text and archives the upload.
func (s *Service) Import(ctx context.Context, fileName, contentType string, r io.Reader) (Result, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Result{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return Result{}, ErrTooLarge
	}
	if len(data) == 0 {
		return Result{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	mimeType := detectMimeType(contentType, fileName, data)
	content, method, err := s.extract(ctx, data, mimeType)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
		Method:    method,
		Content:   content,
	}
	res.StorageKey = s.archive(ctx, fileName, data, content)

	metrics.IncImport()
	telemetry.Info("import.completed", map[string]any{
		"file_name":  fileName,
		"mime_type":  mimeType,
		"method":     method,
		"size_bytes": res.SizeBytes,
	})
	return res, nil
}

func (s *Service) extract(ctx context.Context, data []byte, mimeType string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	switch mimeType {
	case mimeText:
		text := strings.TrimPrefix(string(data), "\ufeff")
		if !utf8.ValidString(text) {
			text = strings.ToValidUTF8(text, "\uFFFD")
		}
		return text, MethodPlain, nil
	case mimePDF:
		text, err := extractPDF(data)
		if err == nil && text != "" {
			return text, MethodPDF, nil
		}
		if err != nil {
			telemetry.Warn("import.pdf_local_failed", map[string]any{"error": err})
		}
		return s.extractWithAI(ctx, data, mimeType)
	case mimeDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if text == "" {
			return "", "", ErrNoText
		}
		return text, MethodDOCX, nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}
}

func (s *Service) extractWithAI(ctx context.Context, data []byte, mimeType string) (string, string, error) {
	if s.AI == nil {
		return "", "", ErrNoText
	}
	text, err := s.AI.ExtractText(ctx, data, mimeType)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", "", ErrNoText
	}
	return text, MethodAI, nil
}

// archive stores the upload and its extracted text. Failures are logged and
// do not fail the import.
func (s *Service) archive(ctx context.Context, fileName string, data []byte, text string) string {
	if s.Store == nil {
		return ""
	}
	owner := s.Owner
	if owner == "" {
		owner = "workspace"
	}
	key, _, _, err := s.Store.Save(ctx, owner, fileName, bytes.NewReader(data))
	if err != nil {
		telemetry.Warn("import.archive_failed", map[string]any{"file_name": fileName, "error": err})
		return ""
	}
	if _, err := s.Store.SaveWithKey(ctx, key+".extracted.txt", "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		telemetry.Warn("import.archive_failed", map[string]any{"file_name": fileName, "error": err})
	}
	return key
}
