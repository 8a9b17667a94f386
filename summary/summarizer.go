package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/arborist/ai"
	"github.com/poiesic/arborist/core"
	"github.com/poiesic/arborist/extract"
	"github.com/poiesic/arborist/storage"
)

const (
	fileSystemPrompt   = "You are a helpful assistant who summarizes file contents."
	filePromptPrefix   = "Summarize the contents of file: "
	folderSystemPrompt = "You are a helpful assistant who summarizes folder contents."
	folderPromptPrefix = "Summarize the contents of folder: "
	captionPrompt      = "Describe the contents of this image in a few sentences."

	DefaultMaxContentChars = 32000
)

// Extractor produces summarizable content for a file.
type Extractor interface {
	Extract(ctx context.Context, file *core.FileRecord) (extract.Content, error)
}

type Summarizer struct {
	generator ai.Generator
	extractor Extractor
	cache     storage.SummaryRepository
	model     string
	maxChars  int
	logger    *slog.Logger
}

type Option func(*Summarizer)

// WithCache enables the persistent summary cache.
func WithCache(cache storage.SummaryRepository) Option {
	return func(s *Summarizer) {
		s.cache = cache
	}
}

// WithModel names the generation model. Cached summaries from other models are ignored.
func WithModel(model string) Option {
	return func(s *Summarizer) {
		s.model = model
	}
}

// WithMaxContentChars caps the characters of extracted text sent to the model.
func WithMaxContentChars(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Summarizer) {
		s.logger = logger
	}
}

func New(generator ai.Generator, extractor Extractor, opts ...Option) *Summarizer {
	s := &Summarizer{
		generator: generator,
		extractor: extractor,
		maxChars:  DefaultMaxContentChars,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "summarizer")
	return s
}

// SummarizeFile returns file's summary, generating it if needed, and stores
// it on file.Summary.
func (s *Summarizer) SummarizeFile(ctx context.Context, file *core.FileRecord, force bool) (string, error) {
	if file.Summary != "" && !force {
		return file.Summary, nil
	}

	if !force {
		if cached := s.cached(ctx, file); cached != "" {
			file.Summary = cached
			return cached, nil
		}
	}

	content, err := s.extractor.Extract(ctx, file)
	if err != nil {
		return "", err
	}

	var text string
	switch content.Kind {
	case extract.KindFinal:
		text = content.Text
	case extract.KindImage:
		text, err = s.generator.Describe(ctx, captionPrompt, content.Image, content.MIMEType)
	default:
		text, err = s.generator.Generate(ctx, fileSystemPrompt, filePromptPrefix+s.truncate(content.Text))
	}
	if err != nil {
		return "", fmt.Errorf("summarizing %s: %w: %w", file.Path, ErrGeneration, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("summarizing %s: %w", file.Path, ErrEmptySummary)
	}

	file.Summary = text
	s.store(ctx, file)
	return text, nil
}

// SummarizeFolder summarizes folder from the summaries of its files.
// Files that cannot be summarized are logged and left out.
func (s *Summarizer) SummarizeFolder(ctx context.Context, folder *core.FolderRecord, force bool) (string, error) {
	if folder.Summary != "" && !force {
		return folder.Summary, nil
	}

	var b strings.Builder
	for i := range folder.Files {
		file := &folder.Files[i]
		text, err := s.SummarizeFile(ctx, file, false)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			s.logger.Warn("leaving file out of folder summary", "folder", folder.Path, "file", file.Path, "err", err)
			continue
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("summarizing folder %s: %w", folder.Path, ErrNothingToSummarize)
	}

	text, err := s.generator.Generate(ctx, folderSystemPrompt, folderPromptPrefix+s.truncate(b.String()))
	if err != nil {
		return "", fmt.Errorf("summarizing folder %s: %w: %w", folder.Path, ErrGeneration, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("summarizing folder %s: %w", folder.Path, ErrEmptySummary)
	}
	folder.Summary = text
	return text, nil
}

func (s *Summarizer) cached(ctx context.Context, file *core.FileRecord) string {
	if s.cache == nil {
		return ""
	}
	entry, err := s.cache.GetSummary(ctx, file.Path)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("summary cache read failed", "path", file.Path, "err", err)
		}
		return ""
	}
	if !entry.Matches(file, s.model) {
		s.logger.Debug("stale cached summary", "path", file.Path)
		return ""
	}
	s.logger.Debug("using cached summary", "path", file.Path)
	return entry.Summary
}

func (s *Summarizer) store(ctx context.Context, file *core.FileRecord) {
	if s.cache == nil {
		return
	}
	err := s.cache.PutSummary(ctx, &core.SummaryEntry{
		Path:       file.Path,
		Size:       file.Size,
		ModifiedAt: file.ModifiedAt,
		Model:      s.model,
		Summary:    file.Summary,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("summary cache write failed", "path", file.Path, "err", err)
	}
}

// truncate cuts text to at most maxChars runes.
func (s *Summarizer) truncate(text string) string {
	if len(text) <= s.maxChars {
		return text
	}
	count := 0
	for i := range text {
		if count == s.maxChars {
			return text[:i]
		}
		count++
	}
	return text
}
