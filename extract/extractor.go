package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/poiesic/arborist/core"
)

const defaultMaxRawBytes = 1 << 20 // 1 MiB

// ContentKind tells the summarizer what to do with extracted content.
type ContentKind int

const (
	// KindText is plain text that still needs summarizing.
	KindText ContentKind = iota + 1
	// KindImage is raw image data that needs captioning.
	KindImage
	// KindFinal is already the file's summary and is stored verbatim.
	KindFinal
)

// Content is the result of extracting a file.
type Content struct {
	Kind     ContentKind
	Text     string
	Image    []byte
	MIMEType string
	Format   DocumentFormat
}

// CommandRunner runs an external program and returns its stdout and stderr.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Extractor turns files into text or image content according to their category.
type Extractor struct {
	pandocPath  string
	run         CommandRunner
	maxRawBytes int64
	logger      *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPandocPath sets the pandoc executable. Default is "pandoc" resolved via PATH.
func WithPandocPath(path string) Option {
	return func(e *Extractor) {
		if path != "" {
			e.pandocPath = path
		}
	}
}

// WithCommandRunner replaces how external programs are executed.
func WithCommandRunner(run CommandRunner) Option {
	return func(e *Extractor) {
		if run != nil {
			e.run = run
		}
	}
}

// WithMaxRawBytes caps how much of a plain file is read. Default is 1 MiB.
func WithMaxRawBytes(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxRawBytes = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		pandocPath:  "pandoc",
		run:         execRunner,
		maxRawBytes: defaultMaxRawBytes,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "extractor")
	return e
}

// Extract returns the content of file. Errors are per-file and wrap the file path.
func (e *Extractor) Extract(ctx context.Context, file *core.FileRecord) (Content, error) {
	category := file.Category
	if category == 0 {
		category = core.CategoryFromPath(file.Path)
	}
	out := core.VisitCategory[outcome](category, extraction{e: e, ctx: ctx, file: file})
	if out.err != nil {
		return Content{}, fmt.Errorf("extracting %s: %w", file.Path, out.err)
	}
	return out.content, nil
}

type outcome struct {
	content Content
	err     error
}

// extraction handles one file; each method is the strategy for one category.
type extraction struct {
	e    *Extractor
	ctx  context.Context
	file *core.FileRecord
}

func (x extraction) Document() outcome {
	format := FormatFromPath(x.file.Path)
	text, err := x.e.documentText(x.ctx, format, x.file.Path)
	if err != nil {
		return outcome{err: err}
	}
	if strings.TrimSpace(text) == "" {
		x.e.logger.Debug("document has no text", "path", x.file.Path, "format", format.String())
		return outcome{content: Content{Kind: KindFinal, Text: core.NoSummarySentinel, Format: format}}
	}
	return outcome{content: Content{Kind: KindText, Text: text, Format: format}}
}

func (x extraction) Image() outcome {
	data, err := os.ReadFile(x.file.Path)
	if err != nil {
		return outcome{err: fmt.Errorf("%w: %w", ErrExtractionFailed, err)}
	}
	mimeType := mime.TypeByExtension("." + core.Extension(x.file.Path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return outcome{content: Content{Kind: KindImage, Image: data, MIMEType: mimeType}}
}

func (x extraction) Audio() outcome {
	return placeholder("Audio transcription for: " + x.file.Path)
}

func (x extraction) Video() outcome {
	return placeholder("Video transcription for: " + x.file.Path)
}

func (x extraction) Archive() outcome {
	return placeholder("Archive summary for: " + x.file.Path)
}

func (x extraction) Other() outcome {
	return outcome{content: Content{Kind: KindFinal, Text: core.NoSummarySentinel}}
}

func placeholder(text string) outcome {
	return outcome{content: Content{Kind: KindText, Text: text}}
}

func (e *Extractor) documentText(ctx context.Context, format DocumentFormat, path string) (string, error) {
	switch format {
	case FormatPDF:
		return readPDF(path)
	case FormatXLSX:
		return readXLSX(path)
	case FormatPPTX:
		return readPPTX(path)
	case FormatPlain:
		return readRaw(path, e.maxRawBytes)
	}

	arg, ok := format.PandocArg()
	if !ok {
		return readRaw(path, e.maxRawBytes)
	}
	return e.pandoc(ctx, arg, path)
}

// pandoc converts path to plain text: pandoc -f <format> -t plain <path>.
func (e *Extractor) pandoc(ctx context.Context, format, path string) (string, error) {
	e.logger.Debug("converting with pandoc", "path", path, "format", format)
	stdout, stderr, err := e.run(ctx, e.pandocPath, "-f", format, "-t", "plain", path)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrToolNotFound, e.pandocPath)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		diag := strings.TrimSpace(string(stderr))
		if diag == "" {
			diag = err.Error()
		}
		return "", fmt.Errorf("%w: pandoc -f %s: %s", ErrConversionFailed, format, diag)
	}
	return string(stdout), nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
