package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/poiesic/arborist/core"
)

const defaultMaxDepth = 10

// DefaultExcludeDirs are directory names pruned from every scan.
var DefaultExcludeDirs = []string{"node_modules", "downloaded-torrents", "target", "build", "dist", ".git"}

// Scanner walks a directory tree and records file and folder metadata.
type Scanner struct {
	maxDepth   int
	skipHidden bool
	exclude    map[string]struct{}
	logger     *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxDepth limits how deep below the root the walk descends. The root is depth 0.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) {
		if depth >= 0 {
			s.maxDepth = depth
		}
	}
}

// WithSkipHidden controls whether entries whose name starts with "." are pruned.
func WithSkipHidden(skip bool) Option {
	return func(s *Scanner) {
		s.skipHidden = skip
	}
}

// WithExcludeDirs replaces the set of directory names that are never descended into.
func WithExcludeDirs(names []string) Option {
	return func(s *Scanner) {
		s.exclude = make(map[string]struct{}, len(names))
		for _, name := range names {
			s.exclude[name] = struct{}{}
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner creates a scanner. Defaults: depth 10, hidden entries skipped,
// DefaultExcludeDirs pruned.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		maxDepth:   defaultMaxDepth,
		skipHidden: true,
		logger:     slog.Default(),
	}
	WithExcludeDirs(DefaultExcludeDirs)(s)
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "scanner")
	return s
}

// Scan walks root and returns every file and folder it found.
// Unreadable entries below the root are logged and skipped; an unreadable root is an error.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	start := time.Now()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootUnreadable, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	result := &Result{Root: abs}
	folderIndex := make(map[string]int)
	extCounts := make(map[string]int)

	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == abs {
				return err
			}
			s.logger.Warn("skipping unreadable entry", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if path != abs && s.pruned(d) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		depth := depthOf(abs, path)

		switch {
		case d.IsDir():
			folder, ok := s.folderRecord(path, d)
			if ok {
				folderIndex[path] = len(result.Folders)
				result.Folders = append(result.Folders, folder)
			}
			if depth >= s.maxDepth {
				return fs.SkipDir
			}
		case d.Type().IsRegular():
			file, ok := s.fileRecord(path, d)
			if ok {
				result.Files = append(result.Files, file)
				if ext := core.Extension(file.Name); ext != "" {
					extCounts[ext]++
				}
			}
		default:
			s.logger.Debug("skipping non-regular entry", "path", path, "type", d.Type().String())
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scanning %s: %w", abs, walkErr)
	}

	finalizeFolders(result, folderIndex)
	result.Extensions = sortedExtensions(extCounts)
	result.Elapsed = time.Since(start)

	s.logger.Debug("scan complete",
		"root", abs,
		"files", len(result.Files),
		"folders", len(result.Folders),
		"elapsed", result.Elapsed)

	return result, nil
}

func (s *Scanner) pruned(d fs.DirEntry) bool {
	name := d.Name()
	if s.skipHidden && strings.HasPrefix(name, ".") {
		return true
	}
	if d.IsDir() {
		if _, ok := s.exclude[name]; ok {
			return true
		}
	}
	return false
}

func (s *Scanner) fileRecord(path string, d fs.DirEntry) (*core.FileRecord, bool) {
	info, err := d.Info()
	if err != nil {
		s.logger.Warn("skipping file without metadata", "path", path, "err", err)
		return nil, false
	}
	created, modified := timestamps(path, info)
	return &core.FileRecord{
		Name:       d.Name(),
		Path:       path,
		Size:       info.Size(),
		Category:   core.CategoryFromPath(path),
		CreatedAt:  created,
		ModifiedAt: modified,
	}, true
}

func (s *Scanner) folderRecord(path string, d fs.DirEntry) (*core.FolderRecord, bool) {
	info, err := d.Info()
	if err != nil {
		s.logger.Warn("skipping folder without metadata", "path", path, "err", err)
		return nil, false
	}
	created, modified := timestamps(path, info)
	return &core.FolderRecord{
		Name:       d.Name(),
		Path:       path,
		CreatedAt:  created,
		ModifiedAt: modified,
	}, true
}

// timestamps returns the birth time when the platform records one, else the modification time.
func timestamps(path string, info fs.FileInfo) (created, modified time.Time) {
	modified = info.ModTime()
	created = modified
	if ts, err := times.Stat(path); err == nil && ts.HasBirthTime() {
		created = ts.BirthTime()
	}
	return created, modified
}

func depthOf(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// finalizeFolders fills in sizes, counts and descendant files once the walk is complete.
func finalizeFolders(result *Result, folderIndex map[string]int) {
	for _, file := range result.Files {
		parent := filepath.Dir(file.Path)
		if idx, ok := folderIndex[parent]; ok {
			result.Folders[idx].FileCount++
		}
		for dir := parent; ; dir = filepath.Dir(dir) {
			if idx, ok := folderIndex[dir]; ok {
				folder := result.Folders[idx]
				folder.Size += file.Size
				folder.Files = append(folder.Files, *file)
			}
			if dir == result.Root || dir == filepath.Dir(dir) {
				break
			}
		}
	}

	for _, folder := range result.Folders {
		if folder.Path == result.Root {
			continue
		}
		if idx, ok := folderIndex[filepath.Dir(folder.Path)]; ok {
			result.Folders[idx].FolderCount++
		}
	}
}
