package core

import (
	"time"
)

// DenseDimension is the fixed dimension of every dense vector stored in the collection.
const DenseDimension = 768

// NoSummarySentinel is the summary recorded for files whose category carries no extractable content.
const NoSummarySentinel = "Summary not available for this file type."

// FileRecord describes a regular file discovered during a scan.
// Path is absolute and is the identity key for deduplication.
type FileRecord struct {
	Name       string
	Path       string
	Size       int64
	Category   FileCategory
	CreatedAt  time.Time
	ModifiedAt time.Time
	Summary    string // Empty until generated
}

// FolderRecord describes a directory discovered during a scan.
// Size is the recursive sum of descendant file sizes; FileCount and FolderCount
// count direct children only. Files holds copies of the descendant file records.
type FolderRecord struct {
	Name        string
	Path        string
	Size        int64
	CreatedAt   time.Time
	ModifiedAt  time.Time
	FileCount   int
	FolderCount int
	Files       []FileRecord
	Summary     string
}

// SparseVector is a sparse term-weight vector. Indices are unique and sorted ascending.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// Len returns the number of non-zero entries.
func (s SparseVector) Len() int {
	return len(s.Indices)
}

// Payload is the metadata stored alongside every indexed point.
type Payload struct {
	FileName string
	FilePath string
	FileSize int64
	Summary  string
}

// IndexPoint is a single entry in the vector store.
type IndexPoint struct {
	ID      string
	Dense   []float32
	Sparse  SparseVector
	Payload Payload
}

// NewIndexPoint builds a point for a summarized file. The ID is derived from the path.
func NewIndexPoint(file *FileRecord, dense []float32, sparse SparseVector) *IndexPoint {
	return &IndexPoint{
		ID:     PointIDFromPath(file.Path),
		Dense:  dense,
		Sparse: sparse,
		Payload: Payload{
			FileName: file.Name,
			FilePath: file.Path,
			FileSize: file.Size,
			Summary:  file.Summary,
		},
	}
}

// SearchResult is a ranked match returned from a similarity query.
type SearchResult struct {
	ID      string
	Score   float32
	Payload Payload
}

// SummaryEntry is a cached summary, valid while the file's size, modification time
// and the generating model are unchanged.
type SummaryEntry struct {
	Path       string
	Size       int64
	ModifiedAt time.Time
	Model      string
	Summary    string
	CreatedAt  time.Time
}

// Matches reports whether the cached entry is still valid for file under model.
func (e *SummaryEntry) Matches(file *FileRecord, model string) bool {
	if e == nil || file == nil {
		return false
	}
	return e.Path == file.Path &&
		e.Size == file.Size &&
		e.ModifiedAt.Equal(file.ModifiedAt) &&
		e.Model == model &&
		e.Summary != ""
}
