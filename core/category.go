package core

import (
	"path/filepath"
	"strings"
)

// FileCategory is the coarse content class of a file, derived from its extension.
type FileCategory int

const (
	// CategoryDocument covers text-bearing documents.
	CategoryDocument FileCategory = iota + 1
	// CategoryImage covers raster and vector images.
	CategoryImage
	// CategoryAudio covers audio recordings.
	CategoryAudio
	// CategoryVideo covers video recordings.
	CategoryVideo
	// CategoryArchive covers compressed and packaged archives.
	CategoryArchive
	// CategoryOther is the fallback for everything else.
	CategoryOther
)

var categoryNames = map[FileCategory]string{
	CategoryDocument: "document",
	CategoryImage:    "image",
	CategoryAudio:    "audio",
	CategoryVideo:    "video",
	CategoryArchive:  "archive",
	CategoryOther:    "other",
}

func (c FileCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "other"
}

var extensionCategories = buildExtensionTable(map[FileCategory][]string{
	CategoryDocument: {
		"epub", "pdf", "txt", "docx", "md", "markdown", "epage", "rtf", "fb2", "azw3",
		"mobi", "doc", "xlsx", "csv", "tex", "bib", "json", "xml", "html", "htm",
		"conf", "pptx", "settings", "prop", "log", "djvu", "cls", "pkt", "sav", "set",
		"bin", "backup", "bundle", "typ", "scpt", "rst", "opml", "org", "wiki", "mediawiki",
	},
	CategoryImage: {
		"jpg", "png", "jpeg", "gif", "bmp", "tiff", "webp", "svg", "heic", "avif",
		"pgm", "opf", "icon",
	},
	CategoryAudio: {
		"mp3", "wav", "m4b", "ogg", "flac", "aac", "wma", "amr",
	},
	CategoryVideo: {
		"mp4", "mkv", "webm", "avi", "mov", "wmv", "flv", "mpeg", "3gp", "m4v",
	},
	CategoryArchive: {
		"zip", "tar", "rar", "7z", "gz", "bz2", "iso", "dmg", "cab", "jar",
		"war", "ear", "pkg", "deb", "rpm", "apk", "cpio",
	},
})

func buildExtensionTable(groups map[FileCategory][]string) map[string]FileCategory {
	table := make(map[string]FileCategory)
	for category, exts := range groups {
		for _, ext := range exts {
			table[ext] = category
		}
	}
	return table
}

// Extension returns the lower-cased extension of path without the leading dot,
// or "" when there is none.
func Extension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" || ext == "." {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// CategoryFromPath classifies a file by its extension. It never fails:
// unknown or missing extensions map to CategoryOther.
func CategoryFromPath(path string) FileCategory {
	if category, ok := extensionCategories[Extension(path)]; ok {
		return category
	}
	return CategoryOther
}

// CategoryVisitor has one method per FileCategory. Adding a category adds a
// method here, so every visitor stops compiling until it handles the new case.
type CategoryVisitor[T any] interface {
	Document() T
	Image() T
	Audio() T
	Video() T
	Archive() T
	Other() T
}

// VisitCategory dispatches to the visitor method matching category.
// Values outside the enumeration are treated as CategoryOther.
func VisitCategory[T any](category FileCategory, v CategoryVisitor[T]) T {
	switch category {
	case CategoryDocument:
		return v.Document()
	case CategoryImage:
		return v.Image()
	case CategoryAudio:
		return v.Audio()
	case CategoryVideo:
		return v.Video()
	case CategoryArchive:
		return v.Archive()
	default:
		return v.Other()
	}
}
