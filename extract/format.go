package extract

import "github.com/poiesic/arborist/core"

// DocumentFormat identifies how a document's text is pulled out.
type DocumentFormat int

const (
	// FormatPlain is the fallback: the file's bytes are decoded as text.
	FormatPlain DocumentFormat = iota
	FormatMarkdown
	FormatDocx
	FormatEpub
	FormatHTML
	FormatRTF
	FormatLaTeX
	FormatJSON
	FormatRST
	FormatOPML
	FormatOrg
	FormatMediaWiki
	FormatPDF
	FormatXLSX
	FormatPPTX
)

var extensionFormats = map[string]DocumentFormat{
	"md":        FormatMarkdown,
	"markdown":  FormatMarkdown,
	"docx":      FormatDocx,
	"epub":      FormatEpub,
	"html":      FormatHTML,
	"htm":       FormatHTML,
	"rtf":       FormatRTF,
	"tex":       FormatLaTeX,
	"json":      FormatJSON,
	"rst":       FormatRST,
	"opml":      FormatOPML,
	"org":       FormatOrg,
	"wiki":      FormatMediaWiki,
	"mediawiki": FormatMediaWiki,
	"pdf":       FormatPDF,
	"xlsx":      FormatXLSX,
	"pptx":      FormatPPTX,
}

// pandocReaders holds the pandoc input format name for each format pandoc converts.
var pandocReaders = map[DocumentFormat]string{
	FormatMarkdown:  "markdown",
	FormatDocx:      "docx",
	FormatEpub:      "epub",
	FormatHTML:      "html",
	FormatRTF:       "rtf",
	FormatLaTeX:     "latex",
	FormatJSON:      "json",
	FormatRST:       "rst",
	FormatOPML:      "opml",
	FormatOrg:       "org",
	FormatMediaWiki: "mediawiki",
}

var formatNames = map[DocumentFormat]string{
	FormatPlain:     "plain",
	FormatMarkdown:  "markdown",
	FormatDocx:      "docx",
	FormatEpub:      "epub",
	FormatHTML:      "html",
	FormatRTF:       "rtf",
	FormatLaTeX:     "latex",
	FormatJSON:      "json",
	FormatRST:       "rst",
	FormatOPML:      "opml",
	FormatOrg:       "org",
	FormatMediaWiki: "mediawiki",
	FormatPDF:       "pdf",
	FormatXLSX:      "xlsx",
	FormatPPTX:      "pptx",
}

// FormatFromPath maps a file's extension to its DocumentFormat.
// Unrecognized extensions map to FormatPlain.
func FormatFromPath(path string) DocumentFormat {
	if format, ok := extensionFormats[core.Extension(path)]; ok {
		return format
	}
	return FormatPlain
}

// PandocArg returns the pandoc input format for f, and false when pandoc does not handle f.
func (f DocumentFormat) PandocArg() (string, bool) {
	arg, ok := pandocReaders[f]
	return arg, ok
}

func (f DocumentFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "plain"
}
