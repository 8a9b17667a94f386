package extract

import "errors"

var (
	// ErrToolNotFound is returned when the external conversion tool is not installed.
	ErrToolNotFound = errors.New("conversion tool not found")

	// ErrConversionFailed is returned when the conversion tool exits unsuccessfully.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrExtractionFailed is returned when a built-in reader cannot read or parse the file.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrBinaryContent is returned when a file decoded as text turns out to be binary.
	ErrBinaryContent = errors.New("binary content")
)
