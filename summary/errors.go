package summary

import "errors"

var (
	// ErrGeneration indicates the language-model service failed to produce a reply.
	ErrGeneration = errors.New("language model request failed")

	// ErrEmptySummary indicates the model returned no usable text.
	ErrEmptySummary = errors.New("model returned an empty summary")

	// ErrNothingToSummarize indicates a folder has no summarized files.
	ErrNothingToSummarize = errors.New("no file summaries to aggregate")
)
