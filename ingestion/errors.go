package ingestion

import "errors"

var (
	// ErrProcessorRequired is returned when no document processor is provided.
	ErrProcessorRequired = errors.New("document processor required")

	// ErrRawDirRequired is returned when the raw filing directory is empty.
	ErrRawDirRequired = errors.New("raw directory required")

	// ErrProcessedDirRequired is returned when the processed directory is empty.
	ErrProcessedDirRequired = errors.New("processed directory required")

	// ErrNoTickers is returned when Run is called without tickers.
	ErrNoTickers = errors.New("no tickers to process")
)
