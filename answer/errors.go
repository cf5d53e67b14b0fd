package answer

import "errors"

var (
	// ErrRetrieverRequired is returned when no searcher is provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrGeneratorRequired is returned when no answer generator is provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrNoQuestions is returned when evaluating an empty question set.
	ErrNoQuestions = errors.New("no questions to evaluate")
)
