package answer

import (
	"context"
	"fmt"
	"time"
)

// HighConfidence is the confidence an answer must exceed to count as
// confident in an evaluation summary.
const HighConfidence = 0.6

// EvaluationQuestions spans the filing types and concepts of the corpus.
var EvaluationQuestions = []string{
	"What are the primary revenue drivers and business segments for major technology companies like Apple and Microsoft?",
	"Compare Apple and Microsoft's quarterly revenue performance trends and identify key growth drivers from recent quarters",
	"What significant corporate events, acquisitions, or strategic changes have been reported by companies recently?",
	"Analyze executive compensation structures and governance practices across technology versus traditional industry companies",
	"Identify patterns in insider trading activity across companies and analyze the timing of these transactions",
	"How do companies describe climate-related risks and what industry differences exist in risk disclosure approaches?",
	"How do companies describe their competitive advantages and market positioning strategies across different industries?",
	"Compare working capital management strategies between retail companies like Walmart and financial services firms",
	"Analyze research and development spending efficiency across sectors: R&D investment per revenue dollar trends",
	"Compare regulatory compliance costs and legal risk factors between financial services and healthcare companies",
}

// Evaluation holds the answers to a batch of questions.
type Evaluation struct {
	Results []*Result         `json:"results"`
	Summary EvaluationSummary `json:"summary"`
}

// EvaluationSummary aggregates an Evaluation.
type EvaluationSummary struct {
	Questions         int           `json:"questions"`
	AverageConfidence float64       `json:"average_confidence"`
	AverageTime       time.Duration `json:"-"`
	HighConfidence    int           `json:"high_confidence"`
}

// EvaluationRecord is the saved form of one evaluated answer.
type EvaluationRecord struct {
	Question   string  `json:"q"`
	Answer     string  `json:"a"`
	Confidence float64 `json:"conf"`
	Seconds    float64 `json:"time"`
}

// Evaluate answers each question in order and summarizes the results.
// It stops at the first question that fails.
func (a *Answerer) Evaluate(ctx context.Context, questions []string) (*Evaluation, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	eval := &Evaluation{Results: make([]*Result, 0, len(questions))}
	for i, q := range questions {
		res, err := a.Answer(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		a.logger.Info("evaluated question",
			"n", i+1,
			"of", len(questions),
			"confidence", res.Confidence,
			"elapsed", res.Elapsed)
		eval.Results = append(eval.Results, res)
	}
	eval.Summary = summarize(eval.Results)
	return eval, nil
}

func summarize(results []*Result) EvaluationSummary {
	s := EvaluationSummary{Questions: len(results)}
	if len(results) == 0 {
		return s
	}
	var confidence float64
	var elapsed time.Duration
	for _, r := range results {
		confidence += r.Confidence
		elapsed += r.Elapsed
		if r.Confidence > HighConfidence {
			s.HighConfidence++
		}
	}
	s.AverageConfidence = confidence / float64(len(results))
	s.AverageTime = elapsed / time.Duration(len(results))
	return s
}

// Records returns the per-question records written to an evaluation file.
func (e *Evaluation) Records() []EvaluationRecord {
	records := make([]EvaluationRecord, len(e.Results))
	for i, r := range e.Results {
		records[i] = EvaluationRecord{
			Question:   r.Question,
			Answer:     r.Answer,
			Confidence: r.Confidence,
			Seconds:    r.Elapsed.Seconds(),
		}
	}
	return records
}
