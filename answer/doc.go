// Package answer produces grounded answers to questions about filings.
//
// BuildPrompt quotes the top ranked passages for the answer generator and
// Confidence estimates how well those passages cover the question.
package answer
