// Package arbiter picks the best of several machine translations of one
// resource value.
package arbiter

import (
	"context"
	"errors"
)

var ErrNoCandidates = errors.New("arbiter: no candidates")

// CompositeProvider marks a decision that merges several candidates.
const CompositeProvider = "composite"

// Candidate is one translation produced by a provider.
type Candidate struct {
	Provider string `json:"provider"`
	Text     string `json:"text"`
}

// Request describes the value being translated and its candidates in
// provider priority order.
type Request struct {
	Key        string
	Source     string
	SourceLang string
	TargetLang string
	Candidates []Candidate
}

type Decision struct {
	Provider  string `json:"provider"`
	Text      string `json:"text"`
	Composite bool   `json:"composite"`
	Reasoning string `json:"reasoning,omitempty"`
}

type Arbiter interface {
	Choose(ctx context.Context, req Request) (*Decision, error)
}

// single answers requests that leave nothing to choose from.
func single(req Request) (*Decision, bool, error) {
	switch len(req.Candidates) {
	case 0:
		return nil, true, ErrNoCandidates
	case 1:
		c := req.Candidates[0]
		return &Decision{Provider: c.Provider, Text: c.Text, Reasoning: "Only one candidate available"}, true, nil
	}
	return nil, false, nil
}
