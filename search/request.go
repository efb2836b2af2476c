// Package search talks to the external combination-search backend and
// validates search parameters before any reveal starts.
package search

import (
	"strings"

	grapherror "github.com/teranos/recipeviz/graph/error"
	"github.com/teranos/recipeviz/reveal"
)

// Method is the search strategy the backend runs
type Method string

const (
	MethodBFS           Method = "bfs"
	MethodDFS           Method = "dfs"
	MethodBidirectional Method = "bidirectional"
)

// Option selects how many recipes the backend returns
type Option string

const (
	OptionShortest Option = "shortest"
	OptionMultiple Option = "multiple"
)

// DefaultDelayMS is the reveal delay used when a request leaves it unset
const DefaultDelayMS = 500

// Request is one search as entered by the user
type Request struct {
	Target  string `json:"target" yaml:"target"`
	Method  Method `json:"method" yaml:"method"`
	Option  Option `json:"option" yaml:"option"`
	Count   int    `json:"count,omitempty" yaml:"count,omitempty"` // Recipe count for OptionMultiple
	DelayMS int    `json:"delay_ms" yaml:"delay_ms"`
}

// Normalize trims and lower-cases fields and fills defaults for empty ones
func (r Request) Normalize(defaultDelayMS int) Request {
	r.Target = strings.TrimSpace(r.Target)
	r.Method = Method(strings.ToLower(strings.TrimSpace(string(r.Method))))
	r.Option = Option(strings.ToLower(strings.TrimSpace(string(r.Option))))
	if r.Method == "" {
		r.Method = MethodBFS
	}
	if r.Method == "bidir" {
		r.Method = MethodBidirectional
	}
	if r.Option == "" {
		r.Option = OptionShortest
	}
	if r.DelayMS == 0 {
		r.DelayMS = defaultDelayMS
	}
	return r
}

// Validate rejects malformed requests. Nothing is scheduled for a request
// that fails validation.
func (r Request) Validate() error {
	if r.Target == "" {
		return grapherror.Newf(grapherror.CategoryValidation,
			"Enter an element to search for",
			"empty search target").
			WithSubcategory(grapherror.SubcategoryValidationTarget)
	}

	switch r.Method {
	case MethodBFS, MethodDFS, MethodBidirectional:
	default:
		return grapherror.Newf(grapherror.CategoryValidation,
			"Search method must be BFS, DFS or Bidirectional",
			"unknown search method %q", r.Method).
			WithSubcategory(grapherror.SubcategoryValidationMethod)
	}

	switch r.Option {
	case OptionShortest:
	case OptionMultiple:
		if r.Count < 1 {
			return grapherror.Newf(grapherror.CategoryValidation,
				"Number of recipes must be at least 1",
				"invalid recipe count %d", r.Count).
				WithSubcategory(grapherror.SubcategoryValidationOption)
		}
	default:
		return grapherror.Newf(grapherror.CategoryValidation,
			"Search option must be Shortest or Multiple",
			"unknown search option %q", r.Option).
			WithSubcategory(grapherror.SubcategoryValidationOption)
	}

	return reveal.ValidateDelay(r.DelayMS)
}
