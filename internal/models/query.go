// internal/models/query.go
package models

import (
	"fmt"
	"sort"
	"strings"
)

// AvailabilitySet is the set of ingredient ids a user has on hand, supplied
// per request and never persisted by the engine.
type AvailabilitySet map[string]bool

// NewAvailabilitySet builds a set from a slice of ids, dropping blanks.
func NewAvailabilitySet(ids []string) AvailabilitySet {
	set := make(AvailabilitySet, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = true
		}
	}
	return set
}

// SortedIDs returns the member ids in ascending order.
func (a AvailabilitySet) SortedIDs() []string {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Filters holds the exact/bounded predicates ANDed with the text query.
type Filters struct {
	Cuisine            string   `json:"cuisine,omitempty"`
	Difficulty         string   `json:"difficulty,omitempty"`
	MaxPrepTimeMinutes int      `json:"maxPrepTimeMinutes,omitempty"`
	MaxCookTimeMinutes int      `json:"maxCookTimeMinutes,omitempty"`
	Tags               []string `json:"tags,omitempty"`
}

// Empty reports whether no filter predicate is set.
func (f Filters) Empty() bool {
	return f.Cuisine == "" && f.Difficulty == "" &&
		f.MaxPrepTimeMinutes == 0 && f.MaxCookTimeMinutes == 0 &&
		len(f.Tags) == 0
}

// SearchRequest is the façade's single request contract.
type SearchRequest struct {
	Term                   string   `json:"term,omitempty"`
	Filters                Filters  `json:"filters,omitempty"`
	AvailableIngredientIDs []string `json:"availableIngredientIds,omitempty"`
	Page                   int      `json:"page"`
	PageSize               int      `json:"pageSize"`
}

// NormalizedTerm lowercases and collapses whitespace so logically identical
// terms fingerprint identically.
func (r SearchRequest) NormalizedTerm() string {
	return strings.Join(strings.Fields(strings.ToLower(r.Term)), " ")
}

// Availability returns the request's availability set.
func (r SearchRequest) Availability() AvailabilitySet {
	return NewAvailabilitySet(r.AvailableIngredientIDs)
}

// CanonicalKey renders the request into the stable form hashed for caching:
// normalized term, sorted filter pairs, sorted availability ids, pagination.
// Two requests differing only in key or id ordering produce the same key.
func (r SearchRequest) CanonicalKey() string {
	var b strings.Builder

	b.WriteString("term=")
	b.WriteString(r.NormalizedTerm())

	pairs := []string{}
	if r.Filters.Cuisine != "" {
		pairs = append(pairs, "cuisine="+strings.ToLower(r.Filters.Cuisine))
	}
	if r.Filters.Difficulty != "" {
		pairs = append(pairs, "difficulty="+strings.ToLower(r.Filters.Difficulty))
	}
	if r.Filters.MaxPrepTimeMinutes > 0 {
		pairs = append(pairs, fmt.Sprintf("maxPrepTimeMinutes=%d", r.Filters.MaxPrepTimeMinutes))
	}
	if r.Filters.MaxCookTimeMinutes > 0 {
		pairs = append(pairs, fmt.Sprintf("maxCookTimeMinutes=%d", r.Filters.MaxCookTimeMinutes))
	}
	if len(r.Filters.Tags) > 0 {
		tags := make([]string, len(r.Filters.Tags))
		for i, t := range r.Filters.Tags {
			tags[i] = strings.ToLower(t)
		}
		sort.Strings(tags)
		pairs = append(pairs, "tags="+strings.Join(tags, ","))
	}
	sort.Strings(pairs)
	b.WriteString("|filters=")
	b.WriteString(strings.Join(pairs, "&"))

	b.WriteString("|avail=")
	b.WriteString(strings.Join(r.Availability().SortedIDs(), ","))

	fmt.Fprintf(&b, "|page=%d|pageSize=%d", r.Page, r.PageSize)
	return b.String()
}
