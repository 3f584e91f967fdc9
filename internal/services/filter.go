package services

import (
	"strings"
	"time"

	"aispend/internal/domain"
)

// Filters narrows a normalized record set. All predicates are optional
// and AND-combined; values within one multi-valued field are OR-combined.
// Substring matches are case-insensitive.
type Filters struct {
	Since     time.Time // inclusive; zero means unbounded
	Until     time.Time // inclusive; zero means unbounded
	SessionID string    // exact match
	Projects  []string  // against project name, directory, project id
	Models    []string  // against the provider-prefix-stripped model name
	Providers []string
	Combos    []string // against the source/provider/model label
}

// Apply returns the records passing every configured predicate. The
// input is never mutated.
func (f Filters) Apply(records []domain.UsageRecord, meta map[string]domain.SessionMeta) []domain.UsageRecord {
	var filtered []domain.UsageRecord
	for _, r := range records {
		if !f.matches(r, meta) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func (f Filters) matches(r domain.UsageRecord, meta map[string]domain.SessionMeta) bool {
	// Time window first; bounds are inclusive
	if !f.Since.IsZero() && r.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && r.Timestamp.After(f.Until) {
		return false
	}

	if f.SessionID != "" && r.SessionID != f.SessionID {
		return false
	}

	if len(f.Projects) > 0 {
		m := meta[r.SessionID]
		if !anySubstring(f.Projects, m.ProjectName(), m.Directory, m.ProjectID) {
			return false
		}
	}

	if len(f.Models) > 0 && !anySubstring(f.Models, r.NormalizedModel()) {
		return false
	}

	if len(f.Providers) > 0 && !anySubstring(f.Providers, r.Provider) {
		return false
	}

	if len(f.Combos) > 0 && !anySubstring(f.Combos, r.ComboLabel()) {
		return false
	}

	return true
}

// anySubstring reports whether any needle occurs, case-insensitively, in
// any of the candidate values.
func anySubstring(needles []string, candidates ...string) bool {
	for _, needle := range needles {
		lowered := strings.ToLower(needle)
		for _, candidate := range candidates {
			if candidate == "" {
				continue
			}
			if strings.Contains(strings.ToLower(candidate), lowered) {
				return true
			}
		}
	}
	return false
}
