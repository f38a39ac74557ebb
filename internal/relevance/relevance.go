// Package relevance decides whether a candidate file is worth returning for a
// given query, based purely on its path and the query text.
//
// Classification is a pure function over a Ruleset: no I/O, no state, and the
// same (path, query) pair always yields the same verdict. The default ruleset
// encodes the priorities of the Bevy 0.14.2 corpus; substituting a different
// ruleset retargets the classifier without touching its logic.
package relevance

import "strings"

// Verdict reasons. Exclusions carry a reason too, for observability.
const (
	ReasonCoreAPI       = "core API file"
	ReasonUsagePatterns = "example file (may contain usage patterns)"
	ReasonLowPriority   = "example file (low priority for this query)"
	ReasonDefault       = "potentially relevant"
)

// Verdict is the classifier's decision for one candidate.
type Verdict struct {
	Included bool
	Reason   string
}

// Ruleset holds the path fragments and vocabulary the classifier matches
// against. All matching is lexical and case-insensitive.
type Ruleset struct {
	// PriorityPaths mark primary API source locations.
	PriorityPaths []string
	// LowPriorityPaths mark example, benchmark and test locations that are
	// penalized unless the query signals interest in usage patterns.
	LowPriorityPaths []string
	// VocabGroups are term categories of domain vocabulary. A query
	// containing any term from any group rescues low-priority paths.
	VocabGroups [][]string
}

// DefaultRuleset returns the ruleset for the Bevy 0.14.2 corpus.
func DefaultRuleset() Ruleset {
	return Ruleset{
		PriorityPaths: []string{
			"crates/bevy_ecs",
			"crates/bevy_app",
			"crates/bevy_core",
			"src/",
		},
		LowPriorityPaths: []string{
			"examples/",
			"benches/",
			"tests/",
		},
		VocabGroups: [][]string{
			{"entity", "component", "system", "query", "resource", "world", "commands"},
			{"render", "mesh", "material", "shader", "camera", "light"},
		},
	}
}

// Classify decides whether the file at path should be considered for query.
// Unknown paths are included by default to avoid false negatives.
func (r Ruleset) Classify(path, query string) Verdict {
	pathLower := strings.ToLower(path)
	queryLower := strings.ToLower(query)

	isPriority := containsAny(pathLower, r.PriorityPaths)
	isLowPriority := containsAny(pathLower, r.LowPriorityPaths)

	switch {
	case isPriority && !isLowPriority:
		return Verdict{Included: true, Reason: ReasonCoreAPI}
	case isLowPriority && r.queryHasVocab(queryLower):
		return Verdict{Included: true, Reason: ReasonUsagePatterns}
	case isLowPriority:
		return Verdict{Included: false, Reason: ReasonLowPriority}
	default:
		return Verdict{Included: true, Reason: ReasonDefault}
	}
}

func (r Ruleset) queryHasVocab(queryLower string) bool {
	for _, group := range r.VocabGroups {
		if containsAny(queryLower, group) {
			return true
		}
	}
	return false
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
