// Package skills implements the skill standardization and matching engine:
// free-text skill phrases are resolved against the ESCO taxonomy with a
// two-stage pipeline (embedding similarity, then fuzzy string fallback), and
// candidate skill sets are scored against job skill sets with the same
// pipeline.
package skills

// Thresholds control both resolver stages. Similarity is the inclusive cosine
// bar on the embedding stage (0..1); Fuzzy is the inclusive bar on the fuzzy
// string stage (0..100). Thresholds are always passed explicitly: there is no
// shared mutable default state.
type Thresholds struct {
	Similarity float64
	Fuzzy      int
}

// Per-context defaults. Job descriptions use formal phrasing and get the
// strictest similarity bar; CV phrasing is noisier; cross-document matching
// diverges the most and gets the most permissive bar.
var (
	JobExtraction = Thresholds{Similarity: 0.6, Fuzzy: 90}
	CVExtraction  = Thresholds{Similarity: 0.4, Fuzzy: 90}
	Matching      = Thresholds{Similarity: 0.3, Fuzzy: 80}
)

// Result is the outcome of standardizing a batch of raw phrases. Both slices
// are deduplicated; Standardized holds canonical taxonomy labels, Raw holds
// the trimmed input phrases including those that resolved to nothing.
type Result struct {
	Standardized []string `json:"standardized"`
	Raw          []string `json:"raw"`
}

// MatchRecord links one candidate skill to the job skill it matched. Exactly
// one of Similarity (cosine, 0..1) and FuzzyScore (0..100) is set, indicating
// which stage produced the match.
type MatchRecord struct {
	CandidateSkill string   `json:"cv_skill"`
	JobSkill       string   `json:"job_skill"`
	Similarity     *float64 `json:"similarity,omitempty"`
	FuzzyScore     *float64 `json:"fuzzy_score,omitempty"`
}

// MatchResult partitions a candidate/job skill comparison. MatchScore is the
// share of job skills covered, 0..100 with two decimals.
type MatchResult struct {
	MatchScore    float64       `json:"match_score"`
	MatchedSkills []MatchRecord `json:"matched_skills"`
	MissingSkills []string      `json:"missing_skills"`
	ExtraSkills   []string      `json:"extra_skills"`
}

// dedupe removes exact duplicates preserving first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// removeOnce deletes the first occurrence of value. Matched entries are
// removed once: a job skill counts as covered regardless of how many
// candidate skills map onto it.
func removeOnce(values []string, value string) []string {
	for i, v := range values {
		if v == value {
			return append(values[:i], values[i+1:]...)
		}
	}
	return values
}
