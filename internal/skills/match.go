package skills

import (
	"context"
	"math"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"go.uber.org/zap"

	"github.com/empmatch/empmatch/internal/embedding"
)

// Match scores a candidate skill list against a job skill list. Empty input
// on either side, or an embedding failure, yields the defined zero-score
// result instead of an error. Reruns on identical input produce identical
// results: argmax takes the first maximum and the fuzzy fallback scans job
// skills in list order.
func Match(ctx context.Context, candidate, job []string, embedder embedding.Embedder, th Thresholds, logger *zap.Logger) *MatchResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(candidate) == 0 || len(job) == 0 {
		logger.Warn("empty skill list provided",
			zap.Int("candidate_skills", len(candidate)),
			zap.Int("job_skills", len(job)),
		)
		return zeroResult(candidate, job)
	}

	candidateVecs, err := embedder.EmbedBatch(ctx, candidate)
	if err != nil || len(candidateVecs) != len(candidate) {
		logger.Warn("embedding candidate skills failed", zap.Error(err))
		return zeroResult(candidate, job)
	}

	jobVecs, err := embedder.EmbedBatch(ctx, job)
	if err != nil || len(jobVecs) != len(job) {
		logger.Warn("embedding job skills failed", zap.Error(err))
		return zeroResult(candidate, job)
	}

	jobMatrix, ok := embedding.Matrix(jobVecs)
	if !ok {
		logger.Warn("building job embedding matrix failed")
		return zeroResult(candidate, job)
	}

	matched := make([]MatchRecord, 0, len(candidate))
	missing := append([]string(nil), job...)
	extra := append([]string(nil), candidate...)

	for i, candidateSkill := range candidate {
		sims := embedding.CosineAgainstRows(candidateVecs[i], jobMatrix)
		best, score := argmax(sims)
		jobSkill := job[best]

		logger.Debug("comparing skills",
			zap.String("candidate_skill", candidateSkill),
			zap.String("job_skill", jobSkill),
			zap.Float64("similarity", score),
		)

		if score >= th.Similarity {
			// A job skill satisfies at most one candidate skill. A repeat hit
			// on an already-claimed job skill adds no record and no score.
			if !contains(missing, jobSkill) {
				continue
			}

			similarity := score
			matched = append(matched, MatchRecord{
				CandidateSkill: candidateSkill,
				JobSkill:       jobSkill,
				Similarity:     &similarity,
			})
			missing = removeOnce(missing, jobSkill)
			extra = removeOnce(extra, candidateSkill)
			continue
		}

		// Fuzzy fallback scans job skills in list order and records the
		// first hit clearing the threshold, not the best one. The original
		// behaves this way; kept for parity even though the standardizer
		// takes the best fuzzy hit.
		for _, jobSkill := range job {
			if !contains(missing, jobSkill) {
				continue
			}

			score := fuzzy.Ratio(strings.ToLower(candidateSkill), strings.ToLower(jobSkill))
			if score < th.Fuzzy {
				continue
			}

			logger.Debug("fuzzy skill match",
				zap.String("candidate_skill", candidateSkill),
				zap.String("job_skill", jobSkill),
				zap.Int("fuzzy_score", score),
			)

			fuzzyScore := float64(score)
			matched = append(matched, MatchRecord{
				CandidateSkill: candidateSkill,
				JobSkill:       jobSkill,
				FuzzyScore:     &fuzzyScore,
			})
			missing = removeOnce(missing, jobSkill)
			extra = removeOnce(extra, candidateSkill)
			break
		}
	}

	score := round2(float64(len(matched)) / float64(len(job)) * 100)

	logger.Info("match computed",
		zap.Float64("match_score", score),
		zap.Int("matched", len(matched)),
		zap.Int("missing", len(missing)),
		zap.Int("extra", len(extra)),
	)

	return &MatchResult{
		MatchScore:    score,
		MatchedSkills: matched,
		MissingSkills: missing,
		ExtraSkills:   extra,
	}
}

// zeroResult is the defined shape for empty or unencodable input: nothing
// matched, every job skill missing, every candidate skill extra.
func zeroResult(candidate, job []string) *MatchResult {
	return &MatchResult{
		MatchScore:    0.0,
		MatchedSkills: []MatchRecord{},
		MissingSkills: append([]string{}, job...),
		ExtraSkills:   append([]string{}, candidate...),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
