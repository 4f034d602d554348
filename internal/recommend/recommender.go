// Package recommend ranks alternative classes by how closely their content
// matches a preferred class.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/p-n-ai/pai-classmatch/internal/content"
	"github.com/p-n-ai/pai-classmatch/internal/similarity"
)

const (
	// DefaultMinThreshold is the overall similarity a candidate must exceed to be kept.
	DefaultMinThreshold = 0.3
	defaultConcurrency  = 4

	EventAlternativesRanked = "alternatives_ranked"
)

// ContentRepository fetches the learning content of a class.
type ContentRepository interface {
	ContentForClass(ctx context.Context, classID string) ([]content.LearningContent, error)
}

// Comparer scores a candidate content set against a preferred one.
type Comparer interface {
	Compare(a, b []content.LearningContent, rc similarity.RecommendationContext) (similarity.Result, error)
}

var _ Comparer = (*similarity.Scorer)(nil)

// ClassMatch is one ranked candidate.
type ClassMatch struct {
	ClassID string            `json:"classId"`
	Result  similarity.Result `json:"result"`
}

// SkippedCandidate is a candidate that could not be scored.
type SkippedCandidate struct {
	ClassID string `json:"classId"`
	Reason  string `json:"reason"`
}

// Ranking is the outcome of one alternatives search.
type Ranking struct {
	RunID        string             `json:"runId"`
	TargetSize   int                `json:"targetSize"`
	MinThreshold float64            `json:"minThreshold"`
	Matches      []ClassMatch       `json:"matches"`
	Skipped      []SkippedCandidate `json:"skipped"`
}

// Recommender ranks candidate classes against target content.
type Recommender struct {
	repo        ContentRepository
	comparer    Comparer
	events      EventLogger
	concurrency int
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithConcurrency bounds how many candidate classes are fetched at once.
func WithConcurrency(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithEvents sets the analytics event logger.
func WithEvents(events EventLogger) Option {
	return func(r *Recommender) {
		if events != nil {
			r.events = events
		}
	}
}

// WithComparer replaces the default similarity scorer.
func WithComparer(c Comparer) Option {
	return func(r *Recommender) {
		if c != nil {
			r.comparer = c
		}
	}
}

// NewRecommender creates a Recommender reading candidate content from repo.
func NewRecommender(repo ContentRepository, opts ...Option) *Recommender {
	r := &Recommender{
		repo:        repo,
		comparer:    similarity.NewScorer(),
		events:      NopEventLogger{},
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type findOptions struct {
	minThreshold float64
}

// FindOption configures a single FindSimilarContentClasses call.
type FindOption func(*findOptions)

// WithMinThreshold overrides DefaultMinThreshold.
func WithMinThreshold(t float64) FindOption {
	return func(o *findOptions) {
		o.minThreshold = t
	}
}

// CompareClasses fetches two classes and scores classB against classA.
func (r *Recommender) CompareClasses(ctx context.Context, classA, classB string, rc similarity.RecommendationContext) (similarity.Result, error) {
	a, err := r.repo.ContentForClass(ctx, classA)
	if err != nil {
		return similarity.Result{}, fmt.Errorf("fetching class %s: %w", classA, err)
	}
	b, err := r.repo.ContentForClass(ctx, classB)
	if err != nil {
		return similarity.Result{}, fmt.Errorf("fetching class %s: %w", classB, err)
	}
	return r.comparer.Compare(a, b, rc)
}

// FindSimilarContentClasses scores every candidate class against target and
// returns those whose overall similarity exceeds the threshold, best first.
// Ties keep candidate order. Candidates whose content cannot be fetched or
// scored are listed in Ranking.Skipped. Only context cancellation fails the call.
func (r *Recommender) FindSimilarContentClasses(
	ctx context.Context,
	target []content.LearningContent,
	candidateClassIDs []string,
	rc similarity.RecommendationContext,
	opts ...FindOption,
) (Ranking, error) {
	o := findOptions{minThreshold: DefaultMinThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	candidates := dedupe(candidateClassIDs)
	type outcome struct {
		result  similarity.Result
		skipped string
		scored  bool
	}
	outcomes := make([]outcome, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, classID := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items, err := r.repo.ContentForClass(gctx, classID)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				slog.Warn("skipping candidate class", "class_id", classID, "error", err)
				outcomes[i] = outcome{skipped: err.Error()}
				return nil
			}
			res, err := r.comparer.Compare(target, items, rc)
			if err != nil {
				slog.Warn("skipping unscorable candidate class", "class_id", classID, "error", err)
				outcomes[i] = outcome{skipped: err.Error()}
				return nil
			}
			outcomes[i] = outcome{result: res, scored: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Ranking{}, fmt.Errorf("ranking alternatives: %w", err)
	}

	ranking := Ranking{
		RunID:        uuid.NewString(),
		TargetSize:   len(target),
		MinThreshold: o.minThreshold,
		Matches:      []ClassMatch{},
		Skipped:      []SkippedCandidate{},
	}
	for i, out := range outcomes {
		switch {
		case !out.scored:
			ranking.Skipped = append(ranking.Skipped, SkippedCandidate{ClassID: candidates[i], Reason: out.skipped})
		case out.result.OverallSimilarity > o.minThreshold:
			ranking.Matches = append(ranking.Matches, ClassMatch{ClassID: candidates[i], Result: out.result})
		}
	}
	sort.SliceStable(ranking.Matches, func(i, j int) bool {
		return ranking.Matches[i].Result.OverallSimilarity > ranking.Matches[j].Result.OverallSimilarity
	})

	r.logRanking(ctx, rc.StudentID, len(candidates), ranking)
	return ranking, nil
}

func (r *Recommender) logRanking(ctx context.Context, studentID string, candidates int, ranking Ranking) {
	data := map[string]any{
		"run_id":        ranking.RunID,
		"candidates":    candidates,
		"matches":       len(ranking.Matches),
		"skipped":       len(ranking.Skipped),
		"min_threshold": ranking.MinThreshold,
	}
	if len(ranking.Matches) > 0 {
		data["top_class_id"] = ranking.Matches[0].ClassID
		data["top_score"] = ranking.Matches[0].Result.OverallSimilarity
	}

	err := r.events.LogEvent(ctx, Event{
		StudentID: studentID,
		EventType: EventAlternativesRanked,
		Data:      data,
	})
	if err != nil {
		slog.Warn("failed to log ranking event", "run_id", ranking.RunID, "error", err)
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
