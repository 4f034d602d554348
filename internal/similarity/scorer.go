// Package similarity scores how closely two sets of learning content overlap.
//
// The score is a weighted composite of five components, each in [0,1]:
// skill overlap, objective alignment, prerequisite compatibility, difficulty
// match and content-type match. Scoring is a pure function of its inputs and
// is safe for concurrent use.
package similarity

import (
	"math"

	"github.com/p-n-ai/pai-classmatch/internal/content"
)

// Component weights in percentage points. They sum to 100.
const (
	skillOverlapWeight       = 30
	objectiveAlignmentWeight = 25
	prerequisiteWeight       = 20
	difficultyWeight         = 15
	contentTypeWeight        = 10
	totalWeight              = skillOverlapWeight + objectiveAlignmentWeight + prerequisiteWeight + difficultyWeight + contentTypeWeight
)

const (
	// CommonObjectiveThreshold is the text similarity an objective must exceed to count as shared.
	CommonObjectiveThreshold = 0.7

	neutralContentTypeMatch = 0.5
	noPrerequisiteBarrier   = 1.0
	defaultMeanDifficulty   = 1.0
	difficultyScaleWidth    = 10.0
)

// Result is the outcome of comparing two content sets.
type Result struct {
	SkillOverlap              float64   `json:"skillOverlap"`
	ObjectiveAlignment        float64   `json:"objectiveAlignment"`
	PrerequisiteCompatibility float64   `json:"prerequisiteCompatibility"`
	DifficultyMatch           float64   `json:"difficultyMatch"`
	ContentTypeMatch          float64   `json:"contentTypeMatch"`
	OverallSimilarity         float64   `json:"overallSimilarity"`
	Breakdown                 Breakdown `json:"breakdown"`
}

// Scorer compares content sets. The zero value is ready to use.
type Scorer struct{}

// NewScorer returns a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Compare scores content set b against content set a. The comparison is not
// symmetric: prerequisite compatibility only inspects b, the candidate side.
//
// If either side is empty the canonical empty result is returned. Items
// without an ID are rejected with content.ErrInvalidContent.
func (s *Scorer) Compare(a, b []content.LearningContent, rc RecommendationContext) (Result, error) {
	if err := content.Validate(a); err != nil {
		return Result{}, err
	}
	if err := content.Validate(b); err != nil {
		return Result{}, err
	}
	if len(a) == 0 || len(b) == 0 {
		return EmptyResult(), nil
	}

	skillsA, skillsB := flattenSkills(a), flattenSkills(b)
	objectivesA, objectivesB := flattenObjectives(a), flattenObjectives(b)
	prereqsB := flattenPrerequisites(b)
	mastered := rc.MasteredContent()

	r := Result{
		SkillOverlap:              skillOverlap(skillsA, skillsB),
		ObjectiveAlignment:        objectiveAlignment(objectivesA, objectivesB),
		PrerequisiteCompatibility: prerequisiteCompatibility(prereqsB, mastered),
		DifficultyMatch:           difficultyMatch(a, b),
		ContentTypeMatch:          contentTypeMatch(a, b),
	}
	r.OverallSimilarity = Composite(
		r.SkillOverlap,
		r.ObjectiveAlignment,
		r.PrerequisiteCompatibility,
		r.DifficultyMatch,
		r.ContentTypeMatch,
	)
	r.Breakdown = buildBreakdown(skillsA, skillsB, objectivesA, objectivesB, flattenPrerequisites(a), prereqsB, mastered)
	return r, nil
}

// EmptyResult is the result for comparisons where either side has no content.
func EmptyResult() Result {
	return Result{Breakdown: emptyBreakdown()}
}

// Composite combines the five component scores with weights
// 0.30, 0.25, 0.20, 0.15 and 0.10. The weighted deviations are taken from
// the skill score, so equal components k yield exactly k.
func Composite(skill, objective, prerequisite, difficulty, contentType float64) float64 {
	base := skill
	dev := objectiveAlignmentWeight*(objective-base) +
		prerequisiteWeight*(prerequisite-base) +
		difficultyWeight*(difficulty-base) +
		contentTypeWeight*(contentType-base)
	return clamp01(base + dev/totalWeight)
}

func skillOverlap(a, b []content.LearningSkill) float64 {
	return jaccard(skillKeySet(a), skillKeySet(b))
}

// objectiveAlignment averages text similarity over the full cross-product of
// objectives, not a best-match alignment.
func objectiveAlignment(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	total := 0.0
	for _, oa := range a {
		for _, ob := range b {
			total += TextSimilarity(oa, ob)
		}
	}
	return total / float64(len(a)*len(b))
}

func prerequisiteCompatibility(prereqs []string, mastered map[string]struct{}) float64 {
	if len(prereqs) == 0 {
		return noPrerequisiteBarrier
	}
	satisfied := 0
	for _, id := range prereqs {
		if _, ok := mastered[id]; ok {
			satisfied++
		}
	}
	return float64(satisfied) / float64(len(prereqs))
}

func difficultyMatch(a, b []content.LearningContent) float64 {
	diff := math.Abs(meanDifficulty(a) - meanDifficulty(b))
	return math.Max(0, 1-diff/difficultyScaleWidth)
}

func contentTypeMatch(a, b []content.LearningContent) float64 {
	typesA, typesB := contentTypes(a), contentTypes(b)
	if len(typesA) == 0 || len(typesB) == 0 {
		return neutralContentTypeMatch
	}
	return jaccard(typesA, typesB)
}

func meanDifficulty(items []content.LearningContent) float64 {
	if len(items) == 0 {
		return defaultMeanDifficulty
	}
	total := 0
	for _, c := range items {
		total += c.DifficultyLevel
	}
	return float64(total) / float64(len(items))
}

func contentTypes(items []content.LearningContent) map[string]struct{} {
	types := make(map[string]struct{})
	for _, c := range items {
		if t := c.MaterialType(); t != "" {
			types[content.NormalizeMaterialType(t)] = struct{}{}
		}
	}
	return types
}

// flattenSkills collects skills across items, collapsing duplicates by key
// and keeping first-seen order.
func flattenSkills(items []content.LearningContent) []content.LearningSkill {
	seen := make(map[string]struct{})
	var out []content.LearningSkill
	for _, c := range items {
		for _, sk := range c.Skills {
			key := skillKey(sk)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, sk)
		}
	}
	return out
}

// skillKey identifies a skill by ID, falling back to its name.
func skillKey(sk content.LearningSkill) string {
	if sk.ID != "" {
		return sk.ID
	}
	return sk.Name
}

func skillKeySet(skills []content.LearningSkill) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, sk := range skills {
		set[skillKey(sk)] = struct{}{}
	}
	return set
}

func flattenObjectives(items []content.LearningContent) []string {
	var out []string
	for _, c := range items {
		out = append(out, c.LearningObjectives...)
	}
	return out
}

func flattenPrerequisites(items []content.LearningContent) []string {
	var out []string
	for _, c := range items {
		out = append(out, c.Prerequisites...)
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
