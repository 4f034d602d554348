package content

import (
	"fmt"
	"math"
	"strings"
)

const (
	maxObjectives       = 3
	minObjectiveLen     = 10 // segments must be strictly longer
	maxDifficulty       = 10
	minDifficulty       = 1
	defaultSkillWeight  = 1.0
	defaultDurationMins = 45
)

// Mapper turns a persisted material into a content snapshot.
type Mapper interface {
	Map(m Material) (LearningContent, error)
}

// durationByType holds estimated minutes per material type.
var durationByType = map[string]int{
	MaterialTypeAudio: 60,
	MaterialTypeVideo: 60,
	MaterialTypeBook:  90,
	MaterialTypePDF:   45,
	MaterialTypeOther: 45,
}

// skillByType holds the skill inferred for each material type.
var skillByType = map[string]LearningSkill{
	MaterialTypeAudio: {ID: "listening-comprehension", Name: "Listening Comprehension", Category: "listening"},
	MaterialTypeVideo: {ID: "listening-comprehension", Name: "Listening Comprehension", Category: "listening"},
	MaterialTypeBook:  {ID: "reading-comprehension", Name: "Reading Comprehension", Category: "reading"},
	MaterialTypePDF:   {ID: "reading-comprehension", Name: "Reading Comprehension", Category: "reading"},
}

// HeuristicMapper derives durations, objectives, difficulty and skills from
// material type and free-text description.
type HeuristicMapper struct{}

// NewHeuristicMapper returns the default mapper.
func NewHeuristicMapper() HeuristicMapper {
	return HeuristicMapper{}
}

func (HeuristicMapper) Map(m Material) (LearningContent, error) {
	if strings.TrimSpace(m.ID) == "" {
		return LearningContent{}, fmt.Errorf("%w: material %q has no id", ErrInvalidContent, m.Title)
	}
	if m.UnitNumber < 1 || m.LessonNumber < 1 {
		return LearningContent{}, fmt.Errorf("%w: material %s has unit %d lesson %d, both must be positive",
			ErrInvalidContent, m.ID, m.UnitNumber, m.LessonNumber)
	}

	materialType := NormalizeMaterialType(m.MaterialType)
	difficulty := DifficultyLevel(m.UnitNumber, m.LessonNumber)

	var skills []LearningSkill
	if skill, ok := skillByType[materialType]; ok {
		skill.Level = difficulty
		skill.Weight = defaultSkillWeight
		skills = append(skills, skill)
	}

	prereqs := make([]string, 0, len(m.PrerequisiteIDs))
	for _, id := range m.PrerequisiteIDs {
		if id = strings.TrimSpace(id); id != "" {
			prereqs = append(prereqs, id)
		}
	}

	return LearningContent{
		ID:                 m.ID,
		CourseID:           m.CourseID,
		CourseType:         m.CourseType,
		UnitNumber:         m.UnitNumber,
		LessonNumber:       m.LessonNumber,
		Title:              m.Title,
		Description:        m.Description,
		EstimatedDuration:  EstimatedDuration(materialType),
		Prerequisites:      prereqs,
		LearningObjectives: ObjectivesFromDescription(m.Description),
		DifficultyLevel:    difficulty,
		Skills:             skills,
		Metadata: map[string]any{
			MetadataMaterialType: materialType,
		},
	}, nil
}

// MapAll maps every material and returns the result in curriculum order.
func MapAll(mapper Mapper, materials []Material) ([]LearningContent, error) {
	out := make([]LearningContent, 0, len(materials))
	for _, m := range materials {
		c, err := mapper.Map(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	SortByCurriculum(out)
	return out, nil
}

// NormalizeMaterialType lowercases a material-type tag. Empty input becomes "other".
func NormalizeMaterialType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return MaterialTypeOther
	}
	return t
}

// EstimatedDuration returns the estimated minutes for a material type.
func EstimatedDuration(materialType string) int {
	if d, ok := durationByType[NormalizeMaterialType(materialType)]; ok {
		return d
	}
	return defaultDurationMins
}

// DifficultyLevel computes the 1–10 difficulty from curriculum position.
func DifficultyLevel(unit, lesson int) int {
	d := int(math.Floor(float64(unit)*1.5 + float64(lesson)*0.3))
	return min(maxDifficulty, max(minDifficulty, d))
}

// ObjectivesFromDescription splits a description on periods and keeps up to
// three segments longer than ten characters.
func ObjectivesFromDescription(description string) []string {
	objectives := []string{}
	for _, seg := range strings.Split(description, ".") {
		seg = strings.TrimSpace(seg)
		if len(seg) <= minObjectiveLen {
			continue
		}
		objectives = append(objectives, seg)
		if len(objectives) == maxObjectives {
			break
		}
	}
	return objectives
}
