// Package content defines learning-content snapshots and the adapter that
// derives them from persisted class materials.
package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidContent is returned for content items or materials with an invalid shape.
var ErrInvalidContent = errors.New("invalid content")

// MetadataMaterialType is the metadata key carrying the original material-type tag.
const MetadataMaterialType = "materialType"

// Canonical material types.
const (
	MaterialTypeAudio = "audio"
	MaterialTypeVideo = "video"
	MaterialTypeBook  = "book"
	MaterialTypePDF   = "pdf"
	MaterialTypeOther = "other"
)

// LearningSkill is a named competency attached to content.
type LearningSkill struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Category string  `json:"category" yaml:"category"`
	Level    int     `json:"level" yaml:"level"`
	Weight   float64 `json:"weight" yaml:"weight"`
}

// LearningContent is one unit of teachable material, the atomic unit of comparison.
type LearningContent struct {
	ID                 string          `json:"id"`
	CourseID           string          `json:"courseId"`
	CourseType         string          `json:"courseType"`
	UnitNumber         int             `json:"unitNumber"`
	LessonNumber       int             `json:"lessonNumber"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	EstimatedDuration  int             `json:"estimatedDuration"` // minutes
	Prerequisites      []string        `json:"prerequisites"`
	LearningObjectives []string        `json:"learningObjectives"`
	DifficultyLevel    int             `json:"difficultyLevel"`
	Skills             []LearningSkill `json:"skills"`
	Metadata           map[string]any  `json:"metadata,omitempty"`
}

// MaterialType returns the content-type tag stored in metadata, or "" if absent.
func (c LearningContent) MaterialType() string {
	v, _ := c.Metadata[MetadataMaterialType].(string)
	return strings.TrimSpace(v)
}

// Material is the persisted record a LearningContent snapshot is derived from.
type Material struct {
	ID              string   `json:"id" yaml:"id"`
	ClassID         string   `json:"classId" yaml:"class_id"`
	CourseID        string   `json:"courseId" yaml:"course_id"`
	CourseType      string   `json:"courseType" yaml:"course_type"`
	UnitNumber      int      `json:"unitNumber" yaml:"unit_number"`
	LessonNumber    int      `json:"lessonNumber" yaml:"lesson_number"`
	Title           string   `json:"title" yaml:"title"`
	Description     string   `json:"description" yaml:"description"`
	MaterialType    string   `json:"materialType" yaml:"material_type"`
	PrerequisiteIDs []string `json:"prerequisiteIds" yaml:"prerequisites"`
}

// Validate checks that every item has an ID.
func Validate(items []LearningContent) error {
	for i, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("%w: item %d (%q) has no id", ErrInvalidContent, i, item.Title)
		}
	}
	return nil
}

// SortByCurriculum orders items by (unit, lesson) ascending, keeping input order for ties.
func SortByCurriculum(items []LearningContent) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].UnitNumber != items[j].UnitNumber {
			return items[i].UnitNumber < items[j].UnitNumber
		}
		return items[i].LessonNumber < items[j].LessonNumber
	})
}
