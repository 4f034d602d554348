package content_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/p-n-ai/pai-classmatch/internal/content"
)

func TestHeuristicMapper_Map(t *testing.T) {
	m := content.Material{
		ID:              "m-1",
		ClassID:         "class-a",
		CourseID:        "course-en",
		CourseType:      "english",
		UnitNumber:      2,
		LessonNumber:    3,
		Title:           "At the market",
		Description:     "Listen to a market dialogue. Short. Identify prices and quantities in speech.",
		MaterialType:    "Audio",
		PrerequisiteIDs: []string{"m-0", " "},
	}

	got, err := content.NewHeuristicMapper().Map(m)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	if got.EstimatedDuration != 60 {
		t.Errorf("EstimatedDuration = %d, want 60", got.EstimatedDuration)
	}
	// floor(2*1.5 + 3*0.3) = floor(3.9) = 3
	if got.DifficultyLevel != 3 {
		t.Errorf("DifficultyLevel = %d, want 3", got.DifficultyLevel)
	}
	wantObjectives := []string{"Listen to a market dialogue", "Identify prices and quantities in speech"}
	if !reflect.DeepEqual(got.LearningObjectives, wantObjectives) {
		t.Errorf("LearningObjectives = %q, want %q", got.LearningObjectives, wantObjectives)
	}
	if len(got.Skills) != 1 {
		t.Fatalf("len(Skills) = %d, want 1", len(got.Skills))
	}
	skill := got.Skills[0]
	if skill.Name != "Listening Comprehension" || skill.Level != 3 || skill.Weight != 1.0 {
		t.Errorf("Skill = %+v, want Listening Comprehension level 3 weight 1", skill)
	}
	if got.MaterialType() != "audio" {
		t.Errorf("MaterialType() = %q, want audio", got.MaterialType())
	}
	if !reflect.DeepEqual(got.Prerequisites, []string{"m-0"}) {
		t.Errorf("Prerequisites = %q, want [m-0]", got.Prerequisites)
	}
}

func TestHeuristicMapper_SkillsByType(t *testing.T) {
	tests := []struct {
		materialType string
		wantSkill    string
		wantDuration int
	}{
		{"audio", "Listening Comprehension", 60},
		{"video", "Listening Comprehension", 60},
		{"book", "Reading Comprehension", 90},
		{"PDF", "Reading Comprehension", 45},
		{"other", "", 45},
		{"worksheet", "", 45},
		{"", "", 45},
	}

	for _, tt := range tests {
		t.Run(tt.materialType, func(t *testing.T) {
			got, err := content.NewHeuristicMapper().Map(content.Material{
				ID: "m", UnitNumber: 1, LessonNumber: 1, MaterialType: tt.materialType,
			})
			if err != nil {
				t.Fatalf("Map() error = %v", err)
			}
			if got.EstimatedDuration != tt.wantDuration {
				t.Errorf("EstimatedDuration = %d, want %d", got.EstimatedDuration, tt.wantDuration)
			}
			if tt.wantSkill == "" {
				if len(got.Skills) != 0 {
					t.Errorf("Skills = %+v, want none", got.Skills)
				}
				return
			}
			if len(got.Skills) != 1 || got.Skills[0].Name != tt.wantSkill {
				t.Errorf("Skills = %+v, want %s", got.Skills, tt.wantSkill)
			}
		})
	}
}

func TestHeuristicMapper_InvalidMaterial(t *testing.T) {
	tests := []struct {
		name string
		m    content.Material
	}{
		{"missing id", content.Material{UnitNumber: 1, LessonNumber: 1}},
		{"zero unit", content.Material{ID: "m", UnitNumber: 0, LessonNumber: 1}},
		{"negative lesson", content.Material{ID: "m", UnitNumber: 1, LessonNumber: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := content.NewHeuristicMapper().Map(tt.m)
			if !errors.Is(err, content.ErrInvalidContent) {
				t.Errorf("Map() error = %v, want ErrInvalidContent", err)
			}
		})
	}
}

func TestDifficultyLevel(t *testing.T) {
	tests := []struct {
		unit, lesson int
		want         int
	}{
		{1, 1, 1},  // floor(1.8)
		{2, 1, 3},  // floor(3.3)
		{4, 5, 7},  // floor(7.5)
		{6, 4, 10}, // floor(10.2) capped
		{20, 20, 10},
	}

	for _, tt := range tests {
		if got := content.DifficultyLevel(tt.unit, tt.lesson); got != tt.want {
			t.Errorf("DifficultyLevel(%d, %d) = %d, want %d", tt.unit, tt.lesson, got, tt.want)
		}
	}
}

func TestObjectivesFromDescription(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want []string
	}{
		{"empty", "", []string{}},
		{"short segments dropped", "Hi. Too short. ", []string{}},
		{"exactly ten chars dropped", "abcdefghij. abcdefghijk", []string{"abcdefghijk"}},
		{
			"capped at three",
			"First objective here. Second objective here. Third objective here. Fourth objective here.",
			[]string{"First objective here", "Second objective here", "Third objective here"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := content.ObjectivesFromDescription(tt.desc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ObjectivesFromDescription() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapAll_CurriculumOrder(t *testing.T) {
	materials := []content.Material{
		{ID: "c", UnitNumber: 2, LessonNumber: 1},
		{ID: "b", UnitNumber: 1, LessonNumber: 2},
		{ID: "a", UnitNumber: 1, LessonNumber: 1},
	}

	got, err := content.MapAll(content.NewHeuristicMapper(), materials)
	if err != nil {
		t.Fatalf("MapAll() error = %v", err)
	}

	var ids []string
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b", "c"}) {
		t.Errorf("order = %v, want [a b c]", ids)
	}
}

func TestMapAll_PropagatesError(t *testing.T) {
	_, err := content.MapAll(content.NewHeuristicMapper(), []content.Material{{ID: "", UnitNumber: 1, LessonNumber: 1}})
	if !errors.Is(err, content.ErrInvalidContent) {
		t.Errorf("MapAll() error = %v, want ErrInvalidContent", err)
	}
}

func TestValidate(t *testing.T) {
	if err := content.Validate(nil); err != nil {
		t.Errorf("Validate(nil) error = %v", err)
	}
	if err := content.Validate([]content.LearningContent{{ID: "a"}, {ID: "b"}}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	err := content.Validate([]content.LearningContent{{ID: "a"}, {ID: "  ", Title: "Broken"}})
	if !errors.Is(err, content.ErrInvalidContent) {
		t.Fatalf("Validate() error = %v, want ErrInvalidContent", err)
	}
}
