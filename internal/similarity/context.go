package similarity

// StudentProgress is a per-course completion record.
type StudentProgress struct {
	CourseID         string   `json:"courseId"`
	CompletedContent []string `json:"completedContent"`
}

// RecommendationContext bundles the student data used to judge prerequisite satisfaction.
type RecommendationContext struct {
	StudentID       string            `json:"studentId,omitempty"`
	StudentProgress []StudentProgress `json:"studentProgress"`
}

// MasteredContent returns the set of content IDs the student has completed across all courses.
func (rc RecommendationContext) MasteredContent() map[string]struct{} {
	mastered := make(map[string]struct{})
	for _, p := range rc.StudentProgress {
		for _, id := range p.CompletedContent {
			mastered[id] = struct{}{}
		}
	}
	return mastered
}
