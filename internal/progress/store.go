// Package progress supplies the per-student completion data that makes up a
// recommendation context.
package progress

import (
	"context"
	"sort"
	"sync"

	"github.com/p-n-ai/pai-classmatch/internal/similarity"
)

// Provider builds a recommendation context for a student.
type Provider interface {
	ContextForStudent(ctx context.Context, studentID string) (similarity.RecommendationContext, error)
}

// MemoryStore is an in-memory Provider.
type MemoryStore struct {
	// studentID -> courseID -> completed content IDs
	progress map[string]map[string][]string
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		progress: make(map[string]map[string][]string),
	}
}

// Record marks content as completed by a student within a course.
func (s *MemoryStore) Record(studentID, courseID string, contentIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses, ok := s.progress[studentID]
	if !ok {
		courses = make(map[string][]string)
		s.progress[studentID] = courses
	}
	courses[courseID] = append(courses[courseID], contentIDs...)
}

func (s *MemoryStore) ContextForStudent(_ context.Context, studentID string) (similarity.RecommendationContext, error) {
	rc := similarity.RecommendationContext{
		StudentID:       studentID,
		StudentProgress: []similarity.StudentProgress{},
	}
	if studentID == "" {
		return rc, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := s.progress[studentID]
	courseIDs := make([]string, 0, len(courses))
	for id := range courses {
		courseIDs = append(courseIDs, id)
	}
	sort.Strings(courseIDs)

	for _, id := range courseIDs {
		rc.StudentProgress = append(rc.StudentProgress, similarity.StudentProgress{
			CourseID:         id,
			CompletedContent: append([]string(nil), courses[id]...),
		})
	}
	return rc, nil
}
