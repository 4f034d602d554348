// Package materials provides the content repositories that fetch a class's
// learning content from Postgres, YAML catalogs or memory.
package materials

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/p-n-ai/pai-classmatch/internal/content"
)

// ErrClassNotFound is returned when a class does not exist in the repository.
var ErrClassNotFound = errors.New("class not found")

// Repository fetches the learning content of a class, ordered by unit and lesson.
type Repository interface {
	ContentForClass(ctx context.Context, classID string) ([]content.LearningContent, error)
}

// MemoryRepository is an in-memory Repository.
type MemoryRepository struct {
	mapper  content.Mapper
	classes map[string][]content.Material
	mu      sync.RWMutex
}

// NewMemoryRepository creates an empty in-memory repository. A nil mapper
// defaults to the heuristic mapper.
func NewMemoryRepository(mapper content.Mapper) *MemoryRepository {
	if mapper == nil {
		mapper = content.NewHeuristicMapper()
	}
	return &MemoryRepository{
		mapper:  mapper,
		classes: make(map[string][]content.Material),
	}
}

// Put registers a class and appends materials to it.
func (r *MemoryRepository) Put(classID string, materials ...content.Material) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[classID]; !ok {
		r.classes[classID] = []content.Material{}
	}
	for _, m := range materials {
		m.ClassID = classID
		r.classes[classID] = append(r.classes[classID], m)
	}
}

func (r *MemoryRepository) ContentForClass(_ context.Context, classID string) ([]content.LearningContent, error) {
	r.mu.RLock()
	materials, ok := r.classes[classID]
	materials = append([]content.Material(nil), materials...)
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, classID)
	}
	return content.MapAll(r.mapper, materials)
}
