package materials

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-classmatch/internal/content"
)

// ClassCatalog is one class definition loaded from YAML.
type ClassCatalog struct {
	ClassID    string             `yaml:"class_id"`
	Name       string             `yaml:"name"`
	CourseID   string             `yaml:"course_id"`
	CourseType string             `yaml:"course_type"`
	Materials  []content.Material `yaml:"materials"`
}

// catalogSchema validates class catalog documents before decoding.
const catalogSchema = `{
  "type": "object",
  "required": ["class_id", "materials"],
  "properties": {
    "class_id": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "course_id": {"type": "string"},
    "course_type": {"type": "string"},
    "materials": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "unit_number", "lesson_number"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "course_id": {"type": "string"},
          "course_type": {"type": "string"},
          "unit_number": {"type": "integer", "minimum": 1},
          "lesson_number": {"type": "integer", "minimum": 1},
          "title": {"type": "string"},
          "description": {"type": "string"},
          "material_type": {"type": "string"},
          "prerequisites": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

// Catalog loads class content from a directory tree of YAML files.
type Catalog struct {
	rootDir string
	mapper  content.Mapper
	schema  *gojsonschema.Schema
	classes map[string]ClassCatalog
	sources map[string]string // class ID -> file it was loaded from
	mu      sync.RWMutex
}

// NewCatalog loads every class catalog under rootDir. A nil mapper defaults
// to the heuristic mapper. Files that fail validation are skipped.
func NewCatalog(rootDir string, mapper content.Mapper) (*Catalog, error) {
	if mapper == nil {
		mapper = content.NewHeuristicMapper()
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(catalogSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling catalog schema: %w", err)
	}

	c := &Catalog{
		rootDir: rootDir,
		mapper:  mapper,
		schema:  schema,
		classes: make(map[string]ClassCatalog),
		sources: make(map[string]string),
	}
	if err := c.loadAll(); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	slog.Info("class catalog loaded", "classes", len(c.classes))
	return c, nil
}

func (c *Catalog) ContentForClass(_ context.Context, classID string) ([]content.LearningContent, error) {
	c.mu.RLock()
	class, ok := c.classes[classID]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, classID)
	}
	return content.MapAll(c.mapper, class.Materials)
}

// Class returns a loaded class by ID.
func (c *Catalog) Class(classID string) (ClassCatalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	class, ok := c.classes[classID]
	return class, ok
}

// ClassIDs returns the IDs of all loaded classes in lexical order.
func (c *Catalog) ClassIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.classes))
	for id := range c.classes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Catalog) loadAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			return c.loadClass(path)
		}
		return nil
	})
}

func (c *Catalog) loadClass(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		slog.Warn("skipping invalid catalog YAML", "path", path, "error", err)
		return nil
	}
	if _, ok := doc["class_id"]; !ok {
		return nil // Not a class catalog
	}

	result, err := c.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		slog.Warn("skipping unvalidatable catalog", "path", path, "error", err)
		return nil
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		slog.Warn("skipping catalog that fails schema", "path", path, "errors", problems)
		return nil
	}

	var class ClassCatalog
	if err := yaml.Unmarshal(data, &class); err != nil {
		slog.Warn("skipping invalid catalog YAML", "path", path, "error", err)
		return nil
	}
	for i := range class.Materials {
		m := &class.Materials[i]
		m.ClassID = class.ClassID
		if m.CourseID == "" {
			m.CourseID = class.CourseID
		}
		if m.CourseType == "" {
			m.CourseType = class.CourseType
		}
	}

	c.mu.Lock()
	if prev, dup := c.sources[class.ClassID]; dup {
		slog.Warn("duplicate class_id in catalog, later file replaces earlier",
			"class_id", class.ClassID, "replaced", prev, "path", path)
	}
	c.classes[class.ClassID] = class
	c.sources[class.ClassID] = path
	c.mu.Unlock()

	return nil
}
