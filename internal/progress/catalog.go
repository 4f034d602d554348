package progress

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// studentFile is a student progress document stored alongside class catalogs.
type studentFile struct {
	StudentID string `yaml:"student_id"`
	Progress  []struct {
		CourseID         string   `yaml:"course_id"`
		CompletedContent []string `yaml:"completed_content"`
	} `yaml:"progress"`
}

// LoadDir builds a MemoryStore from every YAML file under rootDir that has a
// top-level student_id. Other YAML files are ignored.
func LoadDir(rootDir string) (*MemoryStore, error) {
	store := NewMemoryStore()
	students := 0

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		var doc studentFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			// Class catalogs and malformed files are not progress documents.
			return nil
		}
		if doc.StudentID == "" {
			return nil
		}

		for _, p := range doc.Progress {
			if p.CourseID == "" {
				slog.Warn("skipping progress entry without course_id", "path", path, "student_id", doc.StudentID)
				continue
			}
			store.Record(doc.StudentID, p.CourseID, p.CompletedContent...)
		}
		students++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading progress: %w", err)
	}

	slog.Info("student progress loaded", "students", students)
	return store, nil
}
