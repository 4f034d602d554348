package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-classmatch/internal/similarity"
)

const dbTimeout = 5 * time.Second

// PostgresStore reads student progress from the student_progress table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed progress provider.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// ContextForStudent returns the student's completion records. A student with
// no recorded progress gets an empty context.
func (s *PostgresStore) ContextForStudent(ctx context.Context, studentID string) (similarity.RecommendationContext, error) {
	rc := similarity.RecommendationContext{
		StudentID:       studentID,
		StudentProgress: []similarity.StudentProgress{},
	}
	if studentID == "" {
		return rc, nil
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT course_id, completed_content
		 FROM student_progress
		 WHERE student_id = $1
		 ORDER BY course_id ASC`,
		studentID,
	)
	if err != nil {
		return rc, fmt.Errorf("query student progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p similarity.StudentProgress
		if err := rows.Scan(&p.CourseID, &p.CompletedContent); err != nil {
			return rc, fmt.Errorf("scan student progress: %w", err)
		}
		rc.StudentProgress = append(rc.StudentProgress, p)
	}
	if err := rows.Err(); err != nil {
		return rc, fmt.Errorf("iterate student progress: %w", err)
	}

	return rc, nil
}
