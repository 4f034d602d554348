package materials

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-classmatch/internal/content"
)

const dbTimeout = 5 * time.Second

// PostgresRepository reads class materials from PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	mapper content.Mapper
}

// NewPostgresRepository creates a PostgreSQL-backed repository. A nil mapper
// defaults to the heuristic mapper.
func NewPostgresRepository(pool *pgxpool.Pool, mapper content.Mapper) (*PostgresRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if mapper == nil {
		mapper = content.NewHeuristicMapper()
	}
	return &PostgresRepository{pool: pool, mapper: mapper}, nil
}

func (r *PostgresRepository) ContentForClass(ctx context.Context, classID string) ([]content.LearningContent, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM classes WHERE id = $1)`,
		classID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup class: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, classID)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.class_id, m.course_id, COALESCE(c.course_type, ''),
		        m.unit_number, m.lesson_number, m.title, COALESCE(m.description, ''),
		        m.material_type, m.prerequisite_ids
		 FROM class_materials m
		 LEFT JOIN courses c ON c.id = m.course_id
		 WHERE m.class_id = $1
		 ORDER BY m.unit_number ASC, m.lesson_number ASC, m.id ASC`,
		classID,
	)
	if err != nil {
		return nil, fmt.Errorf("query class materials: %w", err)
	}
	defer rows.Close()

	var materials []content.Material
	for rows.Next() {
		var m content.Material
		if err := rows.Scan(
			&m.ID,
			&m.ClassID,
			&m.CourseID,
			&m.CourseType,
			&m.UnitNumber,
			&m.LessonNumber,
			&m.Title,
			&m.Description,
			&m.MaterialType,
			&m.PrerequisiteIDs,
		); err != nil {
			return nil, fmt.Errorf("scan class material: %w", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class materials: %w", err)
	}

	return content.MapAll(r.mapper, materials)
}
