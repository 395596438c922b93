package course

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const courseColumns = `id::text, key, title, description, price::text, instructor, duration_hours, difficulty, image_url, is_active, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Course, int, error) {
	const q = `
SELECT ` + courseColumns + `, count(*) OVER()
FROM courses
WHERE ($1 = false OR is_active)
  AND ($2 = '' OR title ILIKE $3 OR description ILIKE $3 OR instructor ILIKE $3)
  AND ($4 = '' OR difficulty = $4)
ORDER BY created_at DESC, id
LIMIT NULLIF($5, 0) OFFSET $6
`
	rows, err := r.pool.Query(ctx, q, f.ActiveOnly, f.Query, db.LikePattern(f.Query), string(f.Difficulty), f.Limit, f.Offset)
	if err != nil {
		r.logger.Error("course repo: list", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var (
		result []domain.Course
		total  int
	)
	for rows.Next() {
		c, err := scanCourse(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	r.logger.Debug("course repo: list", zap.Int("count", len(result)), zap.Int("total", total))
	return result, total, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	if !db.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	c, err := scanCourse(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("course repo: get", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *postgresRepo) ListLessons(ctx context.Context, courseID string) ([]domain.Lesson, error) {
	if !db.ValidID(courseID) {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT id::text, course_id::text, title, description, video_url, pdf_url, position
FROM lessons
WHERE course_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, q, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []domain.Lesson
	for rows.Next() {
		var l domain.Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Description, &l.VideoURL, &l.PDFURL, &l.Position); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Course) (*domain.Course, error) {
	if !c.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", domain.ErrValidation, c.Difficulty)
	}
	const q = `
INSERT INTO courses (key, title, description, price, instructor, duration_hours, difficulty, image_url, is_active)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9)
ON CONFLICT (key) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    instructor = EXCLUDED.instructor,
    duration_hours = EXCLUDED.duration_hours,
    difficulty = EXCLUDED.difficulty,
    image_url = EXCLUDED.image_url,
    is_active = EXCLUDED.is_active,
    updated_at = now()
RETURNING ` + courseColumns
	res, err := scanCourse(r.pool.QueryRow(ctx, q,
		c.Key,
		c.Title,
		c.Description,
		c.Price.StringFixed(2),
		c.Instructor,
		c.DurationHours,
		string(c.Difficulty),
		c.ImageURL,
		c.Active,
	))
	if err != nil {
		r.logger.Error("course repo: upsert", zap.String("key", c.Key), zap.Error(err))
		return nil, err
	}
	r.logger.Info("course repo: upserted", zap.String("key", res.Key), zap.String("id", res.ID))
	return res, nil
}

func (r *postgresRepo) UpsertLesson(ctx context.Context, l domain.Lesson) (*domain.Lesson, error) {
	const q = `
INSERT INTO lessons (course_id, title, description, video_url, pdf_url, position)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (course_id, position) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    video_url = EXCLUDED.video_url,
    pdf_url = EXCLUDED.pdf_url
RETURNING id::text
`
	out := l
	if err := r.pool.QueryRow(ctx, q, l.CourseID, l.Title, l.Description, l.VideoURL, l.PDFURL, l.Position).Scan(&out.ID); err != nil {
		return nil, err
	}
	return &out, nil
}

func scanCourse(row pgx.Row, extra ...any) (*domain.Course, error) {
	var (
		c          domain.Course
		price      string
		difficulty string
	)
	dest := []any{&c.ID, &c.Key, &c.Title, &c.Description, &price, &c.Instructor, &c.DurationHours, &difficulty, &c.ImageURL, &c.Active, &c.CreatedAt, &c.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("course %s: parse price %q: %w", c.ID, price, err)
	}
	c.Price = d
	c.Difficulty = domain.Difficulty(difficulty)
	return &c, nil
}
