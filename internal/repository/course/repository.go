package course

import (
	"context"

	"storefront/internal/domain"
)

// ListFilter narrows course listings. Zero values mean "no filter".
type ListFilter struct {
	Query      string
	Difficulty domain.Difficulty
	ActiveOnly bool
	Limit      int
	Offset     int
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]domain.Course, int, error)
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	ListLessons(ctx context.Context, courseID string) ([]domain.Lesson, error)
	Upsert(ctx context.Context, c domain.Course) (*domain.Course, error)
	UpsertLesson(ctx context.Context, l domain.Lesson) (*domain.Lesson, error)
}
