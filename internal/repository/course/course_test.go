package course

import (
	"context"
	"testing"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_CourseWithLessons(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	repo := NewPostgres(pool, nil)
	c, err := repo.Upsert(ctx, domain.Course{
		Key:           "iot-101",
		Title:         "IoT Basics",
		Description:   "Sensors and boards",
		Price:         decimal.RequireFromString("49.99"),
		Instructor:    "Ada",
		DurationHours: 6,
		Difficulty:    domain.DifficultyBeginner,
		Active:        true,
	})
	require.NoError(t, err)

	for i, title := range []string{"Wiring", "Intro"} {
		_, err := repo.UpsertLesson(ctx, domain.Lesson{CourseID: c.ID, Title: title, Position: 2 - i})
		require.NoError(t, err)
	}

	lessons, err := repo.ListLessons(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "Intro", lessons[0].Title)

	list, total, err := repo.List(ctx, ListFilter{ActiveOnly: true, Query: "ada", Difficulty: domain.DifficultyBeginner})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, c.ID, list[0].ID)

	list, total, err = repo.List(ctx, ListFilter{Difficulty: domain.DifficultyAdvanced})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}
