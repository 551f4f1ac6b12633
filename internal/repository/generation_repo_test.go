package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fyerfyer/citeai/internal/database"
	"github.com/fyerfyer/citeai/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupGenerationTestDB(t *testing.T) (*gorm.DB, func()) {
	// Use in-memory SQLite database for testing
	dbName := fmt.Sprintf("file:memdb_generation_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	err = database.AutoMigrate(db)
	require.NoError(t, err, "Failed to run migrations")

	originalDB := database.DB
	database.DB = db

	cleanup := func() {
		database.DB = originalDB
	}

	return db, cleanup
}

func newLog(status models.GenerationStatus, createdAt time.Time) *models.GenerationLog {
	return &models.GenerationLog{
		Topic:     "Climate change",
		Model:     "deepseek/deepseek-r1-zero:free",
		WordLimit: 1500,
		Sections:  datatypes.JSON(`["Introduction","Conclusion"]`),
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestGenerationRepository_CreateAndGet(t *testing.T) {
	_, cleanup := setupGenerationTestDB(t)
	defer cleanup()

	repo := NewGenerationRepository()

	log := newLog(models.GenStatusSuccess, time.Time{})
	log.MatchedSections = 2
	log.TokenCount = 420
	log.LatencyMs = 1200

	require.NoError(t, repo.Create(log))
	assert.NotEmpty(t, log.ID, "ID should be generated")
	assert.False(t, log.CreatedAt.IsZero(), "CreatedAt should be set")

	saved, err := repo.GetByID(log.ID)
	require.NoError(t, err)
	assert.Equal(t, "Climate change", saved.Topic)
	assert.Equal(t, 2, saved.MatchedSections)
	assert.Equal(t, 420, saved.TokenCount)
	assert.JSONEq(t, `["Introduction","Conclusion"]`, string(saved.Sections))
}

func TestGenerationRepository_CreateInvalid(t *testing.T) {
	_, cleanup := setupGenerationTestDB(t)
	defer cleanup()

	repo := NewGenerationRepository()

	err := repo.Create(nil)
	assert.Error(t, err)

	err = repo.Create(newLog("pending", time.Now()))
	assert.ErrorIs(t, err, models.ErrInvalidGenerationStatus)
}

func TestGenerationRepository_GetByIDNotFound(t *testing.T) {
	_, cleanup := setupGenerationTestDB(t)
	defer cleanup()

	repo := NewGenerationRepository()

	_, err := repo.GetByID("missing")
	assert.ErrorIs(t, err, models.ErrGenerationNotFound)
}

func TestGenerationRepository_List(t *testing.T) {
	db, cleanup := setupGenerationTestDB(t)
	defer cleanup()

	repo := NewGenerationRepositoryWithDB(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		status := models.GenStatusSuccess
		if i%2 == 1 {
			status = models.GenStatusFailed
		}
		require.NoError(t, repo.Create(newLog(status, base.Add(time.Duration(i)*time.Minute))))
	}

	t.Run("pagination", func(t *testing.T) {
		logs, total, err := repo.List(0, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, logs, 2)
		assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt), "newest first")

		logs, _, err = repo.List(4, 2, nil)
		require.NoError(t, err)
		assert.Len(t, logs, 1)
	})

	t.Run("status filter", func(t *testing.T) {
		logs, total, err := repo.List(0, 10, map[string]interface{}{"status": models.GenStatusFailed})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, l := range logs {
			assert.Equal(t, models.GenStatusFailed, l.Status)
		}
	})

	t.Run("time filter", func(t *testing.T) {
		_, total, err := repo.List(0, 10, map[string]interface{}{
			"start_time": base.Add(150 * time.Second),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}

func TestGenerationRepository_Stats(t *testing.T) {
	db, cleanup := setupGenerationTestDB(t)
	defer cleanup()

	repo := NewGenerationRepositoryWithDB(db).WithContext(context.Background())

	stats, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)
	assert.Empty(t, stats.ByStatus)

	hit := newLog(models.GenStatusSuccess, time.Now())
	hit.CacheHit = true
	hit.LatencyMs = 100
	hit.TokenCount = 0
	require.NoError(t, repo.Create(hit))

	miss := newLog(models.GenStatusSuccess, time.Now())
	miss.LatencyMs = 300
	miss.TokenCount = 500
	require.NoError(t, repo.Create(miss))

	timeout := newLog(models.GenStatusTimeout, time.Now())
	timeout.LatencyMs = 800
	require.NoError(t, repo.Create(timeout))

	stats, err = repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(500), stats.TotalTokens)
	assert.InDelta(t, 400.0, stats.AvgLatencyMs, 0.001)
	assert.Equal(t, int64(2), stats.ByStatus[models.GenStatusSuccess])
	assert.Equal(t, int64(1), stats.ByStatus[models.GenStatusTimeout])
}
