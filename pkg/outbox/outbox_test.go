package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/enums"
	"github.com/skillbazaar/backend/pkg/logger"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func insertEvent(t *testing.T, db *gorm.DB, repo *Repository) models.OutboxEvent {
	t.Helper()
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderRequested,
		AggregateType: enums.AggregatePurchase,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.Insert(tx, event)
	}))
	return event
}

func TestEmitStoresEnvelopeInsideTransaction(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	ctx := context.Background()

	aggregateID := uuid.New()
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(ctx, tx, DomainEvent{
			EventType:     enums.EventOrderRequested,
			AggregateType: enums.AggregatePurchase,
			AggregateID:   aggregateID,
			Data:          map[string]string{"work_title": "Logo design"},
			Version:       1,
		})
	})
	require.NoError(t, err)

	rows, err := repo.FetchUnpublished(10, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.EventOrderRequested, rows[0].EventType)
	assert.Equal(t, aggregateID, rows[0].AggregateID)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)

	var data map[string]string
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, "Logo design", data["work_title"])
}

func TestEmitRequiresTransaction(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{EventType: enums.EventOrderRequested})
	require.Error(t, err)
}

func TestFetchUnpublishedSkipsPublishedAndExhausted(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	fresh := insertEvent(t, db, repo)
	published := insertEvent(t, db, repo)
	exhausted := insertEvent(t, db, repo)

	require.NoError(t, repo.MarkPublished(published.ID))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.MarkFailed(exhausted.ID, errors.New("boom")))
	}

	rows, err := repo.FetchUnpublished(10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, fresh.ID, rows[0].ID)
}

func TestMarkFailedIncrementsAttempts(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := insertEvent(t, db, repo)
	require.NoError(t, repo.MarkFailed(event.ID, errors.New("no consumer")))

	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	assert.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.Equal(t, "no consumer", *row.LastError)
	assert.Nil(t, row.PublishedAt)
}
