package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func factRowAt(line int) FactRow {
	return FactRow{
		UniqueKey:       "key-" + time.Now().Format("150405"),
		CreatedDate:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		StatusID:        1,
		ComplaintTypeID: 1,
		LocationID:      1,
		line:            line,
	}
}

func TestFlush_EmptyBufferIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	var stats Stats
	b := NewBatchLoader(mock, 100, func() {})
	b.Flush(context.Background(), &stats)

	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_FlushesAtBatchSize(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"complaints"}, factColumns).WillReturnResult(2)
	mock.ExpectCommit()

	var stats Stats
	b := NewBatchLoader(mock, 2, func() {})

	b.Add(context.Background(), factRowAt(2), &stats)
	assert.Equal(t, 1, b.Buffered())

	b.Add(context.Background(), factRowAt(3), &stats)
	assert.Equal(t, 0, b.Buffered())
	assert.Equal(t, 2, stats.Success)
	assert.Zero(t, stats.Errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlush_FailureRollsBackAndInvalidatesCaches(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"complaints"}, factColumns).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "complaints_pkey"`))
	mock.ExpectRollback()

	rolledBack := false
	var stats Stats
	b := NewBatchLoader(mock, 100, func() { rolledBack = true })

	b.Add(context.Background(), factRowAt(2), &stats)
	b.Add(context.Background(), factRowAt(3), &stats)
	b.Add(context.Background(), factRowAt(4), &stats)
	b.Flush(context.Background(), &stats)

	assert.True(t, rolledBack)
	assert.Equal(t, 0, b.Buffered())
	assert.Zero(t, stats.Success)
	assert.Equal(t, 3, stats.Errors)
	require.Len(t, stats.ErrorDetails, 1)
	assert.Contains(t, stats.ErrorDetails[0], "rows 2-4")
	assert.Contains(t, stats.ErrorDetails[0], "duplicate key")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFlush_BeginErrorCountsWholeBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("connection closed"))

	rolledBack := false
	var stats Stats
	b := NewBatchLoader(mock, 100, func() { rolledBack = true })

	b.Add(context.Background(), factRowAt(2), &stats)
	b.Flush(context.Background(), &stats)

	assert.True(t, rolledBack)
	assert.Equal(t, 1, stats.Errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewBatchLoader_DefaultSize(t *testing.T) {
	b := NewBatchLoader(nil, 0, func() {})
	assert.Equal(t, 100, b.size)
}
