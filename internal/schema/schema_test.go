package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestCreateIndexes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for range 6 {
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_").
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	require.NoError(t, CreateIndexes(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDropIndexes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for range 6 {
		mock.ExpectExec("DROP INDEX IF EXISTS idx_").
			WillReturnResult(pgxmock.NewResult("DROP", 0))
	}

	require.NoError(t, DropIndexes(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIndexes_StopsOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_").
		WillReturnError(errors.New("relation complaints does not exist"))

	err = CreateIndexes(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create index")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyze(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for _, table := range dataTables {
		mock.ExpectExec("ANALYZE " + table).
			WillReturnResult(pgxmock.NewResult("ANALYZE", 0))
	}

	require.NoError(t, Analyze(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTruncateData(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("TRUNCATE complaints, locations, complaint_types, statuses RESTART IDENTITY CASCADE").
		WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))

	require.NoError(t, TruncateData(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
