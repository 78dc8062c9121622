package sink

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"meeting-etl/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresWriter) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return db, mock, NewPostgresWriter(db, "analytics", zap.NewNop())
}

func TestPostgresWriter_WriteTables_Success(t *testing.T) {
	db, mock, w := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "analytics"."dim_comm_type"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "analytics"."dim_comm_type" ("comm_type" TEXT, "comm_type_id" BIGINT)`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	insertCommType := regexp.QuoteMeta(`INSERT INTO "analytics"."dim_comm_type" ("comm_type", "comm_type_id") VALUES ($1, $2)`)
	mock.ExpectExec(insertCommType).WithArgs("meeting", 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertCommType).WithArgs("call", 2).WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "analytics"."bridge_comm_user"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "analytics"."bridge_comm_user" ("comm_id" TEXT, "user_id" TEXT, "isSpeaker" BOOLEAN)`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "analytics"."bridge_comm_user"`)).
		WithArgs("c-1", nil, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// 空表只建表不插入
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "analytics"."dim_video"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "analytics"."dim_video"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := w.WriteTables(context.Background(), sampleTables())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWriter_WriteTables_RollbackOnError(t *testing.T) {
	db, mock, w := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DROP TABLE IF EXISTS`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := w.WriteTables(context.Background(), sampleTables())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dim_comm_type")
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSQL(t *testing.T) {
	query := InsertSQL(`"public"."dim_user"`, []models.Column{{Name: "user_id"}, {Name: "displayName"}})
	assert.Equal(t, `INSERT INTO "public"."dim_user" ("user_id", "displayName") VALUES ($1, $2)`, query)
}

func TestCreateTableSQL(t *testing.T) {
	query := CreateTableSQL(`"public"."dim_datetime"`, []models.Column{
		{Name: "datetime_id", Type: models.ColInt},
		{Name: "date", Type: models.ColTime},
		{Name: "raw_duration", Type: models.ColFloat},
	})
	assert.Equal(t, `CREATE TABLE "public"."dim_datetime" ("datetime_id" BIGINT, "date" TIMESTAMP, "raw_duration" DOUBLE PRECISION)`, query)
}

func TestNewPostgresWriter_DefaultSchema(t *testing.T) {
	w := NewPostgresWriter(nil, "", zap.NewNop())
	assert.Equal(t, `"public"."dim_user"`, w.qualified("dim_user"))
}
