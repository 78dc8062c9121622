package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"meeting-etl/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresWriter 把输出表整体替换写入 PostgreSQL（单事务，失败整体回滚）
type PostgresWriter struct {
	db     *sql.DB
	schema string
	logger *zap.Logger
}

// NewPostgresWriter 创建数仓输出
func NewPostgresWriter(db *sql.DB, schema string, logger *zap.Logger) *PostgresWriter {
	if schema == "" {
		schema = "public"
	}
	return &PostgresWriter{db: db, schema: schema, logger: logger}
}

// WriteTables 对每张表执行 DROP / CREATE / INSERT
func (w *PostgresWriter) WriteTables(ctx context.Context, tables []models.Table) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if err := w.writeTable(ctx, tx, table); err != nil {
			return fmt.Errorf("failed to write table %s: %w", table.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	w.logger.Info("Tables written to PostgreSQL", zap.String("schema", w.schema), zap.Int("tables", len(tables)))
	return nil
}

func (w *PostgresWriter) writeTable(ctx context.Context, tx *sql.Tx, table models.Table) error {
	name := w.qualified(table.Name)

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, CreateTableSQL(name, table.Columns)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	if len(table.Rows) == 0 {
		return nil
	}
	insert := InsertSQL(name, table.Columns)
	for i, row := range table.Rows {
		if _, err := tx.ExecContext(ctx, insert, row...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}
	return nil
}

func (w *PostgresWriter) qualified(table string) string {
	return pq.QuoteIdentifier(w.schema) + "." + pq.QuoteIdentifier(table)
}

// CreateTableSQL 建表语句
func CreateTableSQL(qualifiedName string, columns []models.Column) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = pq.QuoteIdentifier(c.Name) + " " + sqlType(c.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", qualifiedName, strings.Join(defs, ", "))
}

// InsertSQL 插入语句（$1..$n 占位符）
func InsertSQL(qualifiedName string, columns []models.Column) string {
	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		names[i] = pq.QuoteIdentifier(c.Name)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualifiedName, strings.Join(names, ", "), strings.Join(placeholders, ", "))
}

func sqlType(t models.ColumnType) string {
	switch t {
	case models.ColInt:
		return "BIGINT"
	case models.ColFloat:
		return "DOUBLE PRECISION"
	case models.ColBool:
		return "BOOLEAN"
	case models.ColTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
