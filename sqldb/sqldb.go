package sqldb

// 对database/sql的一层薄封装：打开sqlite或mysql连接、执行建表脚本、提供事务作用域与存在性查询

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type DBer interface {
	Bootstrap(ctx context.Context, script string) error
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	Exists(ctx context.Context, query string, args ...interface{}) (bool, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	Close() error
}

type Sqldb struct {
	options
	db *sql.DB
}

func New(opts ...Option) (*Sqldb, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	d := &Sqldb{}
	d.options = options
	if err := d.OpenDB(); err != nil {
		return nil, err
	}
	return d, nil
}

// 包装一个已经打开的连接，测试中配合sqlmock使用
func NewFromDB(db *sql.DB, opts ...Option) *Sqldb {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Sqldb{options: options, db: db}
}

func (d *Sqldb) OpenDB() error {
	if d.sqlURL == "" {
		return errors.New("empty connection url")
	}
	if d.fresh && d.driver == DriverSQLite {
		if err := removeSQLiteFile(d.sqlURL); err != nil {
			return err
		}
	}

	db, err := sql.Open(d.driver, d.sqlURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	switch d.driver {
	case DriverSQLite:
		// sqlite同一时刻只允许一个写者
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(8)
	}
	if err = db.Ping(); err != nil {
		return multierr.Append(fmt.Errorf("failed to ping database: %w", err), db.Close())
	}
	d.db = db
	d.logger.Info("database opened", zap.String("driver", d.driver), zap.Bool("fresh", d.fresh))
	return nil
}

// dsn可能带有file:前缀和?参数
func removeSQLiteFile(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove database file: %w", err)
		}
	}
	return nil
}

// 在一个事务内依次执行脚本中的每条语句
func (d *Sqldb) Bootstrap(ctx context.Context, script string) error {
	stmts := SplitStatements(script)
	if len(stmts) == 0 {
		return errors.New("empty schema script")
	}
	return d.WithTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range stmts {
			d.logger.Debug("exec schema", zap.String("sql", stmt))
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to exec schema: %w", err)
			}
		}
		return nil
	})
}

// 事务作用域：fn返回nil时提交，返回错误或panic时回滚，回滚失败的错误与原错误合并返回
func (d *Sqldb) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// query应只返回一列，有任意一行即为存在
func (d *Sqldb) Exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	return RowExists(d.db.QueryRowContext(ctx, query, args...))
}

// 事务内同样适用：RowExists(tx.QueryRowContext(...))
func RowExists(row *sql.Row) (bool, error) {
	var one int
	err := row.Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *Sqldb) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}

func (d *Sqldb) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

func (d *Sqldb) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
