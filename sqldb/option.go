package sqldb

import (
	"go.uber.org/zap"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type options struct {
	logger *zap.Logger
	driver string
	sqlURL string
	fresh  bool
}

var defaultOptions = options{
	logger: zap.NewNop(),
	driver: DriverSQLite,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// sqlite为默认驱动(单文件数据库)，mysql用于外部数据库
func WithDriver(driver string) Option {
	return func(opts *options) {
		opts.driver = driver
	}
}

// sqlite时为数据库文件路径，mysql时为DSN
func WithConnURL(sqlURL string) Option {
	return func(opts *options) {
		opts.sqlURL = sqlURL
	}
}

// 打开前删除已存在的sqlite数据库文件，mysql下无效果(由建表脚本中的DROP TABLE完成重置)
func WithFresh(fresh bool) Option {
	return func(opts *options) {
		opts.fresh = fresh
	}
}
