package sqlstorage

// 用于配置sql存储相关的选项，用于存储引擎的函数选择模式

import (
	"go.uber.org/zap"
)

type options struct {
	logger *zap.Logger
}

// 默认选项
var defaultOptions = options{
	logger: zap.NewNop(),
}

type Option func(opts *options)

// 配置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}
