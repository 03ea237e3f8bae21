package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Plugin = zapcore.Core

// 由一个或多个日志核心构建logger，多个核心时通过Tee同时输出
func NewLogger(plugin Plugin, options ...zap.Option) *zap.Logger {
	return zap.New(plugin, append(DefaultOption(), options...)...)
}

// 使用默认json编码器创建日志核心
func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

func NewStdoutPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stdout)), enabler)
}

func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// lumberjack没有暴露Sync，因此额外返回closer，进程退出前必须Close才能保证日志落盘
func NewFilePlugin(filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	writer := DefaultLumberjackLogger()
	writer.Filename = filePath
	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

// 按配置组装logger：始终输出到标准输出，filePath非空时再写一份轮转文件
func New(level string, filePath string) (*zap.Logger, io.Closer, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	plugin := NewStdoutPlugin(lvl)
	if filePath == "" {
		return NewLogger(plugin), nopCloser{}, nil
	}
	filePlugin, closer := NewFilePlugin(filePath, lvl)
	return NewLogger(zapcore.NewTee(plugin, filePlugin)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
