package log

import (
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Plugin = zapcore.Core

// NewLogger 在默认选项之后追加调用方的选项创建日志器
func NewLogger(plugin Plugin, options ...zap.Option) *zap.Logger {
	return zap.New(plugin, append(DefaultOption(), options...)...)
}

func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

// 命令行的结果写到标准输出，日志默认写到标准错误
func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

/*
输入一个日志文件路径和日志级别过滤器，输出一个日志核心和一个io.Closer

lumberjack没有暴露Sync，返回的Closer需要在进程退出前关闭，保证日志全部写入磁盘
*/
func NewFilePlugin(filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	var writer = DefaultLumberjackLogger()
	writer.Filename = filePath
	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

type closers []io.Closer

func (c closers) Close() error {
	var err error
	for _, closer := range c {
		err = multierr.Append(err, closer.Close())
	}
	return err
}

/*
输入日志级别和日志文件路径，输出一个日志器和一个io.Closer

该方法用于创建命令行使用的日志器：日志总是写到标准错误，文件路径不为空时同时按级别写入轮转文件
*/
func New(level zapcore.Level, filePath string) (*zap.Logger, io.Closer) {
	plugins := []Plugin{NewStderrPlugin(level)}
	var c closers
	if filePath != "" {
		plugin, closer := NewFilePlugin(filePath, level)
		plugins = append(plugins, plugin)
		c = append(c, closer)
	}
	return NewLogger(zapcore.NewTee(plugins...)), c
}
