package utils

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// MainLogFile 主日志文件名
	MainLogFile = "hosterscan.log"
	// ErrorLogFile 错误日志文件名(仅error及以上)
	ErrorLogFile = "hosterscan_error.log"
)

// Logger 全局日志器,未初始化前丢弃所有输出
var Logger = zerolog.Nop()

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // trace, debug, info, warn, error
	LogDir     string `mapstructure:"dir"`         // 日志目录
	MaxSize    int    `mapstructure:"max_size"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `mapstructure:"max_backups"` // 保留的旧日志文件数量
	MaxAge     int    `mapstructure:"max_age"`     // 保留天数
	Compress   bool   `mapstructure:"compress"`
	Console    bool   `mapstructure:"console"` // 同时输出到stderr
	RunID      string `mapstructure:"-"`
}

// DefaultLogConfig 默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		LogDir:     "logs",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
		Console:    true,
	}
}

// InitLogger 初始化日志系统
func InitLogger(config LogConfig) error {
	if err := os.MkdirAll(config.LogDir, 0755); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	mainLogFile := &lumberjack.Logger{
		Filename:   filepath.Join(config.LogDir, MainLogFile),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}
	errorLogFile := &lumberjack.Logger{
		Filename:   filepath.Join(config.LogDir, ErrorLogFile),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}

	writers := []io.Writer{
		mainLogFile,
		&FilteredWriter{Writer: errorLogFile, MinLevel: zerolog.ErrorLevel},
	}
	// 标准输出留给统计表格,控制台日志走stderr
	if config.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp()
	if config.RunID != "" {
		ctx = ctx.Str("run_id", config.RunID)
	}
	Logger = ctx.Logger()
	log.Logger = Logger

	Logger.Debug().
		Str("level", level.String()).
		Str("log_dir", config.LogDir).
		Msg("日志系统初始化完成")
	return nil
}

// FilteredWriter 仅写入指定级别及以上的日志
type FilteredWriter struct {
	Writer   io.Writer
	MinLevel zerolog.Level
}

// Write 无级别信息时丢弃
func (w *FilteredWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

// WriteLevel 实现 zerolog.LevelWriter
func (w *FilteredWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= w.MinLevel && level < zerolog.NoLevel {
		return w.Writer.Write(p)
	}
	return len(p), nil
}

// Info 信息日志
func Info(msg string) {
	Logger.Info().Msg(msg)
}

// Infof 格式化信息日志
func Infof(format string, args ...interface{}) {
	Logger.Info().Msgf(format, args...)
}

// Error 错误日志
func Error(err error, msg string) {
	Logger.Error().Err(err).Msg(msg)
}

// Errorf 格式化错误日志
func Errorf(format string, args ...interface{}) {
	Logger.Error().Msgf(format, args...)
}

// Warn 警告日志
func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

// Warnf 格式化警告日志
func Warnf(format string, args ...interface{}) {
	Logger.Warn().Msgf(format, args...)
}

// Debug 调试日志
func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

// Debugf 格式化调试日志
func Debugf(format string, args ...interface{}) {
	Logger.Debug().Msgf(format, args...)
}
