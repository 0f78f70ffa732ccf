package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/HosterScan/internal/models"
)

// MaxConfigFileSize 配置文件最大大小 (1MB)
const MaxConfigFileSize = 1 * 1024 * 1024

//go:embed hosterscan_template.yaml
var defaultTemplate string

// Template 返回内置的默认配置模板
func Template() string {
	return defaultTemplate
}

// ErrConfigExists 目标配置文件已存在
var ErrConfigExists = errors.New("配置文件已存在")

// WriteTemplate 把默认模板写到path
// 文件已存在且force为false时返回 ErrConfigExists
func WriteTemplate(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s (使用 -f 覆盖)", ErrConfigExists, path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("无法创建配置目录 [%s]: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(defaultTemplate), 0644); err != nil {
		return fmt.Errorf("无法生成配置文件 [%s]: %w", path, err)
	}
	return nil
}

// CheckFileSize 拒绝过大的配置文件,文件不存在时不报错
func CheckFileSize(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &models.ConfigError{FilePath: path, Cause: err}
	}
	if info.Size() > MaxConfigFileSize {
		return &models.ConfigError{
			FilePath: path,
			Cause:    fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)", info.Size(), MaxConfigFileSize),
		}
	}
	return nil
}
