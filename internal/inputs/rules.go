package inputs

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
)

// LoadRules 读取每行一条的规则文件,统一小写并去除末尾'/'
// 路径为空或文件不存在时返回defaults
func LoadRules(path string, defaults []string) ([]string, error) {
	if path == "" {
		return append([]string(nil), defaults...), nil
	}

	lines, err := readTextLines(path)
	if errors.Is(err, fs.ErrNotExist) {
		utils.Debugf("规则文件不存在,使用内置规则: %s", path)
		return append([]string(nil), defaults...), nil
	}
	if err != nil {
		return nil, err
	}

	rules := make([]string, 0, len(lines))
	for _, line := range lines {
		if rule := models.NormalizeRule(line); rule != "" {
			rules = append(rules, rule)
		}
	}
	utils.Debugf("从 %s 加载了 %d 条规则", path, len(rules))
	return rules, nil
}

// readTextLines 读取非空行(已去除首尾空白)
func readTextLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lines := make([]string, 0)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取文件失败 [%s]: %w", path, err)
	}
	return lines, nil
}

// Requirement 一个必需的输入文件
type Requirement struct {
	Role string
	Path string
}

// RequireFiles 在任何网络请求之前检查必需文件是否存在
// 返回所有缺失文件合并后的错误,每个都是 *models.MissingInputError
func RequireFiles(reqs ...Requirement) error {
	var errs []error
	for _, r := range reqs {
		info, err := os.Stat(r.Path)
		if err != nil || info.IsDir() {
			errs = append(errs, &models.MissingInputError{Role: r.Role, Path: r.Path})
		}
	}
	return errors.Join(errs...)
}
