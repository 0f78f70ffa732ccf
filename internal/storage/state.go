package storage

import (
	"fmt"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
)

// StateStore 加载和追加一种运行模式的持久化状态
type StateStore struct {
	layout   Layout
	results  *ResultsFile // 仅扫描模式
	recorder PageRecorder
	errorLog *CrawlErrorLog
}

// NewStateStore 创建状态存储
// keywords 为扫描模式的关键词列表,列表站点模式传nil
func NewStateStore(layout Layout, keywords []string, recorder PageRecorder, runID string) *StateStore {
	s := &StateStore{
		layout:   layout,
		recorder: recorder,
		errorLog: NewCrawlErrorLog(layout.CrawlErrorLog, runID),
	}
	if layout.Mode == models.ModeScan {
		s.results = NewResultsFile(layout.Results, keywords)
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	return s
}

// Layout 返回文件布局
func (s *StateStore) Layout() Layout {
	return s.layout
}

// ErrorLog 返回人类可读的错误日志,供爬取引擎即时写入
func (s *StateStore) ErrorLog() *CrawlErrorLog {
	return s.errorLog
}

// Results 返回结果表句柄(列表站点模式为nil)
func (s *StateStore) Results() *ResultsFile {
	return s.results
}

// Load 读取全部历史状态到内存
// 文件不存在时按空状态处理;扫描模式下结果表不存在时创建并写入表头
func (s *StateStore) Load() (*models.RunState, error) {
	if err := s.layout.EnsureDir(); err != nil {
		return nil, err
	}

	state := models.NewRunState()

	crawled, err := ReadLines(s.layout.CrawledLog)
	if err != nil {
		return nil, err
	}
	for _, u := range crawled {
		state.Crawled.Add(u)
	}

	errored, err := ReadLines(s.layout.ErroredLog)
	if err != nil {
		return nil, err
	}
	for _, u := range errored {
		state.Errored.Add(u)
	}

	if s.layout.Candidates != "" {
		candidates, err := ReadLines(s.layout.Candidates)
		if err != nil {
			return nil, err
		}
		for _, u := range candidates {
			state.Candidates.Add(u)
		}
	}

	if s.results != nil {
		loaded, err := s.results.Load()
		if err != nil {
			return nil, err
		}
		if err := s.results.EnsureHeader(); err != nil {
			return nil, err
		}
		for i, row := range loaded.Rows {
			state.Results.Put(row)
			state.Crawled.Add(loaded.SiteURLs[i])
		}
		if loaded.Skipped > 0 {
			utils.Warnf("结果表中 %d 行URL无效,已跳过", loaded.Skipped)
		}
		if missing := s.results.MissingColumns(); len(missing) > 0 {
			utils.Warnf("结果表缺少 %d 个关键词列,这些关键词的计数不会写入: %v", len(missing), missing)
		}
	}

	utils.Infof("已加载历史状态: 已爬取 %d, 失败 %d, 候选 %d, 结果 %d",
		state.Crawled.Len(), state.Errored.Len(), state.Candidates.Len(), state.Results.Len())
	return state, nil
}

// CommitSite 站点完成后追加本站点的全部新增记录
// 顺序: 结果行/候选URL → 已爬取URL → 失败URL → 每页关键词
func (s *StateStore) CommitSite(result *models.CrawlResult) error {
	if s.results != nil {
		row := models.SiteResult{Site: result.Target.Site, Matches: result.Matches}
		row.Site.URL = result.Target.URL
		if err := s.results.Append(row); err != nil {
			return fmt.Errorf("写入结果行失败: %w", err)
		}
	}
	if s.layout.Candidates != "" {
		if err := AppendLines(s.layout.Candidates, result.NewCandidates); err != nil {
			return fmt.Errorf("写入候选URL失败: %w", err)
		}
	}
	if err := AppendLines(s.layout.CrawledLog, result.NewCrawled); err != nil {
		return fmt.Errorf("写入已爬取URL失败: %w", err)
	}
	if err := AppendLines(s.layout.ErroredLog, result.NewErrored); err != nil {
		return fmt.Errorf("写入失败URL失败: %w", err)
	}
	if s.results != nil {
		if err := s.recorder.RecordSite(result); err != nil {
			return fmt.Errorf("写入页面关键词失败: %w", err)
		}
	}
	return nil
}

// ImportCandidates 把外部导入的URL并入候选集合并追加到候选文件
// 只接受http(s)链接;返回新增数量
func (s *StateStore) ImportCandidates(state *models.RunState, raw []string) (int, error) {
	added := make([]string, 0)
	for _, line := range raw {
		u := models.Normalize(line)
		if !models.HasURLPrefix(u) {
			continue
		}
		if state.Candidates.Add(u) {
			added = append(added, u)
		}
	}
	if s.layout.Candidates != "" {
		if err := AppendLines(s.layout.Candidates, added); err != nil {
			return 0, err
		}
	}
	return len(added), nil
}

// Close 释放资源
func (s *StateStore) Close() error {
	return s.recorder.Close()
}
