package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/HosterScan/internal/models"
	"github.com/RecoveryAshes/HosterScan/internal/utils"
	_ "modernc.org/sqlite"
)

// SQLitePageRecorder 把每页关键词写入SQLite数据库
type SQLitePageRecorder struct {
	db   *sql.DB
	path string
}

// NewSQLitePageRecorder 打开(或创建)数据库并建表
func NewSQLitePageRecorder(path string) (*SQLitePageRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败 [%s]: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	r := &SQLitePageRecorder{db: db, path: path}
	if err := r.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化数据库表失败: %w", err)
	}
	utils.Debugf("关键词数据库已就绪: %s", path)
	return r, nil
}

func (r *SQLitePageRecorder) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS page_keywords (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site_id TEXT NOT NULL,
		page_url TEXT NOT NULL,
		keyword TEXT NOT NULL,
		recorded_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_page_keywords_site ON page_keywords(site_id);
	CREATE INDEX IF NOT EXISTS idx_page_keywords_keyword ON page_keywords(keyword);

	CREATE TABLE IF NOT EXISTS site_keywords (
		site_id TEXT PRIMARY KEY,
		name TEXT,
		url TEXT NOT NULL,
		keywords TEXT NOT NULL,
		recorded_at DATETIME NOT NULL
	);
	`
	_, err := r.db.ExecContext(context.Background(), schema)
	return err
}

// RecordSite 在一个事务中写入站点的全部页面记录
func (r *SQLitePageRecorder) RecordSite(result *models.CrawlResult) error {
	ctx := context.Background()
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO page_keywords (site_id, page_url, keyword, recorded_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("准备语句失败: %w", err)
	}
	defer stmt.Close()

	for _, p := range result.Pages {
		for _, kw := range p.Keywords {
			if _, err := stmt.ExecContext(ctx, p.SiteKey, p.PageURL, kw, now); err != nil {
				return fmt.Errorf("写入页面关键词失败: %w", err)
			}
		}
	}

	site := result.Target.Site
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO site_keywords (site_id, name, url, keywords, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		site.Key(), site.Name, result.Target.URL, strings.Join(result.SiteKeywords(), keywordSeparator), now,
	); err != nil {
		return fmt.Errorf("写入站点关键词失败: %w", err)
	}

	return tx.Commit()
}

// PageCount 返回某站点记录的(页面,关键词)条数
func (r *SQLitePageRecorder) PageCount(siteID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM page_keywords WHERE site_id = ?`, siteID).Scan(&n)
	return n, err
}

// SiteKeywords 返回某站点记录的关键词并集
func (r *SQLitePageRecorder) SiteKeywords(siteID string) ([]string, error) {
	var joined string
	err := r.db.QueryRowContext(context.Background(),
		`SELECT keywords FROM site_keywords WHERE site_id = ?`, siteID).Scan(&joined)
	if err != nil {
		return nil, err
	}
	if joined == "" {
		return []string{}, nil
	}
	return strings.Split(joined, keywordSeparator), nil
}

// Close 关闭数据库
func (r *SQLitePageRecorder) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
