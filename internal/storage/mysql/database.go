package mysql

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ScreenMemo/internal/config"
	"ScreenMemo/internal/models"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// MySQLStore 結構
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore 建立 MySQL 連線並設定連線池
func NewMySQLStore(dbCfg config.DatabaseConfig) (*MySQLStore, error) {
	if dbCfg.Driver != "mysql" {
		return nil, fmt.Errorf("不支援的資料庫驅動程式: %s", dbCfg.Driver)
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local", dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.DBName)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("開啟資料庫連線失敗: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("無法連線到資料庫 (ping 失敗): %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	log.Println("資訊：成功連線到 MySQL 資料庫。")
	return &MySQLStore{db: db}, nil
}

// Close 關閉資料庫連線
func (s *MySQLStore) Close() error {
	if s.db != nil {
		log.Println("資訊：正在關閉 MySQL 資料庫連線...")
		return s.db.Close()
	}
	return nil
}

// CreateEntry 執行單筆插入並回傳完整的 Entry。
// id 與 created_at 由本層指派，呼叫端不得自行設定。
// 非冪等：相同欄位呼叫兩次會產生兩筆不同的記錄。
func (s *MySQLStore) CreateEntry(entry *models.Entry) (*models.Entry, error) {
	if entry == nil {
		return nil, fmt.Errorf("CreateEntry：entry 不得為空")
	}
	if entry.ScreenshotURL == "" {
		return nil, fmt.Errorf("CreateEntry：screenshot_url 不得為空")
	}

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	if entry.Tags == nil {
		entry.Tags = []string{}
	}

	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return nil, fmt.Errorf("CreateEntry：序列化 metadata 失敗: %w", err)
	}
	tagsJSON, err := json.Marshal(entry.Tags)
	if err != nil {
		return nil, fmt.Errorf("CreateEntry：序列化 tags 失敗: %w", err)
	}
	var aiAnalysisJSON []byte
	if entry.AIAnalysis != nil {
		aiAnalysisJSON, err = json.Marshal(entry.AIAnalysis)
		if err != nil {
			return nil, fmt.Errorf("CreateEntry：序列化 ai_analysis 失敗: %w", err)
		}
	}

	query := `
		INSERT INTO entries (
			id, created_at, source_type, source_app, source_url,
			content_text, content_summary, screenshot_url, title, category,
			tags, metadata, ai_confidence, ai_analysis
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query,
		entry.ID, entry.CreatedAt, entry.SourceType, entry.SourceApp.NullString, entry.SourceURL.NullString,
		entry.ContentText, entry.ContentSummary.NullString, entry.ScreenshotURL, entry.Title, entry.Category,
		string(tagsJSON), string(metadataJSON), entry.AIConfidence.NullInt64, nullableBytes(aiAnalysisJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("CreateEntry：插入 entries 失敗: %w", err)
	}
	log.Printf("資訊：MySQLStore.CreateEntry 成功建立 Entry (id: %s)\n", entry.ID)
	return entry, nil
}

// ListEntries 依建立時間由新到舊列出 Entry，可選擇以 category 或 source_type 過濾。
// 過濾欄位都有次級索引支援。
func (s *MySQLStore) ListEntries(limit int, offset int, category string, sourceType string) ([]models.Entry, error) {
	log.Printf("資訊：MySQLStore.ListEntries 被呼叫 (limit: %d, offset: %d, category: '%s', sourceType: '%s')\n", limit, offset, category, sourceType)
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var args []interface{}
	baseQuery := `
		SELECT
			id, created_at, source_type, source_app, source_url,
			content_text, content_summary, screenshot_url, title, category,
			tags, metadata, ai_confidence, ai_analysis
		FROM entries
	`
	whereClauses := []string{}
	if category != "" {
		whereClauses = append(whereClauses, "category = ?")
		args = append(args, category)
	}
	if sourceType != "" {
		whereClauses = append(whereClauses, "source_type = ?")
		args = append(args, sourceType)
	}
	if len(whereClauses) > 0 {
		baseQuery += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("ListEntries：查詢 entries 失敗: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListEntries：讀取結果列時發生錯誤: %w", err)
	}
	return entries, nil
}

// HasEntryWithScreenshotURL 檢查是否已有 Entry 指向該截圖 URL，供孤兒清掃任務使用
func (s *MySQLStore) HasEntryWithScreenshotURL(screenshotURL string) (bool, error) {
	if screenshotURL == "" {
		return false, fmt.Errorf("HasEntryWithScreenshotURL：screenshotURL 不得為空")
	}
	var one int
	err := s.db.QueryRow("SELECT 1 FROM entries WHERE screenshot_url = ? LIMIT 1", screenshotURL).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("HasEntryWithScreenshotURL：查詢失敗: %w", err)
	}
	return true, nil
}

func scanEntry(rows *sql.Rows) (*models.Entry, error) {
	var entry models.Entry
	var tagsJSON, metadataJSON sql.NullString
	var aiAnalysisJSON sql.NullString
	err := rows.Scan(
		&entry.ID, &entry.CreatedAt, &entry.SourceType, &entry.SourceApp, &entry.SourceURL,
		&entry.ContentText, &entry.ContentSummary, &entry.ScreenshotURL, &entry.Title, &entry.Category,
		&tagsJSON, &metadataJSON, &entry.AIConfidence, &aiAnalysisJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("scanEntry：掃描結果列失敗: %w", err)
	}
	entry.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &entry.Tags); err != nil {
			log.Printf("警告：scanEntry - 無法解析 tags JSON (entry %s): %v\n", entry.ID, err)
		}
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &entry.Metadata); err != nil {
			log.Printf("警告：scanEntry - 無法解析 metadata JSON (entry %s): %v\n", entry.ID, err)
		}
	}
	if aiAnalysisJSON.Valid && aiAnalysisJSON.String != "" {
		var audit models.AIAnalysisAudit
		if err := json.Unmarshal([]byte(aiAnalysisJSON.String), &audit); err != nil {
			log.Printf("警告：scanEntry - 無法解析 ai_analysis JSON (entry %s): %v\n", entry.ID, err)
		} else {
			entry.AIAnalysis = &audit
		}
	}
	return &entry, nil
}

func nullableBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
