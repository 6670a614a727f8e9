package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ScreenMemo/internal/models"
)

// ExportHandler 負責把 Entry 匯出為 CSV 下載
type ExportHandler struct {
	db DBStore
}

// NewExportHandler 建立一個 ExportHandler 實例
func NewExportHandler(db DBStore) *ExportHandler {
	if db == nil {
		log.Panicln("ExportHandler：DBStore 不得為空")
	}
	return &ExportHandler{db: db}
}

// EntryCSVHeader 是匯出欄位的表頭
var EntryCSVHeader = []string{
	"id", "created_at", "source_type", "source_app", "source_url",
	"title", "category", "content_text", "screenshot_url", "ai_confidence",
}

// ServeHTTP 實現 http.Handler 介面
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("資訊：[ExportHandler] 收到匯出請求: %s %s\n", r.Method, r.URL.Path)
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	category := r.URL.Query().Get("category")
	sourceType := r.URL.Query().Get("source_type")

	// 匯出不分頁
	entries, err := h.db.ListEntries(10000, 0, category, sourceType)
	if err != nil {
		log.Printf("錯誤：[ExportHandler] 從資料庫獲取 Entry 數據失敗: %v\n", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to export entries")
		return
	}
	log.Printf("資訊：[ExportHandler] 獲取到 %d 筆 Entry 準備匯出。\n", len(entries))

	filename := fmt.Sprintf("entries-%s.csv", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	if err := WriteEntriesCSV(writer, entries); err != nil {
		log.Printf("錯誤：[ExportHandler] 寫入 CSV 失敗: %v\n", err)
	}
}

// WriteEntriesCSV 把 Entry 寫入 CSV，供 HTTP 匯出與命令列匯出共用
func WriteEntriesCSV(writer *csv.Writer, entries []models.Entry) error {
	if err := writer.Write(EntryCSVHeader); err != nil {
		return fmt.Errorf("寫入 CSV 表頭失敗: %w", err)
	}
	for _, entry := range entries {
		row := []string{
			entry.ID,
			entry.CreatedAt.Format(time.RFC3339),
			entry.SourceType,
			nullStringValue(entry.SourceApp),
			nullStringValue(entry.SourceURL),
			entry.Title,
			entry.Category,
			strings.ReplaceAll(entry.ContentText, "\n", " "),
			entry.ScreenshotURL,
			nullInt64Value(entry.AIConfidence),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("寫入 CSV 資料列失敗 (entry %s): %w", entry.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func nullStringValue(s models.JsonNullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

func nullInt64Value(i models.JsonNullInt64) string {
	if !i.Valid {
		return ""
	}
	return strconv.FormatInt(i.Int64, 10)
}
