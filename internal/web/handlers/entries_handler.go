package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"ScreenMemo/internal/models"
)

// DBStore 定義了應用程式需要的資料庫操作介面
type DBStore interface {
	CreateEntry(entry *models.Entry) (*models.Entry, error)
	ListEntries(limit int, offset int, category string, sourceType string) ([]models.Entry, error)
	HasEntryWithScreenshotURL(screenshotURL string) (bool, error)
	Close() error
}

// EntriesHandler 負責處理 GET /entries，依建立時間列出 Entry，
// 可用 category 與 source_type 過濾（對應資料表的次級索引）。
type EntriesHandler struct {
	db DBStore
}

// NewEntriesHandler 建立一個 EntriesHandler 實例
func NewEntriesHandler(db DBStore) *EntriesHandler {
	if db == nil {
		log.Panicln("EntriesHandler：DBStore 不得為空")
	}
	return &EntriesHandler{db: db}
}

// ServeHTTP 實現 http.Handler 介面
func (h *EntriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := parseIntParam(r, "limit", 50)
	offset := parseIntParam(r, "offset", 0)
	category := r.URL.Query().Get("category")
	sourceType := r.URL.Query().Get("source_type")

	entries, err := h.db.ListEntries(limit, offset, category, sourceType)
	if err != nil {
		log.Printf("錯誤：[EntriesHandler] 從資料庫列出 Entry 失敗: %v\n", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to list entries")
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		log.Printf("錯誤：[EntriesHandler] 序列化回應失敗: %v\n", err)
	}
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
