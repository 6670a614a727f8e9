package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"ScreenMemo/internal/models"
)

// 多部分表單的記憶體上限（與儲存桶的 10MB 檔案限制一致）
const maxScreenshotUploadBytes = 10 << 20

// allowedScreenshotTypes 是攝取端點接受的截圖格式
var allowedScreenshotTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// ScreenshotAnalyzer 介面定義了截圖攝取管線
type ScreenshotAnalyzer interface {
	AnalyzeScreenshot(ctx context.Context, imageData []byte, originalFilename string, mimeType string) (*models.Entry, error)
}

// AnalyzeScreenshotHandler 負責處理 POST /analyze-screenshot
type AnalyzeScreenshotHandler struct {
	analyzer ScreenshotAnalyzer
}

// NewAnalyzeScreenshotHandler 建立一個 AnalyzeScreenshotHandler 實例
func NewAnalyzeScreenshotHandler(analyzer ScreenshotAnalyzer) *AnalyzeScreenshotHandler {
	if analyzer == nil {
		log.Panicln("AnalyzeScreenshotHandler：ScreenshotAnalyzer 不得為空")
	}
	return &AnalyzeScreenshotHandler{analyzer: analyzer}
}

// ServeHTTP 實現 http.Handler 介面。
// 成功回傳 200 與完整的 Entry；缺少檔案回傳 400；
// 管線任一階段失敗回傳 500 與不透露細節的訊息。
func (h *AnalyzeScreenshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("資訊：[AnalyzeScreenshotHandler] 收到請求: %s %s 來自 %s\n", r.Method, r.URL.Path, r.RemoteAddr)

	if r.Method != http.MethodPost {
		log.Printf("警告：[AnalyzeScreenshotHandler] 收到非 POST 請求 (%s)，已拒絕。\n", r.Method)
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxScreenshotUploadBytes); err != nil {
		log.Printf("警告：[AnalyzeScreenshotHandler] 解析多部分表單失敗: %v\n", err)
		writeJSONError(w, http.StatusBadRequest, "No screenshot provided")
		return
	}

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		log.Println("警告：[AnalyzeScreenshotHandler] 請求中缺少 'screenshot' 檔案欄位。")
		writeJSONError(w, http.StatusBadRequest, "No screenshot provided")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		log.Printf("錯誤：[AnalyzeScreenshotHandler] 讀取上傳檔案失敗: %v\n", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to analyze screenshot")
		return
	}
	if len(imageData) == 0 {
		log.Println("警告：[AnalyzeScreenshotHandler] 上傳的截圖檔案為空。")
		writeJSONError(w, http.StatusBadRequest, "No screenshot provided")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !allowedScreenshotTypes[mimeType] {
		log.Printf("警告：[AnalyzeScreenshotHandler] 不支援的截圖類型 '%s'，已拒絕。\n", mimeType)
		writeJSONError(w, http.StatusBadRequest, "Unsupported image type")
		return
	}

	entry, err := h.analyzer.AnalyzeScreenshot(r.Context(), imageData, header.Filename, mimeType)
	if err != nil {
		// 哨兵錯誤的細節只進日誌，對外一律回覆同一則訊息
		log.Printf("錯誤：[AnalyzeScreenshotHandler] 截圖攝取管線失敗: %v\n", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to analyze screenshot")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		log.Printf("錯誤：[AnalyzeScreenshotHandler] 序列化 Entry 回應失敗: %v\n", err)
	}
}

// writeJSONError 以 {"error": ...} 形式回覆錯誤
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
