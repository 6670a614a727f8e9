package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"ScreenMemo/internal/analysis"
	"ScreenMemo/internal/config"
	"ScreenMemo/internal/models"
	"ScreenMemo/internal/web/handlers"
)

// IngestService 負責單一截圖的完整攝取管線：
// 視覺分析 → 結構化解析 → (來源 URL 重建、截圖上傳) → Entry 持久化。
// 每個請求獨立執行，不保留跨請求狀態。
type IngestService struct {
	cfg     *config.Config
	db      handlers.DBStore
	storage AssetStorage
	vision  VisionClient
}

// NewIngestService 建立 IngestService 實例
func NewIngestService(
	cfg *config.Config,
	db handlers.DBStore,
	storage AssetStorage,
	vision VisionClient,
) (*IngestService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("IngestService：設定不得為空")
	}
	if db == nil {
		return nil, fmt.Errorf("IngestService：DBStore 不得為空")
	}
	if storage == nil {
		return nil, fmt.Errorf("IngestService：AssetStorage 不得為空")
	}
	if vision == nil {
		return nil, fmt.Errorf("IngestService：VisionClient 不得為空")
	}
	log.Println("資訊：IngestService 初始化完成。")
	return &IngestService{cfg: cfg, db: db, storage: storage, vision: vision}, nil
}

// AnalyzeScreenshot 對單一截圖執行完整管線並回傳建立的 Entry。
// 任一階段失敗即中止整個請求；上傳成功但持久化失敗時，
// 已上傳的截圖會留在儲存中（不補償回滾），由清掃任務另行處理。
func (s *IngestService) AnalyzeScreenshot(ctx context.Context, imageData []byte, originalFilename string, mimeType string) (*models.Entry, error) {
	prompt, err := s.cfg.Prompts.ScreenshotAnalysis.Current()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}

	log.Printf("資訊：[IngestService] 開始分析截圖 '%s' (%d bytes, %s)\n", originalFilename, len(imageData), mimeType)
	rawResponse, err := s.vision.AnalyzeScreenshot(ctx, imageData, mimeType, prompt)
	if err != nil {
		log.Printf("錯誤：[IngestService] 視覺模型分析失敗: %v\n", err)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}
	analyzedAt := time.Now().UTC()

	parsed, err := analysis.Parse(rawResponse)
	if err != nil {
		log.Printf("錯誤：[IngestService] 模型回應解析失敗: %v\n", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}

	// 來源 URL 重建是純計算，與上傳之間沒有順序依賴
	sourceURL := analysis.NormalizeSourceURL(parsed.SourceApp, parsed.Metadata)

	objectName := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeFilename(originalFilename))
	screenshotURL, err := s.storage.SaveScreenshot(ctx, objectName, imageData, mimeType)
	if err != nil {
		log.Printf("錯誤：[IngestService] 截圖上傳失敗: %v\n", err)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	entry := &models.Entry{
		SourceType:    strings.ToLower(parsed.SourceApp),
		SourceApp:     models.NullStringFrom(parsed.SourceApp),
		SourceURL:     models.NullStringFrom(sourceURL),
		ContentText:   parsed.Text,
		ScreenshotURL: screenshotURL,
		Title:         parsed.Title,
		Category:      parsed.Category,
		Tags:          []string{},
		Metadata:      parsed.Metadata,
		AIAnalysis: &models.AIAnalysisAudit{
			RawResponse: rawResponse,
			Model:       s.vision.ModelName(),
			AnalyzedAt:  analyzedAt,
		},
	}
	if parsed.Confidence != nil {
		entry.AIConfidence = models.NullInt64From(*parsed.Confidence)
	}

	created, err := s.db.CreateEntry(entry)
	if err != nil {
		log.Printf("錯誤：[IngestService] Entry 寫入失敗，截圖 '%s' 將留在儲存中待清掃: %v\n", objectName, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	log.Printf("資訊：[IngestService] Entry 建立成功 (id: %s, source_type: %s)\n", created.ID, created.SourceType)
	return created, nil
}

// sanitizeFilename 把上傳檔名縮減為安全的單一檔名
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "screenshot"
	}
	return base
}
