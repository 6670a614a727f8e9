package models

import (
	"time"
)

// AIAnalysisAudit 保留模型的原始回應，供除錯與日後重新處理。
type AIAnalysisAudit struct {
	RawResponse string    `json:"raw_response"`
	Model       string    `json:"model"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

// Entry 對應 entries 資料表，是一次成功分析產出的持久化記錄。
// id 與 created_at 由持久層指派，之後不再變動。
type Entry struct {
	ID             string           `json:"id"`
	CreatedAt      time.Time        `json:"created_at"`
	SourceType     string           `json:"source_type"` // source_app 的小寫形式
	SourceApp      JsonNullString   `json:"source_app"`
	SourceURL      JsonNullString   `json:"source_url"` // 僅在可重建深層連結時才有值
	ContentText    string           `json:"content_text"`
	ContentSummary JsonNullString   `json:"content_summary"` // 保留給日後摘要功能，建立時永遠為 null
	ScreenshotURL  string           `json:"screenshot_url"`
	Title          string           `json:"title"`
	Category       string           `json:"category"`
	Tags           []string         `json:"tags"`
	Metadata       SourceMetadata   `json:"metadata"`
	AIConfidence   JsonNullInt64    `json:"ai_confidence"`
	AIAnalysis     *AIAnalysisAudit `json:"ai_analysis"`
}
