package models

// SourceApp 是截圖來源平台（模型輸出的原始大小寫）
type SourceApp string

const (
	SourceAppYouTube   SourceApp = "YouTube"
	SourceAppTwitter   SourceApp = "Twitter"
	SourceAppInstagram SourceApp = "Instagram"
	SourceAppOther     SourceApp = "Other"
)

// SourceMetadata 是依來源平台而異的選填欄位。
// 欄位缺席時保持缺席（omitempty），不以空字串補齊。
type SourceMetadata struct {
	Timestamp *string `json:"timestamp,omitempty"` // YouTube，格式 MM:SS 或 HH:MM:SS
	Author    *string `json:"author,omitempty"`    // Twitter
	Username  *string `json:"username,omitempty"`  // Instagram
	VideoID   *string `json:"video_id,omitempty"`  // 任一來源皆可
	TweetURL  *string `json:"tweet_url,omitempty"` // Twitter
	PostURL   *string `json:"post_url,omitempty"`  // Instagram
}

// ParsedAnalysis 是通過驗證後的模型分析結果，僅存活於單一請求範圍內。
type ParsedAnalysis struct {
	SourceApp   string         `json:"source_app"`
	ContentType string         `json:"content_type"`
	Text        string         `json:"text"`
	Title       string         `json:"title"`
	Category    string         `json:"category"`
	Metadata    SourceMetadata `json:"metadata"`
	Confidence  *int64         `json:"confidence,omitempty"` // 已夾限在 [0,100]
}
