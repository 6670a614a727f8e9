// Package analysis 處理視覺模型自由文字回應的結構化解析，
// 以及來源深層連結的重建。此套件內皆為純函式，不做任何 I/O。
package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"ScreenMemo/internal/models"
)

// rawPayload 對應模型輸出的 JSON 物件。
// 必填欄位使用指標，以便區分「缺漏」與「空值」。
type rawPayload struct {
	SourceApp   *string                `json:"source_app"`
	ContentType *string                `json:"content_type"`
	Text        *string                `json:"text"`
	Title       *string                `json:"title"`
	Category    *string                `json:"category"`
	Metadata    *models.SourceMetadata `json:"metadata"`
	Confidence  json.RawMessage        `json:"confidence"`
}

// ExtractJSON 從模型的自由文字回應中定位出內嵌的 JSON 物件。
// 先嘗試把整段文字當作 JSON 解析；失敗時移除 markdown 代碼塊標記、
// 清理無效字元，再取第一個 '{' 到最後一個 '}' 的片段。
// 注意：括號跨距是啟發式做法，正文中出現無關的 {} 可能導致誤判，
// 呼叫端依賴這種寬鬆行為，不要在此收緊。
func ExtractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", fmt.Errorf("模型回應為空")
	}
	if strings.HasPrefix(cleaned, "{") && strings.HasSuffix(cleaned, "}") && json.Valid([]byte(cleaned)) {
		return cleaned, nil
	}

	// 移除可能的 markdown 代碼塊標記
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}

	// 處理 UTF-8 編碼問題
	if !utf8.ValidString(cleaned) {
		cleaned = strings.ToValidUTF8(cleaned, "")
	}

	// 移除控制字元（保留換行與 tab，JSON 字串內的已跳脫字元不受影響）
	var sb strings.Builder
	for _, r := range cleaned {
		if (r >= 0 && r < 9) || (r > 10 && r < 13) || (r > 13 && r < 32) || r == 127 {
			continue
		}
		sb.WriteRune(r)
	}
	cleaned = strings.TrimPrefix(sb.String(), "\uFEFF")

	firstBrace := strings.Index(cleaned, "{")
	lastBrace := strings.LastIndex(cleaned, "}")
	if firstBrace == -1 || lastBrace <= firstBrace {
		return "", fmt.Errorf("回應中找不到 JSON 物件")
	}
	span := strings.TrimSpace(cleaned[firstBrace : lastBrace+1])
	if !json.Valid([]byte(span)) {
		return "", fmt.Errorf("擷取出的片段不是有效的 JSON")
	}
	return span, nil
}

// Parse 將模型的原始回應轉換為通過驗證的 ParsedAnalysis。
// 必填欄位（source_app, content_type, text, title, category）缺漏或型別錯誤時回傳錯誤；
// confidence 超出 [0,100] 時夾限而不拒絕（該值僅為模型自評，屬參考性質）。
func Parse(raw string) (*models.ParsedAnalysis, error) {
	span, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var payload rawPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, fmt.Errorf("無法將模型回應解析為預期結構: %w", err)
	}

	required := map[string]*string{
		"source_app":   payload.SourceApp,
		"content_type": payload.ContentType,
		"text":         payload.Text,
		"title":        payload.Title,
		"category":     payload.Category,
	}
	for field, value := range required {
		if value == nil {
			return nil, fmt.Errorf("模型回應缺少必填欄位 '%s'", field)
		}
	}
	if strings.TrimSpace(*payload.Text) == "" {
		return nil, fmt.Errorf("模型回應的 'text' 欄位為空")
	}

	parsed := &models.ParsedAnalysis{
		SourceApp:   *payload.SourceApp,
		ContentType: *payload.ContentType,
		Text:        *payload.Text,
		Title:       *payload.Title,
		Category:    *payload.Category,
	}

	if payload.Metadata != nil {
		parsed.Metadata = sanitizeMetadata(parsed.SourceApp, *payload.Metadata)
	}

	if len(payload.Confidence) > 0 && string(payload.Confidence) != "null" {
		confidence, err := integralConfidence(payload.Confidence)
		if err != nil {
			return nil, err
		}
		parsed.Confidence = &confidence
	}

	return parsed, nil
}

// integralConfidence 驗證 confidence 為 JSON 數值型整數並夾限到 [0,100]。
// 以原始 token 判斷型別：解碼到 json.Number 會把內容像數字的 JSON 字串
// 也當成數字接受，所以字串形式（如 "85"）必須在這裡先擋掉。
func integralConfidence(raw json.RawMessage) (int64, error) {
	token := strings.TrimSpace(string(raw))
	if token == "" || token[0] == '"' {
		return 0, fmt.Errorf("confidence 必須是 JSON 數值，但得到 %s", token)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("confidence 必須是 JSON 數值，但得到 %s: %w", token, err)
	}
	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("confidence 必須是整數，但得到 '%s'", n.String())
		}
		i = int64(f)
	}
	if i < 0 {
		i = 0
	} else if i > 100 {
		i = 100
	}
	return i, nil
}

// sanitizeMetadata 依來源平台保留允許的 metadata 欄位，
// 丟棄不屬於該平台的欄位，避免錯誤來源挾帶垃圾資料。
// video_id 對所有來源皆允許。
func sanitizeMetadata(sourceApp string, m models.SourceMetadata) models.SourceMetadata {
	out := models.SourceMetadata{VideoID: m.VideoID}
	switch models.SourceApp(sourceApp) {
	case models.SourceAppYouTube:
		out.Timestamp = m.Timestamp
	case models.SourceAppTwitter:
		out.Author = m.Author
		out.TweetURL = m.TweetURL
	case models.SourceAppInstagram:
		out.Username = m.Username
		out.PostURL = m.PostURL
	}
	return out
}
