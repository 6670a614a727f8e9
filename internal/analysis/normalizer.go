package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"ScreenMemo/internal/models"
)

// NormalizeSourceURL 依來源平台與 metadata 重建指回原始內容的深層連結。
// 純函式，無 I/O。無法重建時回傳空字串，該 Entry 仍然有效。
func NormalizeSourceURL(sourceApp string, meta models.SourceMetadata) string {
	switch models.SourceApp(sourceApp) {
	case models.SourceAppYouTube:
		if meta.VideoID == nil || *meta.VideoID == "" {
			return ""
		}
		url := fmt.Sprintf("https://www.youtube.com/watch?v=%s", *meta.VideoID)
		if meta.Timestamp != nil && *meta.Timestamp != "" {
			url += fmt.Sprintf("&t=%d", TimestampToSeconds(*meta.Timestamp))
		}
		return url
	case models.SourceAppTwitter:
		if meta.TweetURL == nil || *meta.TweetURL == "" {
			return ""
		}
		return *meta.TweetURL
	case models.SourceAppInstagram:
		if meta.PostURL == nil || *meta.PostURL == "" {
			return ""
		}
		return *meta.PostURL
	}
	return ""
}

// TimestampToSeconds 將 "MM:SS" 或 "HH:MM:SS" 轉為秒數。
// 其他段數或無法解析的段一律回傳 0（視為「沒有時間戳」），不回傳錯誤。
func TimestampToSeconds(timestamp string) int {
	parts := strings.Split(strings.TrimSpace(timestamp), ":")
	values := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		values[i] = n
	}
	switch len(values) {
	case 2: // MM:SS
		return values[0]*60 + values[1]
	case 3: // HH:MM:SS
		return values[0]*3600 + values[1]*60 + values[2]
	}
	return 0
}
