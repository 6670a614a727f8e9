package analysis

import (
	"testing"

	"ScreenMemo/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func TestTimestampToSeconds(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		want      int
	}{
		{"MM:SS", "1:30", 90},
		{"MM:SS zero", "0:00", 0},
		{"MM:SS large minutes", "59:59", 3599},
		{"HH:MM:SS", "01:02:03", 3723},
		{"HH:MM:SS with hours", "2:00:05", 7205},
		{"surrounding spaces", " 2:05 ", 125},
		{"single token", "90", 0},
		{"four tokens", "1:2:3:4", 0},
		{"non-numeric segment", "ab:cd", 0},
		{"negative segment", "-1:30", 0},
		{"empty string", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimestampToSeconds(tt.timestamp); got != tt.want {
				t.Errorf("TimestampToSeconds(%q) = %d, want %d", tt.timestamp, got, tt.want)
			}
		})
	}
}

func TestNormalizeSourceURL(t *testing.T) {
	tests := []struct {
		name      string
		sourceApp string
		meta      models.SourceMetadata
		want      string
	}{
		{
			name:      "YouTube with video id and timestamp",
			sourceApp: "YouTube",
			meta:      models.SourceMetadata{VideoID: strPtr("abc123"), Timestamp: strPtr("1:30")},
			want:      "https://www.youtube.com/watch?v=abc123&t=90",
		},
		{
			name:      "YouTube with video id only",
			sourceApp: "YouTube",
			meta:      models.SourceMetadata{VideoID: strPtr("abc123")},
			want:      "https://www.youtube.com/watch?v=abc123",
		},
		{
			name:      "YouTube with malformed timestamp falls back to zero seconds",
			sourceApp: "YouTube",
			meta:      models.SourceMetadata{VideoID: strPtr("abc123"), Timestamp: strPtr("oops")},
			want:      "https://www.youtube.com/watch?v=abc123&t=0",
		},
		{
			name:      "YouTube without video id",
			sourceApp: "YouTube",
			meta:      models.SourceMetadata{Timestamp: strPtr("1:30")},
			want:      "",
		},
		{
			name:      "Twitter with tweet url",
			sourceApp: "Twitter",
			meta:      models.SourceMetadata{TweetURL: strPtr("https://twitter.com/user/status/1")},
			want:      "https://twitter.com/user/status/1",
		},
		{
			name:      "Twitter without tweet url",
			sourceApp: "Twitter",
			meta:      models.SourceMetadata{Author: strPtr("@user")},
			want:      "",
		},
		{
			name:      "Instagram with post url",
			sourceApp: "Instagram",
			meta:      models.SourceMetadata{PostURL: strPtr("https://instagram.com/p/xyz")},
			want:      "https://instagram.com/p/xyz",
		},
		{
			name:      "Instagram without post url",
			sourceApp: "Instagram",
			meta:      models.SourceMetadata{Username: strPtr("@user")},
			want:      "",
		},
		{
			name:      "Other never links",
			sourceApp: "Other",
			meta:      models.SourceMetadata{VideoID: strPtr("abc123")},
			want:      "",
		},
		{
			name:      "unknown source app",
			sourceApp: "TikTok",
			meta:      models.SourceMetadata{VideoID: strPtr("abc123")},
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSourceURL(tt.sourceApp, tt.meta); got != tt.want {
				t.Errorf("NormalizeSourceURL(%q, %+v) = %q, want %q", tt.sourceApp, tt.meta, got, tt.want)
			}
		})
	}
}
