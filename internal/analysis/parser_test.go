package analysis

import (
	"strings"
	"testing"

	"ScreenMemo/internal/models"
)

const validPayload = `{"source_app":"YouTube","content_type":"video","text":"quote","title":"five word title here","category":"video","metadata":{"video_id":"abc123","timestamp":"1:30"},"confidence":90}`

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "pure JSON object",
			raw:  `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "JSON with surrounding whitespace",
			raw:  "\n  {\"a\":1}  \n",
			want: `{"a":1}`,
		},
		{
			name: "JSON wrapped in prose",
			raw:  "Here is the result:\n{\"a\":1}\nHope that helps!",
			want: `{"a":1}`,
		},
		{
			name: "JSON in markdown code fence",
			raw:  "```json\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "JSON in bare code fence",
			raw:  "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "nested object spans correctly",
			raw:  "result: {\"a\":{\"b\":2}} done",
			want: `{"a":{"b":2}}`,
		},
		{
			name:    "no braces at all",
			raw:     "sorry, I could not analyze this image",
			wantErr: true,
		},
		{
			name:    "empty input",
			raw:     "   ",
			wantErr: true,
		},
		{
			name:    "braces but invalid JSON",
			raw:     "prose {not json at all} prose",
			wantErr: true,
		},
		{
			name:    "only closing before opening brace",
			raw:     "} nothing here {",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractJSON(%q) expected error, got %q", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParse_Valid(t *testing.T) {
	parsed, err := Parse(validPayload)
	if err != nil {
		t.Fatalf("Parse returned unexpected error: %v", err)
	}
	if parsed.SourceApp != "YouTube" {
		t.Errorf("SourceApp = %q, want YouTube", parsed.SourceApp)
	}
	if parsed.ContentType != "video" {
		t.Errorf("ContentType = %q, want video", parsed.ContentType)
	}
	if parsed.Text != "quote" {
		t.Errorf("Text = %q, want quote", parsed.Text)
	}
	if parsed.Title != "five word title here" {
		t.Errorf("Title = %q, want 'five word title here'", parsed.Title)
	}
	if parsed.Category != "video" {
		t.Errorf("Category = %q, want video", parsed.Category)
	}
	if parsed.Metadata.VideoID == nil || *parsed.Metadata.VideoID != "abc123" {
		t.Errorf("Metadata.VideoID = %v, want abc123", parsed.Metadata.VideoID)
	}
	if parsed.Metadata.Timestamp == nil || *parsed.Metadata.Timestamp != "1:30" {
		t.Errorf("Metadata.Timestamp = %v, want 1:30", parsed.Metadata.Timestamp)
	}
	if parsed.Confidence == nil || *parsed.Confidence != 90 {
		t.Errorf("Confidence = %v, want 90", parsed.Confidence)
	}
}

func TestParse_ProseWrapped(t *testing.T) {
	raw := "Here is the result:\n" + validPayload + "\nHope that helps!"
	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned unexpected error: %v", err)
	}
	if parsed.SourceApp != "YouTube" {
		t.Errorf("SourceApp = %q, want YouTube", parsed.SourceApp)
	}
}

func TestParse_MissingRequiredFields(t *testing.T) {
	fields := []string{"source_app", "content_type", "text", "title", "category"}
	for _, field := range fields {
		t.Run("missing "+field, func(t *testing.T) {
			raw := strings.Replace(validPayload, `"`+field+`"`, `"x_`+field+`"`, 1)
			if _, err := Parse(raw); err == nil {
				t.Errorf("Parse without %s should fail", field)
			}
		})
	}
}

func TestParse_NonStringRequiredField(t *testing.T) {
	raw := strings.Replace(validPayload, `"text":"quote"`, `"text":42`, 1)
	if _, err := Parse(raw); err == nil {
		t.Error("Parse with numeric text field should fail")
	}
}

func TestParse_EmptyText(t *testing.T) {
	raw := strings.Replace(validPayload, `"text":"quote"`, `"text":"   "`, 1)
	if _, err := Parse(raw); err == nil {
		t.Error("Parse with blank text should fail")
	}
}

func TestParse_ConfidenceClamping(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{"above range", "150", 100},
		{"below range", "-5", 0},
		{"in range", "85", 85},
		{"integral float", "85.0", 85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := strings.Replace(validPayload, `"confidence":90`, `"confidence":`+tt.in, 1)
			parsed, err := Parse(raw)
			if err != nil {
				t.Fatalf("Parse returned unexpected error: %v", err)
			}
			if parsed.Confidence == nil || *parsed.Confidence != tt.want {
				t.Errorf("Confidence = %v, want %d", parsed.Confidence, tt.want)
			}
		})
	}
}

func TestParse_ConfidenceRejected(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"fractional number", `"confidence":85.5`},
		{"string value", `"confidence":"85"`},
		{"string with non-numeric contents", `"confidence":"high"`},
		{"boolean value", `"confidence":true`},
		{"array value", `"confidence":[85]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := strings.Replace(validPayload, `"confidence":90`, tt.in, 1)
			if _, err := Parse(raw); err == nil {
				t.Errorf("Parse with %s should fail", tt.in)
			}
		})
	}
}

func TestParse_ConfidenceAbsent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"field missing", strings.Replace(validPayload, `,"confidence":90`, ``, 1)},
		{"explicit null", strings.Replace(validPayload, `"confidence":90`, `"confidence":null`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse returned unexpected error: %v", err)
			}
			if parsed.Confidence != nil {
				t.Errorf("Confidence = %v, want nil when absent", parsed.Confidence)
			}
		})
	}
}

func TestParse_MetadataSanitizedPerSource(t *testing.T) {
	raw := `{"source_app":"YouTube","content_type":"video","text":"quote","title":"t","category":"video",` +
		`"metadata":{"video_id":"abc","timestamp":"1:30","author":"@someone","tweet_url":"https://twitter.com/x","username":"@ig","post_url":"https://instagram.com/p/1"},` +
		`"confidence":80}`
	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned unexpected error: %v", err)
	}
	m := parsed.Metadata
	if m.VideoID == nil || *m.VideoID != "abc" {
		t.Errorf("VideoID = %v, want abc", m.VideoID)
	}
	if m.Timestamp == nil || *m.Timestamp != "1:30" {
		t.Errorf("Timestamp = %v, want 1:30", m.Timestamp)
	}
	if m.Author != nil || m.TweetURL != nil || m.Username != nil || m.PostURL != nil {
		t.Errorf("non-YouTube metadata fields should be dropped, got %+v", m)
	}
}

func TestParse_MetadataOtherKeepsOnlyVideoID(t *testing.T) {
	raw := `{"source_app":"Other","content_type":"other","text":"quote","title":"t","category":"other",` +
		`"metadata":{"video_id":"abc","timestamp":"1:30","author":"@someone"}}`
	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned unexpected error: %v", err)
	}
	want := models.SourceMetadata{VideoID: parsed.Metadata.VideoID}
	if parsed.Metadata != want {
		t.Errorf("Metadata = %+v, want only video_id kept", parsed.Metadata)
	}
	if parsed.Metadata.VideoID == nil || *parsed.Metadata.VideoID != "abc" {
		t.Errorf("VideoID = %v, want abc", parsed.Metadata.VideoID)
	}
}

func TestParse_MetadataAbsent(t *testing.T) {
	raw := `{"source_app":"Other","content_type":"other","text":"quote","title":"t","category":"other"}`
	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned unexpected error: %v", err)
	}
	if parsed.Metadata != (models.SourceMetadata{}) {
		t.Errorf("Metadata = %+v, want zero value when absent", parsed.Metadata)
	}
}
