package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"ScreenMemo/internal/models"
)

type stubAnalyzer struct {
	entry    *models.Entry
	err      error
	calls    int
	filename string
	mimeType string
}

func (s *stubAnalyzer) AnalyzeScreenshot(_ context.Context, imageData []byte, originalFilename string, mimeType string) (*models.Entry, error) {
	s.calls++
	s.filename = originalFilename
	s.mimeType = mimeType
	if s.err != nil {
		return nil, s.err
	}
	return s.entry, nil
}

func newScreenshotRequest(t *testing.T, fieldName, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart failed: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("writing part failed: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/analyze-screenshot", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body failed: %v", err)
	}
	return body["error"]
}

func TestAnalyzeScreenshotHandler_Success(t *testing.T) {
	entry := &models.Entry{
		ID:            "11111111-2222-3333-4444-555555555555",
		CreatedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		SourceType:    "youtube",
		SourceApp:     models.NullStringFrom("YouTube"),
		SourceURL:     models.NullStringFrom("https://www.youtube.com/watch?v=abc123&t=90"),
		ContentText:   "quote",
		ScreenshotURL: "https://storage.example.com/screenshots/1-shot.png",
		Title:         "five word title here",
		Category:      "video",
		Tags:          []string{},
		AIConfidence:  models.NullInt64From(90),
	}
	stub := &stubAnalyzer{entry: entry}
	handler := NewAnalyzeScreenshotHandler(stub)

	req := newScreenshotRequest(t, "screenshot", "shot.png", "image/png", []byte("png-bytes"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", rec.Code, rec.Body.String())
	}
	if stub.calls != 1 {
		t.Fatalf("analyzer calls = %d, want 1", stub.calls)
	}
	if stub.filename != "shot.png" || stub.mimeType != "image/png" {
		t.Errorf("analyzer received (%q, %q), want (shot.png, image/png)", stub.filename, stub.mimeType)
	}

	var got map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if got["id"] != entry.ID {
		t.Errorf("id = %v, want %s", got["id"], entry.ID)
	}
	if got["source_url"] != "https://www.youtube.com/watch?v=abc123&t=90" {
		t.Errorf("source_url = %v", got["source_url"])
	}
	if got["ai_confidence"] != float64(90) {
		t.Errorf("ai_confidence = %v, want 90", got["ai_confidence"])
	}
	if got["content_summary"] != nil {
		t.Errorf("content_summary = %v, want null", got["content_summary"])
	}
}

func TestAnalyzeScreenshotHandler_NoFileField(t *testing.T) {
	stub := &stubAnalyzer{}
	handler := NewAnalyzeScreenshotHandler(stub)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err := mw.WriteField("note", "not a file"); err != nil {
		t.Fatalf("WriteField failed: %v", err)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/analyze-screenshot", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := decodeErrorBody(t, rec); msg != "No screenshot provided" {
		t.Errorf("error = %q, want 'No screenshot provided'", msg)
	}
	if stub.calls != 0 {
		t.Error("analyzer should not be called when the file field is missing")
	}
}

func TestAnalyzeScreenshotHandler_UnsupportedImageType(t *testing.T) {
	stub := &stubAnalyzer{}
	handler := NewAnalyzeScreenshotHandler(stub)

	req := newScreenshotRequest(t, "screenshot", "shot.txt", "text/plain", []byte("not an image"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if msg := decodeErrorBody(t, rec); msg != "Unsupported image type" {
		t.Errorf("error = %q, want 'Unsupported image type'", msg)
	}
	if stub.calls != 0 {
		t.Error("analyzer should not be called for unsupported image types")
	}
}

func TestAnalyzeScreenshotHandler_PipelineFailure(t *testing.T) {
	stub := &stubAnalyzer{err: errors.New("模型回應格式無效: boom")}
	handler := NewAnalyzeScreenshotHandler(stub)

	req := newScreenshotRequest(t, "screenshot", "shot.png", "image/png", []byte("png-bytes"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	// 內部錯誤細節不得洩漏給呼叫端
	if msg := decodeErrorBody(t, rec); msg != "Failed to analyze screenshot" {
		t.Errorf("error = %q, want opaque message", msg)
	}
}

func TestAnalyzeScreenshotHandler_MethodNotAllowed(t *testing.T) {
	stub := &stubAnalyzer{}
	handler := NewAnalyzeScreenshotHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/analyze-screenshot", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if stub.calls != 0 {
		t.Error("analyzer should not be called for non-POST requests")
	}
}
