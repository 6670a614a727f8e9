package services

import (
	"context"
	"time"
)

// VisionClient 介面定義了視覺模型分析操作
type VisionClient interface {
	AnalyzeScreenshot(ctx context.Context, imageData []byte, mimeType string, prompt string) (string, error)
	ModelName() string
}

// AssetStorage 介面定義了截圖資產儲存操作，
// 由 GCS 與本地檔案系統兩種驅動實作。
type AssetStorage interface {
	SaveScreenshot(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	PublicURL(objectName string) string
	ListScreenshots(ctx context.Context, olderThan time.Time) ([]string, error)
	DeleteScreenshot(ctx context.Context, objectName string) error
}
