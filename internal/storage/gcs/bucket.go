package gcs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"ScreenMemo/internal/config"
)

// BucketStorage 結構負責與 GCS 公開儲存桶互動。
// 儲存桶需事先設定為公開讀取，回傳的 URL 才能直接使用，不需簽名。
type BucketStorage struct {
	client    *storage.Client
	bucket    string
	cdnDomain string
}

// NewBucketStorage 建立一個 BucketStorage 實例
func NewBucketStorage(ctx context.Context, gcsCfg config.GCSConfig) (*BucketStorage, error) {
	if gcsCfg.Bucket == "" {
		return nil, fmt.Errorf("GCS 設定中的 bucket 不得為空")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("無法建立 GCS 儲存客戶端: %w", err)
	}
	log.Printf("資訊：BucketStorage 初始化成功，截圖儲存桶: %s", gcsCfg.Bucket)
	return &BucketStorage{
		client:    client,
		bucket:    gcsCfg.Bucket,
		cdnDomain: gcsCfg.CDNDomain,
	}, nil
}

// Close 關閉底層的 GCS 客戶端
func (bs *BucketStorage) Close() error {
	if bs.client != nil {
		return bs.client.Close()
	}
	return nil
}

// SaveScreenshot 將截圖原始位元組上傳到儲存桶並回傳公開 URL
func (bs *BucketStorage) SaveScreenshot(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if objectName == "" {
		return "", fmt.Errorf("SaveScreenshot 參數 objectName 不得為空")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("SaveScreenshot 參數 data 不得為空")
	}

	uploadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.client.Bucket(bs.bucket).Object(objectName).NewWriter(uploadCtx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("無法寫入截圖到 GCS 物件 '%s': %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("無法完成 GCS 物件 '%s' 的上傳: %w", objectName, err)
	}

	publicURL := bs.PublicURL(objectName)
	log.Printf("資訊：截圖成功上傳到 '%s'，公開 URL: %s", objectName, publicURL)
	return publicURL, nil
}

// PublicURL 解析物件的公開 URL，有設定 CDN 網域時優先使用
func (bs *BucketStorage) PublicURL(objectName string) string {
	if bs.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", strings.TrimSuffix(bs.cdnDomain, "/"), objectName)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucket, objectName)
}

// ListScreenshots 列出建立時間早於 olderThan 的物件名稱，供孤兒清掃任務使用
func (bs *BucketStorage) ListScreenshots(ctx context.Context, olderThan time.Time) ([]string, error) {
	var names []string
	it := bs.client.Bucket(bs.bucket).Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("列舉 GCS 物件失敗: %w", err)
		}
		if attrs.Created.Before(olderThan) {
			names = append(names, attrs.Name)
		}
	}
	return names, nil
}

// DeleteScreenshot 從儲存桶刪除物件
func (bs *BucketStorage) DeleteScreenshot(ctx context.Context, objectName string) error {
	if objectName == "" {
		return fmt.Errorf("DeleteScreenshot 參數 objectName 不得為空")
	}
	if err := bs.client.Bucket(bs.bucket).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("無法刪除 GCS 物件 '%s': %w", objectName, err)
	}
	log.Printf("資訊：已刪除 GCS 物件 '%s'", objectName)
	return nil
}
