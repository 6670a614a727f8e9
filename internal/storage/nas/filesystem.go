package nas

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ScreenMemo/internal/config"
)

// FileSystemStorage 結構負責把截圖存放在本地檔案系統，
// 作為 GCS 以外的另一種資產儲存驅動。物件以 {epochMillis}-{原始檔名}
// 為鍵平放在根目錄下，公開 URL 由 /media/ 路由提供。
type FileSystemStorage struct {
	basePath      string
	publicBaseURL string
}

// NewFileSystemStorage 建立一個 FileSystemStorage 實例。
// 它會檢查 basePath 是否存在，如果不存在則嘗試建立它。
func NewFileSystemStorage(fsCfg config.FileSystemConfig) (*FileSystemStorage, error) {
	if fsCfg.ScreenshotPath == "" {
		return nil, fmt.Errorf("檔案系統儲存設定中的 screenshotPath 不得為空")
	}
	if fsCfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("檔案系統儲存設定中的 publicBaseURL 不得為空")
	}

	absBasePath, err := filepath.Abs(fsCfg.ScreenshotPath)
	if err != nil {
		return nil, fmt.Errorf("無法取得 screenshotPath 的絕對路徑 '%s': %w", fsCfg.ScreenshotPath, err)
	}

	if _, err := os.Stat(absBasePath); os.IsNotExist(err) {
		log.Printf("資訊：截圖根目錄 '%s' 不存在，正在嘗試建立...", absBasePath)
		if err := os.MkdirAll(absBasePath, os.ModePerm); err != nil {
			return nil, fmt.Errorf("無法建立截圖根目錄 '%s': %w", absBasePath, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("檢查截圖根目錄 '%s' 時發生錯誤: %w", absBasePath, err)
	}

	log.Printf("資訊：FileSystemStorage 初始化成功，截圖根路徑設定為: %s", absBasePath)
	return &FileSystemStorage{
		basePath:      absBasePath,
		publicBaseURL: strings.TrimSuffix(fsCfg.PublicBaseURL, "/"),
	}, nil
}

// BasePath 回傳截圖根目錄的絕對路徑，供 /media/ 路由使用
func (fs *FileSystemStorage) BasePath() string {
	return fs.basePath
}

// SaveScreenshot 將截圖寫入檔案系統並回傳公開 URL
func (fs *FileSystemStorage) SaveScreenshot(_ context.Context, objectName string, data []byte, _ string) (string, error) {
	if objectName == "" {
		return "", fmt.Errorf("SaveScreenshot 參數 objectName 不得為空")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("SaveScreenshot 參數 data 不得為空")
	}
	// 物件鍵必須是單一檔名，防止路徑遍歷
	if filepath.Base(objectName) != objectName {
		return "", fmt.Errorf("SaveScreenshot 參數 objectName 含有路徑字元: '%s'", objectName)
	}

	targetPath := filepath.Join(fs.basePath, objectName)
	if err := os.WriteFile(targetPath, data, 0644); err != nil {
		return "", fmt.Errorf("無法寫入截圖檔案到 '%s': %w", targetPath, err)
	}
	publicURL := fs.PublicURL(objectName)
	log.Printf("資訊：截圖成功儲存到 '%s'，公開 URL: %s", targetPath, publicURL)
	return publicURL, nil
}

// PublicURL 解析物件的公開 URL
func (fs *FileSystemStorage) PublicURL(objectName string) string {
	return fs.publicBaseURL + "/" + objectName
}

// ListScreenshots 列出修改時間早於 olderThan 的截圖檔名，供孤兒清掃任務使用
func (fs *FileSystemStorage) ListScreenshots(_ context.Context, olderThan time.Time) ([]string, error) {
	dirEntries, err := os.ReadDir(fs.basePath)
	if err != nil {
		return nil, fmt.Errorf("讀取截圖根目錄 '%s' 失敗: %w", fs.basePath, err)
	}
	var names []string
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}
		info, err := dirEntry.Info()
		if err != nil {
			log.Printf("警告：無法取得截圖檔案 '%s' 的資訊: %v", dirEntry.Name(), err)
			continue
		}
		if info.ModTime().Before(olderThan) {
			names = append(names, dirEntry.Name())
		}
	}
	return names, nil
}

// DeleteScreenshot 從檔案系統刪除截圖
func (fs *FileSystemStorage) DeleteScreenshot(_ context.Context, objectName string) error {
	if objectName == "" || filepath.Base(objectName) != objectName {
		return fmt.Errorf("DeleteScreenshot 參數 objectName 無效: '%s'", objectName)
	}
	targetPath := filepath.Join(fs.basePath, objectName)
	if err := os.Remove(targetPath); err != nil {
		return fmt.Errorf("無法刪除截圖檔案 '%s': %w", targetPath, err)
	}
	log.Printf("資訊：已刪除截圖檔案 '%s'", targetPath)
	return nil
}
