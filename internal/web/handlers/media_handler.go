package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MediaHandler 負責提供本地檔案系統驅動儲存的截圖。
// 僅在 storage.driver 為 filesystem 時才會被註冊。
type MediaHandler struct {
	basePath string // 截圖儲存的絕對根路徑
}

// NewMediaHandler 建立一個 MediaHandler 實例
func NewMediaHandler(basePath string) (*MediaHandler, error) {
	if basePath == "" {
		return nil, fmt.Errorf("MediaHandler: 截圖根路徑不得為空")
	}
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("MediaHandler: 無法取得截圖根路徑的絕對路徑 '%s': %w", basePath, err)
	}
	log.Printf("資訊：[MediaHandler] 初始化成功，截圖服務根路徑: %s", absBasePath)
	return &MediaHandler{basePath: absBasePath}, nil
}

// ServeHTTP 實現 http.Handler 介面。
// 它期望收到已被 http.StripPrefix 移除 "/media/" 前綴的物件鍵。
func (h *MediaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	objectName := strings.TrimPrefix(r.URL.Path, "/")
	if objectName == "" || strings.HasSuffix(objectName, "/") {
		http.Error(w, "無效的截圖路徑", http.StatusBadRequest)
		return
	}

	// filepath.Join 會清理路徑；再檢查最終路徑仍在根路徑下，防止路徑遍歷
	fullPath := filepath.Join(h.basePath, objectName)
	cleanedFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		log.Printf("錯誤：[MediaHandler] 無法解析截圖絕對路徑 '%s': %v", fullPath, err)
		http.Error(w, "內部伺服器錯誤", http.StatusInternalServerError)
		return
	}
	if !strings.HasPrefix(cleanedFullPath, h.basePath) {
		log.Printf("警告：[MediaHandler] 偵測到潛在的路徑遍歷嘗試: '%s' (解析為 '%s')", objectName, cleanedFullPath)
		http.Error(w, "禁止存取", http.StatusForbidden)
		return
	}

	if _, err := os.Stat(cleanedFullPath); os.IsNotExist(err) {
		log.Printf("警告：[MediaHandler] 請求的截圖檔案不存在: %s", cleanedFullPath)
		http.NotFound(w, r)
		return
	} else if err != nil {
		log.Printf("錯誤：[MediaHandler] 檢查截圖檔案 '%s' 時發生錯誤: %v", cleanedFullPath, err)
		http.Error(w, "內部伺服器錯誤", http.StatusInternalServerError)
		return
	}

	// http.ServeFile 會自動處理 Content-Type, ETag, Range requests 等
	http.ServeFile(w, r, cleanedFullPath)
}
