package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"ScreenMemo/internal/config"
	"ScreenMemo/internal/web/handlers"
)

// CleanupService 負責清掃孤兒截圖：上傳成功但後續 Entry 寫入失敗時，
// 截圖會留在儲存中而沒有對應記錄。請求路徑本身不做補償回滾
// （維持既有可觀察行為），改由此任務定期刪除超過最低年齡、
// 且沒有任何 Entry 指向的物件。
type CleanupService struct {
	cfg     *config.Config
	db      handlers.DBStore
	storage AssetStorage
}

// NewCleanupService 建立 CleanupService 實例
func NewCleanupService(cfg *config.Config, db handlers.DBStore, storage AssetStorage) (*CleanupService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("CleanupService：設定不得為空")
	}
	if db == nil {
		return nil, fmt.Errorf("CleanupService：DBStore 不得為空")
	}
	if storage == nil {
		return nil, fmt.Errorf("CleanupService：AssetStorage 不得為空")
	}
	log.Println("資訊：CleanupService 初始化完成。")
	return &CleanupService{cfg: cfg, db: db, storage: storage}, nil
}

// Run 執行一輪孤兒截圖清掃
func (s *CleanupService) Run() error {
	minAge := time.Duration(s.cfg.Cleanup.MinAgeHours) * time.Hour
	if minAge <= 0 {
		minAge = 24 * time.Hour
	}
	cutoff := time.Now().Add(-minAge)
	log.Printf("資訊：[CleanupService] 開始清掃早於 %s 的孤兒截圖...\n", cutoff.Format(time.RFC3339))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	names, err := s.storage.ListScreenshots(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("列舉截圖物件失敗: %w", err)
	}

	var removed, kept int
	for _, name := range names {
		exists, err := s.db.HasEntryWithScreenshotURL(s.storage.PublicURL(name))
		if err != nil {
			log.Printf("警告：[CleanupService] 查詢截圖 '%s' 的 Entry 失敗，略過: %v\n", name, err)
			continue
		}
		if exists {
			kept++
			continue
		}
		if err := s.storage.DeleteScreenshot(ctx, name); err != nil {
			log.Printf("警告：[CleanupService] 刪除孤兒截圖 '%s' 失敗: %v\n", name, err)
			continue
		}
		removed++
	}

	log.Printf("資訊：[CleanupService] 清掃完成，檢查 %d 個物件，刪除 %d 個孤兒，保留 %d 個。\n", len(names), removed, kept)
	return nil
}
