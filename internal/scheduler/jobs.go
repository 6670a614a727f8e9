package scheduler

import (
	"log"

	"ScreenMemo/internal/services"
)

// CleanupJob 是一個排程任務，用於執行孤兒截圖清掃
type CleanupJob struct {
	cleanupService *services.CleanupService
}

// NewCleanupJob 建立一個 CleanupJob
func NewCleanupJob(cs *services.CleanupService) *CleanupJob {
	return &CleanupJob{cleanupService: cs}
}

// Run 實現 cron.Job 介面 (github.com/robfig/cron/v3)
func (j *CleanupJob) Run() {
	log.Println("資訊：執行排程任務 - 孤兒截圖清掃...")
	if err := j.cleanupService.Run(); err != nil {
		log.Printf("錯誤：孤兒截圖清掃排程任務執行失敗: %v", err)
	} else {
		log.Println("資訊：孤兒截圖清掃排程任務執行完成。")
	}
}
