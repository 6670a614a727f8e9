package web

import (
	"log"
	"net/http"

	"ScreenMemo/internal/config"
	"ScreenMemo/internal/web/handlers"
)

// SetupRouter 組裝所有 HTTP 路由。
// analyzer 以介面傳入，測試時可替換為假實作。
func SetupRouter(appConfig *config.Config, db handlers.DBStore, analyzer handlers.ScreenshotAnalyzer) http.Handler {
	if analyzer == nil {
		log.Panicln("SetupRouter：ScreenshotAnalyzer 不得為空")
	}
	mux := http.NewServeMux()

	// 截圖攝取端點
	analyzeHandler := handlers.NewAnalyzeScreenshotHandler(analyzer)
	mux.Handle("/analyze-screenshot", analyzeHandler)

	// Entry 列表與匯出
	entriesHandler := handlers.NewEntriesHandler(db)
	mux.Handle("/entries", entriesHandler)
	exportHandler := handlers.NewExportHandler(db)
	mux.Handle("/export", exportHandler)

	// 本地檔案系統驅動時，由 /media/ 提供截圖公開存取
	if appConfig.Storage.Driver == "filesystem" {
		mediaHandler, err := handlers.NewMediaHandler(appConfig.Storage.FileSystem.ScreenshotPath)
		if err != nil {
			log.Fatalf("錯誤：無法建立 Media Handler: %v", err)
		}
		mux.Handle("/media/", http.StripPrefix("/media/", mediaHandler))
	}

	log.Println("資訊：HTTP 路由設定完成。")
	return mux
}
