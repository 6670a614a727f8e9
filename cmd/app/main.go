package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ScreenMemo/internal/clients/gemini"
	"ScreenMemo/internal/config"
	"ScreenMemo/internal/scheduler"
	"ScreenMemo/internal/services"
	"ScreenMemo/internal/storage/gcs"
	"ScreenMemo/internal/storage/mysql"
	"ScreenMemo/internal/storage/nas"
	"ScreenMemo/internal/web"
	"ScreenMemo/internal/web/handlers"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load("./configs", "config")
	if err != nil {
		log.Fatalf("錯誤：無法載入設定: %v", err)
	}
	log.Println("資訊：應用程式設定載入成功。")

	// 資料庫遷移
	migrationPath := "file://scripts/migrate/mysql"
	dbDSNForMigrate := fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
		cfg.Database.User, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	log.Printf("資訊：準備執行資料庫遷移，來源: %s, DSN 使用資料庫: %s", migrationPath, cfg.Database.DBName)
	m, err := migrate.New(migrationPath, dbDSNForMigrate)
	if err != nil {
		log.Fatalf("錯誤：建立遷移實例失敗: %v", err)
	}
	currentVersion, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Fatalf("錯誤：獲取資料庫遷移版本失敗: %v", err)
	}
	if dirty {
		log.Fatalf("錯誤：資料庫處於 dirty 狀態 (版本 %d)，遷移失敗。", currentVersion)
	}
	log.Printf("資訊：目前資料庫版本: %d。開始應用遷移...", currentVersion)
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("錯誤：執行資料庫遷移 (m.Up) 失敗: %v", err)
	} else if err == migrate.ErrNoChange {
		log.Println("資訊：資料庫結構已是最新，無需遷移。")
	} else {
		newVersion, _, _ := m.Version()
		log.Printf("資訊：資料庫遷移成功完成，版本更新至: %d。", newVersion)
	}

	// 依設定選擇截圖資產儲存驅動
	var assetStorage services.AssetStorage
	switch cfg.Storage.Driver {
	case "gcs":
		bucketStorage, err := gcs.NewBucketStorage(context.Background(), cfg.Storage.GCS)
		if err != nil {
			log.Fatalf("錯誤：初始化 GCS 截圖儲存失敗: %v", err)
		}
		defer bucketStorage.Close()
		assetStorage = bucketStorage
	case "filesystem":
		fsStorage, err := nas.NewFileSystemStorage(cfg.Storage.FileSystem)
		if err != nil {
			log.Fatalf("錯誤：初始化檔案系統截圖儲存失敗: %v", err)
		}
		assetStorage = fsStorage
	default:
		log.Fatalf("錯誤：不支援的截圖儲存驅動: %s", cfg.Storage.Driver)
	}

	var dbStore handlers.DBStore
	realDBStore, err := mysql.NewMySQLStore(cfg.Database)
	if err != nil {
		log.Fatalf("錯誤：初始化 MySQL 資料庫連線失敗: %v", err)
	}
	dbStore = realDBStore
	defer realDBStore.Close()

	geminiClient, err := gemini.NewClient(cfg.GeminiClient.APIKey, cfg.GeminiClient.VisionModel)
	if err != nil {
		log.Fatalf("錯誤：初始化 Gemini 客戶端失敗: %v", err)
	}

	ingestSvc, err := services.NewIngestService(cfg, dbStore, assetStorage, geminiClient)
	if err != nil {
		log.Fatalf("錯誤：初始化截圖攝取服務失敗: %v", err)
	}

	if cfg.Cleanup.Enabled {
		log.Println("資訊：孤兒截圖清掃已在設定檔中啟用，正在初始化排程器...")
		cleanupSvc, err := services.NewCleanupService(cfg, dbStore, assetStorage)
		if err != nil {
			log.Fatalf("錯誤：初始化清掃服務失敗: %v", err)
		}
		appScheduler := scheduler.NewScheduler(cleanupSvc, cfg.Cleanup.CronSpec)
		appScheduler.Start()
		log.Println("資訊：排程器已啟動。")
		defer appScheduler.Stop()
	} else {
		log.Println("資訊：孤兒截圖清掃已在設定檔中禁用。")
	}

	router := web.SetupRouter(cfg, dbStore, ingestSvc)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("資訊：HTTP 伺服器正在監聽 %s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("錯誤：HTTP 伺服器監聽失敗: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("資訊：收到關閉訊號，正在關閉應用程式...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("錯誤：HTTP 伺服器優雅關閉失敗: %v", err)
	}
	log.Println("資訊：HTTP 伺服器已關閉。")
	log.Println("資訊：應用程式已成功關閉。")
}
