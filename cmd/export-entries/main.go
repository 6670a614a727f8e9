package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"

	"ScreenMemo/internal/config"
	"ScreenMemo/internal/storage/mysql"
	"ScreenMemo/internal/web/handlers"
)

// 一次性把所有 Entry 匯出為 CSV 檔案
func main() {
	outputPath := flag.String("o", "entries.csv", "匯出的 CSV 檔案路徑")
	category := flag.String("category", "", "僅匯出指定 category 的 Entry")
	sourceType := flag.String("source-type", "", "僅匯出指定 source_type 的 Entry")
	flag.Parse()

	cfg, err := config.Load("configs", "config")
	if err != nil {
		log.Fatalf("無法載入配置: %v", err)
	}

	db, err := mysql.NewMySQLStore(cfg.Database)
	if err != nil {
		log.Fatalf("無法連接到資料庫: %v", err)
	}
	defer db.Close()

	entries, err := db.ListEntries(10000, 0, *category, *sourceType)
	if err != nil {
		log.Fatalf("無法獲取 Entry 數據: %v", err)
	}
	log.Printf("資訊：獲取到 %d 筆 Entry。", len(entries))

	outFile, err := os.Create(*outputPath)
	if err != nil {
		log.Fatalf("無法建立輸出檔案 '%s': %v", *outputPath, err)
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)
	if err := handlers.WriteEntriesCSV(writer, entries); err != nil {
		log.Fatalf("寫入 CSV 失敗: %v", err)
	}

	log.Printf("資訊：已將 %d 筆 Entry 匯出到 '%s'。", len(entries), *outputPath)
}
