package services

import "errors"

// 管線各階段的哨兵錯誤。HTTP 層以 errors.Is 判斷後對外回覆
// 不透露細節的訊息，完整原因只寫入日誌。
var (
	// ErrAnalysisUnavailable 視覺模型呼叫失敗（傳輸或模型錯誤，不重試）
	ErrAnalysisUnavailable = errors.New("視覺模型分析服務無法使用")
	// ErrMalformedAnalysis 模型回應無法解析為有效的結構化記錄
	ErrMalformedAnalysis = errors.New("模型回應格式無效")
	// ErrStorageUnavailable 截圖上傳到資產儲存失敗
	ErrStorageUnavailable = errors.New("截圖儲存服務無法使用")
	// ErrPersistenceFailed Entry 寫入資料庫失敗
	ErrPersistenceFailed = errors.New("Entry 持久化失敗")
)
