package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// SupportedImageMIMETypes 列出視覺分析接受的截圖格式
var SupportedImageMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// Client 結構用於與 Gemini API 互動
type Client struct {
	visionModel     *genai.GenerativeModel
	visionModelName string
}

// NewClient 建立一個 Gemini 客戶端實例
func NewClient(apiKey string, visionModelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 不得為空")
	}
	if visionModelName == "" {
		visionModelName = "gemini-1.5-flash-latest"
		log.Printf("警告：[Gemini Client] 未提供視覺分析模型名稱，使用預設值: %s\n", visionModelName)
	}

	ctx := context.Background()
	genaiSDKClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("無法建立 Gemini GenAI SDK 客戶端: %w", err)
	}

	model := genaiSDKClient.GenerativeModel(visionModelName)
	var genConfig genai.GenerationConfig
	genConfig.ResponseMIMEType = "application/json"
	model.GenerationConfig = genConfig
	// JSON 回應所需的 token 預算
	model.SetMaxOutputTokens(1024)
	log.Printf("資訊：[Gemini Client] 視覺分析模型 '%s' 初始化成功。\n", visionModelName)

	return &Client{
		visionModel:     model,
		visionModelName: visionModelName,
	}, nil
}

// ModelName 回傳視覺模型識別字串，供 Entry 的 ai_analysis 稽核記錄使用
func (c *Client) ModelName() string {
	return c.visionModelName
}

// AnalyzeScreenshot 向 Gemini API 發送截圖與提示以進行分析，
// 回傳模型的原始文字回應（不做任何清理，結構化解析交由 internal/analysis）。
func (c *Client) AnalyzeScreenshot(ctx context.Context, imageData []byte, mimeType string, prompt string) (string, error) {
	log.Printf("資訊：[Gemini Client] AnalyzeScreenshot - 開始分析截圖 (大小: %d bytes, 類型: %s)\n", len(imageData), mimeType)
	if len(imageData) == 0 {
		return "", fmt.Errorf("要分析的截圖內容不得為空")
	}
	if !SupportedImageMIMETypes[mimeType] {
		return "", fmt.Errorf("不支援的截圖 MIME 類型: '%s'", mimeType)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("截圖分析的 Prompt 不得為空")
	}

	imagePart := genai.Blob{MIMEType: mimeType, Data: imageData}
	requestParts := []genai.Part{imagePart, genai.Text(prompt)}
	log.Println("資訊：[Gemini Client] AnalyzeScreenshot - 正在向 Gemini API 發送請求...")
	resp, err := c.visionModel.GenerateContent(ctx, requestParts...)
	if err != nil {
		return "", fmt.Errorf("Gemini API 截圖分析 GenerateContent 失敗: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("Gemini API 截圖分析回應無效或為空 (nil response or no candidates)")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
			if candidate.SafetyRatings != nil {
				for _, rating := range candidate.SafetyRatings {
					log.Printf("警告：[Gemini Client] 安全評級 (截圖分析) - Category: %s, Probability: %s\n", rating.Category, rating.Probability)
				}
			}
			return "", fmt.Errorf("Gemini API 截圖分析回應無效或內容被阻止，原因: %s", candidate.FinishReason.String())
		}
		return "", fmt.Errorf("Gemini API 截圖分析回應無效或為空 (no content parts, FinishReason: %s)", candidate.FinishReason.String())
	}

	var responseTextBuilder strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseTextBuilder.WriteString(string(txt))
		} else {
			log.Printf("警告：[Gemini Client] AnalyzeScreenshot - 收到非預期的 Part 類型: %T\n", part)
		}
	}
	rawResponseText := responseTextBuilder.String()
	if strings.TrimSpace(rawResponseText) == "" {
		return "", fmt.Errorf("Gemini API 截圖分析回傳的內容為空")
	}
	log.Printf("資訊：[Gemini Client] AnalyzeScreenshot - 收到 API 的原始文字回應 (長度: %d)\n", len(rawResponseText))
	return rawResponseText, nil
}
