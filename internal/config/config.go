package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ScreenshotAnalysisPrompts 結構：版本化的截圖分析 Prompt
type ScreenshotAnalysisPrompts struct {
	CurrentVersion string            `mapstructure:"currentVersion"`
	Versions       map[string]string `mapstructure:"versions"`
}

// Current 回傳目前版本的 Prompt 內容
func (p ScreenshotAnalysisPrompts) Current() (string, error) {
	prompt, ok := p.Versions[p.CurrentVersion]
	if !ok || strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("找不到版本 '%s' 的截圖分析 Prompt", p.CurrentVersion)
	}
	return prompt, nil
}

// PromptConfig 結構
type PromptConfig struct {
	ScreenshotAnalysis ScreenshotAnalysisPrompts `mapstructure:"screenshotAnalysis"`
}

// CleanupConfig 孤兒截圖清掃任務設定
type CleanupConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	CronSpec    string `mapstructure:"cronSpec"`
	MinAgeHours int    `mapstructure:"minAgeHours"`
}

// Config 結構
type Config struct {
	AppName      string             `mapstructure:"appName"`
	Server       ServerConfig       `mapstructure:"server"`
	GeminiClient GeminiClientConfig `mapstructure:"geminiClient"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Prompts      PromptConfig       `mapstructure:"prompts"`
	Cleanup      CleanupConfig      `mapstructure:"cleanup"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}
type GeminiClientConfig struct {
	APIKey      string `mapstructure:"apiKey"`
	VisionModel string `mapstructure:"visionModel"`
}
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
}

// StorageConfig 截圖資產儲存設定，driver 可為 "gcs" 或 "filesystem"
type StorageConfig struct {
	Driver     string           `mapstructure:"driver"`
	GCS        GCSConfig        `mapstructure:"gcs"`
	FileSystem FileSystemConfig `mapstructure:"fileSystem"`
}
type GCSConfig struct {
	Bucket    string `mapstructure:"bucket"`
	CDNDomain string `mapstructure:"cdnDomain"`
}
type FileSystemConfig struct {
	ScreenshotPath string `mapstructure:"screenshotPath"`
	PublicBaseURL  string `mapstructure:"publicBaseURL"`
}

// DefaultScreenshotAnalysisPrompt 是預設的截圖分析指令。
// 變更擷取欄位時，必須同步更新 internal/analysis 的解析器。
const DefaultScreenshotAnalysisPrompt = `Analyze this screenshot and extract information in JSON format.

Identify:
1. Source app (YouTube, Twitter, Instagram, or other)
2. Content type (video, tweet, post, reel, article)
3. Main text/quote (extract verbatim if visible)
4. For YouTube: Extract timestamp if visible (format: MM:SS or HH:MM:SS)
5. For Twitter: Extract author handle if visible
6. For Instagram: Extract username if visible
7. Generate a 5-8 word title summarizing the content
8. Categorize: video, social, article, or other
9. Confidence score (0-100) - how confident are you about the extraction?

Return ONLY valid JSON (no markdown, no explanation):
{
  "source_app": "YouTube" | "Twitter" | "Instagram" | "Other",
  "content_type": "video" | "tweet" | "post" | "reel" | "article" | "other",
  "text": "extracted quote or main text here",
  "title": "5-8 word summary",
  "category": "video" | "social" | "article" | "other",
  "metadata": {
    "timestamp": "12:34" (for YouTube),
    "author": "@username" (for Twitter),
    "username": "@username" (for Instagram),
    "video_id": "abc123" (if you can extract from URL),
    "tweet_url": "full URL" (if visible),
    "post_url": "full URL" (if visible)
  },
  "confidence": 85
}`

// Load 載入設定檔，找不到檔案時退回預設值與環境變數
func Load(configPath string, configName string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 設定預設值
	v.SetDefault("appName", "ScreenMemo")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("geminiClient.visionModel", "gemini-1.5-flash-latest")
	v.SetDefault("storage.driver", "gcs")
	v.SetDefault("storage.gcs.bucket", "screenshots")
	v.SetDefault("storage.fileSystem.screenshotPath", "./data/screenshots")
	v.SetDefault("storage.fileSystem.publicBaseURL", "http://localhost:8080/media")
	v.SetDefault("prompts.screenshotAnalysis.currentVersion", "default-v1")
	v.SetDefault("prompts.screenshotAnalysis.versions.default-v1", DefaultScreenshotAnalysisPrompt)
	v.SetDefault("cleanup.enabled", false)
	v.SetDefault("cleanup.cronSpec", "0 0 3 * * *")
	v.SetDefault("cleanup.minAgeHours", 24)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("警告：找不到設定檔，將使用預設值和環境變數。")
		} else {
			return nil, fmt.Errorf("讀取設定檔時發生錯誤: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("無法解析設定檔到結構: %w", err)
	}

	if cfg.GeminiClient.APIKey == "" {
		fmt.Println("警告：Gemini API Key 未設定！")
	}
	if cfg.Storage.Driver != "gcs" && cfg.Storage.Driver != "filesystem" {
		return nil, fmt.Errorf("不支援的截圖儲存驅動: '%s' (僅支援 gcs 或 filesystem)", cfg.Storage.Driver)
	}

	fmt.Println("資訊：設定載入成功。")
	return &cfg, nil
}
