package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken  string
	TelegramChatID string

	OpenWeatherKey string
	CityName       string

	AdviceProvider string // gemini, openai, anthropic, or empty for rule-based only
	GeminiKey      string
	OpenAIKey      string
	AnthropicKey   string
	LLMModel       string

	DataFile     string // plant database (data.js)
	StateDir     string // history/state/weather files live here
	StoreBackend string // file or sqlite
	DatabasePath string

	DedupWindow time.Duration
	FeedMode    string // calendar or rotation

	SendCron     string // daemon mode only
	PollInterval time.Duration
}

func Load() *Config {
	_ = godotenv.Load() // ignore error if no .env

	return &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),
		OpenWeatherKey: os.Getenv("OPENWEATHER_API_KEY"),
		CityName:       envOr("CITY_NAME", "Moscow"),
		AdviceProvider: os.Getenv("ADVICE_PROVIDER"),
		GeminiKey:      os.Getenv("GEMINI_API_KEY"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		LLMModel:       os.Getenv("LLM_MODEL"),
		DataFile:       envOr("DATA_FILE", "data.js"),
		StateDir:       envOr("STATE_DIR", "."),
		StoreBackend:   envOr("STORE_BACKEND", "file"),
		DatabasePath:   envOr("DATABASE_PATH", "./garden.db"),
		DedupWindow:    time.Duration(envInt("DEDUP_WINDOW_SECONDS", 60)) * time.Second,
		FeedMode:       envOr("FEED_MODE", "calendar"),
		SendCron:       envOr("SEND_CRON", "0 9 * * *"),
		PollInterval:   time.Duration(envInt("POLL_INTERVAL_SECONDS", 300)) * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
