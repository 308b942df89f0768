package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Agi      AgiConfig
	Intercom IntercomConfig
	Chatbot  ChatbotConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	JWTSecret          string
	DocsTeamEmail      string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AgiConfig struct {
	APIKey        string
	BaseURL       string
	AgentName     string
	MaxDocChars   int
	PollInterval  time.Duration
	StatusTimeout time.Duration
}

type IntercomConfig struct {
	AccessToken string
	APIBase     string
	FromType    string
	FromId      string
}

type ChatbotConfig struct {
	SimilarityThreshold  float64
	RepeatCountThreshold int
	RepeatWindow         time.Duration
	MinQueryLen          int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			DocsTeamEmail:      getEnv("DOCS_TEAM_EMAIL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "OnboardingAI"),
		},
		Agi: AgiConfig{
			APIKey:        getEnv("AGI_API_KEY", ""),
			BaseURL:       getEnv("AGI_BASE_URL", ""),
			AgentName:     getEnv("AGI_AGENT_NAME", "agi-0"),
			MaxDocChars:   getEnvAsInt("AGI_MAX_DOC_CHARS", 20000),
			PollInterval:  time.Duration(getEnvAsFloat("AGI_POLL_INTERVAL_SECONDS", 1.0) * float64(time.Second)),
			StatusTimeout: time.Duration(getEnvAsInt("AGI_TIMEOUT_SECONDS", 90)) * time.Second,
		},
		Intercom: IntercomConfig{
			AccessToken: getEnv("INTERCOM_ACCESS_TOKEN", ""),
			APIBase:     getEnv("INTERCOM_API_BASE", "https://api.intercom.io"),
			FromType:    getEnv("INTERCOM_FROM_TYPE", "admin"),
			FromId:      getEnv("INTERCOM_FROM_ID", ""),
		},
		Chatbot: ChatbotConfig{
			SimilarityThreshold:  getEnvAsFloat("SIMILARITY_THRESHOLD", 0.72),
			RepeatCountThreshold: getEnvAsInt("REPEAT_COUNT_THRESHOLD", 3),
			RepeatWindow:         time.Duration(getEnvAsInt("REPEAT_WINDOW_SECONDS", 600)) * time.Second,
			MinQueryLen:          getEnvAsInt("MIN_QUERY_LENGTH", 12),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
