package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config содержит настройки приложения
type Config struct {
	Port          string        // Порт HTTP сервера
	Debug         bool          // Режим отладки (уровень логирования)
	ModelPath     string        // Путь к артефакту скоринговой модели
	GeminiAPIKey  string        // Ключ Gemini API (пустой = обогащение выключено)
	GeminiModel   string        // Имя модели Gemini
	GeminiBaseURL string        // База Gemini API (переопределяется в тестах)
	GeminiTimeout time.Duration // Таймаут обращения к Gemini
	RedisAddr     string        // Адрес redis для кеша советов (пустой = кеш в памяти)
	RateLimit     int           // Лимит запросов на клиента за окно
	RateWindow    time.Duration // Окно rate limiter-а
}

// LoadConfig загружает конфигурацию из .env файла и переменных окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Файл .env не найден")
	}

	timeout, err := time.ParseDuration(getEnv("GEMINI_TIMEOUT", "6s"))
	if err != nil {
		timeout = 6 * time.Second
	}

	window, err := time.ParseDuration(getEnv("RATE_WINDOW", "1m"))
	if err != nil {
		window = time.Minute
	}

	limit, err := strconv.Atoi(getEnv("RATE_LIMIT", "60"))
	if err != nil || limit <= 0 {
		limit = 60
	}

	// GEMINI_API_KEY — документированный ключ, GOOGLE_API_KEY оставлен для совместимости
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	config := &Config{
		Port:          getEnv("PORT", "8080"),
		Debug:         getEnv("DEBUG", "0") != "0",
		ModelPath:     getEnv("MODEL_PATH", "model/loan_model.json"),
		GeminiAPIKey:  apiKey,
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiTimeout: timeout,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RateLimit:     limit,
		RateWindow:    window,
	}

	return config, nil
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
