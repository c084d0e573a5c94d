package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// Admin upload endpoint'leri için basit şifre koruması
	AdminPassword string

	// SMTP ayarları (doğrulama kodu e-postaları)
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SenderName string

	// Beyanname parse stratejisi: "text", "layout" veya "gemini"
	ParseStrategy string
	GeminiModel   string

	// Toplu PDF işleme
	ParseTimeout time.Duration // belge başına zaman aşımı
	BatchWorkers int           // paralel işlenen belge sayısı
}

func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println(".env dosyası yüklendi")
	}

	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=yavuzel port=5432 sslmode=disable"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.hostinger.com"),
		SMTPPort:      getEnvInt("SMTP_PORT", 465),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
		SenderName:    getEnv("SENDER_NAME", "Yavuzel Mali Müşavirlik"),
		ParseStrategy: getEnv("PARSE_STRATEGY", "text"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ParseTimeout:  getEnvDuration("PARSE_TIMEOUT", 60*time.Second),
		BatchWorkers:  getEnvInt("BATCH_WORKERS", 1),
	}

	// Production güvenlik kontrolleri
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment değişkeni tanımlanmamış! Production için zorunludur.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
	}
	if cfg.AdminPassword == "" {
		log.Fatal("[FATAL] ADMIN_PASSWORD environment değişkeni tanımlanmamış! Beyanname yükleme endpoint'leri korumasız kalır.")
	}
	if cfg.ParseStrategy != "text" && cfg.ParseStrategy != "layout" && cfg.ParseStrategy != "gemini" {
		log.Fatalf("[FATAL] PARSE_STRATEGY geçersiz: %q (text, layout veya gemini olmalı)", cfg.ParseStrategy)
	}
	if cfg.SMTPUser == "" {
		log.Println("[WARN] SMTP_USER tanımlanmamış, doğrulama e-postaları gönderilemez.")
	}
	if cfg.BatchWorkers < 1 {
		cfg.BatchWorkers = 1
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[WARN] %s sayı olarak okunamadı, varsayılan kullanılıyor: %d", key, def)
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("[WARN] %s süre olarak okunamadı, varsayılan kullanılıyor: %s", key, def)
	}
	return def
}
