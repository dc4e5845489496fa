package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	NATS     NATSConfig // optional event bus สำหรับ task events
	Redis    RedisConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Log      LogConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Cleanup  CleanupConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Env         string
	BodyLimit   int    // bytes, ต้องใหญ่กว่า 3 ไฟล์ x max size
	CORSOrigins string // comma-separated, "*" = ทุก origin
}

type DatabaseConfig struct {
	Driver   string // postgres, sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// SQLitePath ใช้เมื่อ Driver = sqlite (":memory:" ได้)
	SQLitePath string
}

// RedisConfig สำหรับ cache identity lookups; URL ว่าง = ปิด cache
type RedisConfig struct {
	URL      string // redis://localhost:6379
	Password string
	DB       int
	TTL      time.Duration
}

// NATSConfig URL ว่าง = ส่ง event เข้า websocket ตรงๆ ใน process
type NATSConfig struct {
	URL string // nats://localhost:4222
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type AuthConfig struct {
	AllowAdminSignup bool
}

type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     string // stdout, file, both
	FilePath   string // logs/app.log
	MaxSize    int    // MB
	MaxBackups int    // จำนวน backup files
	MaxAge     int    // วัน
	Compress   bool   // บีบอัด backup
}

type StorageConfig struct {
	Type     string // local, s3
	BasePath string // สำหรับ local: ./uploads
	BaseURL  string // URL prefix ของไฟล์ (เช่น http://localhost:8080/uploads)
	// MinFreePercent พื้นที่ว่างขั้นต่ำที่ต้องเหลือหลังเขียนไฟล์ (local เท่านั้น)
	MinFreePercent float64

	S3 S3Config
}

type S3Config struct {
	Endpoint  string // minio:9000 หรือ xxx.r2.cloudflarestorage.com
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	PublicURL string
}

type UploadConfig struct {
	MaxFileSize       int64
	MaxFiles          int
	AllowedExtensions []string
}

type CleanupConfig struct {
	Enabled   bool
	Cron      string
	BatchSize int
}

func LoadConfig() (*Config, error) {
	// ไม่ error ถ้าไม่มี .env file (ใช้ environment variables แทน)
	_ = godotenv.Load()

	logMaxSize, _ := strconv.Atoi(getEnv("LOG_MAX_SIZE", "100"))
	logMaxBackups, _ := strconv.Atoi(getEnv("LOG_MAX_BACKUPS", "5"))
	logMaxAge, _ := strconv.Atoi(getEnv("LOG_MAX_AGE", "30"))
	logCompress := getEnv("LOG_COMPRESS", "true") == "true"

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	maxFileSize, _ := strconv.ParseInt(getEnv("UPLOAD_MAX_FILE_SIZE", "5242880"), 10, 64) // 5MB
	maxFiles, _ := strconv.Atoi(getEnv("UPLOAD_MAX_FILES", "3"))
	bodyLimit, _ := strconv.Atoi(getEnv("APP_BODY_LIMIT", "20971520")) // 20MB
	minFree, _ := strconv.ParseFloat(getEnv("STORAGE_MIN_FREE_PERCENT", "5"), 64)
	cleanupBatch, _ := strconv.Atoi(getEnv("CLEANUP_BATCH_SIZE", "100"))

	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	redisTTL, err := time.ParseDuration(getEnv("REDIS_IDENTITY_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_IDENTITY_TTL: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Taskboard"),
			Port:        getEnv("APP_PORT", "8080"),
			Env:         getEnv("APP_ENV", "development"),
			BodyLimit:   bodyLimit,
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "taskboard"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "taskboard.db"),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			TTL:      redisTTL,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
			TTL:    jwtTTL,
		},
		Auth: AuthConfig{
			AllowAdminSignup: getEnv("AUTH_ALLOW_ADMIN_SIGNUP", "true") == "true",
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			FilePath:   getEnv("LOG_FILE", "logs/app.log"),
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAge,
			Compress:   logCompress,
		},
		Storage: StorageConfig{
			Type:           getEnv("STORAGE_TYPE", "local"),
			BasePath:       getEnv("STORAGE_BASE_PATH", "./uploads"),
			BaseURL:        getEnv("STORAGE_BASE_URL", "/uploads"),
			MinFreePercent: minFree,
			S3: S3Config{
				Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("S3_ACCESS_KEY", "minioadmin"),
				SecretKey: getEnv("S3_SECRET_KEY", "minioadmin"),
				Bucket:    getEnv("S3_BUCKET", "task-attachments"),
				UseSSL:    getEnv("S3_USE_SSL", "false") == "true",
				Region:    getEnv("S3_REGION", "us-east-1"),
				PublicURL: getEnv("S3_PUBLIC_URL", ""),
			},
		},
		Upload: UploadConfig{
			MaxFileSize:       maxFileSize,
			MaxFiles:          maxFiles,
			AllowedExtensions: parseList(getEnv("UPLOAD_ALLOWED_EXTENSIONS", "pdf,doc,docx,jpg,jpeg,png,gif")),
		},
		Cleanup: CleanupConfig{
			Enabled:   getEnv("CLEANUP_ENABLED", "true") == "true",
			Cron:      getEnv("CLEANUP_CRON", "*/5 * * * *"),
			BatchSize: cleanupBatch,
		},
	}

	if config.Upload.MaxFiles <= 0 || config.Upload.MaxFiles > 3 {
		config.Upload.MaxFiles = 3
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseList แปลง comma-separated string เป็น slice (lower-case, ตัด "." นำหน้า)
// เช่น "pdf, .DOCX" -> ["pdf", "docx"]
func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		v := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(p)), ".")
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// IsDevelopment ตรวจสอบว่าเป็น development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction ตรวจสอบว่าเป็น production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
