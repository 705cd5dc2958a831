package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string // empty selects the in-memory store
	StorageBackend string // "s3" or "local"
	AwsAccessKey   string
	AwsSecretKey   string
	AwsRegion      string
	BucketName     string
	LocalStoreDir  string
	AIAPIKey       string
	GenModel       string
	RasterCmd      string // external first-page rasterizer binary
	JWTSecret      string
	AdminEmail     string
	AdminPassHash  string // bcrypt hash for the staff login
	ReplyQueueSize int
	Port           string
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		BucketName:     getEnv("BUCKET_NAME", "clearpath-docs"),
		LocalStoreDir:  getEnv("LOCAL_STORE_DIR", "./data"),
		AIAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GenModel:       getEnv("GEN_MODEL", "gemini-1.5-flash"),
		RasterCmd:      getEnv("RASTER_CMD", "pdftoppm"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin@clearpathfinancial.com"),
		AdminPassHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
		ReplyQueueSize: getEnvInt("REPLY_QUEUE_SIZE", 64),
		Port:           getEnv("PORT", "8080"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("WARN: DATABASE_URL not set, falling back to in-memory store (data will not survive a restart)")
	}
	if cfg.StorageBackend == "s3" && (cfg.AwsAccessKey == "" || cfg.AwsSecretKey == "") {
		log.Fatal("STORAGE_BACKEND=s3 but AWS credentials not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
