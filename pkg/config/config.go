package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port        string
	PostgresDSN string
	MongoURI    string
	MongoDBName string
	JWTSecret   string

	// FirebaseCredentials is the path to the service account file. Empty
	// disables Firebase login.
	FirebaseCredentials string

	// UploadDir and UploadBaseURL configure the local media store.
	UploadDir     string
	UploadBaseURL string
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		PostgresDSN:         getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=tawasol port=5432 sslmode=disable"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:         getEnv("MONGO_DB_NAME", "tawasol"),
		JWTSecret:           getEnv("JWT_SECRET", "supersecretjwtkey"),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		UploadDir:           getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL:       getEnv("UPLOAD_BASE_URL", "/uploads"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
