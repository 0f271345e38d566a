package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DBPath      string
	CORSOrigins string
	// AI completion configuration (Azure OpenAI deployment)
	AIEndpoint   string
	AIKey        string
	AIAPIVersion string
	AIDeployment string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3001"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		DBPath:      getEnv("DB_PATH", "data/notes.db"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		AIEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AIKey:        getEnv("AZURE_OPENAI_KEY", ""),
		AIAPIVersion: getEnv("AZURE_API_VERSION", "2024-02-15-preview"),
		AIDeployment: getEnv("AZURE_DEPLOYMENT_NAME", "Gpt-4o"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
