package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string
	Env  string

	AWSRegion      string
	DynamoEndpoint string // set for DynamoDB Local, empty in AWS
	UsersTable     string
	FavoritesTable string

	JWTKey      string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration

	OpenseaAPIKey  string
	AllowedOrigins []string

	CacheMaxEntries int
}

func Load() *Config {
	origins := []string{"http://localhost:3000"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	return &Config{
		Port: getEnv("PORT", "8989"),
		Env:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-west-2"),
		DynamoEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),
		UsersTable:     getEnv("USERS_TABLE_NAME", "Users"),
		FavoritesTable: getEnv("FAVORITES_TABLE_NAME", "Favorites"),

		JWTKey:      os.Getenv("JWT_KEY"),
		JWTIssuer:   getEnv("JWT_ISSUER", "trnkt"),
		JWTAudience: getEnv("JWT_AUDIENCE", "trnkt-app"),
		JWTTTL:      time.Duration(getEnvInt("JWT_TTL_MINUTES", 120)) * time.Minute,

		OpenseaAPIKey:  os.Getenv("OPENSEA_API_KEY"),
		AllowedOrigins: origins,

		CacheMaxEntries: getEnvInt("FAVORITES_CACHE_MAX_ENTRIES", 10000),
	}
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
