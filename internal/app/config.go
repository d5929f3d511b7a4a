package app

import (
	"strings"
	"time"

	"github.com/skillpath/backend/internal/platform/envutil"
)

type Config struct {
	Port            string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CORSOrigins     []string
}

func LoadConfig() Config {
	accessTTLSeconds := envutil.Int("ACCESS_TOKEN_TTL", 3600)
	refreshTTLSeconds := envutil.Int("REFRESH_TOKEN_TTL", 86400)
	origins := strings.Split(envutil.String("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		Port:            envutil.String("PORT", "8080"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  time.Duration(accessTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTTLSeconds) * time.Second,
		CORSOrigins:     origins,
	}
}
