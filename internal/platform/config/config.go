package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Everything is read from the
// environment so main stays lean and deploys stay twelve-factor.
type Server struct {
	Addr          string
	PostgresURL   string
	RedisURL      string
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string
	TokenTTL      time.Duration
	SeedDevUsers  bool
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("MEDCYCLE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("MEDCYCLE_AUDIT_TOPIC")
	if topic == "" {
		topic = "medcycle.audit"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 24 * time.Hour
	if raw := os.Getenv("MEDCYCLE_TOKEN_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			tokenTTL = d
		}
	}

	var brokers []string
	if raw := os.Getenv("MEDCYCLE_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:          addr,
		PostgresURL:   os.Getenv("MEDCYCLE_POSTGRES_URL"),
		RedisURL:      os.Getenv("MEDCYCLE_REDIS_URL"),
		KafkaBrokers:  brokers,
		AuditTopic:    topic,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      tokenTTL,
		SeedDevUsers:  os.Getenv("MEDCYCLE_SEED_DEV_USERS") == "true",
	}
}
