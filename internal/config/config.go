package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	JWTSecret string

	CORSOrigins []string

	// Quiz engine knobs. Defaults mirror the exam format the frontend
	// renders: 10 questions, 5 alternatives each.
	QuizQuestionCount        int
	QuizIncorrectPerQuestion int
	QuizTopicPoolSize        int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: os.Getenv("PUBLIC_URL"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		JWTSecret: envOr("JWT_SECRET", "backpack-dev-secret"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),

		QuizQuestionCount:        envInt("QUIZ_QUESTION_COUNT", 10),
		QuizIncorrectPerQuestion: envInt("QUIZ_INCORRECT_PER_QUESTION", 4),
		QuizTopicPoolSize:        envInt("QUIZ_TOPIC_POOL_SIZE", 50),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
