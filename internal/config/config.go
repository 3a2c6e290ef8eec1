package config

import (
	"os"
	"strings"
)

type Config struct {
	ProjectID             string
	Port                  string
	AllowedOrigins        []string
	RequireQualifiedCoach bool
}

func Load() Config {
	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	port := getenv("PORT", "8080")
	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000")

	allowed := []string{}
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	return Config{
		ProjectID:             projectID,
		Port:                  port,
		AllowedOrigins:        allowed,
		RequireQualifiedCoach: getenv("REQUIRE_QUALIFIED_COACH", "true") != "false",
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
