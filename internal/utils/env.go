package utils

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// SafeEnv returns the environment variable value for key, or fallback if empty.
func SafeEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// EnvBool reads 1/true/yes/on (any case) as true. Unparseable values log and
// return fallback.
func EnvBool(key string, fallback bool) bool {
	v := strings.ToLower(SafeEnv(key, ""))
	switch v {
	case "":
		return fallback
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	log.Printf("env %s: unrecognised boolean %q, using %v", key, v, fallback)
	return fallback
}

// EnvDuration parses Go duration syntax ("168h", "30m").
func EnvDuration(key string, fallback time.Duration) time.Duration {
	v := SafeEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("env %s: invalid duration %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func EnvFloat(key string, fallback float64) float64 {
	v := SafeEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("env %s: invalid number %q, using %g", key, v, fallback)
		return fallback
	}
	return f
}
