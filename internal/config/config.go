package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by SEVASETU_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("SEVASETU_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// ServiceBaseURL returns the base URL of the scheme service.
func ServiceBaseURL() string {
	u := os.Getenv("SERVICE_BASE_URL")
	if u == "" {
		return "http://localhost:8000"
	}
	return u
}

// ServiceProvider returns the configured scheme service client.
// Defaults to "http" if not set. Valid values: http, mock
func ServiceProvider() string {
	p := os.Getenv("SERVICE_PROVIDER")
	if p == "" {
		return "http"
	}
	return p
}

// ServiceTimeout returns the per-request timeout for remote calls.
// Defaults to 30s if not set.
func ServiceTimeout() time.Duration {
	secs, err := strconv.Atoi(os.Getenv("SERVICE_TIMEOUT_SECONDS"))
	if err != nil || secs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(secs) * time.Second
}

// SchemeTopK returns how many ranked schemes to request per search.
// Defaults to 5 if not set.
func SchemeTopK() int {
	k, err := strconv.Atoi(os.Getenv("SCHEME_TOP_K"))
	if err != nil || k <= 0 {
		return 5
	}
	return k
}

// SessionTTL returns how long an idle session is kept before expiry.
// Defaults to 60 minutes if not set.
func SessionTTL() time.Duration {
	mins, err := strconv.Atoi(os.Getenv("SESSION_TTL_MINUTES"))
	if err != nil || mins <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(mins) * time.Minute
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
