package llm

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Enabled bool
	Model   string
	BaseURL string
	Timeout time.Duration
}

func LoadConfigFromEnv() (*Config, error) {
	enabled := os.Getenv("LLM_ENABLED")
	model := os.Getenv("LLM_MODEL")
	baseUrl := os.Getenv("LLM_BASE_URL")
	timeoutStr := os.Getenv("LLM_TIMEOUT_SECONDS")

	if enabled != "true" {
		return &Config{Enabled: false}, nil
	}

	if baseUrl == "" {
		return nil, errors.New("LLM_BASE_URL environment variable not set")
	}

	if model == "" {
		model = defaultModel
	}

	timeout := defaultTimeout
	if timeoutStr != "" {
		if secs, err := strconv.Atoi(timeoutStr); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	return &Config{
		Enabled: true,
		Model:   model,
		BaseURL: baseUrl,
		Timeout: timeout,
	}, nil
}
