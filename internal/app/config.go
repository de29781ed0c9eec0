package app

import (
	"time"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/utils"
)

type Config struct {
	Env             string
	Port            string
	PromptsDir      string
	PromptCacheTTL  time.Duration
	AgentConfigPath string
}

func LoadConfig(log *logger.Logger) Config {
	env := utils.GetEnv("APP_ENV", "development", log)
	// Short TTL in development so prompt edits show up quickly.
	defaultTTL := 60
	if env == "development" {
		defaultTTL = 5
	}
	ttlSeconds := utils.GetEnvAsInt("PROMPT_CACHE_TTL_SECONDS", defaultTTL, log)
	return Config{
		Env:             env,
		Port:            utils.GetEnv("PORT", "8080", log),
		PromptsDir:      utils.GetEnv("PROMPTS_DIR", "", log),
		PromptCacheTTL:  time.Duration(ttlSeconds) * time.Second,
		AgentConfigPath: utils.GetEnv("AGENT_CONFIG_PATH", "", log),
	}
}
