// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"go-autoapply/internal/schedule"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TelegramToken  string `yaml:"telegram_token" validate:"required"`
	TelegramChatID int64  `yaml:"telegram_chat_id" validate:"required"`
	GroqAPIKey     string `yaml:"groq_api_key" validate:"required"`

	//Search campaigns, one per search intent
	Campaigns []schedule.CampaignConfig `yaml:"campaigns" validate:"min=1"`

	//Free-text applicant profile fed to answer/scoring calls
	ProfilePath string `yaml:"profile_path"`

	//Paths
	CookiesPath string `yaml:"cookies_path"`
	StorePath   string `yaml:"store_path"`
	LedgerPath  string `yaml:"ledger_path"`

	//Run browser headless (default visible, quick-apply sites block headless)
	Headless bool `yaml:"headless"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("⚠️ Could not read %s: %v", path, err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	}

	//Override with env vars
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		cfg.GroqAPIKey = key
	}

	//Set default values if not set
	if cfg.CookiesPath == "" {
		cfg.CookiesPath = ".cookies"
	}

	if cfg.StorePath == "" {
		cfg.StorePath = ".state"
	}

	if cfg.LedgerPath == "" {
		cfg.LedgerPath = ".state/applied.db"
	}

	if cfg.ProfilePath == "" {
		cfg.ProfilePath = "configs/profile.txt"
	}

	//Validate required fields
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Profile reads the applicant profile document.
func (c *Config) Profile() (string, error) {
	data, err := os.ReadFile(c.ProfilePath)
	if err != nil {
		return "", fmt.Errorf("could not read profile %s: %w", c.ProfilePath, err)
	}
	return string(data), nil
}
