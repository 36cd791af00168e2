package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	// Gateway holds the merchant credentials and endpoints for the payment
	// gateway. All values are externally supplied, never hardcoded.
	Gateway struct {
		MerchantCode string `yaml:"merchant_code"`
		APIKey       string `yaml:"api_key"`
		BaseURL      string `yaml:"base_url"`
		Sandbox      bool   `yaml:"sandbox"`
		CallbackURL  string `yaml:"callback_url"` // Where the gateway posts payment results
		ReturnURL    string `yaml:"return_url"`   // Where the buyer lands after paying
		TimeoutSec   int    `yaml:"timeout_sec"`
		ExpiryMins   int    `yaml:"expiry_mins"` // Transaction expiry period sent to the gateway
	} `yaml:"gateway"`

	Identity struct {
		BaseURL    string `yaml:"base_url"`
		APIKey     string `yaml:"api_key"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"identity"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	// Seed credentials for the first admin account. Environment only.
	FirstAdminEmail    string `yaml:"-"`
	FirstAdminPassword string `yaml:"-"`
}

// Gateway endpoints used when no explicit base_url is configured; the
// sandbox flag picks between them.
const (
	sandboxGatewayURL    = "https://sandbox.duitku.com/webapi/api"
	productionGatewayURL = "https://passport.duitku.com/webapi/api"
)

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	// DATABASE_URL set: configuration comes from environment (test mode / container)
	log.Println("Loading configuration from environment variables")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Gateway.MerchantCode = os.Getenv("GATEWAY_MERCHANT_CODE")
	cfg.Gateway.APIKey = os.Getenv("GATEWAY_API_KEY")
	cfg.Gateway.BaseURL = os.Getenv("GATEWAY_BASE_URL")
	cfg.Gateway.CallbackURL = os.Getenv("GATEWAY_CALLBACK_URL")
	cfg.Gateway.ReturnURL = os.Getenv("GATEWAY_RETURN_URL")
	cfg.Gateway.Sandbox = os.Getenv("GATEWAY_SANDBOX") != "false"

	cfg.Identity.BaseURL = os.Getenv("IDENTITY_BASE_URL")
	cfg.Identity.APIKey = os.Getenv("IDENTITY_API_KEY")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	cfg.FirstAdminEmail = os.Getenv("FIRST_ADMIN_EMAIL")
	cfg.FirstAdminPassword = os.Getenv("FIRST_ADMIN_PASSWORD")
	if cfg.Gateway.BaseURL == "" {
		if cfg.Gateway.Sandbox {
			cfg.Gateway.BaseURL = sandboxGatewayURL
		} else {
			cfg.Gateway.BaseURL = productionGatewayURL
		}
	}
	if cfg.Gateway.TimeoutSec <= 0 {
		cfg.Gateway.TimeoutSec = 15
	}
	if cfg.Gateway.ExpiryMins <= 0 {
		cfg.Gateway.ExpiryMins = 60
	}
	if cfg.Identity.TimeoutSec <= 0 {
		cfg.Identity.TimeoutSec = 10
	}
	if cfg.JWT.TTL <= 0 {
		cfg.JWT.TTL = 60
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
