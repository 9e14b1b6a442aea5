package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Matching  MatchingConfig
	Parser    ParserConfig
	Messaging MessagingConfig
	Limits    LimitsConfig
	Reply     ReplyConfig
}

type ServerConfig struct {
	Port          string
	Env           string
	WebhookSecret string `mapstructure:"webhook_secret"`
	SeedDemo      bool   `mapstructure:"seed_demo"`
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	URL        string
	SQLitePath string `mapstructure:"sqlite_path"`
}

type MatchingConfig struct {
	ProductThreshold  float64 `mapstructure:"product_threshold"`
	CustomerThreshold float64 `mapstructure:"customer_threshold"`
	ExactThreshold    float64 `mapstructure:"exact_threshold"`
}

type ParserConfig struct {
	URL      string
	MaxInput int `mapstructure:"max_input"`
	Timeout  time.Duration
}

type MessagingConfig struct {
	AMQPURL string `mapstructure:"amqp_url"`
	Queue   string
}

type LimitsConfig struct {
	MessagesPerMinute int     `mapstructure:"messages_per_minute"`
	LowStockDefault   float64 `mapstructure:"low_stock_default"`
}

// ReplyConfig shapes the chat replies and is read from config/config.toml.
type ReplyConfig struct {
	Header              string `mapstructure:"header"`
	ClarificationHeader string `mapstructure:"clarification_header"`
	Currency            string `mapstructure:"currency"`
	LowStockMarker      string `mapstructure:"low_stock_marker"`
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// LoadConfig reads .env, the process environment and config/config.toml.
// Missing files are logged and defaults apply.
func LoadConfig() *Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, checking environment variables: %v", err)
	}

	v.AutomaticEnv()

	v.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("AMQP_URL", "AMQP_URL", "RABBITMQ_URL")

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_SQLITE_PATH", "ledger.db")
	v.SetDefault("MATCH_PRODUCT_THRESHOLD", 0.5)
	v.SetDefault("MATCH_CUSTOMER_THRESHOLD", 0.7)
	v.SetDefault("MATCH_EXACT_THRESHOLD", 0.95)
	v.SetDefault("PARSER_MAX_INPUT", 1000)
	v.SetDefault("PARSER_TIMEOUT", "15s")
	v.SetDefault("AMQP_QUEUE", "outbound_messages")
	v.SetDefault("MESSAGES_PER_MINUTE", 30)
	v.SetDefault("LOW_STOCK_DEFAULT", 5)

	cfg := &Config{
		Server: ServerConfig{
			Port:          v.GetString("SERVER_PORT"),
			Env:           v.GetString("SERVER_ENV"),
			WebhookSecret: v.GetString("WEBHOOK_SECRET"),
			SeedDemo:      v.GetBool("SEED_DEMO"),
		},
		Database: DatabaseConfig{
			Driver:     v.GetString("DB_DRIVER"),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			Name:       v.GetString("DB_NAME"),
			URL:        v.GetString("DATABASE_URL"),
			SQLitePath: v.GetString("DB_SQLITE_PATH"),
		},
		Matching: MatchingConfig{
			ProductThreshold:  v.GetFloat64("MATCH_PRODUCT_THRESHOLD"),
			CustomerThreshold: v.GetFloat64("MATCH_CUSTOMER_THRESHOLD"),
			ExactThreshold:    v.GetFloat64("MATCH_EXACT_THRESHOLD"),
		},
		Parser: ParserConfig{
			URL:      v.GetString("PARSER_URL"),
			MaxInput: v.GetInt("PARSER_MAX_INPUT"),
			Timeout:  v.GetDuration("PARSER_TIMEOUT"),
		},
		Messaging: MessagingConfig{
			AMQPURL: v.GetString("AMQP_URL"),
			Queue:   v.GetString("AMQP_QUEUE"),
		},
		Limits: LimitsConfig{
			MessagesPerMinute: v.GetInt("MESSAGES_PER_MINUTE"),
			LowStockDefault:   v.GetFloat64("LOW_STOCK_DEFAULT"),
		},
		Reply: DefaultReply(),
	}

	replyViper := viper.New()
	replyViper.SetConfigFile("config/config.toml")
	replyViper.SetConfigType("toml")
	if err := replyViper.ReadInConfig(); err != nil {
		log.Printf("Warning: config/config.toml not found, using default reply settings: %v", err)
	} else if err := replyViper.UnmarshalKey("reply", &cfg.Reply); err != nil {
		log.Printf("Error: Failed to unmarshal reply settings from TOML: %v", err)
	}

	log.Printf("Configuration loaded successfully:")
	log.Printf("- Server Port: %s", cfg.Server.Port)
	log.Printf("- Server Env: %s", cfg.Server.Env)
	log.Printf("- Webhook Secret: %s", setOrNot(cfg.Server.WebhookSecret))
	log.Printf("- Database Driver: %s", cfg.Database.Driver)
	log.Printf("- Database Host: %s", cfg.Database.Host)
	log.Printf("- Database Name: %s", cfg.Database.Name)
	log.Printf("- Database URL: %s", setOrNot(cfg.Database.URL))
	log.Printf("- Parser URL: %s", setOrNot(cfg.Parser.URL))
	log.Printf("- AMQP URL: %s", setOrNot(cfg.Messaging.AMQPURL))
	log.Printf("- Match thresholds: product %.2f, customer %.2f", cfg.Matching.ProductThreshold, cfg.Matching.CustomerThreshold)

	return cfg
}

func DefaultReply() ReplyConfig {
	return ReplyConfig{
		Header:              "Here's what I did:",
		ClarificationHeader: "I need a bit more information:",
		Currency:            "₦",
		LowStockMarker:      "⚠️ Low stock",
	}
}

func setOrNot(s string) string {
	if s != "" {
		return "SET"
	}
	return "NOT SET"
}
