package cmd

import (
	"log"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "vacancybot"

	defaultListen          = ":8080"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultGeminiModel     = "gemini-2.5-flash"
	defaultWebhookTimeout  = 10 * time.Second
	defaultSessionTTL      = 30 * time.Minute
	defaultTranscriptLimit = 50
)

type Config struct {
	Listen   string          `mapstructure:"listen"`
	AI       *AIConfig       `mapstructure:"ai"`
	Webhook  *WebhookConfig  `mapstructure:"webhook"`
	Sessions *SessionsConfig `mapstructure:"sessions"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	OpenAI   *OpenAIConfig `mapstructure:"openai"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api-key"`
	BaseURL string `mapstructure:"base-url"`
	Model   string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api-key"`
	Model  string `mapstructure:"model"`
}

type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionsConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	TranscriptLimit int           `mapstructure:"transcript-limit"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "vacancybot is a conversational assistant that builds job vacancy descriptions",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.openai.api-key", "OPENAI_API_KEY"); err != nil {
		log.Fatalf("binding OPENAI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is vacancybot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// A missing config file is fine: flags, env vars and defaults still apply.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && cfgFile != "" {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	config := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     config,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, err
	}

	applyDefaults(config)

	// viper.AllSettings does not surface env-only bindings, so the API
	// keys are overlaid explicitly.
	if config.AI.OpenAI.APIKey == "" {
		config.AI.OpenAI.APIKey = viper.GetString("ai.openai.api-key")
	}
	if config.AI.Gemini.APIKey == "" {
		config.AI.Gemini.APIKey = viper.GetString("ai.gemini.api-key")
	}
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Listen == "" {
		config.Listen = defaultListen
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Provider == "" {
		config.AI.Provider = "openai"
	}
	if config.AI.OpenAI == nil {
		config.AI.OpenAI = &OpenAIConfig{}
	}
	if config.AI.OpenAI.Model == "" {
		config.AI.OpenAI.Model = defaultOpenAIModel
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.AI.Gemini.Model == "" {
		config.AI.Gemini.Model = defaultGeminiModel
	}
	if config.Webhook == nil {
		config.Webhook = &WebhookConfig{}
	}
	if config.Webhook.Timeout <= 0 {
		config.Webhook.Timeout = defaultWebhookTimeout
	}
	if config.Sessions == nil {
		config.Sessions = &SessionsConfig{}
	}
	if config.Sessions.TTL <= 0 {
		config.Sessions.TTL = defaultSessionTTL
	}
	if config.Sessions.TranscriptLimit <= 0 {
		config.Sessions.TranscriptLimit = defaultTranscriptLimit
	}
}
