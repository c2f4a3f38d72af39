package cmd

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "shiftmatch"

	defaultAPIURL           = "http://localhost:5000"
	defaultSessionStore     = "file"
	defaultRedisPrefix      = app + ":session:"
	defaultWatchSchedule    = "@every 1m"
	defaultOutput           = outputText
	defaultGeminiMaxRetries = 3
)

type Config struct {
	APIURL        string               `mapstructure:"api-url"`
	UserAgent     string               `mapstructure:"user-agent"`
	TokenFile     string               `mapstructure:"token-file"`
	Timeout       time.Duration        `mapstructure:"timeout"`
	Output        string               `mapstructure:"output"`
	ExcludeFile   string               `mapstructure:"exclude-file"`
	Session       *SessionConfig       `mapstructure:"session"`
	Filters       *FiltersConfig       `mapstructure:"filters"`
	Exclude       *ExcludeConfig       `mapstructure:"exclude"`
	AI            *AIConfig            `mapstructure:"ai"`
	Notifications *NotificationsConfig `mapstructure:"notifications"`
}

type SessionConfig struct {
	// Store is either "file" or "redis".
	Store    string `mapstructure:"store"`
	File     string `mapstructure:"file"`
	RedisURL string `mapstructure:"redis-url"`
	Prefix   string `mapstructure:"prefix"`
}

type FiltersConfig struct {
	Location   string   `mapstructure:"location"`
	Experience string   `mapstructure:"experience"`
	Gender     string   `mapstructure:"gender"`
	Days       []string `mapstructure:"days"`
}

type ExcludeConfig struct {
	Owners []string `mapstructure:"owners"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score"`
	KeepRejected    bool          `mapstructure:"keep-rejected"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type NotificationsConfig struct {
	Schedule string `mapstructure:"schedule"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "shiftmatch is a cli for browsing, filtering and ranking part-time jobs and student requests",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// A missing .env is fine; anything else is reported.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(strings.ToUpper(app))
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api-url", defaultAPIURL)
	viper.SetDefault("output", defaultOutput)
	viper.SetDefault("session.store", defaultSessionStore)
	viper.SetDefault("session.prefix", defaultRedisPrefix)
	viper.SetDefault("notifications.schedule", defaultWatchSchedule)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.max-retries", defaultGeminiMaxRetries)

	// Keys without defaults are unknown to Unmarshal unless bound explicitly.
	for _, key := range []string{"token-file", "user-agent", "timeout", "exclude-file", "session.file", "session.redis-url"} {
		if err := viper.BindEnv(key); err != nil {
			log.Fatalf("binding %s environment variable: %v", key, err)
		}
	}

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is shiftmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: text, json or yaml")
	rootCmd.PersistentFlags().String("api-url", "", "base url of the matching backend")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without an explicit --config a missing file means defaults, env and flags only.
	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Session == nil {
		config.Session = &SessionConfig{Store: defaultSessionStore, Prefix: defaultRedisPrefix}
	}
	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}
	if config.Exclude == nil {
		config.Exclude = &ExcludeConfig{}
	}
	if config.Notifications == nil {
		config.Notifications = &NotificationsConfig{Schedule: defaultWatchSchedule}
	}

	return config, nil
}
