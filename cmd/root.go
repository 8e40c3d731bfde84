package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agrosoluce/agrosoluce/internal/directory"
)

const (
	app = "agrosoluce"

	defaultTop = 10
)

type Config struct {
	Request          *directory.BuyerRequest `mapstructure:"request"`
	CooperativesFile string                  `mapstructure:"cooperatives-file"`
	CatalogFile      string                  `mapstructure:"catalog-file"`
	Top              int                     `mapstructure:"top"`
	Store            *StoreConfig            `mapstructure:"store"`
	AI               *AIConfig               `mapstructure:"ai"`
}

type StoreConfig struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	DatabaseURLFile string `mapstructure:"database-url-file"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "agrosoluce matches buyer requests with cooperatives and runs compliance self-assessments",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"cooperatives-file":       "AGROSOLUCE_COOPERATIVES_FILE",
		"store.database-url-file": "AGROSOLUCE_DATABASE_URL_FILE",
		"ai.gemini.api-key-file":  "GEMINI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("top", defaultTop)
	viper.SetDefault("store.driver", "file")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is agrosoluce.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Only match and assess read the config file.
	if matchCmd.CalledAs() == "" && assessCmd.CalledAs() == "" && catalogCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// A missing default config is fine, flags and env can carry everything.
	// A config that exists but does not parse is not.
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

	if config == nil {
		config = &Config{}
	}
	if config.Top <= 0 {
		config.Top = defaultTop
	}

	return config, nil
}
