package pkg

import (
	"github.com/go-playground/validator/v10"
	"github.com/imdario/mergo"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"postforge/pkg/models"
)

type Config struct {
	// If true, enable debug logs
	Debug bool `mapstructure:"debug"`

	// HTTP port to listen for incoming requests
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// General application secret
	AppSecret string `mapstructure:"appSecret" validate:"required"`

	// Secret expected in the X-Cron-Secret header of the trigger-due
	// endpoint. Falls back to AppSecret when empty.
	CronSecret string `mapstructure:"cronSecret"`

	// Allowed CORS origins; empty means same-origin only
	CORSOrigins []string `mapstructure:"corsOrigins"`

	Database *DatabaseConfig `mapstructure:"database" validate:"required"`

	LLM    LLMConfig    `mapstructure:"llm"`
	Worker WorkerConfig `mapstructure:"worker"`

	// Object storage target for published-post archives, optional
	Archive ArchiveConfig `mapstructure:"archive"`

	// Tenant-wide content generation defaults; agents may override
	Generation models.GenerationSettings `mapstructure:"generation"`
}

type LLMConfig struct {
	// API key for the OpenAI-compatible endpoint
	ApiKey string `mapstructure:"apiKey"`

	// Override the API base URL, e.g. for a compatible proxy
	BaseURL string `mapstructure:"baseUrl"`

	// Max retries on transient HTTP failures
	RetryMax int `mapstructure:"retryMax"`
}

type WorkerConfig struct {
	// Number of auto-publish worker goroutines
	Concurrency int `mapstructure:"concurrency" validate:"min=0"`

	// Capacity of the dispatch queue, enqueues fail once it is full
	QueueSize int `mapstructure:"queueSize" validate:"min=0"`
}

var configDefaults = Config{
	Port: 8080,
	LLM: LLMConfig{
		RetryMax: 3,
	},
	Worker: WorkerConfig{
		Concurrency: 4,
		QueueSize:   64,
	},
	Generation: models.GenerationSettings{
		Model:       "gpt-4o-mini",
		MaxTokens:   2000,
		Temperature: 0.7,
	},
}

var validate = validator.New()

// MergeGenerationSettings layers per-agent overrides on top of the
// configured defaults. Zero-valued override fields keep the default.
func MergeGenerationSettings(defaults *models.GenerationSettings, override *models.GenerationSettings) (*models.GenerationSettings, error) {
	merged := &models.GenerationSettings{}
	if err := mergo.Merge(merged, defaults, mergo.WithOverride); err != nil {
		return nil, errors.WithMessage(err, "failed to merge default generation settings")
	}
	if override != nil {
		if err := mergo.Merge(merged, override, mergo.WithOverride); err != nil {
			return nil, errors.WithMessage(err, "failed to merge agent generation settings")
		}
	}
	return merged, nil
}

var defaultDecodeHook = mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
)

func MustLoadConfig(filename string) *Config {
	myViper := viper.New()

	myViper.SetEnvPrefix("PF")
	myViper.AutomaticEnv()

	if filename != "" {
		myViper.SetConfigFile(filename)
	} else {
		myViper.SetConfigName("config")
		myViper.SetConfigType("yaml")
		myViper.AddConfigPath(".")
		myViper.AddConfigPath("./config")
	}

	err := myViper.ReadInConfig()
	if err != nil {
		logrus.WithError(err).Fatalf("failed to load config")
	}

	config := new(Config)

	if err := myViper.Unmarshal(config,
		viper.DecodeHook(defaultDecodeHook),
	); err != nil {
		logrus.WithError(err).Fatalf("failed to unmarshal config")
	}

	if err := mergo.Merge(config, configDefaults); err != nil {
		logrus.WithError(err).Fatalf("failed to apply config defaults")
	}

	if err := validate.Struct(config); err != nil {
		logrus.WithError(err).Fatalf("failed to validate config")
	}

	return config
}
