package config

import (
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Platform struct {
		KemonoDomain string        `env:"KEMONO_DOMAIN" env-default:"kemono.su"`
		CoomerDomain string        `env:"COOMER_DOMAIN" env-default:"coomer.su"`
		HTTPTimeout  time.Duration `env:"PLATFORM_HTTP_TIMEOUT" env-default:"30s"`
	}
	Download struct {
		BaseDir            string `env:"DOWNLOAD_BASE_DIR" env-default:"."`
		SaveInfo           bool   `env:"SAVE_INFO" env-default:"false"`
		SaveInfoFormat     string `env:"SAVE_INFO_FORMAT" env-default:"md"`
		TakeEmptyPosts     bool   `env:"TAKE_EMPTY_POSTS" env-default:"false"`
		DownloadOlderFirst bool   `env:"DOWNLOAD_OLDER_FIRST" env-default:"false"`
		SkipExistingFiles  bool   `env:"SKIP_EXISTING_FILES" env-default:"true"`
		PostFolderName     string `env:"POST_FOLDER_NAME" env-default:"id"`
		Workers            int    `env:"DOWNLOAD_WORKERS" env-default:"4"`
		FileConcurrency    int    `env:"FILE_CONCURRENCY" env-default:"3"`
		FailedLogPath      string `env:"FAILED_LOG_PATH" env-default:"failed_downloads.txt"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}
