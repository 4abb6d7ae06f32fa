package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Fable
		Export
		Credentials
	}

	Fable struct {
		UserID    string
		AuthToken string
		Email     string
		Timeout   time.Duration
	}
	Export struct {
		OutputDir  string
		RawDataDir string
	}
	Credentials struct {
		DatabasePath string
		KeyFilePath  string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("fable_user_id", "")
	v.SetDefault("fable_auth_token", "")
	v.SetDefault("fable_email", "")
	v.SetDefault("fable_http_timeout", "30s")
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("raw_data_dir", DefaultRawDataDir)
	v.SetDefault("credentials_path", DefaultCredentialsPath)
	v.SetDefault("credentials_key_file", "")

	return &Config{
		Fable: Fable{
			UserID:    v.GetString("FABLE_USER_ID"),
			AuthToken: v.GetString("FABLE_AUTH_TOKEN"),
			Email:     v.GetString("FABLE_EMAIL"),
			Timeout:   v.GetDuration("FABLE_HTTP_TIMEOUT"),
		},
		Export: Export{
			OutputDir:  v.GetString("OUTPUT_DIR"),
			RawDataDir: v.GetString("RAW_DATA_DIR"),
		},
		Credentials: Credentials{
			DatabasePath: v.GetString("CREDENTIALS_PATH"),
			KeyFilePath:  v.GetString("CREDENTIALS_KEY_FILE"),
		},
	}
}
