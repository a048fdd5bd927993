package devops

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"maxConnections"`
}

type AuthConfig struct {
	// SigningSecret is base64-encoded HMAC key material.
	SigningSecret  string `yaml:"signingSecret"`
	TokenTTLHours  int    `yaml:"tokenTtlHours"`
	MasterUsername string `yaml:"masterUsername"`
	MasterPassword string `yaml:"masterPassword"`
}

type StorageConfig struct {
	Bucket    string `yaml:"bucket"`
	KeyPrefix string `yaml:"keyPrefix"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
}

var (
	once    sync.Once
	loaded  *Config
	loadErr error
)

// Load reads configuration once per process. The YAML document comes from
// OFFICEPANEL_CONFIG (a file path) or, when OFFICEPANEL_CONFIG_PARAM is
// set, from an SSM parameter. Environment variables override the secrets
// so local development needs no config file at all.
func Load(ctx context.Context) (*Config, error) {
	once.Do(func() {
		cfg := &Config{
			Server:   ServerConfig{Addr: "0.0.0.0:8090"},
			Database: DatabaseConfig{MaxConnections: 10},
			Auth:     AuthConfig{TokenTTLHours: 24 * 30},
		}

		var raw []byte
		switch {
		case os.Getenv("OFFICEPANEL_CONFIG_PARAM") != "":
			raw, loadErr = fetchParameter(ctx, os.Getenv("OFFICEPANEL_CONFIG_PARAM"))
		case os.Getenv("OFFICEPANEL_CONFIG") != "":
			raw, loadErr = os.ReadFile(os.Getenv("OFFICEPANEL_CONFIG"))
		}
		if loadErr != nil {
			return
		}

		if len(raw) > 0 {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				loadErr = fmt.Errorf("unmarshal yaml: %w", err)
				return
			}
		}

		applyEnvOverrides(cfg)
		loaded = cfg
	})

	return loaded, loadErr
}

func fetchParameter(ctx context.Context, name string) ([]byte, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(awsCfg)

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}

	return []byte(*out.Parameter.Value), nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("OFFICEPANEL_SIGNING_SECRET"); v != "" {
		cfg.Auth.SigningSecret = v
	}
	if v := os.Getenv("MASTER_USERNAME"); v != "" {
		cfg.Auth.MasterUsername = v
	}
	if v := os.Getenv("MASTER_PASSWORD"); v != "" {
		cfg.Auth.MasterPassword = v
	}
	if v := os.Getenv("UPLOAD_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
}
