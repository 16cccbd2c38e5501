package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Report holds configuration for the reporting path (report and watch).
type Report struct {
	RPCURL          string
	RegistryAddress string
	Account         string
	Out             string
	PGDSN           string
	Interval        time.Duration
	Concurrency     int
	MaxRetries      int
	RetryBackoff    time.Duration
	LogLevel        string
}

// LoadReport merges config file, environment variables, and flags.
func LoadReport(cfgFile string, flags *pflag.FlagSet) (Report, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Report{}, err
	}

	v.SetDefault("interval", 30*time.Second)
	v.SetDefault("concurrency", 8)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	return Report{
		RPCURL:          v.GetString("rpc"),
		RegistryAddress: v.GetString("registry"),
		Account:         v.GetString("account"),
		Out:             v.GetString("out"),
		PGDSN:           v.GetString("pg-dsn"),
		Interval:        v.GetDuration("interval"),
		Concurrency:     v.GetInt("concurrency"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		LogLevel:        v.GetString("log-level"),
	}, nil
}

// Catalog holds configuration for the projects command.
type Catalog struct {
	RPCURL          string
	RegistryAddress string
	CachePath       string
	PGDSN           string
	Concurrency     int
	LogLevel        string
}

// LoadCatalog merges config file, environment variables, and flags.
func LoadCatalog(cfgFile string, flags *pflag.FlagSet) (Catalog, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Catalog{}, err
	}

	v.SetDefault("cache", "./data/projects.json")
	v.SetDefault("concurrency", 8)
	v.SetDefault("log-level", "info")

	return Catalog{
		RPCURL:          v.GetString("rpc"),
		RegistryAddress: v.GetString("registry"),
		CachePath:       v.GetString("cache"),
		PGDSN:           v.GetString("pg-dsn"),
		Concurrency:     v.GetInt("concurrency"),
		LogLevel:        v.GetString("log-level"),
	}, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("OFFSET")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
