package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env"
)

type Config struct {
	Address  string `env:"RUN_ADDRESS"`
	LogLevel string `env:"LOG_LEVEL"`

	DatabaseDNS string `env:"DATABASE_URI"`

	ReferenceCodeAttempts int  `env:"REFERENCE_CODE_ATTEMPTS"`
	StrictStatus          bool `env:"STRICT_STATUS"`
	StorageRetry          bool `env:"STORAGE_RETRY"`
}

func InitConfig() (*Config, error) {
	return Load(flag.CommandLine, os.Args[1:])
}

// Load читает флаги, затем переменные окружения: окружение имеет приоритет.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	flags := Flags{}
	if err := flags.Init(fs, args); err != nil {
		return nil, err
	}

	cfg := Config{
		Address:               flags.address,
		LogLevel:              flags.logLevel,
		DatabaseDNS:           flags.dbDNS,
		ReferenceCodeAttempts: flags.referenceCodeAttempts,
		StrictStatus:          flags.strictStatus,
		StorageRetry:          flags.storageRetry,
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("getting an error while parsing the configuration: %w", err)
	}
	if cfg.ReferenceCodeAttempts < 1 {
		return nil, fmt.Errorf("reference code attempts must be positive, got %d", cfg.ReferenceCodeAttempts)
	}

	return &cfg, nil
}
