package storage

import (
	"context"
	"fmt"

	"github.com/Arnau-Gelonch/zara-challenge/internal/config"
)

type FactoryResult struct {
	Driver  string
	Storage Storage
}

func FromConfig(ctx context.Context, cfg config.Storage) (FactoryResult, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "local"
	}

	switch driver {
	case "local":
		return FactoryResult{Driver: "local", Storage: NewLocal(cfg.LocalDir)}, nil

	case "memory":
		return FactoryResult{Driver: "memory", Storage: NewMemory()}, nil

	case "s3":
		if cfg.S3Region == "" || cfg.S3Bucket == "" {
			return FactoryResult{}, fmt.Errorf("S3 config missing: S3_REGION, S3_BUCKET required")
		}
		s, err := NewS3(ctx, S3Config{
			Region: cfg.S3Region,
			Bucket: cfg.S3Bucket,
			Prefix: cfg.S3Prefix,
		})
		if err != nil {
			return FactoryResult{}, err
		}
		return FactoryResult{Driver: "s3", Storage: s}, nil

	case "mysql":
		if cfg.DSN == "" {
			return FactoryResult{}, fmt.Errorf("DB_DSN is required for STORAGE_DRIVER=mysql")
		}
		db, err := OpenMySQL(cfg.DSN)
		if err != nil {
			return FactoryResult{}, err
		}
		return FactoryResult{Driver: "mysql", Storage: NewSQL(db)}, nil

	default:
		return FactoryResult{}, fmt.Errorf("unknown STORAGE_DRIVER: %s", driver)
	}
}
