package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	HTTPAddr    string // GV_HTTP_ADDR (default ":8080")
	TenantsFile string // GV_TENANTS_FILE (required; TOML tenant registry)
	NATSURL     string // GV_NATS_URL (optional, empty = no events)
	AuthToken   string // GV_AUTH_TOKEN (optional, empty = auth disabled)

	// Secret store settings
	AWSRegion   string // GV_AWS_REGION (default "us-east-1")
	SSMEndpoint string // GV_SSM_ENDPOINT (custom endpoint for localstack)

	// Backup settings
	BackupInterval   time.Duration // GV_BACKUP_INTERVAL (default 15m; 0 = disabled)
	BackupS3Bucket   string        // GV_BACKUP_S3_BUCKET (enables backup when set)
	BackupS3Key      string        // GV_BACKUP_S3_KEY (default "gridvault/configs.jsonl")
	BackupS3Region   string        // GV_BACKUP_S3_REGION (default "us-east-1")
	BackupS3Endpoint string        // GV_BACKUP_S3_ENDPOINT (custom endpoint for MinIO)
}

func Load() (*Config, error) {
	c := &Config{
		HTTPAddr:         envOrDefault("GV_HTTP_ADDR", ":8080"),
		TenantsFile:      os.Getenv("GV_TENANTS_FILE"),
		NATSURL:          os.Getenv("GV_NATS_URL"),
		AuthToken:        os.Getenv("GV_AUTH_TOKEN"),
		AWSRegion:        envOrDefault("GV_AWS_REGION", "us-east-1"),
		SSMEndpoint:      os.Getenv("GV_SSM_ENDPOINT"),
		BackupS3Bucket:   os.Getenv("GV_BACKUP_S3_BUCKET"),
		BackupS3Key:      envOrDefault("GV_BACKUP_S3_KEY", "gridvault/configs.jsonl"),
		BackupS3Region:   envOrDefault("GV_BACKUP_S3_REGION", "us-east-1"),
		BackupS3Endpoint: os.Getenv("GV_BACKUP_S3_ENDPOINT"),
	}
	if c.TenantsFile == "" {
		return nil, fmt.Errorf("GV_TENANTS_FILE is required")
	}

	intervalStr := envOrDefault("GV_BACKUP_INTERVAL", "15m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("GV_BACKUP_INTERVAL: %w", err)
		}
		c.BackupInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
