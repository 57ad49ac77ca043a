package storage

import (
	"context"
	"fmt"
	"time"

	"blog-ingest/config"
	"blog-ingest/ingestion"
)

// New 는 설정의 driver 값에 맞는 Store 를 생성한다.
func New(ctx context.Context, cfg config.StorageConfig) (ingestion.Store, error) {
	switch cfg.Driver {
	case "", "s3":
		return NewS3Store(ctx, Config{
			Endpoint:        cfg.Endpoint,
			Region:          cfg.Region,
			Bucket:          cfg.Bucket,
			AccessKeyID:     cfg.Credentials.AccessKeyID,
			SecretAccessKey: cfg.Credentials.SecretAccessKey,
			PublicBaseURL:   cfg.PublicBaseURL,
			ForcePathStyle:  cfg.ForcePathStyle,
		})
	case "memory":
		return NewMemoryStore(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// IngestionConfig 는 스토리지 설정에서 업로드 제한 시간/청크 크기를 꺼낸다.
func IngestionConfig(cfg config.StorageConfig) ingestion.Config {
	return ingestion.Config{
		DefaultTimeout: msToDuration(cfg.DefaultTimeoutMs),
		VideoTimeout:   msToDuration(cfg.VideoTimeoutMs),
		ChunkSizeBytes: cfg.ChunkSizeBytes,
	}
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
