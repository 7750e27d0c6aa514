package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"haven/haven/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOClient struct {
	client *minio.Client
	bucket string
}

func NewMinIOClient(ctx context.Context, cfg config.Config) (*MinIOClient, error) {
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOUseSSL,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	// Create bucket if not exists
	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinIOBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinIOBucket, err)
		}
	}
	return &MinIOClient{client: client, bucket: cfg.MinIOBucket}, nil
}

// TranscriptKey names one export of a conversation. Every export gets its own
// object so earlier snapshots are kept.
func TranscriptKey(conversationID uint, at time.Time) string {
	return path.Join(
		"transcripts",
		fmt.Sprintf("%d", conversationID),
		fmt.Sprintf("%s-%s.json", at.UTC().Format("20060102T150405Z"), uuid.NewString()[:8]),
	)
}

func (m *MinIOClient) UploadTranscript(ctx context.Context, conversationID uint, data []byte) (string, error) {
	key := TranscriptKey(conversationID, time.Now())
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (m *MinIOClient) GetTranscript(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}
