// Package cloudsync uploads ended session summaries to S3-compatible object storage.
package cloudsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"openplay-app/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"
)

type Config struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Bucket) != ""
}

// Syncer publishes a summary and returns where it can be read back.
type Syncer interface {
	Sync(ctx context.Context, summary model.Summary) (string, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Uploader struct {
	client        objectPutter
	bucket        string
	publicBaseURL string
}

func NewUploader(ctx context.Context, cfg Config) (*Uploader, error) {
	if !cfg.Enabled() {
		return nil, errors.New("sync bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	sdkCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load sync config: %w", err)
	}
	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newUploader(client, cfg), nil
}

func newUploader(client objectPutter, cfg Config) *Uploader {
	return &Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

func (u *Uploader) Sync(ctx context.Context, summary model.Summary) (string, error) {
	if summary.SessionID == "" {
		return "", errors.New("summary has no session id")
	}
	body, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	key := ObjectKey(summary)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload summary (key: %s): %w", key, err)
	}
	return u.PublicURL(key), nil
}

func (u *Uploader) PublicURL(key string) string {
	if u.publicBaseURL == "" {
		return key
	}
	return u.publicBaseURL + "/" + key
}

// ObjectKey is sessions/<location-slug>-<session id>.json.
func ObjectKey(summary model.Summary) string {
	name := slug.Make(summary.Location)
	if name == "" {
		name = "session"
	}
	return fmt.Sprintf("sessions/%s-%s.json", name, summary.SessionID)
}
