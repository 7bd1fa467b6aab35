package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/config"
)

// maxMirrorBytes caps the size of an image the mirror will copy.
const maxMirrorBytes = 10 * 1024 * 1024

// ImageMirror copies resolved landmark images into R2 so clients load them
// from our bucket instead of hotlinking the source wiki.
type ImageMirror struct {
	client *s3.Client
	cfg    *config.R2Config
	http   *http.Client
	log    *zap.Logger
}

func NewImageMirror(cfg *config.R2Config, log *zap.Logger) *ImageMirror {
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		Region: cfg.Region,
	})

	return &ImageMirror{
		client: client,
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// Mirror downloads the image and re-uploads it under a fresh key, returning
// the public URL of the copy.
func (m *ImageMirror) Mirror(ctx context.Context, srcURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "build download request")
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "download image")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("download image: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMirrorBytes+1))
	if err != nil {
		return "", errors.Wrap(err, "read image body")
	}
	if len(body) > maxMirrorBytes {
		return "", errors.New("image exceeds mirror size limit")
	}

	key := m.generateKey(srcURL)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.cfg.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(resp.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", errors.Wrap(err, "upload to bucket")
	}

	m.log.Debug("image mirrored", zap.String("key", key), zap.Int("bytes", len(body)))
	return fmt.Sprintf("%s/%s", m.cfg.PublicURL, key), nil
}

func (m *ImageMirror) generateKey(srcURL string) string {
	ext := path.Ext(srcURL)
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	return fmt.Sprintf("landmarks/%d_%s%s", time.Now().Unix(), uuid.New().String(), ext)
}
