package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/avolkov/plateful/backend/config"
)

// ImageStorage stores a submitted recipe image and returns the URL to keep
// on the recipe. Handlers hold this interface so tests can run without S3.
type ImageStorage interface {
	StoreRecipeImage(ctx context.Context, payload string) (string, error)
}

// ImageService uploads base64-submitted recipe images to S3.
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// StoreRecipeImage accepts either a plain URL (stored as-is) or a
// "data:<mime>;base64,<data>" payload, which is decoded and uploaded to S3
// under recipes/. Returns the public object URL.
func (s *ImageService) StoreRecipeImage(ctx context.Context, payload string) (string, error) {
	if !strings.HasPrefix(payload, "data:") {
		return payload, nil
	}

	mime, data, err := decodeDataURI(payload)
	if err != nil {
		return "", err
	}

	ext := "jpg"
	switch mime {
	case "image/png":
		ext = "png"
	case "image/gif":
		ext = "gif"
	case "image/webp":
		ext = "webp"
	}

	key := fmt.Sprintf("recipes/%s.%s", uuid.New().String(), ext)
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mime),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key)
	log.Printf("[ImageService] Uploaded recipe image to %s", url)
	return url, nil
}

func decodeDataURI(payload string) (string, []byte, error) {
	rest := strings.TrimPrefix(payload, "data:")
	semi := strings.Index(rest, ";base64,")
	if semi < 0 {
		return "", nil, fmt.Errorf("unsupported image payload")
	}
	mime := rest[:semi]
	data, err := base64.StdEncoding.DecodeString(rest[semi+len(";base64,"):])
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return mime, data, nil
}
