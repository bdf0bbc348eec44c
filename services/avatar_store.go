package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/webmaek/aventus/config"
)

// MaxAvatarSize is the largest accepted avatar upload in bytes.
const MaxAvatarSize = 2 << 20

// AvatarTypes maps accepted image content types to file extensions.
var AvatarTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// AvatarStore persists avatar images and returns their public URL.
type AvatarStore interface {
	Put(ctx context.Context, userID uuid.UUID, contentType string, size int64, body io.Reader) (string, error)
}

// ObjectPutter is the part of the S3 client the avatar store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3AvatarStore struct {
	client  ObjectPutter
	bucket  string
	baseURL string
}

func NewS3AvatarStore(client ObjectPutter, bucket, baseURL string) *S3AvatarStore {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3AvatarStore{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

// NewS3AvatarStoreFromConfig builds the store from AVATAR_BUCKET and AVATAR_BASE_URL
// using the default AWS credential chain. It returns nil when no bucket is configured.
func NewS3AvatarStoreFromConfig(ctx context.Context, c map[string]string) (*S3AvatarStore, error) {
	bucket := config.GetString(c, "AVATAR_BUCKET", "")
	if bucket == "" {
		log.Info().Msg("AVATAR_BUCKET not set, avatar uploads disabled")
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3AvatarStore(s3.NewFromConfig(awsCfg), bucket, config.GetString(c, "AVATAR_BASE_URL", "")), nil
}

func (s *S3AvatarStore) Put(ctx context.Context, userID uuid.UUID, contentType string, size int64, body io.Reader) (string, error) {
	ext, ok := AvatarTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported avatar type %q", contentType)
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", userID, uuid.NewString(), ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	log.Debug().Str("key", key).Msg("Stored avatar")
	return s.baseURL + "/" + key, nil
}
