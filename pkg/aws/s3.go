package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ImagePresigner issues presigned PUT URLs for product images and knows the
// public URL each uploaded object will be served from.
type ImagePresigner struct {
	presign   *s3.PresignClient
	bucket    string
	prefix    string
	endpoint  string
	cdnDomain string
}

func NewImagePresigner(cfg sdkaws.Config, bucket, prefix, endpoint, cdnDomain string) *ImagePresigner {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// LocalStack and MinIO only serve path-style URLs.
		o.UsePathStyle = endpoint != ""
	})
	return &ImagePresigner{
		presign:   s3.NewPresignClient(client),
		bucket:    bucket,
		prefix:    prefix,
		endpoint:  endpoint,
		cdnDomain: cdnDomain,
	}
}

// ObjectKey prefixes name with the configured key prefix.
func (p *ImagePresigner) ObjectKey(name string) string {
	return p.prefix + name
}

// PresignPut returns a presigned PUT URL for key.
func (p *ImagePresigner) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: sdkaws.String(p.bucket),
		Key:    sdkaws.String(key),
	}
	if contentType != "" {
		input.ContentType = sdkaws.String(contentType)
	}

	presigned, err := p.presign.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign put object: %w", err)
	}
	return presigned.URL, nil
}

// PublicURL is the address an uploaded object is read from: the CDN when one
// is configured, then the custom endpoint, then the bucket's S3 host.
func (p *ImagePresigner) PublicURL(key string) string {
	switch {
	case p.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", strings.TrimRight(p.cdnDomain, "/"), key)
	case p.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(p.endpoint, "/"), p.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", p.bucket, key)
	}
}
