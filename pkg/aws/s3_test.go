package aws

import (
	"context"
	"strings"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() sdkaws.Config {
	return sdkaws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	}
}

func TestImagePresigner_PublicURL(t *testing.T) {
	cdn := NewImagePresigner(testConfig(), "catalog-images", "products/", "", "cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/products/a.jpg", cdn.PublicURL(cdn.ObjectKey("a.jpg")))

	local := NewImagePresigner(testConfig(), "catalog-images", "", "http://localhost:4566/", "")
	assert.Equal(t, "http://localhost:4566/catalog-images/a.jpg", local.PublicURL("a.jpg"))

	s3Default := NewImagePresigner(testConfig(), "catalog-images", "", "", "")
	assert.Equal(t, "https://catalog-images.s3.amazonaws.com/a.jpg", s3Default.PublicURL("a.jpg"))
}

func TestImagePresigner_PresignPut(t *testing.T) {
	p := NewImagePresigner(testConfig(), "catalog-images", "products/", "", "")

	url, err := p.PresignPut(context.Background(), p.ObjectKey("classic.jpg"), "image/jpeg", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://catalog-images.s3.us-east-1.amazonaws.com/products/classic.jpg?"), url)
	assert.Contains(t, url, "X-Amz-Expires=900")
}

func TestMetricsClient_DisabledIsNoop(t *testing.T) {
	m := NewMetricsClient(testConfig(), "", false)
	assert.False(t, m.IsEnabled())
	assert.NoError(t, m.RecordCount(context.Background(), MetricProductsCreated, nil))

	var nilClient *MetricsClient
	assert.NoError(t, nilClient.RecordValue(context.Background(), MetricCacheHits, 1, nil))
}
