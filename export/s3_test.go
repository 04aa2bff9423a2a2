package export

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}

	b, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	key := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	m.objects[key] = b
	m.types[key] = aws.ToString(params.ContentType)

	return &s3.PutObjectOutput{}, nil
}

func TestParseS3(t *testing.T) {
	object, err := ParseS3("s3://budget-exports/2026/december.tsv.zst")
	require.NoError(t, err)
	assert.Equal(t, Object{Bucket: "budget-exports", Key: "2026/december.tsv.zst"}, object)
	assert.Equal(t, "s3://budget-exports/2026/december.tsv.zst", object.String())

	for _, v := range []string{"s3://", "s3://budget-exports", "s3://budget-exports/", "s3://budget-exports/2026/", "https://budget-exports/december.tsv"} {
		_, err := ParseS3(v)
		assert.Error(t, err, v)
	}
}

func TestIsS3(t *testing.T) {
	assert.True(t, IsS3("s3://budget-exports/december.tsv"))
	assert.True(t, IsS3("S3://budget-exports/december.tsv"))
	assert.False(t, IsS3("exports/december.tsv"))
}

func TestUpload(t *testing.T) {
	client := &mockS3{objects: map[string][]byte{}, types: map[string]string{}}
	object := Object{Bucket: "budget-exports", Key: "december.tsv"}

	err := Upload(context.Background(), client, object, []byte("Name\tPay\n"), ContentType("tsv", false))
	require.NoError(t, err)

	assert.Equal(t, "Name\tPay\n", string(client.objects["budget-exports/december.tsv"]))
	assert.Equal(t, "text/tab-separated-values", client.types["budget-exports/december.tsv"])
}

func TestUploadWithAPIError(t *testing.T) {
	client := &mockS3{err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}}

	err := Upload(context.Background(), client, Object{Bucket: "budget-exports", Key: "december.tsv"}, []byte{}, "")

	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.ErrorContains(t, err, "AccessDenied")
	assert.ErrorContains(t, err, "s3://budget-exports/december.tsv")
}

func TestUploadWithoutClient(t *testing.T) {
	assert.Error(t, Upload(context.Background(), nil, Object{Bucket: "b", Key: "k"}, nil, ""))
}

func TestNewClientWithEndpoint(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	var mu sync.Mutex
	requests := []string{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)

		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(context.Background(), ClientConfig{
		Region:       "us-east-1",
		Endpoint:     srv.URL,
		UsePathStyle: true,
		Credentials:  StaticCredentials("test", "test"),
	})
	require.NoError(t, err)

	err = Upload(context.Background(), client, Object{Bucket: "budget-exports", Key: "2026/december.json"}, []byte(`[]`), ContentType("json", false))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"PUT /budget-exports/2026/december.json"}, requests)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("BUDGET_SHEETS_S3_REGION", "eu-west-1")
	t.Setenv("BUDGET_SHEETS_S3_ENDPOINT", " http://localhost:9000 ")
	t.Setenv("BUDGET_SHEETS_S3_PATH_STYLE", "true")

	cfg := ConfigFromEnv()

	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "http://localhost:9000", cfg.Endpoint)
	assert.True(t, cfg.UsePathStyle)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", ContentType("json", false))
	assert.Equal(t, "application/zstd", ContentType("json", true))
	assert.Equal(t, "application/vnd.apache.parquet", ContentType("parquet", false))
}
