package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/getmentor/mentorship-api/pkg/circuitbreaker"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/getmentor/mentorship-api/pkg/retry"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// MaxFileSize is the largest resume accepted (10MB)
const MaxFileSize = 10 * 1024 * 1024

var allowedContentTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/rtf": ".rtf",
	"text/plain":      ".txt",
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Options configures the S3-compatible client
type Options struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

// putObjectAPI is the subset of the S3 client used here
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client uploads resume files to S3-compatible object storage
type Client struct {
	s3         putObjectAPI
	bucketName string
	endpoint   string
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a new object storage client using the S3 SDK
func NewClient(opts Options) (*Client, error) {
	if opts.BucketName == "" {
		return nil, fmt.Errorf("storage bucket name is required")
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "https://storage.yandexcloud.net"
	}
	if opts.Region == "" {
		opts.Region = "ru-central1"
	}

	s3Client := s3.New(s3.Options{
		Region:       opts.Region,
		BaseEndpoint: aws.String(opts.Endpoint),
		UsePathStyle: true,
		Credentials: credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"", // session token not needed
		),
	})

	logger.Info("Object storage client initialized",
		zap.String("bucket", opts.BucketName),
		zap.String("endpoint", opts.Endpoint),
		zap.String("region", opts.Region),
	)

	return newClient(s3Client, opts.BucketName, opts.Endpoint), nil
}

func newClient(api putObjectAPI, bucketName, endpoint string) *Client {
	return &Client{
		s3:         api,
		bucketName: bucketName,
		endpoint:   strings.TrimRight(endpoint, "/"),
		breaker:    circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("object_storage")),
	}
}

// ReviewFileKey builds the object key for a resume attached to a review
func ReviewFileKey(reviewID, fileName string) string {
	name := unsafeNameChars.ReplaceAllString(path.Base(fileName), "_")
	if name == "" || name == "." || name == "_" {
		name = "resume"
	}
	return fmt.Sprintf("reviews/%s/%s-%s", reviewID, uuid.NewString(), name)
}

// DecodeFile decodes raw base64 or a data URI (data:application/pdf;base64,...)
func DecodeFile(data string) ([]byte, error) {
	if strings.HasPrefix(data, "data:") {
		parts := strings.SplitN(data, ",", 2)
		if len(parts) != 2 {
			return nil, apperrors.InvalidInputError("file", "invalid data URI format")
		}
		data = parts[1]
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, apperrors.InvalidInputError("file", "invalid base64 encoding")
	}
	return decoded, nil
}

// ValidateFileType validates the resume content type
func ValidateFileType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if _, ok := allowedContentTypes[ct]; !ok {
		return apperrors.InvalidInputError("contentType", fmt.Sprintf("%s is not allowed (pdf, doc, docx, rtf, txt)", contentType))
	}
	return nil
}

// ValidateFileSize validates the decoded file size
func ValidateFileSize(data []byte) error {
	if len(data) == 0 {
		return apperrors.InvalidInputError("file", "file is empty")
	}
	if len(data) > MaxFileSize {
		return apperrors.InvalidInputError("file", fmt.Sprintf("file too large: %d bytes (max %d bytes)", len(data), MaxFileSize))
	}
	return nil
}

// Upload stores the file under key and returns its public URL. Failures of the
// storage backend (or an open breaker) surface as ErrUnavailable.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	start := time.Now()
	operation := "putObject"

	if err := ValidateFileType(contentType); err != nil {
		return "", err
	}
	if err := ValidateFileSize(data); err != nil {
		return "", err
	}

	_, err := circuitbreaker.Execute(c.breaker, func() (struct{}, error) {
		err := retry.Do(ctx, retry.StorageConfig(), "storage.putObject", func() error {
			_, putErr := c.s3.PutObject(ctx, &s3.PutObjectInput{
				Bucket:      aws.String(c.bucketName),
				Key:         aws.String(key),
				Body:        bytes.NewReader(data),
				ContentType: aws.String(contentType),
			})
			return putErr
		})
		return struct{}{}, err
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall(ctx, "object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
			zap.String("breaker_state", circuitbreaker.GetState(c.breaker)),
		)
		if apperrors.Is(err, apperrors.ErrUnavailable) {
			return "", err
		}
		return "", apperrors.UnavailableError("object storage", err)
	}

	metrics.StorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall(ctx, "object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
	)

	// Format: {endpoint}/{bucket}/{key}
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucketName, key), nil
}
