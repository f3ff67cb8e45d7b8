package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/artem13815/recruitment/pkg/config"
)

// S3 stores resumes as objects under a fixed key prefix of one bucket.
// The prefix plays the role of the storage root.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
	policy Policy
	now    func() time.Time
}

// NewS3 creates a new S3 storage instance
func NewS3(ctx context.Context, cfg config.StorageConfig, policy Policy) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		// Use explicit credentials
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{
		client: client,
		bucket: cfg.S3Bucket,
		prefix: normalizePrefix(cfg.S3Prefix),
		policy: policy,
		now:    time.Now,
	}, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func (s *S3) objectKey(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return s.prefix + key, nil
}

func (s *S3) Save(ctx context.Context, ownerID uuid.UUID, filename string, data io.Reader) (string, error) {
	if !s.policy.Allows(filename) {
		return "", ErrValidation("unsupported file format")
	}
	// resumes are small; buffering gives PutObject a seekable body
	var buf bytes.Buffer
	if _, err := copyLimited(&buf, data, s.policy.MaxBytes); err != nil {
		return "", err
	}
	now := s.now()
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key := generateKey(ownerID, filename, now, attempt)
		objKey, err := s.objectKey(key)
		if err != nil {
			return "", err
		}
		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(objKey),
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: aws.String(ContentType(filename)),
			IfNoneMatch: aws.String("*"),
		})
		if statusCode(err) == http.StatusPreconditionFailed {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to upload to S3: %w", err)
		}
		return key, nil
	}
	return "", fmt.Errorf("failed to allocate a unique name for %q", filename)
}

func (s *S3) Stat(ctx context.Context, key string) (Info, error) {
	objKey, err := s.objectKey(key)
	if err != nil {
		return Info{}, err
	}
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objKey),
	})
	if err != nil {
		if isNotFound(err) {
			return Info{}, ErrNotFound
		}
		return Info{}, fmt.Errorf("failed to stat S3 object: %w", err)
	}
	return Info{Key: key, Size: aws.ToInt64(out.ContentLength), ModTime: aws.ToTime(out.LastModified)}, nil
}

func (s *S3) Open(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	objKey, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}
	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objKey),
	}
	switch {
	case length > 0:
		in.Range = aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))
	case length < 0 && offset > 0:
		in.Range = aws.String(fmt.Sprintf("bytes=%d-", offset))
	}
	out, err := s.client.GetObject(ctx, in)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	if length == 0 {
		// no valid Range header exists for an empty read
		return limitedReadCloser{Reader: io.LimitReader(out.Body, 0), Closer: out.Body}, nil
	}
	return out.Body, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	objKey, err := s.objectKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objKey),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *S3) Check(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf) || statusCode(err) == http.StatusNotFound
}

func statusCode(err error) int {
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}
