package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/subpic-mcp/internal/logging"
)

// errCodeNotFound is what HeadBucket reports for a missing bucket; the
// response has no body, so the SDK falls back to the HTTP status text.
const errCodeNotFound = "NotFound"

// S3Store writes sub-pictures as objects in an S3 bucket. Options.Directory
// is used as the key prefix.
type S3Store struct {
	Client s3iface.S3API
	Bucket string
	Logger logrus.FieldLogger
}

// NewS3Store connects to S3 using the default credential chain. An empty
// region falls back to the environment (AWS_REGION) and shared config.
func NewS3Store(region, bucket string, log logrus.FieldLogger) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up aws session: %w", err)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &S3Store{
		Client: s3.New(sess),
		Bucket: bucket,
		Logger: log,
	}, nil
}

// Save uploads every image as {prefix}/{FileName}{n}.{ext}.
//
// A missing bucket yields ErrInvalidDirectory unless CreateDirectory is set,
// in which case the bucket is created first. The counter is computed from
// the objects directly under the prefix, and names already present there
// are skipped. As with LocalStore, a failed upload deletes the objects this
// call already wrote.
func (s *S3Store) Save(images []image.Image, opts Options) (*SaveResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureBucket(opts.CreateDirectory); err != nil {
		return nil, err
	}

	prefix := strings.Trim(opts.Directory, "/")
	if prefix != "" {
		prefix += "/"
	}

	existing, err := s.listNames(prefix)
	if err != nil {
		return nil, err
	}
	names, first := allocateNames(existing, opts.FileName, opts.Format, len(images))

	result := &SaveResult{FirstCounter: first, Paths: make([]string, 0, len(images))}
	for i, img := range images {
		key := prefix + names[i]

		var buf bytes.Buffer
		if err := opts.Format.Encode(&buf, img, opts.JPEGQuality); err != nil {
			s.rollback(result.Paths)
			return nil, err
		}

		_, err := s.Client.PutObject(&s3.PutObjectInput{
			Bucket:      aws.String(s.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(buf.Bytes()),
			ContentType: aws.String(opts.Format.ContentType()),
		})
		if err != nil {
			s.rollback(result.Paths)
			return nil, fmt.Errorf("failed to upload s3://%s/%s: %w", s.Bucket, key, err)
		}
		result.Paths = append(result.Paths, key)
	}
	result.Count = len(result.Paths)

	s.logger().WithFields(logrus.Fields{
		"bucket":        s.Bucket,
		"prefix":        prefix,
		"first_counter": first,
	}).Infof("%d pics saved successfully", result.Count)
	return result, nil
}

func (s *S3Store) ensureBucket(create bool) error {
	_, err := s.Client.HeadBucket(&s3.HeadBucketInput{
		Bucket: aws.String(s.Bucket),
	})
	if err == nil {
		return nil
	}

	var aerr awserr.Error
	if !errors.As(err, &aerr) || (aerr.Code() != errCodeNotFound && aerr.Code() != s3.ErrCodeNoSuchBucket) {
		return fmt.Errorf("failed to check bucket %s: %w", s.Bucket, err)
	}
	if !create {
		return fmt.Errorf("bucket %s: %w", s.Bucket, ErrInvalidDirectory)
	}

	_, err = s.Client.CreateBucket(&s3.CreateBucketInput{
		Bucket: aws.String(s.Bucket),
	})
	if err != nil {
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeBucketAlreadyExists || aerr.Code() == s3.ErrCodeBucketAlreadyOwnedByYou) {
			s.logger().WithField("bucket", s.Bucket).Debug("bucket already exists")
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", s.Bucket, err)
	}
	s.logger().WithField("bucket", s.Bucket).Info("created bucket")
	return nil
}

// listNames returns the base names of the objects directly under prefix.
func (s *S3Store) listNames(prefix string) ([]string, error) {
	var names []string
	err := s.Client.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket: aws.String(s.Bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, last bool) bool {
		for _, obj := range page.Contents {
			rest := strings.TrimPrefix(aws.StringValue(obj.Key), prefix)
			if rest == "" || strings.Contains(rest, "/") {
				continue
			}
			names = append(names, rest)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.Bucket, prefix, err)
	}
	return names, nil
}

// rollback deletes the objects uploaded by a failed save.
func (s *S3Store) rollback(keys []string) {
	for _, key := range keys {
		_, err := s.Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			s.logger().WithError(err).WithField("key", key).Warn("failed to delete partial upload")
		}
	}
}

func (s *S3Store) logger() logrus.FieldLogger {
	if s.Logger == nil {
		return logging.Discard()
	}
	return s.Logger
}
