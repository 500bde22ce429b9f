// Package s3 implements storage.ObjectStore on top of aws-sdk-go-v2. Ranged
// parallel downloads and multipart uploads go through the s3 transfer manager.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/data-juicer/dj-agent/pkg/afero"
	"github.com/data-juicer/dj-agent/pkg/logging"
	"github.com/data-juicer/dj-agent/pkg/storage"
)

const providerName = "s3"

// Store implements storage.ObjectStore for S3 and S3-compatible endpoints.
// Local files are read and written through fs.
type Store struct {
	client     *s3.Client
	downloader *manager.Downloader
	uploader   *manager.Uploader
	fs         afero.Fs
	logger     logging.Interface
	config     *Config
}

var _ storage.ObjectStore = (*Store)(nil)

// New creates a Store from a validated Config.
func New(ctx context.Context, cfg *Config, fs afero.Fs) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil s3 config", storage.ErrInvalidConfig)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
		// Most S3-compatible stores reject the default trailing checksums.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	downloader := manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = cfg.PartSize
		d.Concurrency = cfg.Concurrency
	})
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = cfg.PartSize
		u.Concurrency = cfg.Concurrency
		u.LeavePartsOnError = false
	})

	return &Store{
		client:     client,
		downloader: downloader,
		uploader:   uploader,
		fs:         fs,
		logger:     cfg.Logger,
		config:     cfg,
	}, nil
}

func loadAWSConfig(ctx context.Context, cfg *Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	if awsCfg.Region == "" {
		// S3-compatible endpoints rarely care, but the signer needs something.
		awsCfg.Region = "us-east-1"
	}
	return awsCfg, nil
}

// GetObject reads the whole object into memory.
func (s *Store) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify("get", bucket, key, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, storage.NewError("get", uriString(bucket, key), providerName, err)
	}
	return data, nil
}

// DownloadToFile fetches the object in PartSize ranges into a temp file next
// to localPath and renames it into place once every range has landed.
func (s *Store) DownloadToFile(ctx context.Context, bucket, key, localPath string) error {
	pending, err := afero.CreatePending(s.fs, localPath)
	if err != nil {
		return storage.NewError("download", uriString(bucket, key), providerName, err)
	}

	n, err := s.downloader.Download(ctx, pending, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		pending.Abort()
		return classify("download", bucket, key, err)
	}
	if err := pending.Commit(); err != nil {
		return storage.NewError("download", uriString(bucket, key), providerName, err)
	}

	s.logger.WithField("uri", uriString(bucket, key)).
		WithField("path", localPath).
		WithField("bytes", n).
		Debug("Downloaded object")
	return nil
}

// UploadFile puts localPath under bucket/key. Files larger than PartSize go
// through the multipart uploader.
func (s *Store) UploadFile(ctx context.Context, localPath, bucket, key string) error {
	f, err := s.fs.Open(localPath)
	if err != nil {
		return storage.NewError("upload", localPath, providerName, fmt.Errorf("failed to open file: %w", err))
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return storage.NewError("upload", localPath, providerName, fmt.Errorf("failed to stat file: %w", err))
	}

	if info.Size() > s.config.PartSize {
		_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   f,
		})
	} else {
		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(key),
			Body:          f,
			ContentLength: aws.Int64(info.Size()),
		})
	}
	if err != nil {
		return classify("upload", bucket, key, err)
	}
	return nil
}

// HeadObject returns the object's metadata, or an error matching
// storage.ErrNotFound when it does not exist.
func (s *Store) HeadObject(ctx context.Context, bucket, key string) (*storage.ObjectInfo, error) {
	resp, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify("head", bucket, key, err)
	}

	return &storage.ObjectInfo{
		Size:         aws.ToInt64(resp.ContentLength),
		ETag:         aws.ToString(resp.ETag),
		LastModified: resp.LastModified,
	}, nil
}

// classify maps SDK errors onto the storage sentinels while keeping the
// original error in the chain.
func classify(op, bucket, key string, err error) error {
	if sentinel := sentinelFor(err); sentinel != nil {
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	return storage.NewError(op, uriString(bucket, key), providerName, err)
}

func sentinelFor(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return storage.ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return storage.ErrNotFound
		case "AccessDenied", "Forbidden":
			return storage.ErrAccessDenied
		}
	}

	// The SDK's response errors all expose the status of the failed call.
	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		switch statusErr.HTTPStatusCode() {
		case 404:
			return storage.ErrNotFound
		case 403:
			return storage.ErrAccessDenied
		}
	}
	return nil
}

func uriString(bucket, key string) string {
	return storage.ObjectURI{Bucket: bucket, Key: key}.String()
}
