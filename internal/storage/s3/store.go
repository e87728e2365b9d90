// Package s3 хранит список записей каждого вида сущностей отдельным объектом
// <prefix><kind>.json в одном бакете S3-совместимого хранилища (AWS S3, MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/hotelres/internal/codec"
	"github.com/vladislavdragonenkov/hotelres/internal/domain"
)

const (
	defaultRegion = "us-east-1"
	contentType   = "application/json"
	opTimeout     = 10 * time.Second
)

// Config: параметры подключения к бакету.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // непустой для MinIO и других S3-совместимых хранилищ
	Prefix          string
	PathStyle       bool
	AccessKeyID     string // если пусто, стандартная цепочка учётных данных AWS
	SecretAccessKey string
	SessionToken    string
}

// Store: реализация domain.RecordStore поверх S3.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
	logger *log.Entry
}

// New создаёт клиент S3. optFns позволяют дополнительно настроить клиента
// (например, подменить HTTP-транспорт).
func New(ctx context.Context, cfg Config, logger *log.Entry, optFns ...func(*s3.Options)) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	if logger == nil {
		logger = log.New().WithField("component", "s3-store")
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// Контрольные суммы только там, где их требует API.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		for _, fn := range optFns {
			fn(o)
		}
	})

	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, logger: logger}, nil
}

// Name возвращает имя драйвера.
func (s *Store) Name() string { return "s3" }

// Key возвращает ключ объекта хранилища kind.
func (s *Store) Key(kind domain.StoreKind) string {
	return s.prefix + kind.FileName()
}

// EnsureExists создаёт объект с пустым списком, если его нет.
func (s *Store) EnsureExists(kind domain.StoreKind) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	key := s.Key(kind)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err == nil {
		return
	}
	if !isNotFound(err) {
		s.logger.WithError(err).WithField("key", key).Error("failed to check store object")
		return
	}
	if err := s.put(ctx, key, []byte("[]\n")); err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to create empty store object")
	}
}

// ReadAll читает объект хранилища kind.
func (s *Store) ReadAll(kind domain.StoreKind) []domain.Record {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	key := s.Key(kind)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isNotFound(err) {
			s.EnsureExists(kind)
		} else {
			s.logger.WithError(err).WithField("key", key).Error("failed to read store object")
		}
		return []domain.Record{}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to read store object body")
		return []domain.Record{}
	}
	return codec.ParseList(data, "s3://"+s.bucket+"/"+key, s.logger)
}

// WriteAll заменяет объект хранилища kind. PutObject атомарен для читателей.
func (s *Store) WriteAll(kind domain.StoreKind, records []domain.Record) error {
	key := s.Key(kind)
	data, err := codec.MarshalList(records)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to encode store")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.put(ctx, key, data); err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to write store object")
		return err
	}
	return nil
}

// Check проверяет доступность бакета.
func (s *Store) Check() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket}); err != nil {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
