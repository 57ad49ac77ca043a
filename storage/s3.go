package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"blog-ingest/ingestion"
	"blog-ingest/internal/logger"
)

// Config 는 S3 호환 스토리지(S3/R2/MinIO) 연결 정보이다.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL 이 있으면 에셋 URL 을 <PublicBaseURL>/<key> 로 만든다. (CDN 등)
	PublicBaseURL  string
	ForcePathStyle bool
}

type S3Store struct {
	client        *s3.Client
	bucket        string
	region        string
	publicBaseURL string
}

// NewS3Store 는 기본 자격 증명 체인 또는 정적 자격 증명으로 S3 클라이언트를 만든다.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// R2/MinIO 는 기본 CRC 체크섬 트레일러를 지원하지 않는다.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	logger.InfoWithFields("s3 storage client initialized", logger.Fields{
		"bucket":   cfg.Bucket,
		"endpoint": cfg.Endpoint,
		"region":   region,
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		region:        region,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// URL 은 key 의 공개 URL 을 반환한다.
func (s *S3Store) URL(key string) string {
	return PublicURL(s.publicBaseURL, s.bucket, s.region, key)
}

func PublicURL(baseURL, bucket, region, key string) string {
	if baseURL != "" {
		return strings.TrimRight(baseURL, "/") + "/" + key
	}
	if region == "" || region == "auto" || region == "us-east-1" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}

func (s *S3Store) Put(ctx context.Context, obj ingestion.Object, opts ingestion.PutOptions) (ingestion.StoredAsset, error) {
	var err error
	if opts.Chunked {
		err = s.putMultipart(ctx, obj, opts.ChunkSize)
	} else {
		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(obj.Key),
			Body:          bytes.NewReader(obj.Body),
			ContentLength: aws.Int64(int64(len(obj.Body))),
			ContentType:   aws.String(obj.ContentType),
		})
	}
	if err != nil {
		return ingestion.StoredAsset{}, fmt.Errorf("s3 upload %s: %w", obj.Key, err)
	}

	return ingestion.StoredAsset{
		URL:          s.URL(obj.Key),
		Key:          obj.Key,
		Folder:       opts.Folder,
		ContentType:  obj.ContentType,
		ResourceType: opts.ResourceType,
		Size:         int64(len(obj.Body)),
	}, nil
}

func (s *S3Store) putMultipart(ctx context.Context, obj ingestion.Object, chunkSize int64) error {
	created, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(obj.Key),
		ContentType: aws.String(obj.ContentType),
	})
	if err != nil {
		return fmt.Errorf("create multipart upload: %w", err)
	}
	uploadID := created.UploadId

	var parts []types.CompletedPart
	for i, chunk := range Chunks(obj.Body, chunkSize) {
		partNumber := int32(i + 1)
		out, err := s.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(obj.Key),
			UploadId:      uploadID,
			PartNumber:    aws.Int32(partNumber),
			Body:          bytes.NewReader(chunk),
			ContentLength: aws.Int64(int64(len(chunk))),
		})
		if err != nil {
			s.abortMultipart(ctx, obj.Key, uploadID)
			return fmt.Errorf("upload part %d: %w", partNumber, err)
		}
		parts = append(parts, types.CompletedPart{ETag: out.ETag, PartNumber: aws.Int32(partNumber)})
	}

	if _, err := s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(obj.Key),
		UploadId:        uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{Parts: parts},
	}); err != nil {
		s.abortMultipart(ctx, obj.Key, uploadID)
		return fmt.Errorf("complete multipart upload: %w", err)
	}
	return nil
}

func (s *S3Store) abortMultipart(ctx context.Context, key string, uploadID *string) {
	// 업로드 컨텍스트가 타임아웃으로 끝났어도 abort 는 보내야 미완료 파트가 남지 않는다.
	if _, err := s.client.AbortMultipartUpload(context.WithoutCancel(ctx), &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		UploadId: uploadID,
	}); err != nil {
		logger.WarnWithFields("failed to abort multipart upload", logger.Fields{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]ingestion.ObjectInfo, error) {
	var out []ingestion.ObjectInfo
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", prefix, err)
		}
		for _, o := range page.Contents {
			key := aws.ToString(o.Key)
			out = append(out, ingestion.ObjectInfo{
				Key:          key,
				URL:          s.URL(key),
				Size:         aws.ToInt64(o.Size),
				LastModified: aws.ToTime(o.LastModified),
			})
		}
	}
	return out, nil
}

// Chunks 는 body 를 size 바이트 단위로 나눈다. 마지막 조각은 더 작을 수 있다.
func Chunks(body []byte, size int64) [][]byte {
	if size <= 0 || int64(len(body)) <= size {
		return [][]byte{body}
	}
	var out [][]byte
	for start := int64(0); start < int64(len(body)); start += size {
		end := min(start+size, int64(len(body)))
		out = append(out, body[start:end])
	}
	return out
}
