package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type AWSServiceProvider interface {
	InitClient(ctx context.Context) error
	UploadObject(ctx context.Context, bucketName, key string, data []byte, contentType string) error
	DeleteObject(ctx context.Context, bucketName, key string) error
	ListObjectKeys(ctx context.Context, bucketName, prefix string, modifiedBefore time.Time) ([]string, error)
	GetPresignedReadURL(ctx context.Context, bucketName, key string) (string, error)
}

type AWSService struct {
	S3Client        *s3.Client
	S3PresignClient *s3.PresignClient
}

func (awsService *AWSService) InitClient(ctx context.Context) error {
	var accountId = GetEnv("R2_ACCOUNT_ID", "")
	var accessKeyId = GetEnv("R2_ACCESS_KEY_ID", "")
	var accessKeySecret = GetEnv("R2_ACCESS_KEY_SECRET", "")
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountId),
		}, nil
	})
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyId, accessKeySecret, "")),
	)
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	awsService.S3Client = s3.NewFromConfig(cfg)
	awsService.S3PresignClient = s3.NewPresignClient(awsService.S3Client)
	return err
}

func (awsService *AWSService) UploadObject(ctx context.Context, bucketName, key string, data []byte, contentType string) error {
	_, err := awsService.S3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %v", key, err)
	}
	return nil
}

func (awsService *AWSService) DeleteObject(ctx context.Context, bucketName, key string) error {
	_, err := awsService.S3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %v", key, err)
	}
	return nil
}

// ListObjectKeys returns keys under prefix whose last modification is before
// modifiedBefore. The cutoff keeps freshly uploaded blobs out of reaper runs
// that race the row update carrying the key.
func (awsService *AWSService) ListObjectKeys(ctx context.Context, bucketName, prefix string, modifiedBefore time.Time) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(awsService.S3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %v", prefix, err)
		}
		for _, object := range page.Contents {
			if object.Key == nil {
				continue
			}
			if object.LastModified != nil && object.LastModified.After(modifiedBefore) {
				continue
			}
			keys = append(keys, *object.Key)
		}
	}
	return keys, nil
}

func (awsService *AWSService) GetPresignedReadURL(ctx context.Context, bucketName, key string) (string, error) {
	presignedGetRequest, err := awsService.S3PresignClient.PresignGetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign request: %v", err)
	}
	return presignedGetRequest.URL, nil
}
