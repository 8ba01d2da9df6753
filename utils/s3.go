package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

var s3Client *s3.Client

// InitS3 sets up the S3 client for meal photo storage. The bucket is
// optional: when S3_BUCKET is unset, photos are kept inline in the database
// instead.
func InitS3() {
	if os.Getenv("S3_BUCKET") == "" {
		Logger.Info("s3_disabled_storing_images_inline")
		return
	}

	region := os.Getenv("S3_REGION")
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		Logger.Error("s3_config_failed", zap.Error(err))
		return
	}

	s3Client = s3.NewFromConfig(cfg)
	Logger.Info("s3_ready", zap.String("bucket", os.Getenv("S3_BUCKET")))
}

func S3Enabled() bool {
	return s3Client != nil
}

// UploadMealImage stores a base64 image under meal-photos/ and returns its
// public URL. A leading data URI prefix is tolerated and stripped.
func UploadMealImage(imageBase64, contentType, filenamePrefix string) (string, error) {
	data := imageBase64
	if strings.HasPrefix(data, "data:") {
		parts := strings.SplitN(data, ",", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("invalid data URI")
		}
		meta := strings.SplitN(parts[0], ":", 2)[1] // "image/jpeg;base64"
		contentType = strings.SplitN(meta, ";", 2)[0]
		data = parts[1]
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	imageData, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	ext := ".jpg"
	if sub := strings.SplitN(contentType, "/", 2); len(sub) == 2 && sub[1] != "jpeg" {
		ext = "." + sub[1]
	}

	key := fmt.Sprintf("meal-photos/%s-%d%s", filenamePrefix, time.Now().UnixNano(), ext)

	_, err = s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(os.Getenv("S3_BUCKET")),
		Key:         aws.String(key),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	base := os.Getenv("CLOUDFRONT_URL")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.amazonaws.com", os.Getenv("S3_BUCKET"))
	}
	return fmt.Sprintf("%s/%s", base, key), nil
}
