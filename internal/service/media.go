package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"lumigram/internal/config"
	"lumigram/internal/model"
)

// ImageStore stores uploaded images and hands back their public URL and
// object key.
type ImageStore interface {
	UploadPostImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
	UploadProfileImage(ctx context.Context, file multipart.File, header *multipart.FileHeader, crop *model.CropRect) (*model.UploadResult, error)
	DeleteObject(ctx context.Context, key string) error
}

// MediaService uploads to any S3-compatible bucket (R2, MinIO, S3).
type MediaService struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

func NewMediaService(ctx context.Context, cfg *config.Config) (*MediaService, error) {
	if cfg.StorageEndpoint == "" || cfg.StorageAccessKeyID == "" || cfg.StorageSecretAccessKey == "" || cfg.StorageBucket == "" || cfg.StoragePublicURL == "" {
		return nil, fmt.Errorf("missing object storage configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.StorageRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.StorageAccessKeyID, cfg.StorageSecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for object storage: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		o.UsePathStyle = true
	})

	return &MediaService{
		s3Client:  s3Client,
		bucket:    cfg.StorageBucket,
		publicURL: strings.TrimSuffix(cfg.StoragePublicURL, "/"),
	}, nil
}

// UploadPostImage stores the original bytes under posts/<uuid>.<ext>.
func (s *MediaService) UploadPostImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	data, contentType, err := readAndValidateImage(file, header, model.MaxPostImageSize)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", model.PostImageFolder, uuid.NewString(), model.ImageExtension(contentType))
	if err := s.putObject(ctx, key, data, contentType, model.PostCacheControl); err != nil {
		return nil, err
	}

	log.Printf("[MediaService] Uploaded post image: key=%s bytes=%d", key, len(data))
	return &model.UploadResult{URL: s.objectURL(key), Key: key}, nil
}

// UploadProfileImage applies the optional crop, then normalizes to a square
// JPEG before uploading.
func (s *MediaService) UploadProfileImage(ctx context.Context, file multipart.File, header *multipart.FileHeader, crop *model.CropRect) (*model.UploadResult, error) {
	data, _, err := readAndValidateImage(file, header, model.MaxProfileImageSize)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := processProfileImage(data, crop)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", model.ProfileImageFolder, uuid.NewString(), model.ProfileImageExt)
	if err := s.putObject(ctx, key, jpegBytes, model.ContentTypeJPEG, model.ProfileCacheControl); err != nil {
		return nil, err
	}

	return &model.UploadResult{URL: s.objectURL(key), Key: key}, nil
}

func (s *MediaService) objectURL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}

// readAndValidateImage loads the upload into memory with size and type checks.
func readAndValidateImage(file io.Reader, header *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if header.Size > maxSize {
		return nil, "", model.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", model.ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !model.IsAllowedImageType(contentType) {
		return nil, "", model.ErrInvalidImageType
	}

	return data, contentType, nil
}

// processProfileImage crops to the requested rectangle, if any, and fills
// the profile image size as JPEG.
func processProfileImage(data []byte, crop *model.CropRect) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, model.ErrInvalidImageType
	}

	if crop != nil {
		rect, err := cropBounds(img.Bounds(), crop)
		if err != nil {
			return nil, err
		}
		img = imaging.Crop(img, rect)
	}

	resized := imaging.Fill(img, model.ProfileImageWidth, model.ProfileImageHeight, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// cropBounds converts a crop request into an absolute rectangle that must lie
// inside the image.
func cropBounds(bounds image.Rectangle, crop *model.CropRect) (image.Rectangle, error) {
	if crop.Width <= 0 || crop.Height <= 0 || crop.X < 0 || crop.Y < 0 {
		return image.Rectangle{}, model.ErrInvalidCropRect
	}
	rect := image.Rect(crop.X, crop.Y, crop.X+crop.Width, crop.Y+crop.Height).Add(bounds.Min)
	if !rect.In(bounds) {
		return image.Rectangle{}, model.ErrInvalidCropRect
	}
	return rect, nil
}

func (s *MediaService) putObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to object storage: %w", err)
	}
	return nil
}

// DeleteObject removes an object by key. An empty key is a no-op.
func (s *MediaService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from object storage: %w", err)
	}
	return nil
}
