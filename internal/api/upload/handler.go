package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rag-ingest/config"
	"rag-ingest/internal/database"
	"rag-ingest/internal/database/model"
	"rag-ingest/pkg/apperror"
	"rag-ingest/pkg/apperror/status"
	s3client "rag-ingest/pkg/s3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v3"
)

type uploadResponse struct {
	DocID int64 `json:"doc_id"`
}

func HandleUpload(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")
	fh, err := c.FormFile("file")
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "file is required")
	}
	if fh == nil || fh.Size == 0 {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "empty file")
	}

	file, err := fh.Open()
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody, "cannot open file")
	}
	defer file.Close()

	// Hash while streaming to storage
	hasher := sha256.New()
	tee := io.TeeReader(file, hasher)

	useS3 := strings.TrimSpace(config.Cfg.S3.Bucket) != ""

	var storedPath string
	var sha256Hex string
	if useS3 {
		storedPath, sha256Hex, err = storeToS3(tee, fh, hasher)
	} else {
		storedPath, sha256Hex, err = storeToLocal(tee, fh, hasher)
	}
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, status.New(status.UploadStorageFailed, err))
	}

	original := fh.Filename
	now := time.Now()
	doc := model.Document{
		OriginalFilename: &original,
		FilePath:         &storedPath,
		Sha256:           &sha256Hex,
		Status:           "uploaded",
		UploadedAt:       &now,
	}
	if err := database.CreateEntity(context.Background(), &doc); err != nil {
		return apperror.InternalError(config.ModuleUpload, c, status.New(status.UploadInternal, err))
	}

	return apperror.Success(c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "File uploaded successfully",
		TrackingID: trackingID,
		Data:       uploadResponse{DocID: doc.ID},
	})
}

func storeToLocal(r io.Reader, fh *multipart.FileHeader, hasher io.Writer) (string, string, error) {
	baseDir := filepath.Join("storage", "documents")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create storage dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(baseDir, "upload-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
	}()

	mw := io.MultiWriter(tmpFile, hasher)
	if _, err := io.Copy(mw, r); err != nil {
		return "", "", fmt.Errorf("failed to write file: %w", err)
	}

	sum := hasher.(interface{ Sum([]byte) []byte }).Sum(nil)
	shaHex := hex.EncodeToString(sum)
	finalPath := filepath.Join(baseDir, shaHex+fileExt(fh))

	if err := os.Rename(tmpFile.Name(), finalPath); err != nil {
		return "", "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return finalPath, shaHex, nil
}

func storeToS3(r io.Reader, fh *multipart.FileHeader, hasher io.Writer) (string, string, error) {
	client, err := s3client.GetClient()
	if err != nil {
		return "", "", fmt.Errorf("s3 client: %w", err)
	}

	ctx := context.Background()
	bucket := config.Cfg.S3.Bucket
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		_, crtErr := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
		if crtErr != nil {
			var bErr *s3types.BucketAlreadyOwnedByYou
			if !errors.As(crtErr, &bErr) {
				return "", "", fmt.Errorf("create bucket: %w", crtErr)
			}
		}
	}

	// Body is needed twice (hash + upload); buffer to a temp file while hashing.
	tmp, err := os.CreateTemp("", "s3-upload-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("tempfile: %w", err)
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	mw := io.MultiWriter(tmp, hasher)
	if _, err := io.Copy(mw, r); err != nil {
		return "", "", fmt.Errorf("stream copy: %w", err)
	}

	sum := hasher.(interface{ Sum([]byte) []byte }).Sum(nil)
	shaHex := hex.EncodeToString(sum)
	key := fmt.Sprintf("documents/%s%s", shaHex, fileExt(fh))

	if _, err := tmp.Seek(0, 0); err != nil {
		return "", "", fmt.Errorf("seek: %w", err)
	}
	if _, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   tmp,
	}); err != nil {
		return "", "", fmt.Errorf("put object: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", bucket, key), shaHex, nil
}

func fileExt(fh *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = ".pdf"
	}
	return ext
}
