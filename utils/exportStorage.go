package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var ErrorExportStorageDisabled = errors.New("export storage is not configured (GCS_BUCKET)")

func exportBucket() string {
	return strings.TrimSpace(os.Getenv("GCS_BUCKET"))
}

// ExportStorageEnabled reports whether agency exports can be persisted to GCS.
func ExportStorageEnabled() bool {
	return exportBucket() != ""
}

// getGoogleClient prefers explicit GCS_CREDENTIALS_JSON and falls back to ADC.
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// ExportObjectName is agencies/<id>/exports/<fileName>.
func ExportObjectName(agencyId int, fileName string) string {
	return fmt.Sprintf("agencies/%d/exports/%s", agencyId, strings.TrimLeft(fileName, "/"))
}

// UploadExport writes data to the export bucket under objectName.
func UploadExport(ctx context.Context, objectName string, contentType string, data []byte) error {
	bucketName := exportBucket()
	if bucketName == "" {
		return ErrorExportStorageDisabled
	}
	if strings.Contains(objectName, "..") {
		return fmt.Errorf("invalid object name %q", objectName)
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to upload export to Google Cloud Storage: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

// DeleteExport removes objectName; a missing object is not an error.
func DeleteExport(ctx context.Context, objectName string) error {
	bucketName := exportBucket()
	if bucketName == "" {
		return ErrorExportStorageDisabled
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Bucket(bucketName).Object(objectName).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}
