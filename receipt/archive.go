package receipt

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/pverdier/go-gestion-locative/shared/models"
)

// Archiver keeps a copy of every rendered receipt in S3. Archiving is
// best-effort: the HTTP response never waits on it.
type Archiver struct {
	uploader *s3manager.Uploader
	bucket   string
}

// NewArchiver creates an S3 receipt archiver for the given bucket.
func NewArchiver(region, bucket string) (*Archiver, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &Archiver{
		uploader: s3manager.NewUploader(sess),
		bucket:   bucket,
	}, nil
}

// Archive uploads a rendered receipt under receipts/<year>/<month>/.
func (a *Archiver) Archive(ctx context.Context, bill *models.Bill, pdf []byte) error {
	key := fmt.Sprintf("receipts/%d/%02d/%s", bill.Year, bill.Month, Filename(bill.ID))
	_, err := a.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive receipt %s: %w", key, err)
	}
	return nil
}
