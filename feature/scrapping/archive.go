package scrapping

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"krosmoz-scrapper/core/storage"
	"krosmoz-scrapper/feature/collect"

	"github.com/minio/minio-go/v7"
)

// Archive writes raw pages to object storage as raw/<entity>/<run>/page-NNN.json.
type Archive struct {
	client storage.Client
	bucket string
	region string
}

func NewArchive(client storage.Client, bucket, region string) *Archive {
	return &Archive{client: client, bucket: bucket, region: region}
}

// Prepare makes sure the bucket exists and returns the object prefix of a run.
func (a *Archive) Prepare(ctx context.Context, entity string, started time.Time) (string, error) {
	if err := storage.EnsureBucket(ctx, a.client, a.bucket, a.region); err != nil {
		return "", err
	}
	return fmt.Sprintf("raw/%s/%s", entity, started.UTC().Format("20060102T150405Z")), nil
}

// Put stores one page of records as a JSON array and returns its object name.
func (a *Archive) Put(ctx context.Context, prefix string, page int, records []collect.Record) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for n, r := range records {
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.Write(r)
	}
	buf.WriteByte(']')

	name := fmt.Sprintf("%s/page-%03d.json", prefix, page)
	_, err := a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(buf.Bytes()), int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", name, err)
	}
	return name, nil
}
