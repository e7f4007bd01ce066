// Package objectstore stores media in an S3 compatible bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/matt-dz/foodgram/internal/config"
	mHttp "github.com/matt-dz/foodgram/internal/http"
)

type ObjectStore struct {
	client *minio.Client
	bucket string
}

// New connects to the bucket described by conf, creating the bucket when it
// does not exist yet. Requests retry through httpClient.
func New(ctx context.Context, conf config.ObjectStore, httpClient *mHttp.HTTP) (*ObjectStore, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
		Region: conf.Region,
	}
	if httpClient != nil {
		opts.Transport = httpClient.RoundTripper()
	}

	client, err := minio.New(conf.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %q: %w", conf.Bucket, err)
	}
	if !exists {
		err := client.MakeBucket(ctx, conf.Bucket, minio.MakeBucketOptions{Region: conf.Region})
		if err != nil {
			return nil, fmt.Errorf("creating bucket %q: %w", conf.Bucket, err)
		}
	}

	return &ObjectStore{
		client: client,
		bucket: conf.Bucket,
	}, nil
}

func (o *ObjectStore) Write(ctx context.Context, path string, data []byte, contentType string) (int, error) {
	info, err := o.client.PutObject(ctx, o.bucket, path, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return 0, fmt.Errorf("putting object %q: %w", path, err)
	}
	return int(info.Size), nil
}

func (o *ObjectStore) Delete(ctx context.Context, path string) error {
	if err := o.client.RemoveObject(ctx, o.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing object %q: %w", path, err)
	}
	return nil
}

// PublicURL is the base URL objects are served from when none is configured.
func PublicURL(conf config.ObjectStore) string {
	if conf.PublicURL != "" {
		return conf.PublicURL
	}
	scheme := "http"
	if conf.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, conf.Endpoint, conf.Bucket)
}
