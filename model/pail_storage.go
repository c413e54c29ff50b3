package model

import (
	"context"
	"fmt"

	"github.com/evergreen-ci/pail"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
)

// PailType describes the name of the blob storage backing a pail Bucket
// implementation.
type PailType string

const (
	PailS3    PailType = "s3"
	PailLocal PailType = "local"

	defaultS3Region = "us-east-1"
)

// Create returns a pail Bucket backed by PailType, using the credentials of
// the given dashboard configuration for remote storage.
func (t PailType) Create(ctx context.Context, conf DashboardConfig, bucket, prefix string) (pail.Bucket, error) {
	var b pail.Bucket
	var err error

	switch t {
	case PailS3:
		opts := pail.S3Options{
			Name:        bucket,
			Prefix:      prefix,
			Region:      defaultS3Region,
			Permissions: pail.S3PermissionsPublicRead,
			Credentials: pail.CreateAWSCredentials(conf.AWSKey, conf.AWSSecret, ""),
			MaxRetries:  utility.ToIntPtr(10),
		}
		b, err = pail.NewS3Bucket(ctx, opts)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	case PailLocal:
		opts := pail.LocalOptions{
			Path:   bucket,
			Prefix: prefix,
		}
		b, err = pail.NewLocalBucket(opts)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	default:
		return nil, errors.Errorf("unsupported bucket type %s", t)
	}

	if err = b.Check(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// GetDownloadURL returns, if applicable, the download URL for the object at
// the given bucket/prefix/key location.
func (t PailType) GetDownloadURL(bucket, prefix, key string) string {
	switch t {
	case PailS3:
		return fmt.Sprintf(
			"https://%s.s3.amazonaws.com/%s",
			bucket,
			prefix+"/"+key,
		)
	default:
		return ""
	}
}
