package report

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sima-reports/src/pkg/render"
)

/*
S3Sink uploads artifacts to Bucket under Prefix/<file name>.

Credentials come from the usual AWS_* env vars or the shared config files.
*/
type S3Sink struct {
	Bucket   string
	Prefix   string
	uploader *s3manager.Uploader
}

func NewS3Sink(archive ArchiveConfig) (sink *S3Sink, e *xerr.Error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(archive.Region)})
	if err != nil {
		e = xerr.NewError(err, "create AWS session", archive.Region)
		return nil, e
	}

	sink = &S3Sink{
		Bucket:   archive.Bucket,
		Prefix:   archive.Prefix,
		uploader: s3manager.NewUploader(sess),
	}
	return sink, nil
}

func (s *S3Sink) Save(ctx context.Context, artifact render.Artifact) (location string, e *xerr.Error) {
	key := s.Key(artifact)

	result, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(artifact.Body),
		ContentType: aws.String(artifact.ContentType),
	})
	if err != nil {
		e = xerr.NewError(err, "upload report to S3", s.Bucket+"/"+key)
		return "", e
	}

	tl.Log(tl.Info1, palette.Green, "Uploaded '%s' to '%s'", artifact.FileName, result.Location)
	return result.Location, nil
}

// Key is the object key an artifact is uploaded to.
func (s *S3Sink) Key(artifact render.Artifact) string {
	return path.Join(s.Prefix, artifact.FileName)
}
