package journal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveContentType is the MIME type archives are stored under.
const ArchiveContentType = "application/x-hostdom-journal"

// DirSink writes archives as files in Dir.
type DirSink struct {
	Dir string
}

// Put implements Sink. The file is written under a temporary name and
// renamed into place.
func (s DirSink) Put(_ context.Context, name string, r io.Reader, _ int64) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, ".journal-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.Dir, filepath.Base(name)))
}

// PutObjectAPI is the part of *s3.Client that S3Sink uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads archives to an S3 bucket.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	sink := &journal.S3Sink{Client: s3.NewFromConfig(cfg), Bucket: "sessions", Prefix: "journal/"}
type S3Sink struct {
	Client PutObjectAPI
	Bucket string
	Prefix string
}

// Put implements Sink.
func (s *S3Sink) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(s.Prefix + name),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(ArchiveContentType),
		Metadata: map[string]string{
			"archive-bytes": strconv.FormatInt(size, 10),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", s.Bucket, s.Prefix+name, err)
	}
	return nil
}
