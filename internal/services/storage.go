package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/chachabrian/ridehail-backend/internal/apperrors"
	"github.com/chachabrian/ridehail-backend/internal/models"
)

// blobStore holds one document. Read returns (nil, nil) when it does not
// exist yet.
type blobStore interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	String() string
}

// locationsDocument is the on-disk shape, kept compatible with the
// frontend's locations.json.
type locationsDocument struct {
	Areas []models.NamedLocation `json:"areas"`
}

// LocationList is the named-location list kept as a single JSON document
// in S3 or on local disk.
type LocationList struct {
	mu   sync.Mutex
	blob blobStore
}

// NewFileLocationList stores the list at path, creating parent dirs on
// first write.
func NewFileLocationList(path string) *LocationList {
	return &LocationList{blob: fileBlob{path: path}}
}

// S3Options locate the list in a bucket
type S3Options struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Key             string
}

// Complete reports whether every field needed to reach S3 is set.
func (o S3Options) Complete() bool {
	return o.Region != "" && o.AccessKeyID != "" && o.SecretAccessKey != "" && o.Bucket != "" && o.Key != ""
}

// NewS3LocationList stores the list as one object in S3.
func NewS3LocationList(opts S3Options) (*LocationList, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(opts.Region),
		Credentials: credentials.NewStaticCredentials(
			opts.AccessKeyID,
			opts.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &LocationList{blob: &s3Blob{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   opts.Bucket,
		key:      opts.Key,
	}}, nil
}

// Backend names where the list lives, for startup logs.
func (l *LocationList) Backend() string {
	return l.blob.String()
}

func (l *LocationList) ListLocations(ctx context.Context) ([]models.NamedLocation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Areas, nil
}

// AddLocation appends loc; names are unique case-insensitively.
func (l *LocationList) AddLocation(ctx context.Context, loc models.NamedLocation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := l.load(ctx)
	if err != nil {
		return err
	}
	for _, area := range doc.Areas {
		if strings.EqualFold(area.Name, loc.Name) {
			return apperrors.Conflict("Location already exists")
		}
	}
	doc.Areas = append(doc.Areas, loc)
	return l.save(ctx, doc)
}

func (l *LocationList) RemoveLocation(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := l.load(ctx)
	if err != nil {
		return err
	}
	kept := doc.Areas[:0]
	for _, area := range doc.Areas {
		if !strings.EqualFold(area.Name, name) {
			kept = append(kept, area)
		}
	}
	if len(kept) == len(doc.Areas) {
		return apperrors.NotFound("Location not found")
	}
	doc.Areas = kept
	return l.save(ctx, doc)
}

func (l *LocationList) load(ctx context.Context) (*locationsDocument, error) {
	data, err := l.blob.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read locations from %s: %w", l.blob, err)
	}
	doc := &locationsDocument{Areas: []models.NamedLocation{}}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode locations from %s: %w", l.blob, err)
	}
	if doc.Areas == nil {
		doc.Areas = []models.NamedLocation{}
	}
	return doc, nil
}

func (l *LocationList) save(ctx context.Context, doc *locationsDocument) error {
	sort.SliceStable(doc.Areas, func(i, j int) bool {
		return strings.ToLower(doc.Areas[i].Name) < strings.ToLower(doc.Areas[j].Name)
	})
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := l.blob.Write(ctx, data); err != nil {
		return fmt.Errorf("write locations to %s: %w", l.blob, err)
	}
	return nil
}

type fileBlob struct {
	path string
}

func (f fileBlob) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Write replaces the file via rename so readers never see a partial list.
func (f fileBlob) Write(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create locations directory: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f fileBlob) String() string { return "file:" + f.path }

type s3Blob struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	key      string
}

func (b *s3Blob) Read(ctx context.Context) ([]byte, error) {
	out, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, nil
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (b *s3Blob) Write(ctx context.Context, data []byte) error {
	_, err := b.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (b *s3Blob) String() string { return "s3://" + b.bucket + "/" + b.key }
