package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/autoparts/catalog-api/internal/core/domain"
)

const (
	imageBucket = "part_images"
	// ImagePathPrefix is the public path under which stored images are served.
	ImagePathPrefix = "/img/"
)

// ImageStore keeps uploaded part images in a GridFS bucket.
type ImageStore struct {
	bucket *gridfs.Bucket
}

func NewImageStore(db *mongo.Database) (*ImageStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(imageBucket))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &ImageStore{bucket: bucket}, nil
}

// Store uploads content under a fresh random name that keeps the original extension
// and returns its public reference. The name doubles as the GridFS file id.
func (s *ImageStore) Store(_ context.Context, originalName string, content io.Reader) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))

	opts := options.GridFSUpload().SetMetadata(bson.M{"original_name": originalName})
	if err := s.bucket.UploadFromStreamWithID(name, name, content, opts); err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", domain.ErrStorage, name, err)
	}
	return ImagePathPrefix + name, nil
}

// Open returns a stream over the stored image called name.
func (s *ImageStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	stream, err := s.bucket.OpenDownloadStream(name)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStorage, name, err)
	}
	return stream, nil
}

// Delete removes the file and its chunks.
func (s *ImageStore) Delete(_ context.Context, name string) error {
	if err := s.bucket.Delete(name); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return domain.ErrImageNotFound
		}
		return fmt.Errorf("%w: delete %s: %v", domain.ErrStorage, name, err)
	}
	return nil
}
