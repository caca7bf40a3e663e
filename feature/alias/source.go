package alias

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"krosmoz-scrapper/core/storage"

	"github.com/minio/minio-go/v7"
)

// ErrConfigUnavailable indicates the registry document could not be read.
var ErrConfigUnavailable = errors.New("alias registry unavailable")

// Source loads the raw registry document.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
	String() string
}

// FileSource reads the registry from a local JSON file.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found", ErrConfigUnavailable, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}
	return data, nil
}

func (s FileSource) String() string {
	return "file://" + s.Path
}

// ObjectSource reads the registry from an object in storage.
type ObjectSource struct {
	Client storage.Client
	Bucket string
	Object string
}

func (s ObjectSource) Load(ctx context.Context) ([]byte, error) {
	obj, err := s.Client.GetObject(ctx, s.Bucket, s.Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.unavailable(err)
	}
	defer obj.Close()

	// minio reports a missing key on the first read, not on GetObject.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.unavailable(err)
	}
	return data, nil
}

func (s ObjectSource) unavailable(err error) error {
	if storage.IsNotFound(err) {
		return fmt.Errorf("%w: %s not found", ErrConfigUnavailable, s)
	}
	return fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
}

func (s ObjectSource) String() string {
	return "s3://" + s.Bucket + "/" + s.Object
}
