// Package storage holds the bytes behind digital assets and payment
// proof evidence. Keys are opaque to callers; the download flow streams
// straight from the bucket.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// ObjectStore is the capability the domain layers depend on.
type ObjectStore interface {
	// Put stores an uploaded file under the given prefix and returns
	// the generated storage key.
	Put(prefix string, file *multipart.FileHeader) (string, error)

	// Get opens the object for streaming. The caller closes the reader.
	Get(key string) (io.ReadCloser, error)
}

type AliyunOSSStore struct {
	client *oss.Client
	bucket *oss.Bucket
	config config.OSSConfig
}

func NewAliyunOSSStore() (*AliyunOSSStore, error) {
	cfg := config.GlobalConfig.OSS
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSStore{
		client: client,
		bucket: bucket,
		config: cfg,
	}, nil
}

func (s *AliyunOSSStore) Put(prefix string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Key layout: prefix/YYYYMMDD/uuid.ext
	ext := filepath.Ext(file.Filename)
	key := fmt.Sprintf("%s/%s/%s%s", prefix, time.Now().Format("20060102"), uuid.New().String(), ext)

	if err := s.bucket.PutObject(key, src); err != nil {
		return "", err
	}
	return key, nil
}

func (s *AliyunOSSStore) Get(key string) (io.ReadCloser, error) {
	return s.bucket.GetObject(key)
}

var _ ObjectStore = (*AliyunOSSStore)(nil)
