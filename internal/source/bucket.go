package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/vanha-creative/autonamer/internal/config"
	"github.com/vanha-creative/autonamer/internal/models"
)

// Bucket lists creatives under an S3 or MinIO prefix. Objects are downloaded
// into a local directory so the media tools can read them.
type Bucket struct {
	api     *minio.Client
	bucket  string
	prefix  string
	dir     string
	presign time.Duration

	mu      sync.RWMutex
	objects map[string]string
}

// NewBucket creates a bucket source from cfg.
func NewBucket(cfg config.Bucket, prefix, dir string) (*Bucket, error) {
	if cfg.Endpoint == "" || cfg.Name == "" {
		return nil, fmt.Errorf("bucket source requires an endpoint and bucket name")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Bucket{
		api:     client,
		bucket:  cfg.Name,
		prefix:  prefix,
		dir:     dir,
		presign: config.Seconds(cfg.PresignSeconds),
		objects: make(map[string]string),
	}, nil
}

// ListAssets downloads every supported object under the prefix and returns
// them sorted by key.
func (b *Bucket) ListAssets(ctx context.Context) ([]models.Asset, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    b.prefix,
		Recursive: false,
	}

	var objects []minio.ObjectInfo
	for obj := range b.api.ListObjects(ctx, b.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s/%s: %w", b.bucket, b.prefix, obj.Err)
		}
		if obj.Key == b.prefix || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if _, ok := KindOf(obj.Key); !ok {
			continue
		}
		objects = append(objects, obj)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("bucket %s/%s: %w", b.bucket, b.prefix, ErrEmptySource)
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Key < objects[j].Key
	})

	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	assets := make([]models.Asset, 0, len(objects))
	for _, obj := range objects {
		name := path.Base(obj.Key)
		kind, _ := KindOf(name)
		id := AssetID(b.bucket + "/" + obj.Key + "|" + obj.ETag)
		local := filepath.Join(b.dir, id+filepath.Ext(name))

		if err := b.download(ctx, obj.Key, local); err != nil {
			return nil, err
		}
		assets = append(assets, models.Asset{
			ID:   id,
			Name: name,
			Path: local,
			Kind: kind,
			Size: obj.Size,
		})

		b.mu.Lock()
		b.objects[id] = obj.Key
		b.mu.Unlock()
	}

	slog.Info("Listed bucket assets", "bucket", b.bucket, "prefix", b.prefix, "count", len(assets))
	return assets, nil
}

func (b *Bucket) download(ctx context.Context, key, localPath string) error {
	obj, err := b.api.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", localPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, obj); err != nil {
		return fmt.Errorf("failed to write file %s: %w", localPath, err)
	}
	return nil
}

// ThumbnailURL returns a presigned GET URL for the original object.
func (b *Bucket) ThumbnailURL(ctx context.Context, assetID string) (string, error) {
	b.mu.RLock()
	key, ok := b.objects[assetID]
	b.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown asset %s", assetID)
	}

	u, err := b.api.PresignedGetObject(ctx, b.bucket, key, b.presign, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return u.String(), nil
}
