package storage

import (
	"context"
	"io"
	"sort"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	// Drivers selectable by bucket URL.
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

// Blob implements Storage on a gocloud.dev bucket (mem://, file://, s3://,
// gs://, azblob://).
type Blob struct {
	bucket *blob.Bucket
	prefix string
}

// NewBlob opens bucketURL. prefix is prepended to every key.
func NewBlob(ctx context.Context, bucketURL, prefix string) (*Blob, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return NewBlobFromBucket(bucket, prefix), nil
}

// NewBlobFromBucket wraps an open bucket. The Blob takes ownership of it.
func NewBlobFromBucket(bucket *blob.Bucket, prefix string) *Blob {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Blob{bucket: bucket, prefix: prefix}
}

func (b *Blob) fullKey(key string) string {
	return b.prefix + key
}

func (b *Blob) GetItem(ctx context.Context, key string) (string, bool, error) {
	data, err := b.bucket.ReadAll(ctx, b.fullKey(key))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

func (b *Blob) SetItem(ctx context.Context, key, value string) error {
	return b.bucket.WriteAll(ctx, b.fullKey(key), []byte(value), nil)
}

func (b *Blob) RemoveItem(ctx context.Context, key string) error {
	err := b.bucket.Delete(ctx, b.fullKey(key))
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return err
	}
	return nil
}

func (b *Blob) Keys(ctx context.Context) ([]string, error) {
	iter := b.bucket.List(&blob.ListOptions{Prefix: b.prefix})
	var keys []string
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if obj.IsDir {
			continue
		}
		keys = append(keys, strings.TrimPrefix(obj.Key, b.prefix))
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *Blob) Close() error {
	return b.bucket.Close()
}
