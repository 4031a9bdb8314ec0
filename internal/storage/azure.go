package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"ocrdocs/internal/config"
)

// azureStorage stores blobs in a single Azure Blob Storage container.
type azureStorage struct {
	client    *azblob.Client
	container string
}

// NewAzure creates an Azure Blob Storage client and makes sure the container exists.
func NewAzure(cfg config.AzureConfig) (Storage, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("azure connection string is required")
	}
	if cfg.Container == "" {
		return nil, fmt.Errorf("azure container is required")
	}

	opts := &azblob.ClientOptions{}
	opts.Transport = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, opts)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := client.CreateContainer(ctx, cfg.Container, nil); err != nil {
		if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return nil, fmt.Errorf("create container: %w", err)
		}
	}

	return &azureStorage{client: client, container: cfg.Container}, nil
}

func (a *azureStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if err := validateKey(key); err != nil {
		return ObjectInfo{}, writeError(key, err)
	}

	ct := contentTypeFor(key, opt.ContentType)
	meta := make(map[string]*string, len(opt.Metadata))
	for k, v := range opt.Metadata {
		v := v
		meta[k] = &v
	}

	cr := &countingReader{r: r}
	resp, err := a.client.UploadStream(ctx, a.container, key, cr, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &ct},
		Metadata:    meta,
	})
	if err != nil {
		return ObjectInfo{}, writeError(key, err)
	}

	info := ObjectInfo{Key: key, Size: cr.n, ContentType: ct, LastModified: time.Now()}
	if resp.ETag != nil {
		info.ETag = string(*resp.ETag)
	}
	if resp.LastModified != nil {
		info.LastModified = *resp.LastModified
	}
	return info, nil
}

func (a *azureStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := validateKey(key); err != nil {
		return nil, ObjectInfo{}, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		return nil, ObjectInfo{}, mapAzureError(key, err)
	}

	info := ObjectInfo{Key: key, Size: -1}
	if resp.ContentLength != nil {
		info.Size = *resp.ContentLength
	}
	if resp.ContentType != nil {
		info.ContentType = *resp.ContentType
	}
	if resp.ETag != nil {
		info.ETag = string(*resp.ETag)
	}
	if resp.LastModified != nil {
		info.LastModified = *resp.LastModified
	}
	return resp.Body, info, nil
}

func mapAzureError(key string, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("download blob %s: %w", key, err)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
