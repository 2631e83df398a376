package blob

import (
	"context"
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureStore uploads to Azure Blob Storage. The SDK retry policy is off,
// retries belong to RetryingUploader.
type AzureStore struct {
	client  *azblob.Client
	ensured sync.Map
}

func NewAzureStore(connectionString string) (*AzureStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBlob, err)
	}
	return &AzureStore{client: client}, nil
}

// EnsureContainer creates the container if it does not exist yet. Upload calls it once per container.
func (a *AzureStore) EnsureContainer(ctx context.Context, container string) error {
	_, err := a.client.CreateContainer(ctx, container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("creating container %s: %w", container, err)
	}
	return nil
}

func (a *AzureStore) Upload(ctx context.Context, container, name string, data []byte) error {
	if err := validate(container, name, data); err != nil {
		return err
	}
	if _, ok := a.ensured.Load(container); !ok {
		if err := a.EnsureContainer(ctx, container); err != nil {
			return err
		}
		a.ensured.Store(container, struct{}{})
	}
	if _, err := a.client.UploadBuffer(ctx, container, name, data, nil); err != nil {
		if bloberror.HasCode(err, bloberror.ContainerNotFound, bloberror.InvalidResourceName, bloberror.InvalidBlobOrBlock) {
			return fmt.Errorf("%w: %w", ErrInvalidBlob, err)
		}
		return fmt.Errorf("uploading %s/%s: %w", container, name, err)
	}
	return nil
}
