package cal

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
)

// GetStorageAccount resolves the cache storage account's region and kind,
// used by storage.cache to confirm it exists and sits in the project's
// region before falling back to auto-create.
func (c *Client) GetStorageAccount(ctx context.Context, subscriptionID, resourceGroup, name string) (StorageAccountInfo, error) {
	key := CacheKey{Subscription: subscriptionID, ResourceGroup: resourceGroup, Resource: name, Operation: "get_storage_account"}
	return do(ctx, c, key, func(ctx context.Context) (StorageAccountInfo, error) {
		cs, err := c.clientsFor(subscriptionID)
		if err != nil {
			return StorageAccountInfo{}, NewNetwork(name, err)
		}
		resp, err := cs.storage.GetProperties(ctx, resourceGroup, name, nil)
		if err != nil {
			return StorageAccountInfo{}, classifyAzureError(name, err)
		}
		info := StorageAccountInfo{Name: name}
		if resp.Location != nil {
			info.Region = *resp.Location
		}
		if resp.Kind != nil {
			info.Kind = string(*resp.Kind)
		}
		return info, nil
	})
}

// CreateStorageAccount provisions the cache storage account storage.cache
// falls back to when auto_create is enabled and none exists. This is CAL's
// one write operation; it is never retried on ambiguous failure, per spec
// §4.1's write-operations note.
func (c *Client) CreateStorageAccount(ctx context.Context, subscriptionID, resourceGroup, name, region string) (StorageAccountInfo, error) {
	cs, err := c.clientsFor(subscriptionID)
	if err != nil {
		return StorageAccountInfo{}, NewNetwork(name, err)
	}

	poller, err := cs.storage.BeginCreate(ctx, resourceGroup, name, armstorage.AccountCreateParameters{
		Location: to.Ptr(region),
		SKU: &armstorage.SKU{
			Name: to.Ptr(armstorage.SKUNameStandardLRS),
		},
		Kind: to.Ptr(armstorage.KindStorageV2),
	}, nil)
	if err != nil {
		return StorageAccountInfo{}, classifyAzureError(name, err)
	}

	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return StorageAccountInfo{}, classifyAzureError(name, err)
	}

	info := StorageAccountInfo{Name: name, Region: region}
	if resp.Kind != nil {
		info.Kind = string(*resp.Kind)
	}

	c.cache.mu.Lock()
	c.cache.entries[(CacheKey{Subscription: subscriptionID, ResourceGroup: resourceGroup, Resource: name, Operation: "get_storage_account"}).String()] = info
	c.cache.mu.Unlock()

	return info, nil
}
