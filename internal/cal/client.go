package cal

import (
	"context"
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v4"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v4"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/recoveryservices/armrecoveryservices"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/subscriptions/armsubscriptions"
	"golang.org/x/time/rate"

	"github.com/catherinevee/migrateguard/internal/logger"
)

// clientSet bundles the typed ARM clients that are scoped to a single
// subscription. Run inputs can name more than one target subscription, so
// Client builds one of these per subscription seen, lazily, on first use.
type clientSet struct {
	subscriptions *armsubscriptions.Client
	roleAssign    *armauthorization.RoleAssignmentsClient
	resourceGroup *armresources.ResourceGroupsClient
	skus          *armcompute.ResourceSKUsClient
	usage         *armcompute.UsageClient
	vnets         *armnetwork.VirtualNetworksClient
	subnets       *armnetwork.SubnetsClient
	storage       *armstorage.AccountsClient
	vaults        *armrecoveryservices.VaultsClient
}

// Client is the production CAL implementation: Azure SDK calls wrapped in
// the shared retry policy and backed by the per-run Cache. Azure Migrate
// project/appliance/discovery surfaces have no stable typed SDK, so those
// operations live in migrate.go against the generic azcore/runtime pipeline
// instead of a typed client here.
type Client struct {
	cred    azcore.TokenCredential
	cache   *Cache
	retry   RetryConfig
	limiter *rate.Limiter
	log     logger.Logger

	mu      sync.Mutex
	clients map[string]*clientSet
}

// NewClient wires a Client from a credential, the shared per-run cache, and
// the default retry policy. A nil cache is replaced with a fresh, empty
// one; caching is always on.
func NewClient(cred azcore.TokenCredential, cache *Cache) *Client {
	if cache == nil {
		cache = NewCache()
	}
	return &Client{
		cred:    cred,
		cache:   cache,
		retry:   DefaultRetryConfig(),
		log:     logger.Get().WithFields(logger.String("component", "cal")),
		clients: make(map[string]*clientSet),
	}
}

// WithRateLimit attaches a self-throttle applied ahead of the retry policy.
func (c *Client) WithRateLimit(limiter *rate.Limiter) *Client {
	c.limiter = limiter
	return c
}

func (c *Client) clientsFor(subscriptionID string) (*clientSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cs, ok := c.clients[subscriptionID]; ok {
		return cs, nil
	}

	subs, err := armsubscriptions.NewClient(c.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create subscriptions client: %w", err)
	}
	roleAssign, err := armauthorization.NewRoleAssignmentsClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create role assignments client: %w", err)
	}
	resourceGroup, err := armresources.NewResourceGroupsClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create resource groups client: %w", err)
	}
	skus, err := armcompute.NewResourceSKUsClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create resource skus client: %w", err)
	}
	usage, err := armcompute.NewUsageClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create usage client: %w", err)
	}
	vnets, err := armnetwork.NewVirtualNetworksClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create vnets client: %w", err)
	}
	subnets, err := armnetwork.NewSubnetsClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create subnets client: %w", err)
	}
	storage, err := armstorage.NewAccountsClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage accounts client: %w", err)
	}
	vaults, err := armrecoveryservices.NewVaultsClient(subscriptionID, c.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create recovery vaults client: %w", err)
	}

	cs := &clientSet{
		subscriptions: subs,
		roleAssign:    roleAssign,
		resourceGroup: resourceGroup,
		skus:          skus,
		usage:         usage,
		vnets:         vnets,
		subnets:       subnets,
		storage:       storage,
		vaults:        vaults,
	}
	c.clients[subscriptionID] = cs
	return cs, nil
}

// do runs fn through the cache, keyed by op, then through the retry policy
// on a cache miss.
func do[T any](ctx context.Context, c *Client, key CacheKey, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.cache.GetOrLoad(ctx, key, func(ctx context.Context) (interface{}, error) {
		return withRetry(ctx, c.limiter, c.retry, fn)
	})
	if err != nil {
		return zero, err
	}
	result, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cal: cached value for %s had unexpected type %T", key, v)
	}
	return result, nil
}
