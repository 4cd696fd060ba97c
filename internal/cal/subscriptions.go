package cal

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/subscriptions/armsubscriptions"
)

// GetSubscription resolves a subscription's display name and reachability,
// the first call access.rbac.migrate_project makes per spec §4.3.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (SubscriptionInfo, error) {
	key := CacheKey{Subscription: subscriptionID, Operation: "get_subscription"}
	return do(ctx, c, key, func(ctx context.Context) (SubscriptionInfo, error) {
		cs, err := c.clientsFor(subscriptionID)
		if err != nil {
			return SubscriptionInfo{}, NewNetwork(subscriptionID, err)
		}
		resp, err := cs.subscriptions.Get(ctx, subscriptionID, nil)
		if err != nil {
			return SubscriptionInfo{}, classifyAzureError(subscriptionID, err)
		}
		info := SubscriptionInfo{ID: subscriptionID}
		if resp.DisplayName != nil {
			info.DisplayName = *resp.DisplayName
		}
		return info, nil
	})
}

// ListLocations returns the regions a subscription can deploy into, used by
// server.region to validate a machine's target region.
func (c *Client) ListLocations(ctx context.Context, subscriptionID string) ([]string, error) {
	key := CacheKey{Subscription: subscriptionID, Operation: "list_locations"}
	return do(ctx, c, key, func(ctx context.Context) ([]string, error) {
		cs, err := c.clientsFor(subscriptionID)
		if err != nil {
			return nil, NewNetwork(subscriptionID, err)
		}
		var locations []string
		pager := cs.subscriptions.NewListLocationsPager(subscriptionID, nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, classifyAzureError(subscriptionID, err)
			}
			for _, loc := range page.Value {
				if loc.Name != nil {
					locations = append(locations, *loc.Name)
				}
			}
		}
		return locations, nil
	})
}
