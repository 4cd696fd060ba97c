package cal

import "context"

// GetResourceGroup resolves a resource group's region, used by
// server.resource_group to confirm existence and by server.region cross
// checks, per spec §4.3.
func (c *Client) GetResourceGroup(ctx context.Context, subscriptionID, resourceGroup string) (ResourceGroupInfo, error) {
	key := CacheKey{Subscription: subscriptionID, ResourceGroup: resourceGroup, Operation: "get_resource_group"}
	return do(ctx, c, key, func(ctx context.Context) (ResourceGroupInfo, error) {
		cs, err := c.clientsFor(subscriptionID)
		if err != nil {
			return ResourceGroupInfo{}, NewNetwork(resourceGroup, err)
		}
		resp, err := cs.resourceGroup.Get(ctx, resourceGroup, nil)
		if err != nil {
			return ResourceGroupInfo{}, classifyAzureError(resourceGroup, err)
		}
		info := ResourceGroupInfo{Name: resourceGroup}
		if resp.Location != nil {
			info.Region = *resp.Location
		}
		return info, nil
	})
}
