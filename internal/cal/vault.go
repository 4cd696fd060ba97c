package cal

import "context"

// GetRecoveryVault resolves a declared Site Recovery vault's region, used
// by storage.cache to surface an informational note when a project names
// one, per spec §4.3's optional recovery_vault_name field.
func (c *Client) GetRecoveryVault(ctx context.Context, subscriptionID, resourceGroup, name string) (RecoveryVaultInfo, error) {
	key := CacheKey{Subscription: subscriptionID, ResourceGroup: resourceGroup, Resource: name, Operation: "get_recovery_vault"}
	return do(ctx, c, key, func(ctx context.Context) (RecoveryVaultInfo, error) {
		cs, err := c.clientsFor(subscriptionID)
		if err != nil {
			return RecoveryVaultInfo{}, NewNetwork(name, err)
		}
		resp, err := cs.vaults.Get(ctx, resourceGroup, name, nil)
		if err != nil {
			return RecoveryVaultInfo{}, classifyAzureError(name, err)
		}
		info := RecoveryVaultInfo{Name: name}
		if resp.Location != nil {
			info.Region = *resp.Location
		}
		return info, nil
	})
}
