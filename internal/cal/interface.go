package cal

import "context"

// CAL is the public contract the check library and intelligent matcher
// code against, per spec §4.1's operation table. calmock.Client and
// *cal.Client both satisfy it, so checks never know whether they are
// talking to Azure or a test double.
type CAL interface {
	GetSubscription(ctx context.Context, subscriptionID string) (SubscriptionInfo, error)
	ListRoleAssignments(ctx context.Context, scope, principalID string) ([]string, error)
	GetResourceGroup(ctx context.Context, subscriptionID, resourceGroup string) (ResourceGroupInfo, error)
	ListLocations(ctx context.Context, subscriptionID string) ([]string, error)
	ListVMSKUs(ctx context.Context, subscriptionID, region string) ([]SkuInfo, error)
	GetVNet(ctx context.Context, subscriptionID, resourceGroup, vnet string) (VNetInfo, error)
	GetSubnet(ctx context.Context, subscriptionID, resourceGroup, vnet, subnet string) (SubnetInfo, error)
	GetStorageAccount(ctx context.Context, subscriptionID, resourceGroup, name string) (StorageAccountInfo, error)
	CreateStorageAccount(ctx context.Context, subscriptionID, resourceGroup, name, region string) (StorageAccountInfo, error)
	GetRecoveryVault(ctx context.Context, subscriptionID, resourceGroup, name string) (RecoveryVaultInfo, error)
	GetVCPUUsage(ctx context.Context, subscriptionID, region, family string) (UsageInfo, error)
	ListMigrateProjects(ctx context.Context, subscriptionID, resourceGroup string) ([]ProjectInfo, error)
	ListAppliances(ctx context.Context, subscriptionID, project string) ([]ApplianceInfo, error)
	ListDiscoveredMachines(ctx context.Context, subscriptionID, resourceGroup, project string) ([]DiscoveredMachine, error)
	SearchDiscoveredByName(ctx context.Context, subscriptionID, resourceGroup, project, name string) ([]DiscoveredMachine, error)
}
