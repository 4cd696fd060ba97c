// Package cal is the Cloud Access Layer: a small typed surface over the
// Azure control plane that hides pagination, credential plumbing, response
// caching, and retry/backoff from the check library.
package cal

import "time"

// SubscriptionInfo is the result of get_subscription.
type SubscriptionInfo struct {
	ID          string
	DisplayName string
}

// ResourceGroupInfo is the result of get_resource_group.
type ResourceGroupInfo struct {
	Name   string
	Region string
}

// SkuInfo describes one VM SKU's availability in a region.
type SkuInfo struct {
	Name          string
	Capabilities  map[string]string
	Restricted    bool
	RestrictedIn  []string // locations named by the provider's restriction info
	Deprecated    bool
}

// SubnetInfo is the result of get_subnet.
type SubnetInfo struct {
	AddressPrefix   string
	PrefixCapacity  int
	UsedIPCount     int
	Delegations     []string
}

// VNetInfo is the result of get_vnet.
type VNetInfo struct {
	Name    string
	Region  string
	Subnets []string
}

// StorageAccountInfo is the result of get_storage_account / create_storage_account.
type StorageAccountInfo struct {
	Name   string
	Region string
	Kind   string
}

// UsageInfo is the result of get_vcpu_usage.
type UsageInfo struct {
	Current int
	Limit   int
}

// ProjectInfo is one entry from list_migrate_projects.
type ProjectInfo struct {
	Name   string
	Region string
}

// ApplianceInfo is one entry from list_appliances.
type ApplianceInfo struct {
	Name          string
	Kind          string
	LastHeartbeat time.Time
	Healthy       bool
}

// DiscoveredMachine is one entry from list_discovered_machines /
// search_discovered_by_name.
type DiscoveredMachine struct {
	ID                 string
	Names              []string // all known-name fields the provider reports
	IPAddresses        []string
	ReplicationState   string // "", "replicating", etc.
}

// RecoveryVaultInfo is the result of get_recovery_vault, the optional
// storage.cache-adjacent check against a project's declared Site Recovery
// vault.
type RecoveryVaultInfo struct {
	Name   string
	Region string
}
