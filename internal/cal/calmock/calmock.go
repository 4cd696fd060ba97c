// Package calmock is an in-memory cal.CAL implementation used by check,
// orchestrator, matcher, and engine tests so they never touch a live Azure
// subscription.
package calmock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/catherinevee/migrateguard/internal/cal"
)

// Client is a scripted cal.CAL double: every resource is seeded by test
// setup code and every call is recorded for call-count assertions. The mock
// has no response cache of its own.
type Client struct {
	mu sync.Mutex

	Subscriptions map[string]cal.SubscriptionInfo
	RoleScopes    map[string][]string // scope -> role definition IDs
	ResourceGroups map[string]cal.ResourceGroupInfo
	Locations     map[string][]string // subscriptionID -> regions
	SKUs          map[string][]cal.SkuInfo // subscriptionID+region -> skus
	VNets         map[string]cal.VNetInfo
	Subnets       map[string]cal.SubnetInfo
	StorageAccounts map[string]cal.StorageAccountInfo
	Usage         map[string]cal.UsageInfo
	Projects      map[string][]cal.ProjectInfo
	Appliances    map[string][]cal.ApplianceInfo
	Machines      map[string][]cal.DiscoveredMachine
	RecoveryVaults map[string]cal.RecoveryVaultInfo

	// Errors, keyed the same way as the corresponding map above, force a
	// call to fail instead of returning seeded data.
	Errors map[string]error

	Calls map[string]int
}

// New returns an empty mock with all maps initialized.
func New() *Client {
	return &Client{
		Subscriptions:   make(map[string]cal.SubscriptionInfo),
		RoleScopes:      make(map[string][]string),
		ResourceGroups:  make(map[string]cal.ResourceGroupInfo),
		Locations:       make(map[string][]string),
		SKUs:            make(map[string][]cal.SkuInfo),
		VNets:           make(map[string]cal.VNetInfo),
		Subnets:         make(map[string]cal.SubnetInfo),
		StorageAccounts: make(map[string]cal.StorageAccountInfo),
		Usage:           make(map[string]cal.UsageInfo),
		Projects:        make(map[string][]cal.ProjectInfo),
		Appliances:      make(map[string][]cal.ApplianceInfo),
		Machines:        make(map[string][]cal.DiscoveredMachine),
		RecoveryVaults:  make(map[string]cal.RecoveryVaultInfo),
		Errors:          make(map[string]error),
		Calls:           make(map[string]int),
	}
}

func (c *Client) record(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls[op]++
}

// CallCount returns how many times op was invoked, used to assert how often
// a check issued a given operation.
func (c *Client) CallCount(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[op]
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (cal.SubscriptionInfo, error) {
	c.record("get_subscription:" + subscriptionID)
	if err, ok := c.Errors["get_subscription:"+subscriptionID]; ok {
		return cal.SubscriptionInfo{}, err
	}
	info, ok := c.Subscriptions[subscriptionID]
	if !ok {
		return cal.SubscriptionInfo{}, cal.NewNotFound(subscriptionID, "mock: no subscription seeded")
	}
	return info, nil
}

func (c *Client) ListRoleAssignments(ctx context.Context, scope, principalID string) ([]string, error) {
	key := fmt.Sprintf("list_role_assignments:%s:%s", scope, principalID)
	c.record(key)
	if err, ok := c.Errors[key]; ok {
		return nil, err
	}
	return c.RoleScopes[scope], nil
}

func (c *Client) GetResourceGroup(ctx context.Context, subscriptionID, resourceGroup string) (cal.ResourceGroupInfo, error) {
	key := "get_resource_group:" + subscriptionID + ":" + resourceGroup
	c.record(key)
	if err, ok := c.Errors[key]; ok {
		return cal.ResourceGroupInfo{}, err
	}
	info, ok := c.ResourceGroups[resourceGroup]
	if !ok {
		return cal.ResourceGroupInfo{}, cal.NewNotFound(resourceGroup, "mock: no resource group seeded")
	}
	return info, nil
}

func (c *Client) ListLocations(ctx context.Context, subscriptionID string) ([]string, error) {
	c.record("list_locations:" + subscriptionID)
	return c.Locations[subscriptionID], nil
}

func (c *Client) ListVMSKUs(ctx context.Context, subscriptionID, region string) ([]cal.SkuInfo, error) {
	key := subscriptionID + ":" + region
	c.record("list_vm_skus:" + key)
	return c.SKUs[key], nil
}

func (c *Client) GetVNet(ctx context.Context, subscriptionID, resourceGroup, vnet string) (cal.VNetInfo, error) {
	key := resourceGroup + "/" + vnet
	c.record("get_vnet:" + key)
	if err, ok := c.Errors["get_vnet:"+key]; ok {
		return cal.VNetInfo{}, err
	}
	info, ok := c.VNets[key]
	if !ok {
		return cal.VNetInfo{}, cal.NewNotFound(vnet, "mock: no vnet seeded")
	}
	return info, nil
}

func (c *Client) GetSubnet(ctx context.Context, subscriptionID, resourceGroup, vnet, subnet string) (cal.SubnetInfo, error) {
	key := resourceGroup + "/" + vnet + "/" + subnet
	c.record("get_subnet:" + key)
	if err, ok := c.Errors["get_subnet:"+key]; ok {
		return cal.SubnetInfo{}, err
	}
	info, ok := c.Subnets[key]
	if !ok {
		return cal.SubnetInfo{}, cal.NewNotFound(subnet, "mock: no subnet seeded")
	}
	return info, nil
}

func (c *Client) GetStorageAccount(ctx context.Context, subscriptionID, resourceGroup, name string) (cal.StorageAccountInfo, error) {
	key := resourceGroup + "/" + name
	c.record("get_storage_account:" + key)
	if err, ok := c.Errors["get_storage_account:"+key]; ok {
		return cal.StorageAccountInfo{}, err
	}
	info, ok := c.StorageAccounts[key]
	if !ok {
		return cal.StorageAccountInfo{}, cal.NewNotFound(name, "mock: no storage account seeded")
	}
	return info, nil
}

func (c *Client) CreateStorageAccount(ctx context.Context, subscriptionID, resourceGroup, name, region string) (cal.StorageAccountInfo, error) {
	key := resourceGroup + "/" + name
	c.record("create_storage_account:" + key)
	info := cal.StorageAccountInfo{Name: name, Region: region, Kind: "StorageV2"}
	c.StorageAccounts[key] = info
	return info, nil
}

func (c *Client) GetVCPUUsage(ctx context.Context, subscriptionID, region, family string) (cal.UsageInfo, error) {
	key := region + "/" + family
	c.record("get_vcpu_usage:" + key)
	info, ok := c.Usage[key]
	if !ok {
		return cal.UsageInfo{}, cal.NewNotFound(family, "mock: no usage seeded")
	}
	return info, nil
}

func (c *Client) ListMigrateProjects(ctx context.Context, subscriptionID, resourceGroup string) ([]cal.ProjectInfo, error) {
	key := subscriptionID + "/" + resourceGroup
	c.record("list_migrate_projects:" + key)
	return c.Projects[key], nil
}

func (c *Client) ListAppliances(ctx context.Context, subscriptionID, project string) ([]cal.ApplianceInfo, error) {
	c.record("list_appliances:" + project)
	return c.Appliances[project], nil
}

func (c *Client) ListDiscoveredMachines(ctx context.Context, subscriptionID, resourceGroup, project string) ([]cal.DiscoveredMachine, error) {
	c.record("list_discovered_machines:" + project)
	return c.Machines[project], nil
}

func (c *Client) SearchDiscoveredByName(ctx context.Context, subscriptionID, resourceGroup, project, name string) ([]cal.DiscoveredMachine, error) {
	c.record("search_discovered_by_name:" + project + ":" + name)
	needle := strings.ToLower(name)
	var matches []cal.DiscoveredMachine
	for _, m := range c.Machines[project] {
		for _, n := range m.Names {
			if strings.Contains(strings.ToLower(n), needle) {
				matches = append(matches, m)
				break
			}
		}
	}
	return matches, nil
}

func (c *Client) GetRecoveryVault(ctx context.Context, subscriptionID, resourceGroup, name string) (cal.RecoveryVaultInfo, error) {
	key := resourceGroup + "/" + name
	c.record("get_recovery_vault:" + key)
	if err, ok := c.Errors["get_recovery_vault:"+key]; ok {
		return cal.RecoveryVaultInfo{}, err
	}
	info, ok := c.RecoveryVaults[key]
	if !ok {
		return cal.RecoveryVaultInfo{}, cal.NewNotFound(name, "mock: no recovery vault seeded")
	}
	return info, nil
}

var _ cal.CAL = (*Client)(nil)
