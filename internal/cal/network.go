package cal

import (
	"context"
	"strings"
)

// GetVNet resolves a virtual network's region and subnet list, used by
// server.vnet_subnet to confirm the target vnet exists before inspecting
// the specific subnet.
func (c *Client) GetVNet(ctx context.Context, subscriptionID, resourceGroup, vnet string) (VNetInfo, error) {
	key := CacheKey{Subscription: subscriptionID, ResourceGroup: resourceGroup, Resource: vnet, Operation: "get_vnet"}
	return do(ctx, c, key, func(ctx context.Context) (VNetInfo, error) {
		cs, err := c.clientsFor(subscriptionID)
		if err != nil {
			return VNetInfo{}, NewNetwork(vnet, err)
		}
		resp, err := cs.vnets.Get(ctx, resourceGroup, vnet, nil)
		if err != nil {
			return VNetInfo{}, classifyAzureError(vnet, err)
		}
		info := VNetInfo{Name: vnet}
		if resp.Location != nil {
			info.Region = *resp.Location
		}
		if resp.Properties != nil {
			for _, subnet := range resp.Properties.Subnets {
				if subnet.Name != nil {
					info.Subnets = append(info.Subnets, *subnet.Name)
				}
			}
		}
		return info, nil
	})
}

// GetSubnet resolves a subnet's address space, delegation list, and current
// IP utilization, the inputs server.vnet_subnet's free-address-count check
// needs, per spec §4.3.
func (c *Client) GetSubnet(ctx context.Context, subscriptionID, resourceGroup, vnet, subnet string) (SubnetInfo, error) {
	key := CacheKey{Subscription: subscriptionID, ResourceGroup: resourceGroup, Resource: vnet + "/" + subnet, Operation: "get_subnet"}
	return do(ctx, c, key, func(ctx context.Context) (SubnetInfo, error) {
		cs, err := c.clientsFor(subscriptionID)
		if err != nil {
			return SubnetInfo{}, NewNetwork(subnet, err)
		}
		resp, err := cs.subnets.Get(ctx, resourceGroup, vnet, subnet, nil)
		if err != nil {
			return SubnetInfo{}, classifyAzureError(subnet, err)
		}

		info := SubnetInfo{}
		if resp.Properties == nil {
			return info, NewMalformed(subnet, "subnet has no properties")
		}
		if resp.Properties.AddressPrefix != nil {
			info.AddressPrefix = *resp.Properties.AddressPrefix
			info.PrefixCapacity = prefixCapacity(info.AddressPrefix)
		}
		for _, delegation := range resp.Properties.Delegations {
			if delegation.Properties != nil && delegation.Properties.ServiceName != nil {
				info.Delegations = append(info.Delegations, *delegation.Properties.ServiceName)
			}
		}
		if resp.Properties.IPConfigurations != nil {
			info.UsedIPCount = len(resp.Properties.IPConfigurations)
		}
		return info, nil
	})
}

// prefixCapacity returns the number of addresses a CIDR prefix holds, or 0
// if it cannot be parsed. server.vnet_subnet subtracts Azure's five
// reserved addresses per subnet from this to get usable capacity.
func prefixCapacity(cidr string) int {
	idx := strings.LastIndex(cidr, "/")
	if idx < 0 || idx == len(cidr)-1 {
		return 0
	}
	bits := 0
	for _, r := range cidr[idx+1:] {
		if r < '0' || r > '9' {
			return 0
		}
		bits = bits*10 + int(r-'0')
	}
	if bits < 0 || bits > 32 {
		return 0
	}
	return 1 << uint(32-bits)
}
