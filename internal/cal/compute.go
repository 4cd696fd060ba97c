package cal

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v4"
)

// ListVMSKUs returns the VM SKUs available in region, with the restriction
// metadata server.sku needs to reject an unavailable target size, per spec
// §4.3. SkuInfo.Deprecated is not populated here; it is always false.
func (c *Client) ListVMSKUs(ctx context.Context, subscriptionID, region string) ([]SkuInfo, error) {
	key := CacheKey{Subscription: subscriptionID, Resource: region, Operation: "list_vm_skus"}
	return do(ctx, c, key, func(ctx context.Context) ([]SkuInfo, error) {
		cs, err := c.clientsFor(subscriptionID)
		if err != nil {
			return nil, NewNetwork(region, err)
		}
		filter := fmt.Sprintf("location eq '%s'", region)
		var skus []SkuInfo
		pager := cs.skus.NewListPager(&armcompute.ResourceSKUsClientListOptions{Filter: &filter})
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return nil, classifyAzureError(region, err)
			}
			for _, sku := range page.Value {
				if sku.ResourceType == nil || *sku.ResourceType != "virtualMachines" || sku.Name == nil {
					continue
				}
				info := SkuInfo{Name: *sku.Name, Capabilities: make(map[string]string)}
				for _, cap := range sku.Capabilities {
					if cap.Name != nil && cap.Value != nil {
						info.Capabilities[*cap.Name] = *cap.Value
					}
				}
				for _, restriction := range sku.Restrictions {
					if restriction.ReasonCode != nil {
						info.Restricted = true
						if restriction.RestrictionInfo != nil {
							for _, loc := range restriction.RestrictionInfo.Locations {
								if loc != nil {
									info.RestrictedIn = append(info.RestrictedIn, *loc)
								}
							}
						}
					}
				}
				skus = append(skus, info)
			}
		}
		return skus, nil
	})
}

// GetVCPUUsage reports current and limit vCPU counts for family in region,
// the data quota.vcpu compares against the machine batch's projected
// requirement.
func (c *Client) GetVCPUUsage(ctx context.Context, subscriptionID, region, family string) (UsageInfo, error) {
	key := CacheKey{Subscription: subscriptionID, Resource: region + "/" + family, Operation: "get_vcpu_usage"}
	return do(ctx, c, key, func(ctx context.Context) (UsageInfo, error) {
		cs, err := c.clientsFor(subscriptionID)
		if err != nil {
			return UsageInfo{}, NewNetwork(region, err)
		}
		pager := cs.usage.NewListPager(region, nil)
		for pager.More() {
			page, err := pager.NextPage(ctx)
			if err != nil {
				return UsageInfo{}, classifyAzureError(region, err)
			}
			for _, u := range page.Value {
				if u.Name == nil || u.Name.Value == nil {
					continue
				}
				if !matchesFamily(*u.Name.Value, family) {
					continue
				}
				info := UsageInfo{}
				if u.CurrentValue != nil {
					info.Current = int(*u.CurrentValue)
				}
				if u.Limit != nil {
					info.Limit = int(*u.Limit)
				}
				return info, nil
			}
		}
		return UsageInfo{}, NewNotFound(family, "vcpu usage not reported for family")
	})
}

func matchesFamily(usageName, family string) bool {
	return strings.EqualFold(usageName, family) || strings.Contains(strings.ToLower(usageName), strings.ToLower(family))
}
