package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/catherinevee/migrateguard/internal/cal"
	"github.com/catherinevee/migrateguard/internal/config"
	"github.com/catherinevee/migrateguard/internal/model"
)

func targetScope(m model.MachineDecl) string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", m.TargetSubscription, m.TargetResourceGroup)
}

// ServerRegion confirms the machine's target region is one the target
// subscription can deploy into.
func ServerRegion(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machine model.MachineDecl) model.CheckOutcome {
	id := model.CheckServerRegion

	locations, err := access.ListLocations(ctx, machine.TargetSubscription)
	if err != nil {
		return fromCALError(id, err, false, "unable to list available regions")
	}

	for _, loc := range locations {
		if strings.EqualFold(loc, machine.TargetRegion) {
			return ok(id, "target region available")
		}
	}
	return failure(id, "target region unavailable", "region="+machine.TargetRegion, "")
}

// ServerResourceGroup confirms the target resource group exists.
func ServerResourceGroup(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machine model.MachineDecl) model.CheckOutcome {
	id := model.CheckServerResourceGroup

	info, err := access.GetResourceGroup(ctx, machine.TargetSubscription, machine.TargetResourceGroup)
	if err != nil {
		return fromCALError(id, err, false, "target resource group not accessible")
	}

	if info.Region != "" && !strings.EqualFold(info.Region, machine.TargetRegion) {
		return warning(id, "resource group region differs from machine region",
			fmt.Sprintf("rg region=%s machine region=%s", info.Region, machine.TargetRegion))
	}
	return ok(id, "target resource group exists")
}

const azureReservedAddressesPerSubnet = 5

// ServerVNetSubnet confirms the target vnet and subnet exist, carry no
// delegation that would preclude a general-purpose VM, and have enough
// free addresses for the new machine.
func ServerVNetSubnet(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machine model.MachineDecl) model.CheckOutcome {
	id := model.CheckServerVNetSubnet

	vnet, err := access.GetVNet(ctx, machine.TargetSubscription, machine.TargetResourceGroup, machine.TargetVNet)
	if err != nil {
		return fromCALError(id, err, false, "target virtual network not accessible")
	}

	found := false
	for _, s := range vnet.Subnets {
		if strings.EqualFold(s, machine.TargetSubnet) {
			found = true
			break
		}
	}
	if !found {
		return failure(id, "target subnet not found in vnet", "subnet="+machine.TargetSubnet, "")
	}

	subnet, err := access.GetSubnet(ctx, machine.TargetSubscription, machine.TargetResourceGroup, machine.TargetVNet, machine.TargetSubnet)
	if err != nil {
		return fromCALError(id, err, false, "target subnet not accessible")
	}

	if len(subnet.Delegations) > 0 {
		return failure(id, "target subnet has a delegation", fmt.Sprintf("delegations=%v", subnet.Delegations), "")
	}

	freeIPs := subnet.PrefixCapacity - azureReservedAddressesPerSubnet - subnet.UsedIPCount
	if freeIPs <= 0 {
		return failure(id, "target subnet has no free addresses",
			fmt.Sprintf("capacity=%d used=%d", subnet.PrefixCapacity, subnet.UsedIPCount), "")
	}
	if subnet.PrefixCapacity > 0 && freeIPs*100 <= subnet.PrefixCapacity*5 {
		return warning(id, "target subnet is nearly exhausted",
			fmt.Sprintf("free=%d capacity=%d", freeIPs, subnet.PrefixCapacity))
	}

	return ok(id, "target subnet has capacity")
}

// ServerSKU confirms the target SKU is offered, unrestricted, in the
// machine's target region.
func ServerSKU(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machine model.MachineDecl) model.CheckOutcome {
	id := model.CheckServerSKU

	skus, err := access.ListVMSKUs(ctx, machine.TargetSubscription, machine.TargetRegion)
	if err != nil {
		return fromCALError(id, err, false, "unable to list available SKUs")
	}

	for _, sku := range skus {
		if !strings.EqualFold(sku.Name, machine.TargetSKU) {
			continue
		}
		if sku.Restricted {
			return failure(id, "target SKU is restricted in this region",
				fmt.Sprintf("sku=%s restricted_in=%v", sku.Name, sku.RestrictedIn), "")
		}
		if sku.Deprecated {
			return warning(id, "target SKU is deprecated", "sku="+sku.Name)
		}
		return ok(id, "target SKU available")
	}
	return failure(id, "target SKU not offered in region", "sku="+machine.TargetSKU, "")
}

// ServerDiskType confirms the declared disk type is among the statically
// enumerated supported kinds.
func ServerDiskType(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machine model.MachineDecl) model.CheckOutcome {
	id := model.CheckServerDiskType

	supported := stringSliceParam(cfg, id, "supported_disk_types", []string{
		"standard_lrs", "standardssd_lrs", "premium_lrs", "premiumv2_lrs", "ultra_ssd_lrs",
	})
	for _, d := range supported {
		if strings.EqualFold(d, machine.TargetDiskType) {
			return ok(id, "target disk type supported")
		}
	}
	return failure(id, "target disk type unsupported", "disk_type="+machine.TargetDiskType, "")
}

// ServerDiscovery confirms the declared machine corresponds to exactly one
// discovered machine and does not clobber an active replication.
func ServerDiscovery(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machine model.MachineDecl) model.CheckOutcome {
	id := model.CheckServerDiscovery

	name := machine.SourceName
	if name == "" {
		name = machine.TargetName
	}

	matches, err := access.SearchDiscoveredByName(ctx, project.SubscriptionID, project.ResourceGroup, project.ProjectName, name)
	if err != nil {
		return fromCALError(id, err, false, "unable to search discovered machines")
	}

	var exact []cal.DiscoveredMachine
	for _, m := range matches {
		for _, n := range m.Names {
			if strings.EqualFold(n, name) {
				exact = append(exact, m)
				break
			}
		}
	}

	switch len(exact) {
	case 0:
		return failure(id, "declared machine not found in discovery", "name="+name, "")
	case 1:
		m := exact[0]
		if m.ReplicationState != "" && m.ReplicationState != "not_replicating" {
			return warning(id, "machine already has an active replication",
				fmt.Sprintf("id=%s state=%s", m.ID, m.ReplicationState))
		}
		return ok(id, "declared machine found in discovery")
	default:
		ids := make([]string, 0, len(exact))
		for _, m := range exact {
			ids = append(ids, m.ID)
		}
		return warning(id, "multiple discovered machines match declared name", fmt.Sprintf("candidates=%v", ids))
	}
}

// ServerRBACRG confirms the principal holds a required role on the target
// resource group.
func ServerRBACRG(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machine model.MachineDecl) model.CheckOutcome {
	id := model.CheckServerRBACRG

	requiredRoles := stringSliceParam(cfg, id, "required_roles", []string{"Contributor"})
	held, err := access.ListRoleAssignments(ctx, targetScope(machine), "")
	if err != nil {
		if f, ok := err.(*cal.Failure); ok && f.Kind == cal.Forbidden {
			return failure(id, "insufficient permission to verify permissions", f.Error(), f.CauseTrace)
		}
		return fromCALError(id, err, false, "unable to verify target resource group RBAC")
	}

	if !containsAny(held, requiredRoles) {
		return failure(id, "principal lacks required role on target resource group",
			fmt.Sprintf("required any of %v, held %v", requiredRoles, held), "")
	}
	return ok(id, "principal has required role on target resource group")
}
