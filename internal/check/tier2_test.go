package check

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/catherinevee/migrateguard/internal/cal"
	"github.com/catherinevee/migrateguard/internal/cal/calmock"
	"github.com/catherinevee/migrateguard/internal/model"
)

func testMachine(project model.ProjectDecl) model.MachineDecl {
	return model.MachineDecl{
		SourceName:         "vm-source",
		TargetName:         "vm-target",
		TargetRegion:       "eastus",
		TargetSubscription: "sub-1",
		TargetResourceGroup: "rg-target",
		TargetVNet:         "vnet-1",
		TargetSubnet:       "subnet-1",
		TargetSKU:          "Standard_D2s_v3",
		TargetDiskType:     "premium_lrs",
		VCPUCount:          2,
		ProjectKey:         project.Key(),
	}
}

func TestServerRegionOK(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.Locations[machine.TargetSubscription] = []string{"eastus", "westus"}

	outcome := ServerRegion(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityOK, outcome.Severity)
}

func TestServerRegionFailsWhenUnknown(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.Locations[machine.TargetSubscription] = []string{"westus"}

	outcome := ServerRegion(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityFailure, outcome.Severity)
}

func TestServerVNetSubnetFailsOnDelegation(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.VNets[machine.TargetResourceGroup+"/"+machine.TargetVNet] = cal.VNetInfo{
		Name: machine.TargetVNet, Subnets: []string{machine.TargetSubnet},
	}
	mock.Subnets[machine.TargetResourceGroup+"/"+machine.TargetVNet+"/"+machine.TargetSubnet] = cal.SubnetInfo{
		AddressPrefix: "10.0.0.0/28", PrefixCapacity: 16, UsedIPCount: 1, Delegations: []string{"Microsoft.Web/serverFarms"},
	}

	outcome := ServerVNetSubnet(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityFailure, outcome.Severity)
}

func TestServerVNetSubnetFailsWhenFull(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.VNets[machine.TargetResourceGroup+"/"+machine.TargetVNet] = cal.VNetInfo{
		Name: machine.TargetVNet, Subnets: []string{machine.TargetSubnet},
	}
	mock.Subnets[machine.TargetResourceGroup+"/"+machine.TargetVNet+"/"+machine.TargetSubnet] = cal.SubnetInfo{
		AddressPrefix: "10.0.0.0/28", PrefixCapacity: 16, UsedIPCount: 11,
	}

	outcome := ServerVNetSubnet(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityFailure, outcome.Severity)
}

func TestServerVNetSubnetOKWithCapacity(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.VNets[machine.TargetResourceGroup+"/"+machine.TargetVNet] = cal.VNetInfo{
		Name: machine.TargetVNet, Subnets: []string{machine.TargetSubnet},
	}
	mock.Subnets[machine.TargetResourceGroup+"/"+machine.TargetVNet+"/"+machine.TargetSubnet] = cal.SubnetInfo{
		AddressPrefix: "10.0.0.0/24", PrefixCapacity: 256, UsedIPCount: 10,
	}

	outcome := ServerVNetSubnet(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityOK, outcome.Severity)
}

func TestServerSKURestrictedFails(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.SKUs[machine.TargetSubscription+":"+machine.TargetRegion] = []cal.SkuInfo{
		{Name: machine.TargetSKU, Restricted: true, RestrictedIn: []string{"1", "2", "3"}},
	}

	outcome := ServerSKU(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityFailure, outcome.Severity)
}

func TestServerSKUDeprecatedWarns(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.SKUs[machine.TargetSubscription+":"+machine.TargetRegion] = []cal.SkuInfo{
		{Name: machine.TargetSKU, Deprecated: true},
	}

	outcome := ServerSKU(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityWarning, outcome.Severity)
}

func TestServerDiskTypeUnsupportedFails(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	machine.TargetDiskType = "spinning_rust"

	outcome := ServerDiskType(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityFailure, outcome.Severity)
}

func TestServerDiscoveryFailsWhenNoMatch(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)

	outcome := ServerDiscovery(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityFailure, outcome.Severity)
}

func TestServerDiscoveryOKWithExactlyOneMatch(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.Machines[project.ProjectName] = []cal.DiscoveredMachine{
		{ID: "m1", Names: []string{machine.SourceName}},
	}

	outcome := ServerDiscovery(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityOK, outcome.Severity)
}

func TestServerDiscoveryWarnsOnMultipleMatches(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.Machines[project.ProjectName] = []cal.DiscoveredMachine{
		{ID: "m1", Names: []string{machine.SourceName}},
		{ID: "m2", Names: []string{machine.SourceName}},
	}

	outcome := ServerDiscovery(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityWarning, outcome.Severity)
}

func TestServerDiscoveryWarnsOnActiveReplication(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.Machines[project.ProjectName] = []cal.DiscoveredMachine{
		{ID: "m1", Names: []string{machine.SourceName}, ReplicationState: "replicating"},
	}

	outcome := ServerDiscovery(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityWarning, outcome.Severity)
}

func TestServerDiscoveryOKWhenDiscoveredNameDiffersInCase(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.Machines[project.ProjectName] = []cal.DiscoveredMachine{
		{ID: "m1", Names: []string{strings.ToUpper(machine.SourceName)}},
	}

	outcome := ServerDiscovery(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityOK, outcome.Severity)
}

func TestServerRBACRGForbiddenFails(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.Errors["list_role_assignments:"+targetScope(machine)+":"] = cal.NewForbidden(targetScope(machine), "trace-1")

	outcome := ServerRBACRG(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityFailure, outcome.Severity)
	assert.Contains(t, outcome.Summary, "insufficient permission")
}

func TestServerRBACRGOKWithRole(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.RoleScopes[targetScope(machine)] = []string{"Contributor"}

	outcome := ServerRBACRG(context.Background(), mock, defaultResolved(t), project, machine)

	assert.Equal(t, model.SeverityOK, outcome.Severity)
}
