package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catherinevee/migrateguard/internal/cal"
	"github.com/catherinevee/migrateguard/internal/cal/calmock"
	"github.com/catherinevee/migrateguard/internal/config"
	"github.com/catherinevee/migrateguard/internal/model"
)

func readyProject() model.ProjectDecl {
	return model.ProjectDecl{
		SubscriptionID:            "sub-1",
		ResourceGroup:             "rg-landing",
		ProjectName:               "proj-1",
		Region:                    "eastus",
		ApplianceName:             "appliance-1",
		ApplianceKind:             model.ApplianceVMware,
		CacheStorageAccount:       "cache1",
		CacheStorageResourceGroup: "rg-landing",
	}
}

func seedHealthyProject(mock *calmock.Client, p model.ProjectDecl) {
	mock.Subscriptions[p.SubscriptionID] = cal.SubscriptionInfo{ID: p.SubscriptionID}
	mock.RoleScopes["/subscriptions/"+p.SubscriptionID+"/resourceGroups/"+p.ResourceGroup] = []string{"Contributor"}
	mock.Appliances[p.ProjectName] = []cal.ApplianceInfo{{Name: p.ApplianceName, Kind: "vmware", Healthy: true}}
	mock.StorageAccounts[p.CacheStorageResourceGroup+"/"+p.CacheStorageAccount] = cal.StorageAccountInfo{Name: p.CacheStorageAccount, Region: p.Region}
	mock.Usage[p.Region+"/standardDSv3Family"] = cal.UsageInfo{Current: 0, Limit: 100}
}

// TestRunScenarioS2CriticalFailFastCascadesToMachine exercises scenario S2:
// a Tier-1 critical failure short-circuits the project and skips Tier 2 for
// every machine attached to it.
func TestRunScenarioS2CriticalFailFastCascadesToMachine(t *testing.T) {
	mock := calmock.New() // no subscription seeded -> critical
	project := readyProject()
	machine := model.MachineDecl{TargetName: "vm1", ProjectKey: project.Key()}

	cfg := config.NewManager().Current()
	run := Run(context.Background(), mock, cfg, []model.ProjectDecl{project}, []model.MachineDecl{machine}, Options{})

	readiness := run.Projects[project.Key()]
	require.True(t, readiness.ShortCircuited)
	assert.Equal(t, model.SeverityCritical, readiness.Outcomes[0].Severity)

	require.Len(t, run.Machines, 1)
	assert.Equal(t, "prerequisite_failed", run.Machines[0].SkippedReason)
	assert.Equal(t, model.SeverityFailure, run.Machines[0].RolledUp)
}

func TestRunHealthyProjectAllowsMachineChecks(t *testing.T) {
	mock := calmock.New()
	project := readyProject()
	seedHealthyProject(mock, project)

	machine := model.MachineDecl{
		TargetName: "vm1", ProjectKey: project.Key(),
		TargetSubscription: "sub-1", TargetRegion: "eastus",
		TargetResourceGroup: "rg-target", TargetVNet: "vnet-1", TargetSubnet: "subnet-1",
		TargetSKU: "Standard_D2s_v3", TargetDiskType: "premium_lrs", VCPUCount: 2,
	}
	mock.Locations[machine.TargetSubscription] = []string{"eastus"}

	cfg := config.NewManager().Current()
	run := Run(context.Background(), mock, cfg, []model.ProjectDecl{project}, []model.MachineDecl{machine}, Options{})

	require.Len(t, run.Machines, 1)
	assert.Empty(t, run.Machines[0].SkippedReason)
	assert.NotEmpty(t, run.Machines[0].Outcomes)
}

func TestRunStampsTimesAndFingerprint(t *testing.T) {
	mock := calmock.New()
	cfg := config.NewManager().Current()

	run := Run(context.Background(), mock, cfg, nil, nil, Options{})

	assert.NotEmpty(t, run.ID)
	assert.False(t, run.StartedAt.IsZero())
	assert.False(t, run.FinishedAt.IsZero())
	assert.True(t, !run.FinishedAt.Before(run.StartedAt))
	assert.Equal(t, cfg.Fingerprint(), run.ConfigFingerprint)
}

// TestRunTwoMachinesSharingAProjectBothResolve covers the concurrent half
// of scenario S6: two Tier-2 scopes for the same project run in the same
// pool and both receive correct, independent outcomes. The single-flight
// guarantee is covered in the cal package's own tests, which exercise
// cal.Cache directly.
func TestRunTwoMachinesSharingAProjectBothResolve(t *testing.T) {
	mock := calmock.New()
	project := readyProject()
	seedHealthyProject(mock, project)
	mock.Locations[project.SubscriptionID] = []string{"eastus"}
	mock.Machines[project.ProjectName] = []cal.DiscoveredMachine{
		{ID: "m1", Names: []string{"vm1"}},
		{ID: "m2", Names: []string{"vm2"}},
	}

	machines := []model.MachineDecl{
		{SourceName: "vm1", TargetName: "vm1", ProjectKey: project.Key(), TargetSubscription: project.SubscriptionID, TargetRegion: "eastus", TargetResourceGroup: "rg-target", TargetVNet: "vnet-1", TargetSubnet: "subnet-1", TargetSKU: "sku1", TargetDiskType: "premium_lrs"},
		{SourceName: "vm2", TargetName: "vm2", ProjectKey: project.Key(), TargetSubscription: project.SubscriptionID, TargetRegion: "eastus", TargetResourceGroup: "rg-target", TargetVNet: "vnet-1", TargetSubnet: "subnet-1", TargetSKU: "sku1", TargetDiskType: "premium_lrs"},
	}

	cfg := config.NewManager().Current()
	run := Run(context.Background(), mock, cfg, []model.ProjectDecl{project}, machines, Options{})

	require.Len(t, run.Machines, 2)
	for _, m := range run.Machines {
		assert.NotEmpty(t, m.Outcomes)
	}
}

func TestRunEmitsConflictWarningForDisagreeingDuplicateProjects(t *testing.T) {
	mock := calmock.New()
	project := readyProject()
	seedHealthyProject(mock, project)
	conflicting := project
	conflicting.Region = "westus"

	cfg := config.NewManager().Current()
	run := Run(context.Background(), mock, cfg, []model.ProjectDecl{project, conflicting}, nil, Options{})

	readiness := run.Projects[project.Key()]
	found := false
	for _, o := range readiness.Outcomes {
		if o.CheckID == model.CheckConflict {
			found = true
		}
	}
	assert.True(t, found)
}
