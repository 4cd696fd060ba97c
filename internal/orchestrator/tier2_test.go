package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/catherinevee/migrateguard/internal/cal/calmock"
	"github.com/catherinevee/migrateguard/internal/model"
)

func testMachine(project model.ProjectDecl) model.MachineDecl {
	return model.MachineDecl{
		SourceName:          "vm-source",
		TargetName:          "vm-target",
		TargetRegion:        "eastus",
		TargetSubscription:  "sub-1",
		TargetResourceGroup: "rg-target",
		TargetVNet:          "vnet-1",
		TargetSubnet:        "subnet-1",
		TargetSKU:           "Standard_D2s_v3",
		TargetDiskType:      "premium_lrs",
		VCPUCount:           2,
		ProjectKey:          project.Key(),
	}
}

func TestTier2SkipsOnUnknownProject(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)

	readiness := RunTier2(context.Background(), mock, defaultResolved(), project, model.ProjectReadiness{}, machine, false)

	assert.Equal(t, "unknown_project", readiness.SkippedReason)
	assert.Equal(t, model.SeverityFailure, readiness.RolledUp)
	assert.Empty(t, readiness.Outcomes)
}

// TestTier2SkipsOnPrerequisiteFailure covers scenario S2's machine-side
// expectation: a failed project readiness skips Tier 2 entirely.
func TestTier2SkipsOnPrerequisiteFailure(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	projectReady := model.ProjectReadiness{RolledUp: model.SeverityCritical}

	readiness := RunTier2(context.Background(), mock, defaultResolved(), project, projectReady, machine, true)

	assert.Equal(t, "prerequisite_failed", readiness.SkippedReason)
	assert.Equal(t, model.SeverityFailure, readiness.RolledUp)
}

// TestTier2RunsWhenProjectOnlyWarned covers the rule that Tier-1 warnings
// never block Tier 2.
func TestTier2RunsWhenProjectOnlyWarned(t *testing.T) {
	mock := calmock.New()
	project := testProject()
	machine := testMachine(project)
	mock.Locations[machine.TargetSubscription] = []string{"eastus"}
	projectReady := model.ProjectReadiness{RolledUp: model.SeverityWarning}

	readiness := RunTier2(context.Background(), mock, defaultResolved(), project, projectReady, machine, true)

	assert.Empty(t, readiness.SkippedReason)
	assert.NotEmpty(t, readiness.Outcomes)
}
