package matcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/catherinevee/migrateguard/internal/cal"
	"github.com/catherinevee/migrateguard/internal/cal/calmock"
	"github.com/catherinevee/migrateguard/internal/model"
)

func projectA() model.ProjectDecl {
	return model.ProjectDecl{SubscriptionID: "sub-1", ResourceGroup: "rg-a", ProjectName: "proj-a", Region: "eastus"}
}

func projectB() model.ProjectDecl {
	return model.ProjectDecl{SubscriptionID: "sub-1", ResourceGroup: "rg-b", ProjectName: "proj-b", Region: "westus"}
}

func TestMatchLeavesDeclaredAssociationUntouched(t *testing.T) {
	mock := calmock.New()
	p := projectA()
	machine := model.MachineDecl{SourceName: "vm1", ProjectKey: p.Key()}

	result := Match(context.Background(), mock, []model.ProjectDecl{p}, []model.MachineDecl{machine})

	assert.Equal(t, p.Key(), result[0].ProjectKey)
}

func TestMatchAssignsExactNameMatch(t *testing.T) {
	mock := calmock.New()
	pa, pb := projectA(), projectB()
	mock.Machines[pa.ProjectName] = []cal.DiscoveredMachine{{ID: "d1", Names: []string{"vm1"}}}

	machine := model.MachineDecl{SourceName: "vm1"}
	result := Match(context.Background(), mock, []model.ProjectDecl{pa, pb}, []model.MachineDecl{machine})

	assert.Equal(t, pa.Key(), result[0].ProjectKey)
}

func TestMatchPrefersRegionMatchOnTie(t *testing.T) {
	mock := calmock.New()
	pa, pb := projectA(), projectB()
	// Both projects report the same discovery name, so name scoring ties;
	// region match on pb should tip the balance.
	mock.Machines[pa.ProjectName] = []cal.DiscoveredMachine{{ID: "d1", Names: []string{"vm1"}}}
	mock.Machines[pb.ProjectName] = []cal.DiscoveredMachine{{ID: "d2", Names: []string{"vm1"}}}

	machine := model.MachineDecl{SourceName: "vm1", TargetRegion: "westus"}
	result := Match(context.Background(), mock, []model.ProjectDecl{pa, pb}, []model.MachineDecl{machine})

	assert.Equal(t, pb.Key(), result[0].ProjectKey)
}

func TestMatchLeavesUnscoredMachineUnassigned(t *testing.T) {
	mock := calmock.New()
	pa := projectA()

	machine := model.MachineDecl{SourceName: "does-not-exist", TargetRegion: "centralus"}
	result := Match(context.Background(), mock, []model.ProjectDecl{pa}, []model.MachineDecl{machine})

	assert.False(t, result[0].HasProjectKey())
}

func TestMatchBreaksEqualScoreTiesByLexicographicKey(t *testing.T) {
	mock := calmock.New()
	pa, pb := projectA(), projectB()
	pa.Region, pb.Region = "centralus", "centralus" // equalize the region score too
	mock.Machines[pa.ProjectName] = []cal.DiscoveredMachine{{ID: "d1", Names: []string{"vm1"}}}
	mock.Machines[pb.ProjectName] = []cal.DiscoveredMachine{{ID: "d2", Names: []string{"vm1"}}}

	machine := model.MachineDecl{SourceName: "vm1", TargetRegion: "centralus"}
	result := Match(context.Background(), mock, []model.ProjectDecl{pb, pa}, []model.MachineDecl{machine})

	assert.True(t, pa.Key().Less(pb.Key()))
	assert.Equal(t, pa.Key(), result[0].ProjectKey)
}
