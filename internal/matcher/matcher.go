// Package matcher implements the Intelligent Matcher: a best-effort
// scoring pass that fills in a machine's project association when the
// caller did not declare one explicitly.
package matcher

import (
	"context"
	"net"
	"strings"

	"github.com/catherinevee/migrateguard/internal/cal"
	"github.com/catherinevee/migrateguard/internal/model"
)

const (
	scoreExactName      = 10
	scoreSubstringName  = 5
	scoreRegionMatch    = 3
	scoreIPInSubnet     = 2
)

// Match fills project_key for every machine in machines that does not
// already declare one, scoring each of projects as a candidate. Machines
// that already carry a project_key pass through unchanged. The matcher
// never fails: a machine with no positive-scoring candidate is left
// without a project_key for T2O to mark unknown_project.
func Match(ctx context.Context, access cal.CAL, projects []model.ProjectDecl, machines []model.MachineDecl) []model.MachineDecl {
	matched := make([]model.MachineDecl, len(machines))
	copy(matched, machines)

	discoveries := make(map[model.ProjectKey][]cal.DiscoveredMachine, len(projects))
	for _, p := range projects {
		list, err := access.ListDiscoveredMachines(ctx, p.SubscriptionID, p.ResourceGroup, p.ProjectName)
		if err != nil {
			continue
		}
		discoveries[p.Key()] = list
	}

	for i, m := range matched {
		if m.HasProjectKey() {
			continue
		}
		best, bestScore := bestCandidate(m, projects, discoveries)
		if bestScore > 0 {
			matched[i].ProjectKey = best
		}
	}
	return matched
}

func bestCandidate(m model.MachineDecl, projects []model.ProjectDecl, discoveries map[model.ProjectKey][]cal.DiscoveredMachine) (model.ProjectKey, int) {
	var best model.ProjectKey
	bestScore := 0
	haveBest := false

	for _, p := range projects {
		score := scoreCandidate(m, p, discoveries[p.Key()])
		if score <= 0 {
			continue
		}
		if !haveBest || score > bestScore || (score == bestScore && p.Key().Less(best)) {
			best = p.Key()
			bestScore = score
			haveBest = true
		}
	}
	return best, bestScore
}

func scoreCandidate(m model.MachineDecl, p model.ProjectDecl, discovered []cal.DiscoveredMachine) int {
	score := 0
	sourceName := strings.ToLower(m.SourceName)

	for _, d := range discovered {
		for _, name := range d.Names {
			lname := strings.ToLower(name)
			if lname == sourceName {
				score += scoreExactName
			} else if sourceName != "" && strings.Contains(lname, sourceName) {
				score += scoreSubstringName
			}
		}
		if ipInDeclaredSubnet(m, d.IPAddresses) {
			score += scoreIPInSubnet
		}
	}

	if strings.EqualFold(m.TargetRegion, p.Region) {
		score += scoreRegionMatch
	}

	return score
}

// ipInDeclaredSubnet reports whether any of ips falls within the machine's
// declared target subnet's address range. The declared subnet only
// carries a name in MachineDecl, not a CIDR, so this degrades to false
// unless the caller supplied a CIDR-shaped TargetSubnet value; when it
// did, the comparison is a genuine network-containment check.
func ipInDeclaredSubnet(m model.MachineDecl, ips []string) bool {
	_, subnet, err := net.ParseCIDR(m.TargetSubnet)
	if err != nil {
		return false
	}
	for _, raw := range ips {
		ip := net.ParseIP(raw)
		if ip != nil && subnet.Contains(ip) {
			return true
		}
	}
	return false
}
