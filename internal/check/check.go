// Package check is the Check Library: the closed set of individual
// validations the Tier-1 and Tier-2 orchestrators run, each a pure function
// from a declaration plus cloud access to a single CheckOutcome.
package check

import (
	"context"

	"github.com/catherinevee/migrateguard/internal/cal"
	"github.com/catherinevee/migrateguard/internal/config"
	"github.com/catherinevee/migrateguard/internal/model"
)

// Tier1Func evaluates one project-scope check. machines is the full declared
// machine batch; checks like quota.vcpu that aggregate across it select the
// machines whose ProjectKey matches project.
type Tier1Func func(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machines []model.MachineDecl) model.CheckOutcome

// Tier2Func evaluates one machine-scope check against its resolved parent
// project.
type Tier2Func func(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machine model.MachineDecl) model.CheckOutcome

// Tier1Registry maps every Tier-1 CheckID to its implementation. The
// orchestrator iterates model.Tier1Checks, not this map's keys, so
// evaluation order stays canonical regardless of map iteration order.
var Tier1Registry = map[model.CheckID]Tier1Func{
	model.CheckAccessRBACMigrateProject: AccessRBACMigrateProject,
	model.CheckApplianceHealth:          ApplianceHealth,
	model.CheckStorageCache:             StorageCache,
	model.CheckQuotaVCPU:                QuotaVCPU,
}

// Tier2Registry maps every Tier-2 CheckID to its implementation.
var Tier2Registry = map[model.CheckID]Tier2Func{
	model.CheckServerRegion:        ServerRegion,
	model.CheckServerResourceGroup: ServerResourceGroup,
	model.CheckServerVNetSubnet:    ServerVNetSubnet,
	model.CheckServerSKU:           ServerSKU,
	model.CheckServerDiskType:      ServerDiskType,
	model.CheckServerDiscovery:     ServerDiscovery,
	model.CheckServerRBACRG:        ServerRBACRG,
}

func ok(id model.CheckID, summary string) model.CheckOutcome {
	return model.CheckOutcome{CheckID: id, Severity: model.SeverityOK, Summary: summary}
}

func warning(id model.CheckID, summary, detail string) model.CheckOutcome {
	return model.CheckOutcome{CheckID: id, Severity: model.SeverityWarning, Summary: summary, Detail: detail}
}

func failure(id model.CheckID, summary, detail, causeTrace string) model.CheckOutcome {
	return model.CheckOutcome{CheckID: id, Severity: model.SeverityFailure, Summary: summary, Detail: detail, CauseTrace: causeTrace}
}

func critical(id model.CheckID, summary, detail, causeTrace string) model.CheckOutcome {
	return model.CheckOutcome{CheckID: id, Severity: model.SeverityCritical, Summary: summary, Detail: detail, CauseTrace: causeTrace}
}

// fromCALError classifies an error CAL returned against whether the
// operation targeted a subscription/project-level scope (auth failures
// there escalate to critical, per the run's fail-fast rule) or a
// specific resource (auth failures there stay a plain failure).
func fromCALError(id model.CheckID, err error, subscriptionScope bool, summary string) model.CheckOutcome {
	f, ok := err.(*cal.Failure)
	if !ok {
		return failure(id, summary, err.Error(), "")
	}
	switch f.Kind {
	case cal.NotFound, cal.Forbidden:
		if subscriptionScope {
			return critical(id, summary, f.Error(), f.CauseTrace)
		}
		return failure(id, summary, f.Error(), f.CauseTrace)
	default:
		return failure(id, summary, f.Error(), f.CauseTrace)
	}
}

func stringSliceParam(cfg *config.Resolved, id model.CheckID, key string, def []string) []string {
	raw := cfg.Param(id, key, def)
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return def
	}
}

func intParam(cfg *config.Resolved, id model.CheckID, key string, def int) int {
	raw := cfg.Param(id, key, def)
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

func boolParam(cfg *config.Resolved, id model.CheckID, key string, def bool) bool {
	raw := cfg.Param(id, key, def)
	if b, ok := raw.(bool); ok {
		return b
	}
	return def
}

func containsAny(held, required []string) bool {
	set := make(map[string]struct{}, len(held))
	for _, h := range held {
		set[h] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
