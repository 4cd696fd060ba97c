package orchestrator

import (
	"context"

	"github.com/catherinevee/migrateguard/internal/cal"
	"github.com/catherinevee/migrateguard/internal/check"
	"github.com/catherinevee/migrateguard/internal/config"
	"github.com/catherinevee/migrateguard/internal/model"
)

// RunTier2 evaluates machine against its project's readiness gate, then
// runs enabled Tier-2 checks in canonical order with the same fail-fast
// rule, scoped to this machine only.
func RunTier2(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, projectReady model.ProjectReadiness, machine model.MachineDecl, projectKnown bool) model.MachineReadiness {
	readiness := model.MachineReadiness{TargetName: machine.TargetName, ProjectKey: machine.ProjectKey}

	if !projectKnown {
		readiness.SkippedReason = "unknown_project"
		readiness.RolledUp = model.SeverityFailure
		return readiness
	}

	if projectReady.RolledUp == model.SeverityFailure || projectReady.RolledUp == model.SeverityCritical {
		readiness.SkippedReason = "prerequisite_failed"
		readiness.RolledUp = model.SeverityFailure
		return readiness
	}

	for i, id := range model.Tier2Checks {
		if !cfg.IsEnabled(id) {
			continue
		}

		fn, ok := check.Tier2Registry[id]
		if !ok {
			continue
		}

		outcome := fn(ctx, access, cfg, project, machine)
		readiness.Outcomes = append(readiness.Outcomes, outcome)

		if outcome.Severity == model.SeverityCritical && cfg.GlobalFlags.FailFast {
			appendSkippedTier2(&readiness, cfg, model.Tier2Checks[i+1:])
			break
		}

		select {
		case <-ctx.Done():
			appendCancelled(&readiness.Outcomes)
			readiness.RolledUp = model.RollUp(readiness.Outcomes)
			return readiness
		default:
		}
	}

	readiness.RolledUp = model.RollUp(readiness.Outcomes)
	return readiness
}

func appendSkippedTier2(readiness *model.MachineReadiness, cfg *config.Resolved, remaining []model.CheckID) {
	for _, id := range remaining {
		if !cfg.IsEnabled(id) {
			continue
		}
		readiness.Outcomes = append(readiness.Outcomes, model.CheckOutcome{
			CheckID:  model.CheckSkipped,
			Severity: model.SeverityOK,
			Summary:  skippedSummary,
		})
	}
}
