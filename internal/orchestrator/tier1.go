// Package orchestrator runs the Check Library against declared projects
// and machines, applying the fail-fast/skip state machines the spec
// defines for each tier.
package orchestrator

import (
	"context"

	"github.com/catherinevee/migrateguard/internal/cal"
	"github.com/catherinevee/migrateguard/internal/check"
	"github.com/catherinevee/migrateguard/internal/config"
	"github.com/catherinevee/migrateguard/internal/model"
)

const skippedSummary = "Remaining checks skipped due to critical failure"

// RunTier1 evaluates every enabled Tier-1 check against project in
// canonical order, stopping at the first critical outcome when fail-fast
// is active.
func RunTier1(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machines []model.MachineDecl) model.ProjectReadiness {
	readiness := model.ProjectReadiness{ProjectKey: project.Key()}

	for i, id := range model.Tier1Checks {
		if !cfg.IsEnabled(id) {
			continue
		}

		fn, ok := check.Tier1Registry[id]
		if !ok {
			continue
		}

		outcome := fn(ctx, access, cfg, project, machines)
		readiness.Outcomes = append(readiness.Outcomes, outcome)

		if outcome.Severity == model.SeverityCritical && cfg.GlobalFlags.FailFast {
			readiness.ShortCircuited = true
			appendSkippedTier1(&readiness, cfg, model.Tier1Checks[i+1:])
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

func appendSkippedTier1(readiness *model.ProjectReadiness, cfg *config.Resolved, remaining []model.CheckID) {
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

func appendCancelled(outcomes *[]model.CheckOutcome) {
	*outcomes = append(*outcomes, model.CheckOutcome{
		CheckID:  model.CheckSkipped,
		Severity: model.SeverityWarning,
		Summary:  "run cancelled",
	})
}
