package check

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/catherinevee/migrateguard/internal/cal"
	"github.com/catherinevee/migrateguard/internal/config"
	"github.com/catherinevee/migrateguard/internal/model"
)

func projectScope(p model.ProjectDecl) string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s", p.SubscriptionID, p.ResourceGroup)
}

// AccessRBACMigrateProject is the canonical fail-fast trigger: subscription
// existence is checked first, and any auth failure at subscription or
// project scope escalates to critical.
func AccessRBACMigrateProject(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machines []model.MachineDecl) model.CheckOutcome {
	id := model.CheckAccessRBACMigrateProject

	if _, err := access.GetSubscription(ctx, project.SubscriptionID); err != nil {
		return fromCALError(id, err, true, "subscription not accessible")
	}

	requiredRoles := stringSliceParam(cfg, id, "required_roles", []string{"Contributor"})
	held, err := access.ListRoleAssignments(ctx, projectScope(project), "")
	if err != nil {
		return fromCALError(id, err, true, "unable to verify project RBAC")
	}

	if !containsAny(held, requiredRoles) {
		return critical(id, "principal lacks required role on project",
			fmt.Sprintf("required any of %v, held %v", requiredRoles, held), "")
	}

	return ok(id, "principal has required role on project")
}

// ApplianceHealth looks for the declared appliance by name and checks its
// reported kind and heartbeat freshness.
func ApplianceHealth(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machines []model.MachineDecl) model.CheckOutcome {
	id := model.CheckApplianceHealth

	appliances, err := access.ListAppliances(ctx, project.SubscriptionID, project.ProjectName)
	if err != nil {
		return fromCALError(id, err, false, "unable to list appliances")
	}

	var found *cal.ApplianceInfo
	for i := range appliances {
		if appliances[i].Name == project.ApplianceName {
			found = &appliances[i]
			break
		}
	}
	if found == nil {
		return failure(id, "declared appliance not found", "appliance_name="+project.ApplianceName, "")
	}

	if !strings.EqualFold(found.Kind, string(project.ApplianceKind)) {
		return failure(id, "appliance kind mismatch",
			fmt.Sprintf("declared=%s discovered=%s", project.ApplianceKind, found.Kind), "")
	}

	maxAgeHours := intParam(cfg, id, "max_heartbeat_age_hours", 24)
	age := time.Since(found.LastHeartbeat)
	if age >= time.Duration(maxAgeHours)*time.Hour {
		return warning(id, "appliance heartbeat is stale",
			fmt.Sprintf("last heartbeat %s ago, threshold %dh", age.Round(time.Minute), maxAgeHours))
	}

	return ok(id, "appliance healthy")
}

// StorageCache confirms the declared cache storage account exists, optionally
// creating it, and flags a region mismatch against the project.
func StorageCache(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machines []model.MachineDecl) model.CheckOutcome {
	id := model.CheckStorageCache

	info, err := access.GetStorageAccount(ctx, project.SubscriptionID, project.CacheStorageResourceGroup, project.CacheStorageAccount)
	if err != nil {
		f, isFailure := err.(*cal.Failure)
		if !isFailure || f.Kind != cal.NotFound {
			return fromCALError(id, err, false, "unable to verify cache storage account")
		}

		if !boolParam(cfg, id, "auto_create", false) {
			return failure(id, "cache storage account missing", "auto_create disabled", "")
		}

		created, createErr := access.CreateStorageAccount(ctx, project.SubscriptionID, project.CacheStorageResourceGroup, project.CacheStorageAccount, project.Region)
		if createErr != nil {
			return fromCALError(id, createErr, false, "cache storage account creation failed")
		}
		info = created
	}

	outcome := ok(id, "cache storage account ready")
	if !strings.EqualFold(info.Region, project.Region) {
		outcome = warning(id, "cache storage account region mismatch",
			fmt.Sprintf("account region=%s project region=%s", info.Region, project.Region))
	}

	return appendRecoveryVaultNote(ctx, access, project, outcome)
}

// appendRecoveryVaultNote folds the optional declared Site Recovery vault's
// existence into storage.cache's outcome as an informational detail. A
// project without a declared vault is untouched; a declared vault that
// cannot be found downgrades an otherwise-ok outcome to a warning rather
// than a failure, since the vault is not itself provisioned by this check.
func appendRecoveryVaultNote(ctx context.Context, access cal.CAL, project model.ProjectDecl, outcome model.CheckOutcome) model.CheckOutcome {
	if project.RecoveryVaultName == "" {
		return outcome
	}

	vault, err := access.GetRecoveryVault(ctx, project.SubscriptionID, project.CacheStorageResourceGroup, project.RecoveryVaultName)
	if err != nil {
		outcome.Detail = strings.TrimSuffix(outcome.Detail+"; recovery vault not found: "+project.RecoveryVaultName, "; ")
		if outcome.Severity == model.SeverityOK {
			outcome.Severity = model.SeverityWarning
		}
		return outcome
	}

	note := fmt.Sprintf("recovery vault %s ready (region=%s)", vault.Name, vault.Region)
	if outcome.Detail == "" {
		outcome.Detail = note
	} else {
		outcome.Detail = outcome.Detail + "; " + note
	}
	return outcome
}

// QuotaVCPU sums declared vCPUs per (subscription, region) pair present in
// the project's machine batch and compares against remaining quota.
func QuotaVCPU(ctx context.Context, access cal.CAL, cfg *config.Resolved, project model.ProjectDecl, machines []model.MachineDecl) model.CheckOutcome {
	id := model.CheckQuotaVCPU

	type pairKey struct{ subscription, region string }
	demand := make(map[pairKey]int)
	for _, m := range machines {
		if m.ProjectKey != project.Key() {
			continue
		}
		k := pairKey{subscription: m.TargetSubscription, region: m.TargetRegion}
		demand[k] += m.VCPUCount
	}
	if len(demand) == 0 {
		return ok(id, "no machines declared against this project")
	}

	family := stringParam(cfg, id, "vm_family", "standardDSv3Family")
	warnThreshold := intParam(cfg, id, "warn_threshold_percent", 80)

	worst := model.SeverityOK
	var details []string
	for k, required := range demand {
		usage, err := access.GetVCPUUsage(ctx, k.subscription, k.region, family)
		if err != nil {
			return fromCALError(id, err, false, "unable to verify vCPU quota")
		}
		available := usage.Limit - usage.Current
		projectedUsage := usage.Current + required
		percent := 0
		if usage.Limit > 0 {
			percent = (projectedUsage * 100) / usage.Limit
		}

		switch {
		case required > available:
			worst = model.Max(worst, model.SeverityFailure)
			details = append(details, fmt.Sprintf("%s/%s: need %d, available %d", k.subscription, k.region, required, available))
		case percent >= 100:
			worst = model.Max(worst, model.SeverityFailure)
			details = append(details, fmt.Sprintf("%s/%s: projected usage %d%% of limit", k.subscription, k.region, percent))
		case percent >= warnThreshold:
			worst = model.Max(worst, model.SeverityWarning)
			details = append(details, fmt.Sprintf("%s/%s: projected usage %d%% of limit", k.subscription, k.region, percent))
		}
	}

	switch worst {
	case model.SeverityFailure:
		return failure(id, "insufficient vCPU quota", strings.Join(details, "; "), "")
	case model.SeverityWarning:
		return warning(id, "vCPU quota usage approaching limit", strings.Join(details, "; "))
	default:
		return ok(id, "sufficient vCPU quota")
	}
}

func stringParam(cfg *config.Resolved, id model.CheckID, key string, def string) string {
	raw := cfg.Param(id, key, def)
	if s, ok := raw.(string); ok {
		return s
	}
	return def
}
