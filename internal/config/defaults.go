package config

import "github.com/catherinevee/migrateguard/internal/model"

// defaultGlobal matches spec §4.2's built-in defaults.
func defaultGlobal() GlobalConfig {
	return GlobalConfig{
		FailFast:          true,
		ParallelExecution: true,
		TimeoutSeconds:    300,
	}
}

// defaultChecks returns every known CheckID enabled with its documented
// default parameters. Unknown keys passed in a document's tier1/tier2 maps
// are carried through verbatim as extra params; this only seeds the
// recognized ones.
func defaultChecks() map[model.CheckID]CheckConfig {
	checks := make(map[model.CheckID]CheckConfig)
	for _, id := range model.Tier1Checks {
		checks[id] = CheckConfig{Enabled: true, Params: map[string]interface{}{}}
	}
	for _, id := range model.Tier2Checks {
		checks[id] = CheckConfig{Enabled: true, Params: map[string]interface{}{}}
	}

	checks[model.CheckAccessRBACMigrateProject].Params["required_roles"] = []interface{}{"Contributor"}
	checks[model.CheckApplianceHealth].Params["max_heartbeat_age_hours"] = 24
	checks[model.CheckStorageCache].Params["auto_create"] = false
	checks[model.CheckQuotaVCPU].Params["warn_threshold_percent"] = 80
	checks[model.CheckServerRBACRG].Params["required_roles"] = []interface{}{"Contributor"}
	checks[model.CheckServerDiskType].Params["supported_disk_types"] = []interface{}{
		"standard_lrs", "standardssd_lrs", "premium_lrs", "premiumv2_lrs", "ultra_ssd_lrs",
	}

	return checks
}
