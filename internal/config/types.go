// Package config resolves the validation-config document (active profile,
// per-check enablement and parameters, global flags) into an immutable
// snapshot the rest of the engine queries for the duration of one run.
package config

// CheckConfig is one check's enablement flag plus its typed parameters.
type CheckConfig struct {
	Enabled bool                   `yaml:"enabled" json:"enabled"`
	Params  map[string]interface{} `yaml:"-" json:"params,omitempty"`
}

// GlobalConfig holds the run-wide flags from spec §4.2.
type GlobalConfig struct {
	FailFast          bool `yaml:"fail_fast" json:"fail_fast"`
	ParallelExecution bool `yaml:"parallel_execution" json:"parallel_execution"`
	TimeoutSeconds    int  `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Profile is a named set of dotted-path overrides, e.g.
// "server.rbac.rg.enabled" -> false.
type Profile struct {
	Overrides map[string]interface{} `yaml:"overrides" json:"overrides"`
}

// rawDocument mirrors the YAML shape in spec §6 exactly: tier1/tier2 entries
// are free-form maps because each check has its own parameter set, keyed by
// the "enabled" field plus whatever else the check defines.
type rawDocument struct {
	ActiveProfile string                            `yaml:"active_profile"`
	Global        GlobalConfig                      `yaml:"global"`
	Tier1         map[string]map[string]interface{} `yaml:"tier1"`
	Tier2         map[string]map[string]interface{} `yaml:"tier2"`
	Profiles      map[string]struct {
		Overrides map[string]interface{} `yaml:"overrides"`
	} `yaml:"profiles"`
}
