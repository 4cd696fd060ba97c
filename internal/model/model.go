// Package model holds the value types shared across the validation engine:
// declarations supplied by the caller, the check vocabulary, and the
// per-scope results the orchestrators assemble into a Run.
package model

import "time"

// ApplianceKind enumerates the source virtualization platforms an Azure
// Migrate appliance can front.
type ApplianceKind string

const (
	ApplianceVMware   ApplianceKind = "vmware"
	ApplianceHyperV   ApplianceKind = "hyperv"
	AppliancePhysical ApplianceKind = "physical"
)

// ProjectDecl is a user-declared landing-zone context for one Azure Migrate
// project. Immutable once parsed; destroyed at the end of a run.
type ProjectDecl struct {
	SubscriptionID            string        `json:"subscription_id"`
	ResourceGroup              string        `json:"resource_group"`
	ProjectName                string        `json:"project_name"`
	Region                      string        `json:"region"`
	ApplianceName               string        `json:"appliance_name"`
	ApplianceKind                ApplianceKind `json:"appliance_kind"`
	CacheStorageAccount          string        `json:"cache_storage_account"`
	CacheStorageResourceGroup    string        `json:"cache_storage_resource_group"`
	RecoveryVaultName            string        `json:"recovery_vault_name,omitempty"`
}

// Key derives the dedup identity for Tier 1.
func (p ProjectDecl) Key() ProjectKey {
	return ProjectKey{
		SubscriptionID: p.SubscriptionID,
		ResourceGroup:  p.ResourceGroup,
		ProjectName:    p.ProjectName,
	}
}

// MachineDecl is a user-declared per-machine migration target.
type MachineDecl struct {
	SourceName           string     `json:"source_name,omitempty"`
	TargetName            string     `json:"target_name"`
	TargetRegion           string     `json:"target_region"`
	TargetSubscription     string     `json:"target_subscription"`
	TargetResourceGroup    string     `json:"target_resource_group"`
	TargetVNet             string     `json:"target_vnet"`
	TargetSubnet           string     `json:"target_subnet"`
	TargetSKU              string     `json:"target_sku"`
	TargetDiskType         string     `json:"target_disk_type"`
	VCPUCount              int        `json:"vcpu_count,omitempty"`
	ProjectKey             ProjectKey `json:"project_key"`
}

// HasProjectKey reports whether the declaration already carries an
// association, as opposed to needing the intelligent matcher.
func (m MachineDecl) HasProjectKey() bool {
	return m.ProjectKey != (ProjectKey{})
}

// ProjectKey is the dedup/lookup identity for a declared project:
// (subscription_id, resource_group, project_name).
type ProjectKey struct {
	SubscriptionID string `json:"subscription_id"`
	ResourceGroup  string `json:"resource_group"`
	ProjectName    string `json:"project_name"`
}

func (k ProjectKey) String() string {
	return k.SubscriptionID + "/" + k.ResourceGroup + "/" + k.ProjectName
}

// MarshalText renders the key as "subscription/resource-group/project" so
// it can be used as a JSON object key (encoding/json only accepts map keys
// that implement encoding.TextMarshaler or are plain strings/integers).
func (k ProjectKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Less gives a stable lexicographic order, used by the intelligent matcher
// to break scoring ties deterministically.
func (k ProjectKey) Less(other ProjectKey) bool {
	if k.SubscriptionID != other.SubscriptionID {
		return k.SubscriptionID < other.SubscriptionID
	}
	if k.ResourceGroup != other.ResourceGroup {
		return k.ResourceGroup < other.ResourceGroup
	}
	return k.ProjectName < other.ProjectName
}

// CheckID is the closed, finite set of validation checks the engine knows
// how to run.
type CheckID string

const (
	CheckAccessRBACMigrateProject CheckID = "access.rbac.migrate_project"
	CheckApplianceHealth         CheckID = "appliance.health"
	CheckStorageCache            CheckID = "storage.cache"
	CheckQuotaVCPU               CheckID = "quota.vcpu"

	CheckServerRegion        CheckID = "server.region"
	CheckServerResourceGroup CheckID = "server.resource_group"
	CheckServerVNetSubnet    CheckID = "server.vnet_subnet"
	CheckServerSKU           CheckID = "server.sku"
	CheckServerDiskType      CheckID = "server.disk_type"
	CheckServerDiscovery     CheckID = "server.discovery"
	CheckServerRBACRG        CheckID = "server.rbac.rg"

	// CheckSkipped marks a synthetic outcome emitted for checks short-circuited
	// by a critical failure earlier in the same scope, and for the "run
	// cancelled" outcome added when cancellation stops or prevents a scope.
	CheckSkipped CheckID = "__skipped__"

	// CheckConflict marks a synthetic outcome emitted when two declarations
	// share a ProjectKey but disagree on other fields.
	CheckConflict CheckID = "__conflict__"
)

// Tier1Checks is the canonical evaluation order for project-scope checks.
// Access precedes everything else so a critical subscription failure can
// fail-fast the rest of the landing-zone scope.
var Tier1Checks = []CheckID{
	CheckAccessRBACMigrateProject,
	CheckApplianceHealth,
	CheckStorageCache,
	CheckQuotaVCPU,
}

// Tier2Checks is the canonical evaluation order for machine-scope checks.
var Tier2Checks = []CheckID{
	CheckServerRegion,
	CheckServerResourceGroup,
	CheckServerVNetSubnet,
	CheckServerSKU,
	CheckServerDiskType,
	CheckServerDiscovery,
	CheckServerRBACRG,
}

// Severity classifies the result of a single check. Ordered by increasing
// urgency so max-severity roll-up is a simple comparison.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityFailure
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityFailure:
		return "failure"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the severity as its lowercase string name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Max returns the more urgent of two severities.
func Max(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}

// CheckOutcome is the result of one check invocation.
type CheckOutcome struct {
	CheckID    CheckID  `json:"check_id"`
	Severity   Severity `json:"severity"`
	Summary    string   `json:"summary"`
	Detail     string   `json:"detail,omitempty"`
	CauseTrace string   `json:"cause_trace,omitempty"`
}

// RollUp computes the max severity across a set of outcomes, treating an
// empty, non-skipped set as ok.
func RollUp(outcomes []CheckOutcome) Severity {
	rolled := SeverityOK
	for _, o := range outcomes {
		rolled = Max(rolled, o.Severity)
	}
	return rolled
}

// ProjectReadiness is the Tier-1 verdict for one declared project.
type ProjectReadiness struct {
	ProjectKey      ProjectKey     `json:"project_key"`
	Outcomes        []CheckOutcome `json:"outcomes"`
	RolledUp        Severity       `json:"rolled_up"`
	ShortCircuited  bool           `json:"short_circuited"`
}

// MachineReadiness is the Tier-2 verdict for one declared machine.
type MachineReadiness struct {
	TargetName     string         `json:"target_name"`
	ProjectKey     ProjectKey     `json:"project_key"`
	Outcomes       []CheckOutcome `json:"outcomes"`
	RolledUp       Severity       `json:"rolled_up"`
	SkippedReason  string         `json:"skipped_reason,omitempty"`
}

// Run is the complete output of one engine invocation.
type Run struct {
	ID                string                         `json:"id"`
	Projects          map[ProjectKey]ProjectReadiness `json:"projects"`
	Machines          []MachineReadiness              `json:"machines"`
	StartedAt         time.Time                       `json:"started_at"`
	FinishedAt        time.Time                       `json:"finished_at"`
	ConfigFingerprint string                         `json:"config_fingerprint"`
}
