package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catherinevee/migrateguard/internal/model"
)

const sampleDoc = `
active_profile: strict
global:
  fail_fast: true
  parallel_execution: true
  timeout_seconds: 300
tier1:
  access.rbac.migrate_project: { enabled: true, required_roles: [Contributor] }
  quota.vcpu: { enabled: true, warn_threshold_percent: 80 }
tier2:
  server.rbac.rg: { enabled: true, required_roles: [Contributor] }
profiles:
  strict:
    overrides:
      server.rbac.rg.enabled: false
      global.timeout_seconds: 120
`

func writeSample(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestManagerLoadAppliesProfileOverrides(t *testing.T) {
	path := writeSample(t, sampleDoc)
	m := NewManager()

	resolved, err := m.Load(path, "", nil)
	require.NoError(t, err)

	assert.False(t, resolved.IsEnabled(model.CheckServerRBACRG))
	assert.Equal(t, 120, resolved.GlobalFlags.TimeoutSeconds)
	assert.True(t, resolved.IsEnabled(model.CheckAccessRBACMigrateProject))
	assert.Equal(t, 80, resolved.Param(model.CheckQuotaVCPU, "warn_threshold_percent", 0))
}

func TestManagerExplicitOverrideBeatsProfile(t *testing.T) {
	path := writeSample(t, sampleDoc)
	m := NewManager()

	resolved, err := m.Load(path, "", map[string]interface{}{
		"server.rbac.rg.enabled": true,
	})
	require.NoError(t, err)

	assert.True(t, resolved.IsEnabled(model.CheckServerRBACRG))
}

func TestDefaultsAreAllEnabled(t *testing.T) {
	m := NewManager()
	resolved := m.Current()
	for _, id := range model.Tier1Checks {
		assert.True(t, resolved.IsEnabled(id), "tier1 check %s should default enabled", id)
	}
	for _, id := range model.Tier2Checks {
		assert.True(t, resolved.IsEnabled(id), "tier2 check %s should default enabled", id)
	}
	assert.True(t, resolved.GlobalFlags.FailFast)
}

func TestFingerprintStableUnderReordering(t *testing.T) {
	docA := `
tier1:
  access.rbac.migrate_project: { enabled: true }
  quota.vcpu: { enabled: true }
`
	docB := `
tier1:
  quota.vcpu: { enabled: true }
  access.rbac.migrate_project: { enabled: true }
`
	pathA := writeSample(t, docA)
	pathB := writeSample(t, docB)

	resolvedA, err := NewManager().Load(pathA, "", nil)
	require.NoError(t, err)
	resolvedB, err := NewManager().Load(pathB, "", nil)
	require.NoError(t, err)

	assert.Equal(t, resolvedA.Fingerprint(), resolvedB.Fingerprint())
}

func TestFingerprintChangesWithConfig(t *testing.T) {
	pathA := writeSample(t, `tier1: { quota.vcpu: { enabled: true } }`)
	pathB := writeSample(t, `tier1: { quota.vcpu: { enabled: false } }`)

	resolvedA, err := NewManager().Load(pathA, "", nil)
	require.NoError(t, err)
	resolvedB, err := NewManager().Load(pathB, "", nil)
	require.NoError(t, err)

	assert.NotEqual(t, resolvedA.Fingerprint(), resolvedB.Fingerprint())
}
