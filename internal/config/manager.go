package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/catherinevee/migrateguard/internal/logger"
	"github.com/catherinevee/migrateguard/internal/model"
)

// Resolved is the immutable, profile-and-override-merged configuration
// snapshot handed to one Run. It is cheap to clone (copy the maps) and
// side-effect free, per spec §4.2's VC contract.
type Resolved struct {
	GlobalFlags GlobalConfig
	checks      map[model.CheckID]CheckConfig
	fingerprint string
}

// IsEnabled reports whether a check should run.
func (r *Resolved) IsEnabled(id model.CheckID) bool {
	cfg, ok := r.checks[id]
	if !ok {
		return false
	}
	return cfg.Enabled
}

// Param returns a check parameter, or def if the check or key is absent.
func (r *Resolved) Param(id model.CheckID, key string, def interface{}) interface{} {
	cfg, ok := r.checks[id]
	if !ok {
		return def
	}
	v, ok := cfg.Params[key]
	if !ok {
		return def
	}
	return v
}

// Fingerprint is the hex SHA-256 of the canonicalized resolved config,
// stable under cosmetic reordering of the source document.
func (r *Resolved) Fingerprint() string {
	return r.fingerprint
}

// Manager owns loading the declarative config document, resolving it
// against a profile and explicit overrides, and optionally watching the
// backing file for live reload between runs.
type Manager struct {
	mu       sync.RWMutex
	resolved *Resolved
	docPath  string
	watcher  *fsnotify.Watcher
	log      logger.Logger
	watchers []func(*Resolved)
}

// NewManager creates a config manager seeded with the built-in defaults.
func NewManager() *Manager {
	return &Manager{
		resolved: resolve(rawDocument{Global: defaultGlobal()}, "", nil),
		log:      logger.New("config"),
	}
}

// Load reads and resolves a configuration document from disk, applying the
// named profile (or the document's active_profile if name is empty) and
// any explicit dotted-path overrides supplied at run start.
func (m *Manager) Load(path, profile string, overrides map[string]interface{}) (*Resolved, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config document: %w", err)
	}

	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config document: %w", err)
	}

	if profile == "" {
		profile = raw.ActiveProfile
	}

	resolved := resolve(raw, profile, overrides)

	m.mu.Lock()
	m.docPath = path
	m.resolved = resolved
	m.mu.Unlock()

	return resolved, nil
}

// LoadOverrides resolves the built-in defaults against explicit overrides
// only, with no backing document or profile. Used by callers that configure
// a run entirely through flags rather than a YAML document.
func (m *Manager) LoadOverrides(overrides map[string]interface{}) *Resolved {
	resolved := resolve(rawDocument{Global: defaultGlobal()}, "", overrides)
	m.mu.Lock()
	m.resolved = resolved
	m.mu.Unlock()
	return resolved
}

// Current returns the most recently resolved configuration.
func (m *Manager) Current() *Resolved {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolved
}

// OnReload registers a callback invoked with the freshly resolved config
// whenever Watch detects a file change.
func (m *Manager) OnReload(fn func(*Resolved)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, fn)
}

// Watch starts an fsnotify watch on the loaded document's path, reloading
// and notifying registered callbacks on every write. The caller owns the
// returned stop function.
func (m *Manager) Watch() (stop func(), err error) {
	m.mu.RLock()
	path := m.docPath
	m.mu.RUnlock()
	if path == "" {
		return nil, fmt.Errorf("no config document loaded")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config document: %w", err)
	}

	m.mu.Lock()
	m.watcher = watcher
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				resolved, err := m.Load(path, "", nil)
				if err != nil {
					m.log.Warn("config reload failed", logger.Error(err))
					continue
				}
				m.mu.RLock()
				cbs := append([]func(*Resolved){}, m.watchers...)
				m.mu.RUnlock()
				for _, cb := range cbs {
					cb(resolved)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.log.Warn("config watcher error", logger.Error(err))
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}

// resolve merges built-in defaults, the document's own tier1/tier2/global
// values, the active profile's overrides, and explicit overrides, in that
// increasing order of precedence, then freezes the result.
func resolve(raw rawDocument, profile string, overrides map[string]interface{}) *Resolved {
	global := defaultGlobal()
	checks := defaultChecks()

	mergeDocumentGlobal(&global, raw.Global)
	mergeDocumentChecks(checks, raw.Tier1)
	mergeDocumentChecks(checks, raw.Tier2)

	if profile != "" {
		if p, ok := raw.Profiles[profile]; ok {
			applyDottedOverrides(&global, checks, p.Overrides)
		}
	}
	applyDottedOverrides(&global, checks, overrides)

	r := &Resolved{GlobalFlags: global, checks: checks}
	r.fingerprint = computeFingerprint(r)
	return r
}

func mergeDocumentGlobal(dst *GlobalConfig, src GlobalConfig) {
	// A document's global block is written out in full (it has no concept
	// of "unset" for bools), so any non-zero-value document simply wins;
	// an empty GlobalConfig means no document global block was supplied.
	if src == (GlobalConfig{}) {
		return
	}
	*dst = src
}

func mergeDocumentChecks(dst map[model.CheckID]CheckConfig, src map[string]map[string]interface{}) {
	for rawID, fields := range src {
		id := model.CheckID(rawID)
		cfg, ok := dst[id]
		if !ok {
			cfg = CheckConfig{Enabled: true, Params: map[string]interface{}{}}
		}
		if cfg.Params == nil {
			cfg.Params = map[string]interface{}{}
		}
		for k, v := range fields {
			if k == "enabled" {
				if b, ok := v.(bool); ok {
					cfg.Enabled = b
				}
				continue
			}
			cfg.Params[k] = v
		}
		dst[id] = cfg
	}
}

// applyDottedOverrides applies overrides keyed either "global.<field>" or
// "<check_id>.<field>", where <check_id> is matched against the known set
// since check ids themselves contain dots (e.g. "server.rbac.rg").
func applyDottedOverrides(global *GlobalConfig, checks map[model.CheckID]CheckConfig, overrides map[string]interface{}) {
	for path, value := range overrides {
		if rest, ok := strings.CutPrefix(path, "global."); ok {
			applyGlobalOverride(global, rest, value)
			continue
		}
		for id := range checks {
			prefix := string(id) + "."
			if field, ok := strings.CutPrefix(path, prefix); ok {
				cfg := checks[id]
				if cfg.Params == nil {
					cfg.Params = map[string]interface{}{}
				}
				if field == "enabled" {
					if b, ok := value.(bool); ok {
						cfg.Enabled = b
					}
				} else {
					cfg.Params[field] = value
				}
				checks[id] = cfg
				break
			}
		}
	}
}

func applyGlobalOverride(global *GlobalConfig, field string, value interface{}) {
	switch field {
	case "fail_fast":
		if b, ok := value.(bool); ok {
			global.FailFast = b
		}
	case "parallel_execution":
		if b, ok := value.(bool); ok {
			global.ParallelExecution = b
		}
	case "timeout_seconds":
		switch v := value.(type) {
		case int:
			global.TimeoutSeconds = v
		case float64:
			global.TimeoutSeconds = int(v)
		}
	}
}
