// Package engine is the Engine Driver: the single entry point that dedups
// declared input, optionally runs the intelligent matcher, fans Tier-1 and
// Tier-2 orchestration out across bounded worker pools, and assembles the
// final Run value.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/catherinevee/migrateguard/internal/cal"
	"github.com/catherinevee/migrateguard/internal/config"
	"github.com/catherinevee/migrateguard/internal/logger"
	"github.com/catherinevee/migrateguard/internal/matcher"
	"github.com/catherinevee/migrateguard/internal/model"
	"github.com/catherinevee/migrateguard/internal/orchestrator"
)

// Options configures one Run invocation.
type Options struct {
	// EnableMatcher runs the Intelligent Matcher over machines that did
	// not declare a project_key before Tier 2 executes.
	EnableMatcher bool
	// ProjectParallelism and MachineParallelism bound each pool; zero
	// picks the spec's default (min(NumCPU*2, 8)).
	ProjectParallelism int
	MachineParallelism int
}

// Run is the Engine Driver's single entry point: dedup, optional match,
// bounded-parallel Tier-1 then Tier-2 orchestration, and Run assembly.
// ED is the only component that reads wall-clock time.
func Run(ctx context.Context, access cal.CAL, cfg *config.Resolved, projects []model.ProjectDecl, machines []model.MachineDecl, opts Options) model.Run {
	log := logger.New("engine")
	runID := uuid.NewString()
	startedAt := time.Now()

	projectParallelism := opts.ProjectParallelism
	if projectParallelism <= 0 {
		projectParallelism = defaultParallelism()
	}
	machineParallelism := opts.MachineParallelism
	if machineParallelism <= 0 {
		machineParallelism = defaultParallelism()
	}

	dedupedProjects, conflicts := dedupeProjects(projects)

	if opts.EnableMatcher {
		machines = matcher.Match(ctx, access, dedupedProjects, machines)
	}

	projectReadiness := runProjects(ctx, access, cfg, dedupedProjects, machines, projectParallelism)
	for key, conflict := range conflicts {
		readiness, ok := projectReadiness[key]
		if !ok {
			continue
		}
		readiness.Outcomes = append(readiness.Outcomes, conflict)
		readiness.RolledUp = model.Max(readiness.RolledUp, conflict.Severity)
		projectReadiness[key] = readiness
	}

	knownProjects := make(map[model.ProjectKey]model.ProjectDecl, len(dedupedProjects))
	for _, p := range dedupedProjects {
		knownProjects[p.Key()] = p
	}

	machineReadiness := runMachines(ctx, access, cfg, knownProjects, projectReadiness, machines, machineParallelism)

	finishedAt := time.Now()
	log.Info("run complete",
		logger.String("run_id", runID),
		logger.Int("projects", len(dedupedProjects)),
		logger.Int("machines", len(machines)),
		logger.Duration("elapsed", finishedAt.Sub(startedAt)),
	)

	return model.Run{
		ID:                runID,
		Projects:          projectReadiness,
		Machines:          machineReadiness,
		StartedAt:         startedAt,
		FinishedAt:        finishedAt,
		ConfigFingerprint: cfg.Fingerprint(),
	}
}

func runProjects(ctx context.Context, access cal.CAL, cfg *config.Resolved, projects []model.ProjectDecl, machines []model.MachineDecl, parallelism int) map[model.ProjectKey]model.ProjectReadiness {
	sem := newSemaphore(parallelism)
	results := make(map[model.ProjectKey]model.ProjectReadiness, len(projects))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, p := range projects {
		p := p
		if !sem.acquire(ctx) {
			mu.Lock()
			results[p.Key()] = model.ProjectReadiness{
				ProjectKey: p.Key(),
				Outcomes:   []model.CheckOutcome{{CheckID: model.CheckSkipped, Severity: model.SeverityWarning, Summary: "run cancelled"}},
				RolledUp:   model.SeverityWarning,
			}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.release()
			readiness := orchestrator.RunTier1(ctx, access, cfg, p, machines)
			mu.Lock()
			results[p.Key()] = readiness
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}

func runMachines(ctx context.Context, access cal.CAL, cfg *config.Resolved, projects map[model.ProjectKey]model.ProjectDecl, projectReadiness map[model.ProjectKey]model.ProjectReadiness, machines []model.MachineDecl, parallelism int) []model.MachineReadiness {
	sem := newSemaphore(parallelism)
	results := make([]model.MachineReadiness, len(machines))
	var wg sync.WaitGroup

	for i, m := range machines {
		i, m := i, m
		if !sem.acquire(ctx) {
			results[i] = model.MachineReadiness{
				TargetName: m.TargetName,
				ProjectKey: m.ProjectKey,
				Outcomes:   []model.CheckOutcome{{CheckID: model.CheckSkipped, Severity: model.SeverityWarning, Summary: "run cancelled"}},
				RolledUp:   model.SeverityWarning,
			}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.release()

			project, projectKnown := projects[m.ProjectKey]
			readiness := projectReadiness[m.ProjectKey]
			results[i] = orchestrator.RunTier2(ctx, access, cfg, project, readiness, m, projectKnown)
		}()
	}

	wg.Wait()
	return results
}
