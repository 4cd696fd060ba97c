// Command migrateguard-validate runs the pre-flight validation engine
// against a declared migration plan and reports each project's and
// machine's readiness.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/catherinevee/migrateguard/internal/cal"
	"github.com/catherinevee/migrateguard/internal/config"
	"github.com/catherinevee/migrateguard/internal/engine"
	"github.com/catherinevee/migrateguard/internal/input"
	"github.com/catherinevee/migrateguard/internal/logger"
	"github.com/catherinevee/migrateguard/internal/model"
)

func main() {
	var (
		planPath    = flag.String("plan", "", "Path to the migration plan document (required)")
		configPath  = flag.String("config", "", "Path to a validation config document")
		profile     = flag.String("profile", "", "Named profile to apply (overrides the document's active_profile)")
		outputJSON  = flag.Bool("json", false, "Output the run result as JSON")
		enableMatch = flag.Bool("match", false, "Run the intelligent matcher over machines without a declared project")
		timeout     = flag.Duration("timeout", 10*time.Minute, "Overall run timeout")
	)
	flag.Parse()

	if *planPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: migrateguard-validate -plan plan.json [options]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	log := logger.New("cli")

	doc, err := input.Load(*planPath)
	if err != nil {
		log.Error("failed to load plan", logger.Error(err))
		os.Exit(1)
	}

	mgr := config.NewManager()
	var cfg *config.Resolved
	if *configPath != "" {
		cfg, err = mgr.Load(*configPath, *profile, nil)
		if err != nil {
			log.Error("failed to load config", logger.Error(err))
			os.Exit(1)
		}
	} else {
		cfg = mgr.Current()
	}

	cred, err := cal.NewDefaultCredential()
	if err != nil {
		log.Error("failed to acquire azure credential", logger.Error(err))
		os.Exit(1)
	}
	access := cal.NewClient(cred, cal.NewCache())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	run := engine.Run(ctx, access, cfg, doc.Projects, doc.Machines, engine.Options{EnableMatcher: *enableMatch})

	if *outputJSON {
		renderJSON(run)
	} else {
		renderTable(run)
	}

	if worstSeverity(run) >= model.SeverityFailure {
		os.Exit(1)
	}
}

func worstSeverity(run model.Run) model.Severity {
	worst := model.SeverityOK
	for _, p := range run.Projects {
		worst = model.Max(worst, p.RolledUp)
	}
	for _, m := range run.Machines {
		worst = model.Max(worst, m.RolledUp)
	}
	return worst
}

func renderJSON(run model.Run) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal run: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func renderTable(run model.Run) {
	fmt.Printf("Run finished in %s (config %s)\n\n", run.FinishedAt.Sub(run.StartedAt), run.ConfigFingerprint[:12])

	fmt.Println("Projects:")
	pt := tablewriter.NewWriter(os.Stdout)
	pt.SetHeader([]string{"Project", "Status", "Short-Circuited", "Checks"})
	pt.SetBorder(false)
	pt.SetColumnSeparator(" ")
	for key, readiness := range run.Projects {
		pt.Append([]string{
			key.String(),
			readiness.RolledUp.String(),
			fmt.Sprintf("%t", readiness.ShortCircuited),
			fmt.Sprintf("%d", len(readiness.Outcomes)),
		})
	}
	pt.Render()

	fmt.Println("\nMachines:")
	mt := tablewriter.NewWriter(os.Stdout)
	mt.SetHeader([]string{"Machine", "Project", "Status", "Skipped Reason"})
	mt.SetBorder(false)
	mt.SetColumnSeparator(" ")
	for _, m := range run.Machines {
		mt.Append([]string{
			m.TargetName,
			m.ProjectKey.String(),
			m.RolledUp.String(),
			m.SkippedReason,
		})
	}
	mt.Render()
}
