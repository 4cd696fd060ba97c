package engine

import "github.com/catherinevee/migrateguard/internal/model"

// dedupeProjects collapses declared projects by ProjectKey. A later
// declaration with the same key but differing fields does not overwrite
// the first; instead it produces a synthetic conflict warning attached to
// that project's eventual outcomes.
func dedupeProjects(projects []model.ProjectDecl) ([]model.ProjectDecl, map[model.ProjectKey]model.CheckOutcome) {
	seen := make(map[model.ProjectKey]model.ProjectDecl, len(projects))
	conflicts := make(map[model.ProjectKey]model.CheckOutcome)
	ordered := make([]model.ProjectDecl, 0, len(projects))

	for _, p := range projects {
		key := p.Key()
		existing, ok := seen[key]
		if !ok {
			seen[key] = p
			ordered = append(ordered, p)
			continue
		}
		if existing != p {
			conflicts[key] = model.CheckOutcome{
				CheckID:  model.CheckConflict,
				Severity: model.SeverityWarning,
				Summary:  "Conflicting project declaration",
				Detail:   "a later declaration for this project key disagreed with the first and was ignored",
			}
		}
	}
	return ordered, conflicts
}
