package catalog

import (
	"fmt"
	"strings"
)

// validatePaths performs all structural checks on the given paths.
// Returns a combined error describing all problems found, or nil if valid.
func validatePaths(paths []Path) error {
	var errs []string

	pathIDs := make(map[string]bool, len(paths))
	moduleIDs := make(map[string]bool)

	// Check for duplicate IDs
	for _, p := range paths {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("path with title %q has empty ID", p.Title))
		}
		if pathIDs[p.ID] {
			errs = append(errs, fmt.Sprintf("duplicate path ID: %q", p.ID))
		}
		pathIDs[p.ID] = true

		for _, m := range p.Modules {
			if m.ID == "" {
				errs = append(errs, fmt.Sprintf("path %q has a module with empty ID", p.ID))
			}
			if moduleIDs[m.ID] {
				errs = append(errs, fmt.Sprintf("duplicate module ID: %q", m.ID))
			}
			moduleIDs[m.ID] = true
		}
	}

	// Check for dangling prerequisites and bad enum values
	for _, p := range paths {
		for _, prereqID := range p.Prerequisites {
			if !pathIDs[prereqID] {
				errs = append(errs, fmt.Sprintf("path %q references nonexistent prerequisite path %q", p.ID, prereqID))
			}
		}
		if p.Level.Rank() < 0 {
			errs = append(errs, fmt.Sprintf("path %q: unknown level %q", p.ID, p.Level))
		}
		if p.Difficulty.Rank() < 0 {
			errs = append(errs, fmt.Sprintf("path %q: unknown difficulty %q", p.ID, p.Difficulty))
		}
		if p.DurationMinutes < 0 {
			errs = append(errs, fmt.Sprintf("path %q: duration must be >= 0, got %d", p.ID, p.DurationMinutes))
		}
		for _, m := range p.Modules {
			for _, prereqID := range m.Prerequisites {
				if !moduleIDs[prereqID] {
					errs = append(errs, fmt.Sprintf("module %q references nonexistent prerequisite %q", m.ID, prereqID))
				}
			}
			if m.Difficulty.Rank() < 0 {
				errs = append(errs, fmt.Sprintf("module %q: unknown difficulty %q", m.ID, m.Difficulty))
			}
			if !m.Type.valid() {
				errs = append(errs, fmt.Sprintf("module %q: unknown type %q", m.ID, m.Type))
			}
			if m.EstimatedMinutes < 0 {
				errs = append(errs, fmt.Sprintf("module %q: estimated minutes must be >= 0, got %d", m.ID, m.EstimatedMinutes))
			}
		}
	}

	// Check for cycles among paths and among modules
	pathList := make([]string, 0, len(paths))
	pathPrereqs := make(map[string][]string, len(paths))
	var moduleList []string
	modulePrereqs := make(map[string][]string)
	for _, p := range paths {
		pathList = append(pathList, p.ID)
		pathPrereqs[p.ID] = p.Prerequisites
		for _, m := range p.Modules {
			moduleList = append(moduleList, m.ID)
			modulePrereqs[m.ID] = m.Prerequisites
		}
	}

	if _, cyclic := topoSort(pathList, func(id string) []string { return pathPrereqs[id] }); len(cyclic) > 0 {
		errs = append(errs, fmt.Sprintf("cycle detected involving paths: %s", strings.Join(cyclic, ", ")))
	}
	if _, cyclic := topoSort(moduleList, func(id string) []string { return modulePrereqs[id] }); len(cyclic) > 0 {
		errs = append(errs, fmt.Sprintf("cycle detected involving modules: %s", strings.Join(cyclic, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
