package catalog

import (
	"slices"
	"sort"

	"github.com/pastrypath/pastrypath/internal/apperr"
)

// Catalog holds the read-only path/module catalog with precomputed indices.
// It is supplied by the caller to every resolver, scorer and aggregator call;
// the engine never mutates it.
type Catalog struct {
	paths          []Path
	pathByID       map[string]int
	moduleByID     map[string]Module
	moduleOwner    map[string]string // module id -> path id
	modulePos      map[string]int    // module id -> index within its path
	dependents     map[string][]string
	pathDependents map[string][]string
	topoPaths      []string
}

// New validates the given paths and builds the catalog indices.
func New(paths []Path) (*Catalog, error) {
	if err := validatePaths(paths); err != nil {
		return nil, err
	}

	c := &Catalog{
		paths:          slices.Clone(paths),
		pathByID:       make(map[string]int, len(paths)),
		moduleByID:     make(map[string]Module),
		moduleOwner:    make(map[string]string),
		modulePos:      make(map[string]int),
		dependents:     make(map[string][]string),
		pathDependents: make(map[string][]string),
	}

	for i, p := range c.paths {
		c.pathByID[p.ID] = i
		for j, m := range p.Modules {
			c.moduleByID[m.ID] = m
			c.moduleOwner[m.ID] = p.ID
			c.modulePos[m.ID] = j
		}
	}

	// Reverse edges.
	for _, p := range c.paths {
		for _, prereqID := range p.Prerequisites {
			c.pathDependents[prereqID] = append(c.pathDependents[prereqID], p.ID)
		}
		for _, m := range p.Modules {
			for _, prereqID := range m.Prerequisites {
				c.dependents[prereqID] = append(c.dependents[prereqID], m.ID)
			}
		}
	}
	for id := range c.dependents {
		sort.Strings(c.dependents[id])
	}
	for id := range c.pathDependents {
		sort.Strings(c.pathDependents[id])
	}

	ids := make([]string, len(c.paths))
	for i, p := range c.paths {
		ids[i] = p.ID
	}
	c.topoPaths, _ = topoSort(ids, func(id string) []string {
		return c.paths[c.pathByID[id]].Prerequisites
	})

	return c, nil
}

// Paths returns all paths in catalog order.
func (c *Catalog) Paths() []Path {
	return slices.Clone(c.paths)
}

// PathIDs returns all path ids in catalog order.
func (c *Catalog) PathIDs() []string {
	ids := make([]string, len(c.paths))
	for i, p := range c.paths {
		ids[i] = p.ID
	}
	return ids
}

// TopologicalPaths returns all paths ordered so that every path appears after
// its prerequisites.
func (c *Catalog) TopologicalPaths() []Path {
	result := make([]Path, 0, len(c.topoPaths))
	for _, id := range c.topoPaths {
		result = append(result, c.paths[c.pathByID[id]])
	}
	return result
}

// Path returns a path by id.
func (c *Catalog) Path(id string) (Path, error) {
	i, ok := c.pathByID[id]
	if !ok {
		return Path{}, apperr.NotFound("path", id)
	}
	return c.paths[i], nil
}

// Module returns a module by id, regardless of which path owns it.
func (c *Catalog) Module(id string) (Module, error) {
	m, ok := c.moduleByID[id]
	if !ok {
		return Module{}, apperr.NotFound("module", id)
	}
	return m, nil
}

// ModuleInPath returns the module and its owning path, failing if the module
// does not belong to pathID.
func (c *Catalog) ModuleInPath(pathID, moduleID string) (Path, Module, error) {
	p, err := c.Path(pathID)
	if err != nil {
		return Path{}, Module{}, err
	}
	if c.moduleOwner[moduleID] != pathID {
		return Path{}, Module{}, apperr.NotFound("module", moduleID)
	}
	return p, c.moduleByID[moduleID], nil
}

// OwnerPath returns the id of the path a module belongs to.
func (c *Catalog) OwnerPath(moduleID string) (string, bool) {
	id, ok := c.moduleOwner[moduleID]
	return id, ok
}

// Position returns the index of a module within its owning path.
func (c *Catalog) Position(moduleID string) (int, bool) {
	pos, ok := c.modulePos[moduleID]
	return pos, ok
}

// ModuleCount returns the number of modules in a path, or false if the path
// is unknown.
func (c *Catalog) ModuleCount(pathID string) (int, bool) {
	i, ok := c.pathByID[pathID]
	if !ok {
		return 0, false
	}
	return len(c.paths[i].Modules), true
}

// Dependents returns ids of modules that directly list moduleID as a prerequisite.
func (c *Catalog) Dependents(moduleID string) []string {
	return slices.Clone(c.dependents[moduleID])
}

// PathDependents returns ids of paths that directly list pathID as a prerequisite.
func (c *Catalog) PathDependents(pathID string) []string {
	return slices.Clone(c.pathDependents[pathID])
}

// topoSort orders ids so that each appears after its prerequisites (Kahn's
// algorithm). Ids involved in a cycle are returned separately.
func topoSort(ids []string, prereqs func(string) []string) (order, cyclic []string) {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	inDegree := make(map[string]int, len(ids))
	adj := make(map[string][]string)
	for _, id := range ids {
		for _, p := range prereqs(id) {
			if !known[p] {
				continue
			}
			inDegree[id]++
			adj[p] = append(adj[p], id)
		}
	}

	var queue []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dep := range adj[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) < len(ids) {
		for _, id := range ids {
			if inDegree[id] > 0 {
				cyclic = append(cyclic, id)
			}
		}
	}
	return order, cyclic
}
