// Package workspace holds the read-only project/task graph the config
// loader produces once per run. It is the workspace-wide façade (spec C3)
// the action-graph builder and CLI query against by id, alias or target.
package workspace

import (
	"sort"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/domain"
)

// Graph is an immutable view over every project and task the config loader
// discovered, plus the workspace root they are relative to.
type Graph struct {
	root     string
	projects map[domain.Id]*domain.Project
	aliases  map[string]domain.Id
	order    []domain.Id
}

// New builds a Graph from a fully-resolved project set. The caller is
// expected to have already validated that aliases are unique; New returns
// an error if it finds a collision so a misconfigured workspace fails fast.
func New(root string, projects []*domain.Project) (*Graph, error) {
	g := &Graph{
		root:     root,
		projects: make(map[domain.Id]*domain.Project, len(projects)),
		aliases:  make(map[string]domain.Id),
	}

	for _, p := range projects {
		if _, exists := g.projects[p.ID]; exists {
			return nil, zerr.With(domain.ErrTaskAlreadyExists, "project", p.ID.String())
		}
		g.projects[p.ID] = p
		g.order = append(g.order, p.ID)

		for _, alias := range p.Aliases {
			if existing, exists := g.aliases[alias]; exists && existing != p.ID {
				return nil, zerr.With(domain.ErrAmbiguousAlias, "alias", alias)
			}
			g.aliases[alias] = p.ID
		}
	}

	return g, nil
}

// Root returns the absolute workspace root path.
func (g *Graph) Root() string {
	return g.root
}

// Project looks up a project by id or by alias.
func (g *Graph) Project(idOrAlias string) (*domain.Project, error) {
	if p, ok := g.projects[domain.Id(idOrAlias)]; ok {
		return p, nil
	}
	if id, ok := g.aliases[idOrAlias]; ok {
		return g.projects[id], nil
	}
	return nil, zerr.With(domain.ErrProjectNotFound, "project", idOrAlias)
}

// Task resolves a qualified target to its Task. The caller must have already
// expanded any unqualified scope into concrete qualified targets.
func (g *Graph) Task(target domain.Target) (*domain.Task, error) {
	if !target.IsQualified() {
		return nil, zerr.With(domain.ErrInvalidTargetScope, "target", target.String())
	}
	p, err := g.Project(target.Project.String())
	if err != nil {
		return nil, err
	}
	task, ok := p.Tasks[target.Task]
	if !ok {
		return nil, zerr.With(domain.ErrTaskNotFound, "target", target.String())
	}
	return task, nil
}

// Projects returns every project in discovery order.
func (g *Graph) Projects() []*domain.Project {
	out := make([]*domain.Project, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.projects[id])
	}
	return out
}

// ProjectsWithTask returns, in discovery order, every project that declares
// the given task id — the expansion behind a ScopeAllProjects target.
func (g *Graph) ProjectsWithTask(task domain.Id) []*domain.Project {
	var out []*domain.Project
	for _, id := range g.order {
		if _, ok := g.projects[id].Tasks[task]; ok {
			out = append(out, g.projects[id])
		}
	}
	return out
}

// Dependencies returns the ids of projects the given project depends on,
// sorted for deterministic traversal.
func (g *Graph) Dependencies(project domain.Id) []domain.Id {
	p, ok := g.projects[project]
	if !ok {
		return nil
	}
	deps := make([]domain.Id, 0, len(p.Dependencies))
	for _, d := range p.Dependencies {
		deps = append(deps, d.Project)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })
	return deps
}

// ProjectCount returns the number of projects in the graph.
func (g *Graph) ProjectCount() int {
	return len(g.projects)
}
