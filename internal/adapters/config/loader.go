// Package config implements the configuration loader (ambient, spec.md §6
// treats its schema as out of scope): it reads a workspace-root strata.yaml
// naming project glob patterns, and a project-level strata.yaml per match
// naming that project's tasks, producing a *workspace.Graph. Mirrors the
// teacher's Bobfile/Workfile DTO split (standalone vs. workspace mode),
// generalized to moon's project-graph-plus-tasks shape.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"go.trai.ch/zerr"

	"go.strata.build/strata/internal/core/domain"
	"go.strata.build/strata/internal/core/ports"
	"go.strata.build/strata/internal/core/workspace"
)

// FileName is the name both workspace-root and project-level config files
// use; which DTO a file is parsed as is decided by which keys it sets.
const FileName = "strata.yaml"

// Loader implements ports.ConfigLoader over strata.yaml files.
type Loader struct {
	Logger ports.Logger
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load walks up from cwd to find the workspace-root strata.yaml, expands its
// project globs, parses each project's own strata.yaml, and assembles a
// workspace.Graph.
func (l *Loader) Load(cwd string) (*workspace.Graph, error) {
	rootConfigPath, err := l.findWorkspaceRoot(cwd)
	if err != nil {
		return nil, err
	}

	var wc WorkspaceConfig
	if err := readYAML(rootConfigPath, &wc); err != nil {
		return nil, err
	}

	root := resolveRoot(rootConfigPath, wc.Root)

	projectDirs, err := l.expandProjectGlobs(root, wc.Projects)
	if err != nil {
		return nil, err
	}

	projects := make([]*domain.Project, 0, len(projectDirs))
	for _, dir := range projectDirs {
		project, err := l.loadProject(root, dir)
		if err != nil {
			return nil, err
		}
		if project != nil {
			projects = append(projects, project)
		}
	}

	return workspace.New(root, projects)
}

func (l *Loader) findWorkspaceRoot(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, FileName)
		if data, err := os.ReadFile(candidate); err == nil { //nolint:gosec // path built from a fixed filename walked up from cwd
			var probe WorkspaceConfig
			if yaml.Unmarshal(data, &probe) == nil && len(probe.Projects) > 0 {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
		}
		dir = parent
	}
}

func (l *Loader) expandProjectGlobs(root string, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "expand project glob"), "pattern", pattern)
		}
		for _, m := range matches {
			info, statErr := os.Stat(m)
			if statErr != nil || !info.IsDir() {
				continue
			}
			seen[m] = struct{}{}
		}
	}

	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	slices.Sort(dirs)
	return dirs, nil
}

func (l *Loader) loadProject(workspaceRoot, projectDir string) (*domain.Project, error) {
	configPath := filepath.Join(projectDir, FileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		rel, _ := filepath.Rel(workspaceRoot, projectDir)
		l.Logger.Warn("project missing strata.yaml, skipping", "project", rel)
		return nil, nil
	}

	var pc ProjectConfig
	if err := readYAML(configPath, &pc); err != nil {
		return nil, err
	}
	if pc.Project == "" {
		rel, _ := filepath.Rel(workspaceRoot, projectDir)
		return nil, zerr.With(domain.ErrInvalidConfig, "directory", rel)
	}

	project := &domain.Project{
		ID:       domain.Id(pc.Project),
		Root:     projectDir,
		Language: pc.Language,
		Aliases:  pc.Aliases,
		Tasks:    make(map[domain.Id]*domain.Task, len(pc.Tasks)),
	}
	if rel, err := filepath.Rel(workspaceRoot, projectDir); err == nil {
		project.Source = rel
	}

	for _, tc := range pc.Toolchains {
		project.Toolchains = append(project.Toolchains, domain.Id(tc))
	}
	for _, dep := range pc.Dependencies {
		scope := domain.DependencyProduction
		if dep.Scope != "" {
			scope = domain.DependencyScope(dep.Scope)
		}
		project.Dependencies = append(project.Dependencies, domain.ProjectDependency{
			Project: domain.Id(dep.Project),
			Scope:   scope,
		})
	}

	for name, dto := range pc.Tasks {
		taskID := domain.Id(name)
		project.Tasks[taskID] = buildTask(project.ID, taskID, dto)
	}

	return project, nil
}

func buildTask(project, taskID domain.Id, dto *TaskDTO) *domain.Task {
	options := domain.DefaultTaskOptions()
	if dto.Cache != nil {
		options.Cache = *dto.Cache
	}
	if dto.ExpectOutputs != nil {
		options.ExpectOutputs = *dto.ExpectOutputs
	}
	options.Persistent = dto.Persistent
	options.Interactive = dto.Interactive
	options.RunInCI = dto.RunInCI
	options.RunFromWorkspaceRoot = dto.RunFromWorkspaceRoot
	options.Shell = dto.Shell
	options.RetryCount = dto.RetryCount
	options.AllowFailure = dto.AllowFailure
	options.Mutex = dto.Mutex
	if dto.TimeoutSeconds > 0 {
		options.Timeout = time.Duration(dto.TimeoutSeconds) * time.Second
	}
	if dto.OutputStyle != "" {
		options.OutputStyle = domain.OutputStyle(dto.OutputStyle)
	}

	deps := make([]domain.TaskDependency, 0, len(dto.DependsOn))
	for _, d := range dto.DependsOn {
		target, err := domain.ParseTarget(d)
		if err != nil {
			target = domain.NewQualifiedTarget(project, domain.Id(d))
		}
		deps = append(deps, domain.TaskDependency{Target: target})
	}

	toolchains := make([]domain.Id, 0, len(dto.Toolchains))
	for _, tc := range dto.Toolchains {
		toolchains = append(toolchains, domain.Id(tc))
	}

	return &domain.Task{
		ID:           taskID,
		Target:       domain.NewQualifiedTarget(project, taskID),
		Command:      dto.Command,
		Args:         dto.Args,
		Dependencies: deps,
		Env:          dto.Env,
		Inputs:       dto.Inputs,
		InputEnvVars: dto.InputEnvVars,
		Outputs:      dto.Outputs,
		Toolchains:   toolchains,
		Options:      options,
	}
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

func readYAML[T any](path string, out *T) error {
	data, err := os.ReadFile(path) //nolint:gosec // path built from a fixed filename under the workspace tree
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigNotFound.Error()), "path", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "path", path)
	}
	return nil
}
