package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.strata.build/strata/internal/adapters/config"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoader_Load_WorkspaceWithTwoProjects(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "strata.yaml"), `
projects:
  - apps/*
`)
	writeFile(t, filepath.Join(root, "apps", "api", "strata.yaml"), `
project: api
language: go
tasks:
  build:
    command: go
    args: ["build", "./..."]
    outputs: ["dist"]
  test:
    command: go
    args: ["test", "./..."]
    deps: ["build"]
`)
	writeFile(t, filepath.Join(root, "apps", "web", "strata.yaml"), `
project: web
language: node
dependencies:
  - project: api
tasks:
  build:
    command: npm
    args: ["run", "build"]
`)

	loader := config.NewLoader(nopLogger{})
	graph, err := loader.Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if graph.ProjectCount() != 2 {
		t.Fatalf("ProjectCount() = %d, want 2", graph.ProjectCount())
	}

	api, err := graph.Project("api")
	if err != nil {
		t.Fatalf("Project(api): %v", err)
	}
	if _, ok := api.Tasks["build"]; !ok {
		t.Error("expected api to declare a build task")
	}

	deps := graph.Dependencies("web")
	if len(deps) != 1 || deps[0] != "api" {
		t.Errorf("Dependencies(web) = %v, want [api]", deps)
	}
}

func TestLoader_Load_MissingWorkspaceConfig(t *testing.T) {
	loader := config.NewLoader(nopLogger{})
	if _, err := loader.Load(t.TempDir()); err == nil {
		t.Fatal("expected an error when no strata.yaml is found")
	}
}

func TestLoader_Load_SkipsProjectDirWithoutConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "strata.yaml"), "projects:\n  - apps/*\n")
	if err := os.MkdirAll(filepath.Join(root, "apps", "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "apps", "api", "strata.yaml"), "project: api\n")

	loader := config.NewLoader(nopLogger{})
	graph, err := loader.Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if graph.ProjectCount() != 1 {
		t.Fatalf("ProjectCount() = %d, want 1", graph.ProjectCount())
	}
}
