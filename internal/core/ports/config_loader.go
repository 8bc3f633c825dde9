package ports

import "go.strata.build/strata/internal/core/workspace"

// ConfigLoader reads workspace and project configuration files starting
// from cwd and produces the fully-resolved workspace graph.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	Load(cwd string) (*workspace.Graph, error)
}
