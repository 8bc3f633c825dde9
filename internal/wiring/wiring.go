// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.strata.build/strata/internal/adapters/cas"
	_ "go.strata.build/strata/internal/adapters/config"
	_ "go.strata.build/strata/internal/adapters/fs"
	_ "go.strata.build/strata/internal/adapters/logger"
	_ "go.strata.build/strata/internal/adapters/remotecache"
	_ "go.strata.build/strata/internal/adapters/shell"
	_ "go.strata.build/strata/internal/adapters/telemetry"
	_ "go.strata.build/strata/internal/adapters/telemetry/progrock"
	_ "go.strata.build/strata/internal/adapters/toolchain"
	_ "go.strata.build/strata/internal/adapters/toolchain/nix"
	_ "go.strata.build/strata/internal/adapters/vcs"
	_ "go.strata.build/strata/internal/adapters/watcher"
)
