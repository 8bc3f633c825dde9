package domain_test

import (
	"testing"

	"go.strata.build/strata/internal/core/domain"
)

func TestDefaultTaskOptions(t *testing.T) {
	opts := domain.DefaultTaskOptions()
	if !opts.Cache {
		t.Error("expected Cache to default to true")
	}
	if !opts.ExpectOutputs {
		t.Error("expected ExpectOutputs to default to true")
	}
	if opts.OutputStyle != domain.OutputStyleBuffer {
		t.Errorf("expected OutputStyleBuffer, got %q", opts.OutputStyle)
	}
	if opts.Persistent || opts.Interactive || opts.AllowFailure {
		t.Error("expected all other toggles to default to false")
	}
}

func TestTask_RequiresToolchainSetup(t *testing.T) {
	withToolchain := domain.Task{Toolchains: []domain.Id{"go"}}
	if !withToolchain.RequiresToolchainSetup() {
		t.Error("expected task with a toolchain to require setup")
	}

	without := domain.Task{}
	if without.RequiresToolchainSetup() {
		t.Error("expected task without a toolchain to not require setup")
	}
}
