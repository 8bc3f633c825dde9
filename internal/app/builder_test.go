package app_test

import (
	"testing"

	"go.strata.build/strata/internal/app"
)

func TestNewApp_WiresComponents(t *testing.T) {
	components, err := app.NewApp(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if components.App == nil {
		t.Error("expected a non-nil App")
	}
	if components.Logger == nil {
		t.Error("expected a non-nil Logger")
	}
}
