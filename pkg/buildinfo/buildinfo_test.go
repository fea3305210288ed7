package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestBinaryVersionDefault(t *testing.T) {
	if BinaryVersion != "dev" {
		t.Errorf("BinaryVersion = %q, expected %q", BinaryVersion, "dev")
	}
}

func TestModuleVersionMatchesBuildInfo(t *testing.T) {
	expected := ""
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		expected = info.Main.Version
	}
	if got := ModuleVersion(); got != expected {
		t.Errorf("ModuleVersion() = %q, expected %q", got, expected)
	}
}
