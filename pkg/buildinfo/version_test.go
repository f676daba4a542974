package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplateIncludesVersion(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	if !strings.Contains(Template(), "v1.2.3") {
		t.Errorf("Template() = %q, want version included", Template())
	}
	if !strings.Contains(String(), "version: v1.2.3") {
		t.Errorf("String() = %q, want version line", String())
	}
	if UserAgent() != "overlay/v1.2.3" {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
