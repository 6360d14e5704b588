package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version "+Version) {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.Contains(String(), "commit: "+Commit) {
		t.Errorf("String() = %q", String())
	}
}

func TestCacheScope(t *testing.T) {
	saved := [2]string{Version, Commit}
	defer func() { Version, Commit = saved[0], saved[1] }()

	Version, Commit = "dev", "none"
	if got := CacheScope(); got != "dev:" {
		t.Errorf("dev CacheScope() = %q", got)
	}

	Version, Commit = "v1.2.0", "abc123"
	if got := CacheScope(); got != "v1.2.0@abc123:" {
		t.Errorf("release CacheScope() = %q", got)
	}
}
