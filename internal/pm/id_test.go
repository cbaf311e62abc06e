package pm

import "testing"

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want ID
		ok   bool
	}{
		{"app;1.0-1;noarch;openrepos-alice", ID{"app", "1.0-1", "noarch", "openrepos-alice"}, true},
		{"app;2.0;armv7hl;installed", ID{"app", "2.0", "armv7hl", "installed"}, true},
		{"app;;;", ID{"app", "", "", ""}, true},
		{";1.0;noarch;repo", ID{}, false},
		{"app;1.0;noarch", ID{}, false},
		{"app", ID{}, false},
		{"", ID{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseID(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseID(%q) = (%+v, %v), want (%+v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIDString(t *testing.T) {
	id := ID{Name: "app", Version: "1.0", Arch: "noarch", Data: "openrepos-a"}
	if got := id.String(); got != "app;1.0;noarch;openrepos-a" {
		t.Errorf("String() = %s", got)
	}

	parsed, ok := ParseID(id.String())
	if !ok || parsed != id {
		t.Errorf("ParseID(String()) = %+v, %v", parsed, ok)
	}
}

func TestIDRepo(t *testing.T) {
	tests := map[string]string{
		"openrepos-a":           "openrepos-a",
		"installed":             InstalledData,
		"installed:openrepos-a": InstalledData,
		"installedx":            "installedx",
	}
	for data, want := range tests {
		if got := (ID{Name: "x", Data: data}).Repo(); got != want {
			t.Errorf("Repo() for data %q = %q, want %q", data, got, want)
		}
	}
}
