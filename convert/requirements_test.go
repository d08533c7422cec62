package convert

import (
	"strings"
	"testing"

	"github.com/dephell-go/dephell/resolve"
)

func TestRequirementsConverterLoadsBasicLines(t *testing.T) {
	c := &RequirementsConverter{ProjectName: "widget"}
	text := "# a comment\n\nrequests>=2.0,<3.0\nflask[async]>=2.0; python_version >= \"3.8\"\n-e git+https://example.com/thing.git\n"

	root, err := c.Loads(text)
	if err != nil {
		t.Fatalf("Loads: %v", err)
	}
	if len(root.Direct) != 3 {
		t.Fatalf("expected 3 direct dependencies, got %d", len(root.Direct))
	}
	if root.Direct[0].Name != "requests" {
		t.Errorf("first dependency = %q, want requests", root.Direct[0].Name)
	}
	if root.Direct[1].Marker == "" {
		t.Error("expected flask's marker clause to be carried over")
	}
	if root.Direct[2].Source == nil || !root.Direct[2].Source.Editable {
		t.Error("expected the -e line to produce an editable local source")
	}
}

func TestRequirementsConverterIgnoresIncludesAndComments(t *testing.T) {
	c := &RequirementsConverter{}
	text := "-r base.txt\n--requirement other.txt\n# nothing else here\n"
	root, err := c.Loads(text)
	if err != nil {
		t.Fatalf("Loads: %v", err)
	}
	if len(root.Direct) != 0 {
		t.Errorf("expected includes/comments to produce no direct dependencies, got %d", len(root.Direct))
	}
}

func TestRequirementsConverterDumpsSortsAndSkipsDev(t *testing.T) {
	c := &RequirementsConverter{}
	reqA, _ := resolve.ParseRange(">=1.0")
	reqs := []resolve.Requirement{
		{Name: "zeta", Canonical: "zeta", Range: reqA},
		{Name: "alpha", Canonical: "alpha", Range: reqA},
		{Name: "dev-only", Canonical: "dev-only", Range: reqA, IsDev: true},
	}
	out, err := c.Dumps(reqs, resolve.ProjectMetadata{}, "")
	if err != nil {
		t.Fatalf("Dumps: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected the dev dependency to be skipped, got lines: %v", lines)
	}
	if !strings.HasPrefix(lines[0], "alpha") || !strings.HasPrefix(lines[1], "zeta") {
		t.Errorf("expected alphabetical ordering, got %v", lines)
	}
}

func TestLockedRequirementsConverterRoundTrip(t *testing.T) {
	c := &LockedRequirementsConverter{}
	text := "requests==2.31.0 --hash=sha256:deadbeef\nflask==2.0.0\n"

	root, err := c.Loads(text)
	if err != nil {
		t.Fatalf("Loads: %v", err)
	}
	if len(root.Direct) != 2 {
		t.Fatalf("expected 2 locked dependencies, got %d", len(root.Direct))
	}
	if !root.Direct[0].HasChosen() {
		t.Fatal("expected a locked requirement to have a chosen release")
	}
	if got := root.Direct[0].Chosen.Version.String(); got != "2.31.0" {
		t.Errorf("Chosen.Version = %q, want 2.31.0", got)
	}
	if len(root.Direct[0].Chosen.Hashes) != 1 {
		t.Errorf("expected the --hash option to be captured, got %v", root.Direct[0].Chosen.Hashes)
	}

	version, _ := resolve.ParseVersion("2.31.0")
	reqs := []resolve.Requirement{{Name: "requests", Version: version, Hashes: []string{"sha256:deadbeef"}}}
	out, err := c.Dumps(reqs, resolve.ProjectMetadata{}, "")
	if err != nil {
		t.Fatalf("Dumps: %v", err)
	}
	if !strings.Contains(out, "requests==2.31.0") || !strings.Contains(out, "--hash=sha256:deadbeef") {
		t.Errorf("unexpected Dumps output: %q", out)
	}
}

func TestLockedRequirementsConverterRejectsUnpinnedRange(t *testing.T) {
	c := &LockedRequirementsConverter{}
	if _, err := c.Loads("requests>=2.0\n"); err == nil {
		t.Fatal("expected an error for a locked requirement that isn't an exact pin")
	}
}
