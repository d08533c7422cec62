package convert

import (
	"testing"

	"github.com/dephell-go/dephell/resolve"
)

func TestPipfileConverterLoadsBareAndTableEntries(t *testing.T) {
	c := &PipfileConverter{}
	text := `
[packages]
requests = "*"
click = ">=7.0"
flask = {version = ">=2.0", extras = ["async"], markers = "python_version >= '3.8'"}

[dev-packages]
pytest = ">=7.0"
`
	root, err := c.Loads(text)
	if err != nil {
		t.Fatalf("Loads: %v", err)
	}
	if len(root.Direct) != 3 {
		t.Fatalf("expected 3 main packages, got %d: %+v", len(root.Direct), root.Direct)
	}
	if len(root.DevDirect) != 1 || root.DevDirect[0].Name != "pytest" {
		t.Fatalf("expected pytest under dev-packages, got %+v", root.DevDirect)
	}

	var flask *resolve.Dependency
	for _, d := range root.Direct {
		if d.Name == "flask" {
			flask = d
		}
	}
	if flask == nil {
		t.Fatal("expected a flask entry")
	}
	if len(flask.Extras) != 1 || flask.Extras[0] != "async" {
		t.Errorf("expected flask's extras to be parsed, got %v", flask.Extras)
	}
	if flask.Marker == "" {
		t.Error("expected flask's markers table key to populate Marker")
	}
}

func TestPipfileConverterLoadsVCSAndPathSources(t *testing.T) {
	c := &PipfileConverter{}
	text := `
[packages]
gitpkg = {git = "https://example.com/gitpkg.git", ref = "main"}
localpkg = {path = "./vendor/localpkg", editable = true}
`
	root, err := c.Loads(text)
	if err != nil {
		t.Fatalf("Loads: %v", err)
	}
	var gitDep, localDep *resolve.Dependency
	for _, d := range root.Direct {
		switch d.Name {
		case "gitpkg":
			gitDep = d
		case "localpkg":
			localDep = d
		}
	}
	if gitDep == nil || gitDep.Source == nil || gitDep.Source.Kind != resolve.SourceVCS || gitDep.Source.Ref != "main" {
		t.Errorf("expected gitpkg to carry a VCS source with ref main, got %+v", gitDep)
	}
	if localDep == nil || localDep.Source == nil || localDep.Source.Kind != resolve.SourceLocalPath {
		t.Errorf("expected localpkg to carry a local path source, got %+v", localDep)
	}
}

func TestPipfileConverterRejectsInvalidEntryShape(t *testing.T) {
	c := &PipfileConverter{}
	text := `
[packages]
broken = true
`
	if _, err := c.Loads(text); err == nil {
		t.Fatal("expected an error for a non-string, non-table package entry")
	}
}

func TestPipfileConverterDumpsRoundTrip(t *testing.T) {
	c := &PipfileConverter{}
	version, _ := resolve.ParseVersion("2.0.0")
	reqs := []resolve.Requirement{
		{Name: "requests", Canonical: "requests", Version: version},
		{Name: "pytest", Canonical: "pytest", IsDev: true},
	}
	out, err := c.Dumps(reqs, resolve.ProjectMetadata{}, "")
	if err != nil {
		t.Fatalf("Dumps: %v", err)
	}
	reloaded, err := c.Loads(out)
	if err != nil {
		t.Fatalf("Loads(Dumps(...)): %v\n%s", err, out)
	}
	if len(reloaded.Direct) != 1 || reloaded.Direct[0].Name != "requests" {
		t.Errorf("expected requests as a main package after round-trip, got %+v", reloaded.Direct)
	}
	if len(reloaded.DevDirect) != 1 || reloaded.DevDirect[0].Name != "pytest" {
		t.Errorf("expected pytest as a dev package after round-trip, got %+v", reloaded.DevDirect)
	}
}

func TestPipfileLockConverterLoadsPinnedEntries(t *testing.T) {
	c := &PipfileLockConverter{}
	text := `
[default]
requests = {version = "==2.31.0", hashes = ["sha256:aaa", "sha256:bbb"]}

[develop]
pytest = {version = "==7.4.0"}
`
	root, err := c.Loads(text)
	if err != nil {
		t.Fatalf("Loads: %v", err)
	}
	if len(root.Direct) != 1 || root.Direct[0].Chosen.Version.String() != "2.31.0" {
		t.Fatalf("expected requests pinned at 2.31.0, got %+v", root.Direct)
	}
	if len(root.Direct[0].Chosen.Hashes) != 2 {
		t.Errorf("expected 2 hashes, got %v", root.Direct[0].Chosen.Hashes)
	}
	if len(root.DevDirect) != 1 || root.DevDirect[0].Name != "pytest" {
		t.Fatalf("expected pytest under develop, got %+v", root.DevDirect)
	}
}

func TestPipfileLockConverterDumpsRoundTrip(t *testing.T) {
	c := &PipfileLockConverter{}
	version, _ := resolve.ParseVersion("2.31.0")
	reqs := []resolve.Requirement{
		{Name: "requests", Canonical: "requests", Version: version, Hashes: []string{"sha256:aaa"}},
	}
	out, err := c.Dumps(reqs, resolve.ProjectMetadata{}, "")
	if err != nil {
		t.Fatalf("Dumps: %v", err)
	}
	reloaded, err := c.Loads(out)
	if err != nil {
		t.Fatalf("Loads(Dumps(...)): %v\n%s", err, out)
	}
	if len(reloaded.Direct) != 1 || reloaded.Direct[0].Chosen.Version.String() != "2.31.0" {
		t.Errorf("expected the pin to round-trip, got %+v", reloaded.Direct)
	}
}
