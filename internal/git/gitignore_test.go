package git

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestIgnoreEntries(t *testing.T) {
	base := []string{".netgraphx.yaml", ".env", "neo4j-data/"}
	tests := []struct {
		outputDir string
		want      []string
	}{
		{"out", append(base, "out/")},
		{"./out/", append(base, "out/")},
		{"./out", append(base, "out/")},
		{"out//runs/", append(base, "out/runs/")},
		{"./a/../out", append(base, "out/")},
		{".", base},
		{"./", base},
		{"", base},
		{"../shared/out", base},
	}

	for _, tt := range tests {
		got := IgnoreEntries(".netgraphx.yaml", tt.outputDir)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("IgnoreEntries(%q) = %v, want %v", tt.outputDir, got, tt.want)
		}
	}
}

func TestUpdateGitignore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(path, []byte("bin/\n.env"), 0644); err != nil {
		t.Fatal(err)
	}

	added, err := UpdateGitignore(dir, []string{".netgraphx.yaml", ".env", "out/"})
	if err != nil {
		t.Fatalf("UpdateGitignore() returned an error: %v", err)
	}
	if want := []string{".netgraphx.yaml", "out/"}; !reflect.DeepEqual(added, want) {
		t.Errorf("added = %v, want %v", added, want)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "bin/\n.env\n.netgraphx.yaml\nout/\n"; string(content) != want {
		t.Errorf(".gitignore = %q, want %q", content, want)
	}

	added, err = UpdateGitignore(dir, []string{".netgraphx.yaml", ".env"})
	if err != nil {
		t.Fatalf("UpdateGitignore() returned an error: %v", err)
	}
	if len(added) != 0 {
		t.Errorf("expected no new entries, got %v", added)
	}
}

func TestUpdateGitignoreCreatesFile(t *testing.T) {
	dir := t.TempDir()

	added, err := UpdateGitignore(dir, []string{"neo4j-data/"})
	if err != nil {
		t.Fatalf("UpdateGitignore() returned an error: %v", err)
	}
	if len(added) != 1 {
		t.Errorf("expected one entry, got %v", added)
	}

	content, _ := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if string(content) != "neo4j-data/\n" {
		t.Errorf(".gitignore = %q", content)
	}
}
