package git

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
)

// IsRepository checks if dir is inside a Git work tree.
func IsRepository(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// IgnoreEntries lists the local files netgraphx creates that must not be
// committed: the config with the database password, the API key file, the
// Neo4j volume and the run outputs.
func IgnoreEntries(configFile, outputDir string) []string {
	entries := []string{configFile, ".env", "neo4j-data/"}
	dir := strings.Trim(path.Clean(filepath.ToSlash(outputDir)), "/")
	// Directories outside the work tree cannot be ignored from it.
	if dir == "" || dir == "." || dir == ".." || strings.HasPrefix(dir, "../") {
		return entries
	}
	return append(entries, dir+"/")
}

// UpdateGitignore appends the missing entries to dir/.gitignore and returns
// the ones it added.
func UpdateGitignore(dir string, entries []string) ([]string, error) {
	gitignorePath := filepath.Join(dir, ".gitignore")
	var entriesAdded []string

	file, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open or create .gitignore: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	existingEntries := make(map[string]bool)
	lastLineTerminated := true
	for scanner.Scan() {
		existingEntries[strings.TrimSpace(scanner.Text())] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading .gitignore: %w", err)
	}
	if info, err := file.Stat(); err == nil && info.Size() > 0 {
		last := make([]byte, 1)
		if _, err := file.ReadAt(last, info.Size()-1); err == nil {
			lastLineTerminated = last[0] == '\n'
		}
	}

	var sb strings.Builder
	if !lastLineTerminated {
		sb.WriteString("\n")
	}
	for _, entry := range entries {
		if !existingEntries[entry] {
			existingEntries[entry] = true
			sb.WriteString(entry + "\n")
			entriesAdded = append(entriesAdded, entry)
		}
	}

	if len(entriesAdded) > 0 {
		if _, err := file.WriteString(sb.String()); err != nil {
			return nil, fmt.Errorf("failed to write to .gitignore: %w", err)
		}
	}

	return entriesAdded, nil
}
