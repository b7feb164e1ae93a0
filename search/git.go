package search

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FindGitRoot finds the git repository root directory starting from the given path
func FindGitRoot(startPath string) (string, bool) {
	path := startPath
	for {
		// .git is a file in worktrees and submodules
		if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
			return path, true
		}

		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		path = parent
	}

	return "", false
}

// CurrentRepository resolves the GitHub owner/name of the repository
// containing dir, using its origin remote.
func CurrentRepository(dir string) (string, error) {
	root, ok := FindGitRoot(dir)
	if !ok {
		return "", fmt.Errorf("%s is not inside a git repository", dir)
	}

	cmd := exec.Command("git", "-C", root, "remote", "get-url", "origin")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("read origin remote of %s: %w", root, err)
	}

	remote := strings.TrimSpace(string(output))
	repo, ok := ParseGitHubRemote(remote)
	if !ok {
		return "", fmt.Errorf("origin remote %q is not a GitHub repository", remote)
	}
	return repo, nil
}

// ParseGitHubRemote extracts owner/name from a GitHub remote URL.
// Supported forms:
//
//	https://github.com/owner/name(.git)
//	ssh://git@github.com/owner/name(.git)
//	git@github.com:owner/name(.git)
func ParseGitHubRemote(remote string) (string, bool) {
	rest := ""
	switch {
	case strings.HasPrefix(remote, "git@github.com:"):
		rest = strings.TrimPrefix(remote, "git@github.com:")
	default:
		for _, prefix := range []string{"https://", "http://", "ssh://", "git://"} {
			if after, ok := strings.CutPrefix(remote, prefix); ok {
				rest = after
				break
			}
		}
		if rest == "" {
			return "", false
		}
		// drop user info
		if at := strings.Index(rest, "@"); at >= 0 && at < strings.Index(rest+"/", "/") {
			rest = rest[at+1:]
		}
		host, path, ok := strings.Cut(rest, "/")
		if !ok || !strings.EqualFold(strings.TrimSuffix(host, ":443"), "github.com") {
			return "", false
		}
		rest = path
	}

	rest = strings.TrimSuffix(strings.TrimSuffix(rest, "/"), ".git")
	owner, name, ok := strings.Cut(rest, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return owner + "/" + name, true
}
