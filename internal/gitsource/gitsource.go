// Package gitsource keeps local clones of git-hosted card sources.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Sync clones a git repository if it doesn't exist at the given path,
// or pulls the latest changes if it does.
func Sync(ctx context.Context, repoURL, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		slog.Info("cloning repository", "url", repoURL, "path", localPath)
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return fmt.Errorf("failed to create parent of %s: %w", localPath, err)
		}
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:   repoURL,
			Depth: 1,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}
		slog.Info("clone successful", "path", localPath)

	case err == nil:
		slog.Info("pulling latest changes", "path", localPath)
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}
		err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
		slog.Debug("pull finished", "path", localPath, "up_to_date", err != nil)

	default:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}
	return nil
}

// IsRemote reports whether location looks like a git URL rather than a local directory.
func IsRemote(location string) bool {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "https" || u.Scheme == "http" || u.Scheme == "ssh" || u.Scheme == "git") {
		return true
	}
	return scpLike(location) != nil
}

// LocalPath maps a repository URL to its clone directory under baseDir,
// e.g. https://github.com/a/b.git -> baseDir/github.com/a/b.
func LocalPath(baseDir, repoURL string) (string, error) {
	if parts := scpLike(repoURL); parts != nil {
		return filepath.Join(baseDir, parts[0], strings.TrimSuffix(parts[1], ".git")), nil
	}

	parsedURL, err := url.Parse(repoURL)
	if err != nil || parsedURL.Host == "" {
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}
	sanitizedPath := strings.Trim(strings.TrimSuffix(parsedURL.Path, ".git"), "/")
	if sanitizedPath == "" || strings.Contains(sanitizedPath, "..") {
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}
	return filepath.Join(baseDir, parsedURL.Hostname(), sanitizedPath), nil
}

// RepoName is the last path element of a repository URL without ".git".
func RepoName(repoURL string) string {
	name := strings.TrimSuffix(strings.TrimRight(repoURL, "/"), ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// scpLike splits user@host:path into host and path, or returns nil.
func scpLike(location string) []string {
	if strings.Contains(location, "://") {
		return nil
	}
	at := strings.Index(location, "@")
	colon := strings.Index(location, ":")
	if at < 0 || colon < at {
		return nil
	}
	host, path := location[at+1:colon], location[colon+1:]
	if host == "" || path == "" || strings.Contains(path, "..") {
		return nil
	}
	return []string{host, path}
}
