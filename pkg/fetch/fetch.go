// Package fetch materializes package archives in the Nix store.
//
// Archives are fetched by evaluating builtins.fetchurl or builtins.fetchGit
// with nix-instantiate, so downloads land in the store with the same hashes
// the generated overlay later uses. Store paths are cached between runs and
// reused while they still exist.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autorider/pkg/cache"
	"github.com/matzehuels/autorider/pkg/errors"
	"github.com/matzehuels/autorider/pkg/nixcmd"
)

const (
	urlExpr = "{ url, sha256 ? null }@args: builtins.fetchurl args"
	gitExpr = "{ url }: builtins.fetchGit url"
)

// Nix fetches archives through nix-instantiate.
type Nix struct {
	// Cache stores fetched store paths. Nil disables caching.
	Cache  cache.Cache
	Logger *log.Logger
	// Command defaults to "nix-instantiate".
	Command string
	// Run defaults to [nixcmd.Exec].
	Run nixcmd.Runner
}

// NewNix creates a fetcher.
func NewNix(c cache.Cache, logger *log.Logger) *Nix {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Nix{Cache: c, Logger: logger}
}

// ParseHash extracts the hex digest from a lockfile hash of the form
// "sha256:<hex>". An empty hash is allowed and yields an empty digest.
func ParseHash(hash string) (string, error) {
	if hash == "" {
		return "", nil
	}
	algo, digest, ok := strings.Cut(hash, ":")
	if !ok || algo != "sha256" || digest == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "unsupported hash %q: only sha256 is supported", hash)
	}
	return digest, nil
}

// URLArgs returns the nix-instantiate arguments fetching rawURL.
func URLArgs(rawURL, sha256 string) []string {
	args := []string{"--eval", "--json", "--expr", urlExpr, "--argstr", "url", rawURL}
	if sha256 != "" {
		args = append(args, "--argstr", "sha256", sha256)
	}
	return args
}

// GitArgs returns the nix-instantiate arguments fetching a git checkout.
func GitArgs(rawURL string) []string {
	return []string{"--eval", "--json", "--expr", gitExpr, "--argstr", "url", rawURL}
}

// FetchURL downloads rawURL and returns its store path.
func (n *Nix) FetchURL(ctx context.Context, rawURL, hash string) (string, error) {
	digest, err := ParseHash(hash)
	if err != nil {
		return "", err
	}
	if err := errors.ValidateURL(rawURL); err != nil {
		return "", err
	}
	return n.fetch(ctx, cache.Key("fetch", "url", rawURL, digest), rawURL, URLArgs(rawURL, digest))
}

// FetchGit checks out rawURL and returns the store path of the checkout,
// descending into any subdirectory named by the URL's query.
func (n *Nix) FetchGit(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid git url %q", rawURL)
	}
	root, err := n.fetch(ctx, cache.Key("fetch", "git", rawURL), rawURL, GitArgs(rawURL))
	if err != nil {
		return "", err
	}
	parts := append([]string{root}, u.Query()["subdirectory"]...)
	return filepath.Join(parts...), nil
}

func (n *Nix) fetch(ctx context.Context, key, rawURL string, args []string) (string, error) {
	if n.Cache != nil {
		var cached string
		hit, err := cache.GetJSON(ctx, n.Cache, "fetch", key, &cached)
		if err == nil && hit {
			if _, err := os.Stat(cached); err == nil {
				n.logger().Debug("fetch cache hit", "url", rawURL, "path", cached)
				return cached, nil
			}
			n.logger().Debug("cached store path vanished", "path", cached)
		}
	}

	command := n.Command
	if command == "" {
		command = "nix-instantiate"
	}
	run := n.Run
	if run == nil {
		run = nixcmd.Exec
	}

	n.logger().Info("fetching", "url", rawURL)
	out, err := run(ctx, command, args...)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	path, err := ParseOutput(out)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	if n.Cache != nil {
		if err := cache.SetJSON(ctx, n.Cache, "fetch", key, path, 0); err != nil {
			n.logger().Warn("failed to cache store path", "url", rawURL, "error", err)
		}
	}
	return path, nil
}

// ParseOutput reads the store path printed by nix-instantiate, either as a
// JSON string or as a single raw line.
func ParseOutput(out []byte) (string, error) {
	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", errors.New(errors.ErrCodeSubprocess, "empty output")
	}
	if strings.HasPrefix(text, `"`) {
		var path string
		if err := json.Unmarshal([]byte(text), &path); err != nil {
			return "", errors.Wrap(errors.ErrCodeSubprocess, err, "decode output")
		}
		return path, nil
	}
	if strings.ContainsAny(text, "\n{[") {
		return "", errors.New(errors.ErrCodeSubprocess, "expected a store path, got %q", text)
	}
	return text, nil
}

func (n *Nix) logger() *log.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return log.Default()
}
