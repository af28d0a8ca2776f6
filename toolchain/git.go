package toolchain

import (
	"fmt"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/vesper-os/forge/log"
)

// clone fetches a git-sourced package into `dest`. The URL may carry a
// `git+` scheme prefix and a `#ref` suffix pinning a revision; the pin is
// what guarantees the integrity of git packages, so they skip detached
// signature verification.
func (b *Bootstrapper) clone(url, dest string) error {
	url = strings.TrimPrefix(url, "git+")
	ref := ""
	if hash := strings.Index(url, "#"); hash != -1 {
		url, ref = url[:hash], url[hash+1:]
	}

	log.Log("Cloning '%s'.\n", url)
	log.Spinner.Start()
	defer log.Spinner.Stop()

	repo, err := git.PlainClone(dest, false, &git.CloneOptions{URL: url})
	if err != nil {
		return fmt.Errorf("failed to clone '%s': %w", url, err)
	}
	if ref == "" {
		return nil
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return fmt.Errorf("failed to resolve revision '%s': %w", ref, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return fmt.Errorf("failed to check out '%s': %w", ref, err)
	}
	return nil
}
