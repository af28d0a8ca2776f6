package toolchain

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vesper-os/forge/config"
	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/runner"
	"github.com/vesper-os/forge/util"
)

// verify checks the detached signature of a downloaded archive. A package
// URL without a matching signature rule cannot be verified and fails the
// bootstrap; there is no way to skip verification.
func (b *Bootstrapper) verify(url, archive string) error {
	signature, err := b.ws.Manifest().SignatureFor(url)
	if err != nil {
		return err
	}

	signaturePath := archive + signature.Extension
	if !util.FileExists(signaturePath) {
		if err := download(url+signature.Extension, signaturePath); err != nil {
			return err
		}
	}

	// Verification runs in an isolated home directory so the user's own
	// keyring is never consulted or modified.
	home := b.ws.GpgDir()
	if err := util.MkdirAll(home); err != nil {
		return err
	}
	if err := os.Chmod(home, 0700); err != nil {
		return fmt.Errorf("failed to restrict '%s': %w", home, err)
	}

	if signature.PublicKey != "" {
		receive := runner.Command{
			Name: "gpg",
			Args: []string{
				"--homedir", home,
				"--keyserver", config.Get().Keyserver,
				"--recv-keys", signature.PublicKey,
			},
		}
		if err := runner.Run(receive); err != nil {
			return fmt.Errorf("failed to receive public key '%s': %w", signature.PublicKey, err)
		}
	}

	args := []string{"--homedir", home}
	if signature.KeyRing != "" {
		ring := filepath.Join(home, filepath.Base(signature.KeyRing))
		if !util.FileExists(ring) {
			if err := download(signature.KeyRing, ring); err != nil {
				return err
			}
		}
		args = append(args, "--no-default-keyring", "--keyring", ring)
	}
	args = append(args, "--verify", signaturePath, archive)

	log.Log("Verifying '%s'.\n", archive)
	if err := runner.Run(runner.Command{Name: "gpg", Args: args}); err != nil {
		return fmt.Errorf("signature verification of '%s' failed: %w", archive, err)
	}
	return nil
}
