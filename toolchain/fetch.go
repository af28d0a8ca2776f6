package toolchain

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sys/unix"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/util"
)

// fetchArchive downloads a package archive into the repos cache and returns
// its local path. An archive already in the cache is not downloaded again;
// its signature is still verified by the caller.
func (b *Bootstrapper) fetchArchive(url string) (string, error) {
	if err := util.MkdirAll(b.ws.ReposDir()); err != nil {
		return "", err
	}
	path := filepath.Join(b.ws.ReposDir(), filepath.Base(url))
	if util.FileExists(path) {
		log.Debug("Archive '%s' is already cached.\n", path)
		return path, nil
	}
	if err := download(url, path); err != nil {
		return "", err
	}
	return path, nil
}

// download fetches `url` into `dest`. The body is written to a staging file
// and only renamed into place once complete, so an interrupted download
// never leaves a corrupt file at the final path. An exclusive lock guards
// against a concurrent forge process fetching the same file.
func download(url, dest string) error {
	log.Log("Downloading '%s'.\n", url)

	lock, err := os.OpenFile(dest+".lock", os.O_CREATE|os.O_RDWR, util.FileMode)
	if err != nil {
		return fmt.Errorf("failed to create download lock: %w", err)
	}
	defer lock.Close()
	defer os.Remove(lock.Name())
	if err := unix.Flock(int(lock.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to lock download: %w", err)
	}
	defer unix.Flock(int(lock.Fd()), unix.LOCK_UN)

	// Another process may have finished the download while we waited.
	if util.FileExists(dest) {
		return nil
	}

	response, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download '%s': %w", url, err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download '%s': %s", url, response.Status)
	}

	staging, err := renameio.TempFile("", dest)
	if err != nil {
		return fmt.Errorf("failed to stage download: %w", err)
	}
	defer staging.Cleanup()

	bar := progressbar.DefaultBytes(response.ContentLength, filepath.Base(dest))
	if _, err := io.Copy(io.MultiWriter(staging, bar), response.Body); err != nil {
		return fmt.Errorf("failed to download '%s': %w", url, err)
	}
	if err := staging.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to commit download: %w", err)
	}
	return nil
}
