package toolchain

import (
	"archive/tar"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"

	"github.com/vesper-os/forge/log"
	"github.com/vesper-os/forge/manifest"
	"github.com/vesper-os/forge/util"
)

const ledgerFileName = ".unpacked"

// unpack fetches, verifies and extracts a package and then its sub-packages,
// all into `destRoot`. A package already recorded in the unpack ledger is
// never fetched or extracted again.
func (b *Bootstrapper) unpack(pkg *manifest.Package, destRoot string) error {
	if b.ledgerContains(pkg.URL) {
		log.Debug("Package '%s' is already unpacked.\n", pkg.URL)
	} else {
		dest := filepath.Join(destRoot, pkg.Dir)
		if err := util.MkdirAll(dest); err != nil {
			return err
		}
		if isGitURL(pkg.URL) {
			if err := b.clone(pkg.URL, dest); err != nil {
				return err
			}
		} else {
			archive, err := b.fetchArchive(pkg.URL)
			if err != nil {
				return err
			}
			if err := b.verify(pkg.URL, archive); err != nil {
				return err
			}
			if err := extractArchive(archive, dest); err != nil {
				return err
			}
			if err := collapseSingleRoot(dest); err != nil {
				return err
			}
		}
		if err := b.ledgerAdd(pkg.URL); err != nil {
			return err
		}
	}

	for i := range pkg.SubPackages {
		if err := b.unpack(&pkg.SubPackages[i], destRoot); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bootstrapper) ledgerPath() string {
	return filepath.Join(b.ws.ToolsSrcDir(), ledgerFileName)
}

func (b *Bootstrapper) ledgerContains(url string) bool {
	data, err := os.ReadFile(b.ledgerPath())
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line == url {
			return true
		}
	}
	return false
}

func (b *Bootstrapper) ledgerAdd(url string) error {
	if err := util.MkdirAll(b.ws.ToolsSrcDir()); err != nil {
		return err
	}
	ledger, err := os.OpenFile(b.ledgerPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, util.FileMode)
	if err != nil {
		return fmt.Errorf("failed to open the unpack ledger: %w", err)
	}
	defer ledger.Close()
	if _, err := fmt.Fprintln(ledger, url); err != nil {
		return fmt.Errorf("failed to append to the unpack ledger: %w", err)
	}
	return nil
}

// extractArchive extracts a tar archive into `dest`. Entries whose
// normalized path is absolute or escapes the extraction root are skipped
// with a warning, never extracted.
func extractArchive(archive, dest string) error {
	log.Log("Unpacking '%s'.\n", filepath.Base(archive))

	file, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive '%s': %w", archive, err)
	}
	defer file.Close()

	var reader io.Reader
	switch {
	case strings.HasSuffix(archive, ".tar.gz") || strings.HasSuffix(archive, ".tgz"):
		gz, err := pgzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to decompress '%s': %w", archive, err)
		}
		defer gz.Close()
		reader = gz
	case strings.HasSuffix(archive, ".tar.bz2"):
		reader = bzip2.NewReader(file)
	case strings.HasSuffix(archive, ".tar.xz"):
		x, err := xz.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to decompress '%s': %w", archive, err)
		}
		reader = x
	case strings.HasSuffix(archive, ".tar.zst"):
		zst, err := zstd.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to decompress '%s': %w", archive, err)
		}
		defer zst.Close()
		reader = zst
	case strings.HasSuffix(archive, ".tar"):
		reader = file
	default:
		return fmt.Errorf("unsupported archive format: '%s'", archive)
	}

	return extractTar(tar.NewReader(reader), dest)
}

func extractTar(archive *tar.Reader, dest string) error {
	for {
		header, err := archive.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive entry: %w", err)
		}

		name := path.Clean(header.Name)
		if path.IsAbs(header.Name) || name == ".." || strings.HasPrefix(name, "../") {
			log.Warning("Skipping unsafe archive entry '%s'.\n", header.Name)
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(name))

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("failed to create directory '%s': %w", target, err)
			}
		case tar.TypeReg:
			if err := util.MkdirAll(filepath.Dir(target)); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file '%s': %w", target, err)
			}
			if _, err := io.Copy(out, archive); err != nil {
				out.Close()
				return fmt.Errorf("failed to write file '%s': %w", target, err)
			}
			out.Close()
		case tar.TypeSymlink:
			if path.IsAbs(header.Linkname) || strings.HasPrefix(path.Clean(header.Linkname), "../") {
				log.Warning("Skipping unsafe symlink entry '%s' -> '%s'.\n", header.Name, header.Linkname)
				continue
			}
			if err := util.MkdirAll(filepath.Dir(target)); err != nil {
				return err
			}
			if err := os.Symlink(header.Linkname, target); err != nil && !os.IsExist(err) {
				return fmt.Errorf("failed to create symlink '%s': %w", target, err)
			}
		case tar.TypeLink:
			linkname := path.Clean(header.Linkname)
			if path.IsAbs(header.Linkname) || linkname == ".." || strings.HasPrefix(linkname, "../") {
				log.Warning("Skipping unsafe hard link entry '%s' -> '%s'.\n", header.Name, header.Linkname)
				continue
			}
			linked := filepath.Join(dest, filepath.FromSlash(linkname))
			if err := util.MkdirAll(filepath.Dir(target)); err != nil {
				return err
			}
			if err := os.Link(linked, target); err != nil && !os.IsExist(err) {
				return fmt.Errorf("failed to create hard link '%s': %w", target, err)
			}
		case tar.TypeXHeader, tar.TypeXGlobalHeader:
			// Extended metadata entries carry no file content.
		default:
			log.Warning("Skipping archive entry '%s' of unsupported type %d.\n", header.Name, header.Typeflag)
		}
	}
}

// collapseSingleRoot flattens an archive that wraps its content in a single
// top-level directory, so `dest` itself becomes the source root. The swap
// goes through a sentinel path and finishes with renames, keeping the layout
// consistent if the process is interrupted midway.
func collapseSingleRoot(dest string) error {
	entries, err := os.ReadDir(dest)
	if err != nil {
		return err
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	sentinel := dest + ".collapse"
	if err := os.Rename(filepath.Join(dest, entries[0].Name()), sentinel); err != nil {
		return fmt.Errorf("failed to collapse archive root: %w", err)
	}
	if err := os.Remove(dest); err != nil {
		return fmt.Errorf("failed to collapse archive root: %w", err)
	}
	if err := os.Rename(sentinel, dest); err != nil {
		return fmt.Errorf("failed to collapse archive root: %w", err)
	}
	log.Debug("Collapsed single root directory of '%s'.\n", dest)
	return nil
}
