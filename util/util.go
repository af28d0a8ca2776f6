package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileMode is the default FileMode used when creating files.
const FileMode = 0664

// DirMode is the default FileMode used when creating directories.
const DirMode = 0775

// ManifestFileName is the name of the file describing the build.
const ManifestFileName = "forge.yaml"

// FileExists checks whether some file exists.
func FileExists(file string) bool {
	stat, err := os.Stat(file)
	return err == nil && !stat.IsDir()
}

// DirExists checks whether some directory exists.
func DirExists(dir string) bool {
	stat, err := os.Stat(dir)
	return err == nil && stat.IsDir()
}

// MkdirAll enforces the presence of a directory and all its parents.
func MkdirAll(dir string) error {
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}
	return nil
}

// ModTime returns the modification time of a file, or the zero time if the
// file does not exist.
func ModTime(file string) time.Time {
	stat, err := os.Stat(file)
	if err != nil {
		return time.Time{}
	}
	return stat.ModTime()
}

// Erase removes a file or directory and all its contents, except for the
// paths listed in `exceptions`. Symlinks are unlinked, directories are erased
// recursively and removed once empty, files are removed. A directory that
// still holds an excepted file afterwards is kept.
func Erase(path string, exceptions ...string) error {
	excepted := map[string]bool{}
	for _, e := range exceptions {
		excepted[filepath.Clean(e)] = true
	}
	return erase(filepath.Clean(path), excepted)
}

func erase(path string, exceptions map[string]bool) error {
	stat, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if stat.Mode()&os.ModeSymlink != 0 || !stat.IsDir() {
		if exceptions[path] {
			return nil
		}
		return os.Remove(path)
	}
	// An excepted directory still has its contents erased; the exception
	// only keeps the directory itself.
	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := erase(filepath.Join(path, entry.Name()), exceptions); err != nil {
			return err
		}
	}
	if exceptions[path] {
		return nil
	}
	entries, err = os.ReadDir(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return os.Remove(path)
	}
	return nil
}

// ListFiles returns the relative paths of all regular files below `root`,
// sorted lexicographically. A missing root yields an empty list.
func ListFiles(root string) []string {
	files := []string{}
	if !DirExists(root) {
		return files
	}
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	sort.Strings(files)
	return files
}

// CopyFile copies a single file, creating the destination directory if needed.
func CopyFile(src, dest string) error {
	if err := MkdirAll(filepath.Dir(dest)); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FileMode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
