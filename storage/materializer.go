package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrFileNotFound reports a copy whose source could not be located under any
// known root.
var ErrFileNotFound = errors.New("source file not found")

// Materializer writes, copies and deletes document files under a media root.
// Stored paths handed back (and accepted) are root-relative with forward
// slashes and a leading "/", e.g. "/students/12/vault/income_certificate/x.pdf".
type Materializer struct {
	mediaDir string
}

func NewMaterializer(mediaDir string) *Materializer {
	if mediaDir == "" {
		mediaDir = "media"
	}
	return &Materializer{mediaDir: mediaDir}
}

// MediaDir exposes the configured root for callers that serve files directly.
func (m *Materializer) MediaDir() string {
	return m.mediaDir
}

// Save streams r into destDir (media-root-relative) under filename, creating
// the directory tree as needed. An existing name gets a timestamp suffix
// instead of being overwritten.
func (m *Materializer) Save(r io.Reader, destDir, filename string) (string, error) {
	fsDir := filepath.Join(m.mediaDir, filepath.FromSlash(destDir))
	if err := os.MkdirAll(fsDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}

	filename = m.uniqueName(fsDir, filename)
	fsPath := filepath.Join(fsDir, filename)

	out, err := os.Create(fsPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(fsPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(fsPath)
		return "", fmt.Errorf("close file: %w", err)
	}

	return "/" + path.Join(destDir, filename), nil
}

// Copy materializes the file behind sourcePath (a stored DB path) into
// destDir. A hard link is attempted first so the snapshot shares disk blocks
// with the vault copy; cross-device or unsupported filesystems fall back to a
// byte copy. Returns ErrFileNotFound when no root resolves the source.
func (m *Materializer) Copy(sourcePath, destDir string) (string, error) {
	srcFS, ok := m.resolveExisting(sourcePath)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, sourcePath)
	}

	fsDir := filepath.Join(m.mediaDir, filepath.FromSlash(destDir))
	if err := os.MkdirAll(fsDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}

	filename := m.uniqueName(fsDir, filepath.Base(srcFS))
	destFS := filepath.Join(fsDir, filename)

	if err := os.Link(srcFS, destFS); err != nil {
		if err := copyBytes(srcFS, destFS); err != nil {
			return "", fmt.Errorf("copy file: %w", err)
		}
	}

	return "/" + path.Join(destDir, filename), nil
}

// Read returns the bytes behind a stored path, or ErrFileNotFound when no
// root resolves it.
func (m *Materializer) Read(storedPath string) ([]byte, error) {
	fsPath, ok := m.resolveExisting(storedPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, storedPath)
	}
	return os.ReadFile(fsPath)
}

// Delete removes the file behind a stored path. Best-effort: a missing or
// unremovable file yields false, never an error, so callers can treat
// cleanup as advisory.
func (m *Materializer) Delete(storedPath string) bool {
	if storedPath == "" {
		return false
	}
	fsPath, ok := m.resolveExisting(storedPath)
	if !ok {
		return false
	}
	if err := os.Remove(fsPath); err != nil {
		log.Printf("delete %s: %v", storedPath, err)
		return false
	}
	return true
}

// resolveExisting maps a stored path onto the filesystem, tolerating the
// historical formats rows were written with: media-root-relative (canonical),
// already prefixed with the media dir, cwd-relative, or absolute.
func (m *Materializer) resolveExisting(storedPath string) (string, bool) {
	clean := strings.TrimLeft(strings.ReplaceAll(storedPath, "\\", "/"), "/")

	candidates := []string{
		filepath.Join(m.mediaDir, filepath.FromSlash(clean)),
		filepath.FromSlash(clean),
	}
	if filepath.IsAbs(storedPath) {
		candidates = append(candidates, filepath.Clean(storedPath))
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// uniqueName avoids overwriting an existing file by appending a timestamp
// suffix to the stem; if even that name is taken (same-second collision) a
// short random suffix settles it.
func (m *Materializer) uniqueName(fsDir, filename string) string {
	if _, err := os.Stat(filepath.Join(fsDir, filename)); os.IsNotExist(err) {
		return filename
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	stamped := fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102150405"), ext)
	if _, err := os.Stat(filepath.Join(fsDir, stamped)); os.IsNotExist(err) {
		return stamped
	}

	return fmt.Sprintf("%s_%s%s", stem, uuid.New().String()[:8], ext)
}

func copyBytes(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
