package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wave-engine/wave"
	"github.com/wave-engine/wave/render"
)

// DefaultCacheDir is the cache directory used when none is configured,
// relative to the working directory.
const DefaultCacheDir = "cache"

// GLSpirVExtension is the OpenGL extension required to load SPIR-V binaries.
const GLSpirVExtension = "GL_ARB_gl_spirv"

// Cache is the on-disk store of compiled SPIR-V, one file per stage source.
// The directory is created on first write.
type Cache struct {
	dir string
}

// NewCache returns a cache rooted at dir. An empty dir means DefaultCacheDir.
func NewCache(dir string) *Cache {
	if dir == "" {
		dir = DefaultCacheDir
	}
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Path returns the cache entry of a source file: "<dir>/<name>.spv", or
// "<dir>/<name>" when the name already ends in ".spv".
func (c *Cache) Path(source string) string {
	name := filepath.Base(source)
	if !strings.EqualFold(filepath.Ext(name), ".spv") {
		name += ".spv"
	}
	return filepath.Join(c.dir, name)
}

// Lookup returns the cached binary of source. It fails with ErrShaderModified
// when there is no entry or the source was modified after the entry was
// written.
func (c *Cache) Lookup(source string) ([]byte, error) {
	entry := c.Path(source)

	cacheInfo, err := os.Stat(entry)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no cache entry %s", ErrShaderModified, entry)
	}
	if err != nil {
		return nil, fileError("stat", entry, err)
	}

	srcInfo, err := os.Stat(source)
	if err != nil {
		return nil, fileError("stat", source, err)
	}
	if srcInfo.ModTime().After(cacheInfo.ModTime()) {
		return nil, fmt.Errorf("%w: %s is newer than %s", ErrShaderModified, source, entry)
	}

	data, err := os.ReadFile(entry)
	if err != nil {
		return nil, fileError("read", entry, err)
	}
	return data, nil
}

// Store writes the binary compiled from source. The entry is written to a
// temporary file and renamed so readers never see a partial binary.
func (c *Cache) Store(source string, spv []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrShaderCaching, err)
	}
	entry := c.Path(source)
	tmp, err := os.CreateTemp(c.dir, filepath.Base(entry)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrShaderCaching, err)
	}
	if _, err := tmp.Write(spv); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %w", ErrShaderCaching, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %w", ErrShaderCaching, err)
	}
	if err := os.Rename(tmp.Name(), entry); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %w", ErrShaderCaching, err)
	}
	wave.Component("Shader").Debug("cached stage", "source", source, "entry", entry, "bytes", len(spv))
	return nil
}

// Invalidate removes the entry of source. A missing entry is not an error.
func (c *Cache) Invalidate(source string) error {
	err := os.Remove(c.Path(source))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrShaderCaching, err)
	}
	return nil
}

// Clear removes every entry of the cache.
func (c *Cache) Clear() error {
	entries, err := filepath.Glob(filepath.Join(c.dir, "*.spv"))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrShaderCaching, err)
	}
	for _, e := range entries {
		if err := os.Remove(e); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrShaderCaching, err)
		}
	}
	return nil
}

// CheckCache returns the cached binary of a source file for dev.
//
// On OpenGL without GL_ARB_gl_spirv a binary cannot be loaded at all, so
// CheckCache fails with ErrInvalidApi without touching the filesystem.
func CheckCache(dev Device, c *Cache, source string) ([]byte, error) {
	if dev.API() == render.OpenGL && !dev.HasExtension(GLSpirVExtension) {
		wave.Component("Shader").Warn("cannot load cached SPIR-V binary, loading source instead",
			"source", source, "missing", GLSpirVExtension)
		return nil, fmt.Errorf("%w: OpenGL context lacks %s", ErrInvalidApi, GLSpirVExtension)
	}
	return c.Lookup(source)
}
