package shader

import (
	"io"
	"os"
	"strings"
)

// supportedExtensions are the file extensions a stage may be loaded from.
var supportedExtensions = map[string]bool{
	"vert": true,
	"frag": true,
	"spv":  true,
	"bin":  true,
}

// IsBinaryExtension reports whether ext names a precompiled file.
func IsBinaryExtension(ext string) bool {
	return ext == "spv" || ext == "bin"
}

// ReadText returns the text of a stage: its literal or its source file.
func ReadText(s *Stage) (string, error) {
	if !s.source.IsFile() {
		return s.source.Text(), nil
	}
	data, err := os.ReadFile(s.source.Path())
	if err != nil {
		return "", fileError("read", s.source.Path(), err)
	}
	return string(data), nil
}

// ReadBinary returns the bytes of the stage's effective file, which is the
// cache entry for cached stages.
func ReadBinary(s *Stage) ([]byte, error) {
	if s.path == "" {
		return nil, fileError("read", s.source.String(), os.ErrNotExist)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fileError("read", s.path, err)
	}
	return data, nil
}

// readHeader returns up to n leading bytes of a file.
func readHeader(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fileError("open", path, err)
	}
	defer f.Close()
	buf := make([]byte, n)
	got, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fileError("read", path, err)
	}
	return buf[:got], nil
}

// plausibleText reports whether src looks like a complete shader.
func plausibleText(src string) bool {
	if IsWGSL(src) {
		return true
	}
	return strings.Contains(src, "#version") && strings.Contains(src, "void main()")
}
