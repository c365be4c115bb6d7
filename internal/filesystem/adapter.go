package filesystem

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// FileStats holds basic statistics about a file.
type FileStats struct {
	Size    int64
	IsDir   bool
	ModTime time.Time
	Mode    os.FileMode
}

// FileSystemAdapter defines an interface for interacting with the file system.
// Line handling lives here too so that document and replacement text are split
// by exactly the same rules.
type FileSystemAdapter interface {
	ReadFileBytes(filePath string) ([]byte, error)
	WriteFileBytesAtomic(filePath string, content []byte, perm os.FileMode) error
	GetFileStats(filePath string) (*FileStats, error)
	EvalSymlinks(path string) (string, error)
	CheckWritable(filePath string) error
	IsValidUTF8(content []byte) bool
	StripBOM(content []byte) ([]byte, bool)  // Removes a leading UTF-8 BOM
	HasForeignBOM(content []byte) bool       // UTF-16/UTF-32 BOMs
	NormalizeNewlines(content []byte) []byte // Converts \r\n and \r to \n
	SplitLines(content []byte) []string      // Uses normalized newlines
	JoinLines(lines []string, bom bool) []byte
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DefaultFileSystemAdapter implements FileSystemAdapter on the local disk.
type DefaultFileSystemAdapter struct{}

// NewDefaultFileSystemAdapter creates a new DefaultFileSystemAdapter.
func NewDefaultFileSystemAdapter() *DefaultFileSystemAdapter {
	return &DefaultFileSystemAdapter{}
}

// ReadFileBytes reads the entire file. Errors wrap the os error so callers
// can test for os.ErrNotExist and os.ErrPermission.
func (fs *DefaultFileSystemAdapter) ReadFileBytes(filePath string) ([]byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	return content, nil
}

// IsValidUTF8 checks if the byte slice is valid UTF-8.
func (fs *DefaultFileSystemAdapter) IsValidUTF8(content []byte) bool {
	return utf8.Valid(content)
}

// StripBOM removes a leading UTF-8 byte order mark and reports whether one was present.
func (fs *DefaultFileSystemAdapter) StripBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, bomUTF8) {
		return content[len(bomUTF8):], true
	}
	return content, false
}

// HasForeignBOM reports a UTF-16 (and therefore also UTF-32 LE) byte order mark.
func (fs *DefaultFileSystemAdapter) HasForeignBOM(content []byte) bool {
	return bytes.HasPrefix(content, bomUTF16LE) || bytes.HasPrefix(content, bomUTF16BE)
}

// WriteFileBytesAtomic replaces filePath with content. The bytes go to a
// hidden temporary file in the same directory, which is synced, given perm
// and renamed over the target. The target is never truncated in place.
func (fs *DefaultFileSystemAdapter) WriteFileBytesAtomic(filePath string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	// CreateTemp uses 0600.
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod %o %s: %w", perm, tmpName, err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpName, filePath, err)
	}
	renamed = true
	return nil
}

// GetFileStats stats filePath. Mode carries permission bits only.
func (fs *DefaultFileSystemAdapter) GetFileStats(filePath string) (*FileStats, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}
	return &FileStats{
		Size:    info.Size(),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
		Mode:    info.Mode().Perm(),
	}, nil
}

// EvalSymlinks returns path with every symbolic link resolved.
func (fs *DefaultFileSystemAdapter) EvalSymlinks(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolved, nil
}

// CheckWritable verifies that filePath can be opened for writing and that a
// temporary file can be created next to it. Neither check modifies filePath.
func (fs *DefaultFileSystemAdapter) CheckWritable(filePath string) error {
	f, err := os.OpenFile(filePath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s for write: %w", filePath, err)
	}
	f.Close()
	return CheckDirectoryIsWritable(filepath.Dir(filePath))
}

// CheckDirectoryIsWritable creates and removes a probe file in path.
func CheckDirectoryIsWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	probe, err := os.CreateTemp(path, ".linesplice-probe-*")
	if err != nil {
		return fmt.Errorf("directory %s not writable: %w", path, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// NormalizeNewlines rewrites \r\n and lone \r as \n.
func (fs *DefaultFileSystemAdapter) NormalizeNewlines(content []byte) []byte {
	if bytes.IndexByte(content, '\r') < 0 {
		return content
	}
	out := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(out, []byte("\r"), []byte("\n"))
}

// SplitLines splits the content by \n after normalizing newlines.
// A single trailing newline terminates the last line rather than starting a new one,
// so "a\n" and "a" are both one line, "\n" is one empty line and "" is no lines.
func (fs *DefaultFileSystemAdapter) SplitLines(content []byte) []string {
	if len(content) == 0 {
		return []string{}
	}
	text := strings.TrimSuffix(string(fs.NormalizeNewlines(content)), "\n")
	return strings.Split(text, "\n")
}

// JoinLines joins lines with \n and terminates the last one, so a non-empty
// result always ends with exactly one line break. No lines produce no bytes:
// an empty document is the only output without a trailing line break.
// bom prepends a UTF-8 byte order mark.
func (fs *DefaultFileSystemAdapter) JoinLines(lines []string, bom bool) []byte {
	var buf bytes.Buffer
	if bom {
		buf.Write(bomUTF8)
	}
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

var _ FileSystemAdapter = (*DefaultFileSystemAdapter)(nil)
