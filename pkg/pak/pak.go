// Package pak provides read access to Quake3-family package archives
// (.pk3 and .dpk files, both plain zip containers).
package pak

import (
	"io"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zip"
)

// Archive and directory extensions recognised as package sources.
var (
	ArchiveExtensions   = []string{".pk3", ".dpk"}
	DirectoryExtensions = []string{".pk3dir", ".dpkdir"}
)

// ErrNotFound is returned when a member does not exist in the archive.
var ErrNotFound = errors.New("member not found")

// Archive represents an opened package archive.
type Archive struct {
	path    string
	reader  *zip.ReadCloser
	members []*zip.File
	index   map[string]*zip.File
}

// Entry describes one archive member.
type Entry struct {
	Name             string
	CompressedSize   uint64
	UncompressedSize uint64
}

// Open opens a package archive for reading.
func Open(path string) (*Archive, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening archive %s", path)
	}

	a := &Archive{
		path:   path,
		reader: r,
		index:  make(map[string]*zip.File, len(r.File)),
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		a.members = append(a.members, f)
		a.index[normalizePath(f.Name)] = f
	}
	return a, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.reader != nil {
		return a.reader.Close()
	}
	return nil
}

// Path returns the file system path the archive was opened from.
func (a *Archive) Path() string {
	return a.path
}

// List returns all member paths in archive order.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.members))
	for _, f := range a.members {
		result = append(result, f.Name)
	}
	return result
}

// Entries returns size information for every member, sorted by name.
func (a *Archive) Entries() []Entry {
	result := make([]Entry, 0, len(a.members))
	for _, f := range a.members {
		result = append(result, Entry{
			Name:             f.Name,
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Contains checks if a member exists. Lookups ignore case and accept
// backslash separators.
func (a *Archive) Contains(name string) bool {
	_, ok := a.index[normalizePath(name)]
	return ok
}

// Read reads a member from the archive.
func (a *Archive) Read(name string) ([]byte, error) {
	f, ok := a.index[normalizePath(name)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s in %s", name, a.path)
	}
	return readMember(f)
}

// Walk calls fn for every member in archive order. The read function loads
// the member's content on demand. Walk stops at the first error fn returns.
func (a *Archive) Walk(fn func(name string, read func() ([]byte, error)) error) error {
	for _, f := range a.members {
		f := f
		if err := fn(f.Name, func() ([]byte, error) { return readMember(f) }); err != nil {
			return err
		}
	}
	return nil
}

// Composite returns the "archive:member" path used to identify a member
// outside the archive.
func Composite(archivePath, member string) string {
	return archivePath + ":" + member
}

// IsArchive reports whether name carries a package archive extension.
func IsArchive(name string) bool {
	return hasAnySuffix(name, ArchiveExtensions)
}

// IsDirectory reports whether name carries a package directory extension.
func IsDirectory(name string) bool {
	return hasAnySuffix(name, DirectoryExtensions)
}

// IsSource reports whether a mod directory entry is a package source.
func IsSource(name string) bool {
	return IsArchive(name) || IsDirectory(name)
}

// Ext returns the lowercased extension of a member path without the dot.
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}

func readMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening member %s", f.Name)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "reading member %s", f.Name)
	}
	return data, nil
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.ToLower(p)
}
