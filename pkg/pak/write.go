package pak

import (
	"io"
	"os"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zip"
)

// Write creates an archive at path containing files (member path → data).
func Write(path string, files map[string][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := WriteTo(f, files); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo writes an archive to w using Deflate compression. Members are
// written in sorted order so output is deterministic.
func WriteTo(w io.Writer, files map[string][]byte) error {
	zw := zip.NewWriter(w)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return errors.Wrapf(err, "creating member %s", name)
		}
		if _, err := fw.Write(files[name]); err != nil {
			return errors.Wrapf(err, "writing member %s", name)
		}
	}
	return zw.Close()
}
