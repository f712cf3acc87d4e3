package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// LoadFile loads the given file and performs decompression if necessary.
// Archives (.zip, .7z) yield the first file inside them whose extension
// is want, or their first file when want is empty.
func LoadFile(filename, want string) ([]byte, error) {
	// read the file into a byte slice
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(data)

	// try to assert the compression type from the file extension
	var decoder io.Reader
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		decoder = gz
	case ".zip":
		zipReader, err := zip.NewReader(r, int64(len(data)))
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(zipReader.File))
		for _, f := range zipReader.File {
			names = append(names, f.Name)
		}
		i := pick(names, want)
		if i < 0 {
			return nil, fmt.Errorf("utils: no %s file in %s", want, filename)
		}
		rc, err := zipReader.File[i].Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		decoder = rc
	case ".7z":
		szReader, err := sevenzip.NewReader(r, int64(len(data)))
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(szReader.File))
		for _, f := range szReader.File {
			names = append(names, f.Name)
		}
		i := pick(names, want)
		if i < 0 {
			return nil, fmt.Errorf("utils: no %s file in %s", want, filename)
		}
		rc, err := szReader.File[i].Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		decoder = rc
	default:
		// return the data as is
		return data, nil
	}

	// read the decompressed data into a byte slice
	return io.ReadAll(decoder)
}

// pick returns the index of the first regular file in names with
// extension want, or -1.
func pick(names []string, want string) int {
	for i, name := range names {
		if strings.HasSuffix(name, "/") {
			continue
		}
		if want == "" || strings.EqualFold(path.Ext(name), want) {
			return i
		}
	}
	return -1
}
