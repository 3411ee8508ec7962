// Package file provides a wdmigrate.RawSource over dump files on local
// disk: a single file, or every file in a directory for dumps that were
// split into parts.
package file

import (
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"

	"github.com/pilosa/wdmigrate"
	"github.com/pkg/errors"
)

// RawSource yields the files under a path, sorted by file name.
type RawSource struct {
	files   []string
	fileIdx int
}

// NewRawSource returns a RawSource over pathname, which may name a file or
// a directory.
func NewRawSource(pathname string) (*RawSource, error) {
	s := &RawSource{}
	info, err := os.Stat(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "statting path")
	}
	if info.IsDir() {
		infos, err := ioutil.ReadDir(pathname)
		if err != nil {
			return nil, errors.Wrap(err, "reading directory")
		}
		s.files = make([]string, 0, len(infos))
		for _, info = range infos {
			s.files = append(s.files, path.Join(pathname, info.Name()))
		}
	} else {
		s.files = []string{pathname}
	}
	return s, nil
}

type metaFile struct {
	*os.File
}

func (m *metaFile) Name() string {
	return filepath.Base(m.File.Name())
}

// NextReader implements wdmigrate.RawSource.
func (s *RawSource) NextReader() (wdmigrate.NamedReadCloser, error) {
	if s.fileIdx >= len(s.files) {
		return nil, io.EOF
	}
	name := s.files[s.fileIdx]
	s.fileIdx++

	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", name)
	}
	return &metaFile{f}, nil
}
