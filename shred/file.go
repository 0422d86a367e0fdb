package shred

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// File is a regular file on fs together with the observers that are told how
// operations on it ended.
type File struct {
	Name     string // base name without extension
	Ext      string
	FullName string
	Path     string
	Size     int64

	fs afero.Fs

	mutex     sync.RWMutex
	observers []Observer
}

// Open records the metadata of the regular file at path. The file is not kept
// open; Process and Wipe open it themselves.
func Open(fs afero.Fs, path string, observers ...Observer) (*File, error) {
	if path == "" {
		return nil, errors.Wrap(ErrNotExist, "empty path")
	}

	fi, err := fs.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrNotExist, "the path %s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if !fi.Mode().IsRegular() {
		return nil, errors.Wrapf(ErrNotRegular, "%s", path)
	}

	full := filepath.Base(path)
	ext := filepath.Ext(full)

	return &File{
		Name:      strings.TrimSuffix(full, ext),
		Ext:       ext,
		FullName:  full,
		Path:      path,
		Size:      fi.Size(),
		fs:        fs,
		observers: observers,
	}, nil
}

func (f *File) AddObserver(o Observer) {
	f.mutex.Lock()
	f.observers = append(f.observers, o)
	f.mutex.Unlock()
}

// Remove deletes the file by path.
func (f *File) Remove() error {
	if err := f.fs.Remove(f.Path); err != nil {
		return errors.Wrapf(err, "error trying to delete file %s", f.FullName)
	}
	return nil
}

func (f *File) open() (afero.File, error) {
	file, err := f.fs.OpenFile(f.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening file %s", f.FullName)
	}
	return file, nil
}

func (f *File) snapshot() []Observer {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return append([]Observer(nil), f.observers...)
}

func (f *File) notify(r Result) {
	for _, o := range f.snapshot() {
		o.Notify(r)
	}
}

func (f *File) progress(p Progress) {
	for _, o := range f.snapshot() {
		if po, ok := o.(ProgressObserver); ok {
			po.Progress(p)
		}
	}
}
