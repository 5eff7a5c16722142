package instance

import (
	"os"
	"path/filepath"

	"github.com/simplelauncher/sml/pkg/remoting"
	"github.com/simplelauncher/sml/pkg/static"
)

// Inquiry offers the read-only view of an instance directory that needs no
// ownership of the lock.
type Inquiry struct {
	location string
}

func NewInquiry(location string) *Inquiry {
	return &Inquiry{location: filepath.Clean(location)}
}

// SeemsValid tells whether a path looks like an instance, which requires its
// etc/ subdirectory to exist.
func SeemsValid(path string) bool {
	info, err := os.Stat(filepath.Join(path, static.ETCDIR))
	return err == nil && info.IsDir()
}

func (i *Inquiry) SeemsValid() bool {
	return SeemsValid(i.location)
}

func (i *Inquiry) Location() string {
	return i.location
}

// Path resolves a subpath within the instance.
func (i *Inquiry) Path(other string) string {
	return filepath.Join(i.location, other)
}

// CommandLink reads the exposed command link of a running instance, or nil
// when none is exposed. It relies on the open failing to avoid a race with
// the file appearing or disappearing.
func (i *Inquiry) CommandLink() (*remoting.Link, error) {
	link, err := remoting.LoadLink(i.Path(static.LINKFILE))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	return link, nil
}
