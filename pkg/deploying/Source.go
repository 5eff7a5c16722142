package deploying

import (
	"io"
	"os"
)

// Source opens the byte stream of a bundle archive. A nil source expresses
// the absence of the bundle data, which matters for uninstall entries.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

func (s *Source) String() string {
	return s.Name
}

// FileSource opens the given file on demand.
func FileSource(path string) *Source {
	return &Source{
		Name: path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}
