package remoting

import (
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/simplelauncher/sml/pkg/faults"
)

// Link carries the parameters needed to reach the command channel of a
// running instance: the address and the shared secret. An empty secret is
// replaced with a generated one-shot token at construction.
type Link struct {
	Host   string
	Port   int
	Secret string
}

func NewLink(host string, port int, secret string) (*Link, error) {
	resolved, err := secretFrom(secret)
	if err != nil {
		return nil, err
	}

	return &Link{Host: host, Port: port, Secret: resolved}, nil
}

// FromArgs builds a link from the host, port and secret argument triple.
func FromArgs(args []string) (*Link, error) {
	if len(args) < 3 {
		return nil, faults.New(faults.Syntax, "requiring host, port and secret for the command link")
	}

	port, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return nil, faults.Wrap(faults.Config, err, "invalid command link port")
	}

	return NewLink(args[0], int(port), args[2])
}

// LoadLink reads the three-line link file.
func LoadLink(path string) (*Link, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return FromArgs(lines)
}

// Save writes the link as three lines terminated with newlines.
func (l *Link) Save(path string) error {
	content := l.Host + "\n" + strconv.Itoa(l.Port) + "\n" + l.Secret + "\n"
	return os.WriteFile(path, []byte(content), 0600)
}

// Address renders the host:port form usable for dialing and binding.
func (l *Link) Address() string {
	return net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
}

// WithPort derives a link pointing at the resolved port of a bound socket.
func (l *Link) WithPort(port int) *Link {
	return &Link{Host: l.Host, Port: port, Secret: l.Secret}
}

func secretFrom(secret string) (string, error) {
	if secret == "" {
		return uuid.NewString(), nil
	}

	for _, c := range secret {
		if c < 0x20 || c > 0x80 {
			return "", faults.New(faults.Config, "secret contains forbidden characters")
		}
	}

	return secret, nil
}
