package remoting

import (
	"net"

	"github.com/simplelauncher/sml/pkg/faults"
)

// Sender delivers one-shot command datagrams. No acknowledgement is expected
// from the receiving instance.
type Sender struct {
	address string
	encoder func(string) []byte
}

func NewSender(address string, encoder func(string) []byte) *Sender {
	return &Sender{address: address, encoder: encoder}
}

func (s *Sender) Address() string {
	return s.address
}

// Send encodes the command and delivers it in a single datagram from an
// ephemeral socket.
func (s *Sender) Send(command string) error {
	conn, err := net.Dial("udp", s.address)
	if err != nil {
		return faults.Wrap(faults.Transport, err, "could not open the command socket")
	}

	defer conn.Close()

	if _, err = conn.Write(s.encoder(command)); err != nil {
		return faults.Wrap(faults.Transport, err, "could not send the command")
	}

	return nil
}
