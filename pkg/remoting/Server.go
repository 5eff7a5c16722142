package remoting

import (
	"net"
	"sync/atomic"

	"github.com/simplelauncher/sml/pkg/faults"
)

const maxPacketLength = 0xFFFF

// Server receives command datagrams on a dedicated goroutine, decodes them
// and hands the decoded text to the command handler together with the sender
// address. Closing the server ends the receive loop without reporting an
// error to the sink.
type Server struct {
	conn    *net.UDPConn
	decoder func([]byte) (string, error)
	handler func(command string, origin net.Addr)
	onError func(error)
	onClose func()
	closed  atomic.Bool
	done    chan struct{}
}

// ServerConfig collects the server collaborators before binding.
type ServerConfig struct {
	Decoder   func([]byte) (string, error)
	OnCommand func(command string, origin net.Addr)
	OnError   func(error)
	OnClose   func()
}

// Open binds the address, which may use port zero to auto-assign, and starts
// receiving.
func (c ServerConfig) Open(address string) (*Server, error) {
	resolved, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, faults.Wrap(faults.Transport, err, "could not resolve the command address")
	}

	conn, err := net.ListenUDP("udp", resolved)
	if err != nil {
		return nil, faults.Wrap(faults.Transport, err, "could not bind the command address")
	}

	result := &Server{
		conn:    conn,
		decoder: c.Decoder,
		handler: c.OnCommand,
		onError: c.OnError,
		onClose: c.OnClose,
		done:    make(chan struct{}),
	}

	go result.listen()
	return result, nil
}

// Addr returns the bound address with the resolved port.
func (s *Server) Addr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

// Close stops receiving and waits for the receive loop to finish.
func (s *Server) Close() {
	if s.closed.CompareAndSwap(false, true) {
		if s.onClose != nil {
			s.onClose()
		}

		s.conn.Close()
		<-s.done
	}
}

func (s *Server) listen() {
	defer close(s.done)

	buffer := make([]byte, maxPacketLength)

	for {
		length, origin, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			// Closing interrupts the receive asynchronously on purpose
			if !s.closed.Load() && s.onError != nil {
				s.onError(faults.Wrap(faults.Transport, err, "command link dropped"))
			}

			return
		}

		command, err := s.decoder(buffer[:length])
		if err != nil {
			// A stray or corrupt datagram must not take the channel down
			if s.onError != nil {
				s.onError(err)
			}

			continue
		}

		if s.handler != nil {
			s.handler(command, origin)
		}
	}
}
