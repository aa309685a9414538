package transport

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	slave "github.com/hemlock-automation/modbus-slave"
)

// TCPServer accepts MBAP connections and dispatches each received ADU
// to a slave.Instance, mirroring a classic accept-loop-plus-worker-pool
// TCP server: one goroutine accepts, one goroutine per client serves.
type TCPServer struct {
	MaxClients uint
	Timeout    time.Duration

	inst   *slave.Instance
	logger slave.LeveledLogger

	lock     sync.Mutex
	listener net.Listener
	clients  []net.Conn
}

// NewTCPServer returns a TCPServer that will dispatch accepted
// connections to inst. maxClients of 0 means unlimited.
func NewTCPServer(inst *slave.Instance, logger slave.LeveledLogger, maxClients uint, timeout time.Duration) *TCPServer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TCPServer{
		MaxClients: maxClients,
		Timeout:    timeout,
		inst:       inst,
		logger:     logger,
	}
}

// Start begins accepting connections on l in a background goroutine.
func (ts *TCPServer) Start(l net.Listener) error {
	ts.lock.Lock()
	defer ts.lock.Unlock()

	if ts.listener != nil {
		return errors.New("transport: tcp server already started")
	}
	ts.listener = l

	go ts.acceptClients()

	return nil
}

// Stop closes the listener and every active client connection.
func (ts *TCPServer) Stop() error {
	ts.lock.Lock()
	defer ts.lock.Unlock()

	if ts.listener == nil {
		return errors.New("transport: tcp server not started")
	}

	err := ts.listener.Close()
	for _, c := range ts.clients {
		c.Close()
	}
	ts.listener = nil

	return err
}

func (ts *TCPServer) acceptClients() {
	for {
		sock, err := ts.listener.Accept()
		if err != nil {
			ts.lock.Lock()
			stopped := ts.listener == nil
			ts.lock.Unlock()
			if stopped {
				return
			}
			ts.logger.Warningf("failed to accept client connection: %v", err)
			continue
		}

		ts.lock.Lock()
		accepted := ts.MaxClients == 0 || uint(len(ts.clients)) < ts.MaxClients
		if accepted {
			ts.clients = append(ts.clients, sock)
		}
		ts.lock.Unlock()

		if !accepted {
			ts.logger.Warningf("max. number of concurrent connections reached, rejecting %v", sock.RemoteAddr())
			sock.Close()
			continue
		}

		go ts.handleClient(sock)
	}
}

func (ts *TCPServer) handleClient(sock net.Conn) {
	ts.serve(sock)

	ts.lock.Lock()
	for i := range ts.clients {
		if ts.clients[i] == sock {
			ts.clients[i] = ts.clients[len(ts.clients)-1]
			ts.clients = ts.clients[:len(ts.clients)-1]
			break
		}
	}
	ts.lock.Unlock()

	sock.Close()
}

// mbapHeaderSize is the fixed-length prefix of an MBAP ADU that
// precedes the unit id and PDU (spec.md §4.7.3).
const mbapHeaderSize = 6

func (ts *TCPServer) serve(sock net.Conn) {
	header := make([]byte, mbapHeaderSize)
	frame := make([]byte, 0, 260)
	out := make([]byte, 260)

	for {
		if ts.Timeout > 0 {
			sock.SetReadDeadline(time.Now().Add(ts.Timeout))
		}

		if _, err := io.ReadFull(sock, header); err != nil {
			return
		}

		length := binary.BigEndian.Uint16(header[4:6])
		if length == 0 || length > 254 {
			return
		}

		frame = append(frame[:0], header...)
		frame = frame[:mbapHeaderSize+int(length)]
		if _, err := io.ReadFull(sock, frame[mbapHeaderSize:]); err != nil {
			return
		}

		n := ts.inst.HandleTCPFrame(frame, out)
		if n == 0 {
			continue
		}
		if _, err := sock.Write(out[:n]); err != nil {
			return
		}
	}
}
