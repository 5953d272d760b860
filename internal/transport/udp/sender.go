// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"neonviz/internal/log"
)

// ErrSenderClosed is returned by Send after Close.
var ErrSenderClosed = errors.New("udp: sender closed")

// A packet that cannot be written within this window is dropped; the next
// frame supersedes it anyway.
const writeTimeout = 50 * time.Millisecond

// Sender writes frame packets to a single renderer address.
type Sender struct {
	target *net.UDPAddr

	mu     sync.Mutex // Guards conn against Close.
	conn   *net.UDPConn
	closed bool

	packets atomic.Uint64
	bytes   atomic.Uint64
	dropped atomic.Uint64
}

// NewSender dials targetAddress ("host:port", e.g. "127.0.0.1:9090").
func NewSender(targetAddress string) (*Sender, error) {
	addr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	log.Infof("UDP: sending frames from %s to %s", conn.LocalAddr(), conn.RemoteAddr())
	return &Sender{target: addr, conn: conn}, nil
}

// Send writes one packet. Failed writes are counted as dropped.
func (s *Sender) Send(packet []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSenderClosed
	}

	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	n, err := s.conn.Write(packet)
	if err != nil {
		s.dropped.Add(1)
		log.Debugf("UDP: write to %s failed: %v", s.target, err)
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}

	s.packets.Add(1)
	s.bytes.Add(uint64(n))
	return nil
}

// Stats returns the packets and bytes written and the packets dropped.
func (s *Sender) Stats() (packets, bytes, dropped uint64) {
	return s.packets.Load(), s.bytes.Load(), s.dropped.Load()
}

// Close releases the socket. Calling it again is a no-op.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	packets, bytes, dropped := s.Stats()
	log.Infof("UDP: closing sender to %s (%d packets, %d bytes, %d dropped)", s.target, packets, bytes, dropped)
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}
