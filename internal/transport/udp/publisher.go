// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"neonviz/internal/log"
	"neonviz/internal/transport"
)

// DefaultInterval is used when a publisher is created with a non-positive
// interval (~60 Hz).
const DefaultInterval = 16 * time.Millisecond

// Publisher polls a FrameSource on its own ticker, independent of the frame
// rate, and sends each new frame as one packet (see packet.go). Frames that
// were already sent are skipped, so a slow frame loop never produces
// duplicate packets.
type Publisher struct {
	sender   *Sender
	source   transport.FrameSource
	interval time.Duration

	mu     sync.Mutex // Guards cancel and done across Start and Close.
	cancel context.CancelFunc
	done   chan struct{}

	// Owned by the publishing goroutine.
	seq     uint32
	last    uint32
	sentAny bool
	buf     bytes.Buffer
}

// NewPublisher creates a publisher that sends frames from source through
// sender every interval.
func NewPublisher(interval time.Duration, sender *Sender, source transport.FrameSource) (*Publisher, error) {
	if sender == nil {
		return nil, errors.New("udp: publisher needs a sender")
	}
	if source == nil {
		return nil, errors.New("udp: publisher needs a frame source")
	}
	if interval <= 0 {
		log.Warnf("UDP: invalid publish interval %s, using %s", interval, DefaultInterval)
		interval = DefaultInterval
	}

	return &Publisher{
		sender:   sender,
		source:   source,
		interval: interval,
	}, nil
}

// Run publishes until ctx is done.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Debugf("UDP: publishing every %s", p.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.publish()
		}
	}
}

// Start runs the publisher in a goroutine until Close. Starting a running
// publisher does nothing.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go func() {
		defer close(done)
		p.Run(ctx)
	}()
}

// Close stops a started publisher and waits for it to exit.
func (p *Publisher) Close() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	log.Infof("UDP: publisher stopped after %d packets", p.seq)
	return nil
}

// publish sends the newest frame if it has not been sent yet.
func (p *Publisher) publish() {
	frame := p.source.Snapshot()
	if frame == nil || (p.sentAny && frame.Number == p.last) {
		return
	}

	p.seq++
	p.buf.Reset()
	if err := EncodePacket(&p.buf, p.seq, time.Now().UnixNano(), frame); err != nil {
		log.Errorf("UDP: cannot encode frame %d: %v", frame.Number, err)
		return
	}
	if err := p.sender.Send(p.buf.Bytes()); err != nil {
		return
	}
	p.last = frame.Number
	p.sentAny = true
}
