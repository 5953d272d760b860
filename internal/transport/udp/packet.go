// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"neonviz/internal/visualizer"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Bar Count         | uint16         | 2            | Number of bars (N)      |
| Bars              | N * {float32,  | N * 6        | Height and RGB565 color |
|                   |      uint16}   |              |                         |
| Average           | float32        | 4            | Mean bin intensity      |
| Progress          | float32        | 4            | Track position [0, 1)   |
+-----------------------------------------------------------------------------+

Visual Layout:

|<- 4 ->|<--- 8 --->|<- 2 ->|<------- N * 6 ------->|<- 4 ->|<- 4 ->|
+-------+-----------+-------+-----------------------+-------+-------+
|  Seq  | Timestamp | Count | h0 c0 | h1 c1 | ...   |  Avg  | Prog  |
+-------+-----------+-------+-----------------------+-------+-------+
*/

const (
	headerSize  = 4 + 8 + 2
	barSize     = 4 + 2
	trailerSize = 4 + 4
	maxBars     = 1<<16 - 1
)

// ErrShortPacket is returned by DecodePacket for truncated input.
var ErrShortPacket = errors.New("udp: short packet")

// PacketBar is one bar as carried on the wire.
type PacketBar struct {
	Height float32
	Color  visualizer.Color
}

// Packet is the decoded form of one frame packet.
type Packet struct {
	Sequence  uint32
	Timestamp int64
	Bars      []PacketBar
	Average   float32
	Progress  float32
}

// PacketSize returns the encoded length for a frame with bars bars.
func PacketSize(bars int) int {
	return headerSize + bars*barSize + trailerSize
}

// EncodePacket appends the wire form of frame to buf.
func EncodePacket(buf *bytes.Buffer, seq uint32, timestamp int64, frame *visualizer.Frame) error {
	if len(frame.Bars) > maxBars {
		return fmt.Errorf("udp: %d bars exceed the packet limit of %d", len(frame.Bars), maxBars)
	}

	var scratch [8]byte
	be := binary.BigEndian

	be.PutUint32(scratch[:4], seq)
	buf.Write(scratch[:4])
	be.PutUint64(scratch[:8], uint64(timestamp))
	buf.Write(scratch[:8])
	be.PutUint16(scratch[:2], uint16(len(frame.Bars)))
	buf.Write(scratch[:2])

	for _, bar := range frame.Bars {
		be.PutUint32(scratch[:4], math.Float32bits(bar.Height))
		be.PutUint16(scratch[4:6], uint16(bar.Color))
		buf.Write(scratch[:6])
	}

	be.PutUint32(scratch[:4], math.Float32bits(frame.Average))
	buf.Write(scratch[:4])
	be.PutUint32(scratch[:4], math.Float32bits(frame.Progress))
	buf.Write(scratch[:4])
	return nil
}

// DecodePacket parses a packet produced by EncodePacket.
func DecodePacket(data []byte) (*Packet, error) {
	if len(data) < headerSize+trailerSize {
		return nil, ErrShortPacket
	}

	r := bytes.NewReader(data)
	var hdr struct {
		Sequence  uint32
		Timestamp int64
		Count     uint16
	}
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("udp: read header: %w", err)
	}
	if len(data) != PacketSize(int(hdr.Count)) {
		return nil, fmt.Errorf("%w: %d bytes for %d bars", ErrShortPacket, len(data), hdr.Count)
	}

	p := &Packet{
		Sequence:  hdr.Sequence,
		Timestamp: hdr.Timestamp,
		Bars:      make([]PacketBar, hdr.Count),
	}
	if err := binary.Read(r, binary.BigEndian, p.Bars); err != nil {
		return nil, fmt.Errorf("udp: read bars: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &p.Average); err != nil {
		return nil, fmt.Errorf("udp: read average: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &p.Progress); err != nil {
		return nil, fmt.Errorf("udp: read progress: %w", err)
	}
	return p, nil
}
