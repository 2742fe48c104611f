// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/adrianmo/go-nmea"
	"github.com/jacobsa/go-serial/serial"
	"github.com/relabs-tech/motion_events/internal/imu"
)

// TypeIMR is the sentence type carrying one raw IMU sample:
//
//	$IIIMR,<ax>,<ay>,<az>,<temp>,<gx>,<gy>,<gz>*HH
const TypeIMR = "IMR"

// imrTalker is the talker id used when writing sentences.
const imrTalker = "II"

// ErrBadSentence is returned for a line that is not a valid IMR sentence.
var ErrBadSentence = errors.New("bad IMR sentence")

// maxSkippedLines bounds how many unusable lines ReadRaw discards before
// giving up.
const maxSkippedLines = 32

// IMR is the parsed form of an IMR sentence.
type IMR struct {
	nmea.BaseSentence
	Ax, Ay, Az int64
	Temp       int64
	Gx, Gy, Gz int64
}

func init() {
	nmea.MustRegisterParser(TypeIMR, func(s nmea.BaseSentence) (nmea.Sentence, error) {
		p := nmea.NewParser(s)
		p.AssertType(TypeIMR)
		m := IMR{
			BaseSentence: s,
			Ax:           p.Int64(0, "accel x"),
			Ay:           p.Int64(1, "accel y"),
			Az:           p.Int64(2, "accel z"),
			Temp:         p.Int64(3, "temperature"),
			Gx:           p.Int64(4, "gyro x"),
			Gy:           p.Int64(5, "gyro y"),
			Gz:           p.Int64(6, "gyro z"),
		}
		return m, p.Err()
	})
}

// ParseIMR parses one line into a raw sample tagged with source.
func ParseIMR(source, line string) (imu.IMURaw, error) {
	sentence, err := nmea.Parse(strings.TrimSpace(line))
	if err != nil {
		return imu.IMURaw{}, fmt.Errorf("%w: %v", ErrBadSentence, err)
	}
	m, ok := sentence.(IMR)
	if !ok {
		return imu.IMURaw{}, fmt.Errorf("%w: unexpected type %s", ErrBadSentence, sentence.DataType())
	}

	raw := imu.IMURaw{Source: source}
	fields := []struct {
		what string
		v    int64
		dst  *int16
	}{
		{"accel x", m.Ax, &raw.Ax},
		{"accel y", m.Ay, &raw.Ay},
		{"accel z", m.Az, &raw.Az},
		{"temperature", m.Temp, &raw.Temp},
		{"gyro x", m.Gx, &raw.Gx},
		{"gyro y", m.Gy, &raw.Gy},
		{"gyro z", m.Gz, &raw.Gz},
	}
	for _, f := range fields {
		if f.v < math.MinInt16 || f.v > math.MaxInt16 {
			return imu.IMURaw{}, fmt.Errorf("%w: %s %d does not fit 16 bits", ErrBadSentence, f.what, f.v)
		}
		*f.dst = int16(f.v)
	}
	return raw, nil
}

// FormatIMR encodes raw as a checksummed IMR sentence, without line ending.
func FormatIMR(raw imu.IMURaw) string {
	body := fmt.Sprintf("%s%s,%d,%d,%d,%d,%d,%d,%d", imrTalker, TypeIMR,
		raw.Ax, raw.Ay, raw.Az, raw.Temp, raw.Gx, raw.Gy, raw.Gz)
	return fmt.Sprintf("$%s*%s", body, nmea.Checksum(body))
}

// SerialSource reads IMR sentences from a byte stream, normally a UART.
type SerialSource struct {
	name   string
	reader *bufio.Reader
	closer io.Closer
}

// NewStreamSource reads sentences from r. Closing the source closes r when
// it is an io.Closer.
func NewStreamSource(name string, r io.Reader) *SerialSource {
	s := &SerialSource{name: name, reader: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// OpenSerialSource opens a serial port at baud 8N1.
func OpenSerialSource(name, portName string, baud uint) (*SerialSource, error) {
	port, err := serial.Open(serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("%s IMU: open serial %s: %w", name, portName, err)
	}
	return NewStreamSource(name, port), nil
}

// ReadRaw blocks until the next valid sentence arrives. Blank lines and
// lines not starting with '$' are skipped; after too many consecutive bad
// lines the last parse error is returned.
func (s *SerialSource) ReadRaw() (imu.IMURaw, error) {
	var lastErr error
	for skipped := 0; skipped < maxSkippedLines; skipped++ {
		line, err := s.reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if err != nil && line == "" {
			return imu.IMURaw{}, fmt.Errorf("%s IMU: serial read: %w", s.name, err)
		}
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		raw, perr := ParseIMR(s.name, line)
		if perr == nil {
			return raw, nil
		}
		lastErr = perr
		if err != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = ErrBadSentence
	}
	return imu.IMURaw{}, fmt.Errorf("%s IMU: %w", s.name, lastErr)
}

// Close closes the underlying port.
func (s *SerialSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
