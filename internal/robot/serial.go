package robot

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// Port is the part of a serial port the driver needs.
type Port interface {
	io.ReadWriter
	io.Closer
}

// PortOptions describes the serial line to the motor board.
type PortOptions struct {
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`

	// ReadTimeoutMS bounds the wait for a reply. Zero means DefaultReadTimeout.
	ReadTimeoutMS int `json:"read_timeout_ms"`
}

// DefaultReadTimeout is how long the driver waits for one reply line.
const DefaultReadTimeout = 2 * time.Second

// ReadTimeout returns ReadTimeoutMS as a duration.
func (o PortOptions) ReadTimeout() time.Duration {
	return time.Duration(o.ReadTimeoutMS) * time.Millisecond
}

// Normalize validates the options and fills in defaults (115200 8N1).
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o

	if opts.BaudRate <= 0 {
		opts.BaudRate = 115200
	}

	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}

	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	parity := strings.TrimSpace(strings.ToUpper(opts.Parity))
	switch parity {
	case "", "N", "NONE":
		parity = "N"
	case "E", "EVEN":
		parity = "E"
	case "O", "ODD":
		parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}
	opts.Parity = parity

	if opts.ReadTimeoutMS <= 0 {
		opts.ReadTimeoutMS = int(DefaultReadTimeout / time.Millisecond)
	}
	return opts, nil
}

// SerialMode converts the options into the mode go.bug.st/serial opens ports with.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: serial.OneStopBit,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}

	switch opts.Parity {
	case "N":
		mode.Parity = serial.NoParity
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	}
	return mode, nil
}

// SerialDriver speaks the line protocol over a serial port.
type SerialDriver struct {
	mu   sync.Mutex
	path string
	port Port
}

// OpenSerial opens the port at path. Failures wrap ErrHardwareInit.
func OpenSerial(path string, opts PortOptions) (*SerialDriver, error) {
	norm, err := opts.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHardwareInit, err)
	}
	mode, err := norm.SerialMode()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHardwareInit, err)
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHardwareInit, errors.Wrapf(err, "open %s", path))
	}
	if err := port.SetReadTimeout(norm.ReadTimeout()); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: %w", ErrHardwareInit, errors.Wrapf(err, "set read timeout on %s", path))
	}
	return NewSerialDriver(path, port), nil
}

// NewSerialDriver wraps an already open port. path is only used in errors.
func NewSerialDriver(path string, port Port) *SerialDriver {
	return &SerialDriver{path: path, port: port}
}

// FormatCommand renders one protocol line, including the trailing newline.
func FormatCommand(verb string, args ...int) string {
	var b strings.Builder
	b.WriteString(verb)
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(a))
	}
	b.WriteByte('\n')
	return b.String()
}

// ParseReply interprets one reply line and returns its payload.
func ParseReply(line string) (string, error) {
	line = strings.TrimRight(line, "\r\n")
	switch {
	case line == "OK":
		return "", nil
	case strings.HasPrefix(line, "OK "):
		return strings.TrimSpace(line[3:]), nil
	case line == "ERR" || strings.HasPrefix(line, "ERR "):
		msg := strings.TrimSpace(strings.TrimPrefix(line, "ERR"))
		if msg == "" {
			msg = "no reason given"
		}
		return "", fmt.Errorf("%w: %s", ErrCommandFailed, msg)
	}
	return "", fmt.Errorf("unexpected reply %q", line)
}

// Send writes one command and waits for its reply.
func (d *SerialDriver) Send(ctx context.Context, verb string, args ...int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	line := FormatCommand(verb, args...)
	if _, err := io.WriteString(d.port, line); err != nil {
		return "", errors.Wrapf(err, "write %s to %s", verb, d.path)
	}

	reply, err := d.readLine()
	if err != nil {
		return "", errors.Wrapf(err, "read reply to %s from %s", verb, d.path)
	}
	return ParseReply(reply)
}

// readLine reads up to the next newline. A read that returns no data and no
// error is the port's read timeout expiring.
func (d *SerialDriver) readLine() (string, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := d.port.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				return string(line), nil
			}
			line = append(line, buf[0])
			continue
		}
		if err == io.EOF && len(line) > 0 {
			return string(line), nil
		}
		if err != nil {
			return "", err
		}
		return "", ErrNoReply
	}
}

// Close closes the port.
func (d *SerialDriver) Close() error {
	return errors.Wrapf(d.port.Close(), "close %s", d.path)
}
