package robot

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// DryRunDriver accepts every command without hardware. Distance reads return
// a fixed value.
type DryRunDriver struct {
	mu       sync.Mutex
	logger   *zap.SugaredLogger
	distance int
	sent     []string
}

// NewDryRunDriver returns a driver that logs commands at info level and
// reports distanceMM for every DIST request.
func NewDryRunDriver(distanceMM int, logger *zap.SugaredLogger) *DryRunDriver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &DryRunDriver{logger: logger, distance: distanceMM}
}

// Send records the command.
func (d *DryRunDriver) Send(ctx context.Context, verb string, args ...int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line := FormatCommand(verb, args...)

	d.mu.Lock()
	d.sent = append(d.sent, line[:len(line)-1])
	d.mu.Unlock()

	d.logger.Infow("dry run", "command", line[:len(line)-1])
	if verb == verbDistance {
		return strconv.Itoa(d.distance), nil
	}
	return "", nil
}

// Sent returns the commands received so far, without newlines.
func (d *DryRunDriver) Sent() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.sent))
	copy(out, d.sent)
	return out
}

// Close does nothing.
func (d *DryRunDriver) Close() error {
	return nil
}
