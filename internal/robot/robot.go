package robot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrHardwareInit is returned when the robot, sensor or servo cannot be set up.
	ErrHardwareInit = errors.New("hardware init failed")

	// ErrInvalidArgument marks an out-of-range motion request. Controller logs
	// it and does not move.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownCommand is returned by Command for unrecognized names.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrCommandFailed is returned when the board answers ERR.
	ErrCommandFailed = errors.New("command failed")

	// ErrNoReply is returned when the board does not answer within the read timeout.
	ErrNoReply = errors.New("no reply")
)

// Motion limits.
const (
	MaxOrbitDegrees = 360
	MinServoDegrees = 0
	MaxServoDegrees = 180

	// ServoCenter points the servo straight ahead.
	ServoCenter = 90

	// DefaultSpeed is the wheel speed set at startup, in degrees per second.
	DefaultSpeed = 500
)

// Protocol verbs.
const (
	verbForward  = "FWD"
	verbBackward = "BWD"
	verbLeft     = "LEFT"
	verbRight    = "RIGHT"
	verbStop     = "STOP"
	verbSpeed    = "SPEED"
	verbOrbit    = "ORBIT"
	verbDistance = "DIST"
	verbServo    = "SERVO"
)

// Actuator is the motion and sensing surface of the robot.
type Actuator interface {
	Forward(ctx context.Context) error
	Backward(ctx context.Context) error
	Left(ctx context.Context) error
	Right(ctx context.Context) error
	Stop(ctx context.Context) error
	Orbit(ctx context.Context, degrees, radiusCM int) error
	ReadDistance(ctx context.Context) (int, error)
	RotateServo(ctx context.Context, degrees int) error
}

// Driver carries one command to the hardware and returns the reply payload
// (the text after "OK", possibly empty).
type Driver interface {
	Send(ctx context.Context, verb string, args ...int) (string, error)
	Close() error
}

// ValidateOrbit checks an orbit request. The radius is measured from the
// robot's center; zero turns in place.
func ValidateOrbit(degrees, radiusCM int) error {
	if degrees < -MaxOrbitDegrees || degrees > MaxOrbitDegrees {
		return fmt.Errorf("%w: orbit of %d degrees (must be within ±%d)", ErrInvalidArgument, degrees, MaxOrbitDegrees)
	}
	if radiusCM < 0 {
		return fmt.Errorf("%w: negative orbit radius %d cm", ErrInvalidArgument, radiusCM)
	}
	return nil
}

// ValidateServo checks a servo angle.
func ValidateServo(degrees int) error {
	if degrees < MinServoDegrees || degrees > MaxServoDegrees {
		return fmt.Errorf("%w: servo angle %d (must be %d-%d)", ErrInvalidArgument, degrees, MinServoDegrees, MaxServoDegrees)
	}
	return nil
}

// Options configures a Controller.
type Options struct {
	// Speed is set once at startup. Zero means DefaultSpeed.
	Speed int `json:"speed"`
}

// Controller validates and logs commands before handing them to a Driver.
// It is safe for concurrent use; commands are serialized.
type Controller struct {
	mu     sync.Mutex
	drv    Driver
	logger *zap.SugaredLogger
	closed bool
}

// NewController sets the wheel speed and centers the servo.
//
// Any failure during this handshake is reported as ErrHardwareInit and the
// driver is closed.
func NewController(ctx context.Context, drv Driver, opts Options, logger *zap.SugaredLogger) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.Speed <= 0 {
		opts.Speed = DefaultSpeed
	}

	c := &Controller{drv: drv, logger: logger}
	if _, err := drv.Send(ctx, verbSpeed, opts.Speed); err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("%w: robot not detected: %w", ErrHardwareInit, err)
	}
	if _, err := drv.Send(ctx, verbServo, ServoCenter); err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("%w: servo not detected: %w", ErrHardwareInit, err)
	}
	if _, err := c.ReadDistance(ctx); err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("%w: distance sensor not detected: %w", ErrHardwareInit, err)
	}

	logger.Infow("robot ready", "speed", opts.Speed, "servo", ServoCenter)
	return c, nil
}

func (c *Controller) send(ctx context.Context, verb string, args ...int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", fmt.Errorf("robot closed: %s", verb)
	}
	c.logger.Debugw("robot command", "verb", verb, "args", args)
	reply, err := c.drv.Send(ctx, verb, args...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(verb), err)
	}
	return reply, nil
}

// Forward drives ahead until the next motion command.
func (c *Controller) Forward(ctx context.Context) error {
	_, err := c.send(ctx, verbForward)
	return err
}

// Backward drives in reverse until the next motion command.
func (c *Controller) Backward(ctx context.Context) error {
	_, err := c.send(ctx, verbBackward)
	return err
}

// Left spins left in place.
func (c *Controller) Left(ctx context.Context) error {
	_, err := c.send(ctx, verbLeft)
	return err
}

// Right spins right in place.
func (c *Controller) Right(ctx context.Context) error {
	_, err := c.send(ctx, verbRight)
	return err
}

// Stop halts both wheels.
func (c *Controller) Stop(ctx context.Context) error {
	_, err := c.send(ctx, verbStop)
	return err
}

// Orbit drives an arc of degrees around a point radiusCM to the side.
// Out-of-range requests are logged and ignored.
func (c *Controller) Orbit(ctx context.Context, degrees, radiusCM int) error {
	if err := ValidateOrbit(degrees, radiusCM); err != nil {
		c.logger.Warnw("unable to orbit", "error", err)
		return nil
	}
	_, err := c.send(ctx, verbOrbit, degrees, radiusCM)
	return err
}

// ReadDistance returns the distance to the nearest object in millimeters.
func (c *Controller) ReadDistance(ctx context.Context) (int, error) {
	reply, err := c.send(ctx, verbDistance)
	if err != nil {
		return 0, err
	}
	var mm int
	if _, err := fmt.Sscanf(reply, "%d", &mm); err != nil {
		return 0, fmt.Errorf("bad distance reading %q: %w", reply, err)
	}
	return mm, nil
}

// RotateServo points the servo. Out-of-range angles are logged and ignored.
func (c *Controller) RotateServo(ctx context.Context, degrees int) error {
	if err := ValidateServo(degrees); err != nil {
		c.logger.Warnw("unable to rotate servo", "error", err)
		return nil
	}
	_, err := c.send(ctx, verbServo, degrees)
	return err
}

// Commands lists the names accepted by Command.
var Commands = []string{"forward", "backward", "left", "right", "stop"}

// Command runs a basic motion by name and returns a short status phrase
// such as "moving forward".
func (c *Controller) Command(ctx context.Context, name string) (string, error) {
	var (
		run    func(context.Context) error
		status string
	)
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "forward":
		run, status = c.Forward, "moving forward"
	case "backward":
		run, status = c.Backward, "moving backward"
	case "left":
		run, status = c.Left, "turning left"
	case "right":
		run, status = c.Right, "turning right"
	case "stop":
		run, status = c.Stop, "stopping"
	default:
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownCommand, name, strings.Join(Commands, ", "))
	}
	if err := run(ctx); err != nil {
		return "", err
	}
	return status, nil
}

// Close stops the wheels and closes the driver. Calling it twice is a no-op.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	stopErr := c.Stop(context.Background())

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	return multierr.Combine(stopErr, c.drv.Close())
}
