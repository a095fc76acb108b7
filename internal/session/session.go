// Package session wires configuration, hardware and the detection loop into
// one cone search.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ironsheep/cone-finder/internal/camera"
	"github.com/ironsheep/cone-finder/internal/config"
	"github.com/ironsheep/cone-finder/internal/finder"
	"github.com/ironsheep/cone-finder/internal/profile"
	"github.com/ironsheep/cone-finder/internal/robot"
)

// Process exit codes.
const (
	ExitFound    = 0
	ExitNotFound = 1
	ExitConfig   = 2
	ExitHardware = 3
)

// ExitCode maps the error returned by Run to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitFound
	case errors.Is(err, config.ErrInvalid), errors.Is(err, profile.ErrUnknownProfile):
		return ExitConfig
	case errors.Is(err, robot.ErrHardwareInit), errors.Is(err, finder.ErrFrameRead):
		return ExitHardware
	default:
		return ExitNotFound
	}
}

// Session holds the collaborators of one run. The open functions are
// replaceable so tests can run without devices.
type Session struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	openRobot  func(context.Context, config.RobotConfig, *zap.SugaredLogger) (*robot.Controller, error)
	openSource func(config.CameraConfig) (camera.Source, error)
	openSink   func(config.DisplayConfig) (camera.Sink, error)
}

// New returns a session for cfg. A nil logger logs nothing.
func New(cfg *config.Config, logger *zap.SugaredLogger) *Session {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Session{
		cfg:        cfg,
		logger:     logger,
		openRobot:  OpenRobot,
		openSource: OpenSource,
		openSink:   OpenSink,
	}
}

// Run is shorthand for New(cfg, logger).Run(ctx).
func Run(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*Report, error) {
	return New(cfg, logger).Run(ctx)
}

// Run searches for the configured cone.
//
// The configuration and profile are checked before any hardware is touched.
// Hardware comes up in the order robot, camera, display, and goes down in
// reverse. Errors while shutting down are logged, never returned.
func (s *Session) Run(ctx context.Context) (*Report, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := profile.Lookup(s.cfg.Color)
	if err != nil {
		return nil, err
	}
	log := s.logger.With("profile", p.Name)

	var closers []func() error
	defer func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i]())
		}
		for _, e := range multierr.Errors(errs) {
			log.Warnw("shutdown error", "error", e)
		}
	}()

	var ctrl *robot.Controller
	if s.cfg.Robot.Driver != config.RobotNone {
		ctrl, err = s.openRobot(ctx, s.cfg.Robot, log)
		if err != nil {
			return nil, err
		}
		closers = append(closers, ctrl.Close)
	}

	src, err := s.openSource(s.cfg.Camera)
	if err != nil {
		return nil, err
	}
	src = camera.NewTransform(src, s.cfg.Camera.Transform)

	sink, err := s.openSink(s.cfg.Display)
	if err != nil {
		_ = src.Release()
		return nil, err
	}
	if c, ok := sink.(io.Closer); ok {
		closers = append(closers, c.Close)
	}

	loop := finder.New(p, src, sink, s.cfg.LoopOptions(), log)
	loop.OnTransition(func(from, to finder.State) {
		log.Debugw("state", "from", from, "to", to, "cycle", loop.Cycles())
	})

	log.Infow("searching", "min", p.Min, "max", p.Max, "max_frames", s.cfg.Detect.MaxFrames)
	res, err := loop.Run(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Color: p.Name, Result: res}
	if ctrl != nil && s.cfg.Robot.ReadDistance {
		mm, err := ctrl.ReadDistance(ctx)
		if err != nil {
			log.Warnw("distance read failed", "error", err)
		} else {
			report.DistanceMM = &mm
		}
	}

	log.Infow("cone found", "area", res.Area, "x", res.Centroid.X, "y", res.Centroid.Y, "cycles", res.Cycles)
	return report, nil
}

// OpenRobot connects the configured driver and runs the controller handshake.
func OpenRobot(ctx context.Context, cfg config.RobotConfig, logger *zap.SugaredLogger) (*robot.Controller, error) {
	var drv robot.Driver
	switch cfg.Driver {
	case config.RobotSerial:
		sd, err := robot.OpenSerial(cfg.Port, cfg.Serial)
		if err != nil {
			return nil, err
		}
		drv = sd
	case config.RobotDryRun:
		drv = robot.NewDryRunDriver(cfg.DryRunDistance, logger)
	default:
		return nil, fmt.Errorf("%w: unknown robot driver %q", config.ErrInvalid, cfg.Driver)
	}
	return robot.NewController(ctx, drv, robot.Options{Speed: cfg.Speed}, logger)
}

// OpenSource opens the configured camera or frame directory.
func OpenSource(cfg config.CameraConfig) (camera.Source, error) {
	switch cfg.Kind {
	case config.CameraDir:
		src, err := camera.NewDirSource(cfg.Dir, cfg.Loop)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", robot.ErrHardwareInit, err)
		}
		return src, nil
	case config.CameraDevice:
		dev, err := camera.OpenDevice(cfg.DeviceID, cfg.Width, cfg.Height)
		if err != nil {
			return nil, fmt.Errorf("%w: webcam: %w", robot.ErrHardwareInit, err)
		}
		return dev, nil
	}
	return nil, fmt.Errorf("%w: unknown camera kind %q", config.ErrInvalid, cfg.Kind)
}

// OpenSink opens the configured display.
func OpenSink(cfg config.DisplayConfig) (camera.Sink, error) {
	switch cfg.Kind {
	case config.DisplayNone:
		return camera.NopSink{}, nil
	case config.DisplayDir:
		sink, err := camera.NewDirSink(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", robot.ErrHardwareInit, err)
		}
		return sink, nil
	case config.DisplayWindow:
		win, err := camera.OpenWindow(cfg.Title)
		if err != nil {
			return nil, fmt.Errorf("%w: display: %w", robot.ErrHardwareInit, err)
		}
		return win, nil
	}
	return nil, fmt.Errorf("%w: unknown display kind %q", config.ErrInvalid, cfg.Kind)
}
