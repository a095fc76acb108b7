package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/cone-finder/internal/config"
	"github.com/ironsheep/cone-finder/internal/logging"
	"github.com/ironsheep/cone-finder/internal/profile"
	"github.com/ironsheep/cone-finder/internal/robot"
	"github.com/ironsheep/cone-finder/internal/server"
	"github.com/ironsheep/cone-finder/internal/session"
)

const (
	// Flags.
	flagConfig    = "config"
	flagColor     = "color"
	flagCamera    = "camera"
	flagDisplay   = "display"
	flagMaxFrames = "max-frames"
	flagSelection = "selection"
	flagRotate    = "rotate"
	flagMirror    = "mirror"
	flagOutline   = "outline-color"
	flagRobot     = "robot"
	flagPort      = "port"
	flagDebug     = "debug"
	flagJSON      = "json"

	flagDegrees = "degrees"
	flagRadius  = "radius"
)

// cliState is shared between the Before hook and the actions.
type cliState struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
}

func newApp() *cli.App {
	st := &cliState{}

	return &cli.App{
		Name:      "cone-finder",
		Usage:     "search camera frames for a colored cone",
		Version:   Version,
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from JSON `FILE`",
			},
			&cli.StringFlag{
				Name:  flagColor,
				Usage: "cone color profile (" + strings.Join(profile.Names(), ", ") + ")",
			},
			&cli.StringFlag{
				Name:  flagCamera,
				Usage: "webcam device number or a directory of frames",
			},
			&cli.StringFlag{
				Name:  flagDisplay,
				Usage: "window, none, or a directory to write annotated frames to",
			},
			&cli.IntFlag{
				Name:  flagMaxFrames,
				Usage: "give up after `N` frames (0 searches until interrupted)",
			},
			&cli.StringFlag{
				Name:  flagSelection,
				Usage: "pick among several cones in one frame: first or largest",
			},
			&cli.BoolFlag{
				Name:  flagRotate,
				Usage: "rotate frames 180 degrees for an upside-down camera",
			},
			&cli.BoolFlag{
				Name:  flagMirror,
				Usage: "mirror frames horizontally",
			},
			&cli.StringFlag{
				Name:  flagOutline,
				Usage: "hex `COLOR` of the outlines drawn on displayed frames",
			},
			&cli.StringFlag{
				Name:  flagRobot,
				Usage: "robot driver: serial, dryrun, or none",
			},
			&cli.StringFlag{
				Name:  flagPort,
				Usage: "serial `DEVICE` of the robot controller",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  flagJSON,
				Usage: "print results as JSON",
			},
		},
		Before: func(c *cli.Context) error {
			logger, err := logging.New("cone-finder", c.Bool(flagDebug))
			if err != nil {
				return err
			}
			st.logger = logger

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			st.cfg = cfg
			return nil
		},
		After: func(c *cli.Context) error {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
			return nil
		},
		Action: st.find,
		Commands: []*cli.Command{
			{
				Name:   "find",
				Usage:  "search frames until a cone is found (default)",
				Action: st.find,
			},
			{
				Name:   "serve",
				Usage:  "answer MCP tool calls on stdin/stdout for still-image detection",
				Action: st.serve,
			},
			{
				Name:      "drive",
				Usage:     "send one motion command to the robot",
				ArgsUsage: strings.Join(robot.Commands, "|"),
				Action:    st.drive,
			},
			{
				Name:  "orbit",
				Usage: "drive the robot around an arc",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagDegrees, Value: 90, Usage: "arc length in degrees (-360 to 360)"},
					&cli.IntFlag{Name: flagRadius, Value: 20, Usage: "arc radius in centimeters"},
				},
				Action: st.orbit,
			},
			{
				Name:  "servo",
				Usage: "point the distance sensor servo",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagDegrees, Value: robot.ServoCenter, Usage: "servo angle in degrees (0-180)"},
				},
				Action: st.servo,
			},
			{
				Name:   "distance",
				Usage:  "read the distance sensor",
				Action: st.distance,
			},
			{
				Name:   "profiles",
				Usage:  "list the color profiles",
				Action: st.profiles,
			},
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "cone-finder %s\n", Version)
					fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
					fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
					return nil
				},
			},
		},
	}
}

// loadConfig layers the config file, CONE_FINDER_* variables and flags, in
// that order.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if c.IsSet(flagColor) {
		cfg.Color = c.String(flagColor)
	}
	if c.IsSet(flagCamera) {
		cfg.SetCamera(c.String(flagCamera))
	}
	if c.IsSet(flagDisplay) {
		cfg.SetDisplay(c.String(flagDisplay))
	}
	if c.IsSet(flagMaxFrames) {
		cfg.Detect.MaxFrames = c.Int(flagMaxFrames)
	}
	if c.IsSet(flagSelection) {
		cfg.Detect.Selection = c.String(flagSelection)
	}
	if c.IsSet(flagRotate) {
		cfg.Camera.Transform.Rotate180 = c.Bool(flagRotate)
	}
	if c.IsSet(flagMirror) {
		cfg.Camera.Transform.Mirror = c.Bool(flagMirror)
	}
	if c.IsSet(flagOutline) {
		cfg.Detect.OutlineColor = c.String(flagOutline)
	}
	if c.IsSet(flagRobot) {
		cfg.Robot.Driver = strings.ToLower(c.String(flagRobot))
	}
	if c.IsSet(flagPort) {
		cfg.Robot.Port = c.String(flagPort)
	}
	return cfg, nil
}

// promptColor asks for a color on r until a line is entered.
func promptColor(r io.Reader, w io.Writer) (string, error) {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprintf(w, "Enter a color (%s): ", strings.Join(profile.Names(), ", "))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("%w: no color given", config.ErrInvalid)
		}
		if v := strings.TrimSpace(scanner.Text()); v != "" {
			return v, nil
		}
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (st *cliState) find(c *cli.Context) error {
	if c.Args().Present() {
		return fmt.Errorf("%w: unexpected argument %q", config.ErrInvalid, c.Args().First())
	}
	if st.cfg.Color == "" {
		v, err := promptColor(c.App.Reader, c.App.Writer)
		if err != nil {
			return err
		}
		st.cfg.Color = v
	}

	report, err := session.Run(c.Context, st.cfg, st.logger)
	if err != nil {
		return err
	}
	if c.Bool(flagJSON) {
		return writeJSON(c.App.Writer, report)
	}
	report.Print(c.App.Writer)
	return nil
}

func (st *cliState) serve(c *cli.Context) error {
	st.logger.Infow("serving tools", "version", Version, "default_color", st.cfg.Server.DefaultColor)
	server.Version = Version
	return server.New(st.cfg, st.logger).Serve(c.App.Reader, c.App.Writer)
}

// withRobot opens the configured robot for one command and always closes it.
func (st *cliState) withRobot(c *cli.Context, fn func(*robot.Controller) error) (err error) {
	if st.cfg.Robot.Driver == config.RobotNone {
		return fmt.Errorf("%w: no robot configured (use --robot serial or --robot dryrun)", config.ErrInvalid)
	}
	if err := st.cfg.Validate(); err != nil {
		return err
	}
	ctrl, err := session.OpenRobot(c.Context, st.cfg.Robot, st.logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ctrl.Close(); closeErr != nil {
			st.logger.Warnw("shutdown error", "error", closeErr)
		}
	}()
	return fn(ctrl)
}

func (st *cliState) drive(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("%w: drive takes one of %s", config.ErrInvalid, strings.Join(robot.Commands, ", "))
	}
	return st.withRobot(c, func(ctrl *robot.Controller) error {
		status, err := ctrl.Command(c.Context, c.Args().First())
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, status)
		return nil
	})
}

// orbit and servo leave range checks to the controller, which logs a bad
// angle and does not move.
func (st *cliState) orbit(c *cli.Context) error {
	return st.withRobot(c, func(ctrl *robot.Controller) error {
		return ctrl.Orbit(c.Context, c.Int(flagDegrees), c.Int(flagRadius))
	})
}

func (st *cliState) servo(c *cli.Context) error {
	return st.withRobot(c, func(ctrl *robot.Controller) error {
		return ctrl.RotateServo(c.Context, c.Int(flagDegrees))
	})
}

func (st *cliState) distance(c *cli.Context) error {
	return st.withRobot(c, func(ctrl *robot.Controller) error {
		mm, err := ctrl.ReadDistance(c.Context)
		if err != nil {
			return err
		}
		if c.Bool(flagJSON) {
			return writeJSON(c.App.Writer, map[string]int{"distance_mm": mm})
		}
		fmt.Fprintf(c.App.Writer, "%d mm\n", mm)
		return nil
	})
}

func (st *cliState) profiles(c *cli.Context) error {
	if c.Bool(flagJSON) {
		return writeJSON(c.App.Writer, profile.All())
	}
	for _, p := range profile.All() {
		fmt.Fprintln(c.App.Writer, p)
	}
	return nil
}
