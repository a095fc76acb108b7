// Package config holds the settings of a cone-finder session.
//
// A Config starts from Default, is overlaid with a JSON file (Load), then with
// CONE_FINDER_* environment variables (ApplyEnv), and finally with command
// line flags by the caller. Validate runs last.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ironsheep/cone-finder/internal/camera"
	"github.com/ironsheep/cone-finder/internal/detection"
	"github.com/ironsheep/cone-finder/internal/finder"
	"github.com/ironsheep/cone-finder/internal/imaging"
	"github.com/ironsheep/cone-finder/internal/robot"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONE_FINDER_"

const maxFileSize = 1 << 20

// Camera kinds.
const (
	CameraDevice = "device"
	CameraDir    = "dir"
)

// Display kinds.
const (
	DisplayWindow = "window"
	DisplayDir    = "dir"
	DisplayNone   = "none"
)

// Robot drivers.
const (
	RobotSerial = "serial"
	RobotDryRun = "dryrun"
	RobotNone   = "none"
)

// Config is the full session configuration.
type Config struct {
	// Color names the profile to look for. Empty means ask on stdin.
	Color string `json:"color"`

	Camera  CameraConfig  `json:"camera"`
	Display DisplayConfig `json:"display"`
	Detect  DetectConfig  `json:"detect"`
	Robot   RobotConfig   `json:"robot"`
	Server  ServerConfig  `json:"server"`
}

// CameraConfig selects the frame source.
type CameraConfig struct {
	Kind      string                  `json:"kind"`
	DeviceID  int                     `json:"device_id"`
	Width     int                     `json:"width"`
	Height    int                     `json:"height"`
	Dir       string                  `json:"dir"`
	Loop      bool                    `json:"loop"`
	Transform camera.TransformOptions `json:"transform"`
}

// DisplayConfig selects the presentation sink.
type DisplayConfig struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Dir   string `json:"dir"`
}

// DetectConfig tunes the detection loop.
type DetectConfig struct {
	MaxFrames        int                     `json:"max_frames"`
	Selection        string                  `json:"selection"`
	Filter           detection.FilterOptions `json:"filter"`
	OutlineThickness int                     `json:"outline_thickness"`

	// OutlineColor is the hex stroke color of drawn polygons, "#RRGGBB" or "#RRGGBBAA".
	OutlineColor string `json:"outline_color"`
}

// RobotConfig selects the actuation driver.
type RobotConfig struct {
	Driver string            `json:"driver"`
	Port   string            `json:"port"`
	Serial robot.PortOptions `json:"serial"`
	Speed  int               `json:"speed"`

	// DryRunDistance is the reading reported by the dry-run driver, in mm.
	DryRunDistance int `json:"dry_run_distance"`

	// ReadDistance reads the distance sensor after a cone is found.
	ReadDistance bool `json:"read_distance"`
}

// ServerConfig tunes the tool server.
type ServerConfig struct {
	// DefaultColor is used when a tool call names no profile.
	DefaultColor string `json:"default_color"`
}

// Default returns the built-in configuration: camera 0 shown in a window,
// no robot, unbounded first-match detection.
func Default() *Config {
	serial, _ := robot.PortOptions{}.Normalize()
	return &Config{
		Camera: CameraConfig{
			Kind: CameraDevice,
		},
		Display: DisplayConfig{
			Kind:  DisplayWindow,
			Title: "Frame",
		},
		Detect: DetectConfig{
			Selection:        string(finder.SelectFirst),
			Filter:           detection.DefaultFilterOptions(),
			OutlineThickness: 3,
			OutlineColor:     "#000000",
		},
		Robot: RobotConfig{
			Driver:         RobotNone,
			Serial:         serial,
			Speed:          robot.DefaultSpeed,
			DryRunDistance: 1000,
			ReadDistance:   true,
		},
		Server: ServerConfig{
			DefaultColor: "orange",
		},
	}
}

// Load reads a JSON config file over the defaults. Fields missing from the
// file keep their default values; unknown fields are an error.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays CONE_FINDER_* variables:
//
//	CONE_FINDER_COLOR        profile name
//	CONE_FINDER_CAMERA       device number, or a directory of frames
//	CONE_FINDER_DISPLAY      window, none, or a directory for PNG dumps
//	CONE_FINDER_MAX_FRAMES   frame budget
//	CONE_FINDER_SELECTION    first or largest
//	CONE_FINDER_ROBOT        serial, dryrun, or none
//	CONE_FINDER_ROBOT_PORT   serial device path
func (c *Config) ApplyEnv() error {
	if v, ok := lookup("COLOR"); ok {
		c.Color = v
	}
	if v, ok := lookup("CAMERA"); ok {
		c.SetCamera(v)
	}
	if v, ok := lookup("DISPLAY"); ok {
		c.SetDisplay(v)
	}
	if v, ok := lookup("MAX_FRAMES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sMAX_FRAMES=%q is not a number", ErrInvalid, EnvPrefix, v)
		}
		c.Detect.MaxFrames = n
	}
	if v, ok := lookup("SELECTION"); ok {
		c.Detect.Selection = v
	}
	if v, ok := lookup("OUTLINE_COLOR"); ok {
		c.Detect.OutlineColor = v
	}
	if v, ok := lookup("ROBOT"); ok {
		c.Robot.Driver = strings.ToLower(v)
	}
	if v, ok := lookup("ROBOT_PORT"); ok {
		c.Robot.Port = v
	}
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// SetCamera points the camera at a device number or a frame directory.
func (c *Config) SetCamera(v string) {
	if id, err := strconv.Atoi(v); err == nil {
		c.Camera.Kind = CameraDevice
		c.Camera.DeviceID = id
		return
	}
	c.Camera.Kind = CameraDir
	c.Camera.Dir = v
}

// SetDisplay selects the window, no display, or a dump directory.
func (c *Config) SetDisplay(v string) {
	switch strings.ToLower(v) {
	case DisplayWindow, DisplayNone:
		c.Display.Kind = strings.ToLower(v)
	default:
		c.Display.Kind = DisplayDir
		c.Display.Dir = v
	}
}

// Validate checks every section and returns the first problem wrapped in ErrInvalid.
func (c *Config) Validate() error {
	switch c.Camera.Kind {
	case CameraDevice:
		if c.Camera.DeviceID < 0 {
			return fmt.Errorf("%w: camera device_id must be non-negative, got %d", ErrInvalid, c.Camera.DeviceID)
		}
	case CameraDir:
		if c.Camera.Dir == "" {
			return fmt.Errorf("%w: camera kind %q needs dir", ErrInvalid, CameraDir)
		}
	default:
		return fmt.Errorf("%w: unknown camera kind %q", ErrInvalid, c.Camera.Kind)
	}
	if c.Camera.Width < 0 || c.Camera.Height < 0 || c.Camera.Transform.MaxWidth < 0 {
		return fmt.Errorf("%w: camera sizes must be non-negative", ErrInvalid)
	}

	switch c.Display.Kind {
	case DisplayWindow, DisplayNone:
	case DisplayDir:
		if c.Display.Dir == "" {
			return fmt.Errorf("%w: display kind %q needs dir", ErrInvalid, DisplayDir)
		}
	default:
		return fmt.Errorf("%w: unknown display kind %q", ErrInvalid, c.Display.Kind)
	}

	if c.Detect.MaxFrames < 0 {
		return fmt.Errorf("%w: max_frames must be non-negative, got %d", ErrInvalid, c.Detect.MaxFrames)
	}
	if _, err := finder.ParseSelection(c.Detect.Selection); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	f := c.Detect.Filter
	if f.MinArea < 0 {
		return fmt.Errorf("%w: filter min_area must be non-negative, got %g", ErrInvalid, f.MinArea)
	}
	if f.Vertices < 3 {
		return fmt.Errorf("%w: filter vertices must be at least 3, got %d", ErrInvalid, f.Vertices)
	}
	if f.EpsilonFactor <= 0 || f.EpsilonFactor >= 1 {
		return fmt.Errorf("%w: filter epsilon_factor must be in (0, 1), got %g", ErrInvalid, f.EpsilonFactor)
	}
	if _, err := imaging.ParseHexColor(c.Detect.OutlineColor); err != nil {
		return fmt.Errorf("%w: outline_color %q: %w", ErrInvalid, c.Detect.OutlineColor, err)
	}

	switch c.Robot.Driver {
	case RobotNone, RobotDryRun:
	case RobotSerial:
		if c.Robot.Port == "" {
			return fmt.Errorf("%w: robot driver %q needs port", ErrInvalid, RobotSerial)
		}
		if _, err := c.Robot.Serial.Normalize(); err != nil {
			return fmt.Errorf("%w: robot serial: %w", ErrInvalid, err)
		}
	default:
		return fmt.Errorf("%w: unknown robot driver %q", ErrInvalid, c.Robot.Driver)
	}
	if c.Robot.Speed < 0 {
		return fmt.Errorf("%w: robot speed must be non-negative, got %d", ErrInvalid, c.Robot.Speed)
	}

	return nil
}

// LoopOptions converts the detect section into finder options. Call Validate first.
func (c *Config) LoopOptions() finder.Options {
	sel, _ := finder.ParseSelection(c.Detect.Selection)
	stroke, _ := imaging.ParseHexColor(c.Detect.OutlineColor)
	return finder.Options{
		MaxFrames:        c.Detect.MaxFrames,
		Selection:        sel,
		Filter:           c.Detect.Filter,
		OutlineThickness: c.Detect.OutlineThickness,
		OutlineColor:     stroke,
	}
}
