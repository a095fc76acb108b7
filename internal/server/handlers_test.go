package server

import (
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/cone-finder/internal/imaging"
)

var orange = color.RGBA{255, 128, 64, 255}

// createConeImageFile writes a black PNG with orange squares given as
// {x, y, side}. After erosion a side of s traces an area of (s-5)^2.
func createConeImageFile(t *testing.T, width, height int, blocks ...[3]int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.Black)
		}
	}
	for _, b := range blocks {
		for y := b[1]; y < b[1]+b[2]; y++ {
			for x := b[0]; x < b[0]+b[2]; x++ {
				img.Set(x, y, orange)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// twoCones holds a 900 unit cone anchored at (32, 12) and a 1600 unit cone
// anchored at (72, 32).
func twoCones(t *testing.T) string {
	return createConeImageFile(t, 120, 80, [3]int{30, 10, 35}, [3]int{70, 30, 45})
}

// callTool runs a tools/call request and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPError {
	t.Helper()

	params := map[string]interface{}{"name": name, "arguments": args}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: paramsJSON})
	if resp.Error != nil {
		return resp.Error
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("failed to decode tool result %q: %v", text, err)
	}
	return nil
}

func decodePNG(t *testing.T, b64 string) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil, nil)
	resp := s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Params: json.RawMessage(`[1,2]`)})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := New(nil, nil)
	var out map[string]interface{}

	mcpErr := callTool(t, s, "image_ocr_full", nil, &out)
	if mcpErr == nil {
		t.Fatal("expected an error for an unknown tool")
	}
	if mcpErr.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", mcpErr.Code)
	}
}

func TestConeProfiles(t *testing.T) {
	s := New(nil, nil)
	var out profilesResult

	if mcpErr := callTool(t, s, "cone_profiles", nil, &out); mcpErr != nil {
		t.Fatalf("unexpected error: %+v", mcpErr)
	}
	if out.Default != "orange" {
		t.Errorf("default: got %q, want orange", out.Default)
	}

	var names []string
	for _, p := range out.Profiles {
		names = append(names, p.Name)
	}
	if got := strings.Join(names, ","); got != "orange,yellow,green,steve" {
		t.Errorf("profiles: got %s", got)
	}
}

func TestConeLoad(t *testing.T) {
	s := New(nil, nil)
	path := createConeImageFile(t, 100, 80)

	var out loadResult
	if mcpErr := callTool(t, s, "cone_load", map[string]interface{}{"path": path}, &out); mcpErr != nil {
		t.Fatalf("unexpected error: %+v", mcpErr)
	}
	if out.Width != 100 || out.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", out.Width, out.Height)
	}
	if s.cache.Len() != 1 {
		t.Errorf("cache size: got %d, want 1", s.cache.Len())
	}
}

func TestConeLoad_Errors(t *testing.T) {
	s := New(nil, nil)

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.png")},
		{"unsupported format", "/tmp/frame.bmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out loadResult
			if mcpErr := callTool(t, s, "cone_load", map[string]interface{}{"path": tt.path}, &out); mcpErr == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestConeDetectImage(t *testing.T) {
	s := New(nil, nil)
	path := twoCones(t)

	tests := []struct {
		name         string
		args         map[string]interface{}
		wantCount    int
		wantArea     float64
		wantSelected int
	}{
		{"first match", map[string]interface{}{"path": path}, 2, 900, 0},
		{"largest", map[string]interface{}{"path": path, "selection": "largest"}, 2, 1600, 1},
		{"min area", map[string]interface{}{"path": path, "min_area": 1000}, 1, 1600, 0},
		{"explicit color", map[string]interface{}{"path": path, "color": "Orange"}, 2, 900, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out detectResult
			if mcpErr := callTool(t, s, "cone_detect_image", tt.args, &out); mcpErr != nil {
				t.Fatalf("unexpected error: %+v", mcpErr)
			}
			if out.Profile.Name != "orange" {
				t.Errorf("profile: got %q", out.Profile.Name)
			}
			if len(out.Detections) != tt.wantCount {
				t.Fatalf("detections: got %d, want %d", len(out.Detections), tt.wantCount)
			}
			if out.Result == nil {
				t.Fatal("expected a result")
			}
			if out.Result.Area != tt.wantArea {
				t.Errorf("area: got %v, want %v", out.Result.Area, tt.wantArea)
			}
			if out.Selected != tt.wantSelected {
				t.Errorf("selected: got %d, want %d", out.Selected, tt.wantSelected)
			}
			if out.AnnotatedBase64 != "" {
				t.Error("annotation was not requested")
			}
		})
	}
}

func TestConeDetectImage_Annotate(t *testing.T) {
	s := New(nil, nil)
	path := twoCones(t)

	var out detectResult
	args := map[string]interface{}{"path": path, "annotate": true}
	if mcpErr := callTool(t, s, "cone_detect_image", args, &out); mcpErr != nil {
		t.Fatalf("unexpected error: %+v", mcpErr)
	}
	if out.MimeType != "image/png" {
		t.Errorf("MimeType: got %s", out.MimeType)
	}
	img := decodePNG(t, out.AnnotatedBase64)
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 80 {
		t.Errorf("annotated size: got %v", img.Bounds())
	}
}

func TestConeDetectImage_NothingFound(t *testing.T) {
	s := New(nil, nil)
	path := createConeImageFile(t, 60, 60, [3]int{10, 10, 15})

	var out detectResult
	if mcpErr := callTool(t, s, "cone_detect_image", map[string]interface{}{"path": path}, &out); mcpErr != nil {
		t.Fatalf("unexpected error: %+v", mcpErr)
	}
	if out.Result != nil {
		t.Errorf("unexpected result: %+v", out.Result)
	}
	if out.Selected != -1 {
		t.Errorf("selected: got %d, want -1", out.Selected)
	}
	if len(out.Candidates) != 1 || out.Candidates[0].Reason == "" {
		t.Errorf("expected one rejected candidate, got %+v", out.Candidates)
	}
}

func TestConeDetectImage_Errors(t *testing.T) {
	s := New(nil, nil)
	path := twoCones(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"unknown color", map[string]interface{}{"path": path, "color": "purple"}},
		{"unknown selection", map[string]interface{}{"path": path, "selection": "random"}},
		{"negative min area", map[string]interface{}{"path": path, "min_area": -1}},
		{"missing file", map[string]interface{}{"path": filepath.Join(t.TempDir(), "none.png")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out detectResult
			if mcpErr := callTool(t, s, "cone_detect_image", tt.args, &out); mcpErr == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestConeMask(t *testing.T) {
	s := New(nil, nil)
	path := twoCones(t)

	var out maskResult
	if mcpErr := callTool(t, s, "cone_mask", map[string]interface{}{"path": path}, &out); mcpErr != nil {
		t.Fatalf("unexpected error: %+v", mcpErr)
	}
	if out.Foreground != 31*31+41*41 {
		t.Errorf("foreground: got %d, want %d", out.Foreground, 31*31+41*41)
	}

	img := decodePNG(t, out.ImageBase64)
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 80 {
		t.Fatalf("mask size: got %v", img.Bounds())
	}
	if y, _, _, _ := img.At(40, 20).RGBA(); y != 0xffff {
		t.Errorf("cone pixel should be white, got %#x", y)
	}
	if y, _, _, _ := img.At(31, 11).RGBA(); y != 0 {
		t.Errorf("eroded pixel should be black, got %#x", y)
	}
}

func TestConeCrop(t *testing.T) {
	s := New(nil, nil)
	path := twoCones(t)

	tests := []struct {
		name         string
		args         map[string]interface{}
		wantX, wantY int
		wantW, wantH int
	}{
		{"selected with default padding", map[string]interface{}{"path": path}, 22, 2, 51, 51},
		{"no padding", map[string]interface{}{"path": path, "padding": 0}, 32, 12, 31, 31},
		{"scaled", map[string]interface{}{"path": path, "scale": 2.0}, 22, 2, 102, 102},
		{"second detection clipped", map[string]interface{}{"path": path, "index": 1}, 62, 22, 58, 58},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out imaging.CropResult
			if mcpErr := callTool(t, s, "cone_crop", tt.args, &out); mcpErr != nil {
				t.Fatalf("unexpected error: %+v", mcpErr)
			}
			if out.X != tt.wantX || out.Y != tt.wantY {
				t.Errorf("origin: got (%d,%d), want (%d,%d)", out.X, out.Y, tt.wantX, tt.wantY)
			}
			if out.Width != tt.wantW || out.Height != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", out.Width, out.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestConeCrop_Errors(t *testing.T) {
	s := New(nil, nil)
	path := twoCones(t)
	empty := createConeImageFile(t, 40, 40)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"index out of range", map[string]interface{}{"path": path, "index": 2}},
		{"negative padding", map[string]interface{}{"path": path, "padding": -3}},
		{"no cone", map[string]interface{}{"path": empty}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out imaging.CropResult
			if mcpErr := callTool(t, s, "cone_crop", tt.args, &out); mcpErr == nil {
				t.Error("expected an error")
			}
		})
	}
}
