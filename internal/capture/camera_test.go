package capture

import (
	"errors"
	"testing"
)

func TestNewCameraWithOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want Options
	}{
		{"zero options", Options{}, Options{Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS}},
		{"defaults", DefaultOptions(), DefaultOptions()},
		{"second device", Options{DeviceID: 1}, Options{DeviceID: 1, Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS}},
		{"custom size", Options{Width: 1280, Height: 720, FPS: 15}, Options{Width: 1280, Height: 720, FPS: 15}},
		{"negative rate", Options{FPS: -1}, Options{Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCameraWithOptions(tt.opts)
			impl := cam.(*cameraImpl)
			if impl.opts != tt.want {
				t.Errorf("options = %+v, want %+v", impl.opts, tt.want)
			}
			if got := cam.FPS(); got != tt.want.FPS {
				t.Errorf("FPS() = %d, want %d", got, tt.want.FPS)
			}
			if cam.IsOpen() {
				t.Error("camera open before Open()")
			}
		})
	}
}

func TestCamera_NotOpened(t *testing.T) {
	cam := NewCamera(0)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera = %v, want nil", err)
	}
}

func TestCamera_Device(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping camera hardware test in short mode")
	}

	cam := NewCamera(0)
	if err := cam.Open(); err != nil {
		t.Skipf("camera not available: %v", err)
	}
	defer cam.Close()

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer mat.Close()

	if mat.Empty() {
		t.Fatal("ReadFrame() returned empty frame")
	}
	before := mat.GetVecbAt(0, 0)[0]
	MirrorInPlace(mat)
	if after := mat.GetVecbAt(0, mat.Cols()-1)[0]; after != before {
		t.Errorf("mirrored right edge = %d, want left edge %d", after, before)
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if cam.IsOpen() {
		t.Error("camera open after Close()")
	}
}
