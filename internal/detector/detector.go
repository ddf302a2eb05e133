// Package detector provides the hand-pose estimator boundary: the Detector
// interface, the MediaPipe bridge and a scripted mock.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector/landmark"
)

// Detector defines the interface for hand-pose estimators.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]landmark.Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ModelComplexity selects the landmark model: 0 is faster, 1 more accurate.
	ModelComplexity int
}

// DefaultConfig returns the settings the LED controller is tuned for:
// a single hand, fast model.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.6,
		ModelComplexity: 0,
	}
}
