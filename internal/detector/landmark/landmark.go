// Package landmark holds the 21-point hand model produced by the pose
// estimator, its wire decoding and synthetic poses for tests.
package landmark

import (
	"encoding/json"
	"fmt"
)

// Hand landmark indices following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

var names = [NumLandmarks]string{
	"wrist",
	"thumb_cmc", "thumb_mcp", "thumb_ip", "thumb_tip",
	"index_mcp", "index_pip", "index_dip", "index_tip",
	"middle_mcp", "middle_pip", "middle_dip", "middle_tip",
	"ring_mcp", "ring_pip", "ring_dip", "ring_tip",
	"pinky_mcp", "pinky_pip", "pinky_dip", "pinky_tip",
}

// Name returns the snake_case name of landmark i.
func Name(i int) string {
	if i < 0 || i >= NumLandmarks {
		return fmt.Sprintf("landmark_%d", i)
	}
	return names[i]
}

// Point is a landmark position. X and Y are normalized image coordinates
// in [0,1] with Y growing downwards; Z is relative depth.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is one detected hand: the 21 landmarks in MediaPipe order.
type Hand struct {
	Points     [NumLandmarks]Point `json:"points"`
	Handedness string              `json:"handedness"` // "Left" or "Right" as reported by the estimator
	Score      float64             `json:"score"`
}

// jsonHand is the wire form produced by the MediaPipe service.
type jsonHand struct {
	Points     []Point `json:"points"`
	Handedness string  `json:"handedness"`
	Score      float64 `json:"score"`
}

// toHand converts a wire hand. Hands missing landmarks cannot be
// classified and are reported as not ok.
func (h jsonHand) toHand() (Hand, bool) {
	if len(h.Points) < NumLandmarks {
		return Hand{}, false
	}

	lm := Hand{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	copy(lm.Points[:], h.Points[:NumLandmarks])
	return lm, true
}

// Decode parses one response line of the MediaPipe service,
// {"hands":[{"points":[...],"handedness":"Right","score":0.9}]}.
// Incomplete hands are dropped.
func Decode(data []byte) ([]Hand, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
		Error string     `json:"error,omitempty"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("mediapipe service: %s", response.Error)
	}

	hands := make([]Hand, 0, len(response.Hands))
	for _, h := range response.Hands {
		if lm, ok := h.toHand(); ok {
			hands = append(hands, lm)
		}
	}
	return hands, nil
}
