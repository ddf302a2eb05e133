package finger

import "github.com/ayusman/mudra/internal/detector/landmark"

// DefaultMargin is the vertical margin, in normalized image units, a
// fingertip must clear above its middle joint to count as up.
const DefaultMargin = 0.02

// Classifier maps a hand's landmarks to raw finger states.
type Classifier struct {
	// Margin suppresses flicker for near-straight fingers hovering at the
	// boundary. Smaller y is higher on screen.
	Margin float64
}

// NewClassifier returns a Classifier with the given vertical margin.
func NewClassifier(margin float64) Classifier {
	return Classifier{Margin: margin}
}

// tipAndPIP pairs each vertical finger with its tip and middle joint.
var tipAndPIP = [Count][2]int{
	Index:  {landmark.IndexTip, landmark.IndexPIP},
	Middle: {landmark.MiddleTip, landmark.MiddlePIP},
	Ring:   {landmark.RingTip, landmark.RingPIP},
	Pinky:  {landmark.PinkyTip, landmark.PinkyPIP},
}

// IsRightHand infers orientation from the thumb: in a mirrored image the
// thumb tip of a right hand lies left of the thumb's base joint.
func IsRightHand(h *landmark.Hand) bool {
	return h.Points[landmark.ThumbTip].X < h.Points[landmark.ThumbMCP].X
}

// Classify returns the raw up/down reading for every finger.
//
// The thumb moves laterally, so it is judged on x against its IP joint,
// with the direction depending on hand orientation. The other fingers are
// up when the tip is above the PIP joint by more than Margin.
func (c Classifier) Classify(h *landmark.Hand) Raw {
	var raw Raw

	tip := h.Points[landmark.ThumbTip].X
	ip := h.Points[landmark.ThumbIP].X
	if IsRightHand(h) {
		raw[Thumb] = tip < ip
	} else {
		raw[Thumb] = tip > ip
	}

	for _, f := range [...]ID{Index, Middle, Ring, Pinky} {
		pair := tipAndPIP[f]
		raw[f] = h.Points[pair[0]].Y < h.Points[pair[1]].Y-c.Margin
	}

	return raw
}
