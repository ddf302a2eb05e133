package landmark

// Geometry used by the synthetic poses. Coordinates describe a right hand
// as seen in a mirrored camera image: the thumb sits on the left of the
// palm and points further left when extended.
const (
	poseThumbMCPX    = 0.60
	poseThumbIPX     = 0.55
	poseThumbUpX     = 0.47
	poseThumbFoldedX = 0.57
	posePIPY         = 0.50
	poseTipUpY       = 0.30
	poseTipDownY     = 0.56
)

// WithFingers builds a right hand whose fingers are extended or folded
// as given, in thumb, index, middle, ring, pinky order.
func WithFingers(thumb, index, middle, ring, pinky bool) Hand {
	h := Hand{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point{X: 0.50, Y: 0.85}

	thumbTipX := poseThumbFoldedX
	if thumb {
		thumbTipX = poseThumbUpX
	}
	h.Points[ThumbCMC] = Point{X: 0.58, Y: 0.78}
	h.Points[ThumbMCP] = Point{X: poseThumbMCPX, Y: 0.72}
	h.Points[ThumbIP] = Point{X: poseThumbIPX, Y: 0.68}
	h.Points[ThumbTip] = Point{X: thumbTipX, Y: 0.66}

	fingers := []struct {
		mcp int
		x   float64
		up  bool
	}{
		{IndexMCP, 0.46, index},
		{MiddleMCP, 0.42, middle},
		{RingMCP, 0.38, ring},
		{PinkyMCP, 0.34, pinky},
	}
	for _, f := range fingers {
		tipY := poseTipDownY
		dipY := 0.58
		if f.up {
			tipY = poseTipUpY
			dipY = 0.40
		}
		h.Points[f.mcp] = Point{X: f.x, Y: 0.65}
		h.Points[f.mcp+1] = Point{X: f.x, Y: posePIPY}
		h.Points[f.mcp+2] = Point{X: f.x, Y: dipY}
		h.Points[f.mcp+3] = Point{X: f.x, Y: tipY}
	}

	return h
}

// MirrorX flips a hand horizontally, turning the synthetic right hand into
// a left hand.
func MirrorX(h Hand) Hand {
	out := h
	for i := range out.Points {
		out.Points[i].X = 1 - out.Points[i].X
	}
	switch h.Handedness {
	case "Right":
		out.Handedness = "Left"
	case "Left":
		out.Handedness = "Right"
	}
	return out
}

// Fist returns a hand with every finger folded.
func Fist() Hand {
	return WithFingers(false, false, false, false, false)
}

// OpenPalm returns a hand with every finger extended.
func OpenPalm() Hand {
	return WithFingers(true, true, true, true, true)
}

// Pointing returns a hand with only the index finger extended.
func Pointing() Hand {
	return WithFingers(false, true, false, false, false)
}
