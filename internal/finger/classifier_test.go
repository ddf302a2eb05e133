package finger

import (
	"testing"

	"github.com/ayusman/mudra/internal/detector/landmark"
)

func TestClassify_Poses(t *testing.T) {
	c := NewClassifier(DefaultMargin)

	tests := []struct {
		name string
		hand landmark.Hand
		want Raw
	}{
		{"fist", landmark.Fist(), Raw{}},
		{"open palm", landmark.OpenPalm(), Raw{true, true, true, true, true}},
		{"pointing", landmark.Pointing(), Raw{Index: true}},
		{"thumb only", landmark.WithFingers(true, false, false, false, false), Raw{Thumb: true}},
		{"peace", landmark.WithFingers(false, true, true, false, false), Raw{Index: true, Middle: true}},
		{"left open palm", landmark.MirrorX(landmark.OpenPalm()), Raw{true, true, true, true, true}},
		{"left fist", landmark.MirrorX(landmark.Fist()), Raw{}},
		{"left thumb only", landmark.MirrorX(landmark.WithFingers(true, false, false, false, false)), Raw{Thumb: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(&tt.hand)
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRightHand(t *testing.T) {
	right := landmark.OpenPalm()
	left := landmark.MirrorX(right)

	if !IsRightHand(&right) {
		t.Error("synthetic right hand should be classified right")
	}
	if IsRightHand(&left) {
		t.Error("mirrored hand should be classified left")
	}
}

func TestClassify_VerticalMargin(t *testing.T) {
	c := NewClassifier(0.02)
	hand := landmark.Fist()
	pip := hand.Points[landmark.IndexPIP].Y

	tests := []struct {
		name string
		tipY float64
		want bool
	}{
		{"tip below pip", pip + 0.05, false},
		{"tip level with pip", pip, false},
		{"tip inside margin", pip - 0.019, false},
		{"tip exactly at margin", pip - 0.02, false},
		{"tip clears margin", pip - 0.021, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := hand
			h.Points[landmark.IndexTip].Y = tt.tipY
			if got := c.Classify(&h)[Index]; got != tt.want {
				t.Errorf("index up = %v, want %v (tip %.3f, pip %.3f)", got, tt.want, tt.tipY, pip)
			}
		})
	}
}

func TestClassify_ThumbIgnoresVertical(t *testing.T) {
	c := NewClassifier(DefaultMargin)
	h := landmark.Fist()

	// Raise the thumb tip high above its joints without moving it sideways.
	h.Points[landmark.ThumbTip].Y = 0.05

	if c.Classify(&h)[Thumb] {
		t.Error("thumb must be judged on x only")
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(DefaultMargin)
	h := landmark.WithFingers(true, false, true, false, true)

	first := c.Classify(&h)
	for i := 0; i < 10; i++ {
		if got := c.Classify(&h); got != first {
			t.Fatalf("iteration %d: Classify() = %v, want %v", i, got, first)
		}
	}
}
