package landmark

import (
	"fmt"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{Wrist, "wrist"},
		{ThumbTip, "thumb_tip"},
		{IndexPIP, "index_pip"},
		{PinkyTip, "pinky_tip"},
		{NumLandmarks, "landmark_21"},
		{-1, "landmark_-1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Name(tt.index); got != tt.want {
				t.Errorf("Name(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}
}

func handJSON(points int) string {
	pts := make([]string, points)
	for i := range pts {
		pts[i] = fmt.Sprintf(`{"x":%.2f,"y":0.5,"z":0}`, float64(i)/100)
	}
	return fmt.Sprintf(`{"points":[%s],"handedness":"Right","score":0.9}`, strings.Join(pts, ","))
}

func TestDecode(t *testing.T) {
	t.Run("complete hand", func(t *testing.T) {
		hands, err := Decode([]byte(`{"hands":[` + handJSON(NumLandmarks) + `]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Handedness != "Right" {
			t.Errorf("expected handedness Right, got %s", hands[0].Handedness)
		}
		if hands[0].Points[PinkyTip].X != 0.20 {
			t.Errorf("expected pinky tip x 0.20, got %f", hands[0].Points[PinkyTip].X)
		}
	})

	t.Run("incomplete hand is dropped", func(t *testing.T) {
		data := `{"hands":[` + handJSON(12) + `,` + handJSON(NumLandmarks) + `]}`
		hands, err := Decode([]byte(data))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Errorf("expected only the complete hand, got %d", len(hands))
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := Decode([]byte(`{"hands":[]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected no hands, got %d", len(hands))
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := Decode([]byte(`{"error":"model missing"}`)); err == nil {
			t.Error("expected error for service error response")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if _, err := Decode([]byte(`{"hands":`)); err == nil {
			t.Error("expected error for malformed json")
		}
	})
}

func TestWithFingers(t *testing.T) {
	t.Run("extended fingers have tips above pip", func(t *testing.T) {
		h := OpenPalm()
		for _, tip := range []int{IndexTip, MiddleTip, RingTip, PinkyTip} {
			if h.Points[tip].Y >= h.Points[tip-2].Y {
				t.Errorf("%s should be above its pip", Name(tip))
			}
		}
	})

	t.Run("folded fingers have tips below pip", func(t *testing.T) {
		h := Fist()
		for _, tip := range []int{IndexTip, MiddleTip, RingTip, PinkyTip} {
			if h.Points[tip].Y <= h.Points[tip-2].Y {
				t.Errorf("%s should be below its pip", Name(tip))
			}
		}
	})

	t.Run("mirror flips handedness and x", func(t *testing.T) {
		h := Pointing()
		m := MirrorX(h)

		if m.Handedness != "Left" {
			t.Errorf("expected Left, got %s", m.Handedness)
		}
		if got, want := m.Points[ThumbTip].X, 1-h.Points[ThumbTip].X; got != want {
			t.Errorf("thumb tip x = %f, want %f", got, want)
		}
		if m.Points[IndexTip].Y != h.Points[IndexTip].Y {
			t.Error("mirroring must not change y")
		}
	})
}
