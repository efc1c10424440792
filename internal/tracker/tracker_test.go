package tracker

import "testing"

func TestSampleAdvancesWithinTolerance(t *testing.T) {
	tr := NewPlaybackTracker(0, 100)

	tests := []struct {
		name       string
		current    float64
		advanced   bool
		maxWatched float64
	}{
		{name: "normal tick", current: 1.0, advanced: true, maxWatched: 1.0},
		{name: "another tick", current: 1.9, advanced: true, maxWatched: 1.9},
		{name: "stale sample behind max", current: 1.5, advanced: false, maxWatched: 1.9},
		{name: "jump past tolerance ignored", current: 30, advanced: false, maxWatched: 1.9},
		{name: "resume normal ticking", current: 2.8, advanced: true, maxWatched: 2.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.Sample(tt.current, 100); got != tt.advanced {
				t.Errorf("Sample(%v) = %v, want %v", tt.current, got, tt.advanced)
			}
			if tr.MaxWatched() != tt.maxWatched {
				t.Errorf("MaxWatched() = %v, want %v", tr.MaxWatched(), tt.maxWatched)
			}
		})
	}
}

func TestRequestSeekClamp(t *testing.T) {
	tr := NewPlaybackTracker(40, 100)

	if got := tr.RequestSeek(80); got != 40 {
		t.Errorf("forward seek to 80 = %v, want clamp to 40", got)
	}
	tr.SeekCompleted()

	if got := tr.RequestSeek(20); got != 20 {
		t.Errorf("backward seek to 20 = %v, want 20 unclamped", got)
	}
	tr.SeekCompleted()
	if tr.MaxWatched() != 40 {
		t.Errorf("MaxWatched() = %v, backward seek must not move it", tr.MaxWatched())
	}

	// landing inside the epsilon buffer is allowed
	if got := tr.RequestSeek(40.3); got != 40.3 {
		t.Errorf("seek to 40.3 = %v, want 40.3 within epsilon", got)
	}
}

func TestSamplesIgnoredWhileSeeking(t *testing.T) {
	tr := NewPlaybackTracker(10, 100)

	tr.RequestSeek(5)
	// scrubbing positions reported mid-seek must not count as watching
	if tr.Sample(11, 100) {
		t.Error("Sample() advanced during an in-flight seek")
	}
	if tr.MaxWatched() != 10 {
		t.Errorf("MaxWatched() = %v, want 10", tr.MaxWatched())
	}

	tr.SeekCompleted()
	if !tr.Sample(11, 100) {
		t.Error("Sample() did not advance after the seek settled")
	}
}

func TestPercentBounds(t *testing.T) {
	tests := []struct {
		name     string
		seed     float64
		duration float64
		want     float64
	}{
		{name: "zero duration yields zero", seed: 50, duration: 0, want: 0},
		{name: "capped at 100", seed: 150, duration: 100, want: 100},
		{name: "halfway", seed: 50, duration: 100, want: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewPlaybackTracker(tt.seed, tt.duration)
			if got := tr.Percent(); got != tt.want {
				t.Errorf("Percent() = %v, want %v", got, tt.want)
			}
		})
	}
}
