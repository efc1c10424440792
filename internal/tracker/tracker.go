package tracker

// PlaybackTracker folds raw playback samples into a monotonic furthest-point
// record and clamps forward seeks past it. It mirrors the player-side state:
// one instance per lesson part, seeded from the last value the server knows.
//
// The tracker is not safe for concurrent use; the playback event loop that
// feeds it is single threaded.
type PlaybackTracker struct {
	maxWatched       float64
	duration         float64
	forwardTolerance float64
	seekEpsilon      float64
	seeking          bool
}

// Option tracker tuning knob
type Option func(*PlaybackTracker)

// WithForwardTolerance max advance per sample counted as normal playback, seconds
func WithForwardTolerance(seconds float64) Option {
	return func(t *PlaybackTracker) {
		t.forwardTolerance = seconds
	}
}

// WithSeekEpsilon buffer past maxWatched a seek may still land on, seconds
func WithSeekEpsilon(seconds float64) Option {
	return func(t *PlaybackTracker) {
		t.seekEpsilon = seconds
	}
}

// NewPlaybackTracker create a tracker seeded with the server-known furthest point
func NewPlaybackTracker(seedMaxWatched, duration float64, opts ...Option) *PlaybackTracker {
	t := &PlaybackTracker{
		maxWatched:       seedMaxWatched,
		duration:         duration,
		forwardTolerance: 2,
		seekEpsilon:      0.5,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Sample feed a playback position sample. Returns true when maxWatched
// advanced. Samples taken while a seek is in flight are ignored so a
// fast-forward drag is not miscounted as normal playback.
func (t *PlaybackTracker) Sample(currentTime, duration float64) bool {
	if duration > 0 {
		t.duration = duration
	}
	if t.seeking {
		return false
	}
	delta := currentTime - t.maxWatched
	if delta <= 0 || delta >= t.forwardTolerance {
		return false
	}
	t.maxWatched = currentTime
	return true
}

// RequestSeek clamp a seek request before it takes effect. Requests past
// maxWatched plus the epsilon buffer land on maxWatched; backward seeks pass
// through untouched. The returned position is what the player should apply.
func (t *PlaybackTracker) RequestSeek(target float64) float64 {
	t.seeking = true
	if target > t.maxWatched+t.seekEpsilon {
		return t.maxWatched
	}
	return target
}

// SeekCompleted mark the in-flight seek as settled; sampling resumes
func (t *PlaybackTracker) SeekCompleted() {
	t.seeking = false
}

// MaxWatched furthest point reached, seconds
func (t *PlaybackTracker) MaxWatched() float64 {
	return t.maxWatched
}

// Percent watch progress derived from the furthest point, in [0,100]
func (t *PlaybackTracker) Percent() float64 {
	if t.duration <= 0 {
		return 0
	}
	percent := t.maxWatched / t.duration * 100
	if percent > 100 {
		return 100
	}
	return percent
}
