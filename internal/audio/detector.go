package audio

// DetectorConfig holds the tunable parameters for voice activity detection.
type DetectorConfig struct {
	Threshold      float64 // linear RMS level at or above which speech starts
	DeadbandFactor float64 // fraction of Threshold below which speech ends
	FlickerEnabled bool    // pulse the talking state instead of holding it
}

// ActivityDetector turns a stream of RMS measurements into a speech on/off
// signal with hysteresis. Activation requires the level to reach Threshold;
// deactivation requires it to drop below Threshold*DeadbandFactor. Levels in
// between hold the previous state, which keeps natural speech pauses from
// toggling the output.
//
// The detector carries no lock: it is owned exclusively by the capture
// goroutine that feeds it.
type ActivityDetector struct {
	active bool
}

// NewActivityDetector creates a detector in the inactive state.
func NewActivityDetector() *ActivityDetector {
	return &ActivityDetector{}
}

// Update feeds one RMS measurement and returns the resulting activity state.
func (d *ActivityDetector) Update(rms float64, cfg DetectorConfig) bool {
	if d.active {
		if rms < cfg.Threshold*cfg.DeadbandFactor {
			d.active = false
		}
	} else if rms >= cfg.Threshold {
		d.active = true
	}
	return d.active
}

// Active returns the current activity state.
func (d *ActivityDetector) Active() bool {
	return d.active
}

// Reset returns the detector to the inactive state.
func (d *ActivityDetector) Reset() {
	d.active = false
}
