package pitch

import "fmt"

// SearchConfig holds the tunable constants of [Search].
type SearchConfig struct {
	// OctaveSteps is the number of grid frequencies per octave.
	OctaveSteps int
	// CoarseStride is the grid stride of the coarse pass.
	CoarseStride int
	// CoarseThreshold is the coarse score that starts a local hill climb.
	CoarseThreshold float64
	// PeakThreshold is the minimum dense score of an accepted peak.
	PeakThreshold float64
	// PeakHalfWidth bounds the hill climb to ±PeakHalfWidth grid steps.
	PeakHalfWidth int
	// FlankDistance is the grid distance of the peakiness flanks.
	FlankDistance int
	// MinPeakiness is the peak/flank ratio required for a fresh pitch.
	MinPeakiness float64
	// ContinuityPeakiness is the relaxed ratio used near the previous pitch.
	ContinuityPeakiness float64
	// ContinuityDistance is the grid distance within which the previous
	// pitch counts as near.
	ContinuityDistance int
	// CrossoverHz splits the grid: higher candidates are scored on the high
	// band window, the rest on the low band window.
	CrossoverHz float64
	// FineSize is the number of ratios of the fine pass. Must be odd.
	FineSize int
	// FineRatio is the frequency ratio between neighbouring fine candidates.
	FineRatio float64
}

// SearchOption mutates a SearchConfig.
type SearchOption func(*SearchConfig)

// DefaultSearchConfig returns the default search constants.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		OctaveSteps:         96,
		CoarseStride:        8,
		CoarseThreshold:     200,
		PeakThreshold:       600,
		PeakHalfWidth:       11,
		FlankDistance:       5,
		MinPeakiness:        1.5,
		ContinuityPeakiness: 1.2,
		ContinuityDistance:  10,
		CrossoverHz:         250,
		FineSize:            31,
		FineRatio:           1.005,
	}
}

// ApplySearchOptions applies opts on top of DefaultSearchConfig.
func ApplySearchOptions(opts ...SearchOption) SearchConfig {
	cfg := DefaultSearchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// WithCoarseStride sets the coarse grid stride.
func WithCoarseStride(stride int) SearchOption {
	return func(cfg *SearchConfig) { cfg.CoarseStride = stride }
}

// WithThresholds sets the coarse and peak score thresholds.
func WithThresholds(coarse, peak float64) SearchOption {
	return func(cfg *SearchConfig) {
		cfg.CoarseThreshold = coarse
		cfg.PeakThreshold = peak
	}
}

// WithPeakiness sets the fresh and continuity peakiness minimums and the
// continuity distance in grid steps.
func WithPeakiness(fresh, continuity float64, distance int) SearchOption {
	return func(cfg *SearchConfig) {
		cfg.MinPeakiness = fresh
		cfg.ContinuityPeakiness = continuity
		cfg.ContinuityDistance = distance
	}
}

// WithCrossover sets the band crossover frequency in Hz.
func WithCrossover(hz float64) SearchOption {
	return func(cfg *SearchConfig) { cfg.CrossoverHz = hz }
}

// WithFineSearch sets the fine table size and ratio step.
func WithFineSearch(size int, ratio float64) SearchOption {
	return func(cfg *SearchConfig) {
		cfg.FineSize = size
		cfg.FineRatio = ratio
	}
}

// Validate checks the configuration for consistency.
func (c SearchConfig) Validate() error {
	if c.OctaveSteps < 12 {
		return fmt.Errorf("pitch: octave steps must be >= 12: %d", c.OctaveSteps)
	}
	if c.CoarseStride < 1 {
		return fmt.Errorf("pitch: coarse stride must be >= 1: %d", c.CoarseStride)
	}
	if c.CoarseThreshold < 0 || c.PeakThreshold < 0 {
		return fmt.Errorf("pitch: thresholds must be >= 0: %g, %g", c.CoarseThreshold, c.PeakThreshold)
	}
	if c.PeakHalfWidth < 1 {
		return fmt.Errorf("pitch: peak half width must be >= 1: %d", c.PeakHalfWidth)
	}
	if c.FlankDistance < 1 {
		return fmt.Errorf("pitch: flank distance must be >= 1: %d", c.FlankDistance)
	}
	if c.MinPeakiness <= 0 || c.ContinuityPeakiness <= 0 {
		return fmt.Errorf("pitch: peakiness minimums must be > 0: %g, %g", c.MinPeakiness, c.ContinuityPeakiness)
	}
	if c.ContinuityDistance < 0 {
		return fmt.Errorf("pitch: continuity distance must be >= 0: %d", c.ContinuityDistance)
	}
	if c.CrossoverHz < 0 {
		return fmt.Errorf("pitch: crossover must be >= 0: %g", c.CrossoverHz)
	}
	if c.FineSize < 3 || c.FineSize%2 == 0 {
		return fmt.Errorf("pitch: fine size must be odd and >= 3: %d", c.FineSize)
	}
	if c.FineRatio <= 1 {
		return fmt.Errorf("pitch: fine ratio must be > 1: %g", c.FineRatio)
	}

	return nil
}
