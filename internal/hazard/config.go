package hazard

// Thresholds defines warning and critical levels for one risk dimension.
type Thresholds struct {
	Warning  float64
	Critical float64
}

type Config struct {
	// FlagCount grades the number of truthy hazard flags on a chemical.
	FlagCount Thresholds
	// IDLH grades the recorded IDLH value. Higher recorded value counts as
	// more hazardous, per the reference convention (see DESIGN.md).
	IDLH Thresholds
	// SevereGHSClasses are GHS classes that raise severity on their own.
	SevereGHSClasses []string
	// MinConfidence below which an assessment is marked low-confidence.
	MinConfidence float64
}

func DefaultConfig() Config {
	return Config{
		FlagCount:        Thresholds{Warning: 2, Critical: 4},
		IDLH:             Thresholds{Warning: 100.0, Critical: 500.0},
		SevereGHSClasses: []string{"explosive", "acute_toxic", "oxidizer"},
		MinConfidence:    0.5,
	}
}
