// Package hazard grades chemicals by their recorded hazard data: flag
// counts, exposure thresholds, GHS class and environmental risk roll up into
// a severity level and a risk score.
package hazard

import (
	"fmt"
	"strings"

	"chemsafe/internal/chemgraph"
)

const (
	SeverityNone     = 0
	SeverityLow      = 1
	SeverityWarning  = 2
	SeverityCritical = 3
)

// Assessment is the graded risk picture for one chemical.
type Assessment struct {
	CAS           string   `json:"cas"`
	SeverityLevel int      `json:"severity_level"`
	RiskScore     int      `json:"risk_score"`
	Triggered     []string `json:"triggered_flags"`
	Explanation   string   `json:"explanation"`
	LowConfidence bool     `json:"low_confidence"`
}

// Service assesses chemicals against configured thresholds.
type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// Assess grades one chemical. Severity never decreases as hazard flags are
// added; the risk score grows with severity and flag count.
func (s *Service) Assess(cas string, attrs chemgraph.NodeAttrs) Assessment {
	a := Assessment{CAS: cas}
	var explanations []string

	// 1. Hazard flags
	flagCount := 0
	for flag, v := range attrs.HazardFlags {
		if v {
			flagCount++
			a.Triggered = append(a.Triggered, flag)
		}
	}
	if float64(flagCount) >= s.cfg.FlagCount.Critical {
		a.SeverityLevel = SeverityCritical
		explanations = append(explanations, fmt.Sprintf("hazard flags critical: %d set", flagCount))
	} else if float64(flagCount) >= s.cfg.FlagCount.Warning {
		a.SeverityLevel = maxInt(a.SeverityLevel, SeverityWarning)
		explanations = append(explanations, fmt.Sprintf("hazard flags elevated: %d set", flagCount))
	} else if flagCount > 0 {
		a.SeverityLevel = maxInt(a.SeverityLevel, SeverityLow)
	}

	// 2. GHS class
	if attrs.GHSClass != "" {
		for _, severe := range s.cfg.SevereGHSClasses {
			if strings.EqualFold(attrs.GHSClass, severe) {
				a.SeverityLevel = maxInt(a.SeverityLevel, SeverityCritical)
				explanations = append(explanations, fmt.Sprintf("severe GHS class: %s", attrs.GHSClass))
				break
			}
		}
	}

	// 3. IDLH threshold (reference convention: higher value, more hazardous)
	if attrs.IDLH != nil {
		if *attrs.IDLH >= s.cfg.IDLH.Critical {
			a.SeverityLevel = maxInt(a.SeverityLevel, SeverityCritical)
			explanations = append(explanations, fmt.Sprintf("IDLH critical: %.1f", *attrs.IDLH))
		} else if *attrs.IDLH >= s.cfg.IDLH.Warning {
			a.SeverityLevel = maxInt(a.SeverityLevel, SeverityWarning)
			explanations = append(explanations, fmt.Sprintf("IDLH elevated: %.1f", *attrs.IDLH))
		}
	}

	// 4. Environmental risk
	if attrs.EnvRisk {
		a.SeverityLevel = maxInt(a.SeverityLevel, SeverityWarning)
		explanations = append(explanations, "environmental risk recorded")
	}

	// 5. Extraction confidence
	if attrs.Confidence != nil && *attrs.Confidence < s.cfg.MinConfidence {
		a.LowConfidence = true
	}

	if len(explanations) > 0 {
		a.Explanation = explanations[0]
		if len(explanations) > 1 {
			a.Explanation += fmt.Sprintf(" (+%d more)", len(explanations)-1)
		}
	}

	a.RiskScore = a.SeverityLevel*10 + flagCount*2
	if a.RiskScore > 100 {
		a.RiskScore = 100
	}
	return a
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
