package hazard

import (
	"strings"
	"testing"

	"chemsafe/internal/chemgraph"
)

func flags(names ...string) map[string]bool {
	m := map[string]bool{}
	for _, n := range names {
		m[n] = true
	}
	return m
}

func TestAssessSeverity(t *testing.T) {
	svc := NewService(DefaultConfig())

	tests := []struct {
		name  string
		attrs chemgraph.NodeAttrs
		want  int
	}{
		{"no hazard data", chemgraph.NodeAttrs{}, SeverityNone},
		{"single flag", chemgraph.NodeAttrs{HazardFlags: flags("flammable")}, SeverityLow},
		{"two flags", chemgraph.NodeAttrs{HazardFlags: flags("flammable", "toxic")}, SeverityWarning},
		{"four flags", chemgraph.NodeAttrs{HazardFlags: flags("flammable", "toxic", "corrosive", "reactive")}, SeverityCritical},
		{"false flags ignored", chemgraph.NodeAttrs{HazardFlags: map[string]bool{"flammable": false, "toxic": false}}, SeverityNone},
		{"severe ghs class", chemgraph.NodeAttrs{GHSClass: "explosive"}, SeverityCritical},
		{"severe ghs class case-insensitive", chemgraph.NodeAttrs{GHSClass: "Oxidizer"}, SeverityCritical},
		{"benign ghs class", chemgraph.NodeAttrs{GHSClass: "irritant"}, SeverityNone},
		{"idlh elevated", chemgraph.NodeAttrs{IDLH: chemgraph.Float64Ptr(150)}, SeverityWarning},
		{"idlh critical", chemgraph.NodeAttrs{IDLH: chemgraph.Float64Ptr(600)}, SeverityCritical},
		{"idlh below warning", chemgraph.NodeAttrs{IDLH: chemgraph.Float64Ptr(50)}, SeverityNone},
		{"no idlh recorded", chemgraph.NodeAttrs{}, SeverityNone},
		{"environmental risk", chemgraph.NodeAttrs{EnvRisk: true}, SeverityWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Assess("test-cas", tt.attrs)
			if got.SeverityLevel != tt.want {
				t.Errorf("severity = %d, want %d (%+v)", got.SeverityLevel, tt.want, got)
			}
		})
	}
}

func TestAssessSeverityMonotonicInFlags(t *testing.T) {
	svc := NewService(DefaultConfig())
	names := []string{"flammable", "toxic", "corrosive", "reactive", "oxidizing"}

	prev := 0
	for i := 1; i <= len(names); i++ {
		a := svc.Assess("x", chemgraph.NodeAttrs{HazardFlags: flags(names[:i]...)})
		if a.SeverityLevel < prev {
			t.Fatalf("severity dropped from %d to %d at %d flags", prev, a.SeverityLevel, i)
		}
		prev = a.SeverityLevel
	}
}

func TestAssessRiskScore(t *testing.T) {
	svc := NewService(DefaultConfig())

	none := svc.Assess("x", chemgraph.NodeAttrs{})
	if none.RiskScore != 0 {
		t.Errorf("no-data risk score = %d, want 0", none.RiskScore)
	}

	critical := svc.Assess("x", chemgraph.NodeAttrs{
		HazardFlags: flags("a", "b", "c", "d"),
		GHSClass:    "explosive",
	})
	if critical.RiskScore != SeverityCritical*10+4*2 {
		t.Errorf("risk score = %d, want %d", critical.RiskScore, SeverityCritical*10+4*2)
	}
	if critical.RiskScore > 100 {
		t.Errorf("risk score above cap: %d", critical.RiskScore)
	}
}

func TestAssessExplanation(t *testing.T) {
	svc := NewService(DefaultConfig())

	a := svc.Assess("x", chemgraph.NodeAttrs{
		HazardFlags: flags("a", "b", "c", "d"),
		GHSClass:    "explosive",
		EnvRisk:     true,
	})
	if a.Explanation == "" {
		t.Fatal("expected an explanation")
	}
	if !strings.Contains(a.Explanation, "(+2 more)") {
		t.Errorf("explanation should fold extra reasons: %q", a.Explanation)
	}
}

func TestAssessLowConfidence(t *testing.T) {
	svc := NewService(DefaultConfig())

	low := svc.Assess("x", chemgraph.NodeAttrs{Confidence: chemgraph.Float64Ptr(0.2)})
	if !low.LowConfidence {
		t.Error("confidence 0.2 should mark low confidence")
	}
	ok := svc.Assess("x", chemgraph.NodeAttrs{Confidence: chemgraph.Float64Ptr(0.9)})
	if ok.LowConfidence {
		t.Error("confidence 0.9 should not mark low confidence")
	}
	unknown := svc.Assess("x", chemgraph.NodeAttrs{})
	if unknown.LowConfidence {
		t.Error("missing confidence should not mark low confidence")
	}
}

func TestAssessTriggeredFlags(t *testing.T) {
	svc := NewService(DefaultConfig())

	a := svc.Assess("x", chemgraph.NodeAttrs{
		HazardFlags: map[string]bool{"flammable": true, "toxic": false},
	})
	if len(a.Triggered) != 1 || a.Triggered[0] != "flammable" {
		t.Errorf("triggered = %v, want [flammable]", a.Triggered)
	}
}
