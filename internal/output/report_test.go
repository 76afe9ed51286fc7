package output

import (
	"testing"

	"chemsafe/internal/chemgraph"
	"chemsafe/internal/hazard"
)

func itemByKey(t *testing.T, view ReportView, sectionID, key string) Item {
	t.Helper()
	for _, s := range view.Sections {
		if s.ID != sectionID {
			continue
		}
		for _, item := range s.Items {
			if item.Key == key {
				return item
			}
		}
	}
	t.Fatalf("item %s/%s not found", sectionID, key)
	return Item{}
}

func testPayload() *RefreshPayload {
	return &RefreshPayload{
		Stats: chemgraph.EnrichedStats{
			Stats: chemgraph.Stats{
				NodeCount:     4,
				EdgeCount:     6,
				ChemicalCount: 3,
				AvgDegree:     3.0,
				Density:       0.5,
				EdgeKinds:     map[chemgraph.EdgeKind]int{chemgraph.EdgeIncompatibleWith: 6},
			},
			ManufacturerCount:   1,
			HazardClassCoverage: "2/3",
			PStatementCoverage:  "1/3",
			SimilarityCoverage:  "0/3",
		},
		Assessments: []hazard.Assessment{
			{CAS: "A", SeverityLevel: hazard.SeverityCritical},
			{CAS: "B", SeverityLevel: hazard.SeverityWarning},
			{CAS: "C", SeverityLevel: hazard.SeverityNone},
		},
	}
}

func TestBuildReportView(t *testing.T) {
	view := BuildReportView(testPayload())

	if len(view.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(view.Sections))
	}

	if got := itemByKey(t, view, SectionGraph, "node_count").Value; got != "4" {
		t.Errorf("node count = %q", got)
	}
	if got := itemByKey(t, view, SectionGraph, "avg_degree").Value; got != "3.00" {
		t.Errorf("avg degree = %q", got)
	}
	if got := itemByKey(t, view, SectionGraph, "edges_incompatible_with").Value; got != "6" {
		t.Errorf("histogram item = %q", got)
	}
	if got := itemByKey(t, view, SectionCoverage, "hazard_classes").Value; got != "2/3" {
		t.Errorf("coverage = %q", got)
	}

	crit := itemByKey(t, view, SectionHazard, "critical_chemicals")
	if crit.Value != "1" || crit.Status != StatusCritical {
		t.Errorf("critical item = %+v", crit)
	}
	warn := itemByKey(t, view, SectionHazard, "warning_chemicals")
	if warn.Value != "1" || warn.Status != StatusWarning {
		t.Errorf("warning item = %+v", warn)
	}
}

func TestBuildReportViewHealthy(t *testing.T) {
	payload := testPayload()
	payload.Assessments = nil

	view := BuildReportView(payload)
	if got := itemByKey(t, view, SectionHazard, "critical_chemicals").Status; got != StatusHealthy {
		t.Errorf("zero critical should be %s, got %s", StatusHealthy, got)
	}
}

func TestBuildReportViewDegradedBuild(t *testing.T) {
	payload := testPayload()
	payload.Build = chemgraph.BuildReport{Failed: 2}

	view := BuildReportView(payload)
	degraded := itemByKey(t, view, SectionHazard, "degraded_build")
	if degraded.Value != "2" || degraded.Status != StatusWarning {
		t.Errorf("degraded item = %+v", degraded)
	}

	// absent when every phase succeeded
	payload.Build.Failed = 0
	view = BuildReportView(payload)
	for _, s := range view.Sections {
		for _, item := range s.Items {
			if item.Key == "degraded_build" {
				t.Error("degraded item present on a clean build")
			}
		}
	}
}
