package output

import (
	"fmt"

	"chemsafe/internal/hazard"
)

// Section constants to avoid hardcoded strings
const (
	SectionGraph    = "graph"
	SectionCoverage = "coverage"
	SectionHazard   = "hazard"
)

const (
	StatusHealthy  = "OK"
	StatusWarning  = "WARN"
	StatusCritical = "CRIT"
)

// Report view-model types (no printing here)
type Item struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Status string `json:"status,omitempty"`
	Note   string `json:"note,omitempty"`
}

type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

type ReportView struct {
	Sections []Section `json:"sections"`
}

// BuildReportView converts a refresh payload into consumer-ready sections:
// graph measures, coverage ratios, and the hazard severity rollup.
func BuildReportView(payload *RefreshPayload) ReportView {
	stats := payload.Stats

	graph := Section{ID: SectionGraph, Title: "Graph", Items: []Item{
		{Key: "node_count", Label: "Nodes", Value: fmt.Sprintf("%d", stats.NodeCount)},
		{Key: "edge_count", Label: "Edges", Value: fmt.Sprintf("%d", stats.EdgeCount)},
		{Key: "chemical_count", Label: "Chemicals", Value: fmt.Sprintf("%d", stats.ChemicalCount)},
		{Key: "manufacturer_count", Label: "Manufacturers", Value: fmt.Sprintf("%d", stats.ManufacturerCount)},
		{Key: "avg_degree", Label: "Average degree", Value: fmt.Sprintf("%.2f", stats.AvgDegree)},
		{Key: "density", Label: "Density", Value: fmt.Sprintf("%.4f", stats.Density)},
	}}
	for kind, count := range stats.EdgeKinds {
		graph.Items = append(graph.Items, Item{
			Key:   "edges_" + string(kind),
			Label: string(kind),
			Value: fmt.Sprintf("%d", count),
		})
	}

	coverage := Section{ID: SectionCoverage, Title: "Coverage", Items: []Item{
		coverageItem("hazard_classes", "Hazard classes", stats.HazardClassCoverage),
		coverageItem("p_statements", "P-statements", stats.PStatementCoverage),
		coverageItem("similarity_links", "Similarity links", stats.SimilarityCoverage),
	}}

	hazardSection := Section{ID: SectionHazard, Title: "Hazard"}
	var warn, crit int
	for _, a := range payload.Assessments {
		switch {
		case a.SeverityLevel >= hazard.SeverityCritical:
			crit++
		case a.SeverityLevel >= hazard.SeverityWarning:
			warn++
		}
	}
	hazardSection.Items = append(hazardSection.Items,
		Item{Key: "critical_chemicals", Label: "Critical", Value: fmt.Sprintf("%d", crit),
			Status: statusForCount(crit, StatusCritical)},
		Item{Key: "warning_chemicals", Label: "Warning", Value: fmt.Sprintf("%d", warn),
			Status: statusForCount(warn, StatusWarning)},
	)
	if payload.Build.Failed > 0 {
		hazardSection.Items = append(hazardSection.Items, Item{
			Key:    "degraded_build",
			Label:  "Build phases failed",
			Value:  fmt.Sprintf("%d", payload.Build.Failed),
			Status: StatusWarning,
			Note:   "results may be partial",
		})
	}

	return ReportView{Sections: []Section{graph, coverage, hazardSection}}
}

func coverageItem(key, label, ratio string) Item {
	return Item{Key: key, Label: label, Value: ratio}
}

func statusForCount(n int, elevated string) string {
	if n > 0 {
		return elevated
	}
	return StatusHealthy
}
