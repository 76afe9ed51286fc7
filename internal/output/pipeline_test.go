package output

import (
	"context"
	"errors"
	"testing"

	"chemsafe/internal/chemgraph"
	"chemsafe/internal/database/relational"
)

// brokenSource fails every phase read.
type brokenSource struct{}

var errStore = errors.New("store unreachable")

func (brokenSource) ChemicalRows(context.Context) ([]relational.ChemicalRow, error) {
	return nil, errStore
}
func (brokenSource) IncompatibilityRows(context.Context) ([]relational.IncompatibilityRow, error) {
	return nil, errStore
}
func (brokenSource) HazardFlagRows(context.Context) ([]relational.HazardFlagRow, error) {
	return nil, errStore
}
func (brokenSource) ExposureLimitRows(context.Context) ([]relational.ExposureLimitRow, error) {
	return nil, errStore
}
func (brokenSource) ClassificationRows(context.Context) ([]relational.ClassificationRow, error) {
	return nil, errStore
}
func (brokenSource) PStatementRows(context.Context) ([]relational.PStatementRow, error) {
	return nil, errStore
}
func (brokenSource) GHSRows(context.Context) ([]relational.GHSRow, error) {
	return nil, errStore
}
func (brokenSource) ManufacturerRows(context.Context) ([]relational.ManufacturerRow, error) {
	return nil, errStore
}
func (brokenSource) ProductFamilyRows(context.Context) ([]relational.ProductFamilyRow, error) {
	return nil, errStore
}
func (brokenSource) SimilarityRows(context.Context) ([]relational.SimilarityRow, error) {
	return nil, errStore
}

func TestRunRefreshAllPhasesFailed(t *testing.T) {
	g := chemgraph.New()
	if _, err := RunRefresh(context.Background(), brokenSource{}, g, nil); err == nil {
		t.Fatal("expected error when every build phase fails")
	}
}

// partialSource fails the chemical phase only.
type partialSource struct {
	brokenSource
}

func (partialSource) IncompatibilityRows(context.Context) ([]relational.IncompatibilityRow, error) {
	return []relational.IncompatibilityRow{
		{SourceCAS: "A", TargetCAS: "B", RuleCode: "R1"},
	}, nil
}
func (partialSource) HazardFlagRows(context.Context) ([]relational.HazardFlagRow, error) {
	return nil, nil
}
func (partialSource) ExposureLimitRows(context.Context) ([]relational.ExposureLimitRow, error) {
	return nil, nil
}

func TestRunRefreshPartialFailure(t *testing.T) {
	g := chemgraph.New()
	payload, err := RunRefresh(context.Background(), partialSource{}, g, nil)
	if err != nil {
		t.Fatalf("partial failure should still produce a payload: %v", err)
	}
	if payload.Build.Failed == 0 {
		t.Error("failed phases should be counted")
	}
	if payload.Build.EdgeCount != 2 {
		t.Errorf("surviving phases should populate the graph, got %d edges", payload.Build.EdgeCount)
	}
	if len(payload.Export.Edges) != 2 {
		t.Errorf("export should reflect the degraded graph, got %d edges", len(payload.Export.Edges))
	}
}
