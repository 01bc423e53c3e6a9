package eval

import (
	"testing"
)

func outcome(queryType string, precision, groundedness float64, recall *float64, errMsg string) QueryOutcome {
	return QueryOutcome{
		QueryType:        queryType,
		CitationValidity: CitationValidity{CitationPrecision: precision},
		Groundedness:     Groundedness{GroundednessScore: groundedness},
		SourceRecall:     recall,
		Error:            errMsg,
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestReportAggregate(t *testing.T) {
	report := &Report{Results: []QueryOutcome{
		outcome("direct", 1.0, 1.0, floatPtr(1.0), ""),
		outcome("direct", 0.5, 0.5, floatPtr(0.5), ""),
		outcome("synthesis", 0.8, 1.0, nil, ""),
		outcome("edge_case", 0.0, 0.0, nil, "pipeline failed"),
	}}

	report.aggregate()

	if report.Successful != 3 {
		t.Errorf("expected 3 successful, got %d", report.Successful)
	}

	if got := *report.Aggregates.AvgCitationPrecision; got < 0.766 || got > 0.767 {
		t.Errorf("unexpected avg precision: %f", got)
	}
	if got := *report.Aggregates.AvgSourceRecall; got != 0.75 {
		t.Errorf("recall should average only queries with expected sources, got %f", got)
	}

	direct := report.ByType["direct"]
	if *direct.AvgCitationPrecision != 0.75 || *direct.AvgGroundedness != 0.75 {
		t.Errorf("unexpected direct aggregates: %+v", direct)
	}
	if report.ByType["synthesis"].AvgSourceRecall != nil {
		t.Error("synthesis has no expected sources, recall should be nil")
	}
	if _, present := report.ByType["edge_case"]; present {
		t.Error("failed queries should be excluded from per-type aggregates")
	}
}

func TestReportAggregateEmpty(t *testing.T) {
	report := &Report{}
	report.aggregate()
	if report.Successful != 0 || report.Aggregates.AvgCitationPrecision != nil {
		t.Errorf("unexpected aggregates for empty report: %+v", report.Aggregates)
	}
}
