package compare

import (
	"sort"

	"syncbench/internal/record"
)

// RowStatus classifies a comparable metric against the regression threshold.
type RowStatus string

const (
	// StatusOK means the change stayed within the threshold.
	StatusOK RowStatus = "ok"
	// StatusImproved means the metric dropped by more than the threshold.
	StatusImproved RowStatus = "improved"
	// StatusRegressed means the metric grew by more than the threshold.
	StatusRegressed RowStatus = "regressed"
	// StatusNotComparable covers zero baselines and unavailable samples.
	StatusNotComparable RowStatus = "n/a"
)

// Row is the comparison of one metric present in both records.
type Row struct {
	Name   string  `json:"name"`
	Unit   string  `json:"unit,omitempty"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	// BeforeUnavailable / AfterUnavailable mark sides recorded as N/A.
	BeforeUnavailable bool `json:"before_unavailable,omitempty"`
	AfterUnavailable  bool `json:"after_unavailable,omitempty"`
	// PercentDelta is (before-after)/before*100, positive when the metric
	// shrank. Only meaningful when Computable is true.
	PercentDelta float64   `json:"percent_delta"`
	Computable   bool      `json:"computable"`
	Status       RowStatus `json:"status"`
}

// Report is the derived delta analysis between two run records. It is
// regenerable from the stored records and never persisted itself.
type Report struct {
	BeforeLabel string `json:"before_label"`
	AfterLabel  string `json:"after_label"`

	// Rows covers metrics present in both records, sorted by name.
	Rows []Row `json:"rows"`
	// BeforeOnly and AfterOnly list metrics present in just one record,
	// sorted by name. They are reported, never silently dropped.
	BeforeOnly []record.Measurement `json:"before_only,omitempty"`
	AfterOnly  []record.Measurement `json:"after_only,omitempty"`

	// Threshold is the percent change beyond which a row counts as
	// improved or regressed.
	Threshold float64 `json:"threshold"`
}

// Regressions returns the rows classified as regressed.
func (r *Report) Regressions() []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Status == StatusRegressed {
			out = append(out, row)
		}
	}
	return out
}

// Compare builds a report from two records. Both records must carry the
// current schema version; Compare refuses to guess the field meanings of
// any other generation.
func Compare(before, after *record.RunRecord, threshold float64) (*Report, error) {
	if err := record.CheckSchema(before); err != nil {
		return nil, err
	}
	if err := record.CheckSchema(after); err != nil {
		return nil, err
	}

	rep := &Report{
		BeforeLabel: before.Label,
		AfterLabel:  after.Label,
		Threshold:   threshold,
	}

	afterByName := map[string]record.Measurement{}
	for _, m := range after.Measurements {
		afterByName[m.Name] = m
	}
	beforeByName := map[string]record.Measurement{}
	for _, m := range before.Measurements {
		beforeByName[m.Name] = m
	}

	for _, b := range before.Measurements {
		a, ok := afterByName[b.Name]
		if !ok {
			rep.BeforeOnly = append(rep.BeforeOnly, b)
			continue
		}
		rep.Rows = append(rep.Rows, buildRow(b, a, threshold))
	}
	for _, a := range after.Measurements {
		if _, ok := beforeByName[a.Name]; !ok {
			rep.AfterOnly = append(rep.AfterOnly, a)
		}
	}

	// deterministic ordering makes repeated reports diffable
	sort.Slice(rep.Rows, func(i, j int) bool { return rep.Rows[i].Name < rep.Rows[j].Name })
	sort.Slice(rep.BeforeOnly, func(i, j int) bool { return rep.BeforeOnly[i].Name < rep.BeforeOnly[j].Name })
	sort.Slice(rep.AfterOnly, func(i, j int) bool { return rep.AfterOnly[i].Name < rep.AfterOnly[j].Name })

	return rep, nil
}

// buildRow computes one comparison. A zero baseline or an unavailable side
// yields a not-comparable row instead of a division by zero or a silent
// default.
func buildRow(before, after record.Measurement, threshold float64) Row {
	row := Row{
		Name:              before.Name,
		Unit:              before.Unit,
		Before:            before.Value,
		After:             after.Value,
		BeforeUnavailable: before.Unavailable,
		AfterUnavailable:  after.Unavailable,
		Status:            StatusNotComparable,
	}
	if before.Unavailable || after.Unavailable || before.Value == 0 {
		return row
	}

	row.PercentDelta = (before.Value - after.Value) / before.Value * 100
	row.Computable = true

	switch {
	case row.PercentDelta > threshold:
		row.Status = StatusImproved
	case row.PercentDelta < -threshold:
		row.Status = StatusRegressed
	default:
		row.Status = StatusOK
	}
	return row
}
