package probe

import (
	"context"
	"fmt"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

// sampleScrape fetches a raw metrics endpoint and extracts one value from
// the text exposition format. This covers endpoints too small to deserve a
// Prometheus server in front of them.
func (s *Sampler) sampleScrape(ctx context.Context, spec Spec) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.Address, nil)
	if err != nil {
		return 0, fmt.Errorf("build scrape request: %w", err)
	}

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("scrape %s: %w", spec.Address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("scrape %s: unexpected status %s", spec.Address, resp.Status)
	}

	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("parse exposition from %s: %w", spec.Address, err)
	}

	family, ok := families[spec.Metric]
	if !ok {
		return 0, fmt.Errorf("metric family %q not exposed by %s", spec.Metric, spec.Address)
	}

	for _, metric := range family.GetMetric() {
		if !labelsMatchMetric(metric, spec.Labels) {
			continue
		}
		return metricValue(family, metric)
	}
	return 0, fmt.Errorf("no sample of %q matches labels %v", spec.Metric, spec.Labels)
}

func labelsMatchMetric(metric *dto.Metric, want map[string]string) bool {
	have := map[string]string{}
	for _, pair := range metric.GetLabel() {
		have[pair.GetName()] = pair.GetValue()
	}
	for name, value := range want {
		if have[name] != value {
			return false
		}
	}
	return true
}

// metricValue extracts the numeric value appropriate to the family type.
// Histograms and summaries contribute their sum; the harness compares
// totals, not distributions.
func metricValue(family *dto.MetricFamily, metric *dto.Metric) (float64, error) {
	switch family.GetType() {
	case dto.MetricType_COUNTER:
		return metric.GetCounter().GetValue(), nil
	case dto.MetricType_GAUGE:
		return metric.GetGauge().GetValue(), nil
	case dto.MetricType_UNTYPED:
		return metric.GetUntyped().GetValue(), nil
	case dto.MetricType_HISTOGRAM:
		return metric.GetHistogram().GetSampleSum(), nil
	case dto.MetricType_SUMMARY:
		return metric.GetSummary().GetSampleSum(), nil
	default:
		return 0, fmt.Errorf("unsupported metric type %s for %q", family.GetType(), family.GetName())
	}
}
