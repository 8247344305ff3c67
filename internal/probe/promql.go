package probe

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

func newPromAPI(address string) (v1.API, error) {
	client, err := api.NewClient(api.Config{Address: address})
	if err != nil {
		return nil, fmt.Errorf("create prometheus client for %s: %w", address, err)
	}
	return v1.NewAPI(client), nil
}

// samplePromQL evaluates the probe's query at the current instant and takes
// the first sample of the result. Vector results use the first series;
// multi-series queries should aggregate server-side.
func (s *Sampler) samplePromQL(ctx context.Context, spec Spec) (float64, error) {
	promAPI, err := s.newPromAPI(spec.Address)
	if err != nil {
		return 0, err
	}

	result, warnings, err := promAPI.Query(ctx, spec.Query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("query %q: %w", spec.Query, err)
	}
	if len(warnings) > 0 {
		slog.Warn("prometheus query warnings", "probe", spec.Name, "warnings", warnings)
	}

	return scalarFromResult(result, spec.Query)
}

func scalarFromResult(result model.Value, query string) (float64, error) {
	switch v := result.(type) {
	case *model.Scalar:
		return checkFinite(float64(v.Value), query)
	case model.Vector:
		if len(v) == 0 {
			return 0, fmt.Errorf("query %q returned an empty vector", query)
		}
		return checkFinite(float64(v[0].Value), query)
	default:
		return 0, fmt.Errorf("query %q returned unsupported result type %s", query, result.Type())
	}
}

func checkFinite(value float64, query string) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("query %q returned a non-finite value", query)
	}
	return value, nil
}
