package config

import (
	"fmt"
	"os"

	"github.com/routecast/routecast-backend/types"
	"gopkg.in/yaml.v3"
)

// ThresholdCatalog is the YAML-backed metric threshold lookup consumed by
// the risk engine. Deployments only configure the metrics they care about;
// an absent metric simply disables that rule.
//
// File format:
//
//	gust:
//	  risk_thresholds:
//	    high: 70
//	    medium: 50
//	visibility:
//	  risk_thresholds:
//	    high_lt: 200
type ThresholdCatalog struct {
	metrics map[string]types.MetricSpec
}

// NewThresholdCatalog builds a catalog from an in-memory metric map.
func NewThresholdCatalog(metrics map[string]types.MetricSpec) *ThresholdCatalog {
	return &ThresholdCatalog{metrics: metrics}
}

// LoadThresholdCatalog reads and parses the catalog file.
func LoadThresholdCatalog(path string) (*ThresholdCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read threshold catalog: %w", err)
	}
	var metrics map[string]types.MetricSpec
	if err := yaml.Unmarshal(raw, &metrics); err != nil {
		return nil, fmt.Errorf("failed to parse threshold catalog: %w", err)
	}
	return &ThresholdCatalog{metrics: metrics}, nil
}

// GetMetric returns the threshold spec for a metric id.
func (c *ThresholdCatalog) GetMetric(id string) (types.MetricSpec, bool) {
	spec, ok := c.metrics[id]
	return spec, ok
}
