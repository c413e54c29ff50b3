package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuiteID(t *testing.T) {
	id := SuiteID("frametracker", "encode")
	assert.Len(t, id, 40)
	assert.Equal(t, id, SuiteID("frametracker", "encode"))
	assert.NotEqual(t, id, SuiteID("frametracker", "decode"))
	assert.NotEqual(t, id, SuiteID("other", "encode"))
}

func TestSuitePolicyThreshold(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		assert.Equal(t, defaultAlertThreshold, SuitePolicy{}.Threshold())
		assert.Equal(t, defaultAlertThreshold, SuitePolicy{AlertThreshold: -1}.Threshold())
	})
	t.Run("Configured", func(t *testing.T) {
		assert.Equal(t, 1.25, SuitePolicy{AlertThreshold: 1.25}.Threshold())
	})
}

func TestSuitePolicyIsBiggerBetter(t *testing.T) {
	policy := SuitePolicy{BiggerIsBetter: []string{"BenchmarkThroughput", "BenchmarkOpsPerSec"}}
	assert.True(t, policy.IsBiggerBetter("BenchmarkThroughput"))
	assert.True(t, policy.IsBiggerBetter("BenchmarkOpsPerSec"))
	assert.False(t, policy.IsBiggerBetter("BenchmarkLatency"))
	assert.False(t, SuitePolicy{}.IsBiggerBetter("BenchmarkThroughput"))
}
