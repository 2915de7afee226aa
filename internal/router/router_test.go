package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayuer/virtualco/internal/bus"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want bus.Intent
	}{
		{"Implement 'One-Click Checkout' in the Backend API.", bus.Intent{Domain: bus.DomainBackend, Work: bus.WorkFeature}},
		{"URGENT: Optimize Slow SQL Query on Checkout", bus.Intent{Domain: bus.DomainDatabase, Work: bus.WorkOps}},
		{"TASK_MISSING: Database Migration Scripts for Checkout", bus.Intent{Domain: bus.DomainDatabase, Work: bus.WorkOps}},
		{"Error/Crash: 500 Server Error when logging in via Mobile App.", bus.Intent{Domain: bus.DomainMobile, Work: bus.WorkFix}},
		{"Redesign the settings page UI", bus.Intent{Domain: bus.DomainFrontend}},
		{"New Corporate Identity", bus.Intent{Domain: bus.DomainDesign}},
		{"REPORT STATUS", bus.Intent{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassify_WholeWordsOnly(t *testing.T) {
	// "guide" and "build" must not match the "ui" keyword.
	assert.Equal(t, bus.DomainNone, Classify("guide").Domain)
	assert.Equal(t, bus.WorkFeature, Classify("build it").Work)
	assert.Equal(t, bus.DomainNone, Classify("build it").Domain)
}

func TestTriage(t *testing.T) {
	assert.True(t, Triage("Error/Crash: 500 Server Error"))
	assert.True(t, Triage("app CRASH on launch"))
	assert.False(t, Triage("How do I change my avatar?"))
	assert.True(t, Triage("App Crashed on login"))
	assert.True(t, Triage("ErrorCode 42"))
	assert.True(t, Triage("Errors everywhere after update"))
	assert.False(t, Triage("Billing question about my invoice"))
}

func TestClassifier_Caches(t *testing.T) {
	c := NewClassifier()
	a := c.Classify("Implement checkout API")
	b := c.Classify("  implement checkout api ")
	assert.Equal(t, a, b)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}
