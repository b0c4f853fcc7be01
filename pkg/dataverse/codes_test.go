package dataverse_test

import (
	"testing"

	"github.com/fivetwenty-io/dvdoc/pkg/dataverse"
	"github.com/stretchr/testify/assert"
)

func ptr(v int) *int { return &v }

func TestCodeTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		label    func(*int) string
		code     *int
		expected string
	}{
		{"env string", dataverse.EnvironmentVariableTypeLabel, ptr(100000000), "String"},
		{"env number", dataverse.EnvironmentVariableTypeLabel, ptr(100000001), "Number"},
		{"env boolean", dataverse.EnvironmentVariableTypeLabel, ptr(100000002), "Boolean"},
		{"env json", dataverse.EnvironmentVariableTypeLabel, ptr(100000003), "JSON"},
		{"env data source", dataverse.EnvironmentVariableTypeLabel, ptr(100000004), "DataSource"},
		{"env secret", dataverse.EnvironmentVariableTypeLabel, ptr(100000005), "Secret"},
		{"env unknown", dataverse.EnvironmentVariableTypeLabel, ptr(7), dataverse.Unknown},
		{"queue public", dataverse.QueueTypeLabel, ptr(1), "Public"},
		{"queue private", dataverse.QueueTypeLabel, ptr(2), "Private"},
		{"queue missing", dataverse.QueueTypeLabel, nil, dataverse.Unknown},
		{"workflow", dataverse.WorkflowCategoryLabel, ptr(0), "Workflow"},
		{"bpf", dataverse.WorkflowCategoryLabel, ptr(4), "BusinessProcessFlow"},
		{"modern flow", dataverse.WorkflowCategoryLabel, ptr(5), "ModernFlow"},
		{"category unknown", dataverse.WorkflowCategoryLabel, ptr(99), dataverse.Unknown},
		{"activated", dataverse.WorkflowStateLabel, ptr(1), "Activated"},
		{"real time", dataverse.WorkflowModeLabel, ptr(1), "RealTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.label(tt.code))
		})
	}
}

func TestProcessCategoriesExcludeModernFlows(t *testing.T) {
	t.Parallel()

	assert.NotContains(t, dataverse.ProcessCategories, dataverse.WorkflowCategoryModernFlow)
	assert.Contains(t, dataverse.ProcessCategories, dataverse.WorkflowCategoryBusinessProcessFlow)
}
