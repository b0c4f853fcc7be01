package dataverse

// ComponentType is the solution component type discriminator.
type ComponentType int

// Solution component types consumed by the readers.
const (
	ComponentTypeEntity                        ComponentType = 1
	ComponentTypeOptionSet                     ComponentType = 9
	ComponentTypeRole                          ComponentType = 20
	ComponentTypeWorkflow                      ComponentType = 29
	ComponentTypeEnvironmentVariableDefinition ComponentType = 380
	ComponentTypeQueue                         ComponentType = 2020
)

// WorkflowCategory is the category column of the workflow table.
type WorkflowCategory int

// Workflow categories.
const (
	WorkflowCategoryWorkflow            WorkflowCategory = 0
	WorkflowCategoryDialog              WorkflowCategory = 1
	WorkflowCategoryBusinessRule        WorkflowCategory = 2
	WorkflowCategoryAction              WorkflowCategory = 3
	WorkflowCategoryBusinessProcessFlow WorkflowCategory = 4
	WorkflowCategoryModernFlow          WorkflowCategory = 5
	WorkflowCategoryDesktopFlow         WorkflowCategory = 6
)

// Unknown is the label for codes missing from a table.
const Unknown = "Unknown"

var (
	environmentVariableTypes = map[int]string{
		100000000: "String",
		100000001: "Number",
		100000002: "Boolean",
		100000003: "JSON",
		100000004: "DataSource",
		100000005: "Secret",
	}

	queueTypes = map[int]string{
		1: "Public",
		2: "Private",
	}

	workflowCategories = map[int]string{
		0: "Workflow",
		1: "Dialog",
		2: "BusinessRule",
		3: "Action",
		4: "BusinessProcessFlow",
		5: "ModernFlow",
		6: "DesktopFlow",
	}

	workflowStates = map[int]string{
		0: "Draft",
		1: "Activated",
		2: "Suspended",
	}

	workflowModes = map[int]string{
		0: "Background",
		1: "RealTime",
	}
)

// ProcessCategories are the workflow categories listed as processes. Modern
// flows are read separately as cloud flows.
var ProcessCategories = []WorkflowCategory{
	WorkflowCategoryWorkflow,
	WorkflowCategoryDialog,
	WorkflowCategoryBusinessRule,
	WorkflowCategoryAction,
	WorkflowCategoryBusinessProcessFlow,
	WorkflowCategoryDesktopFlow,
}

func lookup(table map[int]string, code *int) string {
	if code == nil {
		return Unknown
	}

	if label, ok := table[*code]; ok {
		return label
	}

	return Unknown
}

// EnvironmentVariableTypeLabel maps an environment variable type code.
func EnvironmentVariableTypeLabel(code *int) string {
	return lookup(environmentVariableTypes, code)
}

// QueueTypeLabel maps a queue type code.
func QueueTypeLabel(code *int) string {
	return lookup(queueTypes, code)
}

// WorkflowCategoryLabel maps a workflow category code.
func WorkflowCategoryLabel(code *int) string {
	return lookup(workflowCategories, code)
}

// WorkflowStateLabel maps a workflow statecode.
func WorkflowStateLabel(code *int) string {
	return lookup(workflowStates, code)
}

// WorkflowModeLabel maps a workflow mode code.
func WorkflowModeLabel(code *int) string {
	return lookup(workflowModes, code)
}
