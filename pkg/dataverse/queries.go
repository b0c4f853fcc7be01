package dataverse

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Entity sets and functions read by the client.
const (
	SolutionsCollection                      = "solutions"
	SolutionComponentsCollection             = "solutioncomponents"
	EnvironmentVariableDefinitionsCollection = "environmentvariabledefinitions"
	QueuesCollection                         = "queues"
	RolesCollection                          = "roles"
	GlobalOptionSetsCollection               = "GlobalOptionSetDefinitions"
	WorkflowsCollection                      = "workflows"
	EntityDefinitionsCollection              = "EntityDefinitions"
	WhoAmIFunction                           = "WhoAmI"
)

// workflowTypeDefinition selects workflow definitions rather than
// activations or templates.
const workflowTypeDefinition = 1

// SolutionByUniqueNameQuery resolves a solution by its unique name.
func SolutionByUniqueNameQuery(uniqueName string) string {
	return MustQuery(SolutionsCollection).
		Select("solutionid", "uniquename", "friendlyname", "version", "ismanaged").
		FilterEqual("uniquename", uniqueName).
		Expand("publisherid", []string{"friendlyname"}, "").
		Build()
}

// SolutionComponentsQuery lists the object ids of one component type in a
// solution.
func SolutionComponentsQuery(solutionID uuid.UUID, componentType ComponentType) string {
	return MustQuery(SolutionComponentsCollection).
		Select("objectid").
		FilterEqual("_solutionid_value", solutionID).
		FilterEqual("componenttype", int(componentType)).
		Build()
}

// EnvironmentVariableDefinitionsQuery lists every environment variable
// definition with its value rows.
func EnvironmentVariableDefinitionsQuery() string {
	return MustQuery(EnvironmentVariableDefinitionsCollection).
		Select("environmentvariabledefinitionid", "schemaname", "displayname", "description",
			"type", "defaultvalue", "isrequired").
		Expand("environmentvariabledefinition_environmentvariablevalue", []string{"value"}, "").
		OrderBy("schemaname").
		Build()
}

// QueuesQuery lists every queue.
func QueuesQuery() string {
	return MustQuery(QueuesCollection).
		Select("queueid", "name", "description", "queuetypecode", "emailaddress").
		OrderBy("name").
		Build()
}

// RolesQuery lists every role with its business unit name.
func RolesQuery() string {
	return MustQuery(RolesCollection).
		Select("roleid", "name", "ismanaged").
		Expand("businessunitid", []string{"name"}, "").
		OrderBy("name").
		Build()
}

// GlobalOptionSetsQuery lists global option set definitions. The metadata
// endpoint rejects $select on derived option properties, so the query is bare.
func GlobalOptionSetsQuery() string {
	return MustQuery(GlobalOptionSetsCollection).Build()
}

// WorkflowsByCategoryQuery lists workflow definitions in the given
// categories.
func WorkflowsByCategoryQuery(categories ...WorkflowCategory) string {
	q := MustQuery(WorkflowsCollection).
		Select("workflowid", "name", "category", "primaryentity", "statecode", "mode",
			"description", "ismanaged", "modifiedon", "clientdata").
		FilterEqual("type", workflowTypeDefinition)

	if len(categories) > 0 {
		predicates := make([]string, 0, len(categories))
		for _, category := range categories {
			predicates = append(predicates, "category eq "+strconv.Itoa(int(category)))
		}

		if len(predicates) == 1 {
			q.Filter(predicates[0])
		} else {
			q.Filter("(" + strings.Join(predicates, " or ") + ")")
		}
	}

	return q.OrderBy("name").Build()
}

// EntityMetadataQuery reads one entity definition, optionally expanding all
// three relationship collections.
func EntityMetadataQuery(logicalName string, withRelationships bool) string {
	q := MustQuery(EntityDefinitionsCollection+"(LogicalName="+FormatLiteral(logicalName)+")").
		Select("LogicalName", "SchemaName", "MetadataId")

	if withRelationships {
		q.Expand("OneToManyRelationships",
			[]string{"SchemaName", "ReferencedEntity", "ReferencingEntity", "ReferencingAttribute"}, "").
			Expand("ManyToOneRelationships",
				[]string{"SchemaName", "ReferencedEntity", "ReferencingEntity", "ReferencingAttribute"}, "").
			Expand("ManyToManyRelationships",
				[]string{"SchemaName", "Entity1LogicalName", "Entity2LogicalName", "IntersectEntityName"}, "")
	}

	return q.Build()
}

// EntityDefinitionsQuery lists the logical name and metadata id of every
// entity, used to seed diagrams from a solution.
func EntityDefinitionsQuery() string {
	return MustQuery(EntityDefinitionsCollection).
		Select("LogicalName", "MetadataId").
		Build()
}

// WhoAmIQuery calls the WhoAmI function.
func WhoAmIQuery() string {
	return MustQuery(WhoAmIFunction).Build()
}
