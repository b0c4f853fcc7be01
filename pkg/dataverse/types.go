package dataverse

import (
	"time"

	"github.com/google/uuid"
)

// Solution is the container that scopes every reader.
type Solution struct {
	ID           uuid.UUID `json:"id"            yaml:"id"`
	UniqueName   string    `json:"unique_name"   yaml:"unique_name"`
	FriendlyName string    `json:"friendly_name" yaml:"friendly_name"`
	Version      string    `json:"version"       yaml:"version"`
	IsManaged    bool      `json:"is_managed"    yaml:"is_managed"`
	Publisher    string    `json:"publisher"     yaml:"publisher"`
}

// EnvironmentVariable is an environment variable definition with its
// current value, if one is set.
type EnvironmentVariable struct {
	ID           string `json:"id"                      yaml:"id"`
	SchemaName   string `json:"schema_name"             yaml:"schema_name"`
	DisplayName  string `json:"display_name"            yaml:"display_name"`
	Description  string `json:"description,omitempty"   yaml:"description,omitempty"`
	Type         string `json:"type"                    yaml:"type"`
	DefaultValue string `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	CurrentValue string `json:"current_value,omitempty" yaml:"current_value,omitempty"`
	IsRequired   bool   `json:"is_required"             yaml:"is_required"`
}

// Queue is a routing queue.
type Queue struct {
	ID           string `json:"id"                      yaml:"id"`
	Name         string `json:"name"                    yaml:"name"`
	Description  string `json:"description,omitempty"   yaml:"description,omitempty"`
	Type         string `json:"type"                    yaml:"type"`
	EmailAddress string `json:"email_address,omitempty" yaml:"email_address,omitempty"`
	EmailEnabled bool   `json:"email_enabled"           yaml:"email_enabled"`
}

// SecurityRole is a root security role.
type SecurityRole struct {
	ID           string `json:"id"            yaml:"id"`
	Name         string `json:"name"          yaml:"name"`
	BusinessUnit string `json:"business_unit" yaml:"business_unit"`
	IsManaged    bool   `json:"is_managed"    yaml:"is_managed"`
}

// OptionValue is one choice of an option set.
type OptionValue struct {
	Value int    `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// OptionSet is a global choice definition.
type OptionSet struct {
	ID          string        `json:"id"                    yaml:"id"`
	Name        string        `json:"name"                  yaml:"name"`
	DisplayName string        `json:"display_name"          yaml:"display_name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string        `json:"type"                  yaml:"type"`
	IsGlobal    bool          `json:"is_global"             yaml:"is_global"`
	IsManaged   bool          `json:"is_managed"            yaml:"is_managed"`
	Options     []OptionValue `json:"options"               yaml:"options"`
}

// Process is a classic workflow, business rule, action or business process
// flow.
type Process struct {
	ID            string `json:"id"                    yaml:"id"`
	Name          string `json:"name"                  yaml:"name"`
	Category      string `json:"category"              yaml:"category"`
	PrimaryEntity string `json:"primary_entity"        yaml:"primary_entity"`
	State         string `json:"state"                 yaml:"state"`
	Mode          string `json:"mode"                  yaml:"mode"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	IsManaged     bool   `json:"is_managed"            yaml:"is_managed"`
}

// FlowDefinition summarises the clientdata of a cloud flow.
type FlowDefinition struct {
	Triggers    []string `json:"triggers"     yaml:"triggers"`
	ActionCount int      `json:"action_count" yaml:"action_count"`
	Connectors  []string `json:"connectors"   yaml:"connectors"`
}

// CloudFlow is a modern (Power Automate) flow stored in a solution.
type CloudFlow struct {
	ID          string          `json:"id"                    yaml:"id"`
	Name        string          `json:"name"                  yaml:"name"`
	State       string          `json:"state"                 yaml:"state"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	IsManaged   bool            `json:"is_managed"            yaml:"is_managed"`
	ModifiedOn  *time.Time      `json:"modified_on,omitempty" yaml:"modified_on,omitempty"`
	Definition  *FlowDefinition `json:"definition,omitempty"  yaml:"definition,omitempty"`
}

// RelationshipKind distinguishes the relationship shapes used in diagrams.
type RelationshipKind string

// Relationship kinds. Many-to-one relationships are normalised to
// one-to-many from the referenced side.
const (
	RelationshipOneToMany  RelationshipKind = "OneToMany"
	RelationshipManyToMany RelationshipKind = "ManyToMany"
)

// EntityRelationship is one edge of an entity diagram.
type EntityRelationship struct {
	SchemaName string           `json:"schema_name" yaml:"schema_name"`
	Kind       RelationshipKind `json:"kind"        yaml:"kind"`
	// FromEntity is the referenced (one) side for one-to-many.
	FromEntity string `json:"from_entity" yaml:"from_entity"`
	// ToEntity is the referencing (many) side for one-to-many.
	ToEntity             string `json:"to_entity"                       yaml:"to_entity"`
	ReferencingAttribute string `json:"referencing_attribute,omitempty" yaml:"referencing_attribute,omitempty"`
	IntersectEntity      string `json:"intersect_entity,omitempty"      yaml:"intersect_entity,omitempty"`
}

// Key identifies a relationship for deduplication: directional for
// one-to-many, unordered for many-to-many.
func (r EntityRelationship) Key() string {
	if r.Kind == RelationshipManyToMany {
		a, b := r.FromEntity, r.ToEntity
		if b < a {
			a, b = b, a
		}

		return string(r.Kind) + ":" + a + "<->" + b
	}

	return string(r.Kind) + ":" + r.FromEntity + "->" + r.ToEntity
}

// EntityGraph is the result of a relationship crawl.
type EntityGraph struct {
	Entities      []string             `json:"entities"      yaml:"entities"`
	Relationships []EntityRelationship `json:"relationships" yaml:"relationships"`
}

// WhoAmI is the response of the WhoAmI function.
type WhoAmI struct {
	UserID         uuid.UUID `json:"UserId"         yaml:"user_id"`
	BusinessUnitID uuid.UUID `json:"BusinessUnitId" yaml:"business_unit_id"`
	OrganizationID uuid.UUID `json:"OrganizationId" yaml:"organization_id"`
}
