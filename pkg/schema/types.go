package schema

import (
	"encoding/json"
	"strings"
)

// RelationKind enumerates the relation multiplicities the admin API reports.
type RelationKind string

const (
	RelationForeignKey RelationKind = "foreign_key"
	RelationOneToOne   RelationKind = "one_to_one"
	RelationManyToMany RelationKind = "many_to_many"
)

// Relation describes the target of a relational field.
type Relation struct {
	Model       string       `json:"model"`
	AppLabel    string       `json:"app_label"`
	ModelName   string       `json:"model_name"`
	VerboseName string       `json:"verbose_name"`
	Kind        RelationKind `json:"type"`
}

// Many reports whether the relation carries multiple targets.
func (r *Relation) Many() bool {
	return r != nil && r.Kind == RelationManyToMany
}

// Choice is one entry of a fixed choice list. Values are strings or numbers
// depending on the underlying column type.
type Choice struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// Field describes one editable attribute of a resource. The shape mirrors the
// admin API's field schema; unknown widget hints are preserved verbatim so the
// widget resolver can apply its fallback.
type Field struct {
	Name          string   `json:"name"`
	VerboseName   string   `json:"verbose_name"`
	HelpText      string   `json:"help_text,omitempty"`
	Required      bool     `json:"required"`
	Nullable      bool     `json:"nullable"`
	Editable      bool     `json:"editable"`
	PrimaryKey    bool     `json:"primary_key"`
	ReadOnly      bool     `json:"readonly,omitempty"`
	Type          string   `json:"type"`
	Format        string   `json:"format,omitempty"`
	Widget        string   `json:"widget"`
	MaxLength     *int     `json:"max_length,omitempty"`
	MaxDigits     *int     `json:"max_digits,omitempty"`
	DecimalPlaces *int     `json:"decimal_places,omitempty"`
	Minimum       *float64 `json:"minimum,omitempty"`
	Default       any      `json:"default,omitempty"`
	HasDefault    bool     `json:"has_default,omitempty"`
	Choices       []Choice `json:"choices,omitempty"`
	Relation      *Relation `json:"relation,omitempty"`
}

// Label returns the verbose name, falling back to a titleized field name.
func (f Field) Label() string {
	if v := strings.TrimSpace(f.VerboseName); v != "" {
		return v
	}
	return Labelize(f.Name)
}

// Boolean reports whether the field holds a true/false value.
func (f Field) Boolean() bool {
	return f.Type == "boolean" || f.Widget == "checkbox"
}

// Permissions is the caller's permission set for one model.
type Permissions struct {
	Add    bool `json:"add"`
	Change bool `json:"change"`
	Delete bool `json:"delete"`
	View   bool `json:"view"`
}

// Endpoints carries the resource-relative URLs published by the schema.
type Endpoints struct {
	List         string `json:"list"`
	Create       string `json:"create"`
	Schema       string `json:"schema"`
	Detail       string `json:"detail,omitempty"`
	Update       string `json:"update,omitempty"`
	Delete       string `json:"delete,omitempty"`
	Autocomplete string `json:"autocomplete,omitempty"`
}

// Action is a bulk action available from the list page.
type Action struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ObjectTool is an action button rendered on the detail page.
type ObjectTool struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Icon    string `json:"icon,omitempty"`
	Variant string `json:"variant,omitempty"`
	Confirm string `json:"confirm,omitempty"`
}

// CustomView describes a model-scoped custom endpoint.
type CustomView struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Detail      bool     `json:"detail"`
	Methods     []string `json:"methods"`
}

// Inline describes a nested resource edited alongside its parent.
type Inline struct {
	Model             string  `json:"model"`
	AppLabel          string  `json:"app_label"`
	ModelName         string  `json:"model_name"`
	VerboseName       string  `json:"verbose_name"`
	VerboseNamePlural string  `json:"verbose_name_plural"`
	FKName            *string `json:"fk_name"`
	Extra             int     `json:"extra"`
	MinNum            int     `json:"min_num"`
	MaxNum            *int    `json:"max_num"`
}

// Info identifies the model a schema describes.
type Info struct {
	Name              string `json:"name"`
	AppLabel          string `json:"app_label"`
	ModelName         string `json:"model_name"`
	VerboseName       string `json:"verbose_name"`
	VerboseNamePlural string `json:"verbose_name_plural"`
	DBTable           string `json:"db_table,omitempty"`
	PKField           string `json:"pk_field,omitempty"`
}

// Column is one list-display entry. The admin API returns either bare field
// names or objects with metadata; UnmarshalJSON normalizes both into this
// shape.
type Column struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	IsHTML     bool   `json:"is_html,omitempty"`
	IsMethod   bool   `json:"is_method,omitempty"`
	Sortable   bool   `json:"sortable,omitempty"`
	OrderField string `json:"order_field,omitempty"`
}

func (c *Column) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c.Name = name
		c.Label = Labelize(name)
		return nil
	}

	type alias Column
	var full alias
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	*c = Column(full)
	if c.Label == "" {
		c.Label = Labelize(c.Name)
	}
	return nil
}

// Model is one resource type's schema. Fetched once per resource and treated
// as read-only; cache it with a short TTL and drop it on logout.
type Model struct {
	Info        Info         `json:"model"`
	Fields      []Field      `json:"fields"`
	Fieldsets   []Fieldset   `json:"fieldsets"`
	ListDisplay []Column     `json:"list_display"`

	// ListDisplayLinks selects the columns that link to the detail route.
	// nil keeps the default (first column links); an empty slice disables
	// linking entirely.
	ListDisplayLinks *[]string `json:"list_display_links"`

	ListEditable  []string     `json:"list_editable,omitempty"`
	DateHierarchy string       `json:"date_hierarchy,omitempty"`
	ListFilter    []string     `json:"list_filter"`
	SearchFields  []string     `json:"search_fields"`
	Ordering      []string     `json:"ordering"`
	Actions       []Action     `json:"actions"`
	ObjectTools   []ObjectTool `json:"object_tools,omitempty"`
	CustomViews   []CustomView `json:"custom_views,omitempty"`
	Inlines       []Inline     `json:"inlines"`
	Permissions   Permissions  `json:"permissions"`
	Endpoints     Endpoints    `json:"endpoints"`
	CustomCSS     []string     `json:"custom_css,omitempty"`
	CustomJS      []string     `json:"custom_js,omitempty"`
}

// Field looks up a field descriptor by name.
func (m *Model) Field(name string) (Field, bool) {
	if m == nil {
		return Field{}, false
	}
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// PKField returns the schema's primary key field name, defaulting to "id".
func (m *Model) PKField() string {
	if m != nil && strings.TrimSpace(m.Info.PKField) != "" {
		return m.Info.PKField
	}
	return "id"
}

// LinkColumns resolves which displayed columns should render as detail links.
func (m *Model) LinkColumns() []string {
	if m == nil || len(m.ListDisplay) == 0 {
		return nil
	}
	if m.ListDisplayLinks != nil {
		return *m.ListDisplayLinks
	}
	return []string{m.ListDisplay[0].Name}
}
