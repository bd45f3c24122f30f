package schema

import "encoding/json"

// FieldsetRow is one layout row inside a fieldset. A row with multiple names
// renders as a sub-row grid.
type FieldsetRow []string

func (r *FieldsetRow) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = FieldsetRow{single}
		return nil
	}

	var multi []string
	if err := json.Unmarshal(data, &multi); err != nil {
		return err
	}
	*r = FieldsetRow(multi)
	return nil
}

// Fieldset is a named, ordered grouping of field names used only for form
// layout.
type Fieldset struct {
	Name        string        `json:"name"`
	Title       string        `json:"title"`
	Rows        []FieldsetRow `json:"fields"`
	Classes     []string      `json:"classes,omitempty"`
	Description string        `json:"description,omitempty"`
}

// FieldNames returns the fieldset's field names flattened across rows.
func (fs Fieldset) FieldNames() []string {
	var names []string
	for _, row := range fs.Rows {
		names = append(names, row...)
	}
	return names
}
