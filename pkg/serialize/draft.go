package serialize

// Draft collects edited values for one record. Each field is in one of three
// states: untouched (omitted from the payload), explicitly cleared (sent as
// null), or set to a value. The distinction is what lets a PATCH leave
// untouched columns alone.
type Draft struct {
	values map[string]any
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{values: make(map[string]any)}
}

// DraftFrom seeds a draft with initial values, typically the record being
// edited. Nil and empty-string values count as explicit clears, matching the
// wire convention.
func DraftFrom(values map[string]any) *Draft {
	d := NewDraft()
	for name, value := range values {
		d.Set(name, value)
	}
	return d
}

// Set records an edited value. A nil value or empty string marks the field as
// explicitly cleared.
func (d *Draft) Set(name string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if value == nil {
		d.values[name] = nil
		return
	}
	if s, ok := value.(string); ok && s == "" {
		d.values[name] = nil
		return
	}
	d.values[name] = value
}

// Clear marks the field as explicitly cleared (serialized as null).
func (d *Draft) Clear(name string) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	d.values[name] = nil
}

// Unset removes the field from the draft entirely so it is omitted from the
// payload.
func (d *Draft) Unset(name string) {
	delete(d.values, name)
}

// Get returns the drafted value and whether the field was touched.
func (d *Draft) Get(name string) (any, bool) {
	if d == nil || d.values == nil {
		return nil, false
	}
	value, ok := d.values[name]
	return value, ok
}

// Touched reports whether the field carries a drafted value or clear.
func (d *Draft) Touched(name string) bool {
	_, ok := d.Get(name)
	return ok
}

// Len returns the number of touched fields.
func (d *Draft) Len() int {
	if d == nil {
		return 0
	}
	return len(d.values)
}
