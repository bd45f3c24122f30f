package form

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-adminkit/pkg/client"
)

// formLevelKeys are the detail keys backends use for messages that belong to
// the whole submission rather than one field.
var formLevelKeys = map[string]bool{
	"__all__":          true,
	"non_field_errors": true,
	"detail":           true,
}

// ApplyServerErrors attaches a rejected submission's messages to the form.
// Field keys land on their inputs; form-level keys and keys naming unknown
// fields land on Form.Errors so no message is silently dropped. The input
// values stay untouched and the form remains submittable.
func (f *Form) ApplyServerErrors(verr *client.ValidationError) {
	if verr == nil {
		return
	}
	if verr.Message != "" && len(verr.Details) == 0 {
		f.Errors = append(f.Errors, verr.Message)
		return
	}

	matched := make(map[string]bool, len(verr.Details))
	for si := range f.Sections {
		for ri := range f.Sections[si].Rows {
			for fi := range f.Sections[si].Rows[ri] {
				fv := &f.Sections[si].Rows[ri][fi]
				if msgs, ok := verr.Details[fv.Field.Name]; ok {
					fv.Errors = append(fv.Errors, msgs...)
					matched[fv.Field.Name] = true
				}
			}
		}
	}

	unmatched := make([]string, 0, len(verr.Details))
	for key := range verr.Details {
		if !matched[key] {
			unmatched = append(unmatched, key)
		}
	}
	sort.Strings(unmatched)
	for _, key := range unmatched {
		for _, msg := range verr.Details[key] {
			if formLevelKeys[key] {
				f.Errors = append(f.Errors, msg)
			} else {
				f.Errors = append(f.Errors, fmt.Sprintf("%s: %s", key, msg))
			}
		}
	}
}

// HasErrors reports whether any field or the form itself carries an error.
func (f *Form) HasErrors() bool {
	if len(f.Errors) > 0 {
		return true
	}
	for _, fv := range f.Fields() {
		if len(fv.Errors) > 0 {
			return true
		}
	}
	return false
}

// ClearErrors drops every message before a resubmission.
func (f *Form) ClearErrors() {
	f.Errors = nil
	for si := range f.Sections {
		for ri := range f.Sections[si].Rows {
			for fi := range f.Sections[si].Rows[ri] {
				f.Sections[si].Rows[ri][fi].Errors = nil
			}
		}
	}
}
