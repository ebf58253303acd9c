package spray

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoFiles is returned when a submission has no selected files.
	ErrNoFiles = errors.New("no files selected")
	// ErrReadOnlyField is returned when editing a fixed field.
	ErrReadOnlyField = errors.New("field is read-only")
	// ErrUnknownField is returned for a field key the form does not have.
	ErrUnknownField = errors.New("unknown field")
)

// Flag names accepted by SetFlag.
const (
	FlagOverwrite          = "overwrite"
	FlagReplicate          = "replicate"
	FlagNoSplit            = "nosplit"
	FlagNoCommon           = "noCommon"
	FlagCompress           = "compress"
	FlagFailIfNoSourceFile = "failIfNoSourceFile"
	FlagDelayedReplication = "delayedReplication"
)

// Flags lists the option checkboxes in display order.
func Flags() []string {
	return []string{
		FlagOverwrite,
		FlagReplicate,
		FlagNoSplit,
		FlagNoCommon,
		FlagCompress,
		FlagFailIfNoSourceFile,
		FlagDelayedReplication,
	}
}

// FieldError is one field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every failing field in display order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Message returns the message recorded for field, or "".
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Form holds the Import JSON values for one dialog session plus the current
// per-field error messages. It is not safe for concurrent use.
type Form struct {
	values FormValues
	errors map[string]string
}

// NewForm creates a form with defaults and one row per selected file.
func NewForm(selection []LandingZoneFile) (*Form, error) {
	f := &Form{}
	if err := f.Reset(selection); err != nil {
		return nil, err
	}
	return f, nil
}

// Reset restores defaults and replaces all rows from selection. Prior edits
// are discarded.
func (f *Form) Reset(selection []LandingZoneFile) error {
	if err := ValidateSelection(selection); err != nil {
		return err
	}
	f.values = DefaultValues()
	f.values.SelectedFiles = NewRows(selection)
	f.errors = map[string]string{}
	return nil
}

// Values returns a snapshot of the current values.
func (f *Form) Values() FormValues {
	return f.values.clone()
}

// Len returns the number of file rows.
func (f *Form) Len() int {
	return len(f.values.SelectedFiles)
}

// Error returns the current message for field, or "".
func (f *Form) Error(field string) string {
	return f.errors[field]
}

// Errors returns a copy of the current field errors.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// SetDestGroup sets the target group.
func (f *Form) SetDestGroup(group string) {
	f.values.DestGroup = group
	f.revalidate(FieldDestGroup)
}

// SetQueue sets the DFU server queue.
func (f *Form) SetQueue(queue string) {
	f.values.DFUServerQueue = queue
	f.revalidate(FieldDFUServerQueue)
}

// SetNamePrefix sets the target scope prefix.
func (f *Form) SetNamePrefix(prefix string) {
	f.values.NamePrefix = prefix
	f.revalidate(FieldNamePrefix)
}

// SetSourceFormat sets the source encoding.
func (f *Form) SetSourceFormat(format SourceFormat) {
	f.values.SourceFormat = format
	f.revalidate(FieldSourceFormat)
}

// SetMaxRecordSize sets the optional maximum record length.
func (f *Form) SetMaxRecordSize(size string) {
	f.values.SourceMaxRecordSize = size
	f.revalidate(FieldSourceMaxRecordSize)
}

// SetExpireDays sets the optional expiry in days.
func (f *Form) SetExpireDays(days string) {
	f.values.ExpireDays = days
	f.revalidate(FieldExpireDays)
}

// SetTargetName sets the target logical name of row index.
func (f *Form) SetTargetName(index int, name string) error {
	if index < 0 || index >= len(f.values.SelectedFiles) {
		return fmt.Errorf("row %d: %w", index, ErrUnknownField)
	}
	f.values.SelectedFiles[index].TargetName = name
	f.revalidate(TargetNameField(index))
	return nil
}

// SetRowPath sets the JSON row path of row index.
func (f *Form) SetRowPath(index int, rowPath string) error {
	if index < 0 || index >= len(f.values.SelectedFiles) {
		return fmt.Errorf("row %d: %w", index, ErrUnknownField)
	}
	f.values.SelectedFiles[index].TargetRowPath = rowPath
	return nil
}

// Flag reports the state of a named option.
func (f *Form) Flag(name string) (bool, error) {
	p, err := f.flagRef(name)
	if err != nil {
		return false, err
	}
	return *p, nil
}

// SetFlag sets a named option. delayedReplication is fixed.
func (f *Form) SetFlag(name string, on bool) error {
	if name == FlagDelayedReplication {
		return fmt.Errorf("%s: %w", name, ErrReadOnlyField)
	}
	p, err := f.flagRef(name)
	if err != nil {
		return err
	}
	*p = on
	return nil
}

func (f *Form) flagRef(name string) (*bool, error) {
	switch name {
	case FlagOverwrite:
		return &f.values.Overwrite, nil
	case FlagReplicate:
		return &f.values.Replicate, nil
	case FlagNoSplit:
		return &f.values.NoSplit, nil
	case FlagNoCommon:
		return &f.values.NoCommon, nil
	case FlagCompress:
		return &f.values.Compress, nil
	case FlagFailIfNoSourceFile:
		return &f.values.FailIfNoSourceFile, nil
	case FlagDelayedReplication:
		return &f.values.DelayedReplication, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnknownField)
}

// Set assigns a text field by key. Row fields use the selectedFiles.N.X form.
func (f *Form) Set(field, value string) error {
	switch field {
	case FieldDestGroup:
		f.SetDestGroup(value)
	case FieldDFUServerQueue:
		f.SetQueue(value)
	case FieldNamePrefix:
		f.SetNamePrefix(value)
	case FieldSourceFormat:
		format, err := ParseSourceFormat(value)
		if err != nil {
			return err
		}
		f.SetSourceFormat(format)
	case FieldSourceMaxRecordSize:
		f.SetMaxRecordSize(value)
	case FieldExpireDays:
		f.SetExpireDays(value)
	default:
		for i := range f.values.SelectedFiles {
			switch field {
			case TargetNameField(i):
				return f.SetTargetName(i, value)
			case RowPathField(i):
				return f.SetRowPath(i, value)
			}
		}
		return fmt.Errorf("%s: %w", field, ErrUnknownField)
	}
	return nil
}

// Validate runs every rule, replaces the error map and returns a
// *ValidationError when any field fails.
func (f *Form) Validate() error {
	f.errors = map[string]string{}
	var failed []FieldError
	for _, key := range fieldKeys(f.values) {
		if msg := checkField(f.values, key); msg != "" {
			f.errors[key] = msg
			failed = append(failed, FieldError{Field: key, Message: msg})
		}
	}
	if len(failed) > 0 {
		return &ValidationError{Fields: failed}
	}
	return nil
}

func (f *Form) revalidate(key string) {
	if msg := checkField(f.values, key); msg != "" {
		f.errors[key] = msg
		return
	}
	delete(f.errors, key)
}
