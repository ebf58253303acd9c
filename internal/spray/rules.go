package spray

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field keys used for error reporting.
const (
	FieldDestGroup           = "destGroup"
	FieldDFUServerQueue      = "DFUServerQueue"
	FieldNamePrefix          = "namePrefix"
	FieldSourceFormat        = "sourceFormat"
	FieldSourceMaxRecordSize = "sourceMaxRecordSize"
	FieldExpireDays          = "expireDays"

	rowTargetName = "TargetName"
	rowRowPath    = "TargetRowPath"
)

// RowField returns the key of a per-row field, e.g. selectedFiles.0.TargetName.
func RowField(index int, name string) string {
	return fmt.Sprintf("selectedFiles.%d.%s", index, name)
}

// TargetNameField is the key of the target name in row index.
func TargetNameField(index int) string {
	return RowField(index, rowTargetName)
}

// RowPathField is the key of the row path in row index.
func RowPathField(index int) string {
	return RowField(index, rowRowPath)
}

var (
	namePrefixPattern = regexp.MustCompile(`(?i)^([a-z0-9]+(::)?)+$`)
	targetNamePattern = regexp.MustCompile(`(?i)^([a-z0-9]+[-a-z0-9 \._]+)+$`)
)

// rule is one validator tag chain and the message shown for each failing tag.
type rule struct {
	tag      string
	messages map[string]string
}

var (
	groupRule = rule{
		tag:      "required",
		messages: map[string]string{"required": "Select a Group"},
	}
	queueRule = rule{
		tag:      "required",
		messages: map[string]string{"required": "Select a Queue"},
	}
	formatRule = rule{
		tag:      "required,sourceformat",
		messages: map[string]string{"required": "Select a Format", "sourceformat": "Select a Format"},
	}
	prefixRule = rule{
		tag:      "omitempty,scopename",
		messages: map[string]string{"scopename": "Name prefix may only contain letters, digits and :: separators"},
	}
	targetNameRule = rule{
		tag: "required,targetname",
		messages: map[string]string{
			"required":   "Target name is required",
			"targetname": "Target name must start with a letter or digit and may contain - . _ and spaces",
		},
	}
	maxRecordSizeRule = rule{
		tag:      "omitempty,posint",
		messages: map[string]string{"posint": "Max record length must be a positive whole number"},
	}
	expireDaysRule = rule{
		tag: "omitempty,numeric,atleastone",
		messages: map[string]string{
			"numeric":    "Expire days must be a number",
			"atleastone": "Expire days must be at least 1",
		},
	}
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "scopename", func(fl validator.FieldLevel) bool {
		return namePrefixPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "targetname", func(fl validator.FieldLevel) bool {
		return targetNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "sourceformat", func(fl validator.FieldLevel) bool {
		f, err := ParseSourceFormat(fl.Field().String())
		return err == nil && f.Valid()
	})
	mustRegister(v, "posint", func(fl validator.FieldLevel) bool {
		n, err := strconv.ParseUint(fl.Field().String(), 10, 64)
		return err == nil && n > 0
	})
	mustRegister(v, "atleastone", func(fl validator.FieldLevel) bool {
		n, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && n >= 1
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

// check runs r against value and returns the message for the first failing
// tag, or "" when the value passes.
func (r rule) check(value string) string {
	err := validate.Var(value, r.tag)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := r.messages[verrs[0].Tag()]; ok {
			return msg
		}
		return fmt.Sprintf("failed %s", verrs[0].Tag())
	}
	return err.Error()
}

// checkField validates one field of v by key. Unknown keys and free-text
// fields always pass.
func checkField(v FormValues, key string) string {
	switch key {
	case FieldDestGroup:
		return groupRule.check(v.DestGroup)
	case FieldDFUServerQueue:
		return queueRule.check(v.DFUServerQueue)
	case FieldNamePrefix:
		return prefixRule.check(v.NamePrefix)
	case FieldSourceFormat:
		return formatRule.check(v.SourceFormat.Key())
	case FieldSourceMaxRecordSize:
		return maxRecordSizeRule.check(strings.TrimSpace(v.SourceMaxRecordSize))
	case FieldExpireDays:
		return expireDaysRule.check(strings.TrimSpace(v.ExpireDays))
	}
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] != "selectedFiles" || parts[2] != rowTargetName {
		return ""
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 || idx >= len(v.SelectedFiles) {
		return ""
	}
	return targetNameRule.check(v.SelectedFiles[idx].TargetName)
}

// fieldKeys lists every validated key of v in display order.
func fieldKeys(v FormValues) []string {
	keys := []string{FieldDestGroup, FieldDFUServerQueue, FieldNamePrefix}
	for i := range v.SelectedFiles {
		keys = append(keys, TargetNameField(i))
	}
	return append(keys, FieldSourceFormat, FieldSourceMaxRecordSize, FieldExpireDays)
}
