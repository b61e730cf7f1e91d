package csvimport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopfront/backend/internal/domain/bulk"
	"github.com/shopspring/decimal"
)

type fieldType int

const (
	typeString fieldType = iota
	typeInt
	typeDecimal
	typeBool
)

// FieldRule validates one column
type FieldRule struct {
	column    string
	kind      fieldType
	required  bool
	maxLength int
	min       *decimal.Decimal
	oneOf     []string
	unique    bool
	normalize func(string) string
}

// Field starts a rule for column. Values are strings unless a type is set.
func Field(column string) *FieldRule {
	return &FieldRule{column: column}
}

func (f *FieldRule) Required() *FieldRule   { f.required = true; return f }
func (f *FieldRule) Int() *FieldRule        { f.kind = typeInt; return f }
func (f *FieldRule) Decimal() *FieldRule    { f.kind = typeDecimal; return f }
func (f *FieldRule) Bool() *FieldRule       { f.kind = typeBool; return f }
func (f *FieldRule) MaxLength(n int) *FieldRule {
	f.maxLength = n
	return f
}

// Min sets an inclusive lower bound for numeric fields
func (f *FieldRule) Min(v int64) *FieldRule {
	d := decimal.NewFromInt(v)
	f.min = &d
	return f
}

// OneOf restricts the value to a case-insensitive set
func (f *FieldRule) OneOf(values ...string) *FieldRule {
	f.oneOf = values
	return f
}

// Unique rejects repeated values within the file. normalize maps values
// before comparison, e.g. to upper-case SKUs.
func (f *FieldRule) Unique(normalize func(string) string) *FieldRule {
	f.unique = true
	f.normalize = normalize
	return f
}

// Validator checks rows against a fixed rule set
type Validator struct {
	rules []*FieldRule
	seen  map[string]map[string]int
}

// NewValidator creates a validator for rules
func NewValidator(rules ...*FieldRule) *Validator {
	return &Validator{rules: rules, seen: make(map[string]map[string]int)}
}

// Required returns the columns whose rule is Required
func (v *Validator) Required() []string {
	var cols []string
	for _, r := range v.rules {
		if r.required {
			cols = append(cols, r.column)
		}
	}
	return cols
}

// Validate returns every rule violation of row
func (v *Validator) Validate(row *Row) []bulk.RowError {
	var errs []bulk.RowError
	for _, r := range v.rules {
		if err, ok := v.check(r, row); !ok {
			errs = append(errs, err)
		}
	}
	return errs
}

func (v *Validator) check(r *FieldRule, row *Row) (bulk.RowError, bool) {
	value := row.Get(r.column)
	fail := func(code, format string, args ...any) (bulk.RowError, bool) {
		return bulk.RowError{
			Row:     row.Line,
			Column:  r.column,
			Code:    code,
			Message: fmt.Sprintf(format, args...),
			Value:   value,
		}, false
	}

	if value == "" {
		if r.required {
			return fail(CodeRequired, "%s is required", r.column)
		}
		return bulk.RowError{}, true
	}
	if r.maxLength > 0 && len(value) > r.maxLength {
		return fail(CodeInvalidLength, "%s cannot exceed %d characters", r.column, r.maxLength)
	}

	switch r.kind {
	case typeInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fail(CodeInvalidType, "%s must be a whole number", r.column)
		}
		if r.min != nil && decimal.NewFromInt(n).LessThan(*r.min) {
			return fail(CodeInvalidRange, "%s must be at least %s", r.column, r.min)
		}
	case typeDecimal:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fail(CodeInvalidType, "%s must be a number", r.column)
		}
		if r.min != nil && d.LessThan(*r.min) {
			return fail(CodeInvalidRange, "%s must be at least %s", r.column, r.min)
		}
	case typeBool:
		if _, err := ParseBool(value); err != nil {
			return fail(CodeInvalidType, "%s must be true or false", r.column)
		}
	}

	if len(r.oneOf) > 0 && !containsFold(r.oneOf, value) {
		return fail(CodeInvalidValue, "%s must be one of %s", r.column, strings.Join(r.oneOf, ", "))
	}

	if r.unique {
		key := value
		if r.normalize != nil {
			key = r.normalize(value)
		}
		seen := v.seen[r.column]
		if seen == nil {
			seen = make(map[string]int)
			v.seen[r.column] = seen
		}
		if first, dup := seen[key]; dup {
			return fail(CodeDuplicateInFile, "duplicate %s (first seen in row %d)", r.column, first)
		}
		seen[key] = row.Line
	}
	return bulk.RowError{}, true
}

// ParseBool accepts true/false, yes/no, y/n and 1/0
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
