package schema

import (
	"fmt"
	"time"

	"github.com/IsakLindberger/Weather-Predict-Model/internal/domain"
)

// ViolationKind classifies a contract violation.
type ViolationKind string

const (
	MissingColumn  ViolationKind = "missing-column"
	TypeMismatch   ViolationKind = "type-mismatch"
	OutOfRange     ViolationKind = "out-of-range"
	UnexpectedNull ViolationKind = "unexpected-null"
)

// Violation identifies one nonconformance. Row is the first offending row
// index, or -1 when the violation is not tied to a row.
type Violation struct {
	Column string
	Kind   ViolationKind
	Row    int
	Detail string
}

func (v Violation) String() string {
	if v.Row < 0 {
		return fmt.Sprintf("%s: %s: %s", v.Kind, v.Column, v.Detail)
	}
	return fmt.Sprintf("%s: %s row %d: %s", v.Kind, v.Column, v.Row, v.Detail)
}

// Report is the outcome of validating one dataset against one schema.
// It is data, not control flow: callers inspect it and decide.
type Report struct {
	Violations []Violation
}

// Valid reports whether the dataset conforms. Holds iff Violations is empty.
func (r Report) Valid() bool {
	return len(r.Violations) == 0
}

// Messages renders the violations for logs and metadata records.
func (r Report) Messages() []string {
	if len(r.Violations) == 0 {
		return nil
	}
	out := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		out[i] = v.String()
	}
	return out
}

// Validate checks a dataset against a schema, collecting every violation
// rather than stopping at the first; callers need the complete list to act
// once. Pure function: identical inputs always yield identical reports.
//
// Per column it records at most one violation of each kind, naming the
// first offending row, so reports stay bounded on large datasets.
func Validate(ds *domain.Dataset, s Schema) Report {
	var report Report

	for _, col := range s.Columns {
		if !ds.HasColumn(col.Name) {
			if col.Required {
				report.Violations = append(report.Violations, Violation{
					Column: col.Name,
					Kind:   MissingColumn,
					Row:    -1,
					Detail: "required column not present",
				})
			}
			continue
		}
		report.Violations = append(report.Violations, checkColumn(ds, col)...)
	}

	return report
}

// checkColumn scans one present column for type, null, and constraint
// violations, recording the first offending row of each kind.
func checkColumn(ds *domain.Dataset, col Column) []Violation {
	var out []Violation
	var typeV, nullV, rangeV *Violation

	for i, row := range ds.Rows {
		v := row[col.Name]

		if v == nil {
			if col.NonNull && nullV == nil {
				nullV = &Violation{
					Column: col.Name,
					Kind:   UnexpectedNull,
					Row:    i,
					Detail: "null where non-null is required",
				}
			}
			continue
		}

		if !typeMatches(col.Type, v) {
			if typeV == nil {
				typeV = &Violation{
					Column: col.Name,
					Kind:   TypeMismatch,
					Row:    i,
					Detail: fmt.Sprintf("declared %s, observed %s", col.Type, domain.ValueKind(v)),
				}
			}
			continue
		}

		if rangeV == nil {
			if viol := checkConstraints(col, i, v); viol != nil {
				rangeV = viol
			}
		}
	}

	for _, v := range []*Violation{typeV, rangeV, nullV} {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// typeMatches reports whether a cell value conforms to the declared type.
// int64 widens to float; nothing narrows to int.
func typeMatches(t ColumnType, v any) bool {
	switch t {
	case TypeFloat:
		_, ok := domain.AsFloat(v)
		return ok
	case TypeInt:
		_, ok := v.(int64)
		return ok
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeTimestamp:
		_, ok := v.(time.Time)
		return ok
	default:
		return false
	}
}

// checkConstraints checks numeric range and categorical membership for one
// type-conforming value.
func checkConstraints(col Column, row int, v any) *Violation {
	if col.Min != nil || col.Max != nil {
		f, ok := domain.AsFloat(v)
		if ok {
			if col.Min != nil && f < *col.Min {
				return &Violation{
					Column: col.Name, Kind: OutOfRange, Row: row,
					Detail: fmt.Sprintf("%g below minimum %g", f, *col.Min),
				}
			}
			if col.Max != nil && f > *col.Max {
				return &Violation{
					Column: col.Name, Kind: OutOfRange, Row: row,
					Detail: fmt.Sprintf("%g above maximum %g", f, *col.Max),
				}
			}
		}
	}

	if len(col.Allowed) > 0 {
		s, ok := v.(string)
		if ok && !contains(col.Allowed, s) {
			return &Violation{
				Column: col.Name, Kind: OutOfRange, Row: row,
				Detail: fmt.Sprintf("%q not in allowed set %v", s, col.Allowed),
			}
		}
	}

	return nil
}

func contains(set []string, s string) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}
