// Package query turns untrusted query-string input into a typed constraint
// list and renders it as a parameterized WHERE clause. It performs no I/O:
// repositories own the actual fetch, and count before they slice.
package query

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpGt  Op = ">"
	OpLte Op = "<="
	OpLt  Op = "<"
)

// Constraint is a single field-level condition, either an equality on the
// literal string value or a numeric range bound.
type Constraint struct {
	Field string
	Op    Op
	Value any
}

// Spec is the parsed form of one listing request: an optional free-text
// keyword, a 1-based page, and a conjunction of field constraints.
type Spec struct {
	Keyword     string
	Page        int
	Constraints []Constraint
}

var (
	reField = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reRange = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\[(gte|gt|lte|lt)\]$`)
)

var rangeOps = map[string]Op{
	"gte": OpGte,
	"gt":  OpGt,
	"lte": OpLte,
	"lt":  OpLt,
}

// Reserved keys are pipeline controls, never filterable fields. The page
// size is server-configured; a client-sent limit is ignored outright.
func reserved(key string) bool {
	return key == "keyword" || key == "page" || key == "limit"
}

// Parse builds a Spec from raw query parameters. Malformed input is handled
// leniently: a non-numeric range value or a non-identifier key drops that
// constraint silently, and a bad page number falls back to 1.
func Parse(values url.Values) Spec {
	s := Spec{Page: 1}
	s.Keyword = strings.TrimSpace(values.Get("keyword"))
	if n, err := strconv.Atoi(strings.TrimSpace(values.Get("page"))); err == nil && n >= 1 {
		s.Page = n
	}

	for key, vals := range values {
		if reserved(key) || len(vals) == 0 {
			continue
		}
		raw := vals[0]
		if m := reRange.FindStringSubmatch(key); m != nil {
			n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				continue
			}
			s.Constraints = append(s.Constraints, Constraint{Field: m[1], Op: rangeOps[m[2]], Value: n})
			continue
		}
		if !reField.MatchString(key) {
			continue
		}
		s.Constraints = append(s.Constraints, Constraint{Field: key, Op: OpEq, Value: raw})
	}

	// Map iteration order is random; keep the rendered clause deterministic.
	sort.Slice(s.Constraints, func(i, j int) bool {
		if s.Constraints[i].Field != s.Constraints[j].Field {
			return s.Constraints[i].Field < s.Constraints[j].Field
		}
		return s.Constraints[i].Op < s.Constraints[j].Op
	})
	return s
}

// Where renders the spec against a concrete table: searchField is the column
// the keyword substring-matches (case-insensitively), columns is the set of
// filterable column names. A constraint on a column outside the set matches
// nothing, the way an equality on an absent document field would.
func (s Spec) Where(searchField string, columns map[string]bool) (string, []any) {
	var conds []string
	var args []any

	if s.Keyword != "" {
		conds = append(conds, "LOWER("+searchField+") LIKE ?")
		args = append(args, "%"+strings.ToLower(s.Keyword)+"%")
	}
	for _, c := range s.Constraints {
		if !columns[c.Field] {
			conds = append(conds, "0=1")
			continue
		}
		conds = append(conds, c.Field+" "+string(c.Op)+" ?")
		args = append(args, c.Value)
	}
	if len(conds) == 0 {
		return "1=1", nil
	}
	return strings.Join(conds, " AND "), args
}

// Offset converts the 1-based page to a row offset for a fixed page size.
func (s Spec) Offset(pageSize int) int {
	if s.Page < 1 {
		return 0
	}
	return pageSize * (s.Page - 1)
}
