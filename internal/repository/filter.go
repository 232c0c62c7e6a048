package repository

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OperatorSeparator splits a filter key into field and operator, e.g. age__gt.
const OperatorSeparator = "__"

// ModeInsensitive marks a Condition whose text operators ignore case.
const ModeInsensitive = "insensitive"

// Condition collects the operators set on a single field. A nil operand means
// the operator was not requested.
type Condition struct {
	Lt         interface{}
	Lte        interface{}
	Gt         interface{}
	Gte        interface{}
	Contains   interface{}
	StartsWith interface{}
	EndsWith   interface{}
	In         []interface{}
	NotIn      []interface{}
	Not        interface{}
	Mode       string
}

// Conditions maps a field name to either a scalar (equality) or a *Condition.
type Conditions map[string]interface{}

// Fields returns the condition keys in sorted order.
func (c Conditions) Fields() []string {
	fields := make([]string, 0, len(c))
	for f := range c {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// BuildConditions turns a flat filter map into per-field conditions.
//
// Plain keys match by equality, except string values which default to a
// case-insensitive contains. Keys of the form field__op set the named operator;
// several operators on one field share a single Condition. Unknown operators
// fall back to equality on the base field. Nil values are skipped. Keys are
// processed in sorted order so the result does not depend on map iteration.
func BuildConditions(filters map[string]interface{}) Conditions {
	conds := make(Conditions)

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := filters[key]
		if isNil(value) {
			continue
		}

		field, op, hasOp := strings.Cut(key, OperatorSeparator)
		if !hasOp {
			if s, ok := value.(string); ok {
				conds[key] = &Condition{Contains: s, Mode: ModeInsensitive}
			} else {
				conds[key] = value
			}
			continue
		}

		if !isOperator(op) {
			conds[field] = value
			continue
		}

		var cond *Condition
		switch existing := conds[field].(type) {
		case nil:
			cond = &Condition{}
			conds[field] = cond
		case *Condition:
			cond = existing
		default:
			// equality already set on this field
			continue
		}

		switch op {
		case "lt":
			cond.Lt = value
		case "lte":
			cond.Lte = value
		case "gt":
			cond.Gt = value
		case "gte":
			cond.Gte = value
		case "contains":
			cond.Contains = value
		case "startsWith":
			cond.StartsWith = value
		case "endsWith":
			cond.EndsWith = value
		case "in":
			cond.In = toList(value)
		case "notIn":
			cond.NotIn = toList(value)
		case "not":
			cond.Not = value
		}
	}
	return conds
}

func isOperator(op string) bool {
	switch op {
	case "lt", "lte", "gt", "gte", "contains", "startsWith", "endsWith", "in", "notIn", "not":
		return true
	}
	return false
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func toList(v interface{}) []interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []interface{}{v}
	}
	out := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// ApplyConditions adds the conditions to the query as WHERE expressions.
// Field names go through the gorm naming strategy and are quoted as columns.
func ApplyConditions(db *gorm.DB, conds Conditions) *gorm.DB {
	if len(conds) == 0 {
		return db
	}
	var exprs []clause.Expression
	for _, field := range conds.Fields() {
		col := clause.Column{Name: db.NamingStrategy.ColumnName("", field)}
		switch c := conds[field].(type) {
		case *Condition:
			exprs = append(exprs, conditionExprs(col, c)...)
		default:
			exprs = append(exprs, clause.Eq{Column: col, Value: c})
		}
	}
	return db.Clauses(clause.Where{Exprs: exprs})
}

func conditionExprs(col clause.Column, c *Condition) []clause.Expression {
	var exprs []clause.Expression
	if c.Lt != nil {
		exprs = append(exprs, clause.Lt{Column: col, Value: c.Lt})
	}
	if c.Lte != nil {
		exprs = append(exprs, clause.Lte{Column: col, Value: c.Lte})
	}
	if c.Gt != nil {
		exprs = append(exprs, clause.Gt{Column: col, Value: c.Gt})
	}
	if c.Gte != nil {
		exprs = append(exprs, clause.Gte{Column: col, Value: c.Gte})
	}
	insensitive := c.Mode == ModeInsensitive
	if c.Contains != nil {
		exprs = append(exprs, likeExpr(col, "%"+escapeLike(c.Contains)+"%", insensitive))
	}
	if c.StartsWith != nil {
		exprs = append(exprs, likeExpr(col, escapeLike(c.StartsWith)+"%", insensitive))
	}
	if c.EndsWith != nil {
		exprs = append(exprs, likeExpr(col, "%"+escapeLike(c.EndsWith), insensitive))
	}
	if c.In != nil {
		exprs = append(exprs, clause.IN{Column: col, Values: c.In})
	}
	if c.NotIn != nil {
		exprs = append(exprs, clause.Not(clause.IN{Column: col, Values: c.NotIn}))
	}
	if c.Not != nil {
		exprs = append(exprs, clause.Neq{Column: col, Value: c.Not})
	}
	return exprs
}

func likeExpr(col clause.Column, pattern string, insensitive bool) clause.Expression {
	if insensitive {
		return clause.Expr{SQL: "? ILIKE ?", Vars: []interface{}{col, pattern}}
	}
	return clause.Like{Column: col, Value: pattern}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(v interface{}) string {
	return likeEscaper.Replace(fmt.Sprint(v))
}

// ParseQueryFilters converts query-string parameters into filter input for
// BuildConditions. Repeated keys become lists; numbers and booleans are
// parsed into typed values. Keys listed in reserved are left out.
func ParseQueryFilters(values url.Values, reserved ...string) map[string]interface{} {
	skip := make(map[string]bool, len(reserved))
	for _, r := range reserved {
		skip[r] = true
	}
	filters := make(map[string]interface{}, len(values))
	for key, vals := range values {
		if skip[key] || len(vals) == 0 {
			continue
		}
		if len(vals) == 1 {
			filters[key] = parseScalar(vals[0])
			continue
		}
		list := make([]interface{}, len(vals))
		for i, v := range vals {
			list[i] = parseScalar(v)
		}
		filters[key] = list
	}
	return filters
}

func parseScalar(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}
