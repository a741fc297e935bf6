package catalog

import (
	"strconv"
	"strings"

	"github.com/tgm2018/OAP/internal/expr"
	"github.com/tgm2018/OAP/pkg/types"
)

// MatchesPartition reports whether a file with the given partition value
// tuple survives the partition filters. A file is dropped only when some
// filter evaluates to a definite false over its partition values;
// unsupported shapes and unparseable values keep the file.
func MatchesPartition(partitionSchema types.Schema, values []string, filters []expr.Expression) bool {
	for _, f := range filters {
		if matched, known := evalPartition(partitionSchema, values, f); known && !matched {
			return false
		}
	}
	return true
}

// evalPartition evaluates a filter over a partition tuple with three-valued
// logic: (result, known). Unknown never excludes.
func evalPartition(schema types.Schema, values []string, e expr.Expression) (bool, bool) {
	switch x := e.(type) {
	case *expr.Literal:
		if b, ok := x.Value.(bool); ok {
			return b, true
		}
		return false, false
	case *expr.Comparison:
		return evalComparison(schema, values, x)
	case *expr.In:
		return evalIn(schema, values, x)
	case *expr.Between:
		lo := expr.NewComparison(expr.OpGe, x.Expr, x.Low)
		hi := expr.NewComparison(expr.OpLe, x.Expr, x.High)
		return evalPartition(schema, values, expr.NewAnd(lo, hi))
	case *expr.Not:
		matched, known := evalPartition(schema, values, x.Operand)
		return !matched, known
	case *expr.And:
		lm, lk := evalPartition(schema, values, x.Left)
		rm, rk := evalPartition(schema, values, x.Right)
		if (lk && !lm) || (rk && !rm) {
			return false, true
		}
		return true, lk && rk
	case *expr.Or:
		lm, lk := evalPartition(schema, values, x.Left)
		rm, rk := evalPartition(schema, values, x.Right)
		if (lk && lm) || (rk && rm) {
			return true, true
		}
		return false, lk && rk
	default:
		return false, false
	}
}

func evalComparison(schema types.Schema, values []string, c *expr.Comparison) (bool, bool) {
	col, lit, op, ok := normalizeComparison(c)
	if !ok {
		return false, false
	}

	raw, ok := partitionValue(schema, values, col.Column)
	if !ok || raw == "" {
		return false, false
	}

	cmp, ok := comparePartitionValue(raw, col.Column.Type, lit.Value)
	if !ok {
		return false, false
	}

	switch op {
	case expr.OpEq:
		return cmp == 0, true
	case expr.OpNe:
		return cmp != 0, true
	case expr.OpLt:
		return cmp < 0, true
	case expr.OpLe:
		return cmp <= 0, true
	case expr.OpGt:
		return cmp > 0, true
	case expr.OpGe:
		return cmp >= 0, true
	default:
		return false, false
	}
}

func evalIn(schema types.Schema, values []string, in *expr.In) (bool, bool) {
	col, ok := in.Expr.(*expr.ColumnRef)
	if !ok {
		return false, false
	}
	raw, ok := partitionValue(schema, values, col.Column)
	if !ok || raw == "" {
		return false, false
	}

	allKnown := true
	for _, item := range in.List {
		lit, ok := item.(*expr.Literal)
		if !ok {
			allKnown = false
			continue
		}
		cmp, ok := comparePartitionValue(raw, col.Column.Type, lit.Value)
		if !ok {
			allKnown = false
			continue
		}
		if cmp == 0 {
			return true, true
		}
	}
	return false, allKnown
}

// normalizeComparison orients a comparison as column-op-literal, flipping
// the operator when the column is on the right.
func normalizeComparison(c *expr.Comparison) (*expr.ColumnRef, *expr.Literal, expr.CompareOp, bool) {
	if col, ok := c.Left.(*expr.ColumnRef); ok {
		if lit, ok := c.Right.(*expr.Literal); ok {
			return col, lit, c.Op, true
		}
	}
	if col, ok := c.Right.(*expr.ColumnRef); ok {
		if lit, ok := c.Left.(*expr.Literal); ok {
			return col, lit, flipOp(c.Op), true
		}
	}
	return nil, nil, "", false
}

func flipOp(op expr.CompareOp) expr.CompareOp {
	switch op {
	case expr.OpLt:
		return expr.OpGt
	case expr.OpLe:
		return expr.OpGe
	case expr.OpGt:
		return expr.OpLt
	case expr.OpGe:
		return expr.OpLe
	default:
		return op
	}
}

// partitionValue finds the raw directory value for a partition column.
func partitionValue(schema types.Schema, values []string, col types.Column) (string, bool) {
	for i, c := range schema.Columns {
		if c.Key() == col.Key() && i < len(values) {
			return values[i], true
		}
	}
	return "", false
}

// comparePartitionValue compares a raw directory value against a filter
// literal under the column's type. Returns (-1|0|1, true) on success.
func comparePartitionValue(raw string, colType types.DataType, lit interface{}) (int, bool) {
	switch colType {
	case types.TypeInt32, types.TypeInt64, types.TypeTimestamp:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, false
		}
		l, ok := toInt64(lit)
		if !ok {
			return 0, false
		}
		return compareInt64(v, l), true
	case types.TypeFloat64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		l, ok := toFloat64(lit)
		if !ok {
			return 0, false
		}
		return compareFloat64(v, l), true
	case types.TypeBoolean:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return 0, false
		}
		l, ok := lit.(bool)
		if !ok {
			return 0, false
		}
		// Booleans order false < true so range operators prune correctly.
		return compareBool(v, l), true
	case types.TypeString:
		l, ok := lit.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(raw, l), true
	default:
		return 0, false
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
