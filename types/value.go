package types

import (
	"fmt"
	"time"
)

// TypeID is the SQL type tag carried by every Value and every ColumnDef.
type TypeID uint8

const (
	Invalid TypeID = iota
	Boolean
	SmallInt
	Integer
	BigInt
	Real
	Double
	Date
	Varchar
	Null
)

func (t TypeID) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case SmallInt:
		return "SMALLINT"
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Real:
		return "REAL"
	case Double:
		return "DOUBLE"
	case Date:
		return "DATE"
	case Varchar:
		return "VARCHAR"
	case Null:
		return "NULL"
	default:
		return "INVALID"
	}
}

// Width returns the fixed on-block byte width of a type, or -1 for varlen
// types whose in-block footprint is the varlen entry header only.
func (t TypeID) Width() int {
	switch t {
	case Boolean:
		return 1
	case SmallInt:
		return 2
	case Integer, Real:
		return 4
	case BigInt, Double, Date:
		return 8
	case Varchar:
		return VarlenEntrySize
	default:
		return -1
	}
}

// Value is a tagged sum over the SQL runtime types described in spec §3.
// It owns any heap payload (the varlen string backing a Varchar).
type Value struct {
	Type    TypeID
	IsNull  bool
	boolean bool
	i64     int64
	f64     float64
	str     string
}

func NullValue(t TypeID) Value { return Value{Type: t, IsNull: true} }

func BoolValue(b bool) Value { return Value{Type: Boolean, boolean: b} }

func SmallIntValue(v int16) Value { return Value{Type: SmallInt, i64: int64(v)} }

func IntValue(v int32) Value { return Value{Type: Integer, i64: int64(v)} }

func BigIntValue(v int64) Value { return Value{Type: BigInt, i64: v} }

func RealValue(v float32) Value { return Value{Type: Real, f64: float64(v)} }

func DoubleValue(v float64) Value { return Value{Type: Double, f64: v} }

func DateValue(t time.Time) Value {
	return Value{Type: Date, i64: t.UTC().Truncate(24 * time.Hour).Unix()}
}

func VarcharValue(s string) Value { return Value{Type: Varchar, str: s} }

func (v Value) AsBool() bool { return v.boolean }

func (v Value) AsInt64() int64 { return v.i64 }

func (v Value) AsFloat64() float64 { return v.f64 }

func (v Value) AsString() string { return v.str }

func (v Value) AsDate() time.Time { return time.Unix(v.i64, 0).UTC() }

func (v Value) String() string {
	if v.IsNull {
		return "NULL"
	}
	switch v.Type {
	case Boolean:
		return fmt.Sprintf("%v", v.boolean)
	case SmallInt, Integer, BigInt:
		return fmt.Sprintf("%d", v.i64)
	case Real, Double:
		return fmt.Sprintf("%g", v.f64)
	case Date:
		return v.AsDate().Format("2006-01-02")
	case Varchar:
		return v.str
	default:
		return "<invalid>"
	}
}

// Compare orders two values of the same type; nulls sort first. It is used
// by the sorter comparator and by index key comparisons over decoded values.
func (v Value) Compare(other Value) int {
	if v.IsNull && other.IsNull {
		return 0
	}
	if v.IsNull {
		return -1
	}
	if other.IsNull {
		return 1
	}
	switch v.Type {
	case Boolean:
		if v.boolean == other.boolean {
			return 0
		}
		if !v.boolean {
			return -1
		}
		return 1
	case SmallInt, Integer, BigInt, Date:
		switch {
		case v.i64 < other.i64:
			return -1
		case v.i64 > other.i64:
			return 1
		default:
			return 0
		}
	case Real, Double:
		switch {
		case v.f64 < other.f64:
			return -1
		case v.f64 > other.f64:
			return 1
		default:
			return 0
		}
	case Varchar:
		switch {
		case v.str < other.str:
			return -1
		case v.str > other.str:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}
