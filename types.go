package tabgo

import (
	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/value"
)

type (
	// Handle is a stable reference to a row or column.
	Handle = model.Handle
	// Kind selects rows or columns.
	Kind = model.Kind
	// Value is a table cell.
	Value = value.Value
	// Type is a column type.
	Type = value.Type
)

const (
	KindRow    = model.KindRow
	KindColumn = model.KindColumn
)

const (
	TypeString  = value.TypeString
	TypeLong    = value.TypeLong
	TypeDouble  = value.TypeDouble
	TypeBoolean = value.TypeBoolean
	TypeTime    = value.TypeTime
	TypeBlob    = value.TypeBlob
)
