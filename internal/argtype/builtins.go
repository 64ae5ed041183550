package argtype

import (
	"fmt"
	"math"

	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

// Parameter names read by the built-in factories.
const (
	ParamMin       = "min"
	ParamMax       = "max"
	ParamType      = "type"
	ParamValues    = "values"
	ParamNamespace = "namespace"
)

// Built-in type ids.
var (
	TypeBool    = resource.MustNew("brigadier", "bool")
	TypeInteger = resource.MustNew("brigadier", "integer")
	TypeLong    = resource.MustNew("brigadier", "long")
	TypeFloat   = resource.MustNew("brigadier", "float")
	TypeDouble  = resource.MustNew("brigadier", "double")
	TypeString  = resource.MustNew("brigadier", "string")
	TypeChoice  = resource.MustNew(resource.DefaultNamespace, "choice")
	TypeUUID    = resource.MustNew(resource.DefaultNamespace, "uuid")
	TypeID      = resource.MustNew(resource.DefaultNamespace, "id")
)

// Builtins returns a new registry holding the built-in types. Each call
// returns an independent registry.
func Builtins() *Registry {
	r := NewRegistry(nil)
	r.Register(TypeBool, func(resource.ID, value.Object) (dispatch.ArgumentType, error) {
		return Bool{}, nil
	})
	r.Register(TypeInteger, IntegerFactory)
	r.Register(TypeLong, LongFactory)
	r.Register(TypeFloat, FloatFactory)
	r.Register(TypeDouble, DoubleFactory)
	r.Register(TypeString, StringFactory)
	r.Register(TypeChoice, ChoiceFactory)
	r.Register(TypeUUID, func(resource.ID, value.Object) (dispatch.ArgumentType, error) {
		return UUID{}, nil
	})
	r.Register(TypeID, IDFactory)
	return r
}

// IntegerFactory reads optional min and max bounds.
func IntegerFactory(typeID resource.ID, params value.Object) (dispatch.ArgumentType, error) {
	lo, err := OptionalInt(params, ParamMin, math.MinInt32)
	if err != nil {
		return nil, err
	}
	hi, err := OptionalInt(params, ParamMax, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	if lo < math.MinInt32 || hi > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %s bounds exceed 32 bits", ErrInvalidParameters, typeID)
	}
	if err := checkRange(typeID, lo, hi); err != nil {
		return nil, err
	}
	return Integer{Min: int32(lo), Max: int32(hi)}, nil
}

// LongFactory reads optional min and max bounds.
func LongFactory(typeID resource.ID, params value.Object) (dispatch.ArgumentType, error) {
	lo, err := OptionalInt(params, ParamMin, math.MinInt64)
	if err != nil {
		return nil, err
	}
	hi, err := OptionalInt(params, ParamMax, math.MaxInt64)
	if err != nil {
		return nil, err
	}
	if err := checkRange(typeID, lo, hi); err != nil {
		return nil, err
	}
	return Long{Min: lo, Max: hi}, nil
}

// FloatFactory reads optional min and max bounds.
func FloatFactory(typeID resource.ID, params value.Object) (dispatch.ArgumentType, error) {
	lo, err := OptionalFloat(params, ParamMin, -math.MaxFloat32)
	if err != nil {
		return nil, err
	}
	hi, err := OptionalFloat(params, ParamMax, math.MaxFloat32)
	if err != nil {
		return nil, err
	}
	if err := checkRange(typeID, lo, hi); err != nil {
		return nil, err
	}
	return Float{Min: float32(lo), Max: float32(hi)}, nil
}

// DoubleFactory reads optional min and max bounds.
func DoubleFactory(typeID resource.ID, params value.Object) (dispatch.ArgumentType, error) {
	lo, err := OptionalFloat(params, ParamMin, -math.MaxFloat64)
	if err != nil {
		return nil, err
	}
	hi, err := OptionalFloat(params, ParamMax, math.MaxFloat64)
	if err != nil {
		return nil, err
	}
	if err := checkRange(typeID, lo, hi); err != nil {
		return nil, err
	}
	return Double{Min: lo, Max: hi}, nil
}

// StringFactory reads the optional type: word, phrase or greedy (default).
func StringFactory(typeID resource.ID, params value.Object) (dispatch.ArgumentType, error) {
	s, err := OptionalString(params, ParamType, "greedy")
	if err != nil {
		return nil, err
	}
	kind, err := ParseStringKind(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", typeID, err)
	}
	return String{Kind: kind}, nil
}

// ChoiceFactory requires a values list.
func ChoiceFactory(typeID resource.ID, params value.Object) (dispatch.ArgumentType, error) {
	if err := RequireParameters(typeID, params); err != nil {
		return nil, err
	}
	values, err := StringList(params, ParamValues)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", typeID, err)
	}
	return Choice{Values: values}, nil
}

// IDFactory reads the namespace bare identifiers are qualified with.
func IDFactory(typeID resource.ID, params value.Object) (dispatch.ArgumentType, error) {
	ns, err := OptionalString(params, ParamNamespace, resource.DefaultNamespace)
	if err != nil {
		return nil, err
	}
	return ID{Namespace: ns}, nil
}

func checkRange[T int64 | float64](typeID resource.ID, lo, hi T) error {
	if lo > hi {
		return fmt.Errorf("%w: %s min %v is greater than max %v", ErrInvalidParameters, typeID, lo, hi)
	}
	return nil
}
