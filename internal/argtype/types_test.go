package argtype

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cmdtree/internal/dispatch"
	"github.com/roach88/cmdtree/internal/resource"
	"github.com/roach88/cmdtree/internal/value"
)

func parse(t *testing.T, typ dispatch.ArgumentType, input string) (any, *dispatch.StringReader, error) {
	t.Helper()
	r := dispatch.NewStringReader(input)
	v, err := typ.Parse(r)
	return v, r, err
}

func TestIntegerFactoryBounds(t *testing.T) {
	typ, err := IntegerFactory(TypeInteger, value.Object{"min": value.Int(0), "max": value.Int(10)})
	require.NoError(t, err)
	assert.Equal(t, Integer{Min: 0, Max: 10}, typ)

	v, _, err := parse(t, typ, "10")
	require.NoError(t, err)
	assert.Equal(t, int32(10), v)

	_, r, err := parse(t, typ, "11")
	assert.ErrorIs(t, err, dispatch.ErrValueTooHigh)
	assert.Equal(t, 0, r.Cursor())

	_, _, err = parse(t, typ, "-1")
	assert.ErrorIs(t, err, dispatch.ErrValueTooLow)
}

func TestIntegerFactoryDefaults(t *testing.T) {
	typ, err := IntegerFactory(TypeInteger, nil)
	require.NoError(t, err)
	assert.Equal(t, Integer{Min: -2147483648, Max: 2147483647}, typ)
}

func TestFactoryParameterErrors(t *testing.T) {
	tests := []struct {
		name    string
		factory Factory
		params  value.Object
	}{
		{"min above max", IntegerFactory, value.Object{"min": value.Int(5), "max": value.Int(1)}},
		{"min not number", IntegerFactory, value.Object{"min": value.String("0")}},
		{"fractional int bound", IntegerFactory, value.Object{"max": value.Float(1.5)}},
		{"int bound too wide", IntegerFactory, value.Object{"max": value.Int(1 << 40)}},
		{"long bound overflows", LongFactory, value.Object{"max": value.Float(9223372036854775808)}},
		{"long bound below range", LongFactory, value.Object{"min": value.Float(-1e19)}},
		{"long min above max", LongFactory, value.Object{"min": value.Int(5), "max": value.Int(1)}},
		{"double min above max", DoubleFactory, value.Object{"min": value.Float(2), "max": value.Float(1)}},
		{"float bound not number", FloatFactory, value.Object{"max": value.Bool(true)}},
		{"unknown string type", StringFactory, value.Object{"type": value.String("paragraph")}},
		{"string type not string", StringFactory, value.Object{"type": value.Int(1)}},
		{"choice without params", ChoiceFactory, nil},
		{"choice without values", ChoiceFactory, value.Object{}},
		{"choice empty values", ChoiceFactory, value.Object{"values": value.Array{}}},
		{"choice non-string value", ChoiceFactory, value.Object{"values": value.Array{value.Int(1)}}},
		{"id namespace not string", IDFactory, value.Object{"namespace": value.Int(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.factory(resource.MustNew("x", "y"), tt.params)
			assert.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}

func TestLongAndDouble(t *testing.T) {
	long, err := LongFactory(TypeLong, value.Object{"min": value.Int(0)})
	require.NoError(t, err)
	v, _, err := parse(t, long, "5000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(5000000000), v)

	double, err := DoubleFactory(TypeDouble, value.Object{"min": value.Int(0), "max": value.Float(1.5)})
	require.NoError(t, err)
	v, _, err = parse(t, double, "1.25")
	require.NoError(t, err)
	assert.Equal(t, 1.25, v)

	_, _, err = parse(t, double, "2")
	assert.ErrorIs(t, err, dispatch.ErrValueTooHigh)

	float, err := FloatFactory(TypeFloat, nil)
	require.NoError(t, err)
	v, _, err = parse(t, float, "0.5")
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), v)
}

func TestStringKinds(t *testing.T) {
	tests := []struct {
		kind     string
		input    string
		expected string
		rest     string
	}{
		{"word", "hello world", "hello", " world"},
		{"phrase", `"hello world" x`, "hello world", " x"},
		{"phrase", "bare rest", "bare", " rest"},
		{"greedy", "all of it", "all of it", ""},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.input, func(t *testing.T) {
			typ, err := StringFactory(TypeString, value.Object{"type": value.String(tt.kind)})
			require.NoError(t, err)
			v, r, err := parse(t, typ, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
			assert.Equal(t, tt.rest, r.Remaining())
		})
	}
}

func TestStringDefaultsToGreedy(t *testing.T) {
	typ, err := StringFactory(TypeString, nil)
	require.NoError(t, err)
	assert.Equal(t, String{Kind: Greedy}, typ)
}

func TestBoolType(t *testing.T) {
	v, _, err := parse(t, Bool{}, "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestChoice(t *testing.T) {
	typ, err := ChoiceFactory(TypeChoice, value.Object{"values": value.Array{value.String("red"), value.String("blue")}})
	require.NoError(t, err)

	v, _, err := parse(t, typ, "blue")
	require.NoError(t, err)
	assert.Equal(t, "blue", v)

	_, r, err := parse(t, typ, "green")
	assert.ErrorIs(t, err, dispatch.ErrInvalidValue)
	assert.Contains(t, err.Error(), "red, blue")
	assert.Equal(t, 0, r.Cursor())
}

func TestUUIDType(t *testing.T) {
	id := uuid.MustParse("0190c5a1-7b2e-7c3d-8e4f-5a6b7c8d9e0f")

	v, _, err := parse(t, UUID{}, id.String()+" rest")
	require.NoError(t, err)
	assert.Equal(t, id, v)

	_, _, err = parse(t, UUID{}, "not-a-uuid")
	assert.ErrorIs(t, err, dispatch.ErrInvalidValue)
}

func TestIDType(t *testing.T) {
	typ, err := IDFactory(TypeID, value.Object{"namespace": value.String("game")})
	require.NoError(t, err)

	v, _, err := parse(t, typ, "sword")
	require.NoError(t, err)
	assert.Equal(t, resource.MustNew("game", "sword"), v)

	v, _, err = parse(t, typ, "ext:items/axe")
	require.NoError(t, err)
	assert.Equal(t, resource.MustNew("ext", "items/axe"), v)

	_, _, err = parse(t, typ, "Bad:Thing")
	assert.ErrorIs(t, err, dispatch.ErrInvalidValue)
}

func TestParamHelpers(t *testing.T) {
	params := value.Object{"n": value.Float(3), "s": value.String("x")}

	n, err := OptionalInt(params, "n", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = OptionalInt(params, "missing", 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)

	f, err := OptionalFloat(nil, "x", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	s, err := OptionalString(params, "s", "")
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	assert.ErrorIs(t, RequireParameters(TypeChoice, nil), ErrInvalidParameters)
	assert.NoError(t, RequireParameters(TypeChoice, value.Object{}))
}
