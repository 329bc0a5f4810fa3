package fact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarEqualityStructural(t *testing.T) {
	require.True(t, Int(40).Equal(Int(40)))
	require.False(t, Int(40).Equal(Int(41)))
	require.False(t, Int(40).Equal(Float(40)))
	require.True(t, Null.Equal(Null))
}

func TestScalarListEqualityElementwise(t *testing.T) {
	a := List([]Scalar{Bool(true), Bool(true), Bool(false)})
	b := List([]Scalar{Bool(true), Bool(true), Bool(false)})
	c := List([]Scalar{Bool(true), Bool(false), Bool(true)})

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestScalarLessWithinType(t *testing.T) {
	require.True(t, Int(1).Less(Int(2)))
	require.False(t, Int(2).Less(Int(1)))
	require.True(t, String("a").Less(String("b")))
}

func TestFromGo(t *testing.T) {
	s, err := FromGo(42)
	require.NoError(t, err)
	require.Equal(t, KindInt, s.Kind())
	require.Equal(t, int64(42), s.Int())

	_, err = FromGo(struct{}{})
	require.Error(t, err)
	require.True(t, ErrUnsupportedScalar.Is(err))
}

func TestEncodeValueDeterministic(t *testing.T) {
	a := EncodeValue(Int(7))
	b := EncodeValue(Int(7))
	require.Equal(t, a, b)

	neg := EncodeValue(Int(-7))
	require.NotEqual(t, a, neg)
}

func TestScalarHashStable(t *testing.T) {
	h1, err := Int(5).Hash()
	require.NoError(t, err)
	h2, err := Int(5).Hash()
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	h3, err := List([]Scalar{Int(1), Int(2)}).Hash()
	require.NoError(t, err)
	h4, err := List([]Scalar{Int(1), Int(2)}).Hash()
	require.NoError(t, err)
	require.Equal(t, h3, h4)
}
