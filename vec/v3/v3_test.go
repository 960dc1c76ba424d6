package v3_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	v3 "github.com/voxelmill/millcore/vec/v3"
)

func TestAddSub(t *testing.T) {
	a := v3.Vec{X: 1, Y: 2, Z: 3}
	b := v3.Vec{X: 4, Y: 5, Z: 6}
	require.Equal(t, v3.Vec{X: 5, Y: 7, Z: 9}, a.Add(b))
	require.Equal(t, v3.Vec{X: -3, Y: -3, Z: -3}, a.Sub(b))
}

func TestDotCross(t *testing.T) {
	x := v3.Vec{X: 1, Y: 0, Z: 0}
	y := v3.Vec{X: 0, Y: 1, Z: 0}
	require.Equal(t, 0.0, x.Dot(y))
	require.Equal(t, v3.Vec{X: 0, Y: 0, Z: 1}, x.Cross(y))
}

func TestLength(t *testing.T) {
	v := v3.Vec{X: 3, Y: 4, Z: 0}
	require.Equal(t, 5.0, v.Length())
	require.Equal(t, 25.0, v.Length2())
}

func TestNormalizeZero(t *testing.T) {
	require.Equal(t, v3.Vec{}, v3.Vec{}.Normalize())
}

func TestNormalizeUnit(t *testing.T) {
	v := v3.Vec{X: 2, Y: 0, Z: 0}.Normalize()
	require.InDelta(t, 1.0, v.Length(), 1e-12)
}

func TestLerp(t *testing.T) {
	a := v3.Vec{X: 0, Y: 0, Z: 0}
	b := v3.Vec{X: 10, Y: 0, Z: 0}
	require.Equal(t, v3.Vec{X: 5, Y: 0, Z: 0}, v3.Lerp(a, b, 0.5))
	require.Equal(t, a, v3.Lerp(a, b, 0))
	require.Equal(t, b, v3.Lerp(a, b, 1))
}

func TestDistance(t *testing.T) {
	a := v3.Vec{X: 0, Y: 0, Z: 0}
	b := v3.Vec{X: 3, Y: 4, Z: 0}
	require.Equal(t, 5.0, v3.Distance(a, b))
}

func TestMinMaxComponent(t *testing.T) {
	v := v3.Vec{X: -1, Y: 5, Z: 2}
	require.Equal(t, 5.0, v.MaxComponent())
	require.Equal(t, -1.0, v.MinComponent())
}

func TestClamp(t *testing.T) {
	v := v3.Vec{X: -5, Y: 5, Z: 50}
	lo := v3.Vec{X: 0, Y: 0, Z: 0}
	hi := v3.Vec{X: 10, Y: 10, Z: 10}
	require.Equal(t, v3.Vec{X: 0, Y: 5, Z: 10}, v.Clamp(lo, hi))
}

func TestCeilFloor(t *testing.T) {
	v := v3.Vec{X: 1.2, Y: -1.2, Z: 1.0}
	require.Equal(t, v3.Vec{X: 2, Y: -1, Z: 1}, v.Ceil())
	require.Equal(t, v3.Vec{X: 1, Y: -2, Z: 1}, v.Floor())
}

func TestAbs(t *testing.T) {
	v := v3.Vec{X: -1, Y: 2, Z: -3}
	require.Equal(t, v3.Vec{X: 1, Y: 2, Z: 3}, v.Abs())
}

func TestMinMax(t *testing.T) {
	a := v3.Vec{X: 1, Y: 5, Z: -1}
	b := v3.Vec{X: 3, Y: 2, Z: 0}
	require.Equal(t, v3.Vec{X: 1, Y: 2, Z: -1}, a.Min(b))
	require.Equal(t, v3.Vec{X: 3, Y: 5, Z: 0}, a.Max(b))
}

func TestScalarOps(t *testing.T) {
	v := v3.Vec{X: 2, Y: 4, Z: 6}
	require.Equal(t, v3.Vec{X: 4, Y: 8, Z: 12}, v.MulScalar(2))
	require.Equal(t, v3.Vec{X: 1, Y: 2, Z: 3}, v.DivScalar(2))
	require.Equal(t, v3.Vec{X: 3, Y: 5, Z: 7}, v.AddScalar(1))
	require.Equal(t, v3.Vec{X: -2, Y: -4, Z: -6}, v.Neg())
}

func TestCrossOrthogonal(t *testing.T) {
	a := v3.Vec{X: 1, Y: 2, Z: 3}
	b := v3.Vec{X: 4, Y: -5, Z: 6}
	c := a.Cross(b)
	require.InDelta(t, 0.0, c.Dot(a), 1e-9)
	require.InDelta(t, 0.0, c.Dot(b), 1e-9)
}

func TestLengthMatchesMath(t *testing.T) {
	v := v3.Vec{X: 1, Y: 1, Z: 1}
	require.InDelta(t, math.Sqrt(3), v.Length(), 1e-12)
}
