package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	assert.Equal(t, 42, ToInt(42))
	assert.Equal(t, 42, ToInt(int64(42)))
	assert.Equal(t, 42, ToInt(42.9))
	assert.Equal(t, 42, ToInt(" 42 "))
	assert.Equal(t, 0, ToInt("forty"))
	assert.Equal(t, 0, ToInt(nil))
}

func TestToFloat(t *testing.T) {
	assert.InDelta(t, 0.7, ToFloat(0.7), 1e-9)
	assert.InDelta(t, 2.0, ToFloat(int64(2)), 1e-9)
	assert.InDelta(t, 0.25, ToFloat("0.25"), 1e-9)
	assert.Equal(t, 0.0, ToFloat("warm"))
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool("true"))
	assert.False(t, ToBool("nope"))
	assert.False(t, ToBool(1))
}

func TestToStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ToStringSlice([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, ToStringSlice([]any{"a", 1, "b"}))
	assert.Equal(t, []string{"bleu", "rouge"}, ToStringSlice("bleu, rouge,"))
	assert.Nil(t, ToStringSlice(""))
	assert.Nil(t, ToStringSlice(3))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "x", ToString("x"))
	assert.Equal(t, "", ToString(3))
}
