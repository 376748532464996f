package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidColor(t *testing.T) {
	valid := []string{"#3085d6", "#d33", "#d33f", "#3085d6cc", "red", "rgb(1, 2, 3)", "rgba(10%, 20%, 30%, 0.5)", " #fff "}
	for _, c := range valid {
		assert.True(t, ValidColor(c), c)
	}

	invalid := []string{"", "#12", "#12345", "3085d6", "red; } * { color: blue", "rgb(1,2)", "url(x)", "#ggg"}
	for _, c := range invalid {
		assert.False(t, ValidColor(c), c)
	}
}

func TestButtonColorsCSS(t *testing.T) {
	css, err := ButtonColorsCSS("#3085d6", "#d33")
	require.NoError(t, err)
	assert.Contains(t, css, "button.popkit-confirm { background: #3085d6;")
	assert.Contains(t, css, "button.popkit-cancel { background: #d33;")
}

func TestButtonColorsCSS_SkipsEmpty(t *testing.T) {
	css, err := ButtonColorsCSS("#3085d6", "")
	require.NoError(t, err)
	assert.Contains(t, css, "popkit-confirm")
	assert.NotContains(t, css, "popkit-cancel")

	css, err = ButtonColorsCSS("", "")
	require.NoError(t, err)
	assert.Empty(t, css)
}

func TestButtonColorsCSS_Invalid(t *testing.T) {
	_, err := ButtonColorsCSS("#3085d6", "red; } window { opacity: 0")
	assert.ErrorIs(t, err, ErrInvalidColor)
}
