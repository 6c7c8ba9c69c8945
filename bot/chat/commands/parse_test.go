package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCommand(t *testing.T) {
	assert.True(t, IsCommand("&end"))
	assert.True(t, IsCommand("  &list c=4"))
	assert.False(t, IsCommand("bom dia &end"))
	assert.False(t, IsCommand(""))
}

func TestParseSimpleCommand(t *testing.T) {
	name, flags, ok := parse("&end")
	require.True(t, ok)
	assert.Equal(t, "end", name)
	assert.Empty(t, flags)
}

func TestParseNameLowered(t *testing.T) {
	name, _, ok := parse("&LIST")
	require.True(t, ok)
	assert.Equal(t, "list", name)
}

func TestParseFlags(t *testing.T) {
	name, flags, ok := parse("&list c=42")
	require.True(t, ok)
	assert.Equal(t, "list", name)
	require.Len(t, flags, 1)
	assert.Equal(t, Flag{Key: "c", Value: "42"}, flags[0])

	value, ok := flagValue(flags, "c")
	require.True(t, ok)
	assert.Equal(t, "42", value)

	_, ok = flagValue(flags, "g")
	assert.False(t, ok)
}

func TestParseMultiWordFlagValue(t *testing.T) {
	// Sector names contain spaces; trailing tokens extend the last flag.
	name, flags, ok := parse("&transfer s=suporte tecnico avançado")
	require.True(t, ok)
	assert.Equal(t, "transfer", name)

	value, ok := flagValue(flags, "s")
	require.True(t, ok)
	assert.Equal(t, "suporte tecnico avançado", value)
}

func TestParseMultipleFlags(t *testing.T) {
	_, flags, ok := parse("&customer g=7 c=9")
	require.True(t, ok)
	require.Len(t, flags, 2)

	g, _ := flagValue(flags, "g")
	c, _ := flagValue(flags, "c")
	assert.Equal(t, "7", g)
	assert.Equal(t, "9", c)
}

func TestParseRejectsNonCommands(t *testing.T) {
	_, _, ok := parse("tudo bem?")
	assert.False(t, ok)

	_, _, ok = parse("&")
	assert.False(t, ok)

	_, _, ok = parse("   ")
	assert.False(t, ok)
}
