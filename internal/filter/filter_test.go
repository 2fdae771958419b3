package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_NoRulesIncludesEverything(t *testing.T) {
	include, err := Compile(nil)
	require.NoError(t, err)

	assert.True(t, include("/anything.txt"))
	assert.True(t, include("/deep/nested/file"))
}

func TestCompile_LastMatchWins(t *testing.T) {
	include, err := Compile([]string{"-.*", `+\.bin$`})
	require.NoError(t, err)

	assert.True(t, include("/a.bin"), "last match is the + rule")
	assert.False(t, include("/a.txt"), "only match is the - rule")
}

func TestCompile_NotFirstNotMostSpecific(t *testing.T) {
	include, err := Compile([]string{`+\.bin$`, "-.*"})
	require.NoError(t, err)

	assert.False(t, include("/a.bin"))
}

func TestCompile_UnmatchedPathIsIncluded(t *testing.T) {
	include, err := Compile([]string{`-\.txt$`})
	require.NoError(t, err)

	assert.True(t, include("/test-2.bin"))
	assert.False(t, include("/test-1.txt"))
}

func TestCompile_CaseInsensitive(t *testing.T) {
	include, err := Compile([]string{`-\.TXT$`})
	require.NoError(t, err)

	assert.False(t, include("/readme.txt"))
	assert.False(t, include("/README.Txt"))
}

func TestCompile_InvalidRules(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"sign only":   "+",
		"no sign":     `\.txt$`,
		"bad pattern": "-([",
	}

	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Compile([]string{r})
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCompile([]string{"*"}) })
}
