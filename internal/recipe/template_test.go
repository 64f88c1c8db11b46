package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvironLookup(t *testing.T) {
	environ := map[string]string{"TOOLCHAIN_ARCH": "riscv64"}

	out, err := Expand(`arch: {{ environ.get('TOOLCHAIN_ARCH') }}`, environ)
	require.NoError(t, err)
	assert.Equal(t, "arch: riscv64", out)

	out, err = Expand(`arch: {{ environ.get('UNSET_VAR', 'fallback') }}`, environ)
	require.NoError(t, err)
	assert.Equal(t, "arch: fallback", out)

	out, err = Expand(`arch: {{ environ.TOOLCHAIN_ARCH }}`, environ)
	require.NoError(t, err)
	assert.Equal(t, "arch: riscv64", out)
}

func TestExpandNeutralizedHelpers(t *testing.T) {
	environ := map[string]string{}
	cases := []struct {
		in   string
		want string
	}{
		{`- {{ compiler('c') }}`, `- `},
		{`- {{ pin_compatible('openssl') }}`, `- `},
		{`- {{ pin_subpackage('libdemo') }}`, `- `},
		{`tag: {{ GIT_DESCRIBE_TAG }}`, `tag: `},
		{`hash: {{ GIT_FULL_HASH }}`, `hash: `},
	}
	for _, tc := range cases {
		out, err := Expand(tc.in, environ)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, out, tc.in)
	}
}

func TestExpandResolvedPackagesIsEmptyList(t *testing.T) {
	out, err := Expand(`{% for p in resolved_packages('build') %}{{ p }}{% endfor %}ok`, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestExpandPlainTextUntouched(t *testing.T) {
	text := "package:\n  name: demo\n  version: 1.0\n"
	out, err := Expand(text, nil)
	require.NoError(t, err)
	assert.Equal(t, text, out)
}
