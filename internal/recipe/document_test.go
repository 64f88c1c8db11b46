package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectValues(t *testing.T, text, key string) []string {
	t.Helper()
	doc, err := Parse(text)
	require.NoError(t, err)
	var values []string
	for node := range FindKey(doc.Root, key) {
		values = append(values, node.Value)
	}
	return values
}

func TestFindKey(t *testing.T) {
	assert.Equal(t, []string{"value"},
		collectValues(t, "key: value", "key"))
	assert.Equal(t, []string{"value"},
		collectValues(t, "outer:\n  key: value", "key"))
	assert.Equal(t, []string{"value", "value2"},
		collectValues(t, "key: value\nother:\n  key: value2", "key"))
	assert.Equal(t, []string{"value"},
		collectValues(t, "outer:\n  - key: value", "key"))
	assert.Equal(t, []string{"value", "value2"},
		collectValues(t, "outer:\n  - key: value\n  - key: value2", "key"))
	assert.Empty(t, collectValues(t, "outer:\n  inner: value", "key"))
}

func TestFindKeyIsRestartable(t *testing.T) {
	doc, err := Parse("a:\n  key: one\nb:\n  key: two")
	require.NoError(t, err)
	seq := FindKey(doc.Root, "key")

	var first []string
	for node := range seq {
		first = append(first, node.Value)
	}
	var second []string
	for node := range seq {
		second = append(second, node.Value)
	}
	assert.Equal(t, first, second)

	// Early break works too.
	for range seq {
		break
	}
}

func TestParseStripsQuotes(t *testing.T) {
	// Selector annotations after quoted strings are legal in the recipe
	// dialect but break plain YAML unless quotes go away first.
	doc, err := Parse(`script: "build.sh" [linux]`)
	require.NoError(t, err)
	assert.Equal(t, "build.sh [linux]", doc.Lookup("script").Value)
}

func TestParseToleratesDuplicateKeys(t *testing.T) {
	doc, err := Parse("name: first\nname: second")
	require.NoError(t, err)
	assert.Equal(t, "first", doc.Lookup("name").Value)
}

func TestSourcesSingletonWrap(t *testing.T) {
	doc, err := Parse("source:\n  git_url: https://example.com/repo.git")
	require.NoError(t, err)
	sources := doc.Sources()
	require.Len(t, sources, 1)
	assert.NotNil(t, Get(sources[0], "git_url"))

	doc, err = Parse("source:\n  - git_url: https://example.com/repo.git\n  - url: archive.tar.gz")
	require.NoError(t, err)
	sources = doc.Sources()
	require.Len(t, sources, 2)
	assert.NotNil(t, Get(sources[0], "git_url"))
	assert.Nil(t, Get(sources[1], "git_url"))
}

func TestMarshalPackageFirst(t *testing.T) {
	doc, err := Parse("build:\n  number: 0\npackage:\n  name: demo\n  version: 1.0\nsource:\n  url: a.tar.gz")
	require.NoError(t, err)
	out, err := doc.Marshal()
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "package:"), text)
	assert.Less(t, strings.Index(text, "package:"), strings.Index(text, "build:"))
	assert.Contains(t, text, "source:")
}

func TestSetScalar(t *testing.T) {
	doc, err := Parse("package:\n  name: demo\n  version: 1.0")
	require.NoError(t, err)
	pkg := doc.Lookup("package")

	SetScalar(pkg, "version", "2_0")
	assert.Equal(t, "2_0", doc.Lookup("package", "version").Value)

	SetScalar(pkg, "license", "BSD")
	assert.Equal(t, "BSD", doc.Lookup("package", "license").Value)
}
