// Package recipe parses, rewrites and re-serializes Conda build recipes.
//
// A recipe is YAML with embedded Jinja2 directives. The directives are
// expanded with a fixed, minimal context before structural parsing; the
// packaging-specific helpers are neutralized stand-ins because their real
// resolution happens downstream in conda-build, not here.
package recipe

import (
	"fmt"

	"github.com/flosch/pongo2/v6"
)

// Expand renders the recipe's Jinja2 directives against the fixed context:
// environment-variable lookup plus neutral versions of the conda-build
// helpers and empty GIT_* placeholders.
func Expand(text string, environ map[string]string) (string, error) {
	tpl, err := pongo2.FromString(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse recipe template: %w", err)
	}
	out, err := tpl.Execute(templateContext(environ))
	if err != nil {
		return "", fmt.Errorf("failed to expand recipe template: %w", err)
	}
	return out, nil
}

func templateContext(environ map[string]string) pongo2.Context {
	env := environMap(environ)
	empty := func(args ...*pongo2.Value) *pongo2.Value { return pongo2.AsValue("") }
	return pongo2.Context{
		"environ":             env,
		"os":                  map[string]any{"environ": env},
		"GIT_BUILD_STR":       "",
		"GIT_DESCRIBE_HASH":   "",
		"GIT_DESCRIBE_NUMBER": "",
		"GIT_DESCRIBE_TAG":    "",
		"GIT_FULL_HASH":       "",
		"compiler":            empty,
		"pin_compatible":      empty,
		"pin_subpackage":      empty,
		"resolved_packages": func(args ...*pongo2.Value) *pongo2.Value {
			return pongo2.AsValue([]string{})
		},
	}
}

// environMap exposes environment variables the way recipes access them:
// by subscript, by attribute, and through a Jinja2-dict-style get() with an
// optional fallback.
func environMap(environ map[string]string) map[string]any {
	env := make(map[string]any, len(environ)+1)
	for k, v := range environ {
		env[k] = v
	}
	env["get"] = func(args ...*pongo2.Value) *pongo2.Value {
		if len(args) == 0 {
			return pongo2.AsValue("")
		}
		if v, ok := environ[args[0].String()]; ok {
			return pongo2.AsValue(v)
		}
		if len(args) > 1 {
			return args[1]
		}
		return pongo2.AsValue("")
	}
	return env
}
