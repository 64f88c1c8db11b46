package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Repository", KeyRepo, "litex", Repository("litex")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"URL", KeyURL, "https://github.com/org/repo", URL("https://github.com/org/repo")},
		{"Tag", KeyTag, "v1.2", Tag("v1.2")},
		{"Commit", KeyCommit, "abc123", Commit("abc123")},
		{"Version", KeyVersion, "1_2_0", Version("1_2_0")},
		{"Command", KeyCommand, "git tag -d x", Command("git tag -d x")},
		{"Variable", KeyVariable, "DATE_NUM", Variable("DATE_NUM")},
		{"File", KeyFile, "meta.yaml", File("meta.yaml")},
		{"Channel", KeyChannel, "conda-forge", Channel("conda-forge")},
		{"Env", KeyEnv, "/tmp/conda-env", Env("/tmp/conda-env")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestErrorAttr(t *testing.T) {
	if got := Error(nil).Value.String(); got != "" {
		t.Fatalf("nil error should render empty, got %q", got)
	}
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Fatalf("expected boom, got %q", got)
	}
}
