package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRepo     = "repository"
	KeyPath     = "path"
	KeyURL      = "url"
	KeyTag      = "tag"
	KeyCommit   = "commit"
	KeyVersion  = "version"
	KeyCommand  = "command"
	KeyVariable = "variable"
	KeyFile     = "file"
	KeyChannel  = "channel"
	KeyEnv      = "env"
	KeyError    = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Repository(r string) slog.Attr { return slog.String(KeyRepo, r) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr        { return slog.String(KeyURL, u) }
func Tag(t string) slog.Attr        { return slog.String(KeyTag, t) }
func Commit(c string) slog.Attr     { return slog.String(KeyCommit, c) }
func Version(v string) slog.Attr    { return slog.String(KeyVersion, v) }
func Command(c string) slog.Attr    { return slog.String(KeyCommand, c) }
func Variable(v string) slog.Attr   { return slog.String(KeyVariable, v) }
func File(f string) slog.Attr       { return slog.String(KeyFile, f) }
func Channel(c string) slog.Attr    { return slog.String(KeyChannel, c) }
func Env(e string) slog.Attr        { return slog.String(KeyEnv, e) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
