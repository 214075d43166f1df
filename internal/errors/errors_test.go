package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlogError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("no such file")
	err := ConfigError(cause, "load %s", "blog_config.json")

	require.Equal(t, "config (fatal): load blog_config.json: no such file", err.Error())
	require.True(t, stderrors.Is(err, cause))
}

func TestAs_FindsWrappedBlogError(t *testing.T) {
	inner := FileSystemError(nil, "posts directory missing")
	wrapped := fmt.Errorf("regenerate: %w", inner)

	be, ok := As(wrapped)
	require.True(t, ok)
	require.Same(t, inner, be)
	require.True(t, IsCategory(wrapped, CategoryFileSystem))
	require.False(t, IsCategory(wrapped, CategoryConfig))
}

func TestIsFatal(t *testing.T) {
	require.False(t, IsFatal(nil))
	require.True(t, IsFatal(stderrors.New("plain")))
	require.True(t, IsFatal(ConfigError(nil, "bad")))
	require.False(t, IsFatal(ContentWarning(nil, "posts/a.md", "no date")))
}

func TestContentWarning_CarriesPath(t *testing.T) {
	err := ContentWarning(nil, "posts/a.md", "no date")
	require.Equal(t, "posts/a.md", err.Context["path"])
	require.Equal(t, SeverityWarning, err.Severity)
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))

	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{stderrors.New("x"), 1},
		{New(CategoryValidation, SeverityFatal, "x"), 2},
		{New(CategoryConfig, SeverityFatal, "x"), 3},
		{New(CategoryFileSystem, SeverityFatal, "x"), 4},
		{New(CategoryContent, SeverityFatal, "x"), 5},
		{New(CategoryInternal, SeverityFatal, "x"), 1},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, a.ExitCodeFor(tc.err))
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logs, stderr bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	a.stderr = &stderr

	code := a.Report(ConfigError(stderrors.New("missing"), "load config"))
	require.Equal(t, 3, code)
	require.Equal(t, "Error: load config: missing\n", stderr.String())
	require.Contains(t, logs.String(), "category=config")
}
