package main

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bodgit/sha1sum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

const abcSHA1 = "a9993e364706816aba3e25717850c26c9cd0d89d"

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"nop", "dev", "prod"} {
		logger, err := newLogger(env)
		assert.NoError(t, err, env)
		assert.NotNil(t, logger, env)
	}

	_, err := newLogger("staging")
	assert.EqualError(t, err, `unsupported environment "staging"`)
}

// run executes the command line and returns what was written to standard
// output along with the exit status.
func run(t *testing.T, input string, args ...string) (string, int) {
	t.Helper()

	if input != "" {
		old := stdin
		stdin = strings.NewReader(input)
		defer func() { stdin = old }()
	}

	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}

	code := 0
	if err := app.Run(append([]string{"sha1sum", "-e", "nop"}, args...)); err != nil {
		code = 1
		if exitErr, ok := err.(cli.ExitCoder); ok {
			code = exitErr.ExitCode()
		}
	}

	return out.String(), code
}

func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, body := range members {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()

	roms := filepath.Join(dir, "roms")
	require.NoError(t, os.Mkdir(roms, 0755))
	abc := filepath.Join(roms, "abc.txt")
	require.NoError(t, os.WriteFile(abc, []byte("abc"), 0644))

	complete := filepath.Join(dir, "complete.xml")
	require.NoError(t, os.WriteFile(complete, []byte(`<manifest>
  <file name="abc.txt" size="3" sha1="`+abcSHA1+`"/>
</manifest>`), 0644))

	incomplete := filepath.Join(dir, "incomplete.xml")
	require.NoError(t, os.WriteFile(incomplete, []byte(`<manifest>
  <file name="abc.txt" size="3" sha1="`+abcSHA1+`"/>
  <file name="missing" size="1" sha1="11f6ad8ec52a2984abaafd7c3b516503785c2072"/>
</manifest>`), 0644))

	tests := []struct {
		name     string
		input    string
		args     []string
		wantCode int
		want     []string
		wantNot  []string
	}{
		{
			name: "sum file",
			args: []string{"sum", abc},
			want: []string{abcSHA1 + "  " + abc + "\n"},
		},
		{
			name:  "sum stdin",
			input: "abc",
			args:  []string{"sum", "-"},
			want:  []string{abcSHA1 + "  -\n"},
		},
		{
			name:     "sum missing file",
			args:     []string{"sum", abc, filepath.Join(dir, "missing")},
			wantCode: 1,
			want:     []string{abcSHA1 + "  " + abc + "\n"},
			wantNot:  []string{"missing"},
		},
		{
			name:     "invalid chunk size",
			args:     []string{"--chunk-size", "100B", "sum", abc},
			wantCode: 1,
		},
		{
			name: "string",
			args: []string{"string", "abc"},
			want: []string{abcSHA1 + `  "abc"`},
		},
		{
			name: "scan json",
			args: []string{"scan", "--json", roms},
			want: []string{`"sha1": "` + abcSHA1 + `"`, `"size": 3`},
		},
		{
			name: "manifest",
			args: []string{"manifest", roms},
			want: []string{"<manifest>", `sha1="` + abcSHA1 + `"`},
		},
		{
			name:    "check complete",
			args:    []string{"check", complete, roms},
			wantNot: []string{"<manifest"},
		},
		{
			name:     "check incomplete",
			args:     []string{"check", incomplete, roms},
			wantCode: 2,
			want:     []string{`name="missing"`},
			wantNot:  []string{`name="abc.txt"`},
		},
		{
			name: "merge",
			args: []string{"merge", complete, incomplete},
			want: []string{`name="abc.txt"`, `name="missing"`},
		},
		{
			name:     "merge missing file",
			args:     []string{"merge", complete, filepath.Join(dir, "missing.xml")},
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, code := run(t, tt.input, tt.args...)
			assert.Equal(t, tt.wantCode, code)
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.wantNot {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRepack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archive.zip")
	writeZip(t, path, map[string]string{"b.txt": "b", "a.txt": "abc"})

	out, code := run(t, "", "repack", path)
	require.Equal(t, 0, code)

	digest := sha1sum.HashFile(path)
	assert.Equal(t, digest+"  "+path+"\n", out)

	// Repacking an already repacked archive is stable
	out, code = run(t, "", "repack", path)
	require.Equal(t, 0, code)
	assert.Equal(t, digest+"  "+path+"\n", out)

	_, code = run(t, "", "repack", filepath.Join(dir, "missing.zip"))
	assert.Equal(t, 1, code)
}
