package shell

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagRenderer struct{}

func (tagRenderer) Prompt(p string) string { return "[prompt]" + p }

func (tagRenderer) Write(w io.Writer, res Result) error {
	for _, l := range res.Lines {
		if _, err := fmt.Fprintf(w, "[%s] %s\n", l.Kind, l.Text); err != nil {
			return err
		}
	}
	return nil
}

func TestRunScript(t *testing.T) {
	s := newTestShell(t)

	script := strings.Join([]string{
		"# provision a scratch area",
		"mkdir scratch",
		"",
		"cd scratch",
		"touch notes.txt",
		"ls",
		"pwd",
		"bogus",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, s.RunScript(script, nil, &out))

	assert.Equal(t, "notes.txt\n/home/pi/scratch\nbash: bogus: command not found\n", out.String())
	assert.Equal(t, "/home/pi/scratch", s.CurrentPath())
}

func TestRunScriptWithRenderer(t *testing.T) {
	s := newTestShell(t)

	var out bytes.Buffer
	require.NoError(t, s.RunScript("whoami\ncat /nope\nreboot", tagRenderer{}, &out))

	assert.Equal(t,
		"[info] pi\n[error] cat: /nope: No such file or directory\n[warning] Rebooting system...\n",
		out.String())
	assert.Equal(t, "[prompt]pi@raspberrypi:~$ ", s.prompt(tagRenderer{}))
}

func TestCompletePath(t *testing.T) {
	s := newTestShell(t)

	assert.Equal(t, []string{"README.txt", ".bashrc", "pinet-os/"}, s.completePath(""))

	s.Execute("cd /var")
	assert.Equal(t, []string{"minima/"}, s.completePath(""))
	assert.NotNil(t, s.createCompleter())
}

func runInteractive(t *testing.T, s *Shell, input string) string {
	t.Helper()

	var out bytes.Buffer
	err := s.Interactive(InteractiveConfig{
		HistoryFile: filepath.Join(t.TempDir(), "history"),
		Stdin:       io.NopCloser(strings.NewReader(input)),
		Stdout:      &out,
	})
	require.NoError(t, err)
	return out.String()
}

func TestInteractive(t *testing.T) {
	s := newTestShell(t)

	out := runInteractive(t, s, "cd /etc\nclear\nexit\nwhoami\n")

	assert.Contains(t, out, Banner[0])
	assert.Contains(t, out, clearScreen)
	assert.NotContains(t, out, "\npi\n", "lines after exit must not run")
	assert.Equal(t, "/etc", s.CurrentPath())
	assert.Equal(t, "pi@raspberrypi:/etc$ ", s.prompt(nil))
}

func TestInteractiveLeaveCommands(t *testing.T) {
	for _, word := range []string{"exit", "quit", "logout", "  quit  "} {
		t.Run(strings.TrimSpace(word), func(t *testing.T) {
			s := newTestShell(t)
			runInteractive(t, s, "mkdir before\n"+word+"\nmkdir after\n")

			listing := texts(s.Execute("ls"))
			assert.Contains(t, listing, "before/")
			assert.NotContains(t, listing, "after/")
		})
	}
}

func TestInteractiveContinuesAfterInterrupt(t *testing.T) {
	s := newTestShell(t)

	runInteractive(t, s, "cd /v\x03cd /var\nexit\n")
	assert.Equal(t, "/var", s.CurrentPath())
}

func TestInteractiveWritesCommandOutput(t *testing.T) {
	s := newTestShell(t)

	out := runInteractive(t, s, "cat /etc/hostname\nbogus\nexit\n")
	assert.Contains(t, out, "raspberrypi\n")
	assert.Contains(t, out, "bash: bogus: command not found\n")
}
