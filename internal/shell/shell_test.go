package shell

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pinet-os/pinetsh/internal/metrics"
	"github.com/pinet-os/pinetsh/internal/vfs"
)

func newTestShell(t *testing.T) *Shell {
	t.Helper()
	s, err := New(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func texts(res Result) []string {
	out := make([]string, len(res.Lines))
	for i, l := range res.Lines {
		out[i] = l.Text
	}
	return out
}

func TestNewDefaults(t *testing.T) {
	s := newTestShell(t)

	assert.Equal(t, "pi", s.User())
	assert.Equal(t, "/home/pi", s.CurrentPath())
	assert.Equal(t, "pi@raspberrypi:~$ ", s.Prompt())
	assert.NotEmpty(t, s.SessionID())
}

func TestNewRejectsTreeWithoutHome(t *testing.T) {
	_, err := New(&Config{User: "pi", Tree: vfs.NewTree()})
	assert.ErrorIs(t, err, vfs.ErrNotFound)

	_, err = New(&Config{User: "bad/name"})
	assert.ErrorIs(t, err, vfs.ErrInvalidName)
}

func TestSessionsDoNotShareState(t *testing.T) {
	a := newTestShell(t)
	b := newTestShell(t)

	a.Execute("mkdir only-in-a")
	a.Execute("cd /etc")

	assert.Equal(t, "/home/pi", b.CurrentPath())
	assert.NotContains(t, texts(b.Execute("ls")), "only-in-a/")
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestListRoot(t *testing.T) {
	s := newTestShell(t)

	res := s.Execute("ls /")
	want := []Line{
		{Text: "bin/", Kind: KindHeader},
		{Text: "etc/", Kind: KindHeader},
		{Text: "home/", Kind: KindHeader},
		{Text: "var/", Kind: KindHeader},
	}
	if diff := cmp.Diff(want, res.Lines); diff != "" {
		t.Errorf("ls / mismatch (-want +got):\n%s", diff)
	}
}

func TestLs(t *testing.T) {
	s := newTestShell(t)

	assert.Equal(t, []string{"README.txt", ".bashrc", "pinet-os/"}, texts(s.Execute("ls")))
	assert.Equal(t, []string{"Dockerfile"}, texts(s.Execute("ls ~/pinet-os/docker")))
	assert.Equal(t, []string{"/etc/hostname"}, texts(s.Execute("ls /etc/hostname")))
	assert.Equal(t, []string{"README.txt", ".bashrc", "pinet-os/"}, texts(s.Execute("ls -a")))

	res := s.Execute("ls /missing")
	require.Len(t, res.Lines, 1)
	assert.Equal(t, Line{Text: "ls: cannot access '/missing': No such file or directory", Kind: KindError}, res.Lines[0])

	res = s.Execute("ls -z")
	assert.Equal(t, []string{"ls: invalid option -- 'z'"}, texts(res))
}

func TestLsSeveralOperands(t *testing.T) {
	s := newTestShell(t)

	want := []string{
		"/var:", "minima/",
		"",
		"/etc/hostname",
		"",
		"ls: cannot access 'nope': No such file or directory",
		"",
		"/bin:", "minima", "cluster", "ai-gateway",
	}
	if diff := cmp.Diff(want, texts(s.Execute("ls /var /etc/hostname nope /bin"))); diff != "" {
		t.Errorf("ls output mismatch (-want +got):\n%s", diff)
	}

	res := s.Execute("ls /var /bin")
	assert.Equal(t, KindHeader, res.Lines[0].Kind)
	assert.False(t, res.HasError())
}

func TestLsLong(t *testing.T) {
	s := newTestShell(t)

	res := s.Execute("ls -l /var/minima")
	require.Len(t, res.Lines, 2)
	assert.True(t, strings.HasPrefix(res.Lines[0].Text, "-rw-r--r-- root   root "), res.Lines[0].Text)
	assert.Contains(t, res.Lines[0].Text, " 12 MB ")
	assert.True(t, strings.HasSuffix(res.Lines[0].Text, " chain.db"))
	assert.True(t, strings.HasPrefix(res.Lines[1].Text, "-rw------- root   root "), res.Lines[1].Text)
	assert.Contains(t, res.Lines[1].Text, " 52 kB ")

	res = s.Execute("ls -l")
	require.Len(t, res.Lines, 3)
	assert.True(t, strings.HasPrefix(res.Lines[2].Text, "drwxr-xr-x pi     pi "), res.Lines[2].Text)
	assert.True(t, strings.HasSuffix(res.Lines[2].Text, " pinet-os/"))
	assert.Equal(t, KindHeader, res.Lines[2].Kind)
}

func TestMkdirThenLs(t *testing.T) {
	for _, dir := range []string{"/", "/etc", "/home/pi", "/home/pi/pinet-os/overlay/rootfs"} {
		t.Run(dir, func(t *testing.T) {
			s := newTestShell(t)
			require.Empty(t, s.Execute("cd "+dir).Lines)

			res := s.Execute("mkdir fresh")
			assert.Empty(t, res.Lines)

			listing := texts(s.Execute("ls"))
			assert.Contains(t, listing, "fresh/")
			assert.Equal(t, "fresh/", listing[len(listing)-1])
		})
	}
}

func TestMkdirTouchErrors(t *testing.T) {
	s := newTestShell(t)

	tests := []struct {
		line string
		want string
	}{
		{line: "mkdir", want: "mkdir: missing operand"},
		{line: "touch", want: "touch: missing operand"},
		{line: "mkdir pinet-os", want: "mkdir: cannot create directory 'pinet-os': File exists"},
		{line: "touch README.txt", want: "touch: cannot touch 'README.txt': File exists"},
		{line: "mkdir a/b", want: "mkdir: cannot create directory 'a/b': Invalid argument"},
		{line: "touch ..", want: "touch: cannot touch '..': Invalid argument"},
		{line: "mkdir -p x", want: "mkdir: invalid option -- 'p'"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res := s.Execute(tt.line)
			require.Len(t, res.Lines, 1)
			assert.Equal(t, KindError, res.Lines[0].Kind)
			assert.Equal(t, tt.want, res.Lines[0].Text)
		})
	}

	assert.Equal(t, []string{"README.txt", ".bashrc", "pinet-os/"}, texts(s.Execute("ls")))
}

func TestMkdirMultiple(t *testing.T) {
	s := newTestShell(t)

	res := s.Execute("mkdir one two one")
	assert.Equal(t, []string{"mkdir: cannot create directory 'one': File exists"}, texts(res))
	assert.Equal(t, []string{"README.txt", ".bashrc", "pinet-os/", "one/", "two/"}, texts(s.Execute("ls")))
}

func TestMkdirOperandsAroundDoubleDash(t *testing.T) {
	s := newTestShell(t)

	assert.Empty(t, s.Execute("mkdir a -- b").Lines)
	assert.Empty(t, s.Execute("touch c -- -d").Lines)
	assert.Equal(t, []string{"README.txt", ".bashrc", "pinet-os/", "a/", "b/", "c", "-d"}, texts(s.Execute("ls")))
}

func TestSplitFlags(t *testing.T) {
	tests := []struct {
		args     []string
		flags    string
		operands []string
	}{
		{args: nil, flags: "", operands: nil},
		{args: []string{"-l", "/etc"}, flags: "l", operands: []string{"/etc"}},
		{args: []string{"x", "--", "y"}, flags: "", operands: []string{"x", "y"}},
		{args: []string{"-a", "x", "--", "-y", "z"}, flags: "a", operands: []string{"x", "-y", "z"}},
		{args: []string{"-", "x"}, flags: "", operands: []string{"-", "x"}},
	}

	for _, tt := range tests {
		flags, operands := splitFlags(tt.args)
		assert.Equal(t, tt.flags, flags, tt.args)
		if diff := cmp.Diff(tt.operands, operands); diff != "" {
			t.Errorf("splitFlags(%q) operands mismatch (-want +got):\n%s", tt.args, diff)
		}
	}
}

func TestTouchThenCat(t *testing.T) {
	s := newTestShell(t)
	require.Equal(t, "/home/pi", s.CurrentPath())

	assert.Empty(t, s.Execute("touch newfile.txt").Lines)

	res := s.Execute("cat newfile.txt")
	require.Len(t, res.Lines, 1)
	assert.Equal(t, Line{Text: "(empty)", Kind: KindInfo}, res.Lines[0])
	assert.Contains(t, texts(s.Execute("ls")), "newfile.txt")
}

func TestCat(t *testing.T) {
	s := newTestShell(t)

	assert.Equal(t, []string{"raspberrypi"}, texts(s.Execute("cat /etc/hostname")))
	assert.Equal(t, []string{"rpcenable=true\nport=9001\nhost=0.0.0.0"}, texts(s.Execute("cat /etc/minima.conf")))
	assert.Equal(t, []string{"raspberrypi", "BINARY_DATA"}, texts(s.Execute("cat /etc/hostname /bin/minima")))
	assert.Equal(t, []string{"raspberrypi", "BINARY_DATA"}, texts(s.Execute("cat /etc/hostname -- /bin/minima")))

	tests := []struct {
		line string
		want string
	}{
		{line: "cat", want: "cat: missing operand"},
		{line: "cat nope", want: "cat: nope: No such file or directory"},
		{line: "cat /etc/hostname/x", want: "cat: /etc/hostname/x: Not a directory"},
	}
	for _, tt := range tests {
		res := s.Execute(tt.line)
		require.Len(t, res.Lines, 1, tt.line)
		assert.Equal(t, Line{Text: tt.want, Kind: KindError}, res.Lines[0])
	}
}

func TestCatDirectoryAlwaysFails(t *testing.T) {
	s := newTestShell(t)

	for _, dir := range []string{"/", "/bin", "/etc", "/home", "~", ".", "pinet-os", "/var/minima", "pinet-os/overlay/rootfs/etc/systemd"} {
		res := s.Execute("cat " + dir)
		require.Len(t, res.Lines, 1, dir)
		assert.Equal(t, KindError, res.Lines[0].Kind, dir)
		assert.Equal(t, "cat: "+dir+": Is a directory", res.Lines[0].Text)
	}
}

func TestCd(t *testing.T) {
	s := newTestShell(t)

	steps := []struct {
		line string
		want string
	}{
		{line: "cd /", want: "/"},
		{line: "cd etc", want: "/etc"},
		{line: "cd ..", want: "/"},
		{line: "cd ..", want: "/"},
		{line: "cd ~/pinet-os", want: "/home/pi/pinet-os"},
		{line: "cd ./overlay/rootfs", want: "/home/pi/pinet-os/overlay/rootfs"},
		{line: "cd ..", want: "/home/pi/pinet-os/overlay"},
		{line: "cd ../docker", want: "/home/pi/pinet-os/docker"},
		{line: "cd //var//minima/", want: "/var/minima"},
		{line: "cd ~", want: "/home/pi"},
		{line: "cd .", want: "/home/pi"},
		{line: "cd /var", want: "/var"},
		{line: "cd", want: "/home/pi"},
	}

	for _, step := range steps {
		res := s.Execute(step.line)
		assert.Empty(t, res.Lines, step.line)
		assert.Equal(t, step.want, s.CurrentPath(), step.line)
	}
}

func TestCdHomeFromAnywhere(t *testing.T) {
	s := newTestShell(t)

	var dirs []string
	var walk func(id vfs.NodeID)
	walk = func(id vfs.NodeID) {
		dirs = append(dirs, s.Tree().Path(id))
		for _, c := range s.Tree().Children(id) {
			if c.IsDir() {
				walk(c.ID)
			}
		}
	}
	walk(vfs.RootID)
	require.Greater(t, len(dirs), 10)

	for _, dir := range dirs {
		require.Empty(t, s.Execute("cd "+dir).Lines, dir)
		require.Equal(t, dir, s.CurrentPath())

		s.Execute("cd")
		assert.Equal(t, "/home/pi", s.CurrentPath(), "from %s", dir)
	}
}

func TestCdFailuresLeaveCursor(t *testing.T) {
	s := newTestShell(t)

	tests := []struct {
		line string
		want string
	}{
		{line: "cd /home/pi/README.txt", want: "cd: /home/pi/README.txt: Not a directory"},
		{line: "cd nowhere", want: "cd: nowhere: No such file or directory"},
		{line: "cd /etc/hostname/deeper", want: "cd: /etc/hostname/deeper: Not a directory"},
		{line: "cd a b", want: "cd: too many arguments"},
	}

	for _, tt := range tests {
		res := s.Execute(tt.line)
		require.Len(t, res.Lines, 1, tt.line)
		assert.Equal(t, Line{Text: tt.want, Kind: KindError}, res.Lines[0])
		assert.Equal(t, "/home/pi", s.CurrentPath())
	}
}

func TestPwdIsIdempotent(t *testing.T) {
	s := newTestShell(t)
	s.Execute("cd /var/minima")

	for i := 0; i < 5; i++ {
		assert.Equal(t, []Line{{Text: "/var/minima", Kind: KindInfo}}, s.Execute("pwd").Lines)
	}
	assert.Equal(t, "/var/minima", s.CurrentPath())
}

func TestUnknownCommand(t *testing.T) {
	s := newTestShell(t)
	s.Execute("cd /etc")

	res := s.Execute("zzzqq")
	assert.Equal(t, []Line{{Text: "bash: zzzqq: command not found", Kind: KindError}}, res.Lines)
	assert.Equal(t, "/etc", s.CurrentPath())
	assert.Equal(t, "pi", s.User())

	res = s.Execute("  FooBar  --x ")
	assert.Equal(t, []string{"bash: FooBar: command not found"}, texts(res))
}

func TestShellNameIsConfigurable(t *testing.T) {
	s, err := New(&Config{ShellName: "pinetsh"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pinetsh: nope: command not found"}, texts(s.Execute("nope")))
}

func TestCommandNamesAreCaseInsensitive(t *testing.T) {
	s := newTestShell(t)

	assert.Equal(t, []string{"/home/pi"}, texts(s.Execute("PWD")))
	assert.Equal(t, []string{"pi"}, texts(s.Execute("WhoAmI")))
	assert.Equal(t, []string{"raspberrypi"}, texts(s.Execute("CAT /etc/hostname")))
}

func TestBlankInput(t *testing.T) {
	s := newTestShell(t)
	for _, in := range []string{"", "   ", "\t\n"} {
		res := s.Execute(in)
		assert.Empty(t, res.Lines)
		assert.False(t, res.Clear)
	}
}

func TestSudo(t *testing.T) {
	s := newTestShell(t)

	assert.Equal(t, texts(s.Execute("apt update")), texts(s.Execute("sudo apt update")))
	assert.Equal(t, []string{"Rebooting system..."}, texts(s.Execute("sudo -E -H reboot")))
	assert.Equal(t, []string{"/home/pi"}, texts(s.Execute("SUDO pwd")))
	assert.Equal(t, []string{"/home/pi"}, texts(s.Execute("sudo sudo pwd")))

	s.Execute("sudo cd /var")
	assert.Equal(t, "/var", s.CurrentPath())

	for _, in := range []string{"sudo", "sudo -s", "sudo -u root"} {
		res := s.Execute(in)
		if in == "sudo -u root" {
			assert.Equal(t, []string{"bash: root: command not found"}, texts(res))
			continue
		}
		require.Len(t, res.Lines, 2, in)
		assert.Equal(t, KindInfo, res.Lines[0].Kind)
		assert.Equal(t, "usage: sudo -h | -K | -k | -V", res.Lines[0].Text)
	}
}

func TestClear(t *testing.T) {
	s := newTestShell(t)
	res := s.Execute("clear")
	assert.True(t, res.Clear)
	assert.Empty(t, res.Lines)
}

func TestWhoamiAndUser(t *testing.T) {
	s, err := New(&Config{User: "alice", Hostname: "edge-01"})
	require.NoError(t, err)

	assert.Equal(t, []string{"alice"}, texts(s.Execute("whoami")))
	assert.Equal(t, "/home/alice", s.CurrentPath())
	assert.Equal(t, "alice@edge-01:~$ ", s.Prompt())

	s.Execute("cd pinet-os/docker")
	assert.Equal(t, "alice@edge-01:~/pinet-os/docker$ ", s.Prompt())
	s.Execute("cd /etc")
	assert.Equal(t, "alice@edge-01:/etc$ ", s.Prompt())
}

func TestHelp(t *testing.T) {
	s := newTestShell(t)

	res := s.Execute("help")
	require.NotEmpty(t, res.Lines)
	joined := strings.Join(texts(res), "\n")
	for _, name := range []string{"ls", "cd", "pwd", "cat", "mkdir", "touch", "whoami", "uname", "clear", "neofetch", "apt", "sudo", "reboot", "minima", "cluster", "top"} {
		assert.Contains(t, joined, name)
	}

	res = s.Execute("help ls")
	require.NotEmpty(t, res.Lines)
	assert.Equal(t, Line{Text: "ls: ls [-l] [path]", Kind: KindHeader}, res.Lines[0])

	res = s.Execute("help frobnicate")
	assert.Equal(t, []Line{{Text: "help: no help topics match `frobnicate'.", Kind: KindError}}, res.Lines)
}

func TestEveryCommandHasHelp(t *testing.T) {
	s := newTestShell(t)
	for name := range s.commands {
		_, err := s.help.GetHelp(name)
		assert.NoError(t, err, name)
	}
	for _, name := range s.help.ListCommands() {
		if name == "sudo" {
			continue
		}
		assert.Contains(t, s.commands, name)
	}
}

func TestSimulatedCommands(t *testing.T) {
	s := newTestShell(t)

	tests := []struct {
		line  string
		first Line
		count int
	}{
		{line: "uname", first: Line{Text: "Linux", Kind: KindInfo}, count: 1},
		{line: "uname -r", first: Line{Text: "6.6.20+rpt-rpi-v8", Kind: KindInfo}, count: 1},
		{line: "uname -a", first: Line{Text: "Linux raspberrypi 6.6.20+rpt-rpi-v8 #1 SMP PREEMPT Debian 12 (bookworm) aarch64 GNU/Linux", Kind: KindInfo}, count: 1},
		{line: "uname -x", first: Line{Text: "Linux", Kind: KindInfo}, count: 1},
		{line: "apt update", first: Line{Text: "Hit:1 http://deb.debian.org/debian bookworm InRelease", Kind: KindInfo}, count: 5},
		{line: "apt-get upgrade", first: Line{Text: "Reading package lists... Done", Kind: KindInfo}, count: 4},
		{line: "apt install", first: Line{Text: "apt: option requires an argument", Kind: KindError}, count: 1},
		{line: "apt-get install", first: Line{Text: "apt: option requires an argument", Kind: KindError}, count: 1},
		{line: "apt", first: Line{Text: "apt 2.7.3 (aarch64)", Kind: KindInfo}, count: 2},
		{line: "minima status", first: Line{Text: "Minima v1.0.35 [Mainnet]", Kind: KindSuccess}, count: 3},
		{line: "minima peers", first: Line{Text: "Connected: 14 Nodes | Outbound: 8 | Inbound: 6", Kind: KindInfo}, count: 1},
		{line: "minima mine", first: Line{Text: "Usage: minima [status|peers]", Kind: KindWarning}, count: 1},
		{line: "cluster list", first: Line{Text: "ID   ROLE    HAT       STATUS", Kind: KindHeader}, count: 4},
		{line: "cluster", first: Line{Text: "Usage: cluster [list]", Kind: KindWarning}, count: 1},
		{line: "top", first: Line{Text: "top - 14:22:15 up 2 days, 14:12,  1 user,  load average: 0.12, 0.08, 0.02", Kind: KindHeader}, count: 9},
		{line: "reboot", first: Line{Text: "Rebooting system...", Kind: KindWarning}, count: 1},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res := s.Execute(tt.line)
			require.Len(t, res.Lines, tt.count)
			assert.Equal(t, tt.first, res.Lines[0])
		})
	}

	res := s.Execute("apt install htop")
	assert.Contains(t, texts(res), "htop is already the newest version.")

	res = s.Execute("neofetch")
	require.Len(t, res.Lines, 1)
	assert.Equal(t, KindSuccess, res.Lines[0].Kind)
	assert.Contains(t, res.Lines[0].Text, "pi@raspberrypi")
	assert.Contains(t, res.Lines[0].Text, "Kernel: 6.6.20+rpt-rpi-v8")

	assert.Equal(t, "/home/pi", s.CurrentPath())
}

func TestOutputKindString(t *testing.T) {
	kinds := map[OutputKind]string{
		KindHeader:  "header",
		KindPrompt:  "prompt",
		KindInfo:    "info",
		KindSuccess: "success",
		KindError:   "error",
		KindWarning: "warning",
		KindCode:    "code",
	}
	for k, want := range kinds {
		assert.Equal(t, want, k.String())
	}
	assert.Equal(t, "OutputKind(42)", OutputKind(42).String())
}

func TestMetricsAndLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := metrics.New()

	s, err := New(&Config{Logger: zap.New(core), Metrics: m})
	require.NoError(t, err)

	s.Execute("ls")
	s.Execute("cat nope")
	s.Execute("zzzqq")
	s.Execute("sudo reboot")

	dispatched := logs.FilterMessage("command dispatched").All()
	require.Len(t, dispatched, 4)
	assert.Equal(t, "ls", dispatched[0].ContextMap()["command"])
	assert.Equal(t, metrics.StatusError, dispatched[1].ContextMap()["status"])
	assert.Equal(t, metrics.StatusNotFound, dispatched[2].ContextMap()["status"])
	assert.Equal(t, true, dispatched[3].ContextMap()["elevated"])
	assert.Equal(t, s.SessionID(), dispatched[0].ContextMap()["session"])

	require.NoError(t, s.Close())
	assert.Equal(t, 1, logs.FilterMessage("session closed").Len())

	count, err := testutil.GatherAndCount(m.Gatherer(), "pinetsh_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
