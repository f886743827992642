package shell

import (
	"fmt"
	"strings"
)

// Canned node output. None of it reflects real system state.

const (
	kernelRelease = "6.6.20+rpt-rpi-v8"
	aptVersion    = "apt 2.7.3 (aarch64)"
)

func (s *Shell) cmdUname(inv invocation) Result {
	if len(inv.args) == 0 {
		return lines(info("Linux"))
	}
	switch inv.args[0] {
	case "-a":
		return lines(info(fmt.Sprintf("Linux %s %s #1 SMP PREEMPT Debian 12 (bookworm) aarch64 GNU/Linux",
			s.config.Hostname, kernelRelease)))
	case "-r":
		return lines(info(kernelRelease))
	default:
		return lines(info("Linux"))
	}
}

var neofetchLogo = []string{
	`       _,met$$$$$gg.   `,
	`    ,g$$$$$$$$$$$$$$$P.`,
	`  ,g$$P"     """Y$$.". `,
	` ,$$P'              $$$.`,
	`',$$P       ,ggs.     $$b:`,
	"`d$$'     ,$P\"'   .    $$$",
	` $$P      d$'     ,    $$P`,
	` $$:      $$.   -    ,d$$'`,
	` $$;      Y$b._   _,d$P'`,
	" Y$$.    `.`\"Y$$$$P\"'",
	" `$$b      \"-.__",
	"  `Y$$",
	"   `Y$$.",
	"     `$$b.",
	"       `Y$$b.",
	"          `\"Y$b._",
	"              `\"\"\"",
}

func (s *Shell) cmdNeofetch(invocation) Result {
	title := fmt.Sprintf("%s@%s", s.cursor.User(), s.config.Hostname)
	facts := []string{
		title,
		strings.Repeat("-", len(title)),
		"OS: Debian GNU/Linux 12 (bookworm) aarch64",
		"Host: Raspberry Pi 5 Model B Rev 1.0",
		"Kernel: " + kernelRelease,
		"Uptime: 2 hours, 14 mins",
		"Packages: 1402 (dpkg)",
		"Shell: bash 5.2.15",
		"Resolution: 1920x1080",
		"DE: PiNet-Web3",
		"Terminal: pinet-term",
		"CPU: Cortex-A76 (4) @ 2.400GHz",
		"GPU: Broadcom VideoCore VII",
		"Memory: 1224MiB / 8096MiB",
	}

	var b strings.Builder
	for i, logo := range neofetchLogo {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i < len(facts) {
			fmt.Fprintf(&b, "%-30s%s", logo, facts[i])
		} else {
			b.WriteString(logo)
		}
	}
	return lines(Line{Text: b.String(), Kind: KindSuccess})
}

func (s *Shell) cmdApt(inv invocation) Result {
	sub := ""
	if len(inv.args) > 0 {
		sub = inv.args[0]
	}

	switch sub {
	case "update":
		return Result{Lines: infos(
			"Hit:1 http://deb.debian.org/debian bookworm InRelease",
			"Hit:2 http://deb.debian.org/debian bookworm-updates InRelease",
			"Hit:3 http://security.debian.org/debian-security bookworm-security InRelease",
			"Hit:4 http://archive.raspberrypi.com/debian bookworm InRelease",
			"Reading package lists... Done",
		)}
	case "upgrade":
		return Result{Lines: infos(
			"Reading package lists... Done",
			"Building dependency tree... Done",
			"Reading state information... Done",
			"0 upgraded, 0 newly installed, 0 to remove and 0 not upgraded.",
		)}
	case "install":
		if len(inv.args) < 2 {
			return lines(errorf("apt: option requires an argument"))
		}
		return Result{Lines: infos(
			"Reading package lists... Done",
			"Building dependency tree... Done",
			fmt.Sprintf("%s is already the newest version.", inv.args[1]),
			"0 upgraded, 0 newly installed, 0 to remove and 0 not upgraded.",
		)}
	default:
		return Result{Lines: infos(
			aptVersion,
			fmt.Sprintf("Usage: %s [options] command", inv.name),
		)}
	}
}

func (s *Shell) cmdMinima(inv invocation) Result {
	sub := ""
	if len(inv.args) > 0 {
		sub = inv.args[0]
	}

	switch sub {
	case "status":
		return lines(
			Line{Text: "Minima v1.0.35 [Mainnet]", Kind: KindSuccess},
			info("Block Height: 1,245,091"),
			Line{Text: "Wallet Sync: COMPLETE", Kind: KindSuccess},
		)
	case "peers":
		return lines(info("Connected: 14 Nodes | Outbound: 8 | Inbound: 6"))
	default:
		return lines(Line{Text: "Usage: minima [status|peers]", Kind: KindWarning})
	}
}

func (s *Shell) cmdCluster(inv invocation) Result {
	if len(inv.args) == 0 || inv.args[0] != "list" {
		return lines(Line{Text: "Usage: cluster [list]", Kind: KindWarning})
	}
	return lines(
		Line{Text: "ID   ROLE    HAT       STATUS", Kind: KindHeader},
		Line{Text: "n1   Alpha   SSD_NVME  ONLINE", Kind: KindSuccess},
		Line{Text: "n2   Beta    AI_NPU    ONLINE", Kind: KindSuccess},
		Line{Text: "n3   Gamma   SENSE     ONLINE", Kind: KindSuccess},
	)
}

func (s *Shell) cmdTop(invocation) Result {
	user := s.cursor.User()
	return lines(
		Line{Text: "top - 14:22:15 up 2 days, 14:12,  1 user,  load average: 0.12, 0.08, 0.02", Kind: KindHeader},
		info("Tasks: 142 total,   2 running, 140 sleeping,   0 stopped,   0 zombie"),
		info("%Cpu(s):  8.2 us,  2.1 sy,  0.0 ni, 89.2 id,  0.1 wa,  0.0 hi,  0.4 si,  0.0 st"),
		info("MiB Mem :   8096.0 total,   4122.4 free,   1262.2 used,   2711.4 buff/cache"),
		info(""),
		Line{Text: "  PID USER      PR  NI    VIRT    RES    SHR S  %CPU  %MEM     TIME+ COMMAND", Kind: KindHeader},
		Line{Text: fmt.Sprintf(" 1042 %-8s  20   0  1.2g  842m  120m S  12.4   5.1   4:12.14 minima", user), Kind: KindSuccess},
		Line{Text: fmt.Sprintf(" 2401 %-8s  20   0  2.4g  1.2g  240m R   8.2   7.3   2:45.09 airllm-sh", user), Kind: KindSuccess},
		info("  901 root      20   0  242m   42m   12m S   1.2   0.3   0:12.45 pinet-os"),
	)
}

func (s *Shell) cmdReboot(invocation) Result {
	return lines(Line{Text: "Rebooting system...", Kind: KindWarning})
}
