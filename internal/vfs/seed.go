package vfs

import "fmt"

// Entry describes a node of the seed table
type Entry struct {
	Name        string
	Dir         bool
	Content     string
	Size        int64
	Permissions string
	Children    []Entry
}

const (
	execPermissions    = "-rwxr-xr-x"
	privatePermissions = "-rw-------"
)

// SeedTable returns the initial contents of a fresh node filesystem.
// The home directory is named after user.
func SeedTable(user string) []Entry {
	return []Entry{
		{Name: "bin", Dir: true, Children: []Entry{
			{Name: "minima", Content: "BINARY_DATA", Permissions: execPermissions},
			{Name: "cluster", Content: "BINARY_DATA", Permissions: execPermissions},
			{Name: "ai-gateway", Content: "BINARY_DATA", Permissions: execPermissions},
		}},
		{Name: "etc", Dir: true, Children: []Entry{
			{Name: "minima.conf", Content: "rpcenable=true\nport=9001\nhost=0.0.0.0"},
			{Name: "cluster.json", Content: `{"nodes": ["n1", "n2", "n3"], "master": "n1"}`},
			{Name: "os-release", Content: osRelease},
			{Name: "hostname", Content: "raspberrypi"},
		}},
		{Name: "home", Dir: true, Children: []Entry{
			{Name: user, Dir: true, Children: []Entry{
				{Name: "README.txt", Content: "Welcome to PiNet Web3 OS\n\nThis node is part of a decentralized cluster."},
				{Name: ".bashrc", Content: "# ~/.bashrc: executed by bash(1) for non-login shells.", Permissions: privatePermissions},
				{Name: "pinet-os", Dir: true, Children: []Entry{
					{Name: "build.sh", Content: buildScript, Permissions: execPermissions},
					{Name: "README.md", Content: pinetReadme},
					{Name: "docker", Dir: true, Children: []Entry{
						{Name: "Dockerfile", Content: dockerfile},
					}},
					{Name: "overlay", Dir: true, Children: []Entry{
						{Name: "rootfs", Dir: true, Children: []Entry{
							{Name: "etc", Dir: true, Children: []Entry{
								{Name: "systemd", Dir: true, Children: []Entry{
									{Name: "pinetos-shell.service", Content: "[Unit]\nDescription=PiNetOS Kiosk Shell\nAfter=graphical.target\n[Service]\nExecStart=/usr/local/bin/pinetos-shell"},
									{Name: "wallet.service", Content: "[Unit]\nDescription=PiNetOS Wallet\n[Service]\nExecStart=/usr/local/bin/walletd.sh"},
									{Name: "ota.service", Content: "[Unit]\nDescription=PiNetOS OTA\n[Service]\nExecStart=/usr/local/bin/ota-client.sh"},
								}},
							}},
						}},
					}},
				}},
			}},
		}},
		{Name: "var", Dir: true, Children: []Entry{
			{Name: "minima", Dir: true, Children: []Entry{
				{Name: "chain.db", Content: "BINARY_CHAIN_DATA", Size: 12400000},
				{Name: "wallet.db", Content: "BINARY_WALLET_DATA", Size: 52000, Permissions: privatePermissions},
			}},
		}},
	}
}

// Populate appends entries under parent, depth first
func Populate(t *Tree, parent NodeID, entries []Entry) error {
	for _, e := range entries {
		kind := KindFile
		if e.Dir {
			kind = KindDir
		}

		n, err := t.CreateNode(kind, e.Name, Attrs{
			Content:     e.Content,
			Size:        e.Size,
			Permissions: e.Permissions,
		})
		if err != nil {
			return fmt.Errorf("seed %s: %w", t.Path(parent), err)
		}
		id, err := t.AppendChild(parent, n)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}

		if e.Dir {
			if err := Populate(t, id, e.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewSeededTree builds a tree pre-populated with SeedTable(user)
func NewSeededTree(user string, opts ...Option) (*Tree, error) {
	if err := ValidateName(user); err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}

	t := NewTree(opts...)
	if err := Populate(t, RootID, SeedTable(user)); err != nil {
		return nil, err
	}
	return t, nil
}

const osRelease = `PRETTY_NAME="Debian GNU/Linux 12 (bookworm)"
NAME="Debian GNU/Linux"
VERSION_CODENAME=bookworm
ID=debian
HOME_URL="https://www.debian.org/"
SUPPORT_URL="https://www.debian.org/support"
BUG_REPORT_URL="https://bugs.debian.org/"`

const buildScript = `#!/bin/bash
set -e
echo "🚀 Building PiNetOS..."
mkdir -p tools/output
sudo ./raspi-image-gen/build.sh \
  -c images/pinetos/config \
  -o tools/output \
  -n PiNetOS
echo "✅ Image built: tools/output/PiNetOS.img"`

const pinetReadme = `# PiNetOS

PiNetOS is a hardened Raspberry Pi Operating System designed for kiosk, wallet, and fleet deployments.

Features:
- Secure boot + measured boot
- A/B OTA rollback
- Signed updates
- Encrypted persistent storage
- GPU-accelerated Chromium kiosk
- Wallet subsystem`

const dockerfile = `FROM raspbian/bookworm
RUN apt update && apt install -y \
 git curl rsync xz-utils parted \
 qemu-user-static debootstrap \
 genisoimage squashfs-tools \
 docker.io chromium \
 network-manager \
 mesa-vulkan-drivers \
 cryptsetup tpm2-tools openssl && apt clean
WORKDIR /build`
