package pm

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Pkcon runs transactions through the PackageKit console client.
type Pkcon struct {
	binary string
	run    Runner
}

// NewPkcon creates a Pkcon transactor that executes binary ("pkcon" if empty).
func NewPkcon(binary string) *Pkcon {
	if binary == "" {
		binary = "pkcon"
	}
	return &Pkcon{binary: binary, run: execRunner}
}

// WithRunner replaces the command runner (useful for testing).
func (p *Pkcon) WithRunner(run Runner) *Pkcon {
	p.run = run
	return p
}

// NewTransaction returns a fresh single-use transaction.
func (p *Pkcon) NewTransaction() Transaction {
	return &pkconTransaction{pkcon: p}
}

// InstalledPackages returns the names of installed packages.
func (p *Pkcon) InstalledPackages(ctx context.Context) ([]string, error) {
	out, err := p.exec(ctx, "get-packages", "--filter", "installed")
	if err != nil {
		return nil, err
	}

	var names []string
	seen := make(map[string]bool)
	for _, line := range parsePackageLines(out) {
		id, ok := ParseID(line.id)
		if !ok || seen[id.Name] {
			continue
		}
		seen[id.Name] = true
		names = append(names, id.Name)
	}
	return names, nil
}

func (p *Pkcon) exec(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"--plain", "--noninteractive"}, args...)
	out, err := p.run(ctx, p.binary, full...)
	if err != nil {
		return out, fmt.Errorf("%s %s failed: %w", p.binary, args[0], err)
	}
	return out, nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return output, fmt.Errorf("%w (stderr: %s)", err, string(exitErr.Stderr))
		}
		return output, err
	}
	return output, nil
}

type pkconTransaction struct {
	once
	pkcon *Pkcon
}

func (t *pkconTransaction) RefreshCache(ctx context.Context) (<-chan Event, error) {
	if err := t.begin(); err != nil {
		return nil, err
	}

	e := newEmitter(ctx)
	go func() {
		_, err := t.pkcon.exec(ctx, "refresh")
		e.finish(err)
	}()
	return e.ch, nil
}

func (t *pkconTransaction) Resolve(ctx context.Context, names []string) (<-chan Event, error) {
	if err := t.begin(); err != nil {
		return nil, err
	}

	e := newEmitter(ctx)
	go func() {
		if len(names) == 0 {
			e.finish(nil)
			return
		}
		out, err := t.pkcon.exec(ctx, append([]string{"resolve"}, names...)...)
		// pkcon exits non-zero when some names do not resolve; report what
		// it did print before failing the transaction.
		for _, line := range parsePackageLines(out) {
			if !e.found(line.info, line.id, line.summary) {
				break
			}
		}
		e.finish(err)
	}()
	return e.ch, nil
}

func (t *pkconTransaction) InstallPackages(ctx context.Context, ids []string) (<-chan Event, error) {
	if err := t.begin(); err != nil {
		return nil, err
	}

	e := newEmitter(ctx)
	go func() {
		_, err := t.pkcon.exec(ctx, append([]string{"install"}, ids...)...)
		e.finish(err)
	}()
	return e.ch, nil
}

// packageLine matches "Available   foo-1.0-1.noarch (openrepos-bar)   Summary".
var packageLine = regexp.MustCompile(`^(\S+)\s+(\S+)\s+\(([^)]*)\)\s*(.*)$`)

type parsedLine struct {
	info    Info
	id      string
	summary string
}

// parsePackageLines turns pkcon --plain package listings into package ids.
// Progress lines and anything that is not a package are skipped.
func parsePackageLines(out []byte) []parsedLine {
	var lines []parsedLine

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := packageLine.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}

		var info Info
		switch m[1] {
		case "Installed":
			info = InfoInstalled
		case "Available":
			info = InfoAvailable
		default:
			continue
		}

		id, ok := parseNEVRA(m[2])
		if !ok {
			continue
		}
		id.Data = m[3]
		if info == InfoInstalled && id.Repo() == InstalledData {
			id.Data = InstalledData
		}

		lines = append(lines, parsedLine{info: info, id: id.String(), summary: strings.TrimSpace(m[4])})
	}
	return lines
}

// parseNEVRA splits "name-version-release.arch". The arch is the suffix
// after the last dot; version and release are the last two dash-separated
// fields before it.
func parseNEVRA(s string) (ID, bool) {
	dot := strings.LastIndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return ID{}, false
	}
	arch := s[dot+1:]
	rest := s[:dot]

	relIdx := strings.LastIndexByte(rest, '-')
	if relIdx <= 0 {
		return ID{}, false
	}
	verIdx := strings.LastIndexByte(rest[:relIdx], '-')
	if verIdx <= 0 {
		return ID{}, false
	}

	return ID{
		Name:    rest[:verIdx],
		Version: rest[verIdx+1:relIdx] + "-" + rest[relIdx+1:],
		Arch:    arch,
	}, true
}
