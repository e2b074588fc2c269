package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the user closes the palette without selecting an item.
var ErrCancelled = errors.New("palette cancelled")

// Exit codes for rofi kb-custom keybindings
const (
	ExitNormal    = 0
	ExitCancelled = 1
	ExitCustom1   = 10
)

type backendKind int

const (
	kindRofi backendKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// runner executes the palette program with stdin and returns its stdout and
// exit status. err is set only when the program could not be run.
type runner func(name string, args []string, stdin string) (out string, exitCode int, err error)

type dmenuLikeBackend struct {
	command string
	kind    backendKind
	caps    Capabilities
	run     runner
}

func newRofiBackend() *dmenuLikeBackend {
	return &dmenuLikeBackend{
		command: "rofi",
		kind:    kindRofi,
		caps: Capabilities{
			Icons:         true,
			Markup:        true,
			NonSelectable: true,
			IndexOutput:   true,
			MultiSelect:   true,
			MessageBar:    true,
		},
		run: execRunner,
	}
}

func newFuzzelBackend() *dmenuLikeBackend {
	return &dmenuLikeBackend{
		command: "fuzzel",
		kind:    kindFuzzel,
		caps:    Capabilities{Icons: true, IndexOutput: true},
		run:     execRunner,
	}
}

func newWofiBackend() *dmenuLikeBackend {
	return &dmenuLikeBackend{
		command: "wofi",
		kind:    kindWofi,
		caps:    Capabilities{Markup: true},
		run:     execRunner,
	}
}

func newDmenuBackend() *dmenuLikeBackend {
	return &dmenuLikeBackend{command: "dmenu", kind: kindDmenu, run: execRunner}
}

func (b *dmenuLikeBackend) Capabilities() Capabilities {
	return b.caps
}

func (b *dmenuLikeBackend) Show(prompt string, items []Item, message string) (SelectResult, error) {
	picked, code, err := b.show(prompt, items, message, false)
	if err != nil {
		return SelectResult{}, err
	}
	return SelectResult{Item: picked[0], ExitCode: code}, nil
}

func (b *dmenuLikeBackend) ShowMulti(prompt string, items []Item, message string) ([]Item, error) {
	picked, _, err := b.show(prompt, items, message, b.caps.MultiSelect)
	return picked, err
}

func (b *dmenuLikeBackend) show(prompt string, items []Item, message string, multi bool) ([]Item, int, error) {
	if len(items) == 0 {
		return nil, 0, fmt.Errorf("palette: no items to show")
	}

	displayItems := make([]Item, len(items))
	copy(displayItems, items)

	input, selected := b.formatInput(displayItems)
	args := b.buildArgs(prompt, message, selected, multi)

	out, exitCode, err := b.run(b.command, args, input)
	if err != nil {
		return nil, 0, fmt.Errorf("%s failed: %w", b.command, err)
	}
	if exitCode != ExitNormal {
		if strings.TrimSpace(out) == "" && isCancelExit(exitCode) {
			return nil, 0, ErrCancelled
		}
		if exitCode != ExitCustom1 {
			return nil, 0, fmt.Errorf("%s exited with status %d", b.command, exitCode)
		}
	}

	var picked []Item
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		item, err := b.parseSelection(line, displayItems)
		if err != nil {
			return nil, 0, err
		}
		if item.IsHeader {
			continue
		}
		picked = append(picked, item)
	}
	if len(picked) == 0 {
		return nil, 0, ErrCancelled
	}
	return picked, exitCode, nil
}

func (b *dmenuLikeBackend) buildArgs(prompt, message string, selectedRow int, multi bool) []string {
	var args []string

	switch b.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		if multi {
			args = append(args, "-multi-select")
		}
		if b.caps.Markup {
			args = append(args, "-markup-rows")
		}
		if b.caps.Icons {
			args = append(args, "-show-icons")
		}
		if selectedRow >= 0 {
			args = append(args, "-selected-row", strconv.Itoa(selectedRow))
		}
		args = append(args, "-kb-custom-1", "Alt+Return")
		if message != "" {
			args = append(args, "-mesg", message)
		}

	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}

	case kindWofi:
		args = []string{"--dmenu", "--allow-markup"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}

	case kindDmenu:
		args = []string{"-i", "-l", "15"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}

	return args
}

// formatInput renders one line per item and returns the row to preselect
// (the first active selectable row, else the first selectable row, else -1).
func (b *dmenuLikeBackend) formatInput(items []Item) (string, int) {
	// Backends that match by visible text need unique labels.
	if !b.caps.IndexOutput {
		seen := make(map[string]int)
		for i := range items {
			if items[i].IsHeader {
				continue
			}
			key := sanitizeLabel(items[i].Label)
			if count := seen[key]; count > 0 {
				items[i].Label = fmt.Sprintf("%s (%d)", key, count+1)
			}
			seen[key]++
		}
	}

	lines := make([]string, 0, len(items))
	first, firstActive := -1, -1
	for i, item := range items {
		lines = append(lines, b.formatItem(item))
		if item.IsHeader {
			continue
		}
		if first == -1 {
			first = i
		}
		if item.IsActive && firstActive == -1 {
			firstActive = i
		}
	}
	if firstActive != -1 {
		return strings.Join(lines, "\n"), firstActive
	}
	return strings.Join(lines, "\n"), first
}

func (b *dmenuLikeBackend) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if b.caps.Markup {
		display = html.EscapeString(display)
		if item.IsHeader {
			display = "<b>" + display + "</b>"
		}
	}
	if b.kind != kindRofi {
		return display
	}

	// rofi row properties: a single NUL, then key\x1fvalue pairs.
	var attrs []string
	if item.IsHeader {
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Icon != "" {
		attrs = append(attrs, "icon", sanitizeRofiField(item.Icon))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (b *dmenuLikeBackend) parseSelection(selection string, items []Item) (Item, error) {
	if b.caps.IndexOutput {
		idx, err := strconv.Atoi(selection)
		if err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func execRunner(name string, args []string, stdin string) (string, int, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), exitErr.ExitCode(), nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", 0, fmt.Errorf("%w: %s", err, msg)
		}
		return "", 0, err
	}
	return string(out), 0, nil
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	return sanitizeLabel(value)
}

// isCancelExit reports the "no selection" (1) and Ctrl+C (130) exit codes.
func isCancelExit(code int) bool {
	return code == ExitCancelled || code == 130
}
