package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/ontop/internal/ipc"
)

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ontop list [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the windows the running instance can clone, front to back.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "list takes no arguments")
		fs.Usage()
		return 2
	}

	windows, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(ipc.WindowsData{Windows: windows})
	}

	width := 0
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}
	for _, w := range windows {
		fmt.Println(formatWindowLine(w, width))
	}
	return 0
}

// formatWindowLine renders one list row, cut to width columns when width > 0.
func formatWindowLine(w ipc.WindowInfo, width int) string {
	line := fmt.Sprintf("0x%08x  %-16s  %s", w.ID, truncate(w.Class, 16), w.Title)
	return truncate(line, width)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func runClone(args []string) int {
	fs := flag.NewFlagSet("clone", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	active := fs.Bool("active", false, "Clone the focused window")
	region := fs.String("region", "", "Show only X,Y,W,H of the window")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ontop clone [--region X,Y,W,H] <window-id>")
		fmt.Fprintln(os.Stderr, "       ontop clone --active")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Window ids are listed by 'ontop list' (decimal or 0x hex).")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if *active {
		if fs.NArg() != 0 || *region != "" {
			fmt.Fprintln(os.Stderr, "--active takes no window id or region")
			return 2
		}
		return report(client.CloneActive())
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	id, err := parseWindowID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	var r *ipc.Region
	if *region != "" {
		if r, err = parseRegion(*region); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	return report(client.Clone(id, r))
}

func runGroup(args []string) int {
	fs := flag.NewFlagSet("group", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ontop group <window-id> <window-id> [...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Cycle the thumbnail among the windows. The group advances on the group hot key")
		fmt.Fprintln(os.Stderr, "or when the shown window is activated.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	ids, err := parseWindowIDList(strings.Join(fs.Args(), ","))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return report(ipc.NewClient().Group(ids))
}

func runMode(args []string) int {
	fs := flag.NewFlagSet("mode", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fullscreen := fs.String("fullscreen", "", "on|off")
	clickThrough := fs.String("click-through", "", "on|off")
	clickForwarding := fs.String("click-forwarding", "", "on|off")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ontop mode [--fullscreen on|off] [--click-through on|off] [--click-forwarding on|off]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return 2
	}

	var p ipc.ModePayload
	for _, f := range []struct {
		name  string
		value string
		dst   **bool
	}{
		{"fullscreen", *fullscreen, &p.Fullscreen},
		{"click-through", *clickThrough, &p.ClickThrough},
		{"click-forwarding", *clickForwarding, &p.ClickForwarding},
	} {
		on, set, err := parseSwitch(f.value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "--%s: %v\n", f.name, err)
			return 2
		}
		if set {
			*f.dst = &on
		}
	}
	if p.Fullscreen == nil && p.ClickThrough == nil && p.ClickForwarding == nil {
		fmt.Fprintln(os.Stderr, "mode needs at least one flag")
		fs.Usage()
		return 2
	}
	return report(ipc.NewClient().SetMode(p))
}

func runFit(args []string) int {
	fs := flag.NewFlagSet("fit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ontop fit <scale>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Resize the window to scale times the source size, e.g. 0.5 or 50%.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	scale, err := parseScale(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return report(ipc.NewClient().Fit(scale))
}

func runRegion(args []string) int {
	fs := flag.NewFlagSet("region", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ontop region <X,Y,W,H|none>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show only part of the source window; 'none' shows all of it.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	var r *ipc.Region
	if fs.Arg(0) != "none" {
		var err error
		if r, err = parseRegion(fs.Arg(0)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	return report(ipc.NewClient().SetRegion(r))
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ontop status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the state of the running instance via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(status)
	}
	fmt.Printf("showing:          %v\n", status.Showing)
	if status.Showing {
		fmt.Printf("target:           0x%08x %s\n", status.Target, status.TargetTitle)
	}
	if r := status.Region; r != nil {
		fmt.Printf("region:           %d,%d %dx%d\n", r.X, r.Y, r.Width, r.Height)
	}
	fmt.Printf("mode:             %s\n", status.Mode)
	fmt.Printf("click_through:    %v\n", status.ClickThrough)
	fmt.Printf("click_forwarding: %v\n", status.ClickForwarding)
	fmt.Printf("visible:          %v\n", status.Visible)
	fmt.Printf("size:             %dx%d\n", status.Width, status.Height)
	if status.GroupActive {
		fmt.Printf("group:            %s\n", formatIDs(status.Group))
	}
	fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)
	return 0
}

// runSimple runs an argument-less remote command.
func runSimple(name, help string, args []string, call func(*ipc.Client) error) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintf(os.Stdout, "Usage: ontop %s\n\n%s\n", name, help)
		return 0
	}
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		return 2
	}
	return report(call(ipc.NewClient()))
}

func report(err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// parseWindowID accepts decimal or 0x-prefixed hex ids.
func parseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(id), nil
}

func parseWindowIDList(s string) ([]uint32, error) {
	var ids []uint32
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := parseWindowID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no window ids given")
	}
	return ids, nil
}

// parseRegion parses X,Y,W,H.
func parseRegion(s string) (*ipc.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("region %q: want X,Y,W,H", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return nil, fmt.Errorf("region %q: width and height must be positive", s)
	}
	return &ipc.Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// parseScale accepts a factor ("0.5") or a percentage ("50%").
func parseScale(s string) (float64, error) {
	s = strings.TrimSpace(s)
	div := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		div = 100
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v > 0) {
		return 0, fmt.Errorf("invalid scale %q", s)
	}
	return v / div, nil
}

// parseSwitch reads on|off; an empty value means unset.
func parseSwitch(s string) (on, set bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return false, false, nil
	case "on", "true", "1", "yes":
		return true, true, nil
	case "off", "false", "0", "no":
		return false, true, nil
	}
	return false, false, fmt.Errorf("want on or off, got %q", s)
}

func formatIDs(ids []uint32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("0x%x", id)
	}
	return strings.Join(parts, ", ")
}
