package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
	"github.com/nuvolos-cloud/nuvolos-cli/internal/wait"
)

// Printer renders command results in the selected output format and writes
// styled status lines.
type Printer struct {
	out     io.Writer
	errOut  io.Writer
	format  string
	noColor bool
	mu      *sync.Mutex

	success lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
}

func (c *Context) printer() *Printer {
	renderer := lipgloss.NewRenderer(c.Err)

	return &Printer{
		out:     c.Out,
		errOut:  c.Err,
		format:  c.Viper.GetString(keyOutput),
		noColor: c.Viper.GetBool(keyNoColor),
		mu:      &c.outMu,
		success: renderer.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		warning: renderer.NewStyle().Foreground(lipgloss.Color("11")),
		muted:   renderer.NewStyle().Faint(true),
	}
}

// Print writes data as JSON or YAML, or calls fill to build a table.
func (p *Printer) Print(data interface{}, fill func(table *tablewriter.Table)) error {
	switch p.format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(p.out)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("encoding JSON output: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(p.out)
		defer func() { _ = encoder.Close() }()

		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("encoding YAML output: %w", err)
		}

		return nil
	default:
		table := tablewriter.NewWriter(p.out)
		fill(table)

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// Empty prints a "nothing found" line in table mode, or an empty list.
func (p *Printer) Empty(what string) error {
	if p.format != constants.FormatTable {
		return p.Print([]struct{}{}, nil)
	}

	_, _ = fmt.Fprintf(p.out, "No %s found\n", what)

	return nil
}

// Success writes a status line. In JSON and YAML mode status lines go to
// stderr so stdout stays machine readable.
func (p *Printer) Success(format string, args ...interface{}) {
	p.status(p.success, constants.CheckMarkSymbol+" "+fmt.Sprintf(format, args...))
}

// Warn writes a warning status line.
func (p *Printer) Warn(format string, args ...interface{}) {
	p.status(p.warning, fmt.Sprintf(format, args...))
}

// Progress returns a wait progress callback that reports every tick on
// stderr in table mode.
func (p *Printer) Progress(target string) func(wait.Tick) {
	if p.format != constants.FormatTable {
		return nil
	}

	return func(tick wait.Tick) {
		line := fmt.Sprintf("waiting for %s: %s (%s elapsed)", target, tick.Status, tick.Elapsed.Round(time.Second))

		p.mu.Lock()
		defer p.mu.Unlock()

		_, _ = fmt.Fprintln(p.errOut, p.style(p.muted, line))
	}
}

func (p *Printer) status(style lipgloss.Style, line string) {
	w := p.out
	if p.format != constants.FormatTable {
		w = p.errOut
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintln(w, p.style(style, line))
}

func (p *Printer) style(style lipgloss.Style, s string) string {
	if p.noColor {
		return s
	}

	return style.Render(s)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return constants.NotAvailable
	}

	return t.Local().Format(constants.DateTimeFormat)
}

func orNA(s string) string {
	if s == "" {
		return constants.NotAvailable
	}

	return s
}
