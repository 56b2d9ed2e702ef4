package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bastiangx/wordlook/pkg/codec"
	"github.com/bastiangx/wordlook/pkg/session"
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	POS     lipgloss.Style
	Example lipgloss.Style
	Term    lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles returns styles for output written to w. Colors and attributes are
// dropped when w is not a terminal.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	text := lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}
	subtle := lipgloss.AdaptiveColor{Light: "#797593", Dark: "#908caa"}
	love := lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"}
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(text),
		Heading: r.NewStyle().Bold(true),
		POS:     r.NewStyle().Italic(true).Bold(true),
		Example: r.NewStyle().Italic(true).Foreground(subtle),
		Term:    r.NewStyle().Foreground(lipgloss.Color("75")),
		Muted:   r.NewStyle().Faint(true),
		Error:   r.NewStyle().Foreground(love),
	}
}

// alpha numbers notes and grouped definitions: a, b, c...
func alpha(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return fmt.Sprint(i + 1)
}

// RenderEntry formats an entry as a numbered page.
func (s Styles) RenderEntry(e *codec.Entry) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(e.Term))
	b.WriteByte('\n')

	for i, ety := range e.Etymologies {
		if len(e.Etymologies) > 1 {
			b.WriteString(s.Heading.Render(fmt.Sprintf("Etymology #%d", i+1)))
			b.WriteByte('\n')
		}
		for _, line := range strings.Split(ety.Description, "\n") {
			if line != "" {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		for _, sense := range ety.Senses {
			if sense.POS != "" {
				b.WriteString(s.POS.Render(sense.POS))
				b.WriteByte('\n')
			}
			n := 0
			for _, def := range sense.Definitions {
				n++
				s.writeDefinition(&b, fmt.Sprintf("%4d.", n), "    ", def)
			}
			for _, group := range sense.Groups {
				n++
				fmt.Fprintf(&b, "%4d. %s\n", n, group.Description)
				for k, def := range group.Definitions {
					s.writeDefinition(&b, fmt.Sprintf("%8s.", alpha(k)), "        ", def)
				}
			}
		}
	}
	return b.String()
}

func (s Styles) writeDefinition(b *strings.Builder, label, indent string, def codec.Definition) {
	fmt.Fprintf(b, "%s %s\n", label, def.Value)
	for _, ex := range def.Examples {
		b.WriteString(indent)
		b.WriteString(s.Example.Render("▸ " + ex))
		b.WriteByte('\n')
	}
	if len(def.Notes) == 0 {
		return
	}
	b.WriteString(indent)
	b.WriteString(s.Heading.Render("Notes"))
	b.WriteByte('\n')
	for k, note := range def.Notes {
		fmt.Fprintf(b, "%s%4s. %s\n", indent, alpha(k), note.Value)
		for _, ex := range note.Examples {
			b.WriteString(indent)
			b.WriteString("      ")
			b.WriteString(s.Example.Render("▸ " + ex))
			b.WriteByte('\n')
		}
	}
}

// RenderResults lists up to limit matching terms.
func (s Styles) RenderResults(term string, results []string, limit int) string {
	if len(results) == 0 {
		return s.Muted.Render(fmt.Sprintf("No matches for '%s'", term)) + "\n"
	}
	var b strings.Builder
	shown := results
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for i, r := range shown {
		fmt.Fprintf(&b, "%2d. %s\n", i+1, s.Term.Render(r))
	}
	if len(shown) < len(results) {
		b.WriteString(s.Muted.Render(fmt.Sprintf("... %d more", len(results)-len(shown))))
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderList formats the session's dictionaries, marking the selected one.
func (s Styles) RenderList(infos []session.Info) string {
	if len(infos) == 0 {
		return s.Muted.Render("No dictionaries. Use :import PATH to add one.") + "\n"
	}
	var b strings.Builder
	for _, info := range infos {
		mark := " "
		if info.Selected {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s %d  %s  %s\n", mark, info.Index, info.Name, s.Muted.Render(info.State.String()))
	}
	return b.String()
}
