package confrag

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/confrag/confrag/pkg/errors"
	"github.com/confrag/confrag/pkg/types"
)

var (
	changedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	unchangedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// printSummary renders the per-entity records and returns an error
// when any of them failed, so the command exits non-zero.
func printSummary(w io.Writer, summary types.Summary) error {
	for _, rec := range summary.Records {
		marker := unchangedStyle.Render("ok")
		if rec.Changed {
			marker = changedStyle.Render("changed")
		}
		if rec.Failed {
			marker = failedStyle.Render("failed")
		}

		name := rec.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%-10s %s: %s\n", marker, name, rec.Message)
	}

	if summary.Failed {
		return errors.New(errors.ErrInternal, "one or more entities failed")
	}
	return nil
}
