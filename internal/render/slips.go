// Package render writes human-readable slips and flat CSV snapshots of the
// tickets and sequences a run produced.
package render

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/pace146/new-apex/internal/models"
)

// WriteTicketTable prints vertical tickets as a console slip.
func WriteTicketTable(w io.Writer, tickets []models.Ticket) {
	if len(tickets) == 0 {
		fmt.Fprintln(w, "No vertical tickets.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("Race", "Type", "Ticket", "Cost")
	for _, t := range tickets {
		table.Append(
			fmt.Sprintf("%d", t.Race),
			string(t.Type),
			t.String(),
			t.Cost.StringFixed(2),
		)
	}
	table.Render()
}

// WriteSequenceTable prints horizontal sequences as a console slip.
func WriteSequenceTable(w io.Writer, sequences []models.Sequence) {
	if len(sequences) == 0 {
		fmt.Fprintln(w, "No horizontal sequences.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("Sequence", "Races", "Unit", "Combos", "Cost", "Legs", "Notes")
	for _, s := range sequences {
		table.Append(
			s.Name,
			fmt.Sprintf("%d-%d", s.StartRace, s.EndRace),
			s.Unit.StringFixed(2),
			fmt.Sprintf("%d", s.Combos),
			s.Cost.StringFixed(2),
			s.LegsString(),
			s.NotesString(),
		)
	}
	table.Render()
}
