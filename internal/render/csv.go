package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pace146/new-apex/internal/models"
)

// WriteTicketsCSV writes vertical tickets in the flat snapshot schema:
// race,type,ticket,cost.
func WriteTicketsCSV(w io.Writer, tickets []models.Ticket) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"race", "type", "ticket", "cost"}); err != nil {
		return fmt.Errorf("failed to write ticket header: %w", err)
	}
	for _, t := range tickets {
		record := []string{
			strconv.Itoa(t.Race),
			string(t.Type),
			t.String(),
			t.Cost.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write ticket row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSequencesCSV writes horizontal sequences in the flat snapshot schema:
// sequence,start_race,end_race,unit,combos,cost,legs,notes.
func WriteSequencesCSV(w io.Writer, sequences []models.Sequence) error {
	cw := csv.NewWriter(w)
	header := []string{"sequence", "start_race", "end_race", "unit", "combos", "cost", "legs", "notes"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write sequence header: %w", err)
	}
	for _, s := range sequences {
		record := []string{
			s.Name,
			strconv.Itoa(s.StartRace),
			strconv.Itoa(s.EndRace),
			s.Unit.StringFixed(2),
			strconv.Itoa(s.Combos),
			s.Cost.StringFixed(2),
			s.LegsString(),
			s.NotesString(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write sequence row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProbabilitiesCSV writes the card back out with simulated probability
// columns, the shape downstream builders load.
func WriteProbabilitiesCSV(w io.Writer, card *models.Card) error {
	cw := csv.NewWriter(w)
	header := []string{"race", "program", "horse_name", "CPR_Total", "MC_WinProb", "MC_PlaceProb", "MC_ShowProb"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write probability header: %w", err)
	}
	for i := range card.Races {
		race := &card.Races[i]
		for _, st := range race.Starters {
			record := []string{
				strconv.Itoa(race.Number),
				strconv.Itoa(st.Program),
				st.Name,
				strconv.FormatFloat(st.Rating, 'f', -1, 64),
				strconv.FormatFloat(st.WinProb, 'f', 4, 64),
				strconv.FormatFloat(st.PlaceProb, 'f', 4, 64),
				strconv.FormatFloat(st.ShowProb, 'f', 4, 64),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write probability row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
