// Package snapshot loads flat tabular race-card snapshots and resolves their
// loosely-named columns into a typed card. Schema resolution happens once per
// load; a missing rating column aborts the whole card.
package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pace146/new-apex/internal/config"
	"github.com/pace146/new-apex/internal/models"
)

// Loader reads CSV snapshots using the configured column aliases.
type Loader struct {
	cfg    config.SchemaConfig
	logger *logrus.Logger
}

// NewLoader creates a snapshot loader.
func NewLoader(cfg config.SchemaConfig, logger *logrus.Logger) *Loader {
	return &Loader{cfg: cfg, logger: logger}
}

// LoadFile reads a card snapshot from disk.
func (l *Loader) LoadFile(path string) (*models.Card, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer f.Close()

	card, err := l.Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", path, err)
	}
	return card, nil
}

// Read parses a card snapshot from r. The rating column is the only hard
// requirement beyond race/program identity; the probability column is
// optional and filled by the simulator when absent.
func (l *Loader) Read(r io.Reader) (*models.Card, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	index := headerIndex(header)

	_, raceIdx, ok := resolveColumn(index, raceAliases)
	if !ok {
		return nil, models.NewSchemaError("race", raceAliases)
	}
	_, programIdx, ok := resolveColumn(index, programAliases)
	if !ok {
		return nil, models.NewSchemaError("program", programAliases)
	}
	ratingCol, ratingIdx, ok := resolveColumn(index, l.cfg.RatingAliases)
	if !ok {
		return nil, models.NewSchemaError("rating", l.cfg.RatingAliases)
	}

	probCol, probIdx, hasProb := resolveColumn(index, l.cfg.ProbabilityAliases)
	_, nameIdx, hasName := resolveColumn(index, nameAliases)

	adversity := make([]string, 0, len(l.cfg.AdversityColumns))
	adversityIdx := make(map[string]int)
	for _, col := range l.cfg.AdversityColumns {
		if i, found := index[col]; found {
			adversity = append(adversity, col)
			adversityIdx[col] = i
		}
	}

	type raceAccum struct {
		starters []models.Starter
		flagged  map[string]bool
	}
	races := make(map[int]*raceAccum)

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line+1, err)
		}
		line++

		raceNum, ok := parseIntCell(record, raceIdx)
		if !ok {
			l.logger.WithField("row", line).Warn("Skipping row without a usable race number")
			continue
		}
		program, ok := parseIntCell(record, programIdx)
		if !ok {
			l.logger.WithFields(logrus.Fields{"row": line, "race": raceNum}).
				Warn("Skipping row without a usable program number")
			continue
		}

		starter := models.Starter{
			Program: program,
			Rating:  parseFloatCell(record, ratingIdx),
		}
		if hasName {
			starter.Name = cell(record, nameIdx)
		}
		if hasProb {
			starter.WinProb = clip01(parseFloatCell(record, probIdx))
		}

		accum := races[raceNum]
		if accum == nil {
			accum = &raceAccum{flagged: make(map[string]bool)}
			races[raceNum] = accum
		}
		accum.starters = append(accum.starters, starter)

		for _, col := range adversity {
			if parseFloatCell(record, adversityIdx[col]) > 0 {
				accum.flagged[col] = true
			}
		}
	}

	numbers := make([]int, 0, len(races))
	for n := range races {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	card := &models.Card{
		Schema: models.ResolvedSchema{
			RatingColumn:     ratingCol,
			AdversityColumns: adversity,
		},
	}
	if hasProb {
		card.Schema.ProbabilityColumn = probCol
	}
	for _, n := range numbers {
		accum := races[n]
		sort.SliceStable(accum.starters, func(i, j int) bool {
			return accum.starters[i].Program < accum.starters[j].Program
		})
		card.Races = append(card.Races, models.Race{
			Number:         n,
			Starters:       accum.starters,
			AdversityFlags: len(accum.flagged),
		})
	}

	l.logger.WithFields(logrus.Fields{
		"races":             len(card.Races),
		"rating_column":     ratingCol,
		"prob_column":       card.Schema.ProbabilityColumn,
		"adversity_columns": len(adversity),
	}).Debug("Snapshot loaded")

	return card, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseIntCell parses an integer cell, tolerating float formatting ("3.0").
func parseIntCell(record []string, idx int) (int, bool) {
	v := cell(record, idx)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}

// parseFloatCell coerces unparseable numeric cells to zero.
func parseFloatCell(record []string, idx int) float64 {
	v := cell(record, idx)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
