package schedule

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charleschow/pregame/internal/core/roster"
)

// Expected columns: id, date, home_team, away_team, home_score, away_score.
// Optional: venue, league. Extra columns are ignored. Rows without a final
// score are skipped (the pipeline only consumes completed contests).
var requiredCols = []string{"id", "date", "home_team", "away_team", "home_score", "away_score"}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// LoadCSV reads completed contests from path. Team names are resolved
// through the alias map so entity ids stay stable across sources. The
// rows are returned in file order; the caller owns ordering validation.
func LoadCSV(path string, aliases roster.Aliases) ([]Contest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open contests: %w", err)
	}
	defer f.Close()

	return parseCSV(f, aliases)
}

func parseCSV(r io.Reader, aliases roster.Aliases) ([]Contest, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	for _, c := range requiredCols {
		if _, ok := colIdx[c]; !ok {
			return nil, fmt.Errorf("missing column: %s", c)
		}
	}

	var contests []Contest
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			continue
		}

		rawHome := getCol(row, colIdx, "home_score")
		rawAway := getCol(row, colIdx, "away_score")
		if rawHome == "" || rawAway == "" {
			continue // not played yet
		}

		start, err := parseDate(getCol(row, colIdx, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		c := Contest{
			ID:        getCol(row, colIdx, "id"),
			StartTime: start,
			HomeID:    roster.EntityID(getCol(row, colIdx, "home_team"), aliases),
			AwayID:    roster.EntityID(getCol(row, colIdx, "away_team"), aliases),
			Venue:     getCol(row, colIdx, "venue"),
			League:    getCol(row, colIdx, "league"),
		}
		if c.ID == "" || c.HomeID == "" || c.AwayID == "" {
			continue
		}

		if c.HomeScore, err = strconv.Atoi(rawHome); err != nil {
			continue
		}
		if c.AwayScore, err = strconv.Atoi(rawAway); err != nil {
			continue
		}

		contests = append(contests, c)
	}

	return contests, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func getCol(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
