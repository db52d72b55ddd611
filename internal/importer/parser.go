package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// HistorySet is one logged set from a history export row.
type HistorySet struct {
	Exercise string
	WeightKg float64
	Reps     int
	RPE      *int
}

// HistorySession is one workout reconstructed from consecutive rows
// sharing the same date and title.
type HistorySession struct {
	Date            time.Time
	Title           string
	DurationMinutes int
	Mood            string
	Notes           string
	Sets            []HistorySet
}

// Required and optional columns of a history CSV. Column order is free;
// the header row decides the mapping.
var requiredColumns = []string{"date", "title", "exercise", "reps"}

// ParseHistoryCSV reads a workout history export. Each row is one set;
// rows with the same date and title fold into one session. Set order
// within a session follows row order.
func ParseHistoryCSV(r io.Reader) ([]HistorySession, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var sessions []HistorySession
	index := make(map[string]int)

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := parseDate(field(row, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		title := field(row, "title")
		if title == "" {
			return nil, fmt.Errorf("line %d: empty title", line)
		}
		exercise := field(row, "exercise")
		if exercise == "" {
			return nil, fmt.Errorf("line %d: empty exercise", line)
		}

		set := HistorySet{Exercise: exercise}
		if v := field(row, "weight_kg"); v != "" {
			set.WeightKg, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: weight_kg: %w", line, err)
			}
		}
		set.Reps, err = strconv.Atoi(field(row, "reps"))
		if err != nil {
			return nil, fmt.Errorf("line %d: reps: %w", line, err)
		}
		if v := field(row, "rpe"); v != "" {
			rpe, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: rpe: %w", line, err)
			}
			set.RPE = &rpe
		}

		key := date.Format("2006-01-02") + "\x00" + title
		i, ok := index[key]
		if !ok {
			i = len(sessions)
			index[key] = i
			session := HistorySession{
				Date:  date,
				Title: title,
				Mood:  field(row, "mood"),
				Notes: field(row, "notes"),
			}
			if v := field(row, "duration_minutes"); v != "" {
				session.DurationMinutes, err = strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("line %d: duration_minutes: %w", line, err)
				}
			}
			sessions = append(sessions, session)
		}
		sessions[i].Sets = append(sessions[i].Sets, set)
	}

	return sessions, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
