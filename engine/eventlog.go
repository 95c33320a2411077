package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const outputTimeFormat = "20060102_150405"

// EventLog is the ordered record of played stimuli for one subject.
type EventLog struct {
	Subject string
	Entries []LogEntry
}

func NewEventLog(subject string) *EventLog {
	return &EventLog{Subject: subject}
}

func (l *EventLog) Append(entries ...LogEntry) {
	l.Entries = append(l.Entries, entries...)
}

func (l *EventLog) Len() int { return len(l.Entries) }

// Save writes the results file: a subject_code,stim_name header and one row
// per played stimulus in play order.
func (l *EventLog) Save(path string) error {
	rows := make([][]string, 0, len(l.Entries)+1)
	rows = append(rows, []string{"subject_code", "stim_name"})
	for _, e := range l.Entries {
		rows = append(rows, []string{e.Subject, e.Stimulus})
	}
	return writeCSV(path, rows)
}

// SaveTiming writes the intended and actual onset of every entry.
func (l *EventLog) SaveTiming(path string) error {
	rows := make([][]string, 0, len(l.Entries)+1)
	rows = append(rows, []string{"block", "position", "role", "stim_name", "intended_ms", "actual_ms", "lateness_us"})
	for _, e := range l.Entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Block),
			strconv.Itoa(e.Position),
			e.Role.String(),
			e.Stimulus,
			strconv.FormatInt(e.Intended.Milliseconds(), 10),
			strconv.FormatInt(e.Actual.Milliseconds(), 10),
			strconv.FormatInt(e.Lateness().Microseconds(), 10),
		})
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// OutputPath names the results file <dir>/<timestamp>_<subject>.csv.
func OutputPath(dir, subject string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", t.Format(outputTimeFormat), subject))
}

// TimingPath derives the timing log name from the results file name.
func TimingPath(output string) string {
	return strings.TrimSuffix(output, ".csv") + "_timing.csv"
}
