package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// Output formats accepted by --format
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatCSV   = "csv"
)

// entryRow is one rendered time entry with its task name.
type entryRow struct {
	ID              int64      `json:"id" yaml:"id"`
	TaskID          int64      `json:"task_id" yaml:"task_id"`
	TaskName        string     `json:"task_name" yaml:"task_name"`
	UserID          string     `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	StartTime       time.Time  `json:"start_time" yaml:"start_time"`
	EndTime         *time.Time `json:"end_time" yaml:"end_time"`
	DurationMinutes *int       `json:"duration_minutes" yaml:"duration_minutes"`
	Description     string     `json:"description" yaml:"description"`
}

// EntryPrinter renders time entries in one of the output formats.
type EntryPrinter struct {
	api        api.API
	out        io.Writer
	timeFormat string
	taskNames  map[int64]string
}

// NewEntryPrinter creates a printer resolving task names through app.
func NewEntryPrinter(app *App) *EntryPrinter {
	return &EntryPrinter{
		api:        app.api,
		out:        app.out,
		timeFormat: app.timeFormat(),
		taskNames:  make(map[int64]string),
	}
}

// Print writes entries in format.
func (p *EntryPrinter) Print(ctx context.Context, format string, entries []*domain.TimeEntry) error {
	rows, err := p.rows(ctx, entries)
	if err != nil {
		return err
	}

	switch format {
	case FormatTable, "":
		return p.printTable(rows)
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case FormatYAML:
		enc := yaml.NewEncoder(p.out)
		defer enc.Close()
		return enc.Encode(rows)
	case FormatCSV:
		return p.printCSV(rows)
	default:
		return errors.NewInvalidInputError("format", format, "must be table, json, yaml or csv")
	}
}

func (p *EntryPrinter) rows(ctx context.Context, entries []*domain.TimeEntry) ([]entryRow, error) {
	rows := make([]entryRow, 0, len(entries))
	for _, entry := range entries {
		name, ok := p.taskNames[entry.TaskID]
		if !ok {
			task, err := p.api.GetTask(ctx, entry.TaskID)
			if err != nil {
				return nil, fmt.Errorf("failed to get task for entry %d: %w", entry.ID, err)
			}
			name = task.Name
			p.taskNames[entry.TaskID] = name
		}
		rows = append(rows, entryRow{
			ID:              entry.ID,
			TaskID:          entry.TaskID,
			TaskName:        name,
			UserID:          entry.UserID,
			StartTime:       entry.StartTime,
			EndTime:         entry.EndTime,
			DurationMinutes: entry.DurationMinutes,
			Description:     entry.Description,
		})
	}
	return rows, nil
}

// printTable prints one line per entry in the format:
// #id startTime - endTime (duration): taskName
// where endTime is 'running' while the entry is open.
func (p *EntryPrinter) printTable(rows []entryRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(p.out, "No time entries found")
		return nil
	}

	for _, row := range rows {
		endStr := "running"
		var duration time.Duration
		if row.EndTime != nil {
			endStr = row.EndTime.Format(p.timeFormat)
			if row.DurationMinutes != nil {
				duration = time.Duration(*row.DurationMinutes) * time.Minute
			}
		} else {
			duration = timeNow().Sub(row.StartTime)
		}

		line := fmt.Sprintf("#%d %s - %s (%s): %s", row.ID, row.StartTime.Format(p.timeFormat), endStr, api.FormatDuration(duration), row.TaskName)
		if row.Description != "" {
			line += " [" + row.Description + "]"
		}
		fmt.Fprintln(p.out, line)
	}
	return nil
}

func (p *EntryPrinter) printCSV(rows []entryRow) error {
	writer := csv.NewWriter(p.out)

	header := []string{"ID", "Task ID", "Task Name", "User", "Start Time", "End Time", "Duration (minutes)", "Description"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		var endTime, minutes string
		if row.EndTime != nil {
			endTime = row.EndTime.Format(time.RFC3339)
		}
		if row.DurationMinutes != nil {
			minutes = strconv.Itoa(*row.DurationMinutes)
		}
		record := []string{
			strconv.FormatInt(row.ID, 10),
			strconv.FormatInt(row.TaskID, 10),
			row.TaskName,
			row.UserID,
			row.StartTime.Format(time.RFC3339),
			endTime,
			minutes,
			row.Description,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
