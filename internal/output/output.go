// Package output renders API records for the command line.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alkime/voiceover/internal/api"
	"github.com/alkime/voiceover/internal/audio"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jszwec/csvutil"
	"gopkg.in/yaml.v3"
)

// Format selects how records are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatCSV}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}

	return "", fmt.Errorf("unknown output format %q", s)
}

const timeLayout = "2006-01-02 15:04"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Voices writes the voice catalog.
func Voices(w io.Writer, f Format, voices []api.Voice) error {
	return write(w, f, voices,
		[]string{"ID", "NAME", "LANGUAGE", "ACCENT", "GENDER", "STYLE"},
		func(v api.Voice) []string {
			return []string{strconv.FormatInt(v.ID, 10), v.Name, v.Language, v.Accent, v.Gender, v.Style}
		})
}

// Projects writes the project history.
func Projects(w io.Writer, f Format, projects []api.ProjectSummary) error {
	return write(w, f, projects,
		[]string{"ID", "TITLE", "STATUS", "VOICE", "UPDATED"},
		func(p api.ProjectSummary) []string {
			return []string{
				strconv.FormatInt(p.ID, 10),
				p.Title,
				string(p.Status),
				VoiceLabel(p.VoiceID),
				LocalTime(p.UpdatedAt),
			}
		})
}

// Devices writes audio device info.
func Devices(w io.Writer, f Format, devices []audio.Info) error {
	return write(w, f, devices,
		[]string{"NAME", "DEFAULT", "FORMATS"},
		func(d audio.Info) []string {
			def := ""
			if d.IsDefault {
				def = "*"
			}
			return []string{d.Name, def, strconv.Itoa(d.FormatCount)}
		})
}

// Project writes one project's detail. The table format prints a labelled
// block followed by the source text.
func Project(w io.Writer, f Format, p api.ProjectDetail) error {
	if f != FormatTable {
		return write(w, f, []api.ProjectDetail{p}, nil, nil)
	}

	rows := [][]string{
		{"ID", strconv.FormatInt(p.ID, 10)},
		{"Title", p.Title},
		{"Status", string(p.Status)},
		{"Voice", VoiceLabel(p.VoiceID)},
		{"Language", orDash(p.Language)},
		{"Style", orDash(p.Style)},
		{"Source file", orDash(p.SourceFilename)},
		{"Created", LocalTime(p.CreatedAt)},
		{"Updated", LocalTime(p.UpdatedAt)},
	}

	if p.ErrorMessage != "" {
		rows = append(rows, []string{"Error", p.ErrorMessage})
	}

	if p.AudioURL != "" {
		rows = append(rows, []string{"Audio", p.AudioURL})
	}

	label := lipgloss.NewStyle().Bold(true).Width(12)
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, label.Render(r[0])+r[1]); err != nil {
			return err
		}
	}

	if p.SourceText != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", p.SourceText); err != nil {
			return err
		}
	}

	return nil
}

// VoiceLabel renders a project's voice, "auto" when the service picked it.
func VoiceLabel(id *int64) string {
	if id == nil {
		return "auto"
	}

	return strconv.FormatInt(*id, 10)
}

// LocalTime renders a server timestamp in local time.
func LocalTime(t api.Timestamp) string {
	if t.IsZero() {
		return "-"
	}

	return t.In(time.Local).Format(timeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func write[T any](w io.Writer, f Format, rows []T, header []string, row func(T) []string) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if rows == nil {
			rows = []T{}
		}

		return enc.Encode(rows)

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}

		return enc.Close()

	case FormatCSV:
		return writeCSV(w, rows)

	case FormatTable, "":
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(header...).
			StyleFunc(func(r, _ int) lipgloss.Style {
				if r == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		for _, r := range rows {
			t.Row(row(r)...)
		}

		_, err := fmt.Fprintln(w, t.Render())

		return err

	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

func writeCSV[T any](w io.Writer, rows []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	var err error
	if len(rows) == 0 {
		var zero T
		err = enc.EncodeHeader(zero)
	} else {
		err = enc.Encode(rows)
	}

	if err != nil {
		return fmt.Errorf("failed to encode csv: %w", err)
	}

	cw.Flush()

	return cw.Error()
}
