package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/vws/vws"
)

const bodyExcerptLimit = 240

// Renderer formats client results for the terminal.
type Renderer struct {
	theme  Theme
	styles Styles
}

// NewRenderer returns a renderer for the named theme. Unknown names fall
// back to the default theme.
func NewRenderer(themeName string) Renderer {
	th := GetTheme(themeName)
	return Renderer{theme: th, styles: th.Styles()}
}

type row struct {
	label string
	value string
}

func (r Renderer) rows(title string, rows []row) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(r.styles.AccentText.Render(title))
		b.WriteString("\n")
	}
	for _, rw := range rows {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			r.styles.Label.Render(rw.label),
			r.styles.Text.Render(rw.value),
		))
		b.WriteString("\n")
	}
	return b.String()
}

// Badge renders a status or activity label.
func (r Renderer) Badge(label string) string {
	if label == "" {
		label = "unknown"
	}
	return r.styles.StatusStyle(label).Render(label)
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func rating(n int) string {
	if n < 0 {
		return "not rated"
	}
	return strconv.Itoa(n) + "/5"
}

// Created renders the id of a newly added target.
func (r Renderer) Created(id string) string {
	return r.styles.SuccessText.Render("created") + " " + r.styles.Text.Render(id) + "\n"
}

// Done renders a one line confirmation.
func (r Renderer) Done(msg string) string {
	return r.styles.SuccessText.Render("ok") + " " + r.styles.Text.Render(msg) + "\n"
}

// Record renders a target record with its status.
func (r Renderer) Record(rec *vws.TargetStatusAndRecord) string {
	tr := rec.TargetRecord
	reco := tr.RecoRating
	if reco == "" {
		reco = "-"
	}
	return r.rows("Target "+tr.TargetID, []row{
		{"status", r.Badge(string(rec.Status))},
		{"name", tr.Name},
		{"width", strconv.FormatFloat(tr.Width, 'f', -1, 64)},
		{"active", r.Badge(activeLabel(tr.ActiveFlag))},
		{"tracking rating", rating(tr.TrackingRating)},
		{"reco rating", reco},
	})
}

// DatabaseSummary renders the database report.
func (r Renderer) DatabaseSummary(s *vws.DatabaseSummaryReport) string {
	return r.rows("Database "+s.Name, []row{
		{"active images", strconv.Itoa(s.ActiveImages)},
		{"inactive images", strconv.Itoa(s.InactiveImages)},
		{"processing images", strconv.Itoa(s.ProcessingImages)},
		{"failed images", strconv.Itoa(s.FailedImages)},
		{"target quota", strconv.Itoa(s.TargetQuota)},
		{"request usage", fmt.Sprintf("%d / %d", s.RequestUsage, s.RequestQuota)},
		{"reco threshold", strconv.Itoa(s.RecoThreshold)},
		{"recos this month", strconv.Itoa(s.CurrentMonthRecos)},
		{"recos last month", strconv.Itoa(s.PreviousMonthRecos)},
		{"recos total", strconv.Itoa(s.TotalRecos)},
	})
}

// TargetSummary renders the per-target report.
func (r Renderer) TargetSummary(s *vws.TargetSummaryReport) string {
	return r.rows("Target "+s.TargetName, []row{
		{"status", r.Badge(string(s.Status))},
		{"database", s.DatabaseName},
		{"uploaded", s.UploadDate.Format("2006-01-02")},
		{"active", r.Badge(activeLabel(s.ActiveFlag))},
		{"tracking rating", rating(s.TrackingRating)},
		{"recos this month", strconv.Itoa(s.CurrentMonthRecos)},
		{"recos last month", strconv.Itoa(s.PreviousMonthRecos)},
		{"recos total", strconv.Itoa(s.TotalRecos)},
	})
}

// IDs renders a titled list of target ids.
func (r Renderer) IDs(title string, ids []string) string {
	var b strings.Builder
	b.WriteString(r.styles.AccentText.Render(fmt.Sprintf("%s (%d)", title, len(ids))))
	b.WriteString("\n")
	if len(ids) == 0 {
		b.WriteString(r.styles.FaintText.Render("  none"))
		b.WriteString("\n")
		return b.String()
	}
	for _, id := range ids {
		b.WriteString("  ")
		b.WriteString(r.styles.Text.Render(id))
		b.WriteString("\n")
	}
	return b.String()
}

// Matches renders query results, best match first.
func (r Renderer) Matches(results []vws.QueryResult) string {
	if len(results) == 0 {
		return r.styles.WarningText.Render("no match") + "\n"
	}
	var b strings.Builder
	for i, m := range results {
		rows := []row{{"target id", m.TargetID}}
		if td := m.TargetData; td != nil {
			rows = append(rows, row{"name", td.Name})
			if td.TrackingRating != nil {
				rows = append(rows, row{"tracking rating", rating(*td.TrackingRating)})
			}
			if td.ApplicationMetadata != nil {
				rows = append(rows, row{"metadata", excerpt(string(td.ApplicationMetadata))})
			}
			rows = append(rows, row{"modified", td.TargetTimestamp.Format("2006-01-02 15:04:05 MST")})
		}
		b.WriteString(r.rows(fmt.Sprintf("Match %d", i+1), rows))
	}
	return b.String()
}

// Error renders err with its kind and, when present, the raw response.
func (r Renderer) Error(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	kind := vws.KindOf(err)
	if kind != vws.KindUnknown {
		b.WriteString(r.styles.DangerText.Render(kind.String()))
		b.WriteString(" ")
	}
	b.WriteString(r.styles.Text.Render(err.Error()))
	b.WriteString("\n")

	var waitErr *vws.TargetProcessingTimeoutError
	if errors.As(err, &waitErr) {
		b.WriteString(r.rows("", []row{
			{"last status", r.Badge(string(waitErr.LastStatus))},
			{"polls", strconv.Itoa(waitErr.Attempts)},
		}))
	}
	if resp, ok := vws.ResponseOf(err); ok {
		b.WriteString(r.rows("", []row{
			{"http status", strconv.Itoa(resp.StatusCode)},
			{"request", resp.Method + " " + resp.Path()},
			{"body", excerpt(resp.Text())},
		}))
	}
	return b.String()
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > bodyExcerptLimit {
		return s[:bodyExcerptLimit] + "..."
	}
	if s == "" {
		return "-"
	}
	return s
}
