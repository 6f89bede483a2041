// Package ui renders notes, plans and sessions for the terminal.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/MarcoPoloResearchLab/studyhub/internal/clock"
	"github.com/MarcoPoloResearchLab/studyhub/internal/notes"
	"github.com/MarcoPoloResearchLab/studyhub/internal/plans"
	"github.com/MarcoPoloResearchLab/studyhub/internal/sessions"
	"github.com/MarcoPoloResearchLab/studyhub/internal/views"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

const (
	displayTimeLayout = "2006-01-02 15:04"
	shortIDLength     = 8
	markdownWrap      = 80
)

var (
	faint  = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

// ShortID returns the trailing characters of id shown in listings.
func ShortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[len(id)-shortIDLength:]
}

func displayTime(raw string) string {
	parsed, ok := clock.ParseISO(raw)
	if !ok {
		return "-"
	}
	return parsed.Local().Format(displayTimeLayout)
}

func FormatNoteListItem(note notes.Note) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s  %s %s\n", faint(ShortID(note.ID)), bold(note.Title), cyan("["+note.Subject+"]")))
	sb.WriteString(fmt.Sprintf("            %s %s\n", faint("Updated:"), faint(displayTime(note.UpdatedAt))))
	return sb.String()
}

func FormatNoteHeader(note notes.Note) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n", bold(note.Title)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), faint(note.ID)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Subject:"), cyan(note.Subject)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Created:"), faint(displayTime(note.CreatedAt))))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Updated:"), faint(displayTime(note.UpdatedAt))))
	sb.WriteString(Separator())
	return sb.String()
}

// RenderMarkdown renders note content for the terminal, returning the raw
// content when the renderer is unavailable.
func RenderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

func FormatPlanListItem(plan plans.Plan) string {
	status := "[ ]"
	if plan.Completed {
		status = green("[x]")
	}
	deadline := "no deadline"
	if plan.HasDeadline() {
		deadline = "due " + plan.Deadline
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s %s  %s %s\n", status, faint(ShortID(plan.ID)), bold(plan.Title), priorityLabel(plan.Priority)))
	sb.WriteString(fmt.Sprintf("            %s %s\n", cyan(plan.Subject), faint(deadline)))
	return sb.String()
}

func priorityLabel(priority plans.Priority) string {
	switch priority {
	case plans.PriorityHigh:
		return red("high")
	case plans.PriorityLow:
		return green("low")
	default:
		return yellow(string(priority))
	}
}

func FormatSessionListItem(session sessions.StudySession) string {
	return fmt.Sprintf("  %s  %s %s %s\n",
		faint(displayTime(session.StartTime)),
		bold(session.Subject),
		faint("for"),
		sessions.FormatDuration(session.DurationInSeconds))
}

func FormatSubjectList(subjects []views.SubjectCount) string {
	var sb strings.Builder
	for _, subject := range subjects {
		sb.WriteString(fmt.Sprintf("  %s %s\n", cyan(subject.Subject), faint(fmt.Sprintf("(%d)", subject.Count))))
	}
	return sb.String()
}

func FormatSearchResult(result views.SearchResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s %s  %s\n", cyan(result.Type), faint(ShortID(result.ID)), bold(result.Title)))
	if snippet := strings.TrimSpace(result.Snippet); snippet != "" {
		sb.WriteString(fmt.Sprintf("            %s\n", strings.ReplaceAll(snippet, "\n", " ")))
	}
	return sb.String()
}

// FormatTimer renders a stopwatch line for the active session.
func FormatTimer(snapshot sessions.Snapshot) string {
	return fmt.Sprintf("%s %s %s", bold(sessions.FormatClock(snapshot.ElapsedSeconds)), cyan(snapshot.Subject), faint(snapshot.State))
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}

// Confirm writes prompt and reports whether the answer read from in is yes.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
