// Package rollover starts a new budget month by copying each template
// worksheet, renaming the copy for the month and clearing the cells that hold
// the previous month's entries.
package rollover

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/budgetops/budget-sheets/auth"
	"github.com/budgetops/budget-sheets/config"
	"github.com/budgetops/budget-sheets/errs"
	"github.com/budgetops/budget-sheets/worksheet"
)

// Plan is the spreadsheet and the templates to roll over.
type Plan struct {
	Spreadsheet string
	Templates   []config.Template
}

// Options controls a rollover run. A nil Log discards log output.
type Options struct {
	DryRun bool
	Log    *zerolog.Logger
}

// Result describes what was done for a single template. SheetID is zero for
// a dry run or if the copy failed.
type Result struct {
	Template int64
	SheetID  int64
	Title    string
	Copied   bool
	Renamed  bool
	Cleared  []string
	Planned  []string
}

// Complete is true if the template was copied, renamed and cleared.
func (r Result) Complete() bool {
	return r.Copied && r.Renamed && len(r.Cleared) == len(r.Planned)
}

type fields struct {
	Month string
	Year  int
}

// Run rolls the plan over to month. The plan is checked in full before
// anything is changed: every template must be valid and must exist, and no
// worksheet may already have the new title. A failure after that point stops the run and returns
// the results so far, including the partially completed template. Nothing is
// rolled back.
func Run(ctx context.Context, h *auth.Handle, plan Plan, month time.Time, opts Options) ([]Result, error) {
	log := zerolog.Nop()
	if opts.Log != nil {
		log = *opts.Log
	}

	if strings.TrimSpace(plan.Spreadsheet) == "" {
		return nil, &errs.ConfigurationError{Field: "spreadsheet", Message: "is required"}
	}

	if len(plan.Templates) == 0 {
		return nil, &errs.ConfigurationError{Field: "templates", Message: "no worksheet templates to roll over"}
	}

	for i, t := range plan.Templates {
		if err := t.Validate(fmt.Sprintf("templates[%d]", i)); err != nil {
			return nil, err
		}
	}

	titles, err := render(plan.Templates, month)
	if err != nil {
		return nil, err
	}

	list, err := worksheet.List(ctx, h, plan.Spreadsheet)
	if err != nil {
		return nil, err
	}

	for i, t := range plan.Templates {
		if _, ok := worksheet.FindID(list, t.Sheet); !ok {
			return nil, &errs.ConfigurationError{Field: fmt.Sprintf("templates[%d].sheet", i), Message: fmt.Sprintf("no worksheet with ID %d", t.Sheet)}
		}

		if p, ok := worksheet.Find(list, titles[i]); ok {
			return nil, &errs.ConfigurationError{
				Field:   fmt.Sprintf("templates[%d].title", i),
				Message: fmt.Sprintf("worksheet '%s' already exists (sheet ID %d)", p.Title, p.SheetId),
			}
		}
	}

	results := []Result{}
	for i, t := range plan.Templates {
		result := Result{
			Template: t.Sheet,
			Title:    titles[i],
			Cleared:  []string{},
			Planned:  []string{},
		}

		for _, b := range t.Clear {
			result.Planned = append(result.Planned, grid(t.Sheet, b).String())
		}

		if opts.DryRun {
			log.Info().Int64("template", t.Sheet).Str("title", titles[i]).Strs("clear", result.Planned).Msg("dry run: would copy, rename and clear worksheet")
			results = append(results, result)
			continue
		}

		err := roll(ctx, h, plan.Spreadsheet, t, &result, log)
		results = append(results, result)
		if err != nil {
			return results, fmt.Errorf("rollover of worksheet %d to '%s' failed (%w)", t.Sheet, titles[i], err)
		}
	}

	return results, nil
}

func roll(ctx context.Context, h *auth.Handle, spreadsheet string, t config.Template, result *Result, log zerolog.Logger) error {
	copied, err := worksheet.Copy(ctx, h, spreadsheet, t.Sheet, "")
	if err != nil {
		return err
	}

	result.SheetID = copied.SheetId
	result.Copied = true

	log.Debug().Int64("template", t.Sheet).Int64("sheet", copied.SheetId).Str("title", copied.Title).Msg("copied worksheet")

	if _, err := worksheet.Rename(ctx, h, spreadsheet, copied.SheetId, result.Title); err != nil {
		return err
	}

	result.Renamed = true

	log.Debug().Int64("sheet", copied.SheetId).Str("title", result.Title).Msg("renamed worksheet")

	for _, b := range t.Clear {
		g := grid(copied.SheetId, b)
		if _, err := worksheet.Clear(ctx, h, spreadsheet, worksheet.Grid(g)); err != nil {
			return err
		}

		result.Cleared = append(result.Cleared, g.String())

		log.Debug().Str("range", g.String()).Msg("cleared")
	}

	log.Info().Int64("sheet", copied.SheetId).Str("title", result.Title).Msg("created worksheet")

	return nil
}

func grid(sheetID int64, b config.Block) worksheet.GridRange {
	return worksheet.GridRange{
		SheetID:     sheetID,
		StartRow:    b.Rows[0],
		EndRow:      b.Rows[1],
		StartColumn: b.Columns[0],
		EndColumn:   b.Columns[1],
	}
}

// Title renders a worksheet title template for month, e.g.
// "Transactions {{.Month}}" as "Transactions December".
func Title(title string, month time.Time) (string, error) {
	tmpl, err := template.New("title").Option("missingkey=error").Parse(title)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, fields{Month: month.Month().String(), Year: month.Year()}); err != nil {
		return "", err
	}

	return strings.TrimSpace(b.String()), nil
}

func render(templates []config.Template, month time.Time) ([]string, error) {
	titles := []string{}
	for i, t := range templates {
		field := fmt.Sprintf("templates[%d].title", i)

		title, err := Title(t.Title, month)
		if err != nil {
			return nil, &errs.ConfigurationError{Field: field, Message: "is not a valid template", Err: err}
		} else if title == "" {
			return nil, &errs.ConfigurationError{Field: field, Message: "renders as a blank title"}
		}

		for j, other := range titles {
			if strings.EqualFold(title, other) {
				return nil, &errs.ConfigurationError{Field: field, Message: fmt.Sprintf("duplicates the title of templates[%d] ('%s')", j, title)}
			}
		}

		titles = append(titles, title)
	}

	return titles, nil
}
