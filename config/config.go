// Package config loads the budget-sheets settings and the monthly rollover
// plan from an optional YAML file, with BUDGET_SHEETS_* environment variables
// taking precedence over the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/budgetops/budget-sheets/errs"
)

// Config holds the spreadsheet, the OAuth2 credentials directory and the
// worksheet templates copied by the monthly rollover.
type Config struct {
	Spreadsheet string     `yaml:"spreadsheet"`
	Credentials string     `yaml:"credentials"`
	Scopes      []string   `yaml:"scopes"`
	Templates   []Template `yaml:"templates"`
}

// Template is a worksheet that is copied, renamed and partially cleared to
// start a new month. Title is a text/template with .Month and .Year fields.
type Template struct {
	Sheet int64   `yaml:"sheet"`
	Title string  `yaml:"title"`
	Clear []Block `yaml:"clear"`
}

// Block is a rectangle of cells cleared on the new worksheet. Rows and
// Columns are zero-based [start, end) index pairs; an end of 0 is unbounded.
type Block struct {
	Rows    [2]int64 `yaml:"rows"`
	Columns [2]int64 `yaml:"columns"`
}

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)
var spreadsheetID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Load reads the YAML file at path (if path is not empty) and applies the
// environment overrides:
//
//	BUDGET_SHEETS_CREDENTIALS  credentials directory
//	BUDGET_SHEETS_SPREADSHEET  spreadsheet ID or URL
//	BUDGET_SHEETS_SCOPES       comma separated OAuth2 scopes
//
// A relative credentials directory in the file is resolved against the
// directory containing the file. Load does not validate the result.
func Load(path string) (*Config, error) {
	c := Config{
		Credentials: DEFAULT_CREDENTIALS,
		Scopes:      []string{},
		Templates:   []Template{},
	}

	if path != "" {
		if err := c.read(path); err != nil {
			return nil, err
		}
	}

	if v, ok := os.LookupEnv("BUDGET_SHEETS_CREDENTIALS"); ok && strings.TrimSpace(v) != "" {
		c.Credentials = strings.TrimSpace(v)
	}

	if v, ok := os.LookupEnv("BUDGET_SHEETS_SPREADSHEET"); ok && strings.TrimSpace(v) != "" {
		c.Spreadsheet = strings.TrimSpace(v)
	}

	if v, ok := os.LookupEnv("BUDGET_SHEETS_SCOPES"); ok && v != "" {
		c.Scopes = []string{}
		for _, scope := range strings.Split(v, ",") {
			if scope = strings.TrimSpace(scope); scope != "" {
				c.Scopes = append(c.Scopes, scope)
			}
		}
	}

	if c.Spreadsheet != "" {
		id, err := SpreadsheetID(c.Spreadsheet)
		if err != nil {
			return nil, err
		}

		c.Spreadsheet = id
	}

	return &c, nil
}

func (c *Config) read(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &errs.ConfigurationError{Field: "config", Message: fmt.Sprintf("unable to open '%s'", path), Err: err}
	}

	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return &errs.ConfigurationError{Field: "config", Message: fmt.Sprintf("invalid YAML in '%s'", path), Err: err}
	}

	if c.Credentials != "" && c.Credentials != DEFAULT_CREDENTIALS && !filepath.IsAbs(c.Credentials) {
		c.Credentials = filepath.Join(filepath.Dir(path), c.Credentials)
	}

	if c.Scopes == nil {
		c.Scopes = []string{}
	}

	if c.Templates == nil {
		c.Templates = []Template{}
	}

	return nil
}

// Validate checks that the spreadsheet and credentials directory are set and
// that every template is well formed.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Spreadsheet) == "" {
		return &errs.ConfigurationError{Field: "spreadsheet", Message: "is required"}
	}

	if strings.TrimSpace(c.Credentials) == "" {
		return &errs.ConfigurationError{Field: "credentials", Message: "is required"}
	}

	for i, scope := range c.Scopes {
		if strings.TrimSpace(scope) == "" {
			return &errs.ConfigurationError{Field: fmt.Sprintf("scopes[%d]", i), Message: "is blank"}
		}
	}

	for i, t := range c.Templates {
		if err := t.Validate(fmt.Sprintf("templates[%d]", i)); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks the template sheet ID, title and clear blocks. field is the
// prefix for the ConfigurationError field name, e.g. 'templates[0]'.
func (t Template) Validate(field string) error {
	if t.Sheet < 0 {
		return &errs.ConfigurationError{Field: field + ".sheet", Message: fmt.Sprintf("invalid sheet ID %d", t.Sheet)}
	}

	if strings.TrimSpace(t.Title) == "" {
		return &errs.ConfigurationError{Field: field + ".title", Message: "is required"}
	}

	if _, err := template.New("title").Option("missingkey=error").Parse(t.Title); err != nil {
		return &errs.ConfigurationError{Field: field + ".title", Message: "is not a valid template", Err: err}
	}

	for j, b := range t.Clear {
		if !valid(b.Rows) {
			return &errs.ConfigurationError{Field: fmt.Sprintf("%s.clear[%d].rows", field, j), Message: fmt.Sprintf("invalid range %v", b.Rows)}
		}

		if !valid(b.Columns) {
			return &errs.ConfigurationError{Field: fmt.Sprintf("%s.clear[%d].columns", field, j), Message: fmt.Sprintf("invalid range %v", b.Columns)}
		}
	}

	return nil
}

func valid(r [2]int64) bool {
	return r[0] >= 0 && (r[1] == 0 || r[1] > r[0])
}

// SpreadsheetID returns the spreadsheet ID from either a bare ID or a
// spreadsheet URL, e.g. https://docs.google.com/spreadsheets/d/<ID>/edit#gid=0.
func SpreadsheetID(v string) (string, error) {
	v = strings.TrimSpace(v)

	if strings.HasPrefix(v, "https://") {
		match := spreadsheetURL.FindStringSubmatch(v)
		if len(match) < 2 || !spreadsheetID.MatchString(match[1]) {
			return "", &errs.ConfigurationError{
				Field:   "spreadsheet",
				Message: fmt.Sprintf("invalid spreadsheet URL '%s' - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'", v),
			}
		}

		return match[1], nil
	}

	if !spreadsheetID.MatchString(v) {
		return "", &errs.ConfigurationError{Field: "spreadsheet", Message: fmt.Sprintf("invalid spreadsheet ID '%s'", v)}
	}

	return v, nil
}
