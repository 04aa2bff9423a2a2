package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/budgetops/budget-sheets/export"
	"github.com/budgetops/budget-sheets/table"
	"github.com/budgetops/budget-sheets/worksheet"
)

// Get retrieves a sheet range as a typed table and writes it as TSV, JSON,
// Parquet or an Excel workbook. Files with a '.zst' suffix are compressed and
// s3://bucket/key targets are uploaded to S3.
type Get struct {
	area        string
	types       string
	format      string
	file        string
	unformatted bool
}

func (cmd *Get) Command(options *Options) *cobra.Command {
	c := &cobra.Command{
		Use:   "get",
		Short: "Retrieves a range from a Google Sheets worksheet as a table",
		Long: `Retrieves a range from a Google Sheets worksheet. The first row is the header
and the remaining rows are converted to the column types given by --types
(text, integer, float or boolean). Untyped columns are text.`,
		Example: `  budget-sheets get --spreadsheet "https://docs.google.com/spreadsheets/d/1giRkGWGEw18NYc1b7LhxYvq9eRBF2F-XMJv_i_LG3tE" \
                    --range "testing" \
                    --types "Name=text,Pay=float,Column 1=int,Column 2=int"
  budget-sheets get --range "Transactions December!B4:I80" --file december.xlsx
  budget-sheets get --range "Transactions December!B4:I80" --types "Amount=float" --file december.parquet
  budget-sheets get --range "Transactions December!B4:I80" --file s3://budget-exports/2026/december.tsv.zst`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Execute(c.Context(), options)
		},
	}

	flags := c.Flags()
	flags.StringVar(&cmd.area, "range", cmd.area, "Spreadsheet range e.g. 'Transactions!B4:I80'")
	flags.StringVar(&cmd.types, "types", cmd.types, "Column types e.g. 'Name=text,Pay=float'")
	flags.StringVar(&cmd.format, "format", "tsv", "Output format when writing to stdout (tsv or json)")
	flags.StringVar(&cmd.file, "file", cmd.file, "Output file or s3://bucket/key (.tsv, .json, .parquet or .xlsx, optionally with a .zst suffix). Defaults to stdout")
	flags.BoolVar(&cmd.unformatted, "unformatted", cmd.unformatted, "Retrieves the underlying cell values rather than the displayed values")

	return c
}

func (cmd *Get) Execute(ctx context.Context, options *Options) error {
	if strings.TrimSpace(cmd.area) == "" {
		return fmt.Errorf("--range is a required option")
	}

	types, err := table.ParseTypes(cmd.types)
	if err != nil {
		return err
	}

	format := strings.ToLower(strings.TrimSpace(cmd.format))
	if cmd.file != "" {
		format = extension(cmd.file)
	}

	switch format {
	case "tsv", "json", "xlsx", "parquet":
	case "":
		format = "tsv"
	default:
		return fmt.Errorf("unsupported output format '%s' - expected tsv, json, parquet or xlsx", format)
	}

	if cmd.file == "" && (format == "xlsx" || format == "parquet") {
		return fmt.Errorf("--format %s requires --file", format)
	}

	var object *export.Object
	if export.IsS3(cmd.file) {
		o, err := export.ParseS3(cmd.file)
		if err != nil {
			return err
		}

		object = &o
	}

	cfg, err := options.load(true)
	if err != nil {
		return err
	}

	h, err := options.connect(ctx, cfg)
	if err != nil {
		return err
	}

	options.debugf("Spreadsheet - ID:%s  range:%s", cfg.Spreadsheet, cmd.area)

	opts := []worksheet.ReadOption{}
	if cmd.unformatted {
		opts = append(opts, worksheet.Unformatted())
	}

	response, err := worksheet.FetchRange(ctx, h, cfg.Spreadsheet, cmd.area, opts...)
	if err != nil {
		return err
	}

	t, err := table.FromValueRange(response, types)
	if err != nil {
		return err
	}

	if cmd.file == "" {
		return write(options.Out, t, format, sheetName(cmd.area))
	}

	if object != nil {
		if err := upload(ctx, options, *object, t, format, sheetName(cmd.area)); err != nil {
			return err
		}
	} else if err := save(cmd.file, t, format, sheetName(cmd.area)); err != nil {
		return err
	}

	options.infof("Retrieved %d rows to file %s", t.Len(), cmd.file)

	return nil
}

func write(w io.Writer, t *table.Table, format, sheet string) error {
	if w == nil {
		w = os.Stdout
	}

	switch format {
	case "json":
		return t.WriteJSON(w, true)
	case "parquet":
		return t.WriteParquet(w)
	case "xlsx":
		return t.WriteXLSX(w, sheet)
	default:
		return t.WriteTSV(w)
	}
}

// save writes to a temporary file that replaces file only once the table has
// been written in full.
func save(file string, t *table.Table, format, sheet string) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".budget-sheets-*")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := encode(tmp, compressed(file), t, format, sheet); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), file)
}

func upload(ctx context.Context, options *Options, object export.Object, t *table.Table, format, sheet string) error {
	var b bytes.Buffer

	zst := compressed(object.Key)
	if err := encode(&b, zst, t, format, sheet); err != nil {
		return err
	}

	client, err := options.s3(ctx)
	if err != nil {
		return err
	}

	return export.Upload(ctx, client, object, b.Bytes(), export.ContentType(format, zst))
}

func encode(w io.Writer, zst bool, t *table.Table, format, sheet string) error {
	if !zst {
		if err := write(w, t, format, sheet); err != nil {
			return fmt.Errorf("error creating %s file (%w)", strings.ToUpper(format), err)
		}

		return nil
	}

	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}

	if err := write(encoder, t, format, sheet); err != nil {
		encoder.Close()
		return fmt.Errorf("error creating %s file (%w)", strings.ToUpper(format), err)
	}

	return encoder.Close()
}

func compressed(file string) bool {
	return strings.EqualFold(filepath.Ext(file), ".zst")
}

// extension returns the output format for a file name, ignoring any '.zst'
// compression suffix.
func extension(file string) string {
	ext := strings.ToLower(filepath.Ext(file))
	if ext == ".zst" {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(file, filepath.Ext(file))))
	}

	return strings.TrimPrefix(ext, ".")
}

// sheetName returns the worksheet title from an A1 range, for use as the
// workbook sheet name.
func sheetName(area string) string {
	title, _, _ := strings.Cut(area, "!")
	title = strings.Trim(strings.TrimSpace(title), "'")

	if title == "" {
		return "Sheet1"
	}

	return title
}
