/*
Package budget automates a personal budget kept in a Google Sheets spreadsheet.

budget-sheets can be used from the command line but is really intended to be run from a cron job at the end of
each month to create the new month's worksheets from a set of templates.

budget-sheets supports the following commands:

  - authorise, to authorise application access to the Google Sheets spreadsheet
  - get, to download a worksheet range as a typed table (TSV, JSON, Parquet or Excel workbook) to a
    file, a zstd compressed file or an S3 bucket
  - list, to list the worksheets in a spreadsheet
  - copy, create, rename, clear and delete, to manage individual worksheets
  - rollover, to copy, rename and clear the template worksheets for a new month
  - version, to display the current version
*/
package budget
