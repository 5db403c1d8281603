package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const sheetName = "Sheet1"

// SheetsSink writes rows to a Google Sheets spreadsheet using a service account.
// When SpreadsheetID is empty a new spreadsheet is created on first Write.
type SheetsSink struct {
	SpreadsheetID string
	Title         string

	service *sheets.Service
}

// NewSheetsSink authenticates with the service-account credentials file
func NewSheetsSink(ctx context.Context, credentialsFile, spreadsheetID, title string) (*SheetsSink, error) {
	credentials, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwt, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets client: %w", err)
	}

	return newSheetsSink(svc, spreadsheetID, title), nil
}

func newSheetsSink(svc *sheets.Service, spreadsheetID, title string) *SheetsSink {
	return &SheetsSink{SpreadsheetID: spreadsheetID, Title: title, service: svc}
}

// URL returns the browser link for the spreadsheet once it exists
func (s *SheetsSink) URL() string {
	if s.SpreadsheetID == "" {
		return ""
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", s.SpreadsheetID)
}

func (s *SheetsSink) Write(ctx context.Context, rows []Row) error {
	if s.SpreadsheetID == "" {
		if err := s.create(ctx); err != nil {
			return err
		}
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toCells(header))
	for _, row := range rows {
		values = append(values, toCells(row.Record()))
	}

	_, err := s.service.Spreadsheets.Values.Clear(s.SpreadsheetID, sheetName, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to clear spreadsheet: %w", err)
	}

	_, err = s.service.Spreadsheets.Values.Update(s.SpreadsheetID, sheetName+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to update spreadsheet: %w", err)
	}

	return s.freezeHeader(ctx)
}

func (s *SheetsSink) create(ctx context.Context) error {
	title := s.Title
	if title == "" {
		title = "billt export"
	}
	title = fmt.Sprintf("%s - %s", title, time.Now().Format("2006-01-02-15-04-05"))

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: sheetName}},
		},
	}

	created, err := s.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to create spreadsheet: %w", err)
	}
	s.SpreadsheetID = created.SpreadsheetId
	return nil
}

func (s *SheetsSink) freezeHeader(ctx context.Context) error {
	spreadsheet, err := s.service.Spreadsheets.Get(s.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to get spreadsheet: %w", err)
	}
	if len(spreadsheet.Sheets) == 0 {
		return fmt.Errorf("spreadsheet has no sheets")
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        spreadsheet.Sheets[0].Properties.SheetId,
						GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		},
	}

	if _, err := s.service.Spreadsheets.BatchUpdate(s.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to freeze first row: %w", err)
	}
	return nil
}

func toCells(record []string) []interface{} {
	cells := make([]interface{}, len(record))
	for i, v := range record {
		cells[i] = v
	}
	return cells
}
