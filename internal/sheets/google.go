package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const DefaultTab = "Sheet1"

type GoogleConfig struct {
	SpreadsheetID       string
	Tab                 string
	ServiceAccountEmail string
	PrivateKey          string
}

// Configured reports whether enough settings are present to talk to Sheets.
func (c GoogleConfig) Configured() bool {
	return c.SpreadsheetID != "" && c.ServiceAccountEmail != "" && c.PrivateKey != ""
}

type GoogleAppender struct {
	svc           *gsheets.Service
	spreadsheetID string
	tab           string
}

// ErrNotConfigured is returned by NewGoogleAppender when the spreadsheet id
// or service account credentials are missing.
var ErrNotConfigured = errors.New("sheets: spreadsheet id and service account credentials are required")

// NewGoogleAppender authenticates as a service account.
func NewGoogleAppender(ctx context.Context, cfg GoogleConfig) (*GoogleAppender, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	jwtCfg := &jwt.Config{
		Email: cfg.ServiceAccountEmail,
		// Keys copied from JSON credentials into env vars carry literal \n.
		PrivateKey: []byte(strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n")),
		Scopes:     []string{gsheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	svc, err := gsheets.NewService(ctx, option.WithTokenSource(jwtCfg.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	tab := cfg.Tab
	if tab == "" {
		tab = DefaultTab
	}
	return &GoogleAppender{svc: svc, spreadsheetID: cfg.SpreadsheetID, tab: tab}, nil
}

func (g *GoogleAppender) AppendRow(ctx context.Context, row []interface{}) error {
	_, err := g.svc.Spreadsheets.Values.
		Append(g.spreadsheetID, g.tab+"!A1", &gsheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// EnsureHeader writes Header into the first row when the sheet is empty.
func (g *GoogleAppender) EnsureHeader(ctx context.Context) error {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.tab+"!A1:Q1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	_, err = g.svc.Spreadsheets.Values.
		Update(g.spreadsheetID, g.tab+"!A1", &gsheets.ValueRange{Values: [][]interface{}{Header}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}
