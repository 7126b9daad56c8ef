package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/pkg/logger"
)

// DefaultSheetTitles are the tab names the operations team uses per table.
// A tab named after the kind itself ("purchases") is accepted as well.
var DefaultSheetTitles = map[Kind]string{
	KindPurchases:          "구매",
	KindProduction:         "생산",
	KindSales:              "매출",
	KindUtilities:          "공과금",
	KindInventory:          "재고",
	KindBom:                "BOM",
	KindMaterialMaster:     "자재마스터",
	KindInventorySnapshots: "재고스냅샷",
	KindChannelCosts:       "채널비용",
	KindLabor:              "인건비",
}

// SheetsReader reads operational tables from a Google spreadsheet with a service account.
type SheetsReader struct {
	srv *sheets.Service
}

func NewSheetsReader(ctx context.Context, credentialsJSON []byte) (*SheetsReader, error) {
	// Parse credentials from JSON
	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	return &SheetsReader{srv: srv}, nil
}

// ReadTable reads a whole tab. Dates come back as serial numbers so no locale parsing is needed.
func (s *SheetsReader) ReadTable(ctx context.Context, spreadsheetID, title string) (Table, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(spreadsheetID, quoteSheetTitle(title)).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return Table{}, fmt.Errorf("unable to read sheet %s: %w", title, err)
	}
	return valuesToTable(resp.Values), nil
}

// ReadDataset reads every recognized tab of the spreadsheet. Missing tabs are skipped.
func (s *SheetsReader) ReadDataset(ctx context.Context, spreadsheetID string) (domain.Dataset, error) {
	log := logger.Component("sheets")

	meta, err := s.srv.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("unable to read spreadsheet %s: %w", spreadsheetID, err)
	}
	titles := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}

	var ds domain.Dataset
	for _, kind := range Kinds {
		title, ok := matchSheetTitle(kind, titles)
		if !ok {
			log.Debug().Str("kind", string(kind)).Msg("no sheet for table")
			continue
		}
		t, err := s.ReadTable(ctx, spreadsheetID, title)
		if err != nil {
			return domain.Dataset{}, err
		}
		if err := ParseTable(kind, t, &ds); err != nil {
			return domain.Dataset{}, fmt.Errorf("sheet %s: %w", title, err)
		}
		log.Info().Str("sheet", title).Int("rows", len(t.Rows)).Msg("sheet parsed")
	}
	return ds, nil
}

func matchSheetTitle(kind Kind, titles []string) (string, bool) {
	want := []string{DefaultSheetTitles[kind], string(kind)}
	for _, t := range titles {
		for _, w := range want {
			if w != "" && strings.EqualFold(strings.TrimSpace(t), w) {
				return t, true
			}
		}
	}
	return "", false
}

// quoteSheetTitle turns a tab title into an A1 range covering the whole tab.
func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func valuesToTable(values [][]interface{}) Table {
	raw := make([][]string, len(values))
	for i, r := range values {
		cells := make([]string, len(r))
		for j, c := range r {
			cells[j] = cellString(c)
		}
		raw[i] = cells
	}
	return newTable(raw)
}

func cellString(c interface{}) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
