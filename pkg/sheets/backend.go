package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/dmitrymomot/regdesk/pkg/logger"
	"github.com/dmitrymomot/regdesk/pkg/records"
)

const (
	valueInputRaw  = "RAW"
	insertDataRows = "INSERT_ROWS"
)

// Backend exposes the tabs of one spreadsheet as records tables.
type Backend struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	cfg           Config
	logger        *slog.Logger
}

var _ records.Backend = (*Backend)(nil)

type Option func(*backendOptions)

type backendOptions struct {
	logger     *slog.Logger
	clientOpts []option.ClientOption
}

func WithLogger(l *slog.Logger) Option {
	return func(o *backendOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClientOptions passes extra options to the Sheets client. When set,
// credentials from Config are not loaded, so tests can point the client at
// a fake server with option.WithoutAuthentication.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(o *backendOptions) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// New builds a Backend from cfg.
func New(ctx context.Context, cfg Config, opts ...Option) (*Backend, error) {
	if cfg.SpreadsheetID == "" {
		return nil, ErrMissingSpreadsheetID
	}
	o := backendOptions{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := o.clientOpts
	if len(clientOpts) == 0 {
		creds, err := loadCredentials(ctx, cfg)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, option.WithCredentials(creds))
	}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := sheetsapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create client: %w", err)
	}

	return &Backend{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		cfg:           cfg,
		logger:        o.logger.With(logger.Component("sheets")),
	}, nil
}

func loadCredentials(ctx context.Context, cfg Config) (*google.Credentials, error) {
	data := []byte(cfg.CredentialsJSON)
	if len(data) == 0 {
		if cfg.CredentialsFile == "" {
			return nil, ErrMissingCredentials
		}
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, errors.Join(ErrMissingCredentials, err)
		}
		data = b
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, errors.Join(ErrInvalidCredentials, err)
	}
	return creds, nil
}

// OpenTable looks the tab up by title.
func (b *Backend) OpenTable(ctx context.Context, name string) (records.Table, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	doc, err := b.svc.Spreadsheets.Get(b.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, b.mapError("open", name, err)
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == name {
			return b.table(name), nil
		}
	}
	return nil, records.ErrTableNotFound
}

// CreateTable adds a tab named name.
func (b *Backend) CreateTable(ctx context.Context, name string) (records.Table, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: name},
			},
		}},
	}
	if _, err := b.svc.Spreadsheets.BatchUpdate(b.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return nil, b.mapError("create", name, err)
	}
	b.logger.InfoContext(ctx, "tab created", logger.Table(name))
	return b.table(name), nil
}

func (b *Backend) table(name string) *Table {
	return &Table{backend: b, name: name}
}

func (b *Backend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.cfg.RequestTimeout)
}

func (b *Backend) mapError(op, name string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("sheets: %s %q: %w: %w", op, name, records.ErrAccessDenied, err)
		case http.StatusNotFound:
			return fmt.Errorf("sheets: %s %q: spreadsheet not found: %w: %w", op, name, records.ErrAccessDenied, err)
		}
	}
	return fmt.Errorf("sheets: %s %q: %w", op, name, err)
}

// Table is one tab of the spreadsheet.
type Table struct {
	backend *Backend
	name    string
}

var _ records.Table = (*Table)(nil)

func (t *Table) Name() string { return t.name }

func (t *Table) Rows(ctx context.Context) ([][]string, error) {
	ctx, cancel := t.backend.withTimeout(ctx)
	defer cancel()

	vr, err := t.backend.svc.Spreadsheets.Values.Get(t.backend.spreadsheetID, quoteTitle(t.name)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, t.backend.mapError("read", t.name, err)
	}

	rows := make([][]string, len(vr.Values))
	for i, raw := range vr.Values {
		cells := make([]string, len(raw))
		for j, v := range raw {
			cells[j] = cellString(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

func (t *Table) WriteRow(ctx context.Context, pos int, values []string) error {
	if pos < 1 {
		return records.ErrRowNotFound
	}
	ctx, cancel := t.backend.withTimeout(ctx)
	defer cancel()

	rng := fmt.Sprintf("%s!A%d", quoteTitle(t.name), pos)
	_, err := t.backend.svc.Spreadsheets.Values.Update(t.backend.spreadsheetID, rng, valueRange(values)).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return t.backend.mapError("write", t.name, err)
	}
	return nil
}

func (t *Table) AppendRow(ctx context.Context, values []string) error {
	ctx, cancel := t.backend.withTimeout(ctx)
	defer cancel()

	rng := quoteTitle(t.name) + "!A1"
	_, err := t.backend.svc.Spreadsheets.Values.Append(t.backend.spreadsheetID, rng, valueRange(values)).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertDataRows).
		Context(ctx).
		Do()
	if err != nil {
		return t.backend.mapError("append", t.name, err)
	}
	return nil
}

func valueRange(values []string) *sheetsapi.ValueRange {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return &sheetsapi.ValueRange{Values: [][]any{row}}
}

// quoteTitle renders a tab title for A1 notation: 'It''s'.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
