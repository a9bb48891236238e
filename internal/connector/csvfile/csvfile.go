// Package csvfile reads devices from a CSV export. It backs demo mode and
// the offline classify command.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hejijunhao/camscan/internal/connector"
	"github.com/hejijunhao/camscan/internal/engine/compactor"
	"github.com/hejijunhao/camscan/internal/model"
)

// Defaults applied when the optional columns are absent.
const (
	DefaultCountry = "US"
	DefaultProduct = "IP Camera"
)

// Header is the column order written by the scan command.
var Header = []string{"ip", "port", "location", "org", "data"}

var required = []string{"ip", "port", "location", "org", "data"}

// ErrMissingPath is returned when no input file is configured.
var ErrMissingPath = errors.New("csvfile connector: no path configured")

func init() {
	connector.Register("csv", func() connector.Connector {
		return &Connector{}
	})
}

// Connector implements connector.Connector over a local CSV file. The query
// is ignored: the file is the result set.
type Connector struct{}

func (c *Connector) Search(ctx context.Context, cfg connector.ConnectorConfig, query string) (model.SearchResult, error) {
	if cfg.Path == "" {
		return model.SearchResult{}, ErrMissingPath
	}
	if err := ctx.Err(); err != nil {
		return model.SearchResult{}, err
	}
	f, err := os.Open(cfg.Path)
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("csvfile connector: %w", err)
	}
	defer f.Close()

	devices, err := Read(f)
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("csvfile connector: %s: %w", cfg.Path, err)
	}
	devices = compactor.New(cfg.BannerBytes).CompactAll(devices)
	return model.SearchResult{Total: len(devices), Devices: devices}, nil
}

// Read parses a device CSV with a header row. Columns may appear in any
// order; ip, port, location, org and data are required.
func Read(r io.Reader) ([]model.Device, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	get := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	devices := []model.Device{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		port, err := strconv.Atoi(strings.TrimSpace(get(rec, "port")))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid port %q", line, get(rec, "port"))
		}
		d := model.Device{
			IP:      get(rec, "ip"),
			Port:    port,
			City:    get(rec, "location"),
			Country: get(rec, "country"),
			Org:     get(rec, "org"),
			Product: get(rec, "product"),
			Banner:  get(rec, "data"),
		}
		if d.Country == "" {
			d.Country = DefaultCountry
		}
		if d.Product == "" {
			d.Product = DefaultProduct
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// Write emits devices in the Header column order.
func Write(w io.Writer, devices []model.Device) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, d := range devices {
		if err := cw.Write([]string{d.IP, strconv.Itoa(d.Port), d.City, d.Org, d.Banner}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
