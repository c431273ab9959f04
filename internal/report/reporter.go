// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/adiadia/eventbench/internal/logging"
	"github.com/hashicorp/go-multierror"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatPNG  = "png"
)

// File names written into the output directory, by format.
var fileNames = map[string]string{
	FormatCSV:  "db_query_performance.csv",
	FormatJSON: "db_query_performance.json",
	FormatPNG:  "db_query_performance_plot.png",
}

var allFormats = []string{FormatCSV, FormatJSON, FormatPNG}

type Reporter struct {
	dir     string
	formats []string
	logger  *slog.Logger
}

// NewReporter writes the given formats into dir. Unknown formats are a
// configuration error.
func NewReporter(dir string, formats []string, logger *slog.Logger) (*Reporter, error) {
	for _, f := range formats {
		if !slices.Contains(allFormats, f) {
			return nil, domain.Configurationf("unknown report format %q", f)
		}
	}
	if dir == "" {
		dir = "."
	}
	return &Reporter{
		dir:     dir,
		formats: slices.Clone(formats),
		logger:  logging.OrDefault(logger),
	}, nil
}

// Write renders every enabled format and returns the paths written. A failing
// format does not stop the others; all failures come back as one reporting
// error.
func (r *Reporter) Write(store *domain.ResultStore, meta Metadata) ([]string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, domain.NewError(domain.ErrReporting, "create output dir", "", err)
	}

	rows := ToLongFormat(store)
	written := make([]string, 0, len(r.formats))
	var errs *multierror.Error

	for _, format := range r.formats {
		path := filepath.Join(r.dir, fileNames[format])
		err := writeFile(path, func(w io.Writer) error {
			switch format {
			case FormatCSV:
				return WriteCSV(w, rows)
			case FormatJSON:
				return WriteJSON(w, store, meta)
			default:
				return WritePNG(w, rows)
			}
		})
		if err != nil {
			r.logger.Error("write report artifact failed", "format", format, "path", path, "error", err)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", format, err))
			continue
		}
		r.logger.Info("report artifact written", "format", format, "path", path, "rows", len(rows))
		written = append(written, path)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return written, domain.NewError(domain.ErrReporting, "write report", "", err)
	}
	return written, nil
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render(f)
}
