package dataset

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLOptions control HTML table loading.
type HTMLOptions struct {
	// Name is the logical dataset name. Defaults to a normalized form of the
	// file base name for LoadHTMLTable.
	Name string
	// Selector narrows which table is read (e.g. "#results table"). Empty
	// means the first <table> in the document.
	Selector string
	// MaxRows bounds how many data rows are loaded. <=0 means all rows.
	MaxRows int
}

// LoadHTMLTable reads the first (or selected) <table> of an HTML file into a
// Dataset. Exported reports and scraped pages are a common interchange format
// for the files this tool analyzes, so they load directly.
func LoadHTMLTable(path string, opt HTMLOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	name := opt.Name
	if name == "" {
		name = NormalizeName(baseName(path))
	}
	return ReadHTMLTable(f, name, opt)
}

// ReadHTMLTable parses HTML from r and loads the matched table.
//
// Header detection:
//   - If the table has <th> cells, those become the header.
//   - Otherwise the first <tr> is treated as the header row.
//
// Rows whose cell count differs from the header are skipped, mirroring the
// CSV loader's best-effort semantics.
//
// Errors:
//   - Returns an error if the document cannot be parsed, no table matches,
//     or the table yields no header.
func ReadHTMLTable(r io.Reader, name string, opt HTMLOptions) (*Dataset, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: parse html: %w", name, err)
	}

	sel := opt.Selector
	if sel == "" {
		sel = "table"
	}
	table := doc.Find(sel).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("dataset %q: no table matches %q", name, sel)
	}

	var header []string
	table.Find("th").Each(func(_ int, s *goquery.Selection) {
		header = append(header, cellText(s))
	})

	var records [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if opt.MaxRows > 0 && len(records) >= opt.MaxRows {
			return
		}

		cells := tr.Find("td")
		if cells.Length() == 0 {
			// Header-only row (th cells); already handled above.
			return
		}

		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			row = append(row, cellText(td))
		})

		if header == nil {
			// No <th> anywhere: first data row becomes the header.
			header = row
			return
		}
		if len(row) != len(header) {
			return
		}
		records = append(records, row)
	})

	if len(header) == 0 {
		return nil, fmt.Errorf("dataset %q: table has no header row", name)
	}

	return New(name, normalizeHeaders(header), records)
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
