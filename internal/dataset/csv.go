package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// CSVOptions control delimited-text loading.
//
// All fields are optional; zero values mean "detect or use the default".
type CSVOptions struct {
	// Name is the logical dataset name. Defaults to a normalized form of the
	// file base name.
	Name string
	// Delimiter is the field separator. Zero means sniff from the header
	// line among ',', ';', '\t', '|'.
	Delimiter rune
	// Encoding selects the source charset: "", "utf-8", "latin-1",
	// "iso-8859-1", "windows-1252". Empty means UTF-8 passthrough.
	Encoding string
	// MaxRows bounds how many data rows are loaded. <=0 means all rows.
	MaxRows int
	// NoHeader treats the first record as data and names columns
	// positionally (column_1, column_2, ...).
	NoHeader bool
}

// LoadCSV reads a delimited file into a Dataset.
//
// Parsing is best-effort in the same way the rest of ingestion is:
//   - records with a field count different from the header are skipped,
//   - edge whitespace is trimmed,
//   - a UTF-8 BOM on the first header cell is stripped.
//
// Errors:
//   - Returns an error for unreadable files, unknown encodings, an empty
//     input, or a header that normalizes to nothing.
func LoadCSV(path string, opt CSVOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	name := opt.Name
	if name == "" {
		name = NormalizeName(baseName(path))
	}
	return ReadCSV(f, name, opt)
}

// ReadCSV reads delimited text from r into a Dataset. See LoadCSV.
func ReadCSV(r io.Reader, name string, opt CSVOptions) (*Dataset, error) {
	dec, err := decoderFor(opt.Encoding)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		r = transform.NewReader(r, dec.NewDecoder())
	}

	br := bufio.NewReaderSize(r, 64*1024)

	delim := opt.Delimiter
	if delim == 0 {
		head, _ := br.Peek(64 * 1024)
		delim = sniffDelimiter(head)
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1 // validated manually against the header
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var columns []string
	if !opt.NoHeader {
		hdr, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("dataset %q: empty input", name)
			}
			return nil, fmt.Errorf("dataset %q: read header: %w", name, err)
		}
		hdr[0] = strings.TrimPrefix(hdr[0], "\uFEFF")
		columns = normalizeHeaders(hdr)
	}

	records := make([][]string, 0, 1024)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed record: skip, keep loading.
			continue
		}

		if columns == nil {
			// Headerless input: positional column names sized by the first record.
			columns = make([]string, len(rec))
			for i := range rec {
				columns[i] = fmt.Sprintf("column_%d", i+1)
			}
		}
		if len(rec) != len(columns) {
			continue
		}

		row := make([]string, len(rec))
		for i, v := range rec {
			row[i] = strings.TrimSpace(v)
		}
		records = append(records, row)

		if opt.MaxRows > 0 && len(records) >= opt.MaxRows {
			break
		}
	}

	if columns == nil {
		return nil, fmt.Errorf("dataset %q: empty input", name)
	}
	return New(name, columns, records)
}

// sniffDelimiter picks the most frequent candidate separator on the first
// line. Ties resolve in candidate order, so ',' wins over ';' by default.
func sniffDelimiter(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}

	candidates := []rune{',', ';', '\t', '|'}
	best := ','
	bestN := 0

	inQuote := false
	counts := make(map[rune]int, len(candidates))
	for _, b := range string(head) {
		if b == '"' {
			inQuote = !inQuote
			continue
		}
		if inQuote {
			continue
		}
		counts[b]++
	}

	for _, c := range candidates {
		if counts[c] > bestN {
			best = c
			bestN = counts[c]
		}
	}
	return best
}

func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

func baseName(path string) string {
	s := path
	if i := strings.LastIndexAny(s, "/\\"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '.'); i > 0 {
		s = s[:i]
	}
	return s
}
