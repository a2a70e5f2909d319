package dataset

import (
	"reflect"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		in          string
		opt         CSVOptions
		wantColumns []string
		wantRows    int
		wantErr     bool
	}{
		{
			name:        "comma",
			in:          "id,city\n1,oslo\n2,bergen\n",
			wantColumns: []string{"id", "city"},
			wantRows:    2,
		},
		{
			name:        "sniffs semicolon",
			in:          "id;city\n1;oslo\n",
			wantColumns: []string{"id", "city"},
			wantRows:    1,
		},
		{
			name:        "sniffs pipe",
			in:          "id|city\n1|oslo\n",
			wantColumns: []string{"id", "city"},
			wantRows:    1,
		},
		{
			name:        "bom stripped",
			in:          "\uFEFFid,city\n1,oslo\n",
			wantColumns: []string{"id", "city"},
			wantRows:    1,
		},
		{
			name:        "misaligned rows skipped",
			in:          "id,city\n1,oslo\nbroken\n2,bergen\n",
			wantColumns: []string{"id", "city"},
			wantRows:    2,
		},
		{
			name:        "headerless",
			in:          "1,oslo\n2,bergen\n",
			opt:         CSVOptions{NoHeader: true},
			wantColumns: []string{"column_1", "column_2"},
			wantRows:    2,
		},
		{
			name:        "max rows",
			in:          "id\n1\n2\n3\n",
			opt:         CSVOptions{MaxRows: 2},
			wantColumns: []string{"id"},
			wantRows:    2,
		},
		{
			name:        "headers normalized and deduped",
			in:          "Order ID,Order ID\n1,2\n",
			wantColumns: []string{"order_id", "order_id_2"},
			wantRows:    1,
		},
		{
			name:    "empty input",
			in:      "",
			wantErr: true,
		},
		{
			name:    "unknown encoding",
			in:      "id\n1\n",
			opt:     CSVOptions{Encoding: "ebcdic"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ds, err := ReadCSV(strings.NewReader(tt.in), "test", tt.opt)
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadCSV: %v", err)
			}
			if !reflect.DeepEqual(ds.Columns(), tt.wantColumns) {
				t.Errorf("columns = %v, want %v", ds.Columns(), tt.wantColumns)
			}
			if ds.RowCount() != tt.wantRows {
				t.Errorf("rows = %d, want %d", ds.RowCount(), tt.wantRows)
			}
		})
	}
}

// TestReadCSVTrimsWhitespace checks value canonicalization: edge whitespace
// goes away so "  " and "" profile identically as missing.
func TestReadCSVTrimsWhitespace(t *testing.T) {
	t.Parallel()

	ds, err := ReadCSV(strings.NewReader("id,city\n 1 ,  \n"), "test", CSVOptions{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if got := ds.Value(0, 0); got != "1" {
		t.Errorf("id = %q, want 1", got)
	}
	if got := ds.Value(1, 0); got != "" {
		t.Errorf("city = %q, want empty", got)
	}
}

// TestReadCSVLatin1 checks charset decoding: a Latin-1 byte sequence arrives
// as valid UTF-8 values.
func TestReadCSVLatin1(t *testing.T) {
	t.Parallel()

	// "id,city\n1,J\xE9r\xF4me\n" with é and ô as Latin-1 single bytes.
	in := string([]byte{'i', 'd', ',', 'c', 'i', 't', 'y', '\n', '1', ',', 'J', 0xE9, 'r', 0xF4, 'm', 'e', '\n'})

	ds, err := ReadCSV(strings.NewReader(in), "test", CSVOptions{Encoding: "latin-1"})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if got := ds.Value(1, 0); got != "Jérôme" {
		t.Errorf("city = %q, want Jérôme", got)
	}
}

func TestSniffDelimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want rune
	}{
		{name: "comma", in: "a,b,c\n1,2,3", want: ','},
		{name: "semicolon", in: "a;b;c", want: ';'},
		{name: "tab", in: "a\tb\tc", want: '\t'},
		{name: "quoted separators ignored", in: `a,"b;c;d;e",f`, want: ','},
		{name: "no separators defaults to comma", in: "justonecolumn", want: ','},
	}
	for _, tt := range tests {
		if got := sniffDelimiter([]byte(tt.in)); got != tt.want {
			t.Errorf("%s: sniffDelimiter = %q, want %q", tt.name, got, tt.want)
		}
	}
}
