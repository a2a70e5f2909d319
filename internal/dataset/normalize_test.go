package dataset

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Order ID", want: "order_id"},
		{in: "  Customer-Name ", want: "customer_name"},
		{in: "price.net/gross", want: "price_net_gross"},
		{in: "a  b", want: "a_b"},
		{in: "Ärende#2", want: "rende2"},
		{in: "__x__", want: "x"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateName(t *testing.T) {
	t.Parallel()

	if got := TruncateName("short"); got != "short" {
		t.Errorf("TruncateName(short) = %q", got)
	}

	long := strings.Repeat("a", 80)
	if got := TruncateName(long); len(got) != 63 {
		t.Errorf("len = %d, want 63", len(got))
	}

	// Multibyte rune straddling the cut must not be split.
	mb := strings.Repeat("a", 62) + "æx"
	got := TruncateName(mb)
	if len(got) > 63 {
		t.Errorf("len = %d, want <= 63", len(got))
	}
	if !strings.HasPrefix(mb, got) {
		t.Errorf("TruncateName produced non-prefix %q", got)
	}
}

func TestNormalizeHeaders(t *testing.T) {
	t.Parallel()

	got := normalizeHeaders([]string{"Amount", "amount", "", "Amount"})
	want := []string{"amount", "amount_2", "column_3", "amount_3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeHeaders = %v, want %v", got, want)
	}
}
