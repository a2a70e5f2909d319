package mssql

import (
	"reflect"
	"testing"
)

func TestBuildInsertKeysSQL(t *testing.T) {
	t.Parallel()

	q, args := buildInsertKeysSQL("run-1", [][]string{
		{"order_id"},
		{"region", "store"},
	})

	wantQ := "INSERT INTO run_keys (run_id, position, key_columns) VALUES (@p1, @p2, @p3), (@p4, @p5, @p6)"
	if q != wantQ {
		t.Errorf("sql = %q, want %q", q, wantQ)
	}

	wantArgs := []any{"run-1", 0, "order_id", "run-1", 1, "region,store"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}
