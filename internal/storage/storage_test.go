package storage

import (
	"context"
	"reflect"
	"testing"
)

func TestNewRejectsEmptyKind(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("New with empty kind should fail")
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), Config{Kind: "tape-drive"}); err == nil {
		t.Fatal("New with unregistered kind should fail")
	}
}

func TestRegisterPanics(t *testing.T) {
	t.Parallel()

	mustPanic := func(name string, fn func()) {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			fn()
		})
	}

	dummy := func(context.Context, Config) (Repository, error) { return nil, nil }

	mustPanic("empty kind", func() { Register("", dummy) })
	mustPanic("nil factory", func() { Register("test-nil-factory", nil) })
	mustPanic("duplicate kind", func() {
		Register("test-duplicate", dummy)
		Register("test-duplicate", dummy)
	})
}

func TestKeyRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  []string
	}{
		{name: "single column", key: []string{"order_id"}},
		{name: "composite", key: []string{"region", "store", "receipt"}},
		{name: "empty", key: nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SplitKey(JoinKey(tt.key))
			if !reflect.DeepEqual(got, tt.key) {
				t.Errorf("round trip = %v, want %v", got, tt.key)
			}
		})
	}
}
