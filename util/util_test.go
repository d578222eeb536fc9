// util/util_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestSelect(t *testing.T) {
	if Select(true, 1, 2) != 1 || Select(false, 1, 2) != 2 {
		t.Errorf("Select returned the wrong value")
	}
}

func TestSortedMapKeys(t *testing.T) {
	m := map[string]int{"c": 3, "a": 1, "b": 2}
	if k := SortedMapKeys(m); !slices.Equal(k, []string{"a", "b", "c"}) {
		t.Errorf("SortedMapKeys = %v, expected [a b c]", k)
	}
}

func TestFilterSlice(t *testing.T) {
	even := FilterSlice([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 })
	if !slices.Equal(even, []int{2, 4}) {
		t.Errorf("FilterSlice = %v, expected [2 4]", even)
	}
}

func TestLoadJSONFile(t *testing.T) {
	dir := t.TempDir()

	type doc struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	plain := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(plain, []byte(`{"name": "x", "value": 3}`), 0o600); err != nil {
		t.Fatal(err)
	}

	compressed := filepath.Join(dir, "doc.json.zst")
	f, err := os.Create(compressed)
	if err != nil {
		t.Fatal(err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte(`{"name": "y", "value": 4}`)); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	f.Close()

	var d doc
	if err := LoadJSONFile(plain, &d); err != nil || d.Name != "x" || d.Value != 3 {
		t.Errorf("LoadJSONFile(plain) = %+v, %v", d, err)
	}
	if err := LoadJSONFile(compressed, &d); err != nil || d.Name != "y" || d.Value != 4 {
		t.Errorf("LoadJSONFile(compressed) = %+v, %v", d, err)
	}

	if err := DecodeJSON(strings.NewReader(`{"name": "x", "bogus": 1}`), &d); err == nil {
		t.Errorf("DecodeJSON: expected error for unknown field")
	}
}
