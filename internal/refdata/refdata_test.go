package refdata

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCountries(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "countryInfo.json",
			content: `[{"cc":"KR","title":"대한민국","title_en":"South Korea","population":51780579},{"cc":"US","title":"미국"}]`,
		},
		{
			name: "yaml",
			file: "countryInfo.yaml",
			content: `
- cc: KR
  title: 대한민국
  title_en: South Korea
  population: 51780579
- cc: US
  title: 미국
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			countries, err := LoadCountries(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("LoadCountries failed: %v", err)
			}

			byCC := KeyByCC(countries)
			if len(byCC) != 2 {
				t.Fatalf("expected 2 countries, got %d", len(byCC))
			}
			if kr := byCC["KR"]; kr.TitleEn != "South Korea" || kr.Population != 51780579 {
				t.Errorf("unexpected KR entry: %+v", kr)
			}
		})
	}
}

func TestLoadEmptyPathAndErrors(t *testing.T) {
	countries, err := LoadCountries("")
	if err != nil || len(countries) != 0 {
		t.Errorf("expected no countries and no error, got %v, %v", countries, err)
	}

	if _, err := LoadNotices(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadNotices(writeFile(t, "notice.txt", "x")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestKeyByCC_LastWins(t *testing.T) {
	byCC := KeyByCC([]Country{{CC: "KR", Title: "first"}, {CC: "KR", Title: "second"}})
	if byCC["KR"].Title != "second" {
		t.Errorf("expected later entry to win, got %q", byCC["KR"].Title)
	}
}

func TestVisibleNotices(t *testing.T) {
	path := writeFile(t, "notice.json", `[
		{"message":"shown","hidden":false},
		{"message":"gone","hidden":true},
		{"message":"also shown"}
	]`)

	notices, err := LoadNotices(path)
	if err != nil {
		t.Fatalf("LoadNotices failed: %v", err)
	}

	visible := VisibleNotices(notices)
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible notices, got %d", len(visible))
	}
	for _, n := range visible {
		if n.Hidden {
			t.Errorf("hidden notice leaked: %+v", n)
		}
	}
}
