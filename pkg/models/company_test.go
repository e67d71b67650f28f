package models

import "testing"

func TestCompanyDataName(t *testing.T) {
	tests := []struct {
		name     string
		data     CompanyData
		expected string
	}{
		{"profile", CompanyData{Profile: CompanyProfile{CompanyName: "Tesla, Inc."}, Quote: Quote{Name: "Tesla"}}, "Tesla, Inc."},
		{"quote", CompanyData{Quote: Quote{Name: "Tesla", Symbol: "TSLA"}}, "Tesla"},
		{"symbol only", CompanyData{Quote: Quote{Symbol: "TSLA"}}, "TSLA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.data.Name(); got != tt.expected {
				t.Errorf("Name() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCompanyDataLatestMetrics(t *testing.T) {
	var d CompanyData
	if d.LatestMetrics() != nil {
		t.Fatal("LatestMetrics() on empty data should be nil")
	}

	d.KeyMetrics = []KeyMetrics{{Date: "2022-12-31", ROE: 0.3}, {Date: "2024-12-31", ROE: 0.1}}
	d.IncomeStatements = []IncomeStatement{{Date: "2023-12-31"}, {Date: "2024-12-31"}}
	d.SortNewestFirst()

	m := d.LatestMetrics()
	if m == nil || m.Date != "2024-12-31" {
		t.Fatalf("LatestMetrics() = %+v, want 2024-12-31", m)
	}
	if d.IncomeStatements[0].Date != "2024-12-31" {
		t.Errorf("IncomeStatements[0].Date = %s, want 2024-12-31", d.IncomeStatements[0].Date)
	}
}
