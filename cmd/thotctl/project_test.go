package main

import (
	"bytes"
	"strings"
	"testing"

	"thot/internal/projection"
	"thot/internal/storage"
)

func TestPrintProjection(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		contains []string
		absent   []string
	}{
		{
			name:     "trend",
			values:   []float64{10, 20, 30, 40, 50},
			contains: []string{"MEDIA (MEDIUM)", "Next month   60.00", "In 6 months  110.00", "Change       25.0%", "CV"},
		},
		{
			name:     "no data",
			values:   nil,
			contains: []string{"SIN_DATOS (NO_DATA)", "Reason       no data available", "Next month   -"},
			absent:   []string{"CV"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printProjection(&buf, storage.Incomes, projection.ProjectValues(tt.values)); err != nil {
				t.Fatalf("printProjection() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, bad := range tt.absent {
				if strings.Contains(out, bad) {
					t.Errorf("output should not contain %q:\n%s", bad, out)
				}
			}
		})
	}
}

func TestProjectFilter(t *testing.T) {
	t.Cleanup(func() { projFrom, projTo, projCustomer, projUnits = "", "", 0, nil })

	projFrom, projTo, projCustomer, projUnits = "2024-01-01", "", 3, []int64{4, 5}
	f, err := projectFilter()
	if err != nil {
		t.Fatalf("projectFilter() error = %v", err)
	}
	if f.From == nil || f.From.String() != "2024-01-01" || f.To != nil {
		t.Errorf("dates = %v %v", f.From, f.To)
	}
	if f.CustomerID == nil || *f.CustomerID != 3 || len(f.BusinessUnits) != 2 {
		t.Errorf("filter = %+v", f)
	}

	projFrom = "01/02/2024"
	if _, err := projectFilter(); err == nil || !strings.Contains(err.Error(), "--date-from") {
		t.Errorf("expected --date-from error, got %v", err)
	}
}
