package model

import (
	"errors"
	"testing"
	"time"
)

func TestBudget_Validate(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{"valid range", d(2024, time.June, 1), d(2024, time.June, 30), false},
		{"single day range invalid", d(2024, time.June, 1), d(2024, time.June, 1), true},
		{"inverted range", d(2024, time.July, 1), d(2024, time.June, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Budget{StartDate: tt.start, EndDate: tt.end}
			err := b.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidBudgetPeriod) {
				t.Errorf("error = %v, want ErrInvalidBudgetPeriod", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBudget_ContainsInclusive(t *testing.T) {
	b := Budget{StartDate: d(2024, time.June, 1), EndDate: d(2024, time.June, 30)}

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"before period", d(2024, time.May, 31), false},
		{"first day", d(2024, time.June, 1), true},
		{"middle", d(2024, time.June, 15), true},
		{"last day", d(2024, time.June, 30), true},
		{"after period", d(2024, time.July, 1), false},
		{"last day with clock time", time.Date(2024, time.June, 30, 23, 59, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.date); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestCategory_VisibleTo(t *testing.T) {
	owner := int64(1)

	system := Category{IsSystem: true}
	if !system.VisibleTo(1) || !system.VisibleTo(2) {
		t.Error("system categories are visible to everyone")
	}

	private := Category{OwnerID: &owner}
	if !private.VisibleTo(1) {
		t.Error("owner must see their category")
	}
	if private.VisibleTo(2) {
		t.Error("other owners must not see a private category")
	}
}

func TestDefaultSystemCategories_UniqueNames(t *testing.T) {
	seen := make(map[string]struct{})
	for _, c := range DefaultSystemCategories() {
		if _, dup := seen[c.Name]; dup {
			t.Errorf("duplicate system category name %q", c.Name)
		}
		seen[c.Name] = struct{}{}

		if !c.IsSystem {
			t.Errorf("category %q not flagged as system", c.Name)
		}
		if !c.Type.IsValid() {
			t.Errorf("category %q has invalid type %q", c.Name, c.Type)
		}
		if c.TranslationKey == "" {
			t.Errorf("category %q missing translation key", c.Name)
		}
	}
}
