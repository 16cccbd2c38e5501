package contribute

import (
	"errors"
	"testing"

	"offsetScope/internal/model"
)

func TestRemainingTokens(t *testing.T) {
	cases := []struct {
		name     string
		required uint64
		progress uint64
		want     uint64
	}{
		{"untouched project", 5, 0, 5},
		{"half funded", 8, 50, 4},
		{"fully funded", 5, 100, 0},
		{"over reported", 5, 120, 0},
		{"floor truncation", 5, 33, 3},
		{"rounded to zero", 1, 99, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RemainingTokens(tc.required, tc.progress)
			if got != tc.want {
				t.Fatalf("RemainingTokens(%d, %d) = %d, want %d", tc.required, tc.progress, got, tc.want)
			}
		})
	}
}

func TestValidateInactiveProject(t *testing.T) {
	project := model.Project{ID: 1, RequiredTokens: 10, Active: false}
	err := Validate(project, 0, 100, 1)
	if !errors.Is(err, ErrProjectInactive) {
		t.Fatalf("expected ErrProjectInactive, got %v", err)
	}
}

func TestValidateCompletedProject(t *testing.T) {
	project := model.Project{ID: 1, RequiredTokens: 5, Active: true}
	for _, amount := range []uint64{1, 3, 5, 100} {
		err := Validate(project, 100, 1000, amount)
		if !errors.Is(err, ErrProjectComplete) {
			t.Fatalf("amount %d: expected ErrProjectComplete, got %v", amount, err)
		}
	}
}

func TestValidateRoundedOutCapacity(t *testing.T) {
	// Floor arithmetic can exhaust capacity while progress still reads
	// below 100.
	project := model.Project{ID: 1, RequiredTokens: 1, Active: true}
	err := Validate(project, 99, 1000, 1)
	if !errors.Is(err, ErrProjectComplete) {
		t.Fatalf("expected ErrProjectComplete, got %v", err)
	}
}

func TestValidateAmountAboveRemaining(t *testing.T) {
	project := model.Project{ID: 1, RequiredTokens: 8, Active: true}

	err := Validate(project, 50, 1000, 5)
	var invalid *InvalidAmountError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidAmountError, got %v", err)
	}
	if invalid.Max != 4 {
		t.Fatalf("expected ceiling 4, got %d", invalid.Max)
	}
}

func TestValidateZeroAmount(t *testing.T) {
	project := model.Project{ID: 1, RequiredTokens: 8, Active: true}
	err := Validate(project, 0, 1000, 0)
	var invalid *InvalidAmountError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidAmountError, got %v", err)
	}
}

func TestValidateInsufficientBalance(t *testing.T) {
	project := model.Project{ID: 1, RequiredTokens: 8, Active: true}

	err := Validate(project, 50, 2, 3)
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if insufficient.Balance != 2 {
		t.Fatalf("expected balance 2 in error, got %d", insufficient.Balance)
	}
}

func TestValidateAccepts(t *testing.T) {
	project := model.Project{ID: 1, RequiredTokens: 8, Active: true}
	if err := Validate(project, 50, 10, 3); err != nil {
		t.Fatalf("expected valid contribution, got %v", err)
	}
}
