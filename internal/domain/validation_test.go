package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(decimal.RequireFromString("100.25")); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-5)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("0.001")); !errors.Is(err, ErrInvalidPrecision) {
		t.Fatalf("expected ErrInvalidPrecision, got %v", err)
	}

	huge := decimal.RequireFromString(MaxExpenseAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(huge); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateDescriptionAndCategory(t *testing.T) {
	t.Parallel()

	if err := ValidateDescription(""); err != nil {
		t.Fatalf("empty description should be allowed, got %v", err)
	}
	if err := ValidateDescription(strings.Repeat("x", MaxDescriptionLength+1)); !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("expected ErrInvalidDescription, got %v", err)
	}
	if err := ValidateCategory("food"); err != nil {
		t.Fatalf("expected valid category, got %v", err)
	}
	if err := ValidateCategory(strings.Repeat("c", MaxCategoryLength+1)); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"alice", "bob_99", "c.d-e"} {
		if err := ValidateUsername(ok); err != nil {
			t.Errorf("expected %q to be valid, got %v", ok, err)
		}
	}
	for _, bad := range []string{"ab", "has space", strings.Repeat("u", MaxUsernameLength+1)} {
		if err := ValidateUsername(bad); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("expected ErrInvalidUsername for %q, got %v", bad, err)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	if err := ValidateEmail("Alice@Example.com"); err != nil {
		t.Fatalf("expected email to be valid, got %v", err)
	}

	if err := ValidateEmail("invalid-email"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestValidateMobile(t *testing.T) {
	t.Parallel()

	if err := ValidateMobile(""); err != nil {
		t.Fatalf("empty mobile should be allowed, got %v", err)
	}
	if err := ValidateMobile("+4915112345678"); err != nil {
		t.Fatalf("expected valid mobile, got %v", err)
	}
	if err := ValidateMobile("call me"); !errors.Is(err, ErrInvalidMobile) {
		t.Fatalf("expected ErrInvalidMobile, got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	if err := ValidatePassword("Sup3rSecure"); err != nil {
		t.Fatalf("expected strong password to pass, got %v", err)
	}

	if err := ValidatePassword("short1"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak for short password, got %v", err)
	}

	if err := ValidatePassword("onlyletters"); !errors.Is(err, ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak for missing digit, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -10)
	if limit != 20 || offset != 0 {
		t.Fatalf("expected defaults (20,0), got (%d,%d)", limit, offset)
	}

	limit, _ = ValidatePagination(500, 5)
	if limit != 100 {
		t.Fatalf("expected limit to be capped at 100, got %d", limit)
	}
}
