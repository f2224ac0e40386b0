package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestApplySeed_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	seed, err := DefaultSeed()
	if err != nil {
		t.Fatalf("DefaultSeed failed: %v", err)
	}

	first, err := db.ApplySeed(seed)
	if err != nil {
		t.Fatalf("ApplySeed failed: %v", err)
	}
	if first.Policies != len(seed.Policies) || first.Claims != len(seed.Claims) {
		t.Errorf("first seed counts = %+v", first)
	}

	second, err := db.ApplySeed(seed)
	if err != nil {
		t.Fatalf("second ApplySeed failed: %v", err)
	}
	if second.Total() != 0 {
		t.Errorf("second seed inserted %d rows, want 0", second.Total())
	}
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	data := []byte("customers:\n  - customer_id: CUST00100\n    first_name: Ada\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed failed: %v", err)
	}
	if len(seed.Customers) != 1 || seed.Customers[0].FirstName != "Ada" {
		t.Errorf("unexpected seed: %+v", seed)
	}

	if _, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing seed file")
	}
}

func TestGetPolicyDetails(t *testing.T) {
	db := setupSeededDB(t)

	p, err := db.GetPolicyDetails("POL000001")
	if err != nil {
		t.Fatalf("GetPolicyDetails failed: %v", err)
	}
	if p.PolicyType != "auto" || p.PremiumAmount != 128.50 {
		t.Errorf("unexpected policy: %+v", p.Policy)
	}
	if p.Customer == nil || p.Customer.CustomerID != "CUST00001" {
		t.Errorf("customer not joined: %+v", p.Customer)
	}

	if _, err := db.GetPolicyDetails("POL999999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetAutoPolicyDetails(t *testing.T) {
	db := setupSeededDB(t)

	a, err := db.GetAutoPolicyDetails("POL000001")
	if err != nil {
		t.Fatalf("GetAutoPolicyDetails failed: %v", err)
	}
	if a.VehicleMake != "Honda" || a.CollisionDeductible != 500 || !a.RentalCarCoverage {
		t.Errorf("unexpected auto details: %+v", a)
	}

	// Home policy has no vehicle.
	if _, err := db.GetAutoPolicyDetails("POL000002"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetBillingInfo(t *testing.T) {
	db := setupSeededDB(t)

	info, err := db.GetBillingInfo("POL000001", "")
	if err != nil {
		t.Fatalf("GetBillingInfo failed: %v", err)
	}
	if len(info.Bills) != 2 || info.Bills[0].BillID != "BILL00002" {
		t.Errorf("bills not newest first: %+v", info.Bills)
	}

	byCustomer, err := db.GetBillingInfo("", "CUST00003")
	if err != nil {
		t.Fatalf("GetBillingInfo by customer failed: %v", err)
	}
	if byCustomer.PolicyNumber != "POL000004" {
		t.Errorf("policy = %q, want POL000004", byCustomer.PolicyNumber)
	}

	if _, err := db.GetBillingInfo("", ""); err == nil {
		t.Error("expected error without policy or customer")
	}
}

func TestGetPaymentHistory(t *testing.T) {
	db := setupSeededDB(t)

	payments, err := db.GetPaymentHistory("POL000001")
	if err != nil {
		t.Fatalf("GetPaymentHistory failed: %v", err)
	}
	if len(payments) != 1 || payments[0].TransactionID != "TXN-8F2A91" {
		t.Errorf("unexpected payments: %+v", payments)
	}

	none, err := db.GetPaymentHistory("POL000005")
	if err != nil {
		t.Fatalf("GetPaymentHistory failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no payments, got %+v", none)
	}
}

func TestGetClaimStatus(t *testing.T) {
	db := setupSeededDB(t)

	c, err := db.GetClaimStatus("CLM000001", "")
	if err != nil {
		t.Fatalf("GetClaimStatus failed: %v", err)
	}
	if c.Status != "in_review" {
		t.Errorf("status = %q, want in_review", c.Status)
	}

	if _, err := db.GetClaimStatus("CLM000001", "POL000003"); !errors.Is(err, ErrNotFound) {
		t.Errorf("claim on wrong policy: err = %v, want ErrNotFound", err)
	}
	if _, err := db.GetClaimStatus("CLM999999", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
