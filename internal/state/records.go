package state

import (
	"database/sql"
	"fmt"
)

// Customer is a policyholder.
type Customer struct {
	CustomerID  string `json:"customer_id" yaml:"customer_id"`
	FirstName   string `json:"first_name" yaml:"first_name"`
	LastName    string `json:"last_name" yaml:"last_name"`
	Email       string `json:"email" yaml:"email"`
	Phone       string `json:"phone" yaml:"phone"`
	DateOfBirth string `json:"date_of_birth" yaml:"date_of_birth"`
	State       string `json:"state" yaml:"state"`
}

// Policy is an insurance policy.
type Policy struct {
	PolicyNumber     string  `json:"policy_number" yaml:"policy_number"`
	CustomerID       string  `json:"customer_id" yaml:"customer_id"`
	PolicyType       string  `json:"policy_type" yaml:"policy_type"`
	StartDate        string  `json:"start_date" yaml:"start_date"`
	PremiumAmount    float64 `json:"premium_amount" yaml:"premium_amount"`
	BillingFrequency string  `json:"billing_frequency" yaml:"billing_frequency"`
	Status           string  `json:"status" yaml:"status"`
}

// AutoPolicyDetails holds the vehicle and coverage details of an auto policy.
type AutoPolicyDetails struct {
	PolicyNumber            string  `json:"policy_number" yaml:"policy_number"`
	VehicleVIN              string  `json:"vehicle_vin" yaml:"vehicle_vin"`
	VehicleMake             string  `json:"vehicle_make" yaml:"vehicle_make"`
	VehicleModel            string  `json:"vehicle_model" yaml:"vehicle_model"`
	VehicleYear             int     `json:"vehicle_year" yaml:"vehicle_year"`
	LiabilityLimit          float64 `json:"liability_limit" yaml:"liability_limit"`
	CollisionDeductible     float64 `json:"collision_deductible" yaml:"collision_deductible"`
	ComprehensiveDeductible float64 `json:"comprehensive_deductible" yaml:"comprehensive_deductible"`
	UninsuredMotorist       bool    `json:"uninsured_motorist" yaml:"uninsured_motorist"`
	RentalCarCoverage       bool    `json:"rental_car_coverage" yaml:"rental_car_coverage"`
}

// Bill is one billing statement.
type Bill struct {
	BillID       string  `json:"bill_id" yaml:"bill_id"`
	PolicyNumber string  `json:"policy_number" yaml:"policy_number"`
	BillingDate  string  `json:"billing_date" yaml:"billing_date"`
	DueDate      string  `json:"due_date" yaml:"due_date"`
	AmountDue    float64 `json:"amount_due" yaml:"amount_due"`
	Status       string  `json:"status" yaml:"status"`
}

// Payment is one payment against a bill.
type Payment struct {
	PaymentID     string  `json:"payment_id" yaml:"payment_id"`
	BillID        string  `json:"bill_id" yaml:"bill_id"`
	PaymentDate   string  `json:"payment_date" yaml:"payment_date"`
	Amount        float64 `json:"amount" yaml:"amount"`
	PaymentMethod string  `json:"payment_method" yaml:"payment_method"`
	TransactionID string  `json:"transaction_id" yaml:"transaction_id"`
	Status        string  `json:"status" yaml:"status"`
}

// Claim is an insurance claim.
type Claim struct {
	ClaimID       string  `json:"claim_id" yaml:"claim_id"`
	PolicyNumber  string  `json:"policy_number" yaml:"policy_number"`
	ClaimDate     string  `json:"claim_date" yaml:"claim_date"`
	IncidentType  string  `json:"incident_type" yaml:"incident_type"`
	EstimatedLoss float64 `json:"estimated_loss" yaml:"estimated_loss"`
	Status        string  `json:"status" yaml:"status"`
}

// PolicyDetails is a policy joined with its holder.
type PolicyDetails struct {
	Policy
	Customer *Customer `json:"customer,omitempty"`
}

// BillingInfo is the billing view of a policy.
type BillingInfo struct {
	PolicyNumber     string  `json:"policy_number"`
	CustomerID       string  `json:"customer_id"`
	PremiumAmount    float64 `json:"premium_amount"`
	BillingFrequency string  `json:"billing_frequency"`
	Bills            []Bill  `json:"bills"`
}

// GetPolicyDetails returns a policy and its holder.
func (db *DB) GetPolicyDetails(policyNumber string) (*PolicyDetails, error) {
	p, err := db.getPolicy(policyNumber)
	if err != nil {
		return nil, err
	}

	out := &PolicyDetails{Policy: *p}
	c, err := db.GetCustomer(p.CustomerID)
	if err == nil {
		out.Customer = c
	}
	return out, nil
}

// GetCustomer returns a customer by ID.
func (db *DB) GetCustomer(customerID string) (*Customer, error) {
	row := db.QueryRow(`
		SELECT customer_id, first_name, last_name, email, phone, date_of_birth, state
		FROM customers WHERE customer_id = ?
	`, customerID)

	var c Customer
	err := row.Scan(&c.CustomerID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.DateOfBirth, &c.State)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// GetAutoPolicyDetails returns the vehicle and coverage details of an auto policy.
func (db *DB) GetAutoPolicyDetails(policyNumber string) (*AutoPolicyDetails, error) {
	row := db.QueryRow(`
		SELECT policy_number, vehicle_vin, vehicle_make, vehicle_model, vehicle_year,
			liability_limit, collision_deductible, comprehensive_deductible,
			uninsured_motorist, rental_car_coverage
		FROM auto_policy_details WHERE policy_number = ?
	`, policyNumber)

	var a AutoPolicyDetails
	err := row.Scan(&a.PolicyNumber, &a.VehicleVIN, &a.VehicleMake, &a.VehicleModel, &a.VehicleYear,
		&a.LiabilityLimit, &a.CollisionDeductible, &a.ComprehensiveDeductible,
		&a.UninsuredMotorist, &a.RentalCarCoverage)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("auto policy %s: %w", policyNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get auto policy details: %w", err)
	}
	return &a, nil
}

// GetBillingInfo returns premium and statements for a policy, newest first.
// When policyNumber is empty, the customer's first policy is used.
func (db *DB) GetBillingInfo(policyNumber, customerID string) (*BillingInfo, error) {
	if policyNumber == "" {
		if customerID == "" {
			return nil, fmt.Errorf("billing info: policy number or customer ID is required")
		}
		err := db.QueryRow(`
			SELECT policy_number FROM policies WHERE customer_id = ? ORDER BY start_date, policy_number LIMIT 1
		`, customerID).Scan(&policyNumber)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("policies for customer %s: %w", customerID, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("find policy for customer: %w", err)
		}
	}

	p, err := db.getPolicy(policyNumber)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT bill_id, policy_number, billing_date, due_date, amount_due, status
		FROM billing WHERE policy_number = ? ORDER BY billing_date DESC, bill_id DESC
	`, policyNumber)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	info := &BillingInfo{
		PolicyNumber:     p.PolicyNumber,
		CustomerID:       p.CustomerID,
		PremiumAmount:    p.PremiumAmount,
		BillingFrequency: p.BillingFrequency,
		Bills:            []Bill{},
	}
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.BillID, &b.PolicyNumber, &b.BillingDate, &b.DueDate, &b.AmountDue, &b.Status); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		info.Bills = append(info.Bills, b)
	}
	return info, rows.Err()
}

// GetPaymentHistory returns the payments made on a policy, newest first.
func (db *DB) GetPaymentHistory(policyNumber string) ([]Payment, error) {
	if _, err := db.getPolicy(policyNumber); err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT p.payment_id, p.bill_id, p.payment_date, p.amount, p.payment_method, p.transaction_id, p.status
		FROM payments p
		JOIN billing b ON b.bill_id = p.bill_id
		WHERE b.policy_number = ?
		ORDER BY p.payment_date DESC, p.payment_id DESC
	`, policyNumber)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	out := []Payment{}
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.PaymentID, &p.BillID, &p.PaymentDate, &p.Amount, &p.PaymentMethod, &p.TransactionID, &p.Status); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetClaimStatus returns a claim. When policyNumber is set, the claim must
// belong to that policy.
func (db *DB) GetClaimStatus(claimID, policyNumber string) (*Claim, error) {
	row := db.QueryRow(`
		SELECT claim_id, policy_number, claim_date, incident_type, estimated_loss, status
		FROM claims WHERE claim_id = ?
	`, claimID)

	var c Claim
	err := row.Scan(&c.ClaimID, &c.PolicyNumber, &c.ClaimDate, &c.IncidentType, &c.EstimatedLoss, &c.Status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("claim %s: %w", claimID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if policyNumber != "" && c.PolicyNumber != policyNumber {
		return nil, fmt.Errorf("claim %s on policy %s: %w", claimID, policyNumber, ErrNotFound)
	}
	return &c, nil
}

func (db *DB) getPolicy(policyNumber string) (*Policy, error) {
	row := db.QueryRow(`
		SELECT policy_number, customer_id, policy_type, start_date, premium_amount, billing_frequency, status
		FROM policies WHERE policy_number = ?
	`, policyNumber)

	var p Policy
	err := row.Scan(&p.PolicyNumber, &p.CustomerID, &p.PolicyType, &p.StartDate, &p.PremiumAmount, &p.BillingFrequency, &p.Status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("policy %s: %w", policyNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}
	return &p, nil
}
