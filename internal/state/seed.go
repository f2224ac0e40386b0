package state

import (
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is a set of customer records to load.
type Seed struct {
	Customers         []Customer          `yaml:"customers"`
	Policies          []Policy            `yaml:"policies"`
	AutoPolicyDetails []AutoPolicyDetails `yaml:"auto_policy_details"`
	Billing           []Bill              `yaml:"billing"`
	Payments          []Payment           `yaml:"payments"`
	Claims            []Claim             `yaml:"claims"`
}

// SeedCounts reports how many rows of each table a seed inserted.
type SeedCounts struct {
	Customers, Policies, AutoPolicies, Bills, Payments, Claims int
}

// Total returns the number of inserted rows.
func (c SeedCounts) Total() int {
	return c.Customers + c.Policies + c.AutoPolicies + c.Bills + c.Payments + c.Claims
}

// DefaultSeed returns the built-in demo records.
func DefaultSeed() (*Seed, error) {
	return parseSeed(defaultSeed)
}

// LoadSeed reads seed records from a YAML file.
func LoadSeed(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return parseSeed(data)
}

func parseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &s, nil
}

// ApplySeed inserts the seed records in one transaction. Rows whose primary
// key already exists are left untouched, so seeding is idempotent.
func (db *DB) ApplySeed(s *Seed) (SeedCounts, error) {
	var counts SeedCounts

	err := db.Transaction(func(tx *sql.Tx) error {
		insert := func(n *int, query string, args ...any) error {
			res, err := tx.Exec(query, args...)
			if err != nil {
				return err
			}
			affected, _ := res.RowsAffected()
			*n += int(affected)
			return nil
		}

		for _, c := range s.Customers {
			if err := insert(&counts.Customers, `
				INSERT OR IGNORE INTO customers (customer_id, first_name, last_name, email, phone, date_of_birth, state)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, c.CustomerID, c.FirstName, c.LastName, c.Email, c.Phone, c.DateOfBirth, c.State); err != nil {
				return fmt.Errorf("seed customer %s: %w", c.CustomerID, err)
			}
		}
		for _, p := range s.Policies {
			if err := insert(&counts.Policies, `
				INSERT OR IGNORE INTO policies (policy_number, customer_id, policy_type, start_date, premium_amount, billing_frequency, status)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, p.PolicyNumber, p.CustomerID, p.PolicyType, p.StartDate, p.PremiumAmount, p.BillingFrequency, p.Status); err != nil {
				return fmt.Errorf("seed policy %s: %w", p.PolicyNumber, err)
			}
		}
		for _, a := range s.AutoPolicyDetails {
			if err := insert(&counts.AutoPolicies, `
				INSERT OR IGNORE INTO auto_policy_details (policy_number, vehicle_vin, vehicle_make, vehicle_model, vehicle_year,
					liability_limit, collision_deductible, comprehensive_deductible, uninsured_motorist, rental_car_coverage)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, a.PolicyNumber, a.VehicleVIN, a.VehicleMake, a.VehicleModel, a.VehicleYear,
				a.LiabilityLimit, a.CollisionDeductible, a.ComprehensiveDeductible, a.UninsuredMotorist, a.RentalCarCoverage); err != nil {
				return fmt.Errorf("seed auto policy %s: %w", a.PolicyNumber, err)
			}
		}
		for _, b := range s.Billing {
			if err := insert(&counts.Bills, `
				INSERT OR IGNORE INTO billing (bill_id, policy_number, billing_date, due_date, amount_due, status)
				VALUES (?, ?, ?, ?, ?, ?)
			`, b.BillID, b.PolicyNumber, b.BillingDate, b.DueDate, b.AmountDue, b.Status); err != nil {
				return fmt.Errorf("seed bill %s: %w", b.BillID, err)
			}
		}
		for _, p := range s.Payments {
			if err := insert(&counts.Payments, `
				INSERT OR IGNORE INTO payments (payment_id, bill_id, payment_date, amount, payment_method, transaction_id, status)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, p.PaymentID, p.BillID, p.PaymentDate, p.Amount, p.PaymentMethod, p.TransactionID, p.Status); err != nil {
				return fmt.Errorf("seed payment %s: %w", p.PaymentID, err)
			}
		}
		for _, c := range s.Claims {
			if err := insert(&counts.Claims, `
				INSERT OR IGNORE INTO claims (claim_id, policy_number, claim_date, incident_type, estimated_loss, status)
				VALUES (?, ?, ?, ?, ?, ?)
			`, c.ClaimID, c.PolicyNumber, c.ClaimDate, c.IncidentType, c.EstimatedLoss, c.Status); err != nil {
				return fmt.Errorf("seed claim %s: %w", c.ClaimID, err)
			}
		}
		return nil
	})
	if err != nil {
		return SeedCounts{}, err
	}
	return counts, nil
}
