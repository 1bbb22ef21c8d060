package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/payroll"
	"github.com/warp/punchclock/punch"
)

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// ErrDuplicateEmployeeCode is returned when another employee has the code.
var ErrDuplicateEmployeeCode = errors.New("employee code already in use")

// Employee represents an employee record.
type Employee struct {
	ID         string
	Code       string
	Name       string
	Email      string
	Department string
	HireDate   time.Time
	Active     bool
	CreatedAt  time.Time
}

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, code, name, email, department, hire_date, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			email = excluded.email,
			department = excluded.department,
			hire_date = excluded.hire_date,
			active = excluded.active
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Code, emp.Name, nullString(emp.Email), nullString(emp.Department),
		emp.HireDate.Format(time.DateOnly),
		emp.Active,
		formatTime(time.Now()),
	)
	if isUniqueConstraintError(err) && contains(err.Error(), "employees.code") {
		return ErrDuplicateEmployeeCode
	}
	return err
}

// GetEmployee retrieves an employee by ID. Returns nil, nil when absent.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, email, department, hire_date, active, created_at
		FROM employees WHERE id = ?`, id)

	emp, err := scanEmployee(row, s.loc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns employees ordered by code. activeOnly hides leavers.
func (s *Store) ListEmployees(ctx context.Context, activeOnly bool) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, code, name, email, department, hire_date, active, created_at
		FROM employees`
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY code"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows, s.loc)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner, loc *time.Location) (Employee, error) {
	var (
		emp        Employee
		email      sql.NullString
		department sql.NullString
		hireDate   string
		createdAt  string
	)
	if err := row.Scan(&emp.ID, &emp.Code, &emp.Name, &email, &department, &hireDate, &emp.Active, &createdAt); err != nil {
		return emp, err
	}
	emp.Email = email.String
	emp.Department = department.String
	emp.HireDate, _ = time.ParseInLocation(time.DateOnly, hireDate, loc)
	emp.CreatedAt, _ = parseTime(createdAt)
	return emp, nil
}

// =============================================================================
// COMPENSATION PROFILES
// =============================================================================

// SaveCompensationProfile inserts or replaces the employee's pay terms.
func (s *Store) SaveCompensationProfile(ctx context.Context, p payroll.CompensationProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO compensation_profiles
		(employee_id, base_salary, standard_monthly_hours, commuting_allowance, resident_tax,
		 health_insurance_rate, pension_rate, employment_insurance_rate, income_tax_rate,
		 overtime_multiplier, night_premium, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			base_salary = excluded.base_salary,
			standard_monthly_hours = excluded.standard_monthly_hours,
			commuting_allowance = excluded.commuting_allowance,
			resident_tax = excluded.resident_tax,
			health_insurance_rate = excluded.health_insurance_rate,
			pension_rate = excluded.pension_rate,
			employment_insurance_rate = excluded.employment_insurance_rate,
			income_tax_rate = excluded.income_tax_rate,
			overtime_multiplier = excluded.overtime_multiplier,
			night_premium = excluded.night_premium,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		p.EmployeeID,
		p.BaseSalary.String(),
		p.StandardMonthlyHours.String(),
		p.CommutingAllowance.String(),
		p.ResidentTax.String(),
		p.HealthInsuranceRate.String(),
		p.PensionRate.String(),
		p.EmploymentInsuranceRate.String(),
		p.IncomeTaxRate.String(),
		p.OvertimeMultiplier.String(),
		p.NightPremium.String(),
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save compensation profile: %w", err)
	}
	return nil
}

// FetchCompensationProfile returns the employee's pay terms, or nil, nil when
// none are configured.
func (s *Store) FetchCompensationProfile(ctx context.Context, employeeID punch.EmployeeID) (*payroll.CompensationProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cols [10]string
	err := s.db.QueryRowContext(ctx, `
		SELECT base_salary, standard_monthly_hours, commuting_allowance, resident_tax,
		       health_insurance_rate, pension_rate, employment_insurance_rate, income_tax_rate,
		       overtime_multiplier, night_premium
		FROM compensation_profiles WHERE employee_id = ?`, employeeID,
	).Scan(&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5], &cols[6], &cols[7], &cols[8], &cols[9])
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var vals [10]decimal.Decimal
	for i, c := range cols {
		if vals[i], err = decimal.NewFromString(c); err != nil {
			return nil, fmt.Errorf("corrupt compensation profile for %s: %w", employeeID, err)
		}
	}

	return &payroll.CompensationProfile{
		EmployeeID:              employeeID,
		BaseSalary:              vals[0],
		StandardMonthlyHours:    vals[1],
		CommutingAllowance:      vals[2],
		ResidentTax:             vals[3],
		HealthInsuranceRate:     vals[4],
		PensionRate:             vals[5],
		EmploymentInsuranceRate: vals[6],
		IncomeTaxRate:           vals[7],
		OvertimeMultiplier:      vals[8],
		NightPremium:            vals[9],
	}, nil
}
