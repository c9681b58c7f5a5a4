package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/overiq429/cafe-orders/internal/domain"
)

type staffRepository struct {
	db *sql.DB
}

// NewStaffRepository создаёт PostgreSQL-реализацию StaffRepository.
func NewStaffRepository(store *Store) domain.StaffRepository {
	return &staffRepository{db: store.DB()}
}

func (r *staffRepository) GetEmployee(id string) (domain.Employee, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var employee domain.Employee
	err := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, position
		FROM employees
		WHERE id = $1
	`, id).Scan(&employee.ID, &employee.FirstName, &employee.LastName, &employee.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Employee{}, domain.ErrEmployeeNotFound
		}
		return domain.Employee{}, fmt.Errorf("select employee: %w", err)
	}

	return employee, nil
}

func (r *staffRepository) GetTable(id string) (domain.Table, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var table domain.Table
	err := r.db.QueryRowContext(ctx, `
		SELECT id, table_number, seats
		FROM cafe_tables
		WHERE id = $1
	`, id).Scan(&table.ID, &table.Number, &table.Seats)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Table{}, domain.ErrTableNotFound
		}
		return domain.Table{}, fmt.Errorf("select table: %w", err)
	}

	return table, nil
}

var _ domain.StaffRepository = (*staffRepository)(nil)
