package memory

import (
	"sync"

	"github.com/overiq429/cafe-orders/internal/domain"
)

// staffRepositoryInMemory — справочник сотрудников и столиков в памяти.
type staffRepositoryInMemory struct {
	mu        sync.RWMutex
	employees map[string]domain.Employee
	tables    map[string]domain.Table
}

// NewStaffRepository возвращает in-memory справочник персонала и столиков.
func NewStaffRepository() *staffRepositoryInMemory {
	return &staffRepositoryInMemory{
		employees: make(map[string]domain.Employee),
		tables:    make(map[string]domain.Table),
	}
}

// PutEmployee сохраняет сотрудника (сидирование и тесты).
func (r *staffRepositoryInMemory) PutEmployee(employee domain.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[employee.ID] = employee
}

// PutTable сохраняет столик (сидирование и тесты).
func (r *staffRepositoryInMemory) PutTable(table domain.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[table.ID] = table
}

// GetEmployee возвращает сотрудника или ErrEmployeeNotFound.
func (r *staffRepositoryInMemory) GetEmployee(id string) (domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	employee, ok := r.employees[id]
	if !ok {
		return domain.Employee{}, domain.ErrEmployeeNotFound
	}
	return employee, nil
}

// GetTable возвращает столик или ErrTableNotFound.
func (r *staffRepositoryInMemory) GetTable(id string) (domain.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.tables[id]
	if !ok {
		return domain.Table{}, domain.ErrTableNotFound
	}
	return table, nil
}

var _ domain.StaffRepository = (*staffRepositoryInMemory)(nil)
