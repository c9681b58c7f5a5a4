package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/overiq429/cafe-orders/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type menuRepository struct {
	db *sql.DB
}

// NewMenuRepository создаёт PostgreSQL-реализацию MenuRepository
// поверх подключения к общей базе меню.
func NewMenuRepository(store *Store) domain.MenuRepository {
	return &menuRepository{db: store.DB()}
}

// LookupActiveItem читает снимок цены и названия активного блюда одним запросом,
// без блокировок строк. Отсутствие и неактивность схлопываются в ErrItemUnavailable;
// любой сбой запроса (включая таймаут) — в ErrCatalogUnavailable.
func (r *menuRepository) LookupActiveItem(itemID string) (domain.ItemSnapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	snap := domain.ItemSnapshot{ItemID: itemID}
	err := r.db.QueryRowContext(ctx, `
		SELECT name, price_minor
		FROM dishes
		WHERE id = $1 AND is_active = TRUE
	`, itemID).Scan(&snap.Name, &snap.PriceMinor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ItemSnapshot{}, domain.ErrItemUnavailable
		}
		return domain.ItemSnapshot{}, fmt.Errorf("%w: lookup dish: %v", domain.ErrCatalogUnavailable, err)
	}

	return snap, nil
}

func (r *menuRepository) CreateDish(dish domain.Dish) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dishes (id, name, description, price_minor, category_id, is_active, created_at)
		VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,$7)
	`,
		dish.ID, dish.Name, dish.Description, dish.PriceMinor,
		dish.CategoryID, dish.Active, dish.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dish: %w", err)
	}

	return nil
}

func (r *menuRepository) GetDish(id string) (domain.Dish, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		dish     domain.Dish
		category sql.NullString
		catName  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT d.id, d.name, d.description, d.price_minor, d.category_id, dc.name, d.is_active, d.created_at
		FROM dishes d
		LEFT JOIN dish_categories dc ON d.category_id = dc.id
		WHERE d.id = $1
	`, id).Scan(
		&dish.ID, &dish.Name, &dish.Description, &dish.PriceMinor,
		&category, &catName, &dish.Active, &dish.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Dish{}, domain.ErrDishNotFound
		}
		return domain.Dish{}, fmt.Errorf("select dish: %w", err)
	}
	dish.CategoryID = category.String
	dish.CategoryName = catName.String

	return dish, nil
}

// ListDishes возвращает активные блюда; categoryID="" означает все категории.
func (r *menuRepository) ListDishes(categoryID string) ([]domain.Dish, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT d.id, d.name, d.description, d.price_minor, d.category_id, dc.name, d.is_active, d.created_at
		FROM dishes d
		LEFT JOIN dish_categories dc ON d.category_id = dc.id
		WHERE d.is_active = TRUE
	`

	var (
		rows *sql.Rows
		err  error
	)
	if categoryID != "" {
		rows, err = r.db.QueryContext(ctx, query+" AND d.category_id = $1 ORDER BY d.name", categoryID)
	} else {
		rows, err = r.db.QueryContext(ctx, query+" ORDER BY d.name")
	}
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	defer rows.Close()

	dishes := make([]domain.Dish, 0)
	for rows.Next() {
		var (
			dish     domain.Dish
			category sql.NullString
			catName  sql.NullString
		)
		if err := rows.Scan(
			&dish.ID, &dish.Name, &dish.Description, &dish.PriceMinor,
			&category, &catName, &dish.Active, &dish.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan dish row: %w", err)
		}
		dish.CategoryID = category.String
		dish.CategoryName = catName.String
		dishes = append(dishes, dish)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dish rows: %w", err)
	}

	return dishes, nil
}

// ResolveNames возвращает названия блюд по списку идентификаторов.
// Неактивные блюда тоже разрешаются: старые заказы ссылаются и на них.
func (r *menuRepository) ResolveNames(ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, name FROM dishes WHERE id IN (%s)
	`, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve dish names: %v", domain.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	names := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan dish name: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dish names: %w", err)
	}

	return names, nil
}

func (r *menuRepository) UpdatePrice(id string, priceMinor int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE dishes SET price_minor = $1 WHERE id = $2
	`, priceMinor, id)
	if err != nil {
		return fmt.Errorf("update dish price: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrDishNotFound
	}

	return nil
}

// Deactivate — логическое удаление; строка остаётся ради исторических заказов.
func (r *menuRepository) Deactivate(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE dishes SET is_active = FALSE WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate dish: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrDishNotFound
	}

	return nil
}

var _ domain.MenuRepository = (*menuRepository)(nil)
