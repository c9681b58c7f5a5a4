// Package report форматирует чеки и списки для печати и логов.
// Все функции чистые: никакого IO, только готовые данные.
package report

import (
	"fmt"
	"strings"

	"github.com/overiq429/cafe-orders/internal/domain"
)

// FormatMoney переводит минимальные единицы в строку вида "123.45".
func FormatMoney(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// DishLine форматирует строку списка меню.
func DishLine(dish domain.Dish) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %s", dish.Name, FormatMoney(dish.PriceMinor))
	if dish.CategoryName != "" {
		fmt.Fprintf(&b, " [%s]", dish.CategoryName)
	}
	if !dish.Active {
		b.WriteString(" (снято с меню)")
	}
	return b.String()
}

// OrderLine форматирует краткую строку списка заказов.
func OrderLine(order domain.Order) string {
	return fmt.Sprintf("заказ %s | статус: %s | позиций: %d | сумма: %s",
		order.ID, order.Status, len(order.Items), FormatMoney(order.TotalMinor))
}

// Receipt строит текстовый чек заказа. Названия берутся из itemNames;
// для неизвестного блюда печатается его идентификатор.
func Receipt(order domain.Order, itemNames map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Чек заказа %s\n", order.ID)
	fmt.Fprintf(&b, "Статус: %s\n", order.Status)
	b.WriteString(strings.Repeat("-", 32) + "\n")

	for _, item := range order.Items {
		name, ok := itemNames[item.ItemID]
		if !ok || name == "" {
			name = fmt.Sprintf("позиция %s", item.ItemID)
		}
		lineTotal := int64(item.Qty) * item.PriceMinor
		fmt.Fprintf(&b, "%s x%d @ %s = %s\n",
			name, item.Qty, FormatMoney(item.PriceMinor), FormatMoney(lineTotal))
	}

	b.WriteString(strings.Repeat("-", 32) + "\n")
	fmt.Fprintf(&b, "Итого: %s\n", FormatMoney(order.TotalMinor))

	return b.String()
}
