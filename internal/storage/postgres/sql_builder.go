package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
)

// Построитель SQL-фрагментов. В текст запроса интерполируются только
// идентификаторы из фиксированных наборов этого пакета; всё, что пришло от
// вызывающего, уходит исключительно в позиционные параметры $N.

// columnList склеивает фиксированный набор колонок через запятую.
func columnList(columns []string) string {
	return strings.Join(columns, ", ")
}

// placeholders выдаёт "$start, $start+1, …" для привязки count значений.
func placeholders(start, count int) string {
	if count <= 0 {
		return ""
	}
	parts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		parts = append(parts, "$"+strconv.Itoa(start+i))
	}
	return strings.Join(parts, ", ")
}

// whereEqual строит фрагмент "WHERE column = $n". Пустая колонка означает
// отсутствие фильтра и даёт пустой фрагмент.
func whereEqual(column string, argIndex int) string {
	if column == "" {
		return ""
	}
	return fmt.Sprintf("WHERE %s = $%d", column, argIndex)
}

// sortColumns отображает внешние ключи сортировки на SQL-выражения.
// Ключи валидируются в domain до обращения сюда; запись в карте обязана
// существовать для каждого разрешённого ключа.
var sortColumns = map[string]string{
	"id":           "o.id",
	"customerid":   "o.customer_id",
	"employeeid":   "o.employee_id",
	"orderdate":    "o.order_date",
	"requireddate": "o.required_date",
	"shippeddate":  "o.shipped_date",
	"freight":      "o.freight",
	"shipname":     "o.ship_name",
	"shipcity":     "o.ship_city",
	"shipcountry":  "o.ship_country",
	"companyname":  "c.company_name",
	"lastname":     "e.last_name",
}

// orderBy строит фрагмент "ORDER BY col dir" из провалидированных опций.
func orderBy(sort string, order domain.SortOrder) (string, error) {
	col, ok := sortColumns[sort]
	if !ok {
		return "", domain.ErrInvalidSortColumn
	}
	dir := "ASC"
	if order == domain.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", col, dir), nil
}

// setClause накапливает присваивания для UPDATE. Имена колонок — константы
// этого пакета, значения всегда уходят в параметры.
type setClause struct {
	assignments []string
	args        []any
}

// Set добавляет присваивание "column = $n"; номер плейсхолдера выдаётся
// по порядку добавления начиная со start, переданного в SQL.
func (c *setClause) Set(column string, value any) {
	c.assignments = append(c.assignments, column)
	c.args = append(c.args, value)
}

// Empty сообщает, что ни одного присваивания не накоплено.
func (c *setClause) Empty() bool {
	return len(c.assignments) == 0
}

// SQL собирает фрагмент "SET a = $start, b = $start+1, …".
func (c *setClause) SQL(start int) string {
	parts := make([]string, 0, len(c.assignments))
	for i, col := range c.assignments {
		parts = append(parts, fmt.Sprintf("%s = $%d", col, start+i))
	}
	return "SET " + strings.Join(parts, ", ")
}

// Args возвращает значения в порядке присваиваний.
func (c *setClause) Args() []any {
	return c.args
}
