package domain

// SortOrder — направление сортировки выборки.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Значения по умолчанию для выборки заказов. Это неизменяемые константы
// пакета, слияние с опциями вызывающего происходит на каждый вызов.
const (
	DefaultPage    = 1
	DefaultPerPage = 20
	DefaultSort    = "id"
	DefaultOrder   = SortAsc
)

// SortShippedDate — колонка сортировки клиентской выборки по умолчанию.
const SortShippedDate = "shippeddate"

// sortableColumns — закрытый список колонок, по которым разрешена сортировка.
// Всё, что не входит в список, отклоняется до построения запроса.
var sortableColumns = map[string]struct{}{
	"id":           {},
	"customerid":   {},
	"employeeid":   {},
	"orderdate":    {},
	"requireddate": {},
	"shippeddate":  {},
	"freight":      {},
	"shipname":     {},
	"shipcity":     {},
	"shipcountry":  {},
	"companyname":  {},
	"lastname":     {},
}

// SortableColumn сообщает, разрешена ли сортировка по указанному ключу.
func SortableColumn(name string) bool {
	_, ok := sortableColumns[name]
	return ok
}

// OrderListOptions — параметры постраничной выборки заказов.
// Нулевые значения означают "взять значение по умолчанию".
type OrderListOptions struct {
	// Page нумеруется с единицы.
	Page    int
	PerPage int
	Sort    string
	Order   SortOrder
	// CustomerID сужает выборку до заказов одного клиента; пустая строка —
	// без фильтра.
	CustomerID string
}

// Normalize сливает опции со значениями по умолчанию и валидирует
// сортировку против закрытого списка. Возвращает нормализованную копию;
// исходные опции не изменяются.
func (o OrderListOptions) Normalize() (OrderListOptions, error) {
	if o.Page == 0 {
		o.Page = DefaultPage
	}
	if o.PerPage == 0 {
		o.PerPage = DefaultPerPage
	}
	if o.Sort == "" {
		o.Sort = DefaultSort
	}
	if o.Order == "" {
		o.Order = DefaultOrder
	}

	if o.Page < 1 {
		return OrderListOptions{}, ErrInvalidPage
	}
	if o.PerPage < 1 {
		return OrderListOptions{}, ErrInvalidPerPage
	}
	if !SortableColumn(o.Sort) {
		return OrderListOptions{}, ErrInvalidSortColumn
	}
	if o.Order != SortAsc && o.Order != SortDesc {
		return OrderListOptions{}, ErrInvalidSortOrder
	}

	return o, nil
}

// Offset возвращает смещение выборки: первая страница начинается с нуля.
func (o OrderListOptions) Offset() int {
	return (o.Page - 1) * o.PerPage
}
