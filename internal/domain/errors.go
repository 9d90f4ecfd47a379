package domain

import "errors"

var (
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderCreateFailed — хранилище не вернуло идентификатор вставленного заказа.
	ErrOrderCreateFailed = errors.New("order creation failed")
	// ErrOrderUpdateFailed — обновление заказа не затронуло ни одной строки.
	ErrOrderUpdateFailed = errors.New("order update failed")
	// ErrEmptyOrderPatch — попытка обновления без единого изменяемого поля.
	ErrEmptyOrderPatch = errors.New("order patch contains no fields")
	// ErrInvalidReference — ссылка на несуществующего клиента, сотрудника или товар.
	ErrInvalidReference = errors.New("referenced entity does not exist")
	// ErrDuplicateDetail — в заказе уже есть позиция с этим товаром.
	ErrDuplicateDetail = errors.New("order already contains this product")
	// Ошибка отсутствующей ссылки на товар в позиции.
	ErrDetailProductRequired = errors.New("detail product_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrDetailQtyInvalid = errors.New("detail quantity must be greater than zero")
	// Ошибка отрицательной цены позиции.
	ErrDetailPriceInvalid = errors.New("detail unit price must be non-negative")
	// Ошибка скидки вне диапазона [0, 1].
	ErrDetailDiscountInvalid = errors.New("detail discount must be within [0, 1]")
	// ErrInvalidSortColumn — колонка сортировки не входит в допустимый список.
	ErrInvalidSortColumn = errors.New("sort column is not allowed")
	// ErrInvalidSortOrder — направление сортировки не asc и не desc.
	ErrInvalidSortOrder = errors.New("sort order must be asc or desc")
	// ErrInvalidPage — номер страницы меньше единицы.
	ErrInvalidPage = errors.New("page must be positive")
	// ErrInvalidPerPage — размер страницы меньше единицы.
	ErrInvalidPerPage = errors.New("per_page must be positive")
)

// IsNotFound проверяет, является ли ошибка отсутствием заказа.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

// IsValidation проверяет, относится ли ошибка к нарушению входных инвариантов.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyOrderPatch,
		ErrInvalidReference,
		ErrDuplicateDetail,
		ErrDetailProductRequired,
		ErrDetailQtyInvalid,
		ErrDetailPriceInvalid,
		ErrDetailDiscountInvalid,
		ErrInvalidSortColumn,
		ErrInvalidSortOrder,
		ErrInvalidPage,
		ErrInvalidPerPage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
