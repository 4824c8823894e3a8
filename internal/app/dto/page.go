package dto

const maxPageSize = 100

// NormalizePage clamps 1-based page numbers and page sizes. fallback is used
// when limit is not positive.
func NormalizePage(page, limit, fallback int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = fallback
	}
	if limit < 1 {
		limit = 10
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func PageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func Offset(page, limit int) int {
	return (page - 1) * limit
}
