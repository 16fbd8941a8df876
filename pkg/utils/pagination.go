package utils

// Page bounds shared by list endpoints.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// NormalizePage clamps page to at least 1 and perPage into [1, MaxPerPage],
// falling back to DefaultPerPage when perPage is unset.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case perPage < 1:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}
	return page, perPage
}

func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func CalculateOffset(page, perPage int) int {
	page, perPage = NormalizePage(page, perPage)
	return (page - 1) * perPage
}
