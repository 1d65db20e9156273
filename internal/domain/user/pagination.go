package user

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total      int64 // Total number of records
	Page       int64 // Current page number (1-based)
	Limit      int64 // Number of records per page
	TotalPages int64 // Total number of pages
}

// NewPagination creates a new Pagination instance with calculated total pages.
func NewPagination(total, page, limit int64) *Pagination {
	totalPages := int64(0)
	if limit > 0 {
		totalPages = total / limit
		if total%limit != 0 {
			totalPages++
		}
	}

	return &Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// Paginate returns the page of users selected by page and limit.
// A limit of zero or less returns every user.
func Paginate(users []User, page, limit int64) ([]User, *Pagination) {
	total := int64(len(users))
	if limit <= 0 {
		return users, NewPagination(total, 1, total)
	}
	if page <= 0 {
		page = 1
	}

	p := NewPagination(total, page, limit)
	// Compare pages before multiplying so huge page numbers cannot overflow.
	if page > p.TotalPages {
		return []User{}, p
	}

	start := (page - 1) * limit
	end := min(start+limit, total)
	return users[start:end], p
}
