package schemas

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// TranslationDTO is a struct that represents a translation response
// Text is the translated text, or an error text when the translation failed
type TranslationDTO struct {
	Text string `json:"text"`
}

// HealthDTO is a struct that represents a health check response
type HealthDTO struct {
	Status string `json:"status"`
}

// Pagination is a struct that represents the page position of a listing
// Page is the current page, starting at 1
// PerPage is the page size
// Total is the number of records across all pages
type Pagination struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
	PrevNum int  `json:"prev_num"`
	NextNum int  `json:"next_num"`
}

// Offset returns the number of records before the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ProfileDTO is a struct that represents the view model of a user page
type ProfileDTO struct {
	User        *User
	Followers   int
	Following   int
	IsFollowing bool
	IsSelf      bool
}
