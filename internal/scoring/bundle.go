package scoring

// Bundle is the scraped snapshot of a journal page handed over by the
// crawler. Absent fields simply yield weaker signals downstream; nothing
// here is required beyond the domain.
type Bundle struct {
	URL                string `json:"url"`
	Domain             string `json:"domain"`
	Title              string `json:"title"`
	BodyText           string `json:"body_text"`
	WordCount          int    `json:"word_count"`
	HasSSL             bool   `json:"has_ssl"`
	ResponseTimeMs     int    `json:"response_time_ms"`
	StatusCode         int    `json:"status_code"`
	HasGuidelines      bool   `json:"has_guidelines"`
	HasFeeInfo         bool   `json:"has_fee_info"`
	EditorialBoardSize int    `json:"editorial_board_size"`
	ContactMethodCount int    `json:"contact_method_count"`
}
