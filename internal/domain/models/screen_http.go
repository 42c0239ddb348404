package models

// ScreenRequest is bound from the query string (GET) or form body (POST).
// Prices stay strings: non-numeric input falls back to the default instead of
// failing the request. Trend is matched case-insensitively.
type ScreenRequest struct {
	MinPrice string `query:"min_price" form:"min_price" json:"min_price"`
	MaxPrice string `query:"max_price" form:"max_price" json:"max_price"`
	Trend    string `query:"trend" form:"trend" json:"trend" validate:"omitempty,oneofci=LONG SHORT"`
	Sort     string `query:"sort" form:"sort" json:"sort" default:"symbol" validate:"oneof=symbol price trend"`
}

// ScreenView is the filtered, presentation-ready projection of a run.
type ScreenView struct {
	RunID       string           `json:"run_id"`
	GeneratedAt string           `json:"generated_at"`
	Interval    string           `json:"interval"`
	Requested   int              `json:"requested"`
	Failed      int              `json:"failed"`
	Total       int              `json:"total"`
	Rows        []SymbolSnapshot `json:"rows"`
	Failures    []Failure        `json:"failures,omitempty"`
	MinPrice    string           `json:"min_price,omitempty"`
	MaxPrice    string           `json:"max_price,omitempty"`
}
