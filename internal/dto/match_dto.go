package dto

// MatchData is the compatibility signal computed between two profiles.
// Percentage is intentionally not clamped; it can exceed 100 when one side
// has few learn skills and many overlapping teach skills.
type MatchData struct {
	Score        int      `json:"score"`
	Percentage   int      `json:"percentage"`
	YouCanHelp   []string `json:"you_can_help"`
	TheyCanHelp  []string `json:"they_can_help"`
	MatchQuality string   `json:"match_quality"`
	BadgeColor   string   `json:"badge_color"`
}

// MatchedUser pairs a candidate with the viewer's match signal.
type MatchedUser struct {
	User  UserResponse `json:"user"`
	Match MatchData    `json:"match"`
}

// BrowseQuery carries the browse listing filters and sort order.
type BrowseQuery struct {
	Search     string `query:"search" validate:"omitempty,max=128"`
	Location   string `query:"location" validate:"omitempty,max=128"`
	Experience string `query:"experience" validate:"omitempty,oneof=Beginner Intermediate Advanced Expert"`
	Sort       string `query:"sort" validate:"omitempty,oneof=match newest name"`
}

// BrowseFilters enumerates the filter values offered to clients.
type BrowseFilters struct {
	Locations        []string `json:"locations"`
	ExperienceLevels []string `json:"experience_levels"`
}

// BrowseResponse is the full browse listing payload.
type BrowseResponse struct {
	Users          []MatchedUser `json:"users"`
	TotalUsers     int           `json:"total_users"`
	Filters        BrowseFilters `json:"filters"`
	AppliedFilters BrowseQuery   `json:"applied_filters"`
}
