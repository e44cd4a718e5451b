package dto

// PlatformStatsResponse aggregates headline platform numbers.
type PlatformStatsResponse struct {
	TotalUsers        int64   `json:"total_users"`
	VerifiedUsers     int64   `json:"verified_users"`
	TotalSwapRequests int64   `json:"total_swap_requests"`
	AcceptedSwaps     int64   `json:"accepted_swaps"`
	AcceptanceRate    int     `json:"acceptance_rate"`
	TotalSessions     int64   `json:"total_sessions"`
	TotalHours        float64 `json:"total_hours"`
}

// SkillCount is one entry of the top-skills leaderboard.
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// TopSkillsResponse lists the most taught and most wanted skills.
type TopSkillsResponse struct {
	TopTeach []SkillCount `json:"top_teach"`
	TopLearn []SkillCount `json:"top_learn"`
}

// RecentActivityResponse summarizes the latest signups and sessions.
type RecentActivityResponse struct {
	RecentUsers    []AuthUserResponse `json:"recent_users"`
	RecentSessions []SessionResponse  `json:"recent_sessions"`
}
