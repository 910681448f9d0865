package dto

type UserCounts struct {
	Total    int64 `json:"total"`
	Students int64 `json:"students"`
	Mentors  int64 `json:"mentors"`
	Admins   int64 `json:"admins"`
}

type StatsResponse struct {
	Users               UserCounts `json:"users"`
	ActiveSubscriptions int64      `json:"active_subscriptions"`
	Courses             int64      `json:"courses"`
	Enrollments         int64      `json:"enrollments"`
}
