package model

type RateLimitEntry struct {
	IPAddress string `db:"ip_address"`
	Day       string `db:"day"`
	Count     int    `db:"submission_count"`
}

type RateLimitStatus struct {
	DailyLimit int `json:"daily_limit"`
	Used       int `json:"used"`
	Remaining  int `json:"remaining"`
}

func NewRateLimitStatus(limit, used int) RateLimitStatus {
	return RateLimitStatus{
		DailyLimit: limit,
		Used:       used,
		Remaining:  max(0, limit-used),
	}
}
