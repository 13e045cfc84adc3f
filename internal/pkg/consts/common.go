package consts

const (
	RoleAdmin = "ADMIN"
)

const (
	DefaultPageSize    = 10
	MaxPageSize        = 50
	DefaultLeaderboard = 20
	MaxActivityDays    = 90
)
