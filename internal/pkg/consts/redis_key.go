package consts

const (
	ChallengeInfoKey     = "challenge:info:"
	ChallengeLiveKey     = "challenge:live:"
	CollabStatsKey       = "challenge:collab:stats:"
	LeaderboardPointsKey = "leaderboard:points"
)

const (
	EntryRecoveryLock   = "lock:entry:recovery"
	ChallengeExpiryLock = "lock:challenge:expiry"
)
