package domain

// DashboardStats aggregates platform-wide verification numbers for the
// dashboard landing section. Rates are percentages rounded to one decimal.
type DashboardStats struct {
	TotalUsers               int     `json:"total_users"`
	TotalBusinesses          int     `json:"total_businesses"`
	ApprovedUsers            int     `json:"approved_users"`
	ApprovedBusinesses       int     `json:"approved_businesses"`
	ApprovalRate             float64 `json:"approval_rate"`
	UserVerificationRate     float64 `json:"user_verification_rate"`
	BusinessVerificationRate float64 `json:"business_verification_rate"`

	RecentActivities []Activity `json:"recent_activities"`
}

// Activity is one row of the dashboard's recent-activity feed.
type Activity struct {
	ID     string `json:"id"`
	User   string `json:"user"`
	Action string `json:"action"`
	Time   string `json:"time"`
	Type   string `json:"type"` // "success" or "info"
}

// OpsMetrics is a snapshot of review activity for the ops metrics endpoint.
type OpsMetrics struct {
	UserApprovals      int64   `json:"user_approvals"`
	UserRejections     int64   `json:"user_rejections"`
	BusinessApprovals  int64   `json:"business_approvals"`
	BusinessRejections int64   `json:"business_rejections"`
	StatsRefetches     int64   `json:"stats_refetches"`
	CacheHitRate       float64 `json:"cache_hit_rate"`
	Period             string  `json:"period"`
}

// TableChange is a row-level change notification from the data backend.
// The row payloads are optional; listeners fall back to a full refetch when
// the one matching Table is absent.
type TableChange struct {
	Table    string    `json:"table"`
	Event    string    `json:"event"` // INSERT, UPDATE, DELETE
	Old      *Profile  `json:"old,omitempty"`
	Profile  *Profile  `json:"profile,omitempty"`
	Business *Business `json:"business,omitempty"`
}
