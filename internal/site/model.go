package site

import "time"

// Record mirrors one row in the control-plane `site` table.  Host holds the
// tenant key.  The operational state is captured by two nullable
// timestamps:
//
//   - SuspendedAt – site is temporarily disabled (e.g., billing).
//   - DeletedAt   – site is permanently removed.
//
// Either timestamp being non-NULL hides the site from the tenant list.
type Record struct {
	ID          uint64     `db:"id"`
	Host        string     `db:"host"`
	Theme       string     `db:"theme"`
	Title       string     `db:"title"`
	SuspendedAt *time.Time `db:"suspended_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}
