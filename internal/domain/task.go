package domain

import (
	"fmt"
	"strings"
	"time"
)

// User identifies the owner of a task.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// Task is the client-side representation of a task. Tasks created while the
// remote service is unreachable carry a locally generated placeholder ID and
// IsLocal=true until a sync confirms them server-side.
type Task struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	DueDate   *DueDate `json:"due_date,omitempty"`
	Completed bool     `json:"completed"`
	Owner     User     `json:"owner"`

	// IsLocal is true iff the task has never been confirmed by the remote
	// service; such a task always has a pending create action in the queue.
	IsLocal bool `json:"is_local"`
	// NeedsSync is true iff the task has a pending, not-yet-reconciled mutation.
	NeedsSync bool `json:"needs_sync"`
}

// TaskDraft is the payload for creating a task.
type TaskDraft struct {
	Title   string   `json:"title"`
	DueDate *DueDate `json:"due_date,omitempty"`
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title     *string  `json:"title,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
	DueDate   *DueDate `json:"due_date,omitempty"`
}

// Apply merges the patch into a copy of t and returns it.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	return t
}

const dueDateLayout = "2006-01-02"

// DueDate is a calendar date with day granularity. The remote API carries it
// as a "2006-01-02" string in the due_date field.
type DueDate struct {
	time.Time
}

// NewDueDate builds a DueDate from any instant, truncated to its calendar day.
func NewDueDate(t time.Time) DueDate {
	y, m, d := t.Date()
	return DueDate{Time: time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// ParseDueDate parses a "2006-01-02" date string.
func ParseDueDate(s string) (DueDate, error) {
	t, err := time.Parse(dueDateLayout, s)
	if err != nil {
		return DueDate{}, fmt.Errorf("failed to parse due date %q: %w", s, err)
	}
	return DueDate{Time: t}, nil
}

func (d DueDate) String() string {
	return d.Format(dueDateLayout)
}

// SameDay reports whether d and t fall on the same calendar day, both
// normalized to midnight.
func (d DueDate) SameDay(t time.Time) bool {
	dy, dm, dd := d.Date()
	ty, tm, td := t.Date()
	return dy == ty && dm == tm && dd == td
}

// MarshalJSON implements json.Marshaler.
func (d DueDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(dueDateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DueDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDueDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
