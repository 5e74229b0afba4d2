package ticktick

// Priority levels supported by TickTick. Any other value is rejected
// by validation.
const (
	PriorityNone   = 0
	PriorityLow    = 1
	PriorityMedium = 3
	PriorityHigh   = 5
)

// Task status values as used by the TickTick API.
const (
	StatusActive    = 0
	StatusCompleted = 2
)

// Project view modes.
const (
	ViewModeList     = "list"
	ViewModeKanban   = "kanban"
	ViewModeTimeline = "timeline"
)

// DefaultProjectColor is applied when a project is created without an
// explicit color.
const DefaultProjectColor = "#F18181"

// PriorityName maps a priority level to its display name.
func PriorityName(priority int) string {
	switch priority {
	case PriorityNone:
		return "None"
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// ChecklistItem is a subtask entry inside a task.
type ChecklistItem struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status,omitempty"`
}

// Task is a task record as returned by the TickTick API. Date fields
// are kept as the raw ISO-8601 strings the API uses; an empty string
// means the date is not set.
type Task struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"projectId"`
	ParentID  string          `json:"parentId,omitempty"`
	Title     string          `json:"title"`
	Content   string          `json:"content,omitempty"`
	StartDate string          `json:"startDate,omitempty"`
	DueDate   string          `json:"dueDate,omitempty"`
	IsAllDay  bool            `json:"isAllDay,omitempty"`
	Priority  int             `json:"priority"`
	Status    int             `json:"status"`
	Items     []ChecklistItem `json:"items,omitempty"`
}

// Completed reports whether the task is marked as done.
func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// Project is a project record. Closed projects are excluded from all
// scan based operations.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	ViewMode string `json:"viewMode,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Closed   bool   `json:"closed,omitempty"`
}

// Column is a kanban column inside a project.
type Column struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
}

// ProjectData is a project together with its full task set.
type ProjectData struct {
	Project Project  `json:"project"`
	Tasks   []Task   `json:"tasks"`
	Columns []Column `json:"columns,omitempty"`
}

// TaskInput describes a task to create. Title and ProjectID are
// required; everything else is optional.
type TaskInput struct {
	Title     string `json:"title"`
	ProjectID string `json:"projectId"`
	ParentID  string `json:"parentId,omitempty"`
	Content   string `json:"content,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	DueDate   string `json:"dueDate,omitempty"`
	Priority  int    `json:"priority"`
	IsAllDay  bool   `json:"isAllDay"`
}

// TaskUpdate describes a partial update of an existing task. Nil
// pointer fields are left untouched.
type TaskUpdate struct {
	Title     *string
	Content   *string
	StartDate *string
	DueDate   *string
	Priority  *int
}

// ProjectInput describes a project to create or update.
type ProjectInput struct {
	Name     string `json:"name,omitempty"`
	Color    string `json:"color,omitempty"`
	ViewMode string `json:"viewMode,omitempty"`
	Kind     string `json:"kind,omitempty"`
}
