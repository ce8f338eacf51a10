package domain

// ActivityType identifies an entry in a lead's activity timeline
type ActivityType string

const (
	ActivityLeadCreated        ActivityType = "LEAD_CREATED"
	ActivityLeadUpdated        ActivityType = "LEAD_UPDATED"
	ActivityLeadDeleted        ActivityType = "LEAD_DELETED"
	ActivityNoteCreated        ActivityType = "NOTE_CREATED"
	ActivityNoteUpdated        ActivityType = "NOTE_UPDATED"
	ActivityNoteDeleted        ActivityType = "NOTE_DELETED"
	ActivityNotePinned         ActivityType = "NOTE_PINNED"
	ActivityNoteUnpinned       ActivityType = "NOTE_UNPINNED"
	ActivityNoteTaskDeleted    ActivityType = "NOTE_TASK_DELETED"
	ActivityNoteCommentAdded   ActivityType = "NOTE_COMMENT_ADDED"
	ActivityNoteCommentUpdated ActivityType = "NOTE_COMMENT_UPDATED"
	ActivityNoteCommentDeleted ActivityType = "NOTE_COMMENT_DELETED"
)

// Activity is a timeline entry sent to the activity service
type Activity struct {
	ActivityType ActivityType   `json:"activityType"`
	LeadID       string         `json:"leadId,omitempty"`
	NoteID       string         `json:"noteId,omitempty"`
	CommentID    string         `json:"commentId,omitempty"`
	Description  string         `json:"description"`
	PerformedBy  string         `json:"performedBy"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// TaskStatus is the state of a follow-up task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
	TaskStatusOverdue   TaskStatus = "Overdue"
)

// TaskType categorises a follow-up task
type TaskType string

const (
	TaskTypeCall     TaskType = "Call"
	TaskTypeEmail    TaskType = "Email"
	TaskTypeMeeting  TaskType = "Meeting"
	TaskTypeReminder TaskType = "Reminder"
	TaskTypeOther    TaskType = "Other"
)

// TaskPriority ranks a follow-up task
type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "High"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityLow    TaskPriority = "Low"
)

// Task is a follow-up task owned by the task service
type Task struct {
	ID             string       `json:"id,omitempty"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	DueDate        string       `json:"dueDate"`
	LeadID         string       `json:"leadId"`
	NoteID         string       `json:"noteId,omitempty"`
	Type           TaskType     `json:"type"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	AssignedTo     string       `json:"assignedTo"`
	CreatedBy      string       `json:"createdBy"`
	OrganizationID string       `json:"organizationId"`
}
