package farm

import "time"

// Farm is a site owned by one user. Deleting a farm only clears IsActive.
type Farm struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"owner_id"`
	Name           string         `json:"name"`
	Location       *string        `json:"location"`
	Latitude       *float64       `json:"latitude"`
	Longitude      *float64       `json:"longitude"`
	SizeHectares   *float64       `json:"size_hectares"`
	SoilType       *string        `json:"soil_type"`
	IrrigationType *string        `json:"irrigation_type"`
	Crops          []string       `json:"crops"`
	Metadata       map[string]any `json:"metadata"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Zone is a field or block inside a farm.
type Zone struct {
	ID           string         `json:"id"`
	FarmID       string         `json:"farm_id"`
	Name         string         `json:"name"`
	AreaHectares *float64       `json:"area_hectares"`
	CropVariety  *string        `json:"crop_variety"`
	GrowthStage  *string        `json:"growth_stage"`
	Metadata     map[string]any `json:"metadata"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// SensorReading is one field measurement for a zone.
type SensorReading struct {
	ID               string    `json:"id"`
	ZoneID           string    `json:"zone_id"`
	SoilMoisture     *float64  `json:"soil_moisture"`
	Temperature      *float64  `json:"temperature"`
	Humidity         *float64  `json:"humidity"`
	SoilPH           *float64  `json:"soil_ph"`
	ReadingTimestamp time.Time `json:"reading_timestamp"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateParams describes a new farm.
type CreateParams struct {
	Name           string
	Location       *string
	Latitude       *float64
	Longitude      *float64
	SizeHectares   *float64
	SoilType       *string
	IrrigationType *string
	Crops          []string
	Metadata       map[string]any
}

// UpdateParams carries a partial farm update.
type UpdateParams struct {
	Name           *string
	Location       *string
	Latitude       *float64
	Longitude      *float64
	SizeHectares   *float64
	SoilType       *string
	IrrigationType *string
	Crops          []string
	Metadata       map[string]any
	IsActive       *bool
}

// ZoneParams describes a new zone.
type ZoneParams struct {
	Name         string
	AreaHectares *float64
	CropVariety  *string
	GrowthStage  *string
	Metadata     map[string]any
}

// ReadingParams describes an ingested sensor reading.
type ReadingParams struct {
	ZoneID           string
	SoilMoisture     *float64
	Temperature      *float64
	Humidity         *float64
	SoilPH           *float64
	ReadingTimestamp *time.Time
}

// TaskStatus is where a farm task is in its lifecycle.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// TaskPriority orders work on the farm.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

func (p TaskPriority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Task is a unit of field work on a farm, optionally tied to a zone and a
// team member. CompletedAt is set when the task enters completed and
// cleared when it leaves.
type Task struct {
	ID          string         `json:"id"`
	FarmID      string         `json:"farm_id"`
	ZoneID      *string        `json:"zone_id"`
	AssignedTo  *string        `json:"assigned_to"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Priority    TaskPriority   `json:"priority"`
	Status      TaskStatus     `json:"status"`
	DueDate     *time.Time     `json:"due_date"`
	CompletedAt *time.Time     `json:"completed_at"`
	Metadata    map[string]any `json:"metadata"`
	CreatedBy   string         `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TaskFilter selects tasks by farm or by assignee. Empty fields match all.
type TaskFilter struct {
	FarmID     string
	AssignedTo string
	Status     TaskStatus
	Priority   TaskPriority
}

// TaskParams describes a new task.
type TaskParams struct {
	Title       string
	Description *string
	Priority    TaskPriority
	Status      TaskStatus
	ZoneID      *string
	AssignedTo  *string
	DueDate     *time.Time
	Metadata    map[string]any
}

// TaskUpdate carries a partial task update. An empty string in ZoneID or
// AssignedTo clears the link.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *TaskPriority
	Status      *TaskStatus
	ZoneID      *string
	AssignedTo  *string
	DueDate     *time.Time
	CompletedAt *time.Time
	Metadata    map[string]any
}

// MemberStatus is a team member's availability.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberBreak    MemberStatus = "break"
	MemberOffDuty  MemberStatus = "off-duty"
	MemberVacation MemberStatus = "vacation"
)

func (s MemberStatus) IsValid() bool {
	switch s {
	case MemberActive, MemberBreak, MemberOffDuty, MemberVacation:
		return true
	}
	return false
}

// TeamMember is a worker on a farm. Removing a member only clears IsActive.
type TeamMember struct {
	ID            string         `json:"id"`
	FarmID        string         `json:"farm_id"`
	UserID        *string        `json:"user_id"`
	Name          string         `json:"name"`
	Role          string         `json:"role"`
	Status        MemberStatus   `json:"status"`
	CurrentZoneID *string        `json:"current_zone_id"`
	Phone         *string        `json:"phone"`
	Email         *string        `json:"email"`
	HiredDate     *time.Time     `json:"hired_date"`
	Metadata      map[string]any `json:"metadata"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// MemberParams describes a new team member. HiredDate is YYYY-MM-DD.
type MemberParams struct {
	Name          string
	Role          string
	Status        MemberStatus
	UserID        *string
	CurrentZoneID *string
	Phone         *string
	Email         *string
	HiredDate     *string
	Metadata      map[string]any
}

// MemberUpdate carries a partial team member update.
type MemberUpdate struct {
	Name          *string
	Role          *string
	Status        *MemberStatus
	CurrentZoneID *string
	Phone         *string
	Email         *string
	HiredDate     *string
	Metadata      map[string]any
	IsActive      *bool
}

// AlertType is an alert's severity.
type AlertType string

const (
	AlertInfo     AlertType = "info"
	AlertWarning  AlertType = "warning"
	AlertCritical AlertType = "critical"
)

func (t AlertType) IsValid() bool {
	return t == AlertInfo || t == AlertWarning || t == AlertCritical
}

const (
	MinAlertPriority = 1
	MaxAlertPriority = 10
)

// Alert flags a condition in a zone. Priority 1 is the most urgent.
// ResolvedAt and ResolvedBy are set while IsResolved holds.
type Alert struct {
	ID         string         `json:"id"`
	ZoneID     string         `json:"zone_id"`
	AlertType  AlertType      `json:"alert_type"`
	Message    string         `json:"message"`
	Priority   int            `json:"priority"`
	IsResolved bool           `json:"is_resolved"`
	ResolvedAt *time.Time     `json:"resolved_at"`
	ResolvedBy *string        `json:"resolved_by"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// AlertFilter selects alerts of the given zones. A nil Resolved matches both.
type AlertFilter struct {
	ZoneIDs  []string
	Resolved *bool
}

// AlertParams describes a new alert. A zero Priority becomes 1.
type AlertParams struct {
	AlertType AlertType
	Message   string
	Priority  int
	Metadata  map[string]any
}

// AlertUpdate carries a partial alert update.
type AlertUpdate struct {
	AlertType  *AlertType
	Message    *string
	Priority   *int
	IsResolved *bool
	Metadata   map[string]any
}
