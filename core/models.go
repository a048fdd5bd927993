package core

import "time"

// Departments an employee can belong to. Signup rejects anything else.
const (
	DepartmentSoftware = "Software Development"
	DepartmentFinance  = "Finance & Legal"
	DepartmentHR       = "HR & Sales"
)

// Project lifecycle. The current -> completed transition is one-way.
const (
	ProjectStatusCurrent   = "current"
	ProjectStatusCompleted = "completed"
)

type Employee struct {
	EmployeeID       uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName         string     `gorm:"size:200;not null" json:"fullName"`
	OfficeEmail      string     `gorm:"size:200;uniqueIndex;not null" json:"officeEmail"`
	Designation      string     `gorm:"size:200;not null" json:"designation"`
	DateOfBirth      time.Time  `gorm:"type:date" json:"dateOfBirth"`
	MonthOfJoining   string     `gorm:"size:50" json:"monthOfJoining"`
	Department       string     `gorm:"size:100;not null;index" json:"department"`
	StaffID          string     `gorm:"size:50;uniqueIndex;not null" json:"staffId"`
	ContactNo        string     `gorm:"size:50" json:"contactNo"`
	PersonalEmail    string     `gorm:"size:200" json:"personalEmail"`
	Address          string     `gorm:"size:500" json:"address"`
	Username         string     `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash     string     `gorm:"size:100;not null" json:"-"`
	IsActive         bool       `gorm:"default:false" json:"isActive"`
	LastLogin        *time.Time `json:"lastLogin"`
	TotalStorageUsed int64      `gorm:"not null;default:0" json:"totalStorageUsed"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (Employee) TableName() string {
	return "employees"
}

// WorkingDay is one login/logout pair for an employee on a fixed-zone
// calendar day. A nil LogoutTime marks the session as still open.
type WorkingDay struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID uint       `gorm:"not null;index:idx_working_days_employee_date" json:"employeeId"`
	Date       string     `gorm:"type:varchar(10);not null;index:idx_working_days_employee_date" json:"date"`
	LoginTime  time.Time  `gorm:"not null" json:"loginTime"`
	LogoutTime *time.Time `json:"logoutTime"`
	CreatedAt  time.Time  `json:"createdAt"`

	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"-"`
}

func (WorkingDay) TableName() string {
	return "working_days"
}

type Project struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID     uint       `gorm:"not null;index:idx_projects_employee_status" json:"employeeId"`
	ProjectName    string     `gorm:"size:200;not null" json:"projectName"`
	WorkAndRole    string     `gorm:"size:500;not null" json:"workAndRole"`
	AssignDate     time.Time  `gorm:"not null" json:"assignDate"`
	SubmissionDate *time.Time `json:"submissionDate"`
	Remarks        string     `gorm:"size:500" json:"remarks"`
	Status         string     `gorm:"size:20;not null;default:current;index:idx_projects_employee_status" json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`

	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"-"`
}

func (Project) TableName() string {
	return "projects"
}

type Client struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID        uint      `gorm:"not null;index:idx_clients_employee_sensitive" json:"employeeId"`
	CompanyName       string    `gorm:"size:200;not null" json:"companyName"`
	ClientName        string    `gorm:"size:200;not null" json:"clientName"`
	ClientDesignation string    `gorm:"size:200;not null" json:"clientDesignation"`
	ClientEmail       string    `gorm:"size:200;not null" json:"clientEmail"`
	ClientContact     string    `gorm:"size:50;not null" json:"clientContact"`
	IsSensitive       bool      `gorm:"default:false;index:idx_clients_employee_sensitive" json:"isSensitive"`
	CreatedAt         time.Time `json:"createdAt"`

	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"-"`
}

func (Client) TableName() string {
	return "clients"
}

type DailyTask struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID      uint      `gorm:"not null;index" json:"employeeId"`
	TaskDescription string    `gorm:"size:1000;not null" json:"taskDescription"`
	CreatedAt       time.Time `json:"createdAt"`

	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"-"`
}

func (DailyTask) TableName() string {
	return "daily_tasks"
}

// UploadedFile records metadata for content kept in the object store.
// FileSize is the exact number of bytes counted against the owner's quota.
type UploadedFile struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID uint      `gorm:"not null;index" json:"employeeId"`
	FileName   string    `gorm:"size:300;not null" json:"fileName"`
	FileSize   int64     `gorm:"not null" json:"fileSize"`
	FileType   string    `gorm:"size:100;not null" json:"fileType"`
	StorageKey string    `gorm:"size:300;not null" json:"storageKey"`
	FileURL    string    `gorm:"size:500" json:"fileUrl"`
	UploadDate time.Time `gorm:"not null" json:"uploadDate"`

	Employee *Employee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"-"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}

// SensitiveProject is authored by the master role. EmployeeRef is the
// free-text staff id of the engineer, not a foreign key.
type SensitiveProject struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID          string    `gorm:"size:36;uniqueIndex;not null" json:"publicId"`
	CompanyName       string    `gorm:"size:200;not null" json:"companyName"`
	ProjectName       string    `gorm:"size:200;not null" json:"projectName"`
	ProjectEngineer   string    `gorm:"size:200;not null" json:"projectEngineer"`
	EmployeeRef       string    `gorm:"size:50;not null" json:"employeeRef"`
	ProjectAssignDate time.Time `gorm:"type:date;not null" json:"projectAssignDate"`
	ClientName        string    `gorm:"size:200;not null" json:"clientName"`
	ClientDesignation string    `gorm:"size:200;not null" json:"clientDesignation"`
	ContactNo         string    `gorm:"size:50;not null" json:"contactNo"`
	EmailID           string    `gorm:"size:200;not null" json:"emailId"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (SensitiveProject) TableName() string {
	return "sensitive_projects"
}
