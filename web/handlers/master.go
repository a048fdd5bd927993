package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"tipl.com/officepanel/core"
	"tipl.com/officepanel/realtime"
	"tipl.com/officepanel/utils"
	"tipl.com/officepanel/web/common"
)

// EmployeeOverview is the aggregate row the master dashboard shows per
// employee.
type EmployeeOverview struct {
	core.Employee
	ProjectsAssigned  int64             `json:"projectsAssigned"`
	ProjectsCompleted int64             `json:"projectsCompleted"`
	TotalWorkingDays  int64             `json:"totalWorkingDays"`
	WorkingDays       []core.WorkingDay `json:"workingDaysDetails,omitempty"`
}

type EmployeeStatistics struct {
	TotalEmployees     int `json:"totalEmployees"`
	ActiveEmployees    int `json:"activeEmployees"`
	NonActiveEmployees int `json:"nonActiveEmployees"`
	SoftwareTeam       int `json:"softwareTeam"`
	FinanceTeam        int `json:"financeTeam"`
	HRTeam             int `json:"hrTeam"`
}

func (env *Env) overviewFor(c *gin.Context, emp core.Employee, includeDays bool) (*EmployeeOverview, error) {
	ctx := c.Request.Context()

	overview := EmployeeOverview{Employee: emp}

	if err := env.DB.WithContext(ctx).Model(&core.Project{}).
		Where("employee_id = ? AND status = ?", emp.EmployeeID, core.ProjectStatusCurrent).
		Count(&overview.ProjectsAssigned).Error; err != nil {
		return nil, err
	}
	if err := env.DB.WithContext(ctx).Model(&core.Project{}).
		Where("employee_id = ? AND status = ?", emp.EmployeeID, core.ProjectStatusCompleted).
		Count(&overview.ProjectsCompleted).Error; err != nil {
		return nil, err
	}

	totalDays, err := env.Sessions.TotalWorkingDays(ctx, emp.EmployeeID)
	if err != nil {
		return nil, err
	}
	overview.TotalWorkingDays = totalDays

	if includeDays {
		days, err := env.Sessions.History(ctx, emp.EmployeeID)
		if err != nil {
			return nil, err
		}
		overview.WorkingDays = days
	}

	return &overview, nil
}

func statisticsFor(employees []core.Employee) EmployeeStatistics {
	active := utils.CountBy(employees, func(e core.Employee) bool { return e.IsActive })
	byDept := utils.GroupBy(employees, func(e core.Employee) string { return e.Department })

	return EmployeeStatistics{
		TotalEmployees:     len(employees),
		ActiveEmployees:    active,
		NonActiveEmployees: len(employees) - active,
		SoftwareTeam:       len(byDept[core.DepartmentSoftware]),
		FinanceTeam:        len(byDept[core.DepartmentFinance]),
		HRTeam:             len(byDept[core.DepartmentHR]),
	}
}

// MasterEmployeesHandler lists every employee with aggregates plus the
// headline statistics for the master dashboard.
func MasterEmployeesHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var employees []core.Employee
		if err := env.DB.WithContext(c.Request.Context()).Order("employee_id").Find(&employees).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching employees"))
			return
		}

		overviews := make([]EmployeeOverview, 0, len(employees))
		for _, emp := range employees {
			overview, err := env.overviewFor(c, emp, true)
			if err != nil {
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching employees"))
				return
			}
			overviews = append(overviews, *overview)
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"employees":  overviews,
			"statistics": statisticsFor(employees),
		}))
	}
}

func MasterEmployeeDetailHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var emp core.Employee
		err := env.DB.WithContext(ctx).First(&emp, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("employee not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching employee details"))
			return
		}

		overview, err := env.overviewFor(c, emp, true)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching employee details"))
			return
		}

		var current []core.Project
		if err := env.DB.WithContext(ctx).
			Where("employee_id = ? AND status = ?", emp.EmployeeID, core.ProjectStatusCurrent).
			Order("assign_date DESC").
			Find(&current).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching employee details"))
			return
		}
		var completed []core.Project
		if err := env.DB.WithContext(ctx).
			Where("employee_id = ? AND status = ?", emp.EmployeeID, core.ProjectStatusCompleted).
			Order("submission_date DESC").
			Find(&completed).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching employee details"))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"employee":          overview,
			"currentProjects":   current,
			"completedProjects": completed,
		}))
	}
}

func MasterDepartmentHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var employees []core.Employee
		if err := env.DB.WithContext(c.Request.Context()).
			Where("department = ?", c.Param("dept")).
			Order("employee_id").
			Find(&employees).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching department employees"))
			return
		}

		overviews := make([]EmployeeOverview, 0, len(employees))
		for _, emp := range employees {
			overview, err := env.overviewFor(c, emp, false)
			if err != nil {
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching department employees"))
				return
			}
			overviews = append(overviews, *overview)
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"employees": overviews}))
	}
}

// MasterExportEmployeesHandler writes the employee overview as an XLSX
// workbook for offline reporting.
func MasterExportEmployeesHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var employees []core.Employee
		if err := env.DB.WithContext(c.Request.Context()).Order("employee_id").Find(&employees).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error exporting employees"))
			return
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Employees"
		f.SetSheetName("Sheet1", sheet)

		header := []interface{}{"Staff ID", "Full Name", "Department", "Designation", "Office Email",
			"Active", "Working Days", "Current Projects", "Completed Projects", "Storage Used (bytes)"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error exporting employees"))
			return
		}

		for i, emp := range employees {
			overview, err := env.overviewFor(c, emp, false)
			if err != nil {
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error exporting employees"))
				return
			}

			row := []interface{}{
				emp.StaffID, emp.FullName, emp.Department, emp.Designation, emp.OfficeEmail,
				emp.IsActive, overview.TotalWorkingDays, overview.ProjectsAssigned,
				overview.ProjectsCompleted, emp.TotalStorageUsed,
			}
			cell := fmt.Sprintf("A%d", i+2)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error exporting employees"))
				return
			}
		}

		c.Header("Content-Disposition", `attachment; filename="employees.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := f.Write(c.Writer); err != nil {
			env.Notifier.Error("failed to stream employee export: %v", err)
		}
	}
}

// SensitiveClient joins the owning employee's name and staff id onto the
// client row for the master view.
type SensitiveClient struct {
	core.Client
	MarkedByStaffID string `json:"markedByEmployeeId"`
	EmployeeName    string `json:"employeeName"`
}

func MasterSensitiveClientsHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rows []SensitiveClient
		err := env.DB.WithContext(c.Request.Context()).
			Model(&core.Client{}).
			Select("clients.*, employees.staff_id AS marked_by_staff_id, employees.full_name AS employee_name").
			Joins("JOIN employees ON employees.employee_id = clients.employee_id").
			Where("clients.is_sensitive = ?", true).
			Order("clients.created_at DESC").
			Scan(&rows).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching sensitive clients"))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"clients": rows}))
	}
}

func MasterSensitiveProjectsHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var projects []core.SensitiveProject
		if err := env.DB.WithContext(c.Request.Context()).
			Order("created_at DESC").
			Find(&projects).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching sensitive projects"))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"projects": projects}))
	}
}

type SensitiveProjectRequest struct {
	CompanyName       string          `json:"companyName" binding:"required"`
	ProjectName       string          `json:"projectName" binding:"required"`
	ProjectEngineer   string          `json:"projectEngineer" binding:"required"`
	EmployeeRef       string          `json:"employeeId" binding:"required"`
	ProjectAssignDate common.DateOnly `json:"projectAssignDate"`
	ClientName        string          `json:"clientName" binding:"required"`
	ClientDesignation string          `json:"clientDesignation" binding:"required"`
	ContactNo         string          `json:"contactNo" binding:"required"`
	EmailID           string          `json:"emailId" binding:"required,email"`
}

func MasterAddSensitiveProjectHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SensitiveProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}
		if req.ProjectAssignDate.IsZero() {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Field 'projectAssignDate' is required"))
			return
		}

		project := core.SensitiveProject{
			PublicID:          uuid.NewString(),
			CompanyName:       req.CompanyName,
			ProjectName:       req.ProjectName,
			ProjectEngineer:   req.ProjectEngineer,
			EmployeeRef:       req.EmployeeRef,
			ProjectAssignDate: req.ProjectAssignDate.Time,
			ClientName:        req.ClientName,
			ClientDesignation: req.ClientDesignation,
			ContactNo:         req.ContactNo,
			EmailID:           req.EmailID,
		}
		if err := env.DB.WithContext(c.Request.Context()).Create(&project).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error adding sensitive project"))
			return
		}

		env.Hub.PublishToGroup(realtime.MasterRoom, "sensitive-project-added", gin.H{"project": project})
		env.Notifier.Info("sensitive project added: %s for %s", project.ProjectName, project.CompanyName)

		c.JSON(http.StatusCreated, common.NewSuccessResponse(project))
	}
}
