package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tipl.com/officepanel/core"
	"tipl.com/officepanel/web/common"
	"tipl.com/officepanel/web/middlewares"
)

// DashboardHandler returns everything the employee landing page shows:
// profile, tasks, the working-day history and the live session if any.
func DashboardHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middlewares.CurrentIdentity(c)
		ctx := c.Request.Context()

		var emp core.Employee
		if err := env.DB.WithContext(ctx).First(&emp, identity.EmployeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, common.NewErrorResponse("employee not found"))
				return
			}
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching dashboard"))
			return
		}

		var tasks []core.DailyTask
		if err := env.DB.WithContext(ctx).
			Where("employee_id = ?", emp.EmployeeID).
			Order("created_at DESC").
			Find(&tasks).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching dashboard"))
			return
		}

		workingDays, err := env.Sessions.History(ctx, emp.EmployeeID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching dashboard"))
			return
		}

		totalDays, err := env.Sessions.TotalWorkingDays(ctx, emp.EmployeeID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching dashboard"))
			return
		}

		current, err := env.Sessions.CurrentSession(ctx, emp.EmployeeID, env.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching dashboard"))
			return
		}

		var currentLogin interface{}
		if current != nil {
			currentLogin = current.LoginTime
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"employee":         emp,
			"dailyTasks":       tasks,
			"workingDays":      workingDays,
			"totalWorkingDays": totalDays,
			"currentLoginTime": currentLogin,
		}))
	}
}

type DailyTaskRequest struct {
	TaskDescription string `json:"taskDescription" binding:"required"`
}

func AddDailyTaskHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middlewares.CurrentIdentity(c)

		var req DailyTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		task := core.DailyTask{
			EmployeeID:      identity.EmployeeID,
			TaskDescription: req.TaskDescription,
		}
		if err := env.DB.WithContext(c.Request.Context()).Create(&task).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error adding task"))
			return
		}

		env.Hub.Publish("daily-task-added", gin.H{
			"employeeId": identity.EmployeeID,
			"task":       task,
		})

		c.JSON(http.StatusCreated, common.NewSuccessResponse(task))
	}
}

// ProjectsHandler returns the employee's projects split by status.
func ProjectsHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middlewares.CurrentIdentity(c)
		ctx := c.Request.Context()

		var current []core.Project
		if err := env.DB.WithContext(ctx).
			Where("employee_id = ? AND status = ?", identity.EmployeeID, core.ProjectStatusCurrent).
			Order("assign_date DESC").
			Find(&current).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching projects"))
			return
		}

		var completed []core.Project
		if err := env.DB.WithContext(ctx).
			Where("employee_id = ? AND status = ?", identity.EmployeeID, core.ProjectStatusCompleted).
			Order("submission_date DESC").
			Find(&completed).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching projects"))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"currentProjects":   current,
			"completedProjects": completed,
		}))
	}
}

type ProjectRequest struct {
	ProjectName string `json:"projectName" binding:"required"`
	WorkAndRole string `json:"workAndRole" binding:"required,max=500"`
}

func AddProjectHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middlewares.CurrentIdentity(c)

		var req ProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		project := core.Project{
			EmployeeID:  identity.EmployeeID,
			ProjectName: req.ProjectName,
			WorkAndRole: req.WorkAndRole,
			AssignDate:  env.Now(),
			Status:      core.ProjectStatusCurrent,
		}
		if err := env.DB.WithContext(c.Request.Context()).Create(&project).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error adding project"))
			return
		}

		env.Hub.Publish("project-added", gin.H{
			"employeeId": identity.EmployeeID,
			"project":    project,
		})

		c.JSON(http.StatusCreated, common.NewSuccessResponse(project))
	}
}

type CompleteProjectRequest struct {
	Remarks string `json:"remarks" binding:"max=500"`
}

// CompleteProjectHandler moves a project to completed. The transition is
// one-way; completing an already-completed project changes nothing.
func CompleteProjectHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middlewares.CurrentIdentity(c)
		ctx := c.Request.Context()

		// Remarks are optional; an empty body is fine here.
		var req CompleteProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		var project core.Project
		err := env.DB.WithContext(ctx).
			Where("id = ? AND employee_id = ?", c.Param("id"), identity.EmployeeID).
			First(&project).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("project not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error completing project"))
			return
		}

		if project.Status != core.ProjectStatusCompleted {
			now := env.Now()
			project.Status = core.ProjectStatusCompleted
			project.SubmissionDate = &now
			project.Remarks = req.Remarks
			if err := env.DB.WithContext(ctx).Model(&project).Updates(map[string]interface{}{
				"status":          project.Status,
				"submission_date": now,
				"remarks":         project.Remarks,
			}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error completing project"))
				return
			}

			env.Hub.Publish("project-completed", gin.H{
				"employeeId": identity.EmployeeID,
				"project":    project,
			})
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(project))
	}
}

func ClientsHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middlewares.CurrentIdentity(c)

		var clients []core.Client
		if err := env.DB.WithContext(c.Request.Context()).
			Where("employee_id = ?", identity.EmployeeID).
			Order("created_at DESC").
			Find(&clients).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error fetching clients"))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"clients": clients}))
	}
}

type ClientRequest struct {
	CompanyName       string `json:"companyName" binding:"required"`
	ClientName        string `json:"clientName" binding:"required"`
	ClientDesignation string `json:"clientDesignation" binding:"required"`
	ClientEmail       string `json:"clientEmail" binding:"required,email"`
	ClientContact     string `json:"clientContact" binding:"required"`
	IsSensitive       bool   `json:"isSensitive"`
}

func AddClientHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middlewares.CurrentIdentity(c)

		var req ClientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		client := core.Client{
			EmployeeID:        identity.EmployeeID,
			CompanyName:       req.CompanyName,
			ClientName:        req.ClientName,
			ClientDesignation: req.ClientDesignation,
			ClientEmail:       req.ClientEmail,
			ClientContact:     req.ClientContact,
			IsSensitive:       req.IsSensitive,
		}
		if err := env.DB.WithContext(c.Request.Context()).Create(&client).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error adding client"))
			return
		}

		env.Hub.Publish("client-added", gin.H{
			"employeeId": identity.EmployeeID,
			"client":     client,
		})

		c.JSON(http.StatusCreated, common.NewSuccessResponse(client))
	}
}
