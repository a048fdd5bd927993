package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"tipl.com/officepanel/core"
	"tipl.com/officepanel/security"
	"tipl.com/officepanel/web/common"
	"tipl.com/officepanel/web/middlewares"
)

type SignupRequest struct {
	FullName       string          `json:"fullName" binding:"required"`
	OfficeEmail    string          `json:"officeEmail" binding:"required,email"`
	Designation    string          `json:"designation" binding:"required"`
	DateOfBirth    common.DateOnly `json:"dateOfBirth"`
	MonthOfJoining string          `json:"monthOfJoining" binding:"required"`
	Department     string          `json:"department" binding:"required,oneof='Software Development' 'Finance & Legal' 'HR & Sales'"`
	StaffID        string          `json:"staffId" binding:"required"`
	ContactNo      string          `json:"contactNo" binding:"required"`
	PersonalEmail  string          `json:"personalEmail" binding:"required,email"`
	Address        string          `json:"address" binding:"required"`
	Username       string          `json:"username" binding:"required"`
	Password       string          `json:"password" binding:"required,min=6"`
}

type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

func employeeSummary(emp *core.Employee) gin.H {
	return gin.H{
		"id":          emp.EmployeeID,
		"fullName":    emp.FullName,
		"username":    emp.Username,
		"department":  emp.Department,
		"designation": emp.Designation,
	}
}

// SignupHandler registers a new employee and opens their first working
// day in one go.
func SignupHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}
		if req.DateOfBirth.IsZero() {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("Field 'dateOfBirth' is required"))
			return
		}

		ctx := c.Request.Context()

		var count int64
		if err := env.DB.WithContext(ctx).Model(&core.Employee{}).
			Where("office_email = ? OR username = ? OR staff_id = ?", req.OfficeEmail, req.Username, req.StaffID).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during registration"))
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("employee with this email, username, or staff ID already exists"))
			return
		}

		hash, err := security.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during registration"))
			return
		}

		now := env.Now()
		emp := core.Employee{
			FullName:       req.FullName,
			OfficeEmail:    req.OfficeEmail,
			Designation:    req.Designation,
			DateOfBirth:    req.DateOfBirth.Time,
			MonthOfJoining: req.MonthOfJoining,
			Department:     req.Department,
			StaffID:        req.StaffID,
			ContactNo:      req.ContactNo,
			PersonalEmail:  req.PersonalEmail,
			Address:        req.Address,
			Username:       req.Username,
			PasswordHash:   hash,
			IsActive:       true,
			LastLogin:      &now,
		}
		if err := env.DB.WithContext(ctx).Create(&emp).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during registration"))
			return
		}

		if _, err := env.Sessions.SignIn(ctx, emp.EmployeeID, now); err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during registration"))
			return
		}

		token, err := security.CreateIdentityToken(security.Identity{
			EmployeeID: emp.EmployeeID,
			Username:   emp.Username,
			Role:       security.RoleEmployee,
		}, env.Auth.SigningSecret, env.TokenTTL())
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during registration"))
			return
		}

		env.Hub.Publish("new-employee", gin.H{
			"employeeId": emp.EmployeeID,
			"fullName":   emp.FullName,
			"department": emp.Department,
		})
		env.Notifier.Info("new employee registered: %s (%s)", emp.FullName, emp.Department)

		c.JSON(http.StatusCreated, common.NewSuccessResponse(AuthResponse{
			Token: token,
			User:  employeeSummary(&emp),
		}))
	}
}

// SigninHandler authenticates an employee. Signing in twice on the same
// office day reuses the open working-day session.
func SigninHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		ctx := c.Request.Context()

		var emp core.Employee
		err := env.DB.WithContext(ctx).Where("username = ?", req.Username).First(&emp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !security.CheckPassword(emp.PasswordHash, req.Password)) {
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("invalid credentials"))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during login"))
			return
		}

		now := env.Now()
		if err := env.DB.WithContext(ctx).Model(&emp).
			Updates(map[string]interface{}{"is_active": true, "last_login": now}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during login"))
			return
		}

		if _, err := env.Sessions.SignIn(ctx, emp.EmployeeID, now); err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during login"))
			return
		}

		token, err := security.CreateIdentityToken(security.Identity{
			EmployeeID: emp.EmployeeID,
			Username:   emp.Username,
			Role:       security.RoleEmployee,
		}, env.Auth.SigningSecret, env.TokenTTL())
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during login"))
			return
		}

		env.Hub.Publish("employee-login", gin.H{
			"employeeId": emp.EmployeeID,
			"status":     "active",
		})

		c.JSON(http.StatusOK, common.NewSuccessResponse(AuthResponse{
			Token: token,
			User:  employeeSummary(&emp),
		}))
	}
}

// LogoutHandler closes today's open session. When nothing is open the
// logout still succeeds; there is simply nothing to close.
func LogoutHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middlewares.CurrentIdentity(c)
		ctx := c.Request.Context()

		if err := env.DB.WithContext(ctx).Model(&core.Employee{}).
			Where("employee_id = ?", identity.EmployeeID).
			Update("is_active", false).Error; err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during logout"))
			return
		}

		if _, err := env.Sessions.SignOut(ctx, identity.EmployeeID, env.Now()); err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during logout"))
			return
		}

		env.Hub.Publish("employee-logout", gin.H{
			"employeeId": identity.EmployeeID,
			"status":     "offline",
		})

		c.JSON(http.StatusOK, common.NewMessageResponse("logout successful", nil))
	}
}

// MasterSigninHandler checks the fixed master credentials from
// configuration and issues a master-role token.
func MasterSigninHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CredentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		if env.Auth.MasterUsername == "" ||
			req.Username != env.Auth.MasterUsername ||
			req.Password != env.Auth.MasterPassword {
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("invalid master credentials"))
			return
		}

		token, err := security.CreateIdentityToken(security.Identity{
			Username: req.Username,
			Role:     security.RoleMaster,
		}, env.Auth.SigningSecret, env.TokenTTL())
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse("server error during master login"))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(AuthResponse{
			Token: token,
			User:  gin.H{"role": security.RoleMaster, "username": req.Username},
		}))
	}
}
