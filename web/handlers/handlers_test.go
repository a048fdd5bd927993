package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tipl.com/officepanel/core"
	"tipl.com/officepanel/infrastructure/devops"
	"tipl.com/officepanel/realtime"
	"tipl.com/officepanel/security"
	"tipl.com/officepanel/web/middlewares"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("officepanel-handler-test-secret"))

// fakeBlobs keeps uploaded content in memory and can be told to fail.
type fakeBlobs struct {
	objects map[string][]byte
	failPut bool
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) Put(_ context.Context, key, _ string, body io.Reader) error {
	if f.failPut {
		return fmt.Errorf("object store unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobs) Read(_ context.Context, key string, out io.Writer) error {
	data, ok := f.objects[key]
	if !ok {
		return fmt.Errorf("no such object %s", key)
	}
	_, err := out.Write(data)
	return err
}

func (f *fakeBlobs) URL(key string) string {
	return "https://blobs.test/" + key
}

type testApp struct {
	env    *Env
	router *gin.Engine
	blobs  *fakeBlobs
	now    time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, core.Migrate(db))

	blobs := newFakeBlobs()
	env := NewEnv(db, realtime.NewHub(), blobs, nil, devops.AuthConfig{
		SigningSecret:  testSecret,
		TokenTTLHours:  1,
		MasterUsername: "master",
		MasterPassword: "master-pass",
	})

	app := &testApp{env: env, blobs: blobs, now: mustParse("2025-03-01T10:00:00+05:30")}
	env.Now = func() time.Time { return app.now }

	r := gin.New()
	r.POST("/api/auth/employee/signup", SignupHandler(env))
	r.POST("/api/auth/employee/signin", SigninHandler(env))
	r.POST("/api/auth/master/signin", MasterSigninHandler(env))

	secret := env.SigningSecret()
	employee := r.Group("/api")
	employee.Use(middlewares.Authentication(secret, security.RoleEmployee))
	{
		employee.POST("/auth/employee/logout", LogoutHandler(env))
		employee.GET("/employee/dashboard", DashboardHandler(env))
		employee.POST("/employee/daily-task", AddDailyTaskHandler(env))
		employee.GET("/employee/projects", ProjectsHandler(env))
		employee.POST("/employee/project", AddProjectHandler(env))
		employee.PUT("/employee/project/:id/complete", CompleteProjectHandler(env))
		employee.GET("/employee/clients", ClientsHandler(env))
		employee.POST("/employee/client", AddClientHandler(env))
		employee.POST("/upload", UploadHandler(env))
		employee.GET("/upload/files", ListFilesHandler(env))
		employee.DELETE("/upload/file/:id", DeleteFileHandler(env))
	}

	master := r.Group("/api/master")
	master.Use(middlewares.Authentication(secret, security.RoleMaster))
	{
		master.GET("/employees", MasterEmployeesHandler(env))
		master.GET("/employees/export", MasterExportEmployeesHandler(env))
		master.GET("/employees/department/:dept", MasterDepartmentHandler(env))
		master.GET("/employees/:id", MasterEmployeeDetailHandler(env))
		master.GET("/sensitive-clients", MasterSensitiveClientsHandler(env))
		master.GET("/sensitive-projects", MasterSensitiveProjectsHandler(env))
		master.POST("/sensitive-project", MasterAddSensitiveProjectHandler(env))
	}

	app.router = r
	return app
}

func mustParse(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func (a *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) upload(t *testing.T, token, filename string, size int) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func signupBody(username string) gin.H {
	return gin.H{
		"fullName":       "Alice Kumar",
		"officeEmail":    username + "@tipl.com",
		"designation":    "Software Engineer",
		"dateOfBirth":    "1995-06-15",
		"monthOfJoining": "January 2024",
		"department":     core.DepartmentSoftware,
		"staffId":        "TIPL-" + username,
		"contactNo":      "9876543210",
		"personalEmail":  username + "@example.com",
		"address":        "12 MG Road, Bengaluru",
		"username":       username,
		"password":       "secret123",
	}
}

func (a *testApp) signup(t *testing.T, username string) string {
	t.Helper()

	w := a.do(http.MethodPost, "/api/auth/employee/signup", "", signupBody(username))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func (a *testApp) masterToken(t *testing.T) string {
	t.Helper()

	w := a.do(http.MethodPost, "/api/auth/master/signin", "", gin.H{
		"username": "master",
		"password": "master-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Token
}

func TestSignupCreatesEmployeeAndFirstWorkingDay(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice")

	var emp core.Employee
	require.NoError(t, app.env.DB.Where("username = ?", "alice").First(&emp).Error)
	assert.True(t, emp.IsActive)
	assert.NotEqual(t, "secret123", emp.PasswordHash)

	var day core.WorkingDay
	require.NoError(t, app.env.DB.Where("employee_id = ?", emp.EmployeeID).First(&day).Error)
	assert.Equal(t, "2025-03-01", day.Date)
	assert.Nil(t, day.LogoutTime)

	w := app.do(http.MethodGet, "/api/employee/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupRejectsDuplicates(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "alice")

	w := app.do(http.MethodPost, "/api/auth/employee/signup", "", signupBody("alice"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestSignupValidation(t *testing.T) {
	app := newTestApp(t)

	body := signupBody("alice")
	body["department"] = "Unknown Department"
	w := app.do(http.MethodPost, "/api/auth/employee/signup", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = signupBody("alice")
	body["password"] = "short"
	w = app.do(http.MethodPost, "/api/auth/employee/signup", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSigninIsIdempotentWithinADay(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "alice")

	creds := gin.H{"username": "alice", "password": "secret123"}
	for i := 0; i < 3; i++ {
		w := app.do(http.MethodPost, "/api/auth/employee/signin", "", creds)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var count int64
	require.NoError(t, app.env.DB.Model(&core.WorkingDay{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSigninRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "alice")

	w := app.do(http.MethodPost, "/api/auth/employee/signin", "", gin.H{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodPost, "/api/auth/employee/signin", "", gin.H{
		"username": "nobody", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutClosesSessionAndIsRepeatable(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice")

	app.now = app.now.Add(8 * time.Hour)
	w := app.do(http.MethodPost, "/api/auth/employee/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var day core.WorkingDay
	require.NoError(t, app.env.DB.First(&day).Error)
	require.NotNil(t, day.LogoutTime)

	// Nothing open anymore; logging out again still succeeds.
	w = app.do(http.MethodPost, "/api/auth/employee/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var emp core.Employee
	require.NoError(t, app.env.DB.First(&emp).Error)
	assert.False(t, emp.IsActive)
}

func TestDailyTaskAndDashboard(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice")

	w := app.do(http.MethodPost, "/api/employee/daily-task", token, gin.H{
		"taskDescription": "reviewed invoices",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.do(http.MethodGet, "/api/employee/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			DailyTasks       []core.DailyTask `json:"dailyTasks"`
			TotalWorkingDays int64            `json:"totalWorkingDays"`
			CurrentLoginTime *time.Time       `json:"currentLoginTime"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.DailyTasks, 1)
	assert.EqualValues(t, 1, resp.Data.TotalWorkingDays)
	assert.NotNil(t, resp.Data.CurrentLoginTime)
}

func TestProjectLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice")

	w := app.do(http.MethodPost, "/api/employee/project", token, gin.H{
		"projectName": "Billing revamp",
		"workAndRole": "Backend lead",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var project core.Project
	require.NoError(t, app.env.DB.First(&project).Error)
	assert.Equal(t, core.ProjectStatusCurrent, project.Status)

	path := fmt.Sprintf("/api/employee/project/%d/complete", project.ID)
	w = app.do(http.MethodPut, path, token, gin.H{"remarks": "shipped"})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, app.env.DB.First(&project).Error)
	assert.Equal(t, core.ProjectStatusCompleted, project.Status)
	require.NotNil(t, project.SubmissionDate)
	firstSubmission := *project.SubmissionDate

	// Completing again changes nothing.
	app.now = app.now.Add(time.Hour)
	w = app.do(http.MethodPut, path, token, gin.H{"remarks": "again"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, app.env.DB.First(&project).Error)
	assert.Equal(t, "shipped", project.Remarks)
	assert.True(t, project.SubmissionDate.Equal(firstSubmission))

	w = app.do(http.MethodPut, "/api/employee/project/9999/complete", token, gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectsAreScopedToOwner(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")

	w := app.do(http.MethodPost, "/api/employee/project", alice, gin.H{
		"projectName": "Secret",
		"workAndRole": "Owner",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var project core.Project
	require.NoError(t, app.env.DB.First(&project).Error)

	path := fmt.Sprintf("/api/employee/project/%d/complete", project.ID)
	w = app.do(http.MethodPut, path, bob, gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadWithinQuota(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice")

	w := app.upload(t, token, "report.pdf", 5*1048576)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var emp core.Employee
	require.NoError(t, app.env.DB.First(&emp).Error)
	assert.EqualValues(t, 5*1048576, emp.TotalStorageUsed)
	assert.Len(t, app.blobs.objects, 1)
}

func TestUploadRejectsBadFileType(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice")

	w := app.upload(t, token, "malware.exe", 1024)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, app.blobs.objects)
}

func TestUploadDeniedOverQuota(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice")

	var emp core.Employee
	require.NoError(t, app.env.DB.First(&emp).Error)
	require.NoError(t, app.env.DB.Model(&emp).Update("total_storage_used", int64(49*1048576)).Error)

	w := app.upload(t, token, "big.pdf", 2*1048576)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "storage limit exceeded")

	require.NoError(t, app.env.DB.First(&emp).Error)
	assert.EqualValues(t, 49*1048576, emp.TotalStorageUsed)
	assert.Empty(t, app.blobs.objects)
}

func TestUploadFailureLeavesCounterUntouched(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice")
	app.blobs.failPut = true

	w := app.upload(t, token, "report.pdf", 1048576)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var emp core.Employee
	require.NoError(t, app.env.DB.First(&emp).Error)
	assert.EqualValues(t, 0, emp.TotalStorageUsed)
}

func TestDeleteFileReturnsQuota(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice")

	w := app.upload(t, token, "report.pdf", 5*1048576)
	require.Equal(t, http.StatusCreated, w.Code)

	var file core.UploadedFile
	require.NoError(t, app.env.DB.First(&file).Error)

	w = app.do(http.MethodDelete, fmt.Sprintf("/api/upload/file/%d", file.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var emp core.Employee
	require.NoError(t, app.env.DB.First(&emp).Error)
	assert.EqualValues(t, 0, emp.TotalStorageUsed)
	assert.Empty(t, app.blobs.objects)

	w = app.do(http.MethodDelete, fmt.Sprintf("/api/upload/file/%d", file.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilesAreScopedToOwner(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	bob := app.signup(t, "bob")

	w := app.upload(t, alice, "report.pdf", 1048576)
	require.Equal(t, http.StatusCreated, w.Code)

	var file core.UploadedFile
	require.NoError(t, app.env.DB.First(&file).Error)

	w = app.do(http.MethodDelete, fmt.Sprintf("/api/upload/file/%d", file.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMasterEndpointsRequireMasterRole(t *testing.T) {
	app := newTestApp(t)
	employeeToken := app.signup(t, "alice")

	w := app.do(http.MethodGet, "/api/master/employees", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodGet, "/api/master/employees", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMasterSigninRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/api/auth/master/signin", "", gin.H{
		"username": "master", "password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMasterEmployeeOverview(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")
	app.signup(t, "bob")

	w := app.do(http.MethodPost, "/api/employee/project", alice, gin.H{
		"projectName": "Billing revamp",
		"workAndRole": "Backend lead",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	master := app.masterToken(t)
	w = app.do(http.MethodGet, "/api/master/employees", master, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Employees  []EmployeeOverview `json:"employees"`
			Statistics EmployeeStatistics `json:"statistics"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Employees, 2)
	assert.Equal(t, 2, resp.Data.Statistics.TotalEmployees)
	assert.Equal(t, 2, resp.Data.Statistics.ActiveEmployees)
	assert.Equal(t, 2, resp.Data.Statistics.SoftwareTeam)
	assert.EqualValues(t, 1, resp.Data.Employees[0].ProjectsAssigned)
	assert.EqualValues(t, 1, resp.Data.Employees[0].TotalWorkingDays)
}

func TestMasterSensitiveClients(t *testing.T) {
	app := newTestApp(t)
	alice := app.signup(t, "alice")

	for _, sensitive := range []bool{true, false} {
		w := app.do(http.MethodPost, "/api/employee/client", alice, gin.H{
			"companyName":       "Acme Corp",
			"clientName":        "Jordan Lee",
			"clientDesignation": "CTO",
			"clientEmail":       "jordan@acme.example",
			"clientContact":     "5551234",
			"isSensitive":       sensitive,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	master := app.masterToken(t)
	w := app.do(http.MethodGet, "/api/master/sensitive-clients", master, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Clients []SensitiveClient `json:"clients"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Clients, 1)
	assert.Equal(t, "TIPL-alice", resp.Data.Clients[0].MarkedByStaffID)
	assert.Equal(t, "Alice Kumar", resp.Data.Clients[0].EmployeeName)
}

func TestMasterSensitiveProjects(t *testing.T) {
	app := newTestApp(t)
	master := app.masterToken(t)

	w := app.do(http.MethodPost, "/api/master/sensitive-project", master, gin.H{
		"companyName":       "Acme Corp",
		"projectName":       "Skunkworks",
		"projectEngineer":   "Alice Kumar",
		"employeeId":        "TIPL-alice",
		"projectAssignDate": "2025-02-01",
		"clientName":        "Jordan Lee",
		"clientDesignation": "CTO",
		"contactNo":         "5551234",
		"emailId":           "jordan@acme.example",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.do(http.MethodGet, "/api/master/sensitive-projects", master, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Projects []core.SensitiveProject `json:"projects"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Projects, 1)
	assert.Equal(t, "Skunkworks", resp.Data.Projects[0].ProjectName)
	assert.NotEmpty(t, resp.Data.Projects[0].PublicID)
}

func TestMasterDepartmentFilter(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "alice")

	body := signupBody("carol")
	body["department"] = core.DepartmentFinance
	w := app.do(http.MethodPost, "/api/auth/employee/signup", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	master := app.masterToken(t)
	w = app.do(http.MethodGet, "/api/master/employees/department/"+url.PathEscape(core.DepartmentFinance), master, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Employees []EmployeeOverview `json:"employees"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Employees, 1)
	assert.Equal(t, "carol", resp.Data.Employees[0].Username)
}

func TestMasterExportEmployees(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "alice")

	master := app.masterToken(t)
	w := app.do(http.MethodGet, "/api/master/employees/export", master, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "employees.xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestPasswordHashNeverLeaves(t *testing.T) {
	app := newTestApp(t)
	token := app.signup(t, "alice")

	w := app.do(http.MethodGet, "/api/employee/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "passwordHash")
	assert.False(t, strings.Contains(w.Body.String(), "secret123"))
}
