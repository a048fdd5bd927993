package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"tipl.com/officepanel/core"
	"tipl.com/officepanel/infrastructure/communication"
	"tipl.com/officepanel/infrastructure/devops"
	"tipl.com/officepanel/infrastructure/filesystem"
	"tipl.com/officepanel/realtime"
	"tipl.com/officepanel/security"
	"tipl.com/officepanel/web/handlers"
	"tipl.com/officepanel/web/middlewares"
)

func main() {
	ctx := context.Background()

	cfg, err := devops.Load(ctx)
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}
	if cfg.Auth.SigningSecret == "" {
		log.Fatal("no signing secret configured")
	}

	db, err := core.New(cfg.Database.DSN, cfg.Database.MaxConnections)
	if err != nil {
		log.Fatal(err)
	}

	blobs, err := filesystem.NewS3Store(ctx, cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
	if err != nil {
		log.Fatal("failed to create object store: ", err)
	}

	hub := realtime.NewHub()
	notifier := communication.ConnectSlack()
	env := handlers.NewEnv(db, hub, blobs, notifier, cfg.Auth)

	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.GET("/ws", handlers.WebSocketHandler(env))

	auth := r.Group("/api/auth")
	{
		auth.POST("/employee/signup", handlers.SignupHandler(env))
		auth.POST("/employee/signin", handlers.SigninHandler(env))
		auth.POST("/master/signin", handlers.MasterSigninHandler(env))
	}

	secret := env.SigningSecret()

	employee := r.Group("/api")
	employee.Use(middlewares.Authentication(secret, security.RoleEmployee))
	{
		employee.POST("/auth/employee/logout", handlers.LogoutHandler(env))

		employee.GET("/employee/dashboard", handlers.DashboardHandler(env))
		employee.POST("/employee/daily-task", handlers.AddDailyTaskHandler(env))
		employee.GET("/employee/projects", handlers.ProjectsHandler(env))
		employee.POST("/employee/project", handlers.AddProjectHandler(env))
		employee.PUT("/employee/project/:id/complete", handlers.CompleteProjectHandler(env))
		employee.GET("/employee/clients", handlers.ClientsHandler(env))
		employee.POST("/employee/client", handlers.AddClientHandler(env))

		employee.POST("/upload", handlers.UploadHandler(env))
		employee.GET("/upload/files", handlers.ListFilesHandler(env))
		employee.DELETE("/upload/file/:id", handlers.DeleteFileHandler(env))
	}

	master := r.Group("/api/master")
	master.Use(middlewares.Authentication(secret, security.RoleMaster))
	{
		master.GET("/employees", handlers.MasterEmployeesHandler(env))
		master.GET("/employees/export", handlers.MasterExportEmployeesHandler(env))
		master.GET("/employees/department/:dept", handlers.MasterDepartmentHandler(env))
		master.GET("/employees/:id", handlers.MasterEmployeeDetailHandler(env))
		master.GET("/sensitive-clients", handlers.MasterSensitiveClientsHandler(env))
		master.GET("/sensitive-projects", handlers.MasterSensitiveProjectsHandler(env))
		master.POST("/sensitive-project", handlers.MasterAddSensitiveProjectHandler(env))
	}

	r.Run(cfg.Server.Addr)
}
