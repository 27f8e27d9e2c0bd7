package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/uatas-cs/complaint-service/api"
	"github.com/uatas-cs/complaint-service/internal/handler"
	"github.com/uatas-cs/complaint-service/internal/middleware"
	"github.com/uatas-cs/complaint-service/internal/model"
)

const pathSwagger = "/swagger"

// Deps carries everything the router mounts.
type Deps struct {
	Auth      *handler.AuthHandler
	Complaint *handler.ComplaintHandler
	Query     *handler.QueryHandler
	Files     *handler.ImportExportHandler
	JWTSecret string
	UploadDir string
}

func New(d Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.Static("/static/uploads", d.UploadDir)
	r.GET(pathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, pathSwagger+"/") })
	r.GET(pathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = pathSwagger + "/index.html"
			c.Request.RequestURI = pathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", d.Auth.Register)
		auth.POST("/login", d.Auth.Login)
	}

	admin := v1.Group("/admin", middleware.Auth(d.JWTSecret, model.RoleAdmin))
	{
		admin.POST("/users", d.Auth.AddUser)
		admin.GET("/users", d.Auth.ListUsers)
		admin.DELETE("/users/:id", d.Auth.DeleteUser)
	}

	staff := v1.Group("", middleware.Auth(d.JWTSecret, model.RoleStaff, model.RoleAdmin))
	{
		staff.POST("/complaints", d.Complaint.Submit)
		staff.POST("/groups/:id/orders", d.Complaint.AddOrder)
		staff.POST("/groups/:id/kontak", d.Complaint.AddKontak)
		staff.PUT("/tickets/:id/stage", d.Complaint.UpdateStage)
		staff.PUT("/groups/:id/close", d.Complaint.CloseGroup)
		staff.PUT("/groups/:id/reopen", d.Complaint.ReopenGroup)
		staff.PUT("/groups/:id/follow-up", d.Complaint.GroupFollowUp)
		staff.PUT("/tickets/:id/catatan", d.Complaint.UpdateCatatan)
		staff.PUT("/tickets/:id/case-valid", d.Complaint.MarkCaseValid)
		staff.POST("/tickets/:id/documents", d.Complaint.UploadDocuments)
		staff.DELETE("/tickets/:id/documents", d.Complaint.DeleteDocument)

		staff.GET("/pengaduan", d.Query.Pengaduan)
		staff.GET("/pengaduan/eskalasi", d.Query.Escalated)
		staff.GET("/pengaduan/close", d.Query.Closed)
		staff.GET("/pengaduan/reopen", d.Query.Reopened)
		staff.GET("/pengaduan/sla-habis", d.Query.SLABreached)
		staff.GET("/case-valid", d.Query.CaseValid)
		staff.GET("/history", d.Query.History)

		staff.POST("/import", d.Files.Import)
		staff.GET("/export", d.Files.Export)
	}

	qc := v1.Group("/qc", middleware.Auth(d.JWTSecret, model.RoleQC, model.RoleAdmin))
	{
		qc.GET("/dashboard", d.Query.QCDashboard)
		qc.PUT("/groups/:id/feedback", d.Complaint.QCFeedbackGroup)
		qc.PUT("/tickets/:id/feedback", d.Complaint.QCFeedbackTicket)
	}

	// Shared by every authenticated role.
	shared := v1.Group("", middleware.Auth(d.JWTSecret))
	{
		shared.GET("/groups/:id", d.Complaint.GetGroup)
		shared.GET("/qc-users", d.Auth.QCUsers)
		shared.GET("/sla-warnings", d.Query.SLAWarnings)
		shared.GET("/tahapan-options", d.Query.TahapanOptions)
		shared.GET("/charts/os-bucket", d.Query.OSBucketChart)
		shared.GET("/charts/kanal", d.Query.KanalChart)
		shared.GET("/charts/jenis", d.Query.JenisChart)
		shared.GET("/dashboard/totals", d.Query.DashboardTotals)
	}

	return r
}
