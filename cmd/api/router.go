package api

import (
	"net/http"

	activityrepo "outreach-backend/internal/activity/repository"
	authDelivery "outreach-backend/internal/auth/delivery"
	leadDelivery "outreach-backend/internal/lead/delivery"
	notifyDelivery "outreach-backend/internal/notify/delivery"
	outreachDelivery "outreach-backend/internal/outreach/delivery"
	planDelivery "outreach-backend/internal/plan/delivery"
	quotaDelivery "outreach-backend/internal/quota/delivery"
	"outreach-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Lead     *leadDelivery.LeadHandler
	Outreach *outreachDelivery.OutreachHandler
	Plan     *planDelivery.PlanHandler
	Settings *quotaDelivery.SettingsHandler
	Notify   *notifyDelivery.NotifyHandler
	Activity activityrepo.ActivityRepository
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, h Handlers) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		authed := api.Group("")
		authed.Use(authDelivery.AuthMiddleware(cfg.JWTSecret))
		{
			leads := authed.Group("/leads")
			{
				leads.GET("", h.Lead.GetLeads)
				leads.POST("", h.Lead.CreateLead)
				leads.GET("/actionable", h.Lead.GetActionable)
				leads.GET("/:id", h.Lead.GetLeadByID)
			}

			outreach := authed.Group("/outreach")
			{
				outreach.GET("/quota", h.Outreach.GetQuota)
				outreach.POST("/tasks", h.Outreach.CreateTask)
				outreach.GET("/tasks", h.Outreach.GetTasks)
				outreach.GET("/tasks/:id", h.Outreach.GetTaskByID)
				outreach.PUT("/tasks/:id", h.Outreach.EditTask)
				outreach.POST("/tasks/:id/approve", h.Outreach.ApproveTask)
				outreach.POST("/tasks/:id/reject", h.Outreach.RejectTask)
				outreach.POST("/tasks/:id/reschedule", h.Outreach.RescheduleTask)
				outreach.POST("/tasks/:id/send-now", h.Outreach.SendNow)
				outreach.POST("/tasks/:id/retry", h.Outreach.RetryTask)
				outreach.POST("/tasks/:id/cancel", h.Outreach.CancelTask)
				outreach.POST("/tasks/:id/restore", h.Outreach.RestoreTask)
				outreach.POST("/tasks/:id/done", h.Outreach.MarkDone)
				outreach.POST("/tasks/:id/outcome", h.Outreach.ReportOutcome)
			}

			plans := authed.Group("/plans")
			{
				plans.POST("", h.Plan.GeneratePlan)
				plans.GET("/:id", h.Plan.GetPlan)
				plans.POST("/:id/revise", h.Plan.RevisePlan)
				plans.POST("/:id/execute", h.Plan.ExecutePlan)
			}

			settings := authed.Group("/settings")
			{
				settings.GET("/outreach", h.Settings.GetSettings)
				settings.PUT("/outreach", h.Settings.UpdateSettings)
			}

			notifications := authed.Group("/notifications")
			{
				notifications.POST("/tokens", h.Notify.RegisterToken)
				notifications.DELETE("/tokens/:token", h.Notify.UnregisterToken)
			}

			authed.GET("/activities", func(c *gin.Context) {
				consultantID := c.GetString("consultantID")
				activities, err := h.Activity.FindByConsultant(consultantID, 50, 0)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				c.JSON(http.StatusOK, gin.H{"activities": activities})
			})
		}
	}
}
