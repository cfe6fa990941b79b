package pkg

import (
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"postforge/pkg/utils"
)

// MountRoutes wires every endpoint onto the engine. The trigger-due
// route authenticates with the cron secret instead of a tenant key, so
// it lives outside the tenant group.
func (s *Server) MountRoutes(engine *gin.Engine) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.AbortWithStatus(http.StatusOK)
	})

	public := engine.Group("/public")
	{
		public.GET("/posts", utils.WrapRequest(s.listPublicPosts))
		public.GET("/posts/featured", utils.WrapRequest(s.getFeaturedPosts))
		public.GET("/posts/slug/:slug", utils.WrapRequest(s.getPublicPostBySlug))
	}

	engine.POST("/schedules/trigger-due", utils.WrapRequest(s.triggerDueSchedules))

	authed := engine.Group("", TenantAuth(s.store))
	{
		authed.POST("/schedules", utils.WrapRequest(s.createSchedule))
		authed.GET("/schedules", utils.WrapRequest(s.listSchedules))
		authed.GET("/schedules/stats", utils.WrapRequest(s.scheduleStats))
		authed.GET("/schedules/:id", utils.WrapRequest(s.getSchedule))
		authed.PUT("/schedules/:id", utils.WrapRequest(s.updateSchedule))
		authed.DELETE("/schedules/:id", utils.WrapRequest(s.deleteSchedule))
		authed.POST("/schedules/:id/run", utils.WrapRequest(s.runSchedule))
		authed.POST("/schedules/:id/toggle", utils.WrapRequest(s.toggleSchedule))

		authed.POST("/agents", utils.WrapRequest(s.createAgent))
		authed.GET("/agents", utils.WrapRequest(s.listAgents))
		authed.GET("/agents/:id", utils.WrapRequest(s.getAgent))
		authed.PUT("/agents/:id", utils.WrapRequest(s.updateAgent))
		authed.DELETE("/agents/:id", utils.WrapRequest(s.deleteAgent))

		authed.GET("/posts", utils.WrapRequest(s.listPosts))
		authed.GET("/posts/:id", utils.WrapRequest(s.getPost))
		authed.POST("/posts/:id/publish", utils.WrapRequest(s.publishPost))
		authed.DELETE("/posts/:id", utils.WrapRequest(s.deletePost))

		authed.POST("/topics/suggest", utils.WrapRequest(s.suggestTopics))
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithField("config", spew.Sdump(s.config)).Debug("mounted routes")
	} else {
		logrus.Info("mounted routes")
	}
}
