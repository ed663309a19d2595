package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepdiary/internal/metrics"
	"github.com/yourname/sleepdiary/internal/response"
)

// NewRouter wires the diary routes and the operational endpoints.
func NewRouter(app App) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(app.Logger()))
	r.Use(RecoveryMiddleware(app.Logger()))
	r.Use(metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OK())
	})
	r.GET("/metrics", metrics.Handler())

	user := r.Group("/user/:userId")
	user.GET("/diaries", ListDiaries(app))
	user.POST("/diary", PostDiary(app))
	user.PUT("/diary/:diaryId", PutDiary(app))
	user.DELETE("/diary/:diaryId", DeleteDiary(app))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.NotFound("Not Found"))
	})
	return r
}
