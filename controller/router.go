package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the study API routes onto a gin engine.
func NewRouter(c *StudyController, version string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors())

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "StudySense API",
			"version": version,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/subjects", c.ListSubjects)
		apiV1.POST("/subjects", c.CreateSubject)
		apiV1.DELETE("/subjects/:subject", c.DeleteSubject)

		apiV1.GET("/subjects/:subject/notes", c.ListNotes)
		apiV1.POST("/subjects/:subject/notes", c.UploadNotes)

		apiV1.GET("/subjects/:subject/flashcards", c.ListFlashcards)
		apiV1.POST("/subjects/:subject/flashcards", c.SaveFlashcard)
		apiV1.DELETE("/subjects/:subject/flashcards/:id", c.DeleteFlashcard)

		apiV1.POST("/ask", c.Ask)
		apiV1.POST("/practice", c.Practice)
		apiV1.POST("/evaluate", c.Evaluate)
		apiV1.POST("/flashcards/generate", c.GenerateFlashcards)
	}
	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
