package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quizwhiz/quizwhiz-backend/controllers"
	"github.com/quizwhiz/quizwhiz-backend/middleware"
	"github.com/quizwhiz/quizwhiz-backend/ws"
)

// Deps are the services handlers need beyond the database. Nil members
// disable the routes that depend on them with 503.
type Deps struct {
	DB             *gorm.DB
	Generator      controllers.QuestionGenerator
	Avatars        controllers.AvatarUploader
	Limiter        middleware.Limiter
	GoogleClientID string
}

func SetupRouter(r *gin.Engine, deps Deps) *gin.Engine {
	r.Use(middleware.DBMiddleware(deps.DB))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "QuizWhiz server is running")
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck(controllers.Features{
		Generator:   deps.Generator != nil,
		Avatars:     deps.Avatars != nil && deps.Avatars.Enabled(),
		RateLimit:   deps.Limiter != nil,
		GoogleLogin: deps.GoogleClientID != "",
	}))

	user := r.Group("/user")
	{
		user.POST("/createuser", controllers.CreateUser)
		user.POST("/checkuser", controllers.CheckUser)
		user.POST("/logingoogle", controllers.GoogleLogin(deps.GoogleClientID))

		authed := user.Group("", middleware.AuthMiddleware())
		authed.POST("/getuser", controllers.GetUser)
		authed.PUT("/updateuser", controllers.UpdateUser)
		authed.PUT("/avatar", controllers.UploadAvatar(deps.Avatars))
		authed.PUT("/updatepassword", controllers.UpdatePassword)
		authed.DELETE("/deleteaccount", controllers.DeleteAccount)
	}

	quiz := r.Group("/quiz", middleware.OptionalAuthMiddleware())
	{
		if deps.Limiter != nil {
			quiz.Use(middleware.RateLimit(deps.Limiter))
		}
		quiz.POST("/generate", controllers.GenerateQuiz(deps.Generator))
	}

	results := r.Group("/results", middleware.AuthMiddleware())
	{
		results.POST("/SaveQuizResults", controllers.SaveQuizResults)
		results.GET("/GetUserResults", controllers.GetUserResults)
		results.DELETE("/ClearUserResults", controllers.ClearUserResults)
		results.GET("/stats", controllers.GetStats)
	}

	r.GET("/ws/results", ws.HandleResultsWebSocket)

	return r
}
