package routes

import (
	"time"

	"eventhall-backend/config"
	"eventhall-backend/controllers"
	"eventhall-backend/metrics"
	"eventhall-backend/models"
	"eventhall-backend/services"
	"eventhall-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the shared components handlers are built from.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	Metrics   *metrics.Metrics
	Tokens    *utils.TokenManager
	Blacklist utils.TokenBlacklist
	Finance   *services.FinanceService
	Events    *services.EventService
	Payments  *services.PaymentService
	Expenses  *services.ExpenseService
}

func SetupRouter(d Deps) *gin.Engine {
	utils.SetupValidator()
	if d.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(config.Recovery(d.Log))
	r.Use(config.PerformanceLogger(d.Log, d.Config.HTTP.SlowRequest))
	r.Use(d.Metrics.GinMiddleware())

	origins := d.Config.HTTP.CORSAllowOrigins
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", controllers.Health(d.DB))
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	authMW := utils.AuthMiddleware(d.Tokens, d.Blacklist)
	adminOnly := utils.RequireRole(models.RoleAdmin)

	authController := controllers.NewAuthController(d.DB, d.Tokens, d.Blacklist, d.Log)
	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)

		auth.Use(authMW)
		auth.GET("/me", authController.Me)
		auth.POST("/logout", authController.Logout)
		auth.POST("/change-password", authController.ChangePassword)
	}

	api := r.Group("/api")
	api.Use(authMW)
	{
		userController := controllers.NewUserController(d.DB)
		users := api.Group("/users")
		{
			users.PUT("/me", userController.UpdateProfile)
			users.GET("", adminOnly, userController.ListUsers)
			users.PUT("/:id", adminOnly, userController.UpdateUser)
		}

		eventController := controllers.NewEventController(d.DB, d.Events, d.Finance)
		events := api.Group("/events")
		{
			events.POST("", eventController.CreateEvent)
			events.GET("", eventController.GetEvents)
			events.GET("/upcoming", eventController.GetUpcomingEvents)
			events.GET("/stats/overview", eventController.GetEventStats)
			events.GET("/:id", eventController.GetEvent)
			events.PUT("/:id", eventController.UpdateEvent)
			events.POST("/:id/cancel", eventController.CancelEvent)
			events.PUT("/:id/assignments", eventController.AssignEmployees)
			events.POST("/:id/recompute", adminOnly, eventController.RecomputeEvent)
			events.DELETE("/:id", adminOnly, eventController.DeleteEvent)
		}

		paymentController := controllers.NewPaymentController(d.DB, d.Payments)
		payments := api.Group("/payments")
		{
			payments.POST("", paymentController.CreatePayment)
			payments.GET("", paymentController.GetPayments)
			payments.GET("/outstanding", paymentController.GetOutstanding)
			payments.GET("/stats/overview", paymentController.GetPaymentStats)
			payments.GET("/event/:event_id", paymentController.GetEventPayments)
			payments.GET("/:id", paymentController.GetPayment)
			payments.PUT("/:id", paymentController.UpdatePayment)
			payments.POST("/:id/verify", paymentController.VerifyPayment)
			payments.POST("/:id/refund", adminOnly, paymentController.RefundPayment)
			payments.DELETE("/:id", adminOnly, paymentController.DeletePayment)
		}

		employeeController := controllers.NewEmployeeController(d.DB)
		employees := api.Group("/employees")
		{
			employees.GET("", employeeController.GetEmployees)
			employees.POST("", employeeController.CreateEmployee)
			employees.GET("/stats/overview", employeeController.GetEmployeeStats)
			employees.GET("/:id", employeeController.GetEmployee)
			employees.PUT("/:id", employeeController.UpdateEmployee)
			employees.POST("/:id/work-shift", employeeController.AddWorkShift)
			employees.DELETE("/:id", adminOnly, employeeController.DeleteEmployee)
		}

		expenseController := controllers.NewExpenseController(d.DB, d.Expenses)
		expenses := api.Group("/expenses")
		{
			expenses.POST("", expenseController.CreateExpense)
			expenses.GET("", expenseController.GetExpenses)
			expenses.GET("/:id", expenseController.GetExpense)
			expenses.PUT("/:id", expenseController.UpdateExpense)
			expenses.DELETE("/:id", expenseController.DeleteExpense)
		}

		taskController := controllers.NewTaskController(d.DB, d.Log)
		tasks := api.Group("/tasks")
		{
			tasks.POST("", taskController.CreateTask)
			tasks.GET("", taskController.GetTasks)
			tasks.GET("/my-tasks", taskController.GetMyTasks)
			tasks.GET("/stats/summary", taskController.GetTaskStats)
			tasks.GET("/:id", taskController.GetTask)
			tasks.PUT("/:id", taskController.UpdateTask)
			tasks.POST("/:id/comments", taskController.AddComment)
			tasks.PUT("/:id/checklist", taskController.UpdateChecklist)
			tasks.POST("/:id/complete", taskController.CompleteTask)
			tasks.DELETE("/:id", taskController.DeleteTask)
		}

		reminderController := controllers.NewReminderController(d.DB)
		reminders := api.Group("/reminders")
		{
			reminders.POST("", reminderController.CreateReminder)
			reminders.GET("", reminderController.GetReminders)
			reminders.GET("/:id", reminderController.GetReminder)
			reminders.PUT("/:id", reminderController.UpdateReminder)
			reminders.POST("/:id/complete", reminderController.CompleteReminder)
			reminders.DELETE("/:id", reminderController.DeleteReminder)
		}

		reportController := controllers.NewReportController(d.DB)
		api.GET("/reports/summary", reportController.GetSummary)
		api.GET("/reports/dashboard", reportController.GetDashboard)
		api.GET("/reports/profitability", reportController.GetProfitability)
	}

	return r
}
