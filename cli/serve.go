package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/quizwhiz/quizwhiz-backend/config"
	"github.com/quizwhiz/quizwhiz-backend/middleware"
	"github.com/quizwhiz/quizwhiz-backend/routes"
	"github.com/quizwhiz/quizwhiz-backend/services"
	"github.com/quizwhiz/quizwhiz-backend/utils"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the QuizWhiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), flags.configPath, port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "port to listen on (overrides PORT)")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	utils.InitJWT(cfg.JWTSecret, cfg.TokenTTL)

	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}
	log.Println("postgreSQL migrated successfully!")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deps := routes.Deps{
		DB:             db,
		Avatars:        utils.NewAvatarStorage(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Bucket),
		GoogleClientID: cfg.GoogleClientID,
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		defer gemini.Close()
		deps.Generator = services.NewQuestionGenerator(gemini)
	} else {
		log.Println("GEMINI_API_KEY not set, /quiz/generate is disabled")
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		deps.Limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	} else {
		limiter := middleware.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		utils.StartCleanupJob(ctx, "rate limiter", 10*time.Minute, func() {
			if n := limiter.Sweep(); n > 0 {
				log.Printf("rate limiter: dropped %d expired windows", n)
			}
		})
		deps.Limiter = limiter
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "auth-token"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit"},
		AllowCredentials: true,
	}))
	routes.SetupRouter(r, deps)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Println("Server running at Port:" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
