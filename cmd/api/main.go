package main

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

	"github.com/yourusername/beams-api/internal/config"
	"github.com/yourusername/beams-api/internal/handler"
	"github.com/yourusername/beams-api/internal/middleware"
	pgRepo "github.com/yourusername/beams-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/beams-api/internal/repository/redis"
	"github.com/yourusername/beams-api/internal/service"
	"github.com/yourusername/beams-api/pkg/auth"
	"github.com/yourusername/beams-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	pointsRepo := pgRepo.NewPointsRepo(db)
	levelRepo := pgRepo.NewLevelRepo(db)
	leaderboardRepo := pgRepo.NewLeaderboardRepo(db)
	referralRepo := pgRepo.NewReferralRepo(db)
	achievementRepo := pgRepo.NewAchievementRepo(db)
	beamsTodayRepo := pgRepo.NewBeamsTodayRepo(db)
	pollRepo := pgRepo.NewPollRepo(db)
	theatreRepo := pgRepo.NewTheatreRepo(db)
	wordGameRepo := pgRepo.NewWordGameRepo(db)
	completionRepo := pgRepo.NewCompletionRepo(db)
	emailVerificationRepo := pgRepo.NewEmailVerificationRepo(db)
	twoFactorRepo := pgRepo.NewTwoFactorRepo(db)
	identityRepo := pgRepo.NewUserIdentityRepo(db)
	shortLinkRepo := pgRepo.NewShortLinkRepo(db)

	refreshTokenRepo, err := pgRepo.NewRefreshTokenRepo(db)
	if err != nil {
		log.Printf("Failed to initialize RefreshTokenRepo: %v", err)
		os.Exit(1)
	}

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// --- Инициализация JWT и менеджера refresh-токенов ---
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	tokenManager, err := auth.NewRefreshTokenManager(refreshTokenRepo)
	if err != nil {
		log.Printf("Failed to initialize RefreshTokenManager: %v", err)
		os.Exit(1)
	}

	// --- Почта: Resend в production, no-op при выключенной отправке ---
	var emailService service.EmailService
	if cfg.Email.Enabled {
		emailService, err = service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
		log.Println("Email sending enabled (Resend)")
	} else {
		emailService = &service.NoopEmailService{}
		log.Println("Email sending disabled, codes are logged only")
	}

	// --- Медиа: Cloudinary для аватаров ---
	var mediaUploader service.MediaUploader
	if cfg.Cloudinary.Enabled {
		mediaUploader, err = service.NewCloudinaryMediaService(cfg.Cloudinary)
		if err != nil {
			log.Printf("Failed to initialize CloudinaryMediaService: %v", err)
			os.Exit(1)
		}
		log.Println("Avatar uploads enabled (Cloudinary)")
	} else {
		mediaUploader = &service.NoopMediaUploader{}
	}

	// --- Сервисы ---
	pointsService, err := service.NewPointsService(db, pointsRepo, userRepo, levelRepo)
	if err != nil {
		log.Printf("Failed to initialize PointsService: %v", err)
		os.Exit(1)
	}

	achievementService, err := service.NewAchievementService(achievementRepo, completionRepo, pointsService)
	if err != nil {
		log.Printf("Failed to initialize AchievementService: %v", err)
		os.Exit(1)
	}

	leaderboardService, err := service.NewLeaderboardService(
		db,
		pointsRepo,
		leaderboardRepo,
		userRepo,
		cacheRepo,
		cfg.Leaderboard.MinEntries,
		time.Duration(cfg.Leaderboard.CacheTTLSec)*time.Second,
	)
	if err != nil {
		log.Printf("Failed to initialize LeaderboardService: %v", err)
		os.Exit(1)
	}

	referralService, err := service.NewReferralService(
		referralRepo,
		userRepo,
		pointsRepo,
		pointsService,
		emailService,
		cfg.Referral.RewardPoints,
	)
	if err != nil {
		log.Printf("Failed to initialize ReferralService: %v", err)
		os.Exit(1)
	}

	emailVerificationService, err := service.NewEmailVerificationService(
		userRepo,
		emailVerificationRepo,
		emailService,
		referralService, // награда рефереру по факту подтверждения почты
		cfg.Auth.VerificationTTL(),
		cfg.Auth.ResendCooldown(),
		cfg.Auth.MaxVerifyAttempts,
		cfg.Auth.CodePepper,
	)
	if err != nil {
		log.Printf("Failed to initialize EmailVerificationService: %v", err)
		os.Exit(1)
	}

	twoFactorService, err := service.NewTwoFactorService(
		userRepo,
		twoFactorRepo,
		emailService,
		cfg.Auth.TwoFactorTTL(),
		cfg.Auth.CodePepper,
	)
	if err != nil {
		log.Printf("Failed to initialize TwoFactorService: %v", err)
		os.Exit(1)
	}

	authService, err := service.NewAuthService(userRepo, jwtService, tokenManager)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	authService.ConfigureEmailVerification(emailVerificationService, cfg.Auth.EmailVerificationEnabled)
	authService.ConfigureTwoFactor(twoFactorService)
	authService.ConfigureReferrals(referralService)

	var googleOAuthService *service.GoogleOAuthService
	if cfg.GoogleOAuth.Enabled {
		googleOAuthService, err = service.NewGoogleOAuthService(
			userRepo,
			identityRepo,
			jwtService,
			tokenManager,
			referralService,
			cfg.GoogleOAuth,
		)
		if err != nil {
			log.Printf("Failed to initialize GoogleOAuthService: %v", err)
			os.Exit(1)
		}
		log.Println("Google OAuth sign-in enabled")
	}

	userService, err := service.NewUserService(userRepo, mediaUploader)
	if err != nil {
		log.Printf("Failed to initialize UserService: %v", err)
		os.Exit(1)
	}

	contentService, err := service.NewContentService(
		beamsTodayRepo,
		pollRepo,
		theatreRepo,
		wordGameRepo,
		completionRepo,
		pointsService,
		achievementService,
	)
	if err != nil {
		log.Printf("Failed to initialize ContentService: %v", err)
		os.Exit(1)
	}

	shortLinkService, err := service.NewShortLinkService(shortLinkRepo, cfg.Server.BaseURL)
	if err != nil {
		log.Printf("Failed to initialize ShortLinkService: %v", err)
		os.Exit(1)
	}

	// --- Обработчики ---
	accessTTL := time.Duration(cfg.JWT.ExpirationHrs) * time.Hour
	authHandler := handler.NewAuthHandler(authService, googleOAuthService, accessTTL)
	userHandler := handler.NewUserHandler(userService, emailVerificationService)
	gamificationHandler := handler.NewGamificationHandler(pointsService, leaderboardService, achievementService)
	referralHandler := handler.NewReferralHandler(referralService)
	contentHandler := handler.NewContentHandler(contentService)
	adminContentHandler := handler.NewAdminContentHandler(contentService)
	shortLinkHandler := handler.NewShortLinkHandler(shortLinkService, cfg.ShortLink.NotFoundURL)

	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode

	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://beams.example.com", "http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Публичный резолвер коротких ссылок (вне /api)
	router.GET("/s/:path", shortLinkHandler.Resolve)

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Аутентификация
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.Register)
			authGroup.POST("/login", rateLimiter.Limit(middleware.DefaultAuthRateLimitConfig()), authHandler.Login)
			authGroup.POST("/login/2fa", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), authHandler.CompleteTwoFactorLogin)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/google", rateLimiter.Limit(middleware.DefaultAuthRateLimitConfig()), authHandler.GoogleAuth)

			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.POST("/logout-all", authHandler.LogoutAll)
				authedAuth.POST("/change-password", authHandler.ChangePassword)
			}
		}

		// Профиль и настройки
		users := api.Group("/users")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/me", userHandler.GetProfile)
			users.PATCH("/me", userHandler.UpdateProfile)
			users.POST("/me/avatar", userHandler.UploadAvatar)
			users.PUT("/me/two-factor", userHandler.SetTwoFactor)

			verification := users.Group("/me/verification")
			{
				verification.GET("", userHandler.VerificationStatus)
				verification.POST("/send", rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()), userHandler.SendVerificationCode)
				verification.POST("/confirm", userHandler.ConfirmVerification)
			}
		}

		// Геймификация: баланс, уровни, достижения
		gamification := api.Group("/gamification")
		gamification.Use(authMiddleware.RequireAuth())
		{
			gamification.GET("/balance", gamificationHandler.GetBalance)
			gamification.GET("/history", gamificationHandler.GetHistory)
			gamification.GET("/level", gamificationHandler.GetLevelProgress)
			gamification.GET("/achievements", gamificationHandler.ListAchievements)
		}

		// Лидерборд: просмотр с авторизацией, триггер обновления — без
		api.GET("/leaderboard", rateLimiter.Limit(middleware.RefreshRateLimitConfig()), gamificationHandler.RefreshLeaderboard)
		leaderboard := api.Group("/leaderboard")
		leaderboard.Use(authMiddleware.RequireAuth())
		{
			leaderboard.GET("/current", gamificationHandler.GetLeaderboard)
			leaderboard.GET("/me", gamificationHandler.GetUserRank)
		}

		// Реферальная программа
		referrals := api.Group("/referrals")
		referrals.Use(authMiddleware.RequireAuth())
		{
			referrals.GET("/code", referralHandler.GetCode)
			referrals.GET("/stats", referralHandler.GetStats)
			referrals.POST("/redeem", referralHandler.Redeem)
		}

		// Beams Today
		beamsToday := api.Group("/beams-today")
		beamsToday.Use(authMiddleware.RequireAuth())
		{
			beamsToday.GET("", contentHandler.ListBeamsToday)
			beamsToday.GET("/today", contentHandler.GetToday)
			beamsToday.GET("/range", contentHandler.ListBeamsTodayRange)

			adminCreate := beamsToday.Group("")
			adminCreate.Use(authMiddleware.AdminOnly())
			{
				adminCreate.POST("", adminContentHandler.CreateBeamsToday)
			}

			itemWithID := beamsToday.Group("/:id")
			itemWithID.Use(middleware.ExtractUintParam("id", "contentID"))
			{
				itemWithID.GET("", contentHandler.GetBeamsTodayByID)
				itemWithID.POST("/complete", contentHandler.CompleteBeamsToday)
				itemWithID.GET("/poll", contentHandler.GetPoll)
				itemWithID.POST("/poll/answer", contentHandler.AnswerPoll)

				adminItem := itemWithID.Group("")
				adminItem.Use(authMiddleware.AdminOnly())
				{
					adminItem.PUT("", adminContentHandler.UpdateBeamsToday)
					adminItem.DELETE("", adminContentHandler.DeleteBeamsToday)
					adminItem.POST("/poll", adminContentHandler.CreatePoll)
				}
			}
		}

		// Beams Theatre
		theatre := api.Group("/theatre")
		theatre.Use(authMiddleware.RequireAuth())
		{
			theatre.GET("", contentHandler.ListTheatre)
			theatre.GET("/series", contentHandler.ListTheatreSeries)

			adminCreate := theatre.Group("")
			adminCreate.Use(authMiddleware.AdminOnly())
			{
				adminCreate.POST("", adminContentHandler.CreateTheatreVideo)
			}

			videoWithID := theatre.Group("/:id")
			videoWithID.Use(middleware.ExtractUintParam("id", "videoID"))
			{
				videoWithID.GET("", contentHandler.GetTheatreVideo)
				videoWithID.POST("/complete", contentHandler.CompleteTheatreVideo)

				adminVideo := videoWithID.Group("")
				adminVideo.Use(authMiddleware.AdminOnly())
				{
					adminVideo.PUT("", adminContentHandler.UpdateTheatreVideo)
					adminVideo.DELETE("", adminContentHandler.DeleteTheatreVideo)
				}
			}
		}

		// Игра "связь слов"
		wordGame := api.Group("/word-game")
		wordGame.Use(authMiddleware.RequireAuth())
		{
			wordGame.GET("/daily", contentHandler.GetDailyPuzzle)
			wordGame.POST("/:id/guess", middleware.ExtractUintParam("id", "puzzleID"), contentHandler.SubmitWordGuess)

			adminWordGame := wordGame.Group("")
			adminWordGame.Use(authMiddleware.AdminOnly())
			{
				adminWordGame.POST("", adminContentHandler.CreateWordPuzzle)
			}
		}

		// Избранное
		favorites := api.Group("/favorites")
		favorites.Use(authMiddleware.RequireAuth())
		{
			favorites.GET("", contentHandler.ListFavorites)
			favorites.POST("", contentHandler.AddFavorite)
			favorites.DELETE("", contentHandler.RemoveFavorite)
		}

		// Короткие ссылки (управление)
		shortLinks := api.Group("/short-links")
		shortLinks.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			shortLinks.POST("", shortLinkHandler.Create)
			shortLinks.GET("", shortLinkHandler.List)
		}
	}

	// Контекст для фоновых задач, завершается при остановке сервера
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Фоновая материализация лидерборда
	refreshInterval := time.Duration(cfg.Leaderboard.RefreshIntervalMin) * time.Minute
	if refreshInterval <= 0 {
		refreshInterval = 15 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := leaderboardService.RefreshWindow(time.Now()); err != nil {
					log.Printf("[Main] Ошибка фонового обновления лидерборда: %v", err)
				}
			}
		}
	}()

	// Периодическая чистка истекших refresh-токенов
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed, err := tokenManager.Cleanup(); err != nil {
					log.Printf("[Main] Ошибка чистки refresh-токенов: %v", err)
				} else if removed > 0 {
					log.Printf("[Main] Удалено %d истекших refresh-токенов", removed)
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем фоновые задачи
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
