package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"viralacademy.com/academy/internal/authz"
	"viralacademy.com/academy/internal/config"
	"viralacademy.com/academy/internal/middleware"
	"viralacademy.com/academy/internal/scheduler"
	"viralacademy.com/academy/pkg/events"
	"viralacademy.com/academy/pkg/mailer"
	"viralacademy.com/academy/pkg/obfuscate"
	"viralacademy.com/academy/pkg/ratelimit"
	"viralacademy.com/academy/pkg/storage"

	adminHttp "viralacademy.com/academy/internal/modules/admin/delivery/http"
	adminService "viralacademy.com/academy/internal/modules/admin/service"

	attachmentHttp "viralacademy.com/academy/internal/modules/attachment/delivery/http"
	attachmentRepo "viralacademy.com/academy/internal/modules/attachment/repository"
	attachmentService "viralacademy.com/academy/internal/modules/attachment/service"

	billingHttp "viralacademy.com/academy/internal/modules/billing/delivery/http"
	billingProvider "viralacademy.com/academy/internal/modules/billing/provider"
	billingRepo "viralacademy.com/academy/internal/modules/billing/repository"
	billingService "viralacademy.com/academy/internal/modules/billing/service"

	categoryHttp "viralacademy.com/academy/internal/modules/category/delivery/http"
	categoryRepo "viralacademy.com/academy/internal/modules/category/repository"
	categoryService "viralacademy.com/academy/internal/modules/category/service"

	certificateHttp "viralacademy.com/academy/internal/modules/certificate/delivery/http"
	certificateRepo "viralacademy.com/academy/internal/modules/certificate/repository"
	certificateService "viralacademy.com/academy/internal/modules/certificate/service"

	commentHttp "viralacademy.com/academy/internal/modules/comment/delivery/http"
	commentRepo "viralacademy.com/academy/internal/modules/comment/repository"
	commentService "viralacademy.com/academy/internal/modules/comment/service"

	courseHttp "viralacademy.com/academy/internal/modules/course/delivery/http"
	courseRepo "viralacademy.com/academy/internal/modules/course/repository"
	courseService "viralacademy.com/academy/internal/modules/course/service"

	moduleHttp "viralacademy.com/academy/internal/modules/coursemodule/delivery/http"
	moduleRepo "viralacademy.com/academy/internal/modules/coursemodule/repository"
	moduleService "viralacademy.com/academy/internal/modules/coursemodule/service"

	enrollmentHttp "viralacademy.com/academy/internal/modules/enrollment/delivery/http"
	enrollmentRepo "viralacademy.com/academy/internal/modules/enrollment/repository"
	enrollmentService "viralacademy.com/academy/internal/modules/enrollment/service"

	leaderboardHttp "viralacademy.com/academy/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "viralacademy.com/academy/internal/modules/leaderboard/repository"
	leaderboardService "viralacademy.com/academy/internal/modules/leaderboard/service"

	lessonHttp "viralacademy.com/academy/internal/modules/lesson/delivery/http"
	lessonRepo "viralacademy.com/academy/internal/modules/lesson/repository"
	lessonService "viralacademy.com/academy/internal/modules/lesson/service"

	likeHttp "viralacademy.com/academy/internal/modules/like/delivery/http"
	likeRepo "viralacademy.com/academy/internal/modules/like/repository"
	likeService "viralacademy.com/academy/internal/modules/like/service"

	liveEventHttp "viralacademy.com/academy/internal/modules/liveevent/delivery/http"
	liveEventRepo "viralacademy.com/academy/internal/modules/liveevent/repository"
	liveEventService "viralacademy.com/academy/internal/modules/liveevent/service"

	notiHttp "viralacademy.com/academy/internal/modules/notification/delivery/http"
	notifRepo "viralacademy.com/academy/internal/modules/notification/repository"
	notifService "viralacademy.com/academy/internal/modules/notification/service"

	postHttp "viralacademy.com/academy/internal/modules/post/delivery/http"
	postRepo "viralacademy.com/academy/internal/modules/post/repository"
	postService "viralacademy.com/academy/internal/modules/post/service"

	profileHttp "viralacademy.com/academy/internal/modules/profile/delivery/http"
	profileRepo "viralacademy.com/academy/internal/modules/profile/repository"
	profileService "viralacademy.com/academy/internal/modules/profile/service"

	resourceHttp "viralacademy.com/academy/internal/modules/resource/delivery/http"
	resourceRepo "viralacademy.com/academy/internal/modules/resource/repository"
	resourceService "viralacademy.com/academy/internal/modules/resource/service"

	searchHttp "viralacademy.com/academy/internal/modules/search/delivery/http"
	searchService "viralacademy.com/academy/internal/modules/search/service"

	statHttp "viralacademy.com/academy/internal/modules/stat/delivery/http"
	statService "viralacademy.com/academy/internal/modules/stat/service"

	viewService "viralacademy.com/academy/internal/modules/view/service"

	userHttp "viralacademy.com/academy/internal/modules/user/delivery/http"
	userRepo "viralacademy.com/academy/internal/modules/user/repository"
	userService "viralacademy.com/academy/internal/modules/user/service"
)

const (
	jobTimeout      = 2 * time.Minute
	shutdownTimeout = 15 * time.Second
)

type Server struct {
	cfg         *config.Config
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *scheduler.Scheduler
	publisher   events.Publisher
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	fileStorage, err := storage.NewCloudinaryStorage(storage.CloudinaryConfig{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	})
	if err != nil {
		log.Warn().Err(err).Msg("cloudinary not configured, uploads disabled")
		fileStorage = storage.Disabled()
	}

	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		meiliClient = meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		log.Warn().Msg("MEILISEARCH_HOST not set, search disabled")
	}
	searchSvc := searchService.NewSearchService(meiliClient)

	mail := mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	publisher := events.NewPublisher(events.KafkaConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaMediaTopic,
	})
	limiter := ratelimit.New(redisClient)
	encoder := obfuscate.New(cfg.VideoObfuscationKey)

	// Repositories
	userRepository := userRepo.NewUserRepository(db)
	profileRepository := profileRepo.NewProfileRepository(db)
	subscriptionRepository := billingRepo.NewSubscriptionRepository(db)
	courseRepository := courseRepo.NewCourseRepository(db)
	moduleRepository := moduleRepo.NewModuleRepository(db)
	lessonRepository := lessonRepo.NewLessonRepository(db)
	resourceRepository := resourceRepo.NewResourceRepository(db)
	enrollmentRepository := enrollmentRepo.NewEnrollmentRepository(db)
	certificateRepository := certificateRepo.NewCertificateRepository(db)
	liveEventRepository := liveEventRepo.NewLiveEventRepository(db)
	categoryRepository := categoryRepo.NewCategoryRepository(db)
	postRepository := postRepo.NewPostRepository(db)
	commentRepository := commentRepo.NewCommentRepository(db)
	likeRepository := likeRepo.NewLikeRepository(db)
	notificationRepository := notifRepo.NewNotificationRepository(db)
	attachmentRepository := attachmentRepo.NewAttachmentRepository(db)

	// Services
	notificationSvc := notifService.NewNotificationService(notificationRepository, userRepository, redisClient)

	authSvc := userService.NewAuthService(userRepository, mail, userService.Config{
		Secret:             cfg.JWTSecret,
		TokenTTL:           cfg.JWTTTL,
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		GoogleRedirectURL:  cfg.GoogleRedirectURL,
	})
	adminSvc := adminService.NewAdminService(userRepository, notificationSvc)
	profileSvc := profileService.NewProfileService(profileRepository, userRepository)
	statSvc := statService.NewStatService(userRepository, subscriptionRepository, courseRepository, enrollmentRepository)

	billingSvc := billingService.NewBillingService(
		subscriptionRepository,
		billingProvider.NewStripe(billingProvider.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
		}),
		userRepository,
		notificationSvc,
		billingService.Config{
			PriceID:         cfg.StripePriceID,
			SuccessURL:      cfg.BillingSuccessURL,
			CancelURL:       cfg.BillingCancelURL,
			PortalReturnURL: cfg.BillingPortalReturnURL,
		},
	)

	courseSvc := courseService.NewCourseService(courseRepository, enrollmentRepository, searchSvc)
	moduleSvc := moduleService.NewModuleService(moduleRepository)
	certificateSvc := certificateService.NewCertificateService(
		certificateRepository, lessonRepository, courseRepository, userRepository, notificationSvc, mail,
		certificateService.Config{AppURL: cfg.AppURL},
	)
	lessonSvc := lessonService.NewLessonService(lessonRepository, courseRepository, enrollmentRepository, certificateSvc, encoder, publisher)
	resourceSvc := resourceService.NewResourceService(resourceRepository, courseRepository, enrollmentRepository)
	enrollmentSvc := enrollmentService.NewEnrollmentService(
		enrollmentRepository, courseRepository, billingSvc, lessonRepository, userRepository, notificationSvc, mail,
		enrollmentService.Config{AppURL: cfg.AppURL},
	)
	liveEventSvc := liveEventService.NewLiveEventService(liveEventRepository, notificationSvc, liveEventService.Config{})

	categorySvc := categoryService.NewCategoryService(categoryRepository)
	viewSvc := viewService.NewViewService(redisClient, postRepository)
	postSvc := postService.NewPostService(postRepository, categoryRepository, likeRepository, notificationSvc, searchSvc, viewSvc, limiter,
		postService.Config{RateLimit: cfg.RateLimitPost})
	commentSvc := commentService.NewCommentService(commentRepository, postRepository, likeRepository, notificationSvc, limiter,
		commentService.Config{RateLimit: cfg.RateLimitComment})
	likeSvc := likeService.NewLikeService(likeRepository, postRepository, commentRepository, notificationSvc)
	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepo.NewLeaderboardRepository(db), leaderboardService.Config{})

	attachmentSvc := attachmentService.NewAttachmentService(attachmentRepository, fileStorage, attachmentService.Config{
		Folder:        cfg.CloudinaryUploadFolder,
		ImageMaxBytes: cfg.UploadImageMaxBytes,
		FileMaxBytes:  cfg.UploadFileMaxBytes,
	})

	// Background jobs
	sched := scheduler.New(jobTimeout)
	if err := sched.Register(liveEventService.NewReminderJob(liveEventSvc, cfg.ReminderSchedule, cfg.ReminderWindow)); err != nil {
		return nil, err
	}
	if err := sched.Register(viewService.NewSyncJob(viewSvc, "")); err != nil {
		return nil, err
	}

	// Handlers
	h := handlers{
		auth:         userHttp.NewAuthHandler(authSvc, !cfg.IsDevelopment()),
		admin:        adminHttp.NewAdminHandler(adminSvc),
		stat:         statHttp.NewStatHandler(statSvc),
		profile:      profileHttp.NewProfileHandler(profileSvc),
		billing:      billingHttp.NewBillingHandler(billingSvc),
		course:       courseHttp.NewCourseHandler(courseSvc),
		module:       moduleHttp.NewModuleHandler(moduleSvc),
		lesson:       lessonHttp.NewLessonHandler(lessonSvc),
		resource:     resourceHttp.NewResourceHandler(resourceSvc),
		enrollment:   enrollmentHttp.NewEnrollmentHandler(enrollmentSvc),
		certificate:  certificateHttp.NewCertificateHandler(certificateSvc),
		liveEvent:    liveEventHttp.NewLiveEventHandler(liveEventSvc),
		category:     categoryHttp.NewCategoryHandler(categorySvc),
		post:         postHttp.NewPostHandler(postSvc),
		comment:      commentHttp.NewCommentHandler(commentSvc),
		like:         likeHttp.NewLikeHandler(likeSvc),
		leaderboard:  leaderboardHttp.NewLeaderboardHandler(leaderboardSvc),
		notification: notiHttp.NewNotificationHandler(notificationSvc, redisClient, originChecker(cfg.Origins())),
		attachment:   attachmentHttp.NewAttachmentHandler(attachmentSvc),
		search:       searchHttp.NewSearchHandler(searchSvc),
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.Origins())

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger("/health", "/api/notifications/ws"))

	s := &Server{
		cfg:         cfg,
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   sched,
		publisher:   publisher,
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.DebugRoutes {
		router.GET("/debug/health", s.debugHealth)
	}

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)
	api := router.Group("/api")
	api.Use(authMiddleware.ResolveSession())
	registerRoutes(api, h)

	return s, nil
}

type handlers struct {
	auth         *userHttp.AuthHandler
	admin        *adminHttp.AdminHandler
	stat         *statHttp.StatHandler
	profile      *profileHttp.ProfileHandler
	billing      *billingHttp.BillingHandler
	course       *courseHttp.CourseHandler
	module       *moduleHttp.ModuleHandler
	lesson       *lessonHttp.LessonHandler
	resource     *resourceHttp.ResourceHandler
	enrollment   *enrollmentHttp.EnrollmentHandler
	certificate  *certificateHttp.CertificateHandler
	liveEvent    *liveEventHttp.LiveEventHandler
	category     *categoryHttp.CategoryHandler
	post         *postHttp.PostHandler
	comment      *commentHttp.CommentHandler
	like         *likeHttp.LikeHandler
	leaderboard  *leaderboardHttp.LeaderboardHandler
	notification *notiHttp.NotificationHandler
	attachment   *attachmentHttp.AttachmentHandler
	search       *searchHttp.SearchHandler
}

func registerRoutes(api *gin.RouterGroup, h handlers) {
	// Public routes (identity optional)
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.auth.Register)
		auth.POST("/login", h.auth.Login)
		auth.GET("/google/login", h.auth.GoogleLogin)
		auth.GET("/google/callback", h.auth.GoogleCallback)
	}
	api.GET("/courses", h.course.ListCourses)
	api.GET("/courses/:id", h.course.GetCourse)
	api.GET("/categories", h.category.GetAllCategories)
	api.GET("/certificates/verify/:code", h.certificate.Verify)
	api.POST("/billing/webhook", h.billing.Webhook)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.GET("/auth/me", h.auth.Me)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(middleware.RequireRole(authz.Staff...))
		{
			adminGroup.GET("/users", h.admin.ListUsers)
			adminGroup.POST("/users", h.admin.CreateUser)
			adminGroup.PATCH("/users/:id", h.admin.UpdateUser)
			adminGroup.POST("/announcements", h.admin.Announce)
			adminGroup.GET("/stats", h.stat.GetStats)
		}

		// Profile routes
		protected.GET("/profile/me", h.profile.GetCurrentProfile)
		protected.PUT("/profile", h.profile.UpdateProfile)
		protected.POST("/profile/onboarding", h.profile.CompleteOnboarding)
		protected.GET("/users/:id/profile", h.profile.GetPublicProfile)

		// Billing routes
		protected.POST("/billing/checkout", h.billing.Checkout)
		protected.POST("/billing/portal", h.billing.Portal)
		protected.GET("/billing/subscription", h.billing.GetSubscription)

		// Course content routes
		protected.POST("/courses", h.course.CreateCourse)
		protected.PUT("/courses/:id", h.course.UpdateCourse)
		protected.DELETE("/courses/:id", h.course.DeleteCourse)
		protected.POST("/courses/:id/modules", h.module.CreateModule)
		protected.GET("/courses/:id/progress", h.lesson.GetProgress)
		protected.GET("/courses/:id/resources", h.resource.ListResources)
		protected.POST("/courses/:id/resources", h.resource.CreateResource)
		protected.POST("/courses/:id/enroll", h.enrollment.Enroll)
		protected.DELETE("/courses/:id/enroll", h.enrollment.Unenroll)

		protected.PUT("/modules/:id", h.module.UpdateModule)
		protected.DELETE("/modules/:id", h.module.DeleteModule)
		protected.POST("/modules/:id/lessons", h.lesson.CreateLesson)

		protected.GET("/lessons/:id", h.lesson.GetLesson)
		protected.PUT("/lessons/:id", h.lesson.UpdateLesson)
		protected.DELETE("/lessons/:id", h.lesson.DeleteLesson)
		protected.POST("/lessons/:id/complete", h.lesson.CompleteLesson)
		protected.DELETE("/lessons/:id/complete", h.lesson.UncompleteLesson)

		protected.DELETE("/resources/:id", h.resource.DeleteResource)

		protected.GET("/enrollments/me", h.enrollment.MyEnrollments)
		protected.GET("/certificates/me", h.certificate.MyCertificates)

		// Live event routes
		protected.GET("/live-events", h.liveEvent.ListUpcoming)
		protected.GET("/live-events/:id", h.liveEvent.GetEvent)
		protected.POST("/live-events", h.liveEvent.CreateEvent)
		protected.PUT("/live-events/:id", h.liveEvent.UpdateEvent)
		protected.DELETE("/live-events/:id", h.liveEvent.DeleteEvent)

		// Community routes
		protected.POST("/categories", h.category.CreateCategory)
		protected.DELETE("/categories/:id", h.category.DeleteCategory)

		protected.GET("/posts", h.post.GetPosts)
		protected.POST("/posts", h.post.CreatePost)
		protected.GET("/posts/:id", h.post.GetPost)
		protected.PUT("/posts/:id", h.post.UpdatePost)
		protected.DELETE("/posts/:id", h.post.DeletePost)
		protected.GET("/posts/:id/comments", h.comment.GetComments)
		protected.POST("/posts/:id/comments", h.comment.CreateComment)
		protected.POST("/posts/:id/like", h.like.TogglePostLike)

		protected.PUT("/comments/:id", h.comment.UpdateComment)
		protected.DELETE("/comments/:id", h.comment.DeleteComment)
		protected.POST("/comments/:id/like", h.like.ToggleCommentLike)

		protected.GET("/leaderboard", h.leaderboard.GetLeaderboard)
		protected.GET("/leaderboard/me", h.leaderboard.GetMyStanding)

		// Notification routes
		protected.GET("/notifications", h.notification.GetNotifications)
		protected.GET("/notifications/unread-count", h.notification.UnreadCount)
		protected.PUT("/notifications/:id/read", h.notification.MarkAsRead)
		protected.PUT("/notifications/read-all", h.notification.MarkAllAsRead)
		protected.GET("/notifications/ws", h.notification.HandleWebSocket)

		// Other protected routes
		protected.POST("/uploads", h.attachment.UploadAttachment)
		protected.DELETE("/uploads/:id", h.attachment.DeleteAttachment)
		protected.GET("/search", h.search.Search)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

// Run serves HTTP and runs the scheduler until ctx is cancelled, then shuts
// both down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	s.scheduler.Stop(shutdownCtx)
	s.Close()

	return serveErr
}

// Close releases the Kafka writer and the Redis client.
func (s *Server) Close() {
	if err := s.publisher.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close kafka publisher")
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}

// debugHealth returns raw dependency errors and is only mounted when
// DEBUG_ROUTES is enabled.
func (s *Server) debugHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	status := http.StatusOK

	if sqlDB, err := s.db.DB(); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	switch {
	case s.redisClient == nil:
		checks["redis"] = "disabled"
	default:
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["redis"] = "ok"
		}
	}

	checks["jobs"] = s.scheduler.Jobs()
	c.JSON(status, checks)
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// originChecker allows websocket upgrades from the configured CORS origins
// and from non-browser clients that send no Origin header.
func originChecker(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
