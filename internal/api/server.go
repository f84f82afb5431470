package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/matenweekend/api/docs"
	v1 "github.com/matenweekend/api/internal/api/handler/v1"
	"github.com/matenweekend/api/internal/api/middleware"
	"github.com/matenweekend/api/internal/cache"
	"github.com/matenweekend/api/internal/config"
	"github.com/matenweekend/api/internal/repository"
	"github.com/matenweekend/api/internal/repository/dao"
	"github.com/matenweekend/api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	rankingCache := s.initRankingCache()
	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	activityHandler := s.initActivityHandler(db, rankingCache)
	pointsHandler := s.initPointsHandler(db, rankingCache)
	s.MountHandlers(authHandler, userHandler, activityHandler, pointsHandler)

	return s
}

// initRankingCache connects to Redis when an address is configured. The
// cache is optional: the ranking is recomputed from the ledger either way.
func (s *Server) initRankingCache() service.RankingCache {
	if s.Config.Redis.Addr == "" {
		return nil
	}

	c, err := cache.NewRedisRankingCache(s.Config.Redis.Addr, s.Config.Redis.Password, s.Config.Redis.DB)
	if err != nil {
		zap.L().Warn("ranking cache disabled", zap.Error(err))

		return nil
	}

	return c
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initActivityHandler(db *gorm.DB, rankingCache service.RankingCache) *v1.ActivityHandler {
	activityDAO := dao.NewActivityDAO(db)
	participationDAO := dao.NewParticipationDAO(db)
	repo := repository.NewActivityRepository(activityDAO, participationDAO)
	svc := service.NewActivityService(repo, rankingCache)
	pSvc := service.NewParticipationService(repo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewActivityHandler(svc, pSvc, uSvc)

	return handler
}

func (s *Server) initPointsHandler(db *gorm.DB, rankingCache service.RankingCache) *v1.PointsHandler {
	transactionDAO := dao.NewTransactionDAO(db)
	ledgerRepo := repository.NewLedgerRepository(transactionDAO)
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	rSvc := service.NewRankingService(ledgerRepo, userRepo, rankingCache)
	lSvc := service.NewLedgerService(ledgerRepo, userRepo, rankingCache)
	uSvc := service.NewUserService(userRepo)
	handler := v1.NewPointsHandler(rSvc, lSvc, uSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, userHandler *v1.UserHandler, activityHandler *v1.ActivityHandler, pointsHandler *v1.PointsHandler) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	users := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		users.GET("/users/:userID", userHandler.HandleGetUser)
		users.GET("/users/:userID/transactions", pointsHandler.HandleGetUserTransactions)
	}

	activities := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		activities.GET("/activities", activityHandler.HandleListActivities)
		activities.POST("/activities", activityHandler.HandleCreateActivity)
		activities.GET("/activities/:activityID", activityHandler.HandleGetActivity)
		activities.DELETE("/activities/:activityID", activityHandler.HandleDeleteActivity)
		activities.POST("/activities/:activityID/complete", activityHandler.HandleCompleteActivity)
		activities.POST("/activities/:activityID/cancel", activityHandler.HandleCancelActivity)
		activities.POST("/activities/:activityID/reopen", activityHandler.HandleReopenActivity)
		activities.POST("/activities/:activityID/join", activityHandler.HandleJoinActivity)
		activities.POST("/activities/:activityID/leave", activityHandler.HandleLeaveActivity)
		activities.GET("/activities/:activityID/participants", activityHandler.HandleListParticipants)
		activities.DELETE("/participations/:participationID", activityHandler.HandleRemoveParticipation)
	}

	points := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		points.GET("/ranking", pointsHandler.HandleGetRanking)
		points.POST("/points/award", pointsHandler.HandleAwardPoints)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Weekend Activities API"
	docs.SwaggerInfo.Description = "Group activity coordination with a points ledger."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
