package routes

import (
	"context"
	"errors"
	"fmt"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Metecanyavuz/KUstay-comp491/internal/config"
	"github.com/Metecanyavuz/KUstay-comp491/internal/handlers"
	"github.com/Metecanyavuz/KUstay-comp491/internal/matching"
	"github.com/Metecanyavuz/KUstay-comp491/internal/middleware"
	"github.com/Metecanyavuz/KUstay-comp491/internal/models"
	"github.com/Metecanyavuz/KUstay-comp491/internal/repository"
	"github.com/Metecanyavuz/KUstay-comp491/internal/services"
	chatws "github.com/Metecanyavuz/KUstay-comp491/internal/websocket"
)

// NewMatchmakingService wires the refresher against PostgreSQL. The server
// and the recompute command share it.
func NewMatchmakingService(cfg *config.Config, db *pgxpool.Pool, logger *zap.Logger) *services.MatchmakingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	userRepo := repository.NewUserRepository(db)
	return services.NewMatchmakingService(
		userRepo,
		repository.NewProfileRepository(db),
		repository.NewBlockRepository(db),
		repository.NewMatchRepository(db),
		matching.NewScorer(matching.DefaultWeights()),
		services.WithLogger(logger.Named("matching")),
		services.WithRefreshWorkers(cfg.MatchRefreshWorkers),
		services.WithMaxMatchLimit(cfg.MatchListMaxLimit),
	)
}

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, logger *zap.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if db == nil {
		return errors.New("database pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	matchmakingService := NewMatchmakingService(cfg, db, logger)
	profileService := services.NewProfileService(profileRepo, userRepo, matchmakingService, logger)
	blockService := services.NewBlockService(blockRepo, userRepo)
	chatService := services.NewChatService(db, conversationRepo, messageRepo, userRepo, blockRepo)

	var photos services.PhotoStorage
	if cfg.StorageBucket != "" {
		storage, err := services.NewS3PhotoStorage(context.Background(), services.StorageConfig{
			Bucket:        cfg.StorageBucket,
			Region:        cfg.StorageRegion,
			Endpoint:      cfg.StorageEndpoint,
			PublicBaseURL: cfg.StoragePublicURL,
		})
		if err != nil {
			return fmt.Errorf("photo storage: %w", err)
		}
		photos = storage
	} else {
		logger.Warn("STORAGE_BUCKET not set, listing photo uploads are disabled")
	}
	listingService := services.NewListingService(repository.NewListingRepository(db), photos, logger.Named("listings"))

	chatHub := chatws.NewHub(logger.Named("chat"))

	authHandler := handlers.NewAuthHandler(userRepo, profileRepo, matchmakingService, logger, cfg.JWTSecret, cfg.AppEnv)
	profileHandler := handlers.NewProfileHandler(profileService)
	matchHandler := handlers.NewMatchHandler(matchmakingService, cfg.MatchListDefaultLimit)
	blockHandler := handlers.NewBlockHandler(blockService)
	chatHandler := handlers.NewChatHandler(chatService, chatHub, cfg.JWTSecret)
	adminHandler := handlers.NewAdminHandler(matchmakingService)
	listingHandler := handlers.NewListingHandler(listingService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/verify-email", authHandler.VerifyEmail)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))

	// Browsing listings needs no account.
	api.Get("/listings", listingHandler.ListListings)
	api.Get("/v1/listings", listingHandler.ListListings)
	api.Get("/v1/listings/:id", listingHandler.GetListing)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	authProtected.Get("/profile", profileHandler.GetProfile)
	authProtected.Put("/profile", profileHandler.SaveProfile)

	matches := authProtected.Group("/matches")
	matches.Get("", matchHandler.ListMatches)
	matches.Get("/top", matchHandler.TopMatches)

	blocks := authProtected.Group("/blocks")
	blocks.Get("", blockHandler.ListBlocked)
	blocks.Post("/:id", blockHandler.Block)
	blocks.Delete("/:id", blockHandler.Unblock)

	conversations := authProtected.Group("/conversations")
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.CreateConversation)
	conversations.Get("/unread", chatHandler.UnreadCount)
	conversations.Get("/:id/messages", chatHandler.GetMessages)

	listings := authProtected.Group("/listings")
	listings.Post("", listingHandler.CreateListing)
	listings.Put("/:id", listingHandler.UpdateListing)
	listings.Delete("/:id", listingHandler.DeleteListing)
	listings.Post("/:id/images", listingHandler.UploadImage)
	listings.Delete("/:id/images/:imageId", listingHandler.DeleteImage)
	authProtected.Get("/users/me/listings", listingHandler.ListMyListings)

	admin := authProtected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Post("/matches/recompute", adminHandler.RecomputeMatches)

	return nil
}
