package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"meepleserver/allocator"
	"meepleserver/database"
	"meepleserver/geo"
	"meepleserver/handlers"
	"meepleserver/notify"
	"meepleserver/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	var logger *zap.Logger
	var err error
	logger, err = utils.InitLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	godotenv.Load()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	config, err := database.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	allocator.SetGlobalCap(config.GlobalSlotCap)

	// PostgreSQL and Redis come up concurrently
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("Failed to initialize PostgreSQL", zap.Error(err))
		}
		if err := database.AutoMigrate(db); err != nil {
			logger.Fatal("Failed to migrate schema", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		rdb, err = database.InitRedis(logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	<-done
	<-done

	hub := notify.NewHub(logger)
	dispatcher := notify.NewDispatcher(hub, logger)
	geocoder := geo.NewHTTPGeocoder(config.GeocoderURL, rdb, logger)
	placeSearch := geo.NewHTTPPlaceSearch(config.PlaceSearchURL, config.PlaceAPIKey)

	go utils.CronJobs(db, dispatcher, logger)

	router := gin.Default()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.POST("/login", func(c *gin.Context) {
		handlers.Login(c, db, logger)
	})

	router.GET("/profile", func(c *gin.Context) {
		handlers.MyProfile(c, db, logger)
	})
	router.DELETE("/profile", func(c *gin.Context) {
		handlers.ProfileDelete(c, db, logger, dispatcher)
	})

	router.POST("/sessions", func(c *gin.Context) {
		handlers.SessionCreate(c, db, logger, geocoder)
	})
	router.GET("/sessions/mine", func(c *gin.Context) {
		handlers.MySessions(c, db, logger)
	})
	router.GET("/sessions/invite/:token", func(c *gin.Context) {
		handlers.SessionByInvite(c, db, logger)
	})
	router.PUT("/sessions/:id", func(c *gin.Context) {
		handlers.SessionUpdate(c, db, logger, geocoder)
	})
	router.DELETE("/sessions/:id", func(c *gin.Context) {
		handlers.SessionDelete(c, db, logger, dispatcher)
	})
	router.PUT("/sessions/:id/full", func(c *gin.Context) {
		handlers.SessionMarkFull(c, db, logger)
	})

	router.POST("/sessions/:id/join", func(c *gin.Context) {
		handlers.JoinSession(c, db, logger, dispatcher, geocoder)
	})
	router.DELETE("/sessions/:id/leave", func(c *gin.Context) {
		handlers.LeaveSession(c, db, logger, dispatcher)
	})
	router.DELETE("/sessions/:id/participants/:userId", func(c *gin.Context) {
		handlers.RemoveParticipant(c, db, logger, dispatcher)
	})

	router.POST("/sessions/:id/ban", func(c *gin.Context) {
		handlers.BanFromSession(c, db, logger, dispatcher)
	})
	router.GET("/sessions/:id/banreason", func(c *gin.Context) {
		handlers.BanReason(c, db, logger)
	})
	router.DELETE("/bans/:userId", func(c *gin.Context) {
		handlers.Unban(c, db, logger)
	})
	router.GET("/bans", func(c *gin.Context) {
		handlers.ListBans(c, db, logger)
	})

	router.POST("/search/sessions", func(c *gin.Context) {
		handlers.SessionSearch(c, db, logger, geocoder)
	})
	router.POST("/search/venues", func(c *gin.Context) {
		handlers.VenueSearch(c, db, logger, geocoder, placeSearch)
	})

	router.POST("/locations", func(c *gin.Context) {
		handlers.LocationCreate(c, db, logger, geocoder)
	})
	router.GET("/locations", func(c *gin.Context) {
		handlers.LocationList(c, db, logger)
	})
	router.DELETE("/locations/:id", func(c *gin.Context) {
		handlers.LocationDelete(c, db, logger)
	})

	router.POST("/sessions/:id/messages", func(c *gin.Context) {
		handlers.MessagePost(c, db, logger)
	})
	router.GET("/sessions/:id/messages", func(c *gin.Context) {
		handlers.MessageList(c, db, logger)
	})
	router.PUT("/messages/:messageId", func(c *gin.Context) {
		handlers.MessageEdit(c, db, logger)
	})
	router.DELETE("/messages/:messageId", func(c *gin.Context) {
		handlers.MessageDelete(c, db, logger)
	})

	router.GET("/notifications", func(c *gin.Context) {
		handlers.NotificationList(c, db, logger)
	})
	router.PUT("/notifications/:id/read", func(c *gin.Context) {
		handlers.NotificationRead(c, db, logger)
	})
	router.DELETE("/notifications/:id", func(c *gin.Context) {
		handlers.NotificationDelete(c, db, logger)
	})
	router.GET("/ws", func(c *gin.Context) {
		handlers.NotificationStream(c, db, logger, hub, upgrader)
	})

	router.POST("/savedsearches", func(c *gin.Context) {
		handlers.SavedSearchCreate(c, db, logger)
	})
	router.GET("/savedsearches", func(c *gin.Context) {
		handlers.SavedSearchList(c, db, logger)
	})
	router.DELETE("/savedsearches/:id", func(c *gin.Context) {
		handlers.SavedSearchDelete(c, db, logger)
	})

	router.Run()
}
