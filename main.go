package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pawmart/internal/config"
	"pawmart/internal/database"
	"pawmart/internal/handlers"
	"pawmart/internal/khalti"
	"pawmart/internal/middleware"
	"pawmart/internal/storage"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsurePaymentIndexes(db); err != nil {
		log.Printf("payment index warning: %v", err)
	}
	if err := database.EnsureDogIndexes(db); err != nil {
		log.Printf("dog index warning: %v", err)
	}

	media, err := storage.NewMediaStore(storage.Options{
		Endpoint:  config.AppEnv.MinioEndpoint,
		AccessKey: config.AppEnv.MinioAccessKey,
		SecretKey: config.AppEnv.MinioSecretKey,
		Bucket:    config.AppEnv.MinioBucket,
		UseSSL:    config.AppEnv.MinioUseSSL,
		BaseURL:   config.AppEnv.MediaBaseURL,
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := media.EnsureBucket(context.Background()); err != nil {
		log.Printf("media bucket warning: %v", err)
	}

	gateway := khalti.New(config.AppEnv.KhaltiBaseURL, config.AppEnv.KhaltiSecretKey)

	secret := config.AppEnv.JWTSecret
	accessTTL := config.AppEnv.AccessTokenTTL
	refreshTTL := config.AppEnv.RefreshTokenTTL

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppEnv.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := r.Group("/api/v1")

	user := api.Group("/user")
	{
		user.POST("/register", handlers.Register(db, secret, config.AppEnv.ActivationTokenTTL))
		user.POST("/activation", handlers.Activation(db, secret))
		user.POST("/login", handlers.Login(db, secret, accessTTL, refreshTTL))
		user.POST("/refresh", handlers.Refresh(db, secret, accessTTL, refreshTTL))
		user.POST("/logout", handlers.Logout(db))
		user.GET("/me", middleware.IsAuthenticated(secret), handlers.GetMe(db))
		user.PUT("/me", middleware.IsAuthenticated(secret), handlers.UpdateMe(db, media))
	}

	dogs := api.Group("/dogs")
	{
		dogs.GET("/all-dogs", handlers.GetAllDogs(db))
		dogs.GET("/dog/:id", handlers.GetDog(db))

		dogs.POST("/add-dog",
			middleware.IsAuthenticated(secret),
			middleware.AuthorizeRoles("breeder"),
			handlers.AddDog(db, media))
		dogs.GET("/my-dogs",
			middleware.IsAuthenticated(secret),
			middleware.AuthorizeRoles("breeder"),
			handlers.GetMyDogs(db))
		dogs.PUT("/update-dog/:id",
			middleware.IsAuthenticated(secret),
			middleware.AuthorizeRoles("breeder"),
			handlers.UpdateDog(db, media))
		dogs.DELETE("/delete-dog/:id",
			middleware.IsAuthenticated(secret),
			middleware.AuthorizeRoles("breeder"),
			handlers.DeleteDog(db, media))

		dogs.POST("/initiate-payment",
			middleware.IsAuthenticated(secret),
			handlers.InitiatePayment(db, gateway, config.AppEnv.WebsiteURL))
		dogs.GET("/complete-payment",
			middleware.IsAuthenticated(secret),
			handlers.CompletePayment(db, gateway))
	}

	blogs := api.Group("/blogs")
	{
		blogs.GET("/all-blogs", handlers.GetAllBlogs(db))
		blogs.GET("/blog/:id", handlers.GetBlog(db))

		blogs.POST("/add-blog",
			middleware.IsAuthenticated(secret),
			middleware.AuthorizeRoles("breeder"),
			handlers.AddBlog(db, media))
		blogs.PUT("/update-blog/:id",
			middleware.IsAuthenticated(secret),
			middleware.AuthorizeRoles("breeder"),
			handlers.UpdateBlog(db, media))
		blogs.DELETE("/delete-blog/:id",
			middleware.IsAuthenticated(secret),
			middleware.AuthorizeRoles("breeder"),
			handlers.DeleteBlog(db, media))
	}

	breeds := api.Group("/breeds")
	{
		breeds.GET("/all-breeds", handlers.GetAllBreeds(db))
		breeds.GET("/breed/:id", handlers.GetBreed(db))

		breeds.POST("/add-breed",
			middleware.IsAuthenticated(secret),
			middleware.AuthorizeRoles("breeder"),
			handlers.AddBreed(db, media))
		breeds.PUT("/update-breed/:id",
			middleware.IsAuthenticated(secret),
			middleware.AuthorizeRoles("breeder"),
			handlers.UpdateBreed(db, media))
		breeds.DELETE("/delete-breed/:id",
			middleware.IsAuthenticated(secret),
			middleware.AuthorizeRoles("breeder"),
			handlers.DeleteBreed(db, media))
	}

	admin := api.Group("/admin")
	admin.Use(middleware.IsAuthenticated(secret), middleware.AuthorizeRoles("admin"))
	{
		admin.GET("/users", handlers.GetAllUsers(db))
		admin.PUT("/ban-user/:id", handlers.BanUser(db))
		admin.DELETE("/delete-user/:id", handlers.DeleteUser(db))
		admin.GET("/payments", handlers.GetAllPayments(db))
	}

	r.Run(":" + config.AppEnv.Port)
}
