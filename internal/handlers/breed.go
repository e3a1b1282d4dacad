package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pawmart/internal/models"
	"pawmart/internal/storage"
)

func AddBreed(db *mongo.Database, media *storage.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /breeds/add-breed"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			respondError(c, http.StatusUnsupportedMediaType, route, "multipart/form-data required")
			return
		}

		if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
			respondMultipartError(c, err)
			return
		}

		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			respondError(c, http.StatusBadRequest, route, "name required")
			return
		}

		hypoallergenic := false
		if value, ok := c.GetPostForm("hypoallergenic"); ok {
			parsed, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "hypoallergenic must be boolean")
				return
			}
			hypoallergenic = parsed
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		images := make([]models.Image, 0)
		if c.Request.MultipartForm != nil {
			files := c.Request.MultipartForm.File["images"]
			if len(files) > 0 {
				for _, file := range files {
					if err := validateImageFile(file); err != nil {
						respondError(c, http.StatusBadRequest, route, err.Error())
						return
					}
				}
				uploaded, err := uploadImageFiles(ctx, media, "breeds", files)
				if err != nil {
					log.Printf("[%s] image upload failed: %v", route, err)
					deleteImages(ctx, media, route, uploaded)
					respondError(c, http.StatusInternalServerError, route, "image upload failed")
					return
				}
				images = uploaded
			}
		}

		breed := models.Breed{
			Name:           name,
			Origin:         strings.TrimSpace(c.PostForm("origin")),
			Size:           strings.ToLower(strings.TrimSpace(c.PostForm("size"))),
			Temperament:    strings.TrimSpace(c.PostForm("temperament")),
			Diet:           strings.TrimSpace(c.PostForm("diet")),
			Exercise:       strings.TrimSpace(c.PostForm("exercise")),
			Grooming:       strings.TrimSpace(c.PostForm("grooming")),
			Hypoallergenic: hypoallergenic,
			EnergyLevel:    strings.ToLower(strings.TrimSpace(c.PostForm("energyLevel"))),
			Images:         images,
			OwnerID:        userID,
			CreatedAt:      time.Now(),
		}

		res, err := db.Collection("breeds").InsertOne(ctx, breed)
		if err != nil {
			log.Printf("[%s] insert error: %v", route, err)
			deleteImages(ctx, media, route, images)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		breed.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, gin.H{"success": true, "breed": breed})
	}
}

func GetAllBreeds(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /breeds/all-breeds"

		filter := bson.M{}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["name"] = bson.M{"$regex": search, "$options": "i"}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "name", Value: 1}})

		cursor, err := db.Collection("breeds").Find(ctx, filter, findOptions)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		breeds := make([]models.Breed, 0)
		if err := cursor.All(ctx, &breeds); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "breeds": breeds, "count": len(breeds)})
	}
}

func GetBreed(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /breeds/breed/:id"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var breed models.Breed
		err = db.Collection("breeds").FindOne(ctx, bson.M{"_id": id}).Decode(&breed)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "breed not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "breed": breed})
	}
}

func UpdateBreed(db *mongo.Database, media *storage.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /breeds/update-breed/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
			respondMultipartError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var existing models.Breed
		err = db.Collection("breeds").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "breed not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if existing.OwnerID.Hex() != userID.Hex() {
			respondError(c, http.StatusForbidden, route, "you are not allowed to update this breed")
			return
		}

		updateSet := bson.M{}

		if value, ok := c.GetPostForm("name"); ok {
			name := strings.TrimSpace(value)
			if name == "" {
				respondError(c, http.StatusBadRequest, route, "name required")
				return
			}
			updateSet["name"] = name
		}

		for _, field := range []string{"origin", "temperament", "diet", "exercise", "grooming"} {
			if value, ok := c.GetPostForm(field); ok {
				updateSet[field] = strings.TrimSpace(value)
			}
		}
		for _, field := range []string{"size", "energyLevel"} {
			if value, ok := c.GetPostForm(field); ok {
				updateSet[field] = strings.ToLower(strings.TrimSpace(value))
			}
		}

		if value, ok := c.GetPostForm("hypoallergenic"); ok {
			parsed, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "hypoallergenic must be boolean")
				return
			}
			updateSet["hypoallergenic"] = parsed
		}

		if c.Request.MultipartForm != nil {
			files := c.Request.MultipartForm.File["images"]
			if len(files) > 0 {
				for _, file := range files {
					if err := validateImageFile(file); err != nil {
						respondError(c, http.StatusBadRequest, route, err.Error())
						return
					}
				}

				deleteImages(ctx, media, route, existing.Images)

				images, err := uploadImageFiles(ctx, media, "breeds", files)
				if err != nil {
					log.Printf("[%s] image upload failed: %v", route, err)
					deleteImages(ctx, media, route, images)
					respondError(c, http.StatusInternalServerError, route, "image upload failed")
					return
				}
				updateSet["images"] = images
			}
		}

		if len(updateSet) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		if _, err := db.Collection("breeds").UpdateByID(ctx, id, bson.M{"$set": updateSet}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		var updated models.Breed
		if err := db.Collection("breeds").FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "breed": updated})
	}
}

func DeleteBreed(db *mongo.Database, media *storage.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /breeds/delete-breed/:id"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var existing models.Breed
		err = db.Collection("breeds").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "breed not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if existing.OwnerID.Hex() != userID.Hex() {
			respondError(c, http.StatusForbidden, route, "you are not allowed to delete this breed")
			return
		}

		result, err := db.Collection("breeds").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "breed not found")
			return
		}

		deleteImages(ctx, media, route, existing.Images)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "breed deleted"})
	}
}
