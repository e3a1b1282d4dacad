package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"pawmart/internal/models"
	"pawmart/internal/storage"
)

func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			log.Println("[USER] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[USER] [ERROR] get me failed:", err)
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
	}
}

// UpdateMe accepts multipart form data so profile text fields and a
// replacement avatar can arrive in one request. A new avatar replaces
// the previously stored object.
func UpdateMe(db *mongo.Database, media *storage.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /user/me"

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
			respondError(c, http.StatusBadRequest, route, "multipart/form-data required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var existing models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&existing); err != nil {
			respondError(c, http.StatusNotFound, route, "user not found")
			return
		}

		updateSet := bson.M{}

		for _, field := range []string{"name", "address", "gender", "phone", "bio"} {
			if value, ok := c.GetPostForm(field); ok {
				trimmed := strings.TrimSpace(value)
				if field == "name" && trimmed == "" {
					respondError(c, http.StatusBadRequest, route, "name required")
					return
				}
				updateSet[field] = trimmed
			}
		}

		var oldAvatar *models.Image
		if file, err := c.FormFile("avatar"); err == nil {
			if err := validateImageFile(file); err != nil {
				respondError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			src, err := file.Open()
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid avatar upload")
				return
			}
			avatar, err := media.Upload(ctx, "avatars", file.Filename, src, file.Size)
			src.Close()
			if err != nil {
				log.Printf("[%s] avatar upload failed: %v", route, err)
				respondError(c, http.StatusInternalServerError, route, "avatar upload failed")
				return
			}
			updateSet["avatar"] = avatar
			oldAvatar = existing.Avatar
		}

		if len(updateSet) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		updateSet["updatedAt"] = time.Now()

		if _, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{"$set": updateSet}); err != nil {
			log.Printf("[%s] update failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Listings carry a denormalized copy of the breeder's name, so
		// a rename has to fan out to the dogs collection.
		if name, ok := updateSet["name"]; ok {
			_, err := db.Collection("dogs").UpdateMany(ctx,
				bson.M{"breederId": userID},
				bson.M{"$set": bson.M{"breederName": name}})
			if err != nil {
				log.Printf("[%s] breederName sync failed: %v", route, err)
			}
		}

		if oldAvatar != nil {
			deleteImages(ctx, media, route, []models.Image{*oldAvatar})
		}

		var updated models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&updated); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "user": updated})
	}
}
