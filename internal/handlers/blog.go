package handlers

import (
	"context"
	"log"
	"net/http"
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

var blogCategories = map[string]struct{}{
	"training":  {},
	"health":    {},
	"nutrition": {},
	"adoption":  {},
	"stories":   {},
}

func validBlogCategory(value string) bool {
	_, ok := blogCategories[value]
	return ok
}

func AddBlog(db *mongo.Database, media *storage.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /blogs/add-blog"
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

		title := strings.TrimSpace(c.PostForm("title"))
		if title == "" {
			respondError(c, http.StatusBadRequest, route, "title required")
			return
		}

		content := strings.TrimSpace(c.PostForm("content"))
		if content == "" {
			respondError(c, http.StatusBadRequest, route, "content required")
			return
		}

		category := strings.ToLower(strings.TrimSpace(c.PostForm("category")))
		if !validBlogCategory(category) {
			respondError(c, http.StatusBadRequest, route, "invalid category")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var owner models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&owner); err != nil {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		author := strings.TrimSpace(c.PostForm("author"))
		if author == "" {
			author = owner.Name
		}

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
				uploaded, err := uploadImageFiles(ctx, media, "blogs", files)
				if err != nil {
					log.Printf("[%s] image upload failed: %v", route, err)
					deleteImages(ctx, media, route, uploaded)
					respondError(c, http.StatusInternalServerError, route, "image upload failed")
					return
				}
				images = uploaded
			}
		}

		now := time.Now()
		blog := models.Blog{
			Title:     title,
			Author:    author,
			Category:  category,
			Date:      now,
			Excerpt:   strings.TrimSpace(c.PostForm("excerpt")),
			Content:   content,
			Images:    images,
			OwnerID:   userID,
			CreatedAt: now,
		}

		res, err := db.Collection("blogs").InsertOne(ctx, blog)
		if err != nil {
			log.Printf("[%s] insert error: %v", route, err)
			deleteImages(ctx, media, route, images)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		blog.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, gin.H{"success": true, "blog": blog})
	}
}

func GetAllBlogs(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /blogs/all-blogs"

		filter := bson.M{}
		if category := strings.ToLower(strings.TrimSpace(c.Query("category"))); category != "" {
			filter["category"] = category
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("blogs").Find(ctx, filter, findOptions)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		blogs := make([]models.Blog, 0)
		if err := cursor.All(ctx, &blogs); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "blogs": blogs, "count": len(blogs)})
	}
}

func GetBlog(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /blogs/blog/:id"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var blog models.Blog
		err = db.Collection("blogs").FindOne(ctx, bson.M{"_id": id}).Decode(&blog)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "blog not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "blog": blog})
	}
}

func UpdateBlog(db *mongo.Database, media *storage.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /blogs/update-blog/:id"
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

		var existing models.Blog
		err = db.Collection("blogs").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "blog not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if existing.OwnerID.Hex() != userID.Hex() {
			respondError(c, http.StatusForbidden, route, "you are not allowed to update this blog")
			return
		}

		updateSet := bson.M{}

		if value, ok := c.GetPostForm("title"); ok {
			title := strings.TrimSpace(value)
			if title == "" {
				respondError(c, http.StatusBadRequest, route, "title required")
				return
			}
			updateSet["title"] = title
		}
		if value, ok := c.GetPostForm("author"); ok {
			updateSet["author"] = strings.TrimSpace(value)
		}
		if value, ok := c.GetPostForm("category"); ok {
			category := strings.ToLower(strings.TrimSpace(value))
			if !validBlogCategory(category) {
				respondError(c, http.StatusBadRequest, route, "invalid category")
				return
			}
			updateSet["category"] = category
		}
		if value, ok := c.GetPostForm("excerpt"); ok {
			updateSet["excerpt"] = strings.TrimSpace(value)
		}
		if value, ok := c.GetPostForm("content"); ok {
			content := strings.TrimSpace(value)
			if content == "" {
				respondError(c, http.StatusBadRequest, route, "content required")
				return
			}
			updateSet["content"] = content
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

				images, err := uploadImageFiles(ctx, media, "blogs", files)
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

		if _, err := db.Collection("blogs").UpdateByID(ctx, id, bson.M{"$set": updateSet}); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		var updated models.Blog
		if err := db.Collection("blogs").FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "blog": updated})
	}
}

func DeleteBlog(db *mongo.Database, media *storage.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /blogs/delete-blog/:id"

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

		var existing models.Blog
		err = db.Collection("blogs").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "blog not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if existing.OwnerID.Hex() != userID.Hex() {
			respondError(c, http.StatusForbidden, route, "you are not allowed to delete this blog")
			return
		}

		result, err := db.Collection("blogs").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "blog not found")
			return
		}

		deleteImages(ctx, media, route, existing.Images)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "blog deleted"})
	}
}
