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

/* =======================
   CREATE
======================= */

func AddDog(db *mongo.Database, media *storage.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /dogs/add-dog"
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

		input, err := parseMultipartDogRequest(c)
		if err != nil {
			log.Printf("[%s] multipart error: %v", route, err)
			respondMultipartError(c, err)
			return
		}

		name := strings.TrimSpace(input.Name)
		if !input.NameSet || name == "" {
			respondError(c, http.StatusBadRequest, route, "name required")
			return
		}
		if !input.BreedSet || input.Breed == "" {
			respondError(c, http.StatusBadRequest, route, "breed required")
			return
		}
		if !input.LocationSet || input.Location == "" {
			respondError(c, http.StatusBadRequest, route, "location required")
			return
		}
		if !input.GenderSet || !validDogGender(input.Gender) {
			respondError(c, http.StatusBadRequest, route, "gender must be male or female")
			return
		}
		if !input.SizeSet || !validDogSize(input.Size) {
			respondError(c, http.StatusBadRequest, route, "size must be small, medium or large")
			return
		}
		if !input.PriceSet || input.Price <= 0 {
			respondError(c, http.StatusBadRequest, route, "invalid price")
			return
		}
		if len(input.Photos) == 0 {
			respondError(c, http.StatusBadRequest, route, "at least one photo is required")
			return
		}
		for _, file := range input.Photos {
			if err := validateImageFile(file); err != nil {
				respondError(c, http.StatusBadRequest, route, err.Error())
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var breeder models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&breeder); err != nil {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		photos, err := uploadImageFiles(ctx, media, "dogs", input.Photos)
		if err != nil {
			log.Printf("[%s] photo upload failed: %v", route, err)
			deleteImages(ctx, media, route, photos)
			respondError(c, http.StatusInternalServerError, route, "photo upload failed")
			return
		}

		dog := models.Dog{
			Name:        name,
			Age:         input.Age,
			Breed:       input.Breed,
			Location:    input.Location,
			Bio:         input.Bio,
			Photos:      photos,
			Gender:      input.Gender,
			Size:        input.Size,
			Price:       input.Price,
			IsPay:       false,
			BreederID:   userID,
			BreederName: breeder.Name,
			MicrochipID: input.MicrochipID,
			DOB:         input.DOB,
			Sire:        input.Sire,
			Dam:         input.Dam,
			CreatedAt:   time.Now(),
		}

		res, err := db.Collection("dogs").InsertOne(ctx, dog)
		if err != nil {
			log.Printf("[%s] insert error: %v", route, err)
			deleteImages(ctx, media, route, photos)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		dog.ID = res.InsertedID.(primitive.ObjectID)
		log.Printf("[%s] dog created: %s", route, dog.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"success": true, "dog": dog})
	}
}

/* =======================
   LIST / GET
======================= */

// GetAllDogs returns every unadopted listing, newest first. Paid dogs
// never appear here.
func GetAllDogs(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /dogs/all-dogs"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filter := bson.M{
			"isPay": bson.M{"$ne": true},
		}

		if breed := strings.TrimSpace(c.Query("breed")); breed != "" {
			filter["breed"] = bson.M{"$regex": breed, "$options": "i"}
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"breed": bson.M{"$regex": search, "$options": "i"}},
				{"location": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("dogs").Find(ctx, filter, findOptions)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		dogs := make([]models.Dog, 0)
		if err := cursor.All(ctx, &dogs); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		log.Printf("[%s] returning %d dogs", route, len(dogs))
		c.JSON(http.StatusOK, gin.H{"success": true, "dogs": dogs, "count": len(dogs)})
	}
}

func GetDog(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /dogs/dog/:id"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var dog models.Dog
		err = db.Collection("dogs").FindOne(ctx, bson.M{"_id": id}).Decode(&dog)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "dog not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "dog": dog})
	}
}

// GetMyDogs lists the caller's own dogs, adopted ones included.
func GetMyDogs(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /dogs/my-dogs"

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("dogs").Find(ctx, bson.M{"breederId": userID}, findOptions)
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		dogs := make([]models.Dog, 0)
		if err := cursor.All(ctx, &dogs); err != nil {
			respondError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "dogs": dogs, "count": len(dogs)})
	}
}

/* =======================
   UPDATE
======================= */

// UpdateDog allows only the recorded breeder to modify a listing. When
// replacement photos arrive, prior stored objects are deleted before
// the new uploads run; there is no atomicity between the two steps.
func UpdateDog(db *mongo.Database, media *storage.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /dogs/update-dog/:id"
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

		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			respondError(c, http.StatusUnsupportedMediaType, route, "multipart/form-data required")
			return
		}

		input, err := parseMultipartDogRequest(c)
		if err != nil {
			log.Printf("[%s] multipart error: %v", route, err)
			respondMultipartError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var existing models.Dog
		err = db.Collection("dogs").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "dog not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if existing.BreederID.Hex() != userID.Hex() {
			respondError(c, http.StatusForbidden, route, "you are not allowed to update this dog")
			return
		}

		updateSet := bson.M{}

		if input.NameSet {
			if input.Name == "" {
				respondError(c, http.StatusBadRequest, route, "name required")
				return
			}
			updateSet["name"] = input.Name
		}
		if input.AgeSet {
			updateSet["age"] = input.Age
		}
		if input.BreedSet {
			if input.Breed == "" {
				respondError(c, http.StatusBadRequest, route, "breed required")
				return
			}
			updateSet["breed"] = input.Breed
		}
		if input.LocationSet {
			if input.Location == "" {
				respondError(c, http.StatusBadRequest, route, "location required")
				return
			}
			updateSet["location"] = input.Location
		}
		if input.BioSet {
			updateSet["bio"] = input.Bio
		}
		if input.GenderSet {
			if !validDogGender(input.Gender) {
				respondError(c, http.StatusBadRequest, route, "gender must be male or female")
				return
			}
			updateSet["gender"] = input.Gender
		}
		if input.SizeSet {
			if !validDogSize(input.Size) {
				respondError(c, http.StatusBadRequest, route, "size must be small, medium or large")
				return
			}
			updateSet["size"] = input.Size
		}
		if input.PriceSet {
			if input.Price <= 0 {
				respondError(c, http.StatusBadRequest, route, "invalid price")
				return
			}
			updateSet["price"] = input.Price
		}
		if input.MicrochipIDSet {
			updateSet["microchipId"] = input.MicrochipID
		}
		if input.DOBSet {
			updateSet["dob"] = input.DOB
		}
		if input.SireSet {
			updateSet["sire"] = input.Sire
		}
		if input.DamSet {
			updateSet["dam"] = input.Dam
		}

		if len(input.Photos) > 0 {
			for _, file := range input.Photos {
				if err := validateImageFile(file); err != nil {
					respondError(c, http.StatusBadRequest, route, err.Error())
					return
				}
			}

			deleteImages(ctx, media, route, existing.Photos)

			photos, err := uploadImageFiles(ctx, media, "dogs", input.Photos)
			if err != nil {
				log.Printf("[%s] photo upload failed: %v", route, err)
				deleteImages(ctx, media, route, photos)
				respondError(c, http.StatusInternalServerError, route, "photo upload failed")
				return
			}
			updateSet["photos"] = photos
		}

		if len(updateSet) == 0 {
			respondError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		result, err := db.Collection("dogs").UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updateSet})
		if err != nil {
			log.Printf("[%s] update error: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "dog not found")
			return
		}

		var updated models.Dog
		if err := db.Collection("dogs").FindOne(ctx, bson.M{"_id": id}).Decode(&updated); err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "dog": updated})
	}
}

/* =======================
   DELETE
======================= */

// DeleteDog removes a listing by id. Unlike UpdateDog there is no
// ownership comparison here; the route is only gated by the breeder
// role, matching the rest of the API's authorization layout.
func DeleteDog(db *mongo.Database, media *storage.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /dogs/delete-dog/:id"

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var existing models.Dog
		err = db.Collection("dogs").FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "dog not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		result, err := db.Collection("dogs").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "dog not found")
			return
		}

		deleteImages(ctx, media, route, existing.Photos)

		log.Printf("[%s] dog deleted: %s", route, id.Hex())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "dog deleted"})
	}
}
