package handlers

import (
	"context"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pawmart/internal/khalti"
	"pawmart/internal/models"
)

type InitiatePaymentRequest struct {
	DogID     string `json:"dogId" binding:"required"`
	ReturnURL string `json:"returnUrl" binding:"required"`
}

// priceToPaisa converts the listed price (rupees) into the paisa
// amount the gateway expects.
func priceToPaisa(price float64) int64 {
	return int64(math.Round(price * 100))
}

// InitiatePayment opens a gateway session for a dog's adoption fee and
// returns the redirect URL plus pidx. Nothing is persisted at this
// step: only a verified completion writes a Payment record.
func InitiatePayment(db *mongo.Database, gateway *khalti.Client, websiteURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /dogs/initiate-payment"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		var req InitiatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		dogID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.DogID))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid dogId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
		defer cancel()

		var dog models.Dog
		err = db.Collection("dogs").FindOne(ctx, bson.M{"_id": dogID}).Decode(&dog)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "dog not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if dog.IsPay {
			respondError(c, http.StatusBadRequest, route, "dog has already been adopted")
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		session, err := gateway.Initiate(ctx, khalti.InitiateRequest{
			ReturnURL:         strings.TrimSpace(req.ReturnURL),
			WebsiteURL:        websiteURL,
			Amount:            priceToPaisa(dog.Price),
			PurchaseOrderID:   dog.ID.Hex(),
			PurchaseOrderName: dog.Name,
			CustomerInfo: khalti.CustomerInfo{
				Name:  user.Name,
				Email: user.Email,
				Phone: user.Phone,
			},
		})
		if err != nil {
			log.Printf("[%s] gateway initiate failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, err.Error())
			return
		}

		log.Printf("[%s] payment session opened: pidx=%s dog=%s", route, session.Pidx, dog.ID.Hex())
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"pidx":       session.Pidx,
			"paymentUrl": session.PaymentURL,
		})
	}
}

// CompletePayment verifies a gateway transaction by pidx and, on a
// "Completed" status, writes the Payment record and flips the dog's
// isPay flag. The call is idempotent: an existing record for the pidx
// is returned unchanged, and a duplicate-key error on insert (two
// completions racing past the existence check) resolves to the same
// answer. If the dog update fails after the payment insert the record
// stays behind; there is no compensating rollback.
func CompletePayment(db *mongo.Database, gateway *khalti.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /dogs/complete-payment"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}

		pidx := strings.TrimSpace(c.Query("pidx"))
		if pidx == "" {
			respondError(c, http.StatusBadRequest, route, "pidx is required")
			return
		}

		dogID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Query("dogId")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid dogId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
		defer cancel()

		// Idempotent short-circuit: a record for this pidx means the
		// transaction was already processed.
		var existing models.Payment
		err = db.Collection("payments").FindOne(ctx, bson.M{"pidx": pidx}).Decode(&existing)
		if err == nil {
			log.Printf("[%s] payment already processed: pidx=%s", route, pidx)
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "payment already processed",
				"payment": existing,
			})
			return
		}
		if err != mongo.ErrNoDocuments {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		var dog models.Dog
		err = db.Collection("dogs").FindOne(ctx, bson.M{"_id": dogID}).Decode(&dog)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "dog not found")
			return
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		lookup, err := gateway.Lookup(ctx, pidx)
		if err != nil {
			log.Printf("[%s] gateway lookup failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, err.Error())
			return
		}

		if lookup.Status != khalti.StatusCompleted {
			log.Printf("[%s] payment not completed: pidx=%s status=%s", route, pidx, lookup.Status)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "payment not completed",
				"status":  lookup.Status,
			})
			return
		}

		payment := models.Payment{
			Pidx:   pidx,
			DogID:  dogID,
			Status: models.PaymentStatusCompleted,
			Amount: lookup.TotalAmount,
			PaymentDetails: bson.M{
				"transactionId": lookup.TransactionID,
				"totalAmount":   lookup.TotalAmount,
				"fee":           lookup.Fee,
				"refunded":      lookup.Refunded,
				"status":        lookup.Status,
			},
			UserID:    userID,
			CreatedAt: time.Now(),
		}

		res, err := db.Collection("payments").InsertOne(ctx, payment)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Lost the race against a concurrent completion; the
				// winner's record is the answer.
				var winner models.Payment
				if lookupErr := db.Collection("payments").FindOne(ctx, bson.M{"pidx": pidx}).Decode(&winner); lookupErr == nil {
					c.JSON(http.StatusOK, gin.H{
						"success": true,
						"message": "payment already processed",
						"payment": winner,
					})
					return
				}
			}
			log.Printf("[%s] payment insert failed: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		payment.ID = res.InsertedID.(primitive.ObjectID)

		if _, err := db.Collection("dogs").UpdateByID(ctx, dogID, bson.M{"$set": bson.M{"isPay": true}}); err != nil {
			// Payment record is already written; surface the failure
			// without undoing it.
			log.Printf("[%s] isPay update failed after payment insert: %v", route, err)
			respondError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[%s] payment completed: pidx=%s dog=%s", route, pidx, dogID.Hex())
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "payment completed",
			"payment": payment,
		})
	}
}
