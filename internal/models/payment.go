package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment records a server-verified gateway transaction. A document is
// written only after the gateway lookup reports the transaction as
// completed; the unique pidx index is the idempotency guard.
type Payment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Pidx           string             `bson:"pidx" json:"pidx"`
	DogID          primitive.ObjectID `bson:"dogId" json:"dogId"`
	Status         string             `bson:"status" json:"status"`
	Amount         int64              `bson:"amount" json:"amount"`
	PaymentDetails bson.M             `bson:"paymentDetails,omitempty" json:"paymentDetails,omitempty"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
