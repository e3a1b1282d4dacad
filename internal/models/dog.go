package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dog is a listing created by a breeder. IsPay flips to true once the
// adoption fee has been confirmed through the payment gateway, which
// removes the dog from public listings.
type Dog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Age         string             `bson:"age" json:"age"`
	Breed       string             `bson:"breed" json:"breed"`
	Location    string             `bson:"location" json:"location"`
	Bio         string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Photos      []Image            `bson:"photos" json:"photos"`
	Gender      string             `bson:"gender" json:"gender"`
	Size        string             `bson:"size" json:"size"`
	Price       float64            `bson:"price" json:"price"`
	IsPay       bool               `bson:"isPay" json:"isPay"`
	BreederID   primitive.ObjectID `bson:"breederId" json:"breederId"`
	BreederName string             `bson:"breederName" json:"breederName"`
	MicrochipID string             `bson:"microchipId,omitempty" json:"microchipId,omitempty"`
	DOB         string             `bson:"dob,omitempty" json:"dob,omitempty"`
	Sire        string             `bson:"sire,omitempty" json:"sire,omitempty"`
	Dam         string             `bson:"dam,omitempty" json:"dam,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
