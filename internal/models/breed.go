package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Breed is descriptive reference data about a dog breed, maintained by
// breeders for the public breed directory.
type Breed struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Origin         string             `bson:"origin,omitempty" json:"origin,omitempty"`
	Size           string             `bson:"size,omitempty" json:"size,omitempty"`
	Temperament    string             `bson:"temperament,omitempty" json:"temperament,omitempty"`
	Diet           string             `bson:"diet,omitempty" json:"diet,omitempty"`
	Exercise       string             `bson:"exercise,omitempty" json:"exercise,omitempty"`
	Grooming       string             `bson:"grooming,omitempty" json:"grooming,omitempty"`
	Hypoallergenic bool               `bson:"hypoallergenic" json:"hypoallergenic"`
	EnergyLevel    string             `bson:"energyLevel,omitempty" json:"energyLevel,omitempty"`
	Images         []Image            `bson:"images" json:"images"`
	OwnerID        primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
