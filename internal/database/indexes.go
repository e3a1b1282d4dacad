package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: email_unique index created")
	return nil
}

// EnsurePaymentIndexes makes pidx unique so that two racing
// complete-payment requests cannot both insert a record for the same
// gateway transaction.
func EnsurePaymentIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("payments").Indexes()

	pidxIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "pidx", Value: 1}},
		Options: options.Index().
			SetName("pidx_unique").
			SetUnique(true),
	}

	log.Println("EnsurePaymentIndexes: creating pidx_unique index")
	_, err := indexes.CreateOne(ctx, pidxIndex)
	if err != nil {
		log.Println("EnsurePaymentIndexes: pidx index error:", err)
		return err
	}
	log.Println("EnsurePaymentIndexes: pidx_unique index created")
	return nil
}

func EnsureDogIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("dogs").Indexes()

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "breederId", Value: 1}},
			Options: options.Index().SetName("breederId_index"),
		},
		{
			Keys:    bson.D{{Key: "isPay", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("isPay_createdAt_index"),
		},
	}

	log.Println("EnsureDogIndexes: creating dog indexes")
	_, err := indexes.CreateMany(ctx, models)
	if err != nil {
		log.Println("EnsureDogIndexes: dog index error:", err)
		return err
	}
	log.Println("EnsureDogIndexes: dog indexes created")
	return nil
}
