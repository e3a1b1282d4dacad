package models

// Image is a stored media object reference: the object key in the
// media bucket plus the public URL served to clients.
type Image struct {
	PublicID string `bson:"publicId" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}
