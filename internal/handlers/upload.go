package handlers

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pawmart/internal/models"
	"pawmart/internal/storage"
)

const maxImageSize = 5 << 20

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

func validateImageFile(file *multipart.FileHeader) error {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return fmt.Errorf("image file extension is required")
	}
	if _, ok := allowedImageExtensions[extension]; !ok {
		return fmt.Errorf("unsupported image type: %s", extension)
	}
	if file.Size > maxImageSize {
		return fmt.Errorf("image file too large (max 5MB)")
	}
	return nil
}

// uploadImageFiles validates every file first, then pushes them to the
// media store one by one. A failed upload mid-way leaves earlier
// objects in the bucket; callers get whatever was stored so far plus
// the error.
func uploadImageFiles(ctx context.Context, media *storage.MediaStore, folder string, files []*multipart.FileHeader) ([]models.Image, error) {
	for _, file := range files {
		if err := validateImageFile(file); err != nil {
			return nil, err
		}
	}

	images := make([]models.Image, 0, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			return images, fmt.Errorf("open upload %s: %w", file.Filename, err)
		}

		image, err := media.Upload(ctx, folder, file.Filename, src, file.Size)
		src.Close()
		if err != nil {
			return images, err
		}
		images = append(images, image)
	}

	return images, nil
}

// deleteImages removes stored objects best-effort, logging failures.
func deleteImages(ctx context.Context, media *storage.MediaStore, route string, images []models.Image) {
	for _, image := range images {
		if err := media.Delete(ctx, image.PublicID); err != nil {
			log.Printf("[%s] image delete failed for %s: %v", route, image.PublicID, err)
		}
	}
}

/*
=======================
  MULTIPART DOG INPUT
=======================
*/

type multipartDogInput struct {
	Name           string
	NameSet        bool
	Age            string
	AgeSet         bool
	Breed          string
	BreedSet       bool
	Location       string
	LocationSet    bool
	Bio            string
	BioSet         bool
	Gender         string
	GenderSet      bool
	Size           string
	SizeSet        bool
	Price          float64
	PriceSet       bool
	MicrochipID    string
	MicrochipIDSet bool
	DOB            string
	DOBSet         bool
	Sire           string
	SireSet        bool
	Dam            string
	DamSet         bool
	Photos         []*multipart.FileHeader
}

func parseMultipartDogRequest(c *gin.Context) (multipartDogInput, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		log.Println("PARSE ERROR:", err)
		return multipartDogInput{}, err
	}

	input := multipartDogInput{}

	// ---- STRING FIELDS ----

	if value, ok := c.GetPostForm("name"); ok {
		input.Name = strings.TrimSpace(value)
		input.NameSet = true
	}

	if value, ok := c.GetPostForm("age"); ok {
		input.Age = strings.TrimSpace(value)
		input.AgeSet = true
	}

	if value, ok := c.GetPostForm("breed"); ok {
		input.Breed = strings.TrimSpace(value)
		input.BreedSet = true
	}

	if value, ok := c.GetPostForm("location"); ok {
		input.Location = strings.TrimSpace(value)
		input.LocationSet = true
	}

	if value, ok := c.GetPostForm("bio"); ok {
		input.Bio = strings.TrimSpace(value)
		input.BioSet = true
	}

	if value, ok := c.GetPostForm("gender"); ok {
		input.Gender = strings.ToLower(strings.TrimSpace(value))
		input.GenderSet = true
	}

	if value, ok := c.GetPostForm("size"); ok {
		input.Size = strings.ToLower(strings.TrimSpace(value))
		input.SizeSet = true
	}

	if value, ok := c.GetPostForm("microchipId"); ok {
		input.MicrochipID = strings.TrimSpace(value)
		input.MicrochipIDSet = true
	}

	if value, ok := c.GetPostForm("dob"); ok {
		input.DOB = strings.TrimSpace(value)
		input.DOBSet = true
	}

	if value, ok := c.GetPostForm("sire"); ok {
		input.Sire = strings.TrimSpace(value)
		input.SireSet = true
	}

	if value, ok := c.GetPostForm("dam"); ok {
		input.Dam = strings.TrimSpace(value)
		input.DamSet = true
	}

	// ---- NUMBER FIELDS ----

	if value, ok := c.GetPostForm("price"); ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return multipartDogInput{}, err
		}
		input.Price = parsed
		input.PriceSet = true
	}

	// ---- PHOTO FILES ----

	if c.Request.MultipartForm != nil {
		input.Photos = c.Request.MultipartForm.File["photos"]
	}

	return input, nil
}

func respondMultipartError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
}

var dogGenders = map[string]struct{}{"male": {}, "female": {}}
var dogSizes = map[string]struct{}{"small": {}, "medium": {}, "large": {}}

func validDogGender(value string) bool {
	_, ok := dogGenders[value]
	return ok
}

func validDogSize(value string) bool {
	_, ok := dogSizes[value]
	return ok
}
