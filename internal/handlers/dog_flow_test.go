package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"pawmart/internal/storage"
)

func newDogRequestContext(t *testing.T, method, target string, userID primitive.ObjectID, build func(w *multipart.Writer)) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	if build != nil {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		build(writer)
		_ = writer.Close()
		c.Request = httptest.NewRequest(method, target, body)
		c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	c.Set("userId", userID)
	return c, w
}

func userDoc(id primitive.ObjectID, name, role string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "email", Value: "sita@example.com"},
		{Key: "role", Value: role},
		{Key: "isVerified", Value: true},
	}
}

func TestGetAllDogsExcludesAdoptedListings(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("public listing filter", func(mt *mtest.T) {
		dogID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "pawmart.dogs", mtest.FirstBatch,
				dogDoc(dogID, primitive.NewObjectID(), 1500, false)),
		)

		c, w := newDogRequestContext(mt.T, "GET", "/api/v1/dogs/all-dogs", primitive.NewObjectID(), nil)
		GetAllDogs(mt.DB)(c)

		if w.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var found bool
		for _, ev := range mt.GetAllStartedEvents() {
			if ev.CommandName != "find" {
				continue
			}
			found = true
			notPaid, ok := ev.Command.Lookup("filter", "isPay", "$ne").BooleanOK()
			if !ok || !notPaid {
				mt.Fatalf("expected find filter isPay $ne true, got %s", ev.Command)
			}
		}
		if !found {
			mt.Fatal("expected a find command against the dogs collection")
		}
	})
}

func TestUpdateDogRejectsNonOwner(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("different breeder", func(mt *mtest.T) {
		dogID := primitive.NewObjectID()
		ownerID := primitive.NewObjectID()
		callerID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pawmart.dogs", mtest.FirstBatch,
			dogDoc(dogID, ownerID, 1500, false)))

		c, w := newDogRequestContext(mt.T, "PUT", "/api/v1/dogs/update-dog/"+dogID.Hex(), callerID, func(w *multipart.Writer) {
			_ = w.WriteField("name", "Hijacked")
		})
		c.Params = gin.Params{{Key: "id", Value: dogID.Hex()}}
		UpdateDog(mt.DB, nil)(c)

		if w.Code != http.StatusForbidden {
			mt.Fatalf("expected 403 for a non-owner, got %d: %s", w.Code, w.Body.String())
		}
		for _, ev := range mt.GetAllStartedEvents() {
			if ev.CommandName == "update" {
				mt.Fatal("expected the listing to stay unchanged for a non-owner")
			}
		}
	})
}

func TestUpdateDogRejectsEmptyLocation(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("blank location field", func(mt *mtest.T) {
		dogID := primitive.NewObjectID()
		ownerID := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pawmart.dogs", mtest.FirstBatch,
			dogDoc(dogID, ownerID, 1500, false)))

		c, w := newDogRequestContext(mt.T, "PUT", "/api/v1/dogs/update-dog/"+dogID.Hex(), ownerID, func(w *multipart.Writer) {
			_ = w.WriteField("location", "   ")
		})
		c.Params = gin.Params{{Key: "id", Value: dogID.Hex()}}
		UpdateDog(mt.DB, nil)(c)

		if w.Code != http.StatusBadRequest {
			mt.Fatalf("expected 400 for a blank location, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "location required") {
			mt.Fatalf("expected location required message, got %s", w.Body.String())
		}
		for _, ev := range mt.GetAllStartedEvents() {
			if ev.CommandName == "update" {
				mt.Fatal("expected the listing to stay unchanged when location is blank")
			}
		}
	})
}

func TestAddDogStoreFailureReturns500(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("media store down", func(mt *mtest.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "access denied", http.StatusForbidden)
		}))
		defer srv.Close()

		media, err := storage.NewMediaStore(storage.Options{
			Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
			AccessKey: "test",
			SecretKey: "test",
			Bucket:    "pawmart-media",
			BaseURL:   srv.URL,
		})
		if err != nil {
			mt.Fatalf("media store init: %v", err)
		}

		breederID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pawmart.users", mtest.FirstBatch,
			userDoc(breederID, "Sita Thapa", "breeder")))

		c, w := newDogRequestContext(mt.T, "POST", "/api/v1/dogs/add-dog", breederID, func(w *multipart.Writer) {
			_ = w.WriteField("name", "Rex")
			_ = w.WriteField("breed", "Husky")
			_ = w.WriteField("location", "Pokhara")
			_ = w.WriteField("gender", "male")
			_ = w.WriteField("size", "medium")
			_ = w.WriteField("price", "1500")
			part, err := w.CreateFormFile("photos", "rex.jpg")
			if err != nil {
				mt.Fatalf("create form file: %v", err)
			}
			part.Write([]byte("fake image bytes"))
		})
		AddDog(mt.DB, media)(c)

		if w.Code != http.StatusInternalServerError {
			mt.Fatalf("expected 500 for a store failure, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "photo upload failed") {
			mt.Fatalf("expected upload failure message, got %s", w.Body.String())
		}
	})
}

func TestAddDogRejectsUnsupportedPhotoType(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("pdf upload", func(mt *mtest.T) {
		c, w := newDogRequestContext(mt.T, "POST", "/api/v1/dogs/add-dog", primitive.NewObjectID(), func(w *multipart.Writer) {
			_ = w.WriteField("name", "Rex")
			_ = w.WriteField("breed", "Husky")
			_ = w.WriteField("location", "Pokhara")
			_ = w.WriteField("gender", "male")
			_ = w.WriteField("size", "medium")
			_ = w.WriteField("price", "1500")
			part, err := w.CreateFormFile("photos", "contract.pdf")
			if err != nil {
				mt.Fatalf("create form file: %v", err)
			}
			part.Write([]byte("not an image"))
		})
		AddDog(mt.DB, nil)(c)

		if w.Code != http.StatusBadRequest {
			mt.Fatalf("expected 400 for an unsupported photo type, got %d: %s", w.Code, w.Body.String())
		}
	})
}
