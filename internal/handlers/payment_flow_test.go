package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"pawmart/internal/khalti"
)

// fakeGateway serves the lookup endpoint with a fixed response and
// counts how many times it was hit.
func fakeGateway(resp khalti.LookupResponse, calls *int32) (*khalti.Client, *httptest.Server) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	return khalti.New(srv.URL, "test-key"), srv
}

func completePaymentContext(pidx string, dogID, userID primitive.ObjectID) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/dogs/complete-payment?pidx="+pidx+"&dogId="+dogID.Hex(), nil)
	c.Set("userId", userID)
	return c, w
}

func paymentDoc(id primitive.ObjectID, pidx string, dogID, userID primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "pidx", Value: pidx},
		{Key: "dogId", Value: dogID},
		{Key: "status", Value: "completed"},
		{Key: "amount", Value: int64(150000)},
		{Key: "userId", Value: userID},
	}
}

func dogDoc(id, breederID primitive.ObjectID, price float64, isPay bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Rex"},
		{Key: "breed", Value: "Husky"},
		{Key: "location", Value: "Pokhara"},
		{Key: "gender", Value: "male"},
		{Key: "size", Value: "medium"},
		{Key: "price", Value: price},
		{Key: "isPay", Value: isPay},
		{Key: "breederId", Value: breederID},
		{Key: "breederName", Value: "Sita Thapa"},
	}
}

func commandNames(mt *mtest.T) []string {
	names := make([]string, 0)
	for _, ev := range mt.GetAllStartedEvents() {
		names = append(names, ev.CommandName)
	}
	return names
}

func TestCompletePaymentReturnsExistingRecordWithoutGatewayCall(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("existing pidx short-circuits", func(mt *mtest.T) {
		dogID := primitive.NewObjectID()
		userID := primitive.NewObjectID()
		var gatewayCalls int32
		gateway, srv := fakeGateway(khalti.LookupResponse{}, &gatewayCalls)
		defer srv.Close()

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pawmart.payments", mtest.FirstBatch,
			paymentDoc(primitive.NewObjectID(), "pidx-1", dogID, userID)))

		c, w := completePaymentContext("pidx-1", dogID, userID)
		CompletePayment(mt.DB, gateway)(c)

		if w.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "payment already processed") {
			mt.Fatalf("expected already-processed message, got %s", w.Body.String())
		}
		if n := atomic.LoadInt32(&gatewayCalls); n != 0 {
			mt.Fatalf("expected no gateway calls, got %d", n)
		}
		for _, name := range commandNames(mt) {
			if name == "insert" || name == "update" {
				mt.Fatalf("expected no writes for an already-processed pidx, saw %s", name)
			}
		}
	})
}

func TestCompletePaymentPendingStatusWritesNothing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("pending lookup", func(mt *mtest.T) {
		dogID := primitive.NewObjectID()
		userID := primitive.NewObjectID()
		var gatewayCalls int32
		gateway, srv := fakeGateway(khalti.LookupResponse{Pidx: "pidx-2", Status: "Pending"}, &gatewayCalls)
		defer srv.Close()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "pawmart.payments", mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "pawmart.dogs", mtest.FirstBatch,
				dogDoc(dogID, primitive.NewObjectID(), 1500, false)),
		)

		c, w := completePaymentContext("pidx-2", dogID, userID)
		CompletePayment(mt.DB, gateway)(c)

		if w.Code != http.StatusBadRequest {
			mt.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "payment not completed") {
			mt.Fatalf("expected not-completed message, got %s", w.Body.String())
		}
		for _, name := range commandNames(mt) {
			if name == "insert" || name == "update" {
				mt.Fatalf("expected no writes for a pending transaction, saw %s", name)
			}
		}
	})
}

func TestCompletePaymentCompletedWritesPaymentAndMarksDog(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("completed lookup", func(mt *mtest.T) {
		dogID := primitive.NewObjectID()
		userID := primitive.NewObjectID()
		var gatewayCalls int32
		gateway, srv := fakeGateway(khalti.LookupResponse{
			Pidx:          "pidx-3",
			Status:        khalti.StatusCompleted,
			TotalAmount:   150000,
			TransactionID: "txn-1",
		}, &gatewayCalls)
		defer srv.Close()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "pawmart.payments", mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "pawmart.dogs", mtest.FirstBatch,
				dogDoc(dogID, primitive.NewObjectID(), 1500, false)),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		c, w := completePaymentContext("pidx-3", dogID, userID)
		CompletePayment(mt.DB, gateway)(c)

		if w.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "payment completed") {
			mt.Fatalf("expected completed message, got %s", w.Body.String())
		}

		var sawInsert, sawDogUpdate bool
		for _, ev := range mt.GetAllStartedEvents() {
			switch ev.CommandName {
			case "insert":
				sawInsert = true
			case "update":
				if coll, ok := ev.Command.Lookup("update").StringValueOK(); ok && coll == "dogs" {
					if isPay, ok := ev.Command.Lookup("updates", "0", "u", "$set", "isPay").BooleanOK(); !ok || !isPay {
						mt.Fatalf("expected dogs update to set isPay=true, got %s", ev.Command)
					}
					sawDogUpdate = true
				}
			}
		}
		if !sawInsert || !sawDogUpdate {
			mt.Fatalf("expected a payment insert and a dogs update, got insert=%v update=%v", sawInsert, sawDogUpdate)
		}
	})
}

func TestCompletePaymentDuplicateInsertResolvesToWinner(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("lost insert race", func(mt *mtest.T) {
		dogID := primitive.NewObjectID()
		userID := primitive.NewObjectID()
		var gatewayCalls int32
		gateway, srv := fakeGateway(khalti.LookupResponse{
			Pidx:        "pidx-4",
			Status:      khalti.StatusCompleted,
			TotalAmount: 150000,
		}, &gatewayCalls)
		defer srv.Close()

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "pawmart.payments", mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "pawmart.dogs", mtest.FirstBatch,
				dogDoc(dogID, primitive.NewObjectID(), 1500, false)),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index:   0,
				Code:    11000,
				Message: "E11000 duplicate key error collection: pawmart.payments index: pidx_unique",
			}),
			mtest.CreateCursorResponse(0, "pawmart.payments", mtest.FirstBatch,
				paymentDoc(primitive.NewObjectID(), "pidx-4", dogID, userID)),
		)

		c, w := completePaymentContext("pidx-4", dogID, userID)
		CompletePayment(mt.DB, gateway)(c)

		if w.Code != http.StatusOK {
			mt.Fatalf("expected 200 after losing the insert race, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "payment already processed") {
			mt.Fatalf("expected already-processed message, got %s", w.Body.String())
		}
		for _, ev := range mt.GetAllStartedEvents() {
			if ev.CommandName == "update" {
				mt.Fatal("expected no dogs update after losing the insert race")
			}
		}
	})
}
