package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(Config{ServerURL: server.URL, Timeout: 5 * time.Second})
}

func TestClient_Login(t *testing.T) {
	t.Run("parses the token pair and minimal user", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "a@b.com", body["email"])

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"success","accessToken":"T1","refreshToken":"R1","data":{"user":{"id":"u1","username":"alice"}}}`))
		})

		client := newTestClient(t, mux)

		result, err := client.Login(context.Background(), "a@b.com", "x")
		require.NoError(t, err)
		assert.Equal(t, "T1", result.AccessToken)
		assert.Equal(t, "R1", result.RefreshToken)
		assert.Equal(t, "u1", result.User.ID)
		assert.Equal(t, "alice", result.User.Username)
	})

	t.Run("surfaces the backend message on failure", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"status":"fail","message":"Incorrect email or password"}`))
		})

		client := newTestClient(t, mux)

		_, err := client.Login(context.Background(), "a@b.com", "wrong")
		require.Error(t, err)

		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "Incorrect email or password", apiErr.Message)
		assert.NotEmpty(t, apiErr.RequestID)
		assert.False(t, IsUnauthorized(err))
	})
}

func TestClient_Me(t *testing.T) {
	t.Run("sends the bearer token", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
			w.Write([]byte(`{"status":"success","data":{"user":{"id":"u1"}}}`))
		})

		client := newTestClient(t, mux)

		user, err := client.Me(context.Background(), "T1")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("maps 401 onto ErrUnauthorized", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"jwt expired"}`))
		})

		client := newTestClient(t, mux)

		_, err := client.Me(context.Background(), "expired")
		assert.True(t, IsUnauthorized(err))
	})
}

func TestClient_RefreshToken(t *testing.T) {
	t.Run("sends the refresh token in the body", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "R1", body["refreshToken"])

			w.Write([]byte(`{"status":"success","accessToken":"T2"}`))
		})

		client := newTestClient(t, mux)

		pair, err := client.RefreshToken(context.Background(), "R1")
		require.NoError(t, err)
		assert.Equal(t, "T2", pair.AccessToken)
		assert.Empty(t, pair.RefreshToken)
	})
}

func TestClient_CreatePremiumPayment(t *testing.T) {
	t.Run("submits multipart form data", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /payments/create-premium-payment", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
			assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "premium", r.FormValue("plan"))
			assert.Equal(t, "p1", r.FormValue("productId"))

			file, header, err := r.FormFile("images")
			require.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "photo.jpg", header.Filename)

			body, err := io.ReadAll(file)
			require.NoError(t, err)
			assert.Equal(t, "jpeg-bytes", string(body))

			w.Write([]byte(`{"status":"success","data":{"reference":"pay-1","externalRef":"ext-1","paymentUrl":"https://pay.example/pay-1"}}`))
		})

		client := newTestClient(t, mux)

		fields := map[string]string{"plan": "premium", "productId": "p1"}
		uploads := []Upload{{
			Field:    "images",
			Filename: "photo.jpg",
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("jpeg-bytes")), nil
			},
		}}

		intent, err := client.CreatePremiumPayment(context.Background(), "T1", fields, uploads)
		require.NoError(t, err)
		assert.Equal(t, "pay-1", intent.Reference)
		assert.Equal(t, "ext-1", intent.ExternalRef)
		assert.Equal(t, "https://pay.example/pay-1", intent.PaymentURL)
	})
}

func TestClient_CheckPaymentStatus(t *testing.T) {
	t.Run("returns the raw status", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /payments/check-status/pay-1", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
			w.Write([]byte(`{"status":"pending"}`))
		})

		client := newTestClient(t, mux)

		status, err := client.CheckPaymentStatus(context.Background(), "T1", "pay-1")
		require.NoError(t, err)
		assert.Equal(t, "pending", status)
	})
}

func TestClient_ProductsNeedingRenewal(t *testing.T) {
	t.Run("filters products on hidden plans", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /products/needs-renewal", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"success","data":{"products":[
				{"_id":"p1","productName":"Visible","price":10,"promotionPlan":{"plan":"premium","isHidden":false}},
				{"_id":"p2","productName":"Hidden","price":20,"promotionPlan":{"plan":"premium","isHidden":true}},
				{"_id":"p3","productName":"NoPlan","price":30}
			]}}`))
		})

		client := newTestClient(t, mux)

		products, err := client.ProductsNeedingRenewal(context.Background(), "T1")
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "p1", products[0].ID)
		assert.Equal(t, "p3", products[1].ID)
	})
}
