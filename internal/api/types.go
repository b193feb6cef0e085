package api

import "encoding/json"

// StatusSuccess is the value of the envelope status field on successful
// responses.
const StatusSuccess = "success"

// User is the profile object returned by the auth and user endpoints.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginResult holds the token pair and minimal user object returned by
// a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         User
}

// TokenPair holds tokens returned by the refresh endpoint. RefreshToken
// is empty when the backend did not rotate it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// PaymentIntent describes one outstanding external payment created by
// the backend. The user completes it on PaymentURL while the client
// polls CheckPaymentStatus with Reference.
type PaymentIntent struct {
	Reference   string `json:"reference"`
	ExternalRef string `json:"externalRef"`
	PaymentURL  string `json:"paymentUrl"`
}

// PromotionPlan is the promotion metadata attached to a product.
type PromotionPlan struct {
	Plan     string `json:"plan"`
	IsHidden bool   `json:"isHidden"`
	Expired  bool   `json:"expired"`
}

// Product is a marketplace product listing.
type Product struct {
	ID            string         `json:"_id"`
	Name          string         `json:"productName"`
	Price         float64        `json:"price"`
	PromotionPlan *PromotionPlan `json:"promotionPlan"`
}

// envelope covers the fields shared by every backend response.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type loginResponse struct {
	envelope
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Data         struct {
		User User `json:"user"`
	} `json:"data"`
}

type refreshResponse struct {
	envelope
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	envelope
	Data struct {
		User User `json:"user"`
	} `json:"data"`
}

type registerResponse struct {
	envelope
	Data json.RawMessage `json:"data"`
}

type paymentCreateResponse struct {
	envelope
	Data PaymentIntent `json:"data"`
}

type paymentStatusResponse struct {
	envelope
}

type productsResponse struct {
	envelope
	Data struct {
		Products []Product `json:"products"`
	} `json:"data"`
}
