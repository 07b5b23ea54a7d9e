package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Subscription tiers a user can be on.
const (
	SubscriptionStarter  = "starter"
	SubscriptionPro      = "pro"
	SubscriptionBusiness = "business"
)

// User represents a registered account. SessionToken holds the token issued by
// the most recent login; the auth gate only accepts bearer tokens equal to it,
// so a later login or a logout invalidates everything issued before.
type User struct {
	ID                bson.ObjectID `bson:"_id,omitempty"`
	Email             string        `bson:"email"`
	PasswordHash      string        `bson:"password_hash"`
	Subscription      string        `bson:"subscription"`
	Verified          bool          `bson:"verified"`
	VerificationToken string        `bson:"verification_token"`
	SessionToken      string        `bson:"session_token"`
	AvatarURL         string        `bson:"avatar_url"`
	CreatedAt         time.Time     `bson:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at"`
}
