package jwt

import "github.com/golang-jwt/jwt"

// Payload is the claim set of a drawify identity token. Tokens issued by
// the account service carry only the userId claim and may omit exp.
type Payload struct {
	jwt.StandardClaims

	// UserID is the opaque identity the board attributes edits to.
	UserID string `json:"userId"`
}
