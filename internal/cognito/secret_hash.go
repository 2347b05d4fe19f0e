package cognito

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ComputeSecretHash returns the SECRET_HASH Cognito expects from app clients
// that have a client secret: Base64(HMAC_SHA256(secret, username+clientID)).
func ComputeSecretHash(username, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username))
	mac.Write([]byte(clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
