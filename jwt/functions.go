package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const algorithm = "HS256"

func sign(target string, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(target))
	return mac.Sum(nil)
}

// Create signs claims with the shared secret
func Create(claims Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("empty signing secret")
	}

	header := Header{
		Type:      "JWT",
		Algorithm: algorithm,
	}
	headerStr, err := json.Marshal(header)
	if err != nil {
		return "", err
	}

	payloadStr, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	headerB64 := base64.RawURLEncoding.EncodeToString(headerStr)
	payloadB64 := base64.RawURLEncoding.EncodeToString(payloadStr)
	target := headerB64 + "." + payloadB64

	signatureB64 := base64.RawURLEncoding.EncodeToString(sign(target, secret))

	return target + "." + signatureB64, nil
}

// Validate checks the signature and the time window of the token
func Validate(jwt string, secret []byte, now time.Time) (*Header, *Claims, error) {

	split := strings.Split(jwt, ".")
	if len(split) != 3 {
		return nil, nil, fmt.Errorf("invalid jwt format")
	}

	var header Header
	headerBytes, err := base64.RawURLEncoding.DecodeString(split[0])
	if err != nil {
		return nil, nil, err
	}
	err = json.Unmarshal(headerBytes, &header)
	if err != nil {
		return nil, nil, err
	}

	if header.Type != "JWT" || header.Algorithm != algorithm {
		return nil, nil, fmt.Errorf("unsupported jwt type")
	}

	// check signature before trusting the payload
	signatureBytes, err := base64.RawURLEncoding.DecodeString(split[2])
	if err != nil {
		return nil, nil, err
	}
	if !hmac.Equal(signatureBytes, sign(split[0]+"."+split[1], secret)) {
		return nil, nil, fmt.Errorf("invalid signature")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(split[1])
	if err != nil {
		return nil, nil, err
	}

	var claims Claims
	err = json.Unmarshal(payloadBytes, &claims)
	if err != nil {
		return nil, nil, err
	}

	if claims.ExpirationTime != "" {
		exp, err := strconv.ParseInt(claims.ExpirationTime, 10, 64)
		if err != nil {
			return nil, nil, err
		}
		if exp < now.Unix() {
			return nil, nil, fmt.Errorf("jwt is already expired")
		}
	}

	if claims.NotBefore != "" {
		nbf, err := strconv.ParseInt(claims.NotBefore, 10, 64)
		if err != nil {
			return nil, nil, err
		}
		if nbf > now.Unix() {
			return nil, nil, fmt.Errorf("jwt is not valid yet")
		}
	}

	return &header, &claims, nil
}
