package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"campus-assistant/internal/config"
)

// GenerateJWT issues a 24h HS256 token for a student. Name and department
// ride along as claims so clients can greet without a profile fetch.
func GenerateJWT(studentID, name, department string) (string, error) {
	claims := jwt.MapClaims{
		"student_id": studentID,
		"name":       name,
		"department": department,
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// ValidateJWT verifies the token and returns the student_id claim.
func ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		studentID, ok := claims["student_id"].(string)
		if !ok || studentID == "" {
			return "", fmt.Errorf("token missing student_id claim")
		}
		return studentID, nil
	}

	return "", fmt.Errorf("invalid token")
}
