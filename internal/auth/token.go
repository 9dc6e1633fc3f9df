// Package auth は認証・認可の中核（資格情報ハッシュ、トークン発行・検証、
// アカウントサービス）を提供する。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/hitoshi/classbook/internal/model"
)

// トークン検証の失敗種別。呼び出し側が利用者向けメッセージを
// 区別して出せるよう、期限切れと不正を別のエラーにする。
var (
	// ErrTokenExpired はトークンの有効期限が過ぎていることを示す。
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid は署名不一致・構造不正などトークンが無効であることを示す。
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims はトークンに埋め込む利用者のアイデンティティクレーム。
// subjectには利用者のID（ObjectIDの16進表現）を格納する。
type Claims struct {
	Name                 string     `json:"name"`
	Lastname             string     `json:"lastname"`
	IdentificationNumber string     `json:"identification_number"`
	Role                 model.Role `json:"role"`
	Email                string     `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager は署名付き・期限付きベアラートークンの発行と検証を行う。
// 署名アルゴリズムは起動時に固定し、検証時にも一致を要求する。
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
}

// NewTokenManager はTokenManagerを生成する。
// algorithmには"HS256"などjwtが解決できるアルゴリズム名を指定する。
func NewTokenManager(secret, algorithm string) (*TokenManager, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}
	return &TokenManager{
		secret: []byte(secret),
		method: method,
	}, nil
}

// Issue は利用者のクレームを埋め込んだトークンを発行する。
// 有効期限は発行時刻+ttlの絶対時刻としてクレームに埋め込む。
func (m *TokenManager) Issue(user *model.User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Name:                 user.Name,
		Lastname:             user.Lastname,
		IdentificationNumber: user.IdentificationNumber,
		Role:                 user.Role,
		Email:                user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(m.method, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate はトークンの署名・アルゴリズム・有効期限を検証してクレームを返す。
// 期限切れはErrTokenExpired、それ以外の検証失敗はErrTokenInvalidを返す。
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// 発行時と異なるアルゴリズムで署名されたトークンは拒否する
		if t.Method.Alg() != m.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
