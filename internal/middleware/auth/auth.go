// Package auth помечает запросы анонимным идентификатором владельца.
// Идентификатор хранится в подписанной cookie и попадает в записи ссылок
// и события аудита. Доступ к маршрутам не ограничивается.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieName = "user_id"
	cookieTTL  = 3600 * 24 * 30

	userIDKey = "user_id"
)

type signer struct {
	key []byte
}

// newSigner без секрета генерирует ключ процесса: cookie не переживут рестарт
func newSigner(secret string) signer {
	if secret != "" {
		return signer{key: []byte(secret)}
	}
	key := make([]byte, 32)
	_, _ = rand.Read(key)
	return signer{key: key}
}

func (s signer) mac(userID string) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(userID))
	return mac.Sum(nil)
}

// sign возвращает значение cookie вида "<id>.<base64 hmac>"
func (s signer) sign(userID string) string {
	return userID + "." + base64.RawURLEncoding.EncodeToString(s.mac(userID))
}

func (s signer) verify(value string) (string, bool) {
	userID, signature, ok := strings.Cut(value, ".")
	if !ok || userID == "" {
		return "", false
	}
	received, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return "", false
	}
	return userID, hmac.Equal(received, s.mac(userID))
}

// Middleware читает подписанную cookie владельца или выдаёт новую.
func Middleware(secret string) gin.HandlerFunc {
	s := newSigner(secret)
	return func(c *gin.Context) {
		userID, valid := "", false
		if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
			userID, valid = s.verify(cookie)
		}
		if !valid {
			userID = uuid.NewString()
			c.SetCookie(CookieName, s.sign(userID), cookieTTL, "/", "", false, true)
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID возвращает идентификатор владельца запроса или пустую строку,
// если middleware не подключен.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
