// Package apikey генерирует API-ключи пользователей.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Size — количество случайных байт в ключе. В hex это 40 символов.
const Size = 20

// Generate возвращает новый ключ: Size байт из crypto/rand в нижнем hex.
func Generate() (string, error) {
	const op = "apikey.Generate"
	buf := make([]byte, Size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}
