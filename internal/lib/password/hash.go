// Package password определяет, в каком виде пароль хранится в документе
// и как он сверяется при входе.
//
// По умолчанию пароль хранится как есть (Plain) для совместимости с уже
// существующими файлами. Bcrypt хранит bcrypt-хэш в том же поле.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Policy преобразует пароль перед сохранением и сверяет его при входе.
type Policy interface {
	Prepare(raw string) (string, error)
	Matches(stored, raw string) bool
}

// New возвращает Bcrypt при hashing == true, иначе Plain.
func New(hashing bool) Policy {
	if hashing {
		return Bcrypt{Cost: bcrypt.DefaultCost}
	}
	return Plain{}
}

// Plain хранит пароль в открытом виде.
type Plain struct{}

func (Plain) Prepare(raw string) (string, error) {
	return raw, nil
}

func (Plain) Matches(stored, raw string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(raw)) == 1
}

// MaxBcryptLen — предел длины входа bcrypt в байтах.
const MaxBcryptLen = 72

// Bcrypt хранит bcrypt-хэш пароля. Пароли длиннее MaxBcryptLen байт
// перед хэшированием сворачиваются в base64(SHA-256).
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Prepare(raw string) (string, error) {
	return GetHash(bcryptInput(raw), b.Cost)
}

func (Bcrypt) Matches(stored, raw string) bool {
	return CompareHash(stored, bcryptInput(raw)) == nil
}

func bcryptInput(raw string) string {
	if len(raw) <= MaxBcryptLen {
		return raw
	}
	sum := sha256.Sum256([]byte(raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хэш.
func GetHash(password string, cost int) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе ошибку.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
