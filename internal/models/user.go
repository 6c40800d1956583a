// Package models содержит модель пользователя и документа, в котором хранятся
// все учётные записи. Структуры сериализуются в JSON-файл как есть.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
)

// User представляет учётную запись в документе.
type User struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`    // Уникальный ключ, сравнивается побайтно
	Password    string  `json:"password"` // Открытый текст либо bcrypt-хэш, см. lib/password
	ActiveUntil *string `json:"activeUntil"`
	APIKey      *string `json:"apiKey"`

	// Extra хранит поля записи, не описанные выше. Они возвращаются
	// в файл без изменений.
	Extra map[string]json.RawMessage `json:"-"`
}

type plainUser User

var userKeys = []string{"name", "email", "password", "activeUntil", "apiKey"}

func (u *User) UnmarshalJSON(data []byte) error {
	var p plainUser
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if isUserKey(key) {
			delete(raw, key)
		}
	}
	p.Extra = nil
	if len(raw) > 0 {
		p.Extra = raw
	}
	*u = User(p)
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	known, err := encode(plainUser(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return known, nil
	}
	return appendFields(known, u.Extra)
}

// Document — корневой объект файла хранилища.
// Порядок Users совпадает с порядком регистрации.
type Document struct {
	Users []User `json:"users"`

	// Extra хранит остальные ключи корневого объекта.
	Extra map[string]json.RawMessage `json:"-"`
}

// ErrNoUsers возвращается, если в корневом объекте нет списка "users".
var ErrNoUsers = errors.New(`document has no "users" list`)

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	usersRaw, ok := raw["users"]
	if !ok || bytes.Equal(bytes.TrimSpace(usersRaw), []byte("null")) {
		return ErrNoUsers
	}
	var users []User
	if err := json.Unmarshal(usersRaw, &users); err != nil {
		return err
	}
	delete(raw, "users")

	d.Users = users
	d.Extra = nil
	if len(raw) > 0 {
		d.Extra = raw
	}
	return nil
}

// MarshalJSON пишет "users" первым ключом, nil-список записывается как [].
func (d Document) MarshalJSON() ([]byte, error) {
	users := d.Users
	if users == nil {
		users = []User{}
	}
	known, err := encode(struct {
		Users []User `json:"users"`
	}{Users: users})
	if err != nil {
		return nil, err
	}

	extra := make(map[string]json.RawMessage, len(d.Extra))
	for k, v := range d.Extra {
		if k != "users" {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return known, nil
	}
	return appendFields(known, extra)
}

func isUserKey(key string) bool {
	for _, k := range userKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// appendFields дописывает fields в конец JSON-объекта obj в порядке ключей.
func appendFields(obj []byte, fields map[string]json.RawMessage) ([]byte, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := bytes.TrimSuffix(obj, []byte("}"))
	for i, k := range keys {
		if i > 0 || len(out) > 1 {
			out = append(out, ',')
		}
		name, err := encode(k)
		if err != nil {
			return nil, err
		}
		out = append(out, name...)
		out = append(out, ':')
		out = append(out, fields[k]...)
	}
	return append(out, '}'), nil
}

// FindByEmail возвращает указатель на запись внутри документа или nil.
// Изменения через указатель попадают в документ.
func (d *Document) FindByEmail(email string) *User {
	for i := range d.Users {
		if d.Users[i].Email == email {
			return &d.Users[i]
		}
	}
	return nil
}

// IsActive сообщает, может ли пользователь войти в момент now.
// Пустой ActiveUntil означает отсутствие ограничения. Значение, которое не
// удаётся разобрать, тоже не ограничивает вход.
func (u *User) IsActive(now time.Time) bool {
	if u.ActiveUntil == nil {
		return true
	}
	until, err := ParseActiveUntil(*u.ActiveUntil)
	if err != nil {
		return true
	}
	return !until.Before(now)
}

// ErrInvalidActiveUntil возвращается для строки, не подходящей ни под один формат.
var ErrInvalidActiveUntil = errors.New("invalid activeUntil format")

var activeUntilLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseActiveUntil разбирает дату окончания подписки.
// Значения без часового пояса считаются UTC.
func ParseActiveUntil(s string) (time.Time, error) {
	for _, layout := range activeUntilLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidActiveUntil
}
