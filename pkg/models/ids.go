package models

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// UsersTable is the table user records live in. Remote rows reference users
// through a RecordID pointing into this table.
const UsersTable = "users"

// recordIDTag is the CBOR tag SurrealDB puts on record ids.
const recordIDTag = 8

var errBadRecordID = errors.New("user record id must be [\"users\", \"<uuid>\"]")

// UserID identifies a signed-in user. The zero value means nobody is signed
// in.
type UserID struct {
	id uuid.UUID
}

// NewUserID returns a random user ID.
func NewUserID() UserID { return UserID{id: uuid.New()} }

// ParseUserID parses the canonical UUID text form.
func ParseUserID(s string) (UserID, error) {
	var u UserID
	if err := u.UnmarshalText([]byte(s)); err != nil {
		return UserID{}, err
	}
	return u, nil
}

func (u UserID) String() string { return u.id.String() }
func (u UserID) IsZero() bool   { return u.id == uuid.Nil }

// RecordID returns the record holding this user's row in table.
func (u UserID) RecordID(table string) surrealdb_models.RecordID {
	return surrealdb_models.RecordID{Table: table, ID: u.String()}
}

// MarshalText makes UserID a plain string in JSON and in map keys.
func (u UserID) MarshalText() ([]byte, error) {
	return []byte(u.id.String()), nil
}

func (u *UserID) UnmarshalText(text []byte) error {
	id, err := uuid.ParseBytes(text)
	if err != nil {
		return fmt.Errorf("invalid user ID: %w", err)
	}
	u.id = id
	return nil
}

// MarshalCBOR encodes the user as a SurrealDB record id into UsersTable.
func (u UserID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  recordIDTag,
		Content: [2]string{UsersTable, u.String()},
	})
}

func (u *UserID) UnmarshalCBOR(data []byte) error {
	var raw cbor.RawTag
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode user record id: %w", err)
	}
	if raw.Number != recordIDTag {
		return fmt.Errorf("decode user record id: unexpected tag %d", raw.Number)
	}
	var parts []string
	if err := cbor.Unmarshal(raw.Content, &parts); err != nil || len(parts) != 2 || parts[0] != UsersTable {
		return errBadRecordID
	}
	return u.UnmarshalText([]byte(parts[1]))
}

// Value stores the user as a uuid column; the zero ID is NULL.
func (u UserID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, nil
	}
	return u.String(), nil
}

func (u *UserID) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*u = UserID{}
		return nil
	case string:
		return u.UnmarshalText([]byte(v))
	case []byte:
		return u.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into UserID", value)
	}
}

func (UserID) GormDataType() string { return "uuid" }
