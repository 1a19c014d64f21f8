package models

import "strings"

type Role string

const (
	Admin              Role = "admin"
	PengurusKetua      Role = "pengurus_ketua"
	PengurusSekretaris Role = "pengurus_sekretaris"
	PengurusBendahara  Role = "pengurus_bendahara"
	SekbidKoordinator  Role = "sekbid_koordinator"
	SekbidAnggota      Role = "sekbid_anggota"
	Anggota            Role = "anggota"
)

var Roles = []Role{Admin, PengurusKetua, PengurusSekretaris, PengurusBendahara, SekbidKoordinator, SekbidAnggota, Anggota}

func (r Role) Valid() bool {
	for _, x := range Roles {
		if x == r {
			return true
		}
	}
	return false
}

// HasPrefix is used for organisational filtering ("pengurus_", "sekbid_").
func (r Role) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(r), prefix)
}

type Participant struct {
	ID             int64   `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	Email          string  `db:"email" json:"email"`
	Phone          *string `db:"phone" json:"phone,omitempty"`
	TelegramChatID *int64  `db:"telegram_chat_id" json:"telegram_chat_id,omitempty"`
	Role           Role    `db:"role" json:"role"`
	OrgUnit        string  `db:"org_unit" json:"org_unit"`
	IsActive       bool    `db:"is_active" json:"is_active"`
}
