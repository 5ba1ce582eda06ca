package officer

import (
	"time"

	"github.com/uptrace/bun"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDataEntry Role = "data_entry"
)

type Officer struct {
	bun.BaseModel `bun:"table:officers,alias:o"`

	ID        string    `bun:"officer_id,pk" json:"officerId"`
	Name      string    `bun:"name,notnull" json:"name"`
	Username  string    `bun:"username,unique,notnull" json:"username"`
	Password  string    `bun:"password,notnull" json:"-"` // bcrypt hash, never exposed
	Role      Role      `bun:"role,notnull" json:"role"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// Seed is a plaintext officer definition hashed before insertion.
type Seed struct {
	ID       string
	Name     string
	Username string
	Password string
	Role     Role
}

// SampleSeeds are the bootstrap officers every fresh database receives.
var SampleSeeds = []Seed{
	{ID: "A1", Name: "Admin Officer", Username: "admin1", Password: "adminpass", Role: RoleAdmin},
	{ID: "A2", Name: "Data Entry Officer", Username: "entry1", Password: "entrypass", Role: RoleDataEntry},
}
