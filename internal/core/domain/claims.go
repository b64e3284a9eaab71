package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidClaims       = errors.New("invalid claim set")
	ErrUnknownAdminSubtype = errors.New("unknown admin subtype")
	ErrUnknownRole         = errors.New("unknown role")
)

type RoleKind string

const (
	RoleKindEndUser   RoleKind = "end_user"
	RoleKindPublisher RoleKind = "publisher"
	RoleKindAdmin     RoleKind = "admin"
)

type AdminSubtype string

const (
	AdminMarketing AdminSubtype = "marketing"
	AdminSupport   AdminSubtype = "support"
)

// AdminSubtypes lists every subtype an administrator may carry.
var AdminSubtypes = []AdminSubtype{AdminMarketing, AdminSupport}

func ParseAdminSubtype(s string) (AdminSubtype, error) {
	for _, st := range AdminSubtypes {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAdminSubtype, s)
}

// Role is a closed set of variants: EndUser, Publisher and Admin. The
// unexported marker keeps other packages from adding variants.
type Role interface {
	Kind() RoleKind
	isRole()
}

type EndUser struct{}

func (EndUser) Kind() RoleKind { return RoleKindEndUser }
func (EndUser) isRole()        {}

type Publisher struct {
	PublisherID int64
}

func (Publisher) Kind() RoleKind { return RoleKindPublisher }
func (Publisher) isRole()        {}

type Admin struct {
	Subtype AdminSubtype
}

func (Admin) Kind() RoleKind { return RoleKindAdmin }
func (Admin) isRole()        {}

// NewRole builds a role variant from its flat wire form.
func NewRole(kind string, publisherID int64, adminSubtype string) (Role, error) {
	switch RoleKind(kind) {
	case RoleKindEndUser:
		return EndUser{}, nil
	case RoleKindPublisher:
		if publisherID <= 0 {
			return nil, fmt.Errorf("%w: publisher role requires a publisher id", ErrInvalidClaims)
		}
		return Publisher{PublisherID: publisherID}, nil
	case RoleKindAdmin:
		st, err := ParseAdminSubtype(adminSubtype)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
		}
		return Admin{Subtype: st}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, kind)
	}
}

// ClaimSet is the verified payload of a credential.
type ClaimSet struct {
	ID        string
	SubjectID int64
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (c *ClaimSet) Validate() error {
	if c.SubjectID <= 0 {
		return fmt.Errorf("%w: subject id must be positive", ErrInvalidClaims)
	}
	if !c.ExpiresAt.After(c.IssuedAt) {
		return fmt.Errorf("%w: expiry must be after issue time", ErrInvalidClaims)
	}
	switch r := c.Role.(type) {
	case EndUser:
	case Publisher:
		if r.PublisherID <= 0 {
			return fmt.Errorf("%w: publisher role requires a publisher id", ErrInvalidClaims)
		}
	case Admin:
		if _, err := ParseAdminSubtype(string(r.Subtype)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
		}
	case nil:
		return fmt.Errorf("%w: role is required", ErrInvalidClaims)
	}
	return nil
}

// PublisherID returns the publisher id carried by a Publisher claim set.
func (c *ClaimSet) PublisherID() (int64, bool) {
	if p, ok := c.Role.(Publisher); ok {
		return p.PublisherID, true
	}
	return 0, false
}

// AdminSubtype returns the subtype carried by an Admin claim set.
func (c *ClaimSet) AdminSubtype() (AdminSubtype, bool) {
	if a, ok := c.Role.(Admin); ok {
		return a.Subtype, true
	}
	return "", false
}

// Credential is a signed token together with its expiry.
type Credential struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}
