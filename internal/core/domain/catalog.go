package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryMovie  Category = "Movie"
	CategorySeries Category = "Series"
)

type Show struct {
	ID               int64     `json:"id"`
	OwnerPublisherID int64     `json:"owner_publisher_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Genre            string    `json:"genre"`
	Category         Category  `json:"category"`
	MovieLink        string    `json:"movie_link,omitempty"`
	ImageRef         string    `json:"image_ref"`
	CreatedAt        time.Time `json:"created_at"`
}

type Episode struct {
	ID          int64     `json:"id"`
	ShowID      int64     `json:"show_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EpisodeLink string    `json:"episode_link"`
	ImageRef    string    `json:"image_ref"`
	CreatedAt   time.Time `json:"created_at"`
}

// ShowUpdate holds the mutable text fields of a show. Ownership is not among them.
type ShowUpdate struct {
	Title       *string
	Description *string
	Genre       *string
	MovieLink   *string
}

// EpisodeUpdate holds the mutable text fields of an episode. The parent show is fixed.
type EpisodeUpdate struct {
	Title       *string
	Description *string
	EpisodeLink *string
}

type Favorite struct {
	SubjectID int64     `json:"subject_id"`
	ShowID    int64     `json:"show_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteState is the result of a toggle.
type FavoriteState struct {
	ShowID   int64 `json:"show_id"`
	Favorite bool  `json:"favorite"`
}

type UserAccount struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	DisplayName  string       `json:"display_name"`
	PasswordHash string       `json:"-"`
	RoleKind     RoleKind     `json:"role"`
	PublisherID  int64        `json:"publisher_id,omitempty"`
	AdminSubtype AdminSubtype `json:"admin_subtype,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Role rebuilds the closed role variant from the stored flat fields.
func (a *UserAccount) Role() (Role, error) {
	return NewRole(string(a.RoleKind), a.PublisherID, string(a.AdminSubtype))
}

type Transaction struct {
	ID        int64           `json:"id"`
	SubjectID int64           `json:"subject_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// Plan is a purchasable subscription.
type Plan struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Receipt is what a purchase returns: the plan bought and the income it recorded.
type Receipt struct {
	Plan        Plan         `json:"plan"`
	Transaction *Transaction `json:"transaction"`
}

type CampaignKind string

const (
	CampaignPromotion CampaignKind = "promotion"
	CampaignOffer     CampaignKind = "offer"
)

// Resource maps a campaign kind to the resource type guarding it.
func (k CampaignKind) Resource() ResourceType {
	if k == CampaignOffer {
		return ResourceOffer
	}
	return ResourcePromotion
}

type Campaign struct {
	ID              int64           `json:"id"`
	Kind            CampaignKind    `json:"kind"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartsAt        time.Time       `json:"starts_at"`
	EndsAt          time.Time       `json:"ends_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewAccount describes an account to create with an explicit role.
type NewAccount struct {
	Email       string
	DisplayName string
	Password    string
	Role        Role
}
