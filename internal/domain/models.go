// Package domain defines the persistence models for users, pets, donation
// campaigns, payment records, and adoption requests. These types are mapped
// with GORM and form the core data layer of the pet-adoption backend.
package domain

import "time"

// Role values assignable to a User. New users default to RoleUser;
// promotion to RoleAdmin is an admin-only operation.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Adoption request lifecycle states. A request starts as StatusPending and
// transitions exactly once to StatusAccepted or StatusRejected.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// User represents a platform account, keyed by email. Users are upserted by
// email on login, so Email carries a unique index alongside the UUID primary
// key used for admin promotion by id.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email: unique account identifier; all ownership checks compare emails.
//   - Name: display name supplied by the client.
//   - Role: "user" or "admin" (enforced by DB constraint, defaults to "user").
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	Name      string    `json:"name"       gorm:"type:varchar(255)"`
	Role      string    `json:"role"       gorm:"type:varchar(16);not null;default:'user';check:role IN ('user','admin')"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Pet represents a listing offered for adoption. The owner (by email) or an
// admin may mutate it; the Adopted flag is additionally guarded at the
// service layer by an owner-or-admin check.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - OwnerEmail: email of the listing owner; indexed for owner-scoped reads.
//   - Name / Category: listing attributes; Category is stored lowercase so
//     exact-match filters behave case-insensitively.
//   - Adopted: whether the pet has been adopted (default false).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM. Listings are ordered
//     by CreatedAt descending, so it carries an index.
type Pet struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	OwnerEmail  string    `json:"owner_email" gorm:"type:varchar(255);not null;index:idx_pets_owner"`
	Name        string    `json:"name"        gorm:"type:varchar(255);not null"`
	Category    string    `json:"category"    gorm:"type:varchar(64);not null;index:idx_pets_category"`
	ImageURL    string    `json:"image_url"   gorm:"type:text"`
	Location    string    `json:"location"    gorm:"type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
	Adopted     bool      `json:"adopted"     gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"  gorm:"index:idx_pets_created"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Pet.
func (Pet) TableName() string { return "pets" }

// DonationCampaign represents a funding drive for a pet. The current funding
// total is never stored here: it is derived on every read by summing ledger
// entries that reference the campaign (see services.CampaignService).
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - CreatedBy: email of the creator; indexed for creator-scoped reads.
//   - Title / ImageURL / Description: presentation attributes.
//   - GoalAmount: target amount in the platform currency.
//   - Urgency: ranking weight for recommendations (higher is more urgent).
//   - Paused: when true the campaign stops accepting new donations.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type DonationCampaign struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	CreatedBy   string    `json:"created_by"  gorm:"type:varchar(255);not null;index:idx_campaigns_creator"`
	Title       string    `json:"title"       gorm:"type:varchar(255);not null"`
	ImageURL    string    `json:"image_url"   gorm:"type:text"`
	Description string    `json:"description" gorm:"type:text"`
	GoalAmount  float64   `json:"goal_amount" gorm:"not null;default:0"`
	Urgency     int       `json:"urgency"     gorm:"not null;default:0"`
	Paused      bool      `json:"paused"      gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"  gorm:"index:idx_campaigns_created"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for DonationCampaign.
func (DonationCampaign) TableName() string { return "donation_campaigns" }

// PaymentRecord is one entry in the append-only donation ledger. Records are
// inserted after the upstream gateway has authorized the charge and are never
// updated afterwards; administrative deletion is the only correction path.
//
// CampaignID is stored as written by historical clients: either the plain
// campaign id or a legacy typed-reference textual form such as
// ObjectId("<id>"). Aggregation normalizes both sides before comparing (see
// NormalizeRef), so no index-backed join is assumed on this column.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - CampaignID: reference to the funded campaign (possibly legacy-encoded).
//   - DonatorEmail / DonatorName: who gave; email indexed for history reads.
//   - Amount: donated amount, strictly positive (validated before insert).
//   - CampaignTitle / CampaignImageURL: denormalized display snapshot taken
//     at donation time, so history survives campaign edits or deletion.
//   - CreatedAt: insertion timestamp; the ledger has no UpdatedAt by design.
type PaymentRecord struct {
	ID               string    `json:"id"                 gorm:"type:char(36);primaryKey"`
	CampaignID       string    `json:"campaign_id"        gorm:"type:varchar(128);not null;index:idx_payments_campaign"`
	DonatorEmail     string    `json:"donator_email"      gorm:"type:varchar(255);not null;index:idx_payments_donator"`
	DonatorName      string    `json:"donator_name"       gorm:"type:varchar(255)"`
	Amount           float64   `json:"amount"             gorm:"not null"`
	CampaignTitle    string    `json:"campaign_title"     gorm:"type:varchar(255)"`
	CampaignImageURL string    `json:"campaign_image_url" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"         gorm:"index:idx_payments_created"`
}

// TableName returns the database table name for PaymentRecord.
func (PaymentRecord) TableName() string { return "payment_records" }

// AdoptionRequest records a user's application to adopt a pet. Status starts
// at StatusPending and moves exactly once to StatusAccepted or
// StatusRejected; the transition is enforced by the service layer.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - PetID: id of the requested pet; indexed for owner-side listing.
//   - RequesterEmail / RequesterName / Phone / Address: applicant details
//     shown to the pet owner.
//   - Status: workflow state (see Status* constants).
//   - CreatedAt: request timestamp; owner listings order by it descending.
type AdoptionRequest struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	PetID          string    `json:"pet_id"          gorm:"type:char(36);not null;index:idx_requests_pet"`
	RequesterEmail string    `json:"requester_email" gorm:"type:varchar(255);not null;index:idx_requests_requester"`
	RequesterName  string    `json:"requester_name"  gorm:"type:varchar(255)"`
	Phone          string    `json:"phone"           gorm:"type:varchar(64)"`
	Address        string    `json:"address"         gorm:"type:text"`
	Status         string    `json:"status"          gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','accepted','rejected')"`
	CreatedAt      time.Time `json:"created_at"      gorm:"index:idx_requests_created"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for AdoptionRequest.
func (AdoptionRequest) TableName() string { return "adoption_requests" }
