package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tenant is an organization record in the master database. The partition id is
// the name of the collection holding the organization's data; it is derived
// from Name and only changes together with it.
type Tenant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"organization_name"`
	PartitionID string             `bson:"collection_name"`
	AdminEmail  string             `bson:"admin_email"`
	AdminID     string             `bson:"admin_id"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

// Admin is the single administrator of an organization. OrganizationName and
// OrganizationID are back-references; the organization record co-references
// the admin by id and email.
type Admin struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Email            string             `bson:"email"`
	PasswordHash     string             `bson:"hashed_password"`
	OrganizationName string             `bson:"organization_name"`
	OrganizationID   string             `bson:"organization_id"`
	CreatedAt        time.Time          `bson:"created_at"`
}

// AdminIdentity is an authenticated caller. It is rebuilt from the directory
// on every request rather than trusted from token claims alone.
type AdminIdentity struct {
	AdminID          string
	Email            string
	OrganizationID   string
	OrganizationName string
}

// Directory is the authoritative record of tenants and their admins, backed
// by the master database. Every method is a single-document operation; there
// is no multi-document transaction guarantee across calls.
type Directory interface {
	FindTenantByName(ctx context.Context, name string) (*Tenant, error)
	FindAdminByEmail(ctx context.Context, email string) (*Admin, error)
	FindAdminByID(ctx context.Context, id string) (*Admin, error)
	InsertTenant(ctx context.Context, t *Tenant) error
	InsertAdmin(ctx context.Context, a *Admin) error
	UpdateTenant(ctx context.Context, t *Tenant) error
	UpdateAdmin(ctx context.Context, a *Admin) error
	DeleteTenant(ctx context.Context, id string) error
	DeleteAdmin(ctx context.Context, id string) error
}

// PartitionStore manages per-tenant storage partitions at the collection
// level. It never inspects tenant semantics beyond the metadata marker.
type PartitionStore interface {
	Create(ctx context.Context, partitionID, tenantName string) error
	Migrate(ctx context.Context, oldID, newID string) (int64, error)
	Drop(ctx context.Context, partitionID string) error
}
