package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourorg/orgvault/internal/domain"
)

const (
	tenantCollection = "organizations"
	adminCollection  = "admin_users"
)

// MongoDirectory implements domain.Directory over the master database's
// organizations and admin_users collections. Duplicate-key rejections from
// the store's unique indexes are translated into the already-exists errors;
// a pre-check-then-insert sequence in a service is not atomic, so the index
// is the guard that actually holds under concurrency.
type MongoDirectory struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewMongoDirectory creates a new directory over the master database.
func NewMongoDirectory(db *mongo.Database, logger *slog.Logger) *MongoDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoDirectory{db: db, logger: logger}
}

// EnsureIndexes creates the unique indexes on organization name and admin
// email. Concurrent create/rename correctness depends on them.
func (d *MongoDirectory) EnsureIndexes(ctx context.Context) error {
	_, err := d.db.Collection(tenantCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "organization_name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to index organizations: %w", err)
	}
	_, err = d.db.Collection(adminCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to index admin_users: %w", err)
	}
	return nil
}

func (d *MongoDirectory) FindTenantByName(ctx context.Context, name string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := d.db.Collection(tenantCollection).FindOne(ctx, bson.M{"organization_name": name}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, storageErr("find organization", err)
	}
	return &t, nil
}

func (d *MongoDirectory) FindAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var a domain.Admin
	err := d.db.Collection(adminCollection).FindOne(ctx, bson.M{"email": email}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, storageErr("find admin by email", err)
	}
	return &a, nil
}

func (d *MongoDirectory) FindAdminByID(ctx context.Context, id string) (*domain.Admin, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAdminNotFound
	}
	var a domain.Admin
	err = d.db.Collection(adminCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, storageErr("find admin by id", err)
	}
	return &a, nil
}

// InsertTenant stores a new organization record and sets its assigned id.
func (d *MongoDirectory) InsertTenant(ctx context.Context, t *domain.Tenant) error {
	res, err := d.db.Collection(tenantCollection).InsertOne(ctx, t)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrTenantAlreadyExists
		}
		return storageErr("insert organization", err)
	}
	t.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// InsertAdmin stores a new admin record and sets its assigned id.
func (d *MongoDirectory) InsertAdmin(ctx context.Context, a *domain.Admin) error {
	res, err := d.db.Collection(adminCollection).InsertOne(ctx, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyRegistered
		}
		return storageErr("insert admin", err)
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// UpdateTenant persists the mutable organization fields and refreshes the
// update timestamp.
func (d *MongoDirectory) UpdateTenant(ctx context.Context, t *domain.Tenant) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := d.db.Collection(tenantCollection).UpdateByID(ctx, t.ID, bson.M{"$set": bson.M{
		"organization_name": t.Name,
		"collection_name":   t.PartitionID,
		"admin_email":       t.AdminEmail,
		"updated_at":        t.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrTenantAlreadyExists
		}
		return storageErr("update organization", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// UpdateAdmin persists the mutable admin fields.
func (d *MongoDirectory) UpdateAdmin(ctx context.Context, a *domain.Admin) error {
	res, err := d.db.Collection(adminCollection).UpdateByID(ctx, a.ID, bson.M{"$set": bson.M{
		"email":             a.Email,
		"hashed_password":   a.PasswordHash,
		"organization_name": a.OrganizationName,
		"organization_id":   a.OrganizationID,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailAlreadyRegistered
		}
		return storageErr("update admin", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAdminNotFound
	}
	return nil
}

func (d *MongoDirectory) DeleteTenant(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTenantNotFound
	}
	res, err := d.db.Collection(tenantCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storageErr("delete organization", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

func (d *MongoDirectory) DeleteAdmin(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAdminNotFound
	}
	res, err := d.db.Collection(adminCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storageErr("delete admin", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAdminNotFound
	}
	return nil
}

// storageErr keeps domain.ErrStorage matchable while recording the failing
// operation and cause.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorage, op, err)
}
