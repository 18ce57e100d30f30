package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/orgvault/internal/domain"
	"github.com/yourorg/orgvault/internal/naming"
	"github.com/yourorg/orgvault/internal/observability/metrics"
	"github.com/yourorg/orgvault/internal/security/audit"
	"github.com/yourorg/orgvault/internal/security/password"
)

// OrgService drives the organization lifecycle: create, read, rename with
// partition migration, and delete. It holds no state between operations;
// every call re-reads what it needs from the directory.
type OrgService struct {
	directory  domain.Directory
	partitions domain.PartitionStore
	codec      *password.Codec
	audit      *audit.Logger
	logger     *slog.Logger
}

// NewOrgService creates a new organization lifecycle service.
func NewOrgService(
	directory domain.Directory,
	partitions domain.PartitionStore,
	codec *password.Codec,
	auditLogger *audit.Logger,
	logger *slog.Logger,
) *OrgService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrgService{
		directory:  directory,
		partitions: partitions,
		codec:      codec,
		audit:      auditLogger,
		logger:     logger,
	}
}

// Create provisions a new organization: admin record, organization record,
// then the physical partition. The partition comes last because it is the
// only step that is not cheap to reverse; directory records for a failed
// create can simply be re-pointed or removed.
//
// The exists pre-checks are best-effort. Two concurrent creates with the
// same name race past them; the store's unique index decides the winner and
// the loser surfaces as ErrTenantAlreadyExists from the insert itself.
func (s *OrgService) Create(ctx context.Context, name, email, pass string) (*domain.Tenant, error) {
	start := time.Now()

	tenant, err := s.create(ctx, name, email, pass)
	observeOp("create", start, err)
	if err != nil {
		s.auditLog(ctx, s.audit.LogCreate, name, "", "failed", err.Error())
		return nil, err
	}

	s.auditLog(ctx, s.audit.LogCreate, name, tenant.AdminID, "success", "partition "+tenant.PartitionID)
	s.logger.Info("organization created",
		slog.String("organization", name),
		slog.String("partition_id", tenant.PartitionID),
	)
	return tenant, nil
}

func (s *OrgService) create(ctx context.Context, name, email, pass string) (*domain.Tenant, error) {
	if _, err := s.directory.FindTenantByName(ctx, name); err == nil {
		return nil, domain.ErrTenantAlreadyExists
	} else if !errors.Is(err, domain.ErrTenantNotFound) {
		return nil, err
	}
	if _, err := s.directory.FindAdminByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, domain.ErrAdminNotFound) {
		return nil, err
	}

	digest, err := s.codec.Hash(pass)
	if err != nil {
		return nil, err
	}

	partitionID := naming.Resolve(name)
	now := time.Now().UTC()

	admin := &domain.Admin{
		Email:            email,
		PasswordHash:     digest,
		OrganizationName: name,
		CreatedAt:        now,
	}
	if err := s.directory.InsertAdmin(ctx, admin); err != nil {
		return nil, err
	}

	tenant := &domain.Tenant{
		Name:        name,
		PartitionID: partitionID,
		AdminEmail:  email,
		AdminID:     admin.ID.Hex(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.directory.InsertTenant(ctx, tenant); err != nil {
		return nil, err
	}

	// Back-patch the admin with the organization id now that it exists.
	admin.OrganizationID = tenant.ID.Hex()
	if err := s.directory.UpdateAdmin(ctx, admin); err != nil {
		return nil, err
	}

	if err := s.partitions.Create(ctx, partitionID, name); err != nil {
		return nil, err
	}
	return tenant, nil
}

// Get returns the organization record for name.
func (s *OrgService) Get(ctx context.Context, name string) (*domain.Tenant, error) {
	start := time.Now()
	tenant, err := s.directory.FindTenantByName(ctx, name)
	observeOp("get", start, err)
	return tenant, err
}

// Update applies email, password, and name changes to the caller's own
// organization. A rename migrates the partition first; the directory is
// only touched after the copy+drop completed, so the recorded partition id
// never points at a partition known to be incomplete. A stray partition can
// still be left behind by a mid-migration failure; that cleanup is manual.
func (s *OrgService) Update(ctx context.Context, identity *domain.AdminIdentity, name, newEmail, newPassword, newName string) (*domain.Tenant, error) {
	start := time.Now()

	if identity == nil || identity.OrganizationName != name {
		observeOp("update", start, domain.ErrForbidden)
		s.auditDenied(ctx, identity, name, "update of another organization")
		return nil, domain.ErrForbidden
	}

	tenant, err := s.update(ctx, name, newEmail, newPassword, newName)
	observeOp("update", start, err)
	if err != nil {
		s.auditLog(ctx, s.audit.LogUpdate, name, identity.AdminID, "failed", err.Error())
		return nil, err
	}

	s.auditLog(ctx, s.audit.LogUpdate, tenant.Name, identity.AdminID, "success", "")
	return tenant, nil
}

func (s *OrgService) update(ctx context.Context, name, newEmail, newPassword, newName string) (*domain.Tenant, error) {
	tenant, err := s.directory.FindTenantByName(ctx, name)
	if err != nil {
		return nil, err
	}
	admin, err := s.directory.FindAdminByID(ctx, tenant.AdminID)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return nil, fmt.Errorf("%w: admin record missing for organization %q", domain.ErrStorage, name)
		}
		return nil, err
	}

	renaming := newName != "" && newName != name

	// Validate everything before the migration; the copy+drop is the one
	// step that cannot be backed out.
	if renaming {
		if _, err := s.directory.FindTenantByName(ctx, newName); err == nil {
			return nil, domain.ErrTenantAlreadyExists
		} else if !errors.Is(err, domain.ErrTenantNotFound) {
			return nil, err
		}
	}
	if newEmail != "" && newEmail != admin.Email {
		other, err := s.directory.FindAdminByEmail(ctx, newEmail)
		if err == nil && other.ID != admin.ID {
			return nil, domain.ErrEmailAlreadyRegistered
		}
		if err != nil && !errors.Is(err, domain.ErrAdminNotFound) {
			return nil, err
		}
		admin.Email = newEmail
		tenant.AdminEmail = newEmail
	}
	if newPassword != "" {
		digest, err := s.codec.Hash(newPassword)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = digest
	}

	if renaming {
		newPartition := naming.Resolve(newName)
		// Names resolving to the same slug share a partition; migrating
		// would copy the collection into itself and then drop it.
		if newPartition != tenant.PartitionID {
			if _, err := s.partitions.Migrate(ctx, tenant.PartitionID, newPartition); err != nil {
				return nil, err
			}
		}
		tenant.Name = newName
		tenant.PartitionID = newPartition
		admin.OrganizationName = newName
		s.logger.Info("organization renamed",
			slog.String("from", name),
			slog.String("to", newName),
			slog.String("partition_id", newPartition),
		)
	}

	if err := s.directory.UpdateTenant(ctx, tenant); err != nil {
		return nil, err
	}
	if err := s.directory.UpdateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	return tenant, nil
}

// Delete removes the organization, its admin, and its partition. The
// partition goes first: an orphaned partition is harmless and recoverable,
// a directory record pointing at a dropped partition is neither.
func (s *OrgService) Delete(ctx context.Context, identity *domain.AdminIdentity, name string) error {
	start := time.Now()

	if identity == nil || identity.OrganizationName != name {
		observeOp("delete", start, domain.ErrForbidden)
		s.auditDenied(ctx, identity, name, "delete of another organization")
		return domain.ErrForbidden
	}

	err := s.delete(ctx, name)
	observeOp("delete", start, err)
	if err != nil {
		s.auditLog(ctx, s.audit.LogDelete, name, identity.AdminID, "failed", err.Error())
		return err
	}

	s.auditLog(ctx, s.audit.LogDelete, name, identity.AdminID, "success", "")
	s.logger.Info("organization deleted", slog.String("organization", name))
	return nil
}

func (s *OrgService) delete(ctx context.Context, name string) error {
	tenant, err := s.directory.FindTenantByName(ctx, name)
	if err != nil {
		return err
	}

	if err := s.partitions.Drop(ctx, tenant.PartitionID); err != nil {
		return err
	}
	if err := s.directory.DeleteAdmin(ctx, tenant.AdminID); err != nil && !errors.Is(err, domain.ErrAdminNotFound) {
		return err
	}
	return s.directory.DeleteTenant(ctx, tenant.ID.Hex())
}

func (s *OrgService) auditLog(ctx context.Context, fn func(context.Context, string, string, string, string), organization, adminID, status, details string) {
	if s.audit != nil {
		fn(ctx, organization, adminID, status, details)
	}
}

func (s *OrgService) auditDenied(ctx context.Context, identity *domain.AdminIdentity, name, reason string) {
	if s.audit == nil {
		return
	}
	adminID := ""
	if identity != nil {
		adminID = identity.AdminID
	}
	s.audit.LogDenied(ctx, name, adminID, reason)
}

func observeOp(op string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.ObserveLifecycleOperation(op, result, time.Since(start))
}
