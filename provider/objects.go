package provider

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/entity"
	"github.com/tnqbao/gau-drive-service/infra/produce"
	"github.com/tnqbao/gau-drive-service/utils"
	"gorm.io/datatypes"
)

// Sentinel errors the request boundary maps to status codes. Storage failures
// are always distinct from catalog misses.
var (
	ErrNotFound           = errors.New("object not found")
	ErrForbidden          = errors.New("operation not allowed")
	ErrStorageUnavailable = errors.New("object storage unavailable")
	ErrInvalidShareSet    = errors.New("share set contains unknown users")
)

// Catalog is the durable object record: single source of truth for existence,
// ownership and sharing. FindByKey reports a missing row as (nil, nil).
type Catalog interface {
	Create(object *entity.Object) error
	FindByKey(key uuid.UUID) (*entity.Object, error)
	ListForUser(userID uuid.UUID, limit, offset int) ([]entity.Object, int64, error)
	ReplaceSharedWith(key uuid.UUID, users []entity.User) error
	DeleteByKey(key uuid.UUID) error
}

// Directory resolves principals for sharing.
type Directory interface {
	FindByIDs(ids []uuid.UUID) ([]entity.User, error)
	ListAll() ([]entity.User, error)
}

// BlobStore is the external, non-transactional byte store keyed by opaque
// object keys chosen by this coordinator.
type BlobStore interface {
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	FetchObject(ctx context.Context, key, filePath string) error
	DeleteObject(ctx context.Context, key string) error
}

// Notifier delivers share notifications. Failures never fail the request.
type Notifier interface {
	SendObjectSharedNotification(ctx context.Context, email, recipientName, objectName, actionUrl string) error
}

// ReconcileQueue receives catalog rows whose blob write failed.
type ReconcileQueue interface {
	PublishReconcileObject(ctx context.Context, msg produce.ReconcileObjectMessage) error
}

type Logger interface {
	InfoWithContextf(ctx context.Context, format string, args ...interface{})
	WarningWithContextf(ctx context.Context, format string, args ...interface{})
	ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{})
}

// ObjectProvider coordinates each object operation as a short linear sequence
// of catalog and blob-store effects with a fixed order. No object-level
// locking: the catalog's own atomicity is the only guard.
type ObjectProvider struct {
	catalog    Catalog
	directory  Directory
	blobs      BlobStore
	notifier   Notifier
	reconcile  ReconcileQueue
	logger     Logger
	openRoster bool
	domainName string
}

func NewObjectProvider(catalog Catalog, directory Directory, blobs BlobStore, notifier Notifier, reconcile ReconcileQueue, logger Logger, openRoster bool, domainName string) *ObjectProvider {
	return &ObjectProvider{
		catalog:    catalog,
		directory:  directory,
		blobs:      blobs,
		notifier:   notifier,
		reconcile:  reconcile,
		logger:     logger,
		openRoster: openRoster,
		domainName: domainName,
	}
}

// Upload writes the catalog row first, then the blob. A blob failure after
// the row is written leaves a phantom object: the error is surfaced as
// storage-unavailable and the row is queued for reconciliation instead of
// being rolled back inline.
func (p *ObjectProvider) Upload(ctx context.Context, ownerID uuid.UUID, name string, size int64, contentType string, metadata datatypes.JSON, reader io.Reader) (*entity.Object, error) {
	mimeType := utils.ResolveMimeType(name, contentType)

	object := &entity.Object{
		ObjectKey: uuid.New(),
		Name:      name,
		OwnerID:   &ownerID,
		Size:      size,
		MimeType:  mimeType,
		FileType:  utils.ClassifyFileType(name, mimeType),
		Metadata:  metadata,
	}

	if err := p.catalog.Create(object); err != nil {
		return nil, fmt.Errorf("failed to create catalog entry: %w", err)
	}

	if err := p.blobs.PutObject(ctx, object.ObjectKey.String(), reader, size, mimeType); err != nil {
		p.logger.ErrorWithContextf(ctx, err, "[Object] Blob write failed for %s, queueing reconcile", object.ObjectKey)
		if pubErr := p.reconcile.PublishReconcileObject(ctx, produce.ReconcileObjectMessage{
			ObjectKey: object.ObjectKey.String(),
			OwnerID:   ownerID.String(),
			Reason:    "upload blob write failed",
		}); pubErr != nil {
			p.logger.ErrorWithContextf(ctx, pubErr, "[Object] Failed to publish reconcile message for %s", object.ObjectKey)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return object, nil
}

// Download checks existence before ownership, then fetches the blob into the
// caller-owned staging path. A blob-fetch failure is storage-unavailable,
// never not-found.
func (p *ObjectProvider) Download(ctx context.Context, principal, key uuid.UUID, stagingPath string) (*entity.Object, error) {
	object, err := p.catalog.FindByKey(key)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup failed: %w", err)
	}
	if object == nil {
		return nil, ErrNotFound
	}

	if !Authorize(principal, object, OpRead) {
		return nil, ErrForbidden
	}

	if err := p.blobs.FetchObject(ctx, key.String(), stagingPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return object, nil
}

// Delete removes the blob before the catalog row. A mid-failure leaves a row
// pointing at a missing blob, which downloads surface as storage-unavailable;
// the row is never deleted while the blob delete is in doubt, so a retry of
// the whole operation is safe.
func (p *ObjectProvider) Delete(ctx context.Context, principal, key uuid.UUID) error {
	object, err := p.catalog.FindByKey(key)
	if err != nil {
		return fmt.Errorf("catalog lookup failed: %w", err)
	}
	if object == nil {
		return ErrNotFound
	}

	if !Authorize(principal, object, OpWrite) {
		return ErrForbidden
	}

	if err := p.blobs.DeleteObject(ctx, key.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := p.catalog.DeleteByKey(key); err != nil {
		return fmt.Errorf("failed to delete catalog entry: %w", err)
	}

	return nil
}

// UpdateSharing replaces the shared set and notifies exactly the newly-added
// principals. Resubmitting the same set produces no notifications. Returns
// the resolved set and the added subset.
func (p *ObjectProvider) UpdateSharing(ctx context.Context, principal, key uuid.UUID, userIDs []uuid.UUID) ([]entity.User, []entity.User, error) {
	object, err := p.catalog.FindByKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog lookup failed: %w", err)
	}
	if object == nil {
		return nil, nil, ErrNotFound
	}

	if !Authorize(principal, object, OpWrite) {
		return nil, nil, ErrForbidden
	}

	unique := make([]uuid.UUID, 0, len(userIDs))
	seen := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	users, err := p.directory.FindByIDs(unique)
	if err != nil {
		return nil, nil, fmt.Errorf("directory lookup failed: %w", err)
	}
	if len(users) != len(unique) {
		return nil, nil, ErrInvalidShareSet
	}

	var added []entity.User
	for _, u := range users {
		if !object.IsSharedWith(u.ID) {
			added = append(added, u)
		}
	}

	if err := p.catalog.ReplaceSharedWith(key, users); err != nil {
		return nil, nil, fmt.Errorf("failed to update shared set: %w", err)
	}

	// Fire-and-forget: a lost notification never rolls back the grant.
	actionUrl := fmt.Sprintf("https://%s/objects/%s", p.domainName, key)
	for _, u := range added {
		if err := p.notifier.SendObjectSharedNotification(ctx, u.Email, u.FullName, object.Name, actionUrl); err != nil {
			p.logger.ErrorWithContextf(ctx, err, "[Share] Failed to notify %s about object %s", u.Email, key)
		}
	}

	return users, added, nil
}

// List returns the principal's visible objects, newest first.
func (p *ObjectProvider) List(ctx context.Context, principal uuid.UUID, page, pageSize int) ([]entity.Object, int64, error) {
	offset := (page - 1) * pageSize
	objects, total, err := p.catalog.ListForUser(principal, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list objects: %w", err)
	}
	return objects, total, nil
}

// Roster returns the object plus the full principal directory for access
// annotation. Unless the legacy open-roster mode is enabled, only the owner
// and shared members may view it.
func (p *ObjectProvider) Roster(ctx context.Context, principal, key uuid.UUID) (*entity.Object, []entity.User, error) {
	object, err := p.catalog.FindByKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog lookup failed: %w", err)
	}
	if object == nil {
		return nil, nil, ErrNotFound
	}

	if !p.openRoster && !Authorize(principal, object, OpRead) {
		return nil, nil, ErrForbidden
	}

	users, err := p.directory.ListAll()
	if err != nil {
		return nil, nil, fmt.Errorf("directory listing failed: %w", err)
	}

	return object, users, nil
}
