package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-drive-service/entity"
	"github.com/tnqbao/gau-drive-service/infra/produce"
)

type fakeCatalog struct {
	objects    map[uuid.UUID]*entity.Object
	replaceErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{objects: make(map[uuid.UUID]*entity.Object)}
}

func (c *fakeCatalog) Create(object *entity.Object) error {
	c.objects[object.ObjectKey] = object
	return nil
}

func (c *fakeCatalog) FindByKey(key uuid.UUID) (*entity.Object, error) {
	object, ok := c.objects[key]
	if !ok {
		return nil, nil
	}
	return object, nil
}

func (c *fakeCatalog) ListForUser(userID uuid.UUID, limit, offset int) ([]entity.Object, int64, error) {
	var visible []entity.Object
	for _, object := range c.objects {
		if object.IsOwner(userID) || object.IsSharedWith(userID) {
			visible = append(visible, *object)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].UploadedAt.After(visible[j].UploadedAt)
	})
	total := int64(len(visible))
	if offset >= len(visible) {
		return nil, total, nil
	}
	visible = visible[offset:]
	if len(visible) > limit {
		visible = visible[:limit]
	}
	return visible, total, nil
}

func (c *fakeCatalog) ReplaceSharedWith(key uuid.UUID, users []entity.User) error {
	if c.replaceErr != nil {
		return c.replaceErr
	}
	object, ok := c.objects[key]
	if !ok {
		return errors.New("record not found")
	}
	object.SharedWith = users
	return nil
}

func (c *fakeCatalog) DeleteByKey(key uuid.UUID) error {
	delete(c.objects, key)
	return nil
}

type fakeDirectory struct {
	users map[uuid.UUID]entity.User
}

func newFakeDirectory(users ...entity.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[uuid.UUID]entity.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) FindByIDs(ids []uuid.UUID) ([]entity.User, error) {
	var found []entity.User
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			found = append(found, u)
		}
	}
	return found, nil
}

func (d *fakeDirectory) ListAll() ([]entity.User, error) {
	var all []entity.User
	for _, u := range d.users {
		all = append(all, u)
	}
	return all, nil
}

type fakeBlobStore struct {
	blobs     map[string][]byte
	putErr    error
	fetchErr  error
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (b *fakeBlobStore) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if b.putErr != nil {
		return b.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	b.blobs[key] = data
	return nil
}

func (b *fakeBlobStore) Put(key string, data []byte) {
	b.blobs[key] = data
}

func (b *fakeBlobStore) FetchObject(ctx context.Context, key, filePath string) error {
	if b.fetchErr != nil {
		return b.fetchErr
	}
	data, ok := b.blobs[key]
	if !ok {
		return fmt.Errorf("no blob under key %s", key)
	}
	return os.WriteFile(filePath, data, 0o600)
}

func (b *fakeBlobStore) DeleteObject(ctx context.Context, key string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	delete(b.blobs, key)
	return nil
}

type fakeNotifier struct {
	notified []string
	err      error
}

func (n *fakeNotifier) SendObjectSharedNotification(ctx context.Context, email, recipientName, objectName, actionUrl string) error {
	if n.err != nil {
		return n.err
	}
	n.notified = append(n.notified, email)
	return nil
}

type fakeReconcileQueue struct {
	published []produce.ReconcileObjectMessage
}

func (q *fakeReconcileQueue) PublishReconcileObject(ctx context.Context, msg produce.ReconcileObjectMessage) error {
	q.published = append(q.published, msg)
	return nil
}

type nopLogger struct{}

func (nopLogger) InfoWithContextf(ctx context.Context, format string, args ...interface{})    {}
func (nopLogger) WarningWithContextf(ctx context.Context, format string, args ...interface{}) {}
func (nopLogger) ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{}) {
}

type fixture struct {
	catalog   *fakeCatalog
	directory *fakeDirectory
	blobs     *fakeBlobStore
	notifier  *fakeNotifier
	reconcile *fakeReconcileQueue
	provider  *ObjectProvider
}

func newFixture(openRoster bool, users ...entity.User) *fixture {
	f := &fixture{
		catalog:   newFakeCatalog(),
		directory: newFakeDirectory(users...),
		blobs:     newFakeBlobStore(),
		notifier:  &fakeNotifier{},
		reconcile: &fakeReconcileQueue{},
	}
	f.provider = NewObjectProvider(f.catalog, f.directory, f.blobs, f.notifier, f.reconcile, nopLogger{}, openRoster, "drive.example.com")
	return f
}

func TestUploadCreatesCatalogRowThenBlob(t *testing.T) {
	f := newFixture(false)
	owner := uuid.New()
	payload := bytes.Repeat([]byte("a"), 100)

	object, err := f.provider.Upload(context.Background(), owner, "testfile.txt", 100, "text/plain", nil, bytes.NewReader(payload))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, object.ObjectKey)
	require.Equal(t, "testfile.txt", object.Name)
	require.Equal(t, "text/plain", object.MimeType)
	require.Equal(t, entity.FileTypeOthers, object.FileType)
	require.Equal(t, int64(100), object.Size)
	require.NotNil(t, object.OwnerID)
	require.Equal(t, owner, *object.OwnerID)

	stored, err := f.catalog.FindByKey(object.ObjectKey)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, payload, f.blobs.blobs[object.ObjectKey.String()])
}

func TestUploadBlobFailureLeavesObservablePhantom(t *testing.T) {
	f := newFixture(false)
	f.blobs.putErr = errors.New("connection refused")
	owner := uuid.New()

	_, err := f.provider.Upload(context.Background(), owner, "a.bin", 3, "", nil, bytes.NewReader([]byte("abc")))
	require.ErrorIs(t, err, ErrStorageUnavailable)

	// The phantom row stays in the catalog and is queued for reconciliation.
	require.Len(t, f.catalog.objects, 1)
	require.Len(t, f.reconcile.published, 1)
	for key := range f.catalog.objects {
		require.Equal(t, key.String(), f.reconcile.published[0].ObjectKey)
	}
	require.Equal(t, owner.String(), f.reconcile.published[0].OwnerID)
}

func seedObject(f *fixture, owner uuid.UUID, name string, shared ...entity.User) *entity.Object {
	object := &entity.Object{
		ObjectKey:  uuid.New(),
		Name:       name,
		OwnerID:    &owner,
		SharedWith: shared,
		MimeType:   "application/octet-stream",
		FileType:   entity.FileTypeOthers,
	}
	f.catalog.objects[object.ObjectKey] = object
	f.blobs.Put(object.ObjectKey.String(), []byte("content of "+name))
	return object
}

func TestDownloadAuthorizationAndErrors(t *testing.T) {
	sharedUser := entity.User{ID: uuid.New(), Username: "shared", Email: "shared@test.com"}
	f := newFixture(false, sharedUser)
	owner := uuid.New()
	stranger := uuid.New()
	object := seedObject(f, owner, "notes.txt", sharedUser)

	staging := filepath.Join(t.TempDir(), "staging")

	got, err := f.provider.Download(context.Background(), owner, object.ObjectKey, staging)
	require.NoError(t, err)
	require.Equal(t, object.Name, got.Name)
	data, err := os.ReadFile(staging)
	require.NoError(t, err)
	require.Equal(t, []byte("content of notes.txt"), data)

	_, err = f.provider.Download(context.Background(), sharedUser.ID, object.ObjectKey, staging)
	require.NoError(t, err)

	_, err = f.provider.Download(context.Background(), stranger, object.ObjectKey, staging)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.provider.Download(context.Background(), owner, uuid.New(), staging)
	require.ErrorIs(t, err, ErrNotFound)

	// A row whose blob is missing surfaces a storage error, never not-found.
	delete(f.blobs.blobs, object.ObjectKey.String())
	_, err = f.provider.Download(context.Background(), owner, object.ObjectKey, staging)
	require.ErrorIs(t, err, ErrStorageUnavailable)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsOwnerOnlyAndOrdered(t *testing.T) {
	sharedUser := entity.User{ID: uuid.New(), Username: "shared"}
	f := newFixture(false, sharedUser)
	owner := uuid.New()
	object := seedObject(f, owner, "old.dat", sharedUser)

	// Sharing never grants write, including delete.
	err := f.provider.Delete(context.Background(), sharedUser.ID, object.ObjectKey)
	require.ErrorIs(t, err, ErrForbidden)

	// A blob-store failure keeps the catalog row so a retry is safe.
	f.blobs.deleteErr = errors.New("timeout")
	err = f.provider.Delete(context.Background(), owner, object.ObjectKey)
	require.ErrorIs(t, err, ErrStorageUnavailable)
	require.Contains(t, f.catalog.objects, object.ObjectKey)

	f.blobs.deleteErr = nil
	require.NoError(t, f.provider.Delete(context.Background(), owner, object.ObjectKey))
	require.NotContains(t, f.catalog.objects, object.ObjectKey)
	require.NotContains(t, f.blobs.blobs, object.ObjectKey.String())

	// Idempotent at the catalog level: the second attempt is a clean miss.
	err = f.provider.Delete(context.Background(), owner, object.ObjectKey)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOwnerlessObjectCannotBeMutated(t *testing.T) {
	sharedUser := entity.User{ID: uuid.New(), Username: "shared"}
	f := newFixture(false, sharedUser)
	object := seedObject(f, uuid.New(), "orphan.txt", sharedUser)
	object.OwnerID = nil

	err := f.provider.Delete(context.Background(), sharedUser.ID, object.ObjectKey)
	require.ErrorIs(t, err, ErrForbidden)

	// Read grants survive owner removal.
	staging := filepath.Join(t.TempDir(), "staging")
	_, err = f.provider.Download(context.Background(), sharedUser.ID, object.ObjectKey, staging)
	require.NoError(t, err)
}

func TestUpdateSharingNotifiesOnlyNewlyAdded(t *testing.T) {
	userC := entity.User{ID: uuid.New(), Username: "c", Email: "c@test.com"}
	userD := entity.User{ID: uuid.New(), Username: "d", Email: "d@test.com"}
	f := newFixture(false, userC, userD)
	owner := uuid.New()
	object := seedObject(f, owner, "plan.pdf", userC)

	sharedWith, added, err := f.provider.UpdateSharing(context.Background(), owner, object.ObjectKey, []uuid.UUID{userC.ID, userD.ID})
	require.NoError(t, err)
	require.Len(t, sharedWith, 2)
	require.Len(t, added, 1)
	require.Equal(t, userD.ID, added[0].ID)
	require.Equal(t, []string{"d@test.com"}, f.notifier.notified)

	// Resubmitting the identical set produces zero notifications.
	f.notifier.notified = nil
	_, added, err = f.provider.UpdateSharing(context.Background(), owner, object.ObjectKey, []uuid.UUID{userC.ID, userD.ID})
	require.NoError(t, err)
	require.Empty(t, added)
	require.Empty(t, f.notifier.notified)
}

func TestUpdateSharingValidation(t *testing.T) {
	userC := entity.User{ID: uuid.New(), Username: "c", Email: "c@test.com"}
	f := newFixture(false, userC)
	owner := uuid.New()
	object := seedObject(f, owner, "plan.pdf")

	// Non-owners cannot touch the access list, shared members included.
	_, _, err := f.provider.UpdateSharing(context.Background(), userC.ID, object.ObjectKey, []uuid.UUID{userC.ID})
	require.ErrorIs(t, err, ErrForbidden)

	_, _, err = f.provider.UpdateSharing(context.Background(), owner, uuid.New(), []uuid.UUID{userC.ID})
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = f.provider.UpdateSharing(context.Background(), owner, object.ObjectKey, []uuid.UUID{uuid.New()})
	require.ErrorIs(t, err, ErrInvalidShareSet)
}

func TestUpdateSharingNotificationFailureDoesNotFailRequest(t *testing.T) {
	userC := entity.User{ID: uuid.New(), Username: "c", Email: "c@test.com"}
	f := newFixture(false, userC)
	f.notifier.err = errors.New("broker down")
	owner := uuid.New()
	object := seedObject(f, owner, "plan.pdf")

	sharedWith, added, err := f.provider.UpdateSharing(context.Background(), owner, object.ObjectKey, []uuid.UUID{userC.ID})
	require.NoError(t, err)
	require.Len(t, sharedWith, 1)
	require.Len(t, added, 1)

	// The grant sticks even though the notification was lost.
	stored, _ := f.catalog.FindByKey(object.ObjectKey)
	require.True(t, stored.IsSharedWith(userC.ID))
}

func TestListIsDeduplicatedUnion(t *testing.T) {
	viewer := entity.User{ID: uuid.New(), Username: "viewer"}
	f := newFixture(false, viewer)

	owned := seedObject(f, viewer.ID, "mine.txt")
	// Owned and shared back to the owner: must still appear exactly once.
	owned.SharedWith = []entity.User{viewer}
	seedObject(f, uuid.New(), "theirs.txt", viewer)
	seedObject(f, uuid.New(), "unrelated.txt")

	objects, total, err := f.provider.List(context.Background(), viewer.ID, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, objects, 2)

	seen := make(map[uuid.UUID]int)
	for _, o := range objects {
		seen[o.ObjectKey]++
	}
	for key, count := range seen {
		require.Equal(t, 1, count, "object %s listed more than once", key)
	}
}

func TestRosterAccessControl(t *testing.T) {
	sharedUser := entity.User{ID: uuid.New(), Username: "shared"}
	f := newFixture(false, sharedUser)
	owner := uuid.New()
	stranger := uuid.New()
	object := seedObject(f, owner, "doc.pdf", sharedUser)

	_, users, err := f.provider.Roster(context.Background(), owner, object.ObjectKey)
	require.NoError(t, err)
	require.Len(t, users, 1)

	_, _, err = f.provider.Roster(context.Background(), sharedUser.ID, object.ObjectKey)
	require.NoError(t, err)

	_, _, err = f.provider.Roster(context.Background(), stranger, object.ObjectKey)
	require.ErrorIs(t, err, ErrForbidden)

	_, _, err = f.provider.Roster(context.Background(), owner, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRosterLegacyOpenMode(t *testing.T) {
	sharedUser := entity.User{ID: uuid.New(), Username: "shared"}
	f := newFixture(true, sharedUser)
	object := seedObject(f, uuid.New(), "doc.pdf", sharedUser)

	_, _, err := f.provider.Roster(context.Background(), uuid.New(), object.ObjectKey)
	require.NoError(t, err)
}
