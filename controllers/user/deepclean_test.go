package userControllers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditbazaar/marketplace-api/models"
)

// stubDirectory is an in-memory Directory with per-call error injection.
type stubDirectory struct {
	creds    map[string]models.Credential
	profiles map[string]*models.User
	orders   map[string]bool // user id -> has orders

	anonymized map[string]AnonymizedProfile

	deletedMessages      []string
	deletedConversations []string
	deletedOrderItems    []string
	deletedOrders        []string
	deletedCarts         []string

	createProfileErrs []error // popped one per CreateProfile call
	deleteCredErr     error
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		creds:      make(map[string]models.Credential),
		profiles:   make(map[string]*models.User),
		orders:     make(map[string]bool),
		anonymized: make(map[string]AnonymizedProfile),
	}
}

func (d *stubDirectory) addAccount(id, email string, hasOrders bool) {
	d.creds[id] = models.Credential{ID: id, Email: email}
	d.profiles[id] = &models.User{ID: id, Email: email, Name: "Test User"}
	d.orders[id] = hasOrders
}

func (d *stubDirectory) CredentialsByEmail(_ context.Context, email string) ([]models.Credential, error) {
	var out []models.Credential
	for _, c := range d.creds {
		if c.Email == email {
			out = append(out, c)
		}
	}
	return out, nil
}

func (d *stubDirectory) CreateCredential(_ context.Context, cred *models.Credential) error {
	d.creds[cred.ID] = *cred
	return nil
}

func (d *stubDirectory) DeleteCredential(_ context.Context, id string) error {
	if d.deleteCredErr != nil {
		return d.deleteCredErr
	}
	delete(d.creds, id)
	return nil
}

func (d *stubDirectory) ProfileByID(_ context.Context, id string) (*models.User, error) {
	p, ok := d.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (d *stubDirectory) ProfileEmailExists(_ context.Context, email string) (bool, error) {
	for _, p := range d.profiles {
		if p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (d *stubDirectory) CreateProfile(_ context.Context, u *models.User) error {
	if len(d.createProfileErrs) > 0 {
		err := d.createProfileErrs[0]
		d.createProfileErrs = d.createProfileErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := d.profiles[u.ID]; ok {
		return ErrProfileExists
	}
	d.profiles[u.ID] = u
	return nil
}

func (d *stubDirectory) AnonymizeProfile(_ context.Context, id string, anon AnonymizedProfile) error {
	p, ok := d.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	p.Name = anon.Name
	p.Email = anon.Email
	d.anonymized[id] = anon
	return nil
}

func (d *stubDirectory) DeleteProfile(_ context.Context, id string) error {
	delete(d.profiles, id)
	return nil
}

func (d *stubDirectory) HasOrders(_ context.Context, userID string) (bool, error) {
	return d.orders[userID], nil
}

func (d *stubDirectory) DeleteChatMessages(_ context.Context, userID string) error {
	d.deletedMessages = append(d.deletedMessages, userID)
	return nil
}

func (d *stubDirectory) DeleteConversations(_ context.Context, userID string) error {
	d.deletedConversations = append(d.deletedConversations, userID)
	return nil
}

func (d *stubDirectory) DeleteOrderItems(_ context.Context, userID string) error {
	d.deletedOrderItems = append(d.deletedOrderItems, userID)
	return nil
}

func (d *stubDirectory) DeleteOrders(_ context.Context, userID string) error {
	d.deletedOrders = append(d.deletedOrders, userID)
	return nil
}

func (d *stubDirectory) DeleteCart(_ context.Context, userID string) error {
	d.deletedCarts = append(d.deletedCarts, userID)
	return nil
}

func TestDeepCleanNoCredentials(t *testing.T) {
	dir := newStubDirectory()

	report := DeepClean(context.Background(), dir, "nobody@example.com", false)

	assert.True(t, report.Success)
	assert.True(t, report.CanProceedWithCreation)
	require.Len(t, report.Steps, 2)
	assert.Equal(t, "no_credentials_found", report.Steps[1].Step)
}

func TestDeepCleanHardDeletesWithoutOrders(t *testing.T) {
	dir := newStubDirectory()
	dir.addAccount("u1", "gone@example.com", false)

	report := DeepClean(context.Background(), dir, "gone@example.com", false)

	assert.True(t, report.Success)
	assert.True(t, report.CanProceedWithCreation)
	assert.Empty(t, dir.profiles)
	assert.Empty(t, dir.creds)
	assert.Equal(t, []string{"u1"}, dir.deletedMessages)
	assert.Equal(t, []string{"u1"}, dir.deletedConversations)
	assert.Equal(t, []string{"u1"}, dir.deletedOrderItems)
	assert.Equal(t, []string{"u1"}, dir.deletedOrders)
	assert.Equal(t, []string{"u1"}, dir.deletedCarts)
}

func TestDeepCleanAnonymizesAccountsWithOrders(t *testing.T) {
	dir := newStubDirectory()
	dir.addAccount("u1", "buyer@example.com", true)

	report := DeepClean(context.Background(), dir, "buyer@example.com", false)

	assert.True(t, report.Success)
	assert.True(t, report.CanProceedWithCreation)

	// Credential gone, profile kept but scrambled.
	assert.Empty(t, dir.creds)
	require.Contains(t, dir.profiles, "u1")
	p := dir.profiles["u1"]
	assert.Equal(t, "Deleted User", p.Name)
	assert.True(t, strings.HasPrefix(p.Email, "deleted-"))
	assert.True(t, strings.HasSuffix(p.Email, "@removed.invalid"))
	assert.Empty(t, dir.deletedOrders, "order rows must survive anonymization")
}

func TestDeepCleanForceDeletesDespiteOrders(t *testing.T) {
	dir := newStubDirectory()
	dir.addAccount("u1", "buyer@example.com", true)

	report := DeepClean(context.Background(), dir, "buyer@example.com", true)

	assert.True(t, report.Success)
	assert.Empty(t, dir.profiles)
	assert.Empty(t, dir.creds)
	assert.Equal(t, []string{"u1"}, dir.deletedOrders)
}

func TestDeepCleanCredentialFailureBlocksReRegistration(t *testing.T) {
	dir := newStubDirectory()
	dir.addAccount("u1", "stuck@example.com", false)
	dir.deleteCredErr = assert.AnError

	report := DeepClean(context.Background(), dir, "stuck@example.com", false)

	assert.False(t, report.Success)
	assert.False(t, report.CanProceedWithCreation)
}

func TestDeepCleanHandlesMultipleCredentials(t *testing.T) {
	dir := newStubDirectory()
	dir.addAccount("u1", "dupe@example.com", false)
	dir.addAccount("u2", "dupe@example.com", true)

	report := DeepClean(context.Background(), dir, "dupe@example.com", false)

	assert.True(t, report.Success)
	assert.Empty(t, dir.creds)
	assert.NotContains(t, dir.profiles, "u1")
	assert.Contains(t, dir.profiles, "u2")
	assert.Contains(t, dir.anonymized, "u2")
}
