package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mkovalev/chatvault/internal/dbx"
	"github.com/mkovalev/chatvault/internal/server/auth"
	"github.com/mkovalev/chatvault/internal/server/models"
	apikeysrepo "github.com/mkovalev/chatvault/internal/server/repositories/apikeys"
	usersrepo "github.com/mkovalev/chatvault/internal/server/repositories/users"
)

// --- shared test plumbing ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newTestCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec([]byte("k"), "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec error: %v", err)
	}
	return codec
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byEmailOut *models.User
	byEmailErr error

	byIDOut *models.User
	byIDErr error

	passphraseOut *models.User
	passphraseErr error

	updPasswordErr error
	gotPasswordID  int64
	gotPassword    string

	updProfileErr error
	gotName       string
	gotAvatar     string

	updPassphraseErr  error
	gotPassphraseHash string
	gotPassphraseSalt string
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

func (f *fakeUsersRepo) GetPassphraseByID(ctx context.Context, id int64) (*models.User, error) {
	if f.passphraseErr != nil {
		return nil, f.passphraseErr
	}
	return f.passphraseOut, nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	f.gotPasswordID = id
	f.gotPassword = passwordHash
	return f.updPasswordErr
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id int64, name, avatar string) error {
	f.gotName = name
	f.gotAvatar = avatar
	return f.updProfileErr
}

func (f *fakeUsersRepo) UpdatePassphrase(ctx context.Context, id int64, passphraseHash, passphraseSalt string) error {
	f.gotPassphraseHash = passphraseHash
	f.gotPassphraseSalt = passphraseSalt
	return f.updPassphraseErr
}

type fakeAPIKeysRepo struct {
	upsertErr error
	upserted  *models.APIKey

	getOut *models.APIKey
	getErr error

	listOut []string
	listErr error
}

func (f *fakeAPIKeysRepo) Upsert(ctx context.Context, key *models.APIKey) (*models.APIKey, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserted = key
	return key, nil
}

func (f *fakeAPIKeysRepo) GetByUserAndModel(ctx context.Context, userID int64, aiModel string) (*models.APIKey, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeAPIKeysRepo) ListModels(ctx context.Context, userID int64) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	k *fakeAPIKeysRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) APIKeys(db dbx.DBTX) apikeysrepo.Repository  { return m.k }
