package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/paper-assistant-gateway/models"
	"go.uber.org/zap"
)

func newMockRepo(t *testing.T) (*CredentialRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	repo := NewCredentialRepository(Wrap(db, logger), logger).(*CredentialRepository)
	return repo, mock
}

func TestCredentialRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("returns rows", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		now := time.Now().UTC()

		mock.ExpectQuery("SELECT provider_id, secret, updated_at FROM provider_credentials").
			WillReturnRows(sqlmock.NewRows([]string{"provider_id", "secret", "updated_at"}).
				AddRow("groq", "gsk_1", now).
				AddRow("huggingface", "hf_1", now))

		creds, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, creds, 2)
		assert.Equal(t, "groq", creds[0].ProviderID)
		assert.Equal(t, "hf_1", creds[1].Secret)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT provider_id").WillReturnError(errors.New("connection reset"))

		creds, err := repo.List(ctx)
		assert.Nil(t, creds)
		assert.ErrorContains(t, err, "failed to list credentials")
	})
}

func TestCredentialRepository_Upsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	cred := models.NewCredential("groq", "gsk_new")

	mock.ExpectExec("INSERT INTO provider_credentials").
		WithArgs("groq", "gsk_new", cred.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), cred))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_Delete(t *testing.T) {
	t.Run("deletes row", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("DELETE FROM provider_credentials").
			WithArgs("groq").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), "groq"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("DELETE FROM provider_credentials").
			WithArgs("groq").
			WillReturnError(errors.New("read-only"))

		assert.ErrorContains(t, repo.Delete(context.Background(), "groq"), "failed to delete credential")
	})
}

func TestDB_InitSchemaAndHealthCheck(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	wrapped := Wrap(db, zap.NewNop())

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS provider_credentials").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, wrapped.InitSchema(context.Background()))

	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	require.NoError(t, wrapped.HealthCheck(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
