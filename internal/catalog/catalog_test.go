package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/trending-snapshots/internal/config"
)

func writeCodes(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "country_codes.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileSource(t *testing.T) {
	path := writeCodes(t, "US\n  FR \r\n\nGB\nUS\n")

	codes, err := NewFileSource(path).Codes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"US", "FR", "GB", "US"}, codes)
}

func TestFileSourceMissing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.txt")).Codes(context.Background())
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	got := Normalize([]string{"us", " FRA ", "gb", "A1", ""})
	assert.Equal(t, []string{"US", "FR", "GB", "A1"}, got)
}

func TestLoadEmpty(t *testing.T) {
	path := writeCodes(t, "\n \n")

	_, err := Load(context.Background(), NewFileSource(path))
	assert.True(t, errors.Is(err, ErrEmptyCatalog))
}

func TestLoadRejectsNonAlphanumericCodes(t *testing.T) {
	for _, content := range []string{"US\nU/S\n", "US\n../FR\n", "US\nF R\n"} {
		_, err := Load(context.Background(), NewFileSource(writeCodes(t, content)))
		assert.ErrorIs(t, err, ErrInvalidCode, content)
	}
}

func TestLoadKeepsOrderAndDuplicates(t *testing.T) {
	path := writeCodes(t, "fr\nus\nfr\n")

	codes, err := Load(context.Background(), NewFileSource(path))
	require.NoError(t, err)
	assert.Equal(t, []string{"FR", "US", "FR"}, codes)
}

func TestPostgresSource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT code FROM "country_codes" WHERE enabled ORDER BY position, code`)).
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("US").AddRow("FR"))

	codes, err := NewPostgresSource(db, "").Codes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"US", "FR"}, codes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSourceQuotesTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "regions; drop table x"`)).
		WillReturnRows(sqlmock.NewRows([]string{"code"}))

	codes, err := NewPostgresSource(db, "regions; drop table x").Codes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, codes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSourceQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT code").WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresSource(db, "").Codes(context.Background())
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	src, closeFn, err := Open(config.CatalogConfig{Type: "file", Path: "codes.txt"})
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)
	assert.NoError(t, closeFn())

	_, _, err = Open(config.CatalogConfig{Type: "ldap"})
	assert.Error(t, err)
}
