package database

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"museumtix/internal/domain"
)

func TestConnect_SQLiteMemoryMigrates(t *testing.T) {
	db, err := Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}

	key := "k-1"
	require.NoError(t, db.Create(&domain.Booking{ID: "b1", IdempotencyKey: &key}).Error)
	err = db.Create(&domain.Booking{ID: "b2", IdempotencyKey: &key}).Error
	assert.Error(t, err, "idempotency key must be unique")
	require.NoError(t, db.Create(&domain.Booking{ID: "b3"}).Error)
	require.NoError(t, db.Create(&domain.Booking{ID: "b4"}).Error)
}

func TestLogger_MissingRowIsNotLogged(t *testing.T) {
	db, err := Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var buf bytes.Buffer
	quiet := db.Session(&gorm.Session{Logger: newLogger(&buf)})

	err = quiet.First(&domain.Booking{}, "id = ?", "missing").Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.Empty(t, buf.String())

	err = quiet.Exec("SELECT * FROM no_such_table").Error
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "no_such_table")
}
