package utils

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullHelpers(t *testing.T) {
	assert.Equal(t, "", NullStringToString(sql.NullString{}))
	assert.Equal(t, "kyoto", NullStringToString(sql.NullString{String: "kyoto", Valid: true}))

	assert.Nil(t, NullStringToPointer(sql.NullString{String: "ignored"}))
	p := NullStringToPointer(sql.NullString{String: "kyoto", Valid: true})
	require.NotNil(t, p)
	assert.Equal(t, "kyoto", *p)

	assert.Nil(t, NullTimeToPointer(sql.NullTime{}))
	now := time.Now()
	tp := NullTimeToPointer(sql.NullTime{Time: now, Valid: true})
	require.NotNil(t, tp)
	assert.True(t, now.Equal(*tp))
}
