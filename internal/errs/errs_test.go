package errs

import (
	"io/fs"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestCategories(t *testing.T) {
	err := IO(fs.ErrNotExist, "opening %s", "maps/a.map")
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrFormat))
	assert.Contains(t, err.Error(), "opening maps/a.map")

	assert.True(t, errors.Is(Format(errors.New("bad zip"), "x"), ErrFormat))
	assert.True(t, errors.Is(Decode(errors.New("bad png"), "x"), ErrDecode))

	verr := Validation("line %d: expected 5 fields", 3)
	assert.True(t, errors.Is(verr, ErrValidation))
	assert.Equal(t, "line 3: expected 5 fields", verr.Error())
}

func TestNilStaysNil(t *testing.T) {
	assert.NoError(t, IO(nil, "nothing"))
	assert.NoError(t, Decode(nil, "nothing"))
}
