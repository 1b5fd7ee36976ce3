package clip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	id       string
	text     string
	readErr  error
	writeErr error
	reads    int
	writes   int
}

func (f *fakeBackend) name() string { return f.id }

func (f *fakeBackend) read() (string, error) {
	f.reads++
	return f.text, f.readErr
}

func (f *fakeBackend) write(text string) error {
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.text = text
	return nil
}

func TestReadPrefersPrimary(t *testing.T) {
	primary := &fakeBackend{id: "primary", text: "from primary"}
	secondary := &fakeBackend{id: "secondary", text: "from secondary"}
	a := &fallbackAccessor{chain: []backend{primary, secondary}}

	text, err := a.Read()
	require.NoError(t, err)
	assert.Equal(t, "from primary", text)
	assert.Zero(t, secondary.reads)
}

func TestReadFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &fakeBackend{id: "primary", readErr: errors.New("display gone")}
	secondary := &fakeBackend{id: "secondary", text: "rescued"}
	a := &fallbackAccessor{chain: []backend{primary, secondary}}

	text, err := a.Read()
	require.NoError(t, err)
	assert.Equal(t, "rescued", text)
}

func TestReadErrorWhenAllBackendsFail(t *testing.T) {
	boom := errors.New("no clipboard tool")
	a := &fallbackAccessor{chain: []backend{
		&fakeBackend{id: "primary", readErr: errors.New("display gone")},
		&fakeBackend{id: "secondary", readErr: boom},
	}}

	_, err := a.Read()
	var re *ReadError
	require.ErrorAs(t, err, &re)
	assert.ErrorIs(t, err, boom)
}

func TestWriteFallsBackAndWrapsFailure(t *testing.T) {
	primary := &fakeBackend{id: "primary", writeErr: errors.New("display gone")}
	secondary := &fakeBackend{id: "secondary"}
	a := &fallbackAccessor{chain: []backend{primary, secondary}}

	require.NoError(t, a.Write("synced"))
	assert.Equal(t, "synced", secondary.text)

	secondary.writeErr = errors.New("xclip missing")
	err := a.Write("nope")
	var we *WriteError
	require.ErrorAs(t, err, &we)
}

func TestNameListsChain(t *testing.T) {
	a := &fallbackAccessor{chain: []backend{
		&fakeBackend{id: "native"},
		&fakeBackend{id: "command"},
	}}
	assert.Equal(t, "native → command", a.Name())
}
