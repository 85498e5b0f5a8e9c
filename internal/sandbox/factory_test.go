package sandbox

import (
	"context"
	"errors"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopRegister(Loader) error { return nil }

func preparedFactory(t *testing.T, script string) *Factory {
	t.Helper()
	f := NewFactory(BytesSource(t.Name()+".js", []byte(script)))
	require.NoError(t, f.Prepare(context.Background()))
	return f
}

func TestCreateBeforePrepare(t *testing.T) {
	f := NewFactory(Embedded())

	_, err := f.Create(ModePlayer, noopRegister)

	var instErr *InstantiationError
	require.ErrorAs(t, err, &instErr)
	assert.ErrorIs(t, err, ErrNotPrepared)
	assert.Nil(t, f.Module())
}

func TestCreateFailures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		mode    Mode
		wantErr error
	}{
		{
			name:    "missing export",
			script:  `function create_player(r) { return { run: function () {} }; }`,
			mode:    ModeEditor,
			wantErr: ErrMissingExport,
		},
		{
			name:    "export is not a function",
			script:  `var create_player = 42;`,
			mode:    ModePlayer,
			wantErr: ErrMissingExport,
		},
		{
			name:    "instance without run",
			script:  `function create_player(r) { return {}; }`,
			mode:    ModePlayer,
			wantErr: ErrNoEntryPoint,
		},
		{
			name:    "constructor returns primitive",
			script:  `function create_player(r) { return 7; }`,
			mode:    ModePlayer,
			wantErr: ErrNoEntryPoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := preparedFactory(t, tt.script)

			rt, err := f.Create(tt.mode, noopRegister)

			assert.Nil(t, rt)
			var instErr *InstantiationError
			require.ErrorAs(t, err, &instErr)
			assert.Equal(t, tt.mode, instErr.Mode)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateConstructorThrows(t *testing.T) {
	f := preparedFactory(t, `function create_player(r) { throw new Error("no gpu"); }`)

	_, err := f.Create(ModePlayer, noopRegister)

	var instErr *InstantiationError
	require.ErrorAs(t, err, &instErr)
	var exc *goja.Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, "no gpu", ExitMessage(exc))
}

func TestCreateModuleEvaluationThrows(t *testing.T) {
	f := preparedFactory(t, `throw new Error("top level");`)

	_, err := f.Create(ModePlayer, noopRegister)

	var instErr *InstantiationError
	assert.ErrorAs(t, err, &instErr)
}

func TestCreateArgumentValidation(t *testing.T) {
	f := preparedFactory(t, `function create_player(r) { return { run: function () {} }; }`)

	_, err := f.Create(Mode("viewer"), noopRegister)
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = f.Create(ModePlayer, nil)
	assert.ErrorIs(t, err, ErrNilRegister)
}

func TestCreateDoesNotRegister(t *testing.T) {
	f := preparedFactory(t, `
function create_player(register) {
	return { run: function () { register(function (p) {}); } };
}
`)
	calls := 0
	register := func(Loader) error {
		calls++
		return nil
	}

	rt, err := f.Create(ModePlayer, register)
	require.NoError(t, err)
	assert.Equal(t, 0, calls, "register must only fire inside Run")

	require.NoError(t, rt.Run(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCreateIsolatesRuntimes(t *testing.T) {
	f := preparedFactory(t, `
var counter = 0;
function create_player(register) {
	return { run: function () { counter++; console.log("counter=" + counter); } };
}
`)

	for i := 0; i < 2; i++ {
		rt, err := f.Create(ModePlayer, noopRegister)
		require.NoError(t, err)
		require.NoError(t, rt.Run(context.Background()))

		console := rt.Console()
		require.Len(t, console, 1)
		assert.Equal(t, "counter=1", console[0].Message)
	}
}

func TestFactoryPrepareError(t *testing.T) {
	f := NewFactory(BytesSource("bad.js", []byte(`{{{`)))

	err := f.Prepare(context.Background())

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.False(t, errors.Is(err, ErrNotPrepared))
	assert.Nil(t, f.Module())
}
