package sandbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRuntime(t *testing.T, script string, config Config, register RegisterFunc) *Runtime {
	t.Helper()
	f := NewFactory(BytesSource(t.Name()+".js", []byte(script)), WithConfig(config))
	require.NoError(t, f.Prepare(context.Background()))

	rt, err := f.Create(ModePlayer, register)
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func runScript(body string) string {
	return `function create_player(register) { return { run: function () { ` + body + ` } }; }`
}

func TestRunReturnsThrownErrorVerbatim(t *testing.T) {
	rt := createRuntime(t, runScript(`throw new Error("Using exceptions for control flow: suspend");`), DefaultConfig(), noopRegister)

	err := rt.Run(context.Background())

	var exc *goja.Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, "Using exceptions for control flow: suspend", ExitMessage(err))
}

func TestRunTimeout(t *testing.T) {
	config := DefaultConfig()
	config.StartupTimeout = 50 * time.Millisecond
	rt := createRuntime(t, runScript(`while (true) {}`), config, noopRegister)

	err := rt.Run(context.Background())

	var interrupted *goja.InterruptedError
	require.ErrorAs(t, err, &interrupted)
}

func TestRunContextCancelled(t *testing.T) {
	rt := createRuntime(t, runScript(`while (true) {}`), DefaultConfig(), noopRegister)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rt.Run(ctx)

	var interrupted *goja.InterruptedError
	require.ErrorAs(t, err, &interrupted)
}

func TestInterruptDoesNotLeakIntoLoader(t *testing.T) {
	var loader Loader
	register := func(l Loader) error {
		loader = l
		return nil
	}
	rt := createRuntime(t, runScript(`register(function (p) { console.log("got " + p); }); while (true) {}`), DefaultConfig(), register)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.Error(t, rt.Run(ctx))

	require.NotNil(t, loader)
	require.NoError(t, loader.Load("after"))
	assert.Equal(t, "got after", rt.Console()[0].Message)
}

func TestRegisterAcceptsObjectLoader(t *testing.T) {
	var loader Loader
	register := func(l Loader) error {
		loader = l
		return nil
	}
	rt := createRuntime(t, runScript(`
		register({
			seen: 0,
			load: function (p) { this.seen++; console.log(p.title + " " + this.seen); }
		});
	`), DefaultConfig(), register)

	require.NoError(t, rt.Run(context.Background()))
	require.NoError(t, loader.Load(map[string]interface{}{"title": "demo"}))
	require.NoError(t, loader.Load(map[string]interface{}{"title": "demo"}))

	console := rt.Console()
	require.Len(t, console, 2)
	assert.Equal(t, "demo 1", console[0].Message)
	assert.Equal(t, "demo 2", console[1].Message)
}

func TestRegisterRejectsNonCallable(t *testing.T) {
	rt := createRuntime(t, runScript(`register({ load: 3 });`), DefaultConfig(), noopRegister)

	err := rt.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, ExitMessage(err), "loader must be a function")
}

func TestRegisterErrorThrownIntoRuntime(t *testing.T) {
	register := func(Loader) error { return errors.New("slot taken") }
	rt := createRuntime(t, runScript(`register(function () {});`), DefaultConfig(), register)

	err := rt.Run(context.Background())

	assert.Equal(t, "register: slot taken", ExitMessage(err))
}

func TestCloseStopsRuntime(t *testing.T) {
	var loader Loader
	register := func(l Loader) error {
		loader = l
		return nil
	}
	rt := createRuntime(t, runScript(`register(function (p) {});`), DefaultConfig(), register)
	require.NoError(t, rt.Run(context.Background()))

	require.NoError(t, rt.Close())

	assert.ErrorIs(t, loader.Load("p"), ErrRuntimeClosed)
	assert.ErrorIs(t, rt.Run(context.Background()), ErrRuntimeClosed)
}

func TestGlobalsLockedDown(t *testing.T) {
	rt := createRuntime(t, runScript(`
		console.log(typeof require);
		console.log(typeof process);
		console.log(typeof module);
		console.log(typeof exports);
	`), DefaultConfig(), noopRegister)

	require.NoError(t, rt.Run(context.Background()))

	for _, entry := range rt.Console() {
		assert.Equal(t, "undefined", entry.Message)
	}
	assert.Len(t, rt.Console(), 4)
}

func TestConsoleCapture(t *testing.T) {
	rt := createRuntime(t, runScript(`
		console.log("a", 1);
		console.warn("b");
		console.error("c");
		console.debug("d");
	`), DefaultConfig(), noopRegister)

	require.NoError(t, rt.Run(context.Background()))

	console := rt.Console()
	require.Len(t, console, 4)

	levels := []string{"log", "warn", "error", "debug"}
	for i, entry := range console {
		assert.Equal(t, levels[i], entry.Level)
	}
	assert.Equal(t, "a 1", console[0].Message)
}

func TestRuntimeIdentity(t *testing.T) {
	rt := createRuntime(t, runScript(``), DefaultConfig(), noopRegister)

	assert.Equal(t, ModePlayer, rt.Mode())
	assert.Contains(t, rt.ID().String(), "rt_")
}

func TestExitMessage(t *testing.T) {
	vm := goja.New()
	throw := func(script string) error {
		_, err := vm.RunString(script)
		require.Error(t, err)
		return err
	}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"go error", errors.New("plain"), "plain"},
		{"js error", throw(`throw new Error("boom")`), "boom"},
		{"js type error", throw(`throw new TypeError("bad type")`), "bad type"},
		{"js string", throw(`throw "raw"`), "raw"},
		{"js object without message", throw(`throw { code: 1 }`), "[object Object]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitMessage(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	vm := goja.New()
	throw := func(script string) error {
		_, err := vm.RunString(script)
		require.Error(t, err)
		return err
	}

	tests := []struct {
		name   string
		err    error
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"go error", errors.New("plain"), "plain", true},
		{"js error", throw(`throw new Error("boom")`), "boom", true},
		{"js string", throw(`throw "Using exceptions for control flow"`), "", false},
		{"js number", throw(`throw 42`), "", false},
		{"js object without message", throw(`throw { code: 1 }`), "", false},
		{"js object with string message", throw(`throw { message: "hi" }`), "hi", true},
		{"js object with numeric message", throw(`throw { message: 7 }`), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := ErrorMessage(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModeDefault, false},
		{"default", ModeDefault, false},
		{"terp", ModeDefault, false},
		{"player", ModePlayer, false},
		{" Editor ", ModeEditor, false},
		{"viewer", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeExport(t *testing.T) {
	assert.Equal(t, "create_terp", ModeDefault.Export())
	assert.Equal(t, "create_player", ModePlayer.Export())
	assert.Equal(t, "create_editor", ModeEditor.Export())
}
