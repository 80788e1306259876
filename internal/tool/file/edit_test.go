package file

import (
	"testing"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func editArgs(op string, line int, extra map[string]any) map[string]any {
	args := map[string]any{"path": "f.txt", "operation": op, "line": float64(line)}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func TestEditFile_Operations(t *testing.T) {
	const original = "one\ntwo\nthree\n"

	tests := []struct {
		name    string
		args    map[string]any
		want    string
		changed string
	}{
		{"insert at top with zero", editArgs(OpInsert, 0, map[string]any{"content": "zero"}), "zero\none\ntwo\nthree\n", "1 lines changed"},
		{"insert becomes line", editArgs(OpInsert, 2, map[string]any{"content": "1.5"}), "one\n1.5\ntwo\nthree\n", "1 lines changed"},
		{"insert past end appends", editArgs(OpInsert, 99, map[string]any{"content": "four"}), "one\ntwo\nthree\nfour\n", "1 lines changed"},
		{"insert multiline", editArgs(OpInsert, 1, map[string]any{"content": "a\nb"}), "a\nb\none\ntwo\nthree\n", "2 lines changed"},
		{"delete one", editArgs(OpDelete, 2, nil), "one\nthree\n", "1 lines changed"},
		{"delete range clamped", editArgs(OpDelete, 2, map[string]any{"end_line": float64(50)}), "one\n", "2 lines changed"},
		{"delete everything", editArgs(OpDelete, 1, map[string]any{"end_line": float64(3)}), "", "3 lines changed"},
		{"replace one", editArgs(OpReplace, 3, map[string]any{"content": "THREE"}), "one\ntwo\nTHREE\n", "1 lines changed"},
		{"replace range", editArgs(OpReplace, 1, map[string]any{"end_line": float64(2), "content": "x"}), "x\nthree\n", "2 lines changed"},
		{"replace with empty line", editArgs(OpReplace, 1, map[string]any{"content": ""}), "\ntwo\nthree\n", "1 lines changed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.put(t, "f.txt", original)

			res := env.edit.Execute(ctx, tt.args)

			require.True(t, res.Success, res.Error)
			assert.Contains(t, res.Output, tt.changed+" in f.txt")
			assert.Equal(t, tt.want, env.get(t, "f.txt"))
		})
	}
}

func TestEditFile_ReplaceIsIdempotent(t *testing.T) {
	for _, line := range []int{1, 2, 3} {
		env := newTestEnv(t, nil)
		env.put(t, "f.txt", "one\ntwo\nthree\n")
		args := editArgs(OpReplace, line, map[string]any{"content": "same"})

		require.True(t, env.edit.Execute(ctx, args).Success)
		first := env.get(t, "f.txt")
		require.True(t, env.edit.Execute(ctx, args).Success)

		assert.Equal(t, first, env.get(t, "f.txt"), "line %d", line)
	}
}

func TestEditFile_InsertThenDeleteRoundTrips(t *testing.T) {
	originals := []string{"one\ntwo\nthree\n", "no trailing newline", "crlf\r\nfile\r\n", ""}
	for _, original := range originals {
		lines := len(contentLinesOf(original))
		for line := 0; line <= lines+1; line++ {
			env := newTestEnv(t, nil)
			env.put(t, "f.txt", original)

			require.True(t, env.edit.Execute(ctx, editArgs(OpInsert, line, map[string]any{"content": "inserted"})).Success)
			res := env.edit.Execute(ctx, editArgs(OpDelete, line, map[string]any{"end_line": float64(line)}))
			require.True(t, res.Success, res.Error)

			assert.Equal(t, original, env.get(t, "f.txt"), "line %d of %q", line, original)
		}
	}
}

func contentLinesOf(s string) []string {
	if s == "" {
		return nil
	}
	return contentLines(s)
}

func TestEditFile_PreservesCRLF(t *testing.T) {
	env := newTestEnv(t, nil)
	env.put(t, "f.txt", "a\r\nb\r\n")

	res := env.edit.Execute(ctx, editArgs(OpReplace, 2, map[string]any{"content": "B"}))

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "a\r\nB\r\n", env.get(t, "f.txt"))
	assert.Contains(t, res.Output, "+B")
}

func TestEditFile_ErrorsLeaveFileUntouched(t *testing.T) {
	const original = "one\ntwo\n"

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"delete beyond end", editArgs(OpDelete, 3, nil), "line 3 out of range (file has 2 lines)"},
		{"replace beyond end", editArgs(OpReplace, 7, map[string]any{"content": "x"}), "out of range"},
		{"insert without content", editArgs(OpInsert, 1, nil), "content is required for insert"},
		{"replace without content", editArgs(OpReplace, 1, nil), "content is required for replace"},
		{"unknown operation", editArgs("append", 1, map[string]any{"content": "x"}), "unknown operation"},
		{"negative line", editArgs(OpDelete, -1, nil), "line"},
		{"end before start", editArgs(OpDelete, 2, map[string]any{"end_line": float64(1)}), "end_line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.put(t, "f.txt", original)

			res := env.edit.Execute(ctx, tt.args)

			assert.False(t, res.Success)
			assert.Contains(t, res.Error, tt.want)
			assert.Equal(t, original, env.get(t, "f.txt"))
		})
	}
}

func TestEditFile_MissingFile(t *testing.T) {
	env := newTestEnv(t, nil)

	res := env.edit.Execute(ctx, editArgs(OpInsert, 1, map[string]any{"content": "x"}))

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "does not exist")
}

func TestEditFile_ReadOnlyDenied(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Autonomy.Level = "readonly" })
	env.put(t, "f.txt", "one\n")

	res := env.edit.Execute(ctx, editArgs(OpDelete, 1, nil))

	assert.False(t, res.Success)
	assert.Equal(t, "one\n", env.get(t, "f.txt"))
}

func TestApplyEdit_ClampsToBounds(t *testing.T) {
	lines := []string{"a", "b", "c"}
	end := 10

	got, changed, err := applyEdit(lines, &EditFileRequest{Operation: OpDelete, Line: 0, EndLine: &end})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 3, changed)
	assert.Equal(t, []string{"a", "b", "c"}, lines)
}
