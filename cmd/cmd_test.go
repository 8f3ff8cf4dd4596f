package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/reportgate/core/render"
)

const samplePayload = `{
  "report": {
    "docElements": [{
      "id": 1, "elementType": "text",
      "x": 0, "y": 0, "width": 120, "height": 20,
      "content": "Hello ${name}",
      "richText": true,
      "richTextHtml": "<p class=\"ql-align-right\"><strong>Hello ${name}</strong></p>"
    }],
    "documentProperties": {"pageFormat": "A4"}
  },
  "data": {"name": "Ada"},
  "outputFormat": "pdf"
}`

func writePayload(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() {
		flagFormat, flagOutputDir, flagName = "", "", ""
		for _, c := range []string{"format", "output_dir", "name"} {
			renderCmd.Flags().Lookup(c).Changed = false
		}
	})
	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNormalizeCommand(t *testing.T) {
	out, _, err := execute(t, "", "normalize", writePayload(t, samplePayload))
	require.NoError(t, err)

	var def map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &def))
	el := def["docElements"].([]any)[0].(map[string]any)
	assert.Equal(t, "Hello ${name}", el["content"])
	assert.Equal(t, true, el["bold"])
	assert.Equal(t, "right", el["horizontalAlignment"])
	assert.NotContains(t, el, "richTextHtml")
}

func TestRenderCommand_WritesPDF(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "", "render", writePayload(t, samplePayload), "--output_dir", dir, "--name", "hello")
	require.NoError(t, err)

	path := filepath.Join(dir, "hello.pdf")
	assert.Contains(t, out, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderCommand_FromStdinAsXLSX(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, samplePayload, "render", "-", "--format", "xlsx", "--output_dir", dir, "--name", "sheet")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "sheet.xlsx"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestRenderCommand_ValidationError(t *testing.T) {
	body := strings.Replace(samplePayload, `"data": {"name": "Ada"}`, `"data": {}`, 1)

	_, _, err := execute(t, "", "render", writePayload(t, body), "--output_dir", t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1.content: errorMsgMissingParameter (name)")
}

func TestReadPayload(t *testing.T) {
	_, err := readPayload(writePayload(t, `{"data":{}}`), nil)
	assert.ErrorContains(t, err, "no report definition")

	_, err = readPayload(writePayload(t, `{`), nil)
	assert.ErrorContains(t, err, "decoding payload")

	_, err = readPayload(filepath.Join(t.TempDir(), "absent.json"), nil)
	assert.ErrorContains(t, err, "opening payload")

	p, err := readPayload("-", strings.NewReader(`{"report":{"docElements":[]}}`))
	require.NoError(t, err)
	assert.NotNil(t, p.Data)
}

func TestDescribeRenderError(t *testing.T) {
	err := describeRenderError(&render.ValidationError{Errors: []render.FieldError{
		{ObjectID: "docProperties", Field: "pageFormat", MsgKey: render.MsgInvalidPageSize, Info: "B7"},
		{ObjectID: "4", Field: "size", MsgKey: render.MsgInvalidSize},
	}})

	assert.Equal(t, "report validation failed:\n  - docProperties.pageFormat: errorMsgInvalidPageSize (B7)\n  - 4.size: errorMsgInvalidSize", err.Error())
	assert.ErrorIs(t, describeRenderError(render.ErrUnsupportedKind), render.ErrUnsupportedKind)
}
