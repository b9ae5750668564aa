package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docxref/internal/core/app"
	"docxref/internal/core/config"
)

const (
	holder = `<doxygen>
  <compounddef id="classHolder" kind="class" language="C++">
    <compoundname>ui::Holder</compoundname>
    <briefdescription><para>Owns a widget.</para></briefdescription>
    <sectiondef kind="private-attrib">
      <memberdef kind="variable" id="classHolder_1a1" prot="private" static="no">
        <type>Widget *</type><name>widget_</name>
      </memberdef>
    </sectiondef>
  </compounddef>
</doxygen>`
	widget = `<doxygen>
  <compounddef id="classWidget" kind="class" language="C++">
    <compoundname>ui::Widget</compoundname>
  </compounddef>
</doxygen>`
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPipeline_ResolvesAfterMissingDocumentAppears(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "xml", "classHolder.xml"), holder)
	writeFile(t, filepath.Join(root, "xml", "index.xml"), `<doxygenindex/>`)
	writeFile(t, filepath.Join(root, "docxref.toml"), `
[input]
paths = ["xml"]

[parse]
workers = 2

[store]
enabled = true
path = "state/docxref.db"
keep_runs = 5
`)

	cfg, err := config.Load(filepath.Join(root, "docxref.toml"))
	require.NoError(t, err)

	a, err := app.New(cfg)
	require.NoError(t, err)
	defer a.Close()

	first, err := a.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Run.Documents)
	assert.Equal(t, 0, first.Run.FailedDocuments)
	assert.Equal(t, 2, first.Run.Elements)
	names := make([]string, 0, len(first.Report.Unresolved))
	for _, u := range first.Report.Unresolved {
		names = append(names, u.Name)
	}
	assert.Contains(t, names, "Widget")

	stored, err := a.Store().Unresolved(ctx, first.Run.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	writeFile(t, filepath.Join(root, "xml", "classWidget.xml"), widget)

	second, err := a.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Run.Documents)
	assert.Equal(t, 3, second.Run.Elements)
	assert.Less(t, second.Run.Unresolved, first.Run.Unresolved)
	assert.GreaterOrEqual(t, second.Report.Stats.Resolved(), 1)

	_, found, err := a.Lookup(ctx, "Widget")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "cpp-classWidget", found[0].ID)

	runs, err := a.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.Run.ID, runs[0].ID)

	_, err = os.Stat(filepath.Join(root, "state", "docxref.db"))
	assert.NoError(t, err)
}
