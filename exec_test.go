package brush

import (
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/maskbrush/brush/imop"
	"github.com/maskbrush/brush/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

const strokeScript = `mode draw
size 4
down 5 5
move 20 10
up 20 10
`

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("cannot write %s: %v", path, err)
	}
}

func TestExec_ProcessWritesMaskShapeAndPreview(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	script := filepath.Join(dir, "stroke.events")
	writeTestFile(t, script, strokeScript)

	img := makeNRGBAImage(image.Rect(0, 0, 40, 30), []color.Color{color.NRGBA{R: 90, G: 90, B: 90, A: 255}})
	op := &Ops{PipeName: "-", Shape: true, Preview: true, Blend: imop.Multiply, Label: "road"}

	out := filepath.Join(dir, "stroke.png")
	assert.NoError(op.process(img, DefaultOptions(), script, out))

	mask, err := imaging.Open(out)
	assert.NoError(err)
	assert.True(mask.Bounds().Dx() > 0 && mask.Bounds().Dx() < 40)

	data, err := os.ReadFile(filepath.Join(dir, "stroke.json"))
	assert.NoError(err)
	var s Shape
	assert.NoError(json.Unmarshal(data, &s))
	assert.Equal("road", s.Label)
	assert.Equal(ShapeTypeMask, s.ShapeType)
	assert.Len(s.Points, 2)

	prev, err := imaging.Open(filepath.Join(dir, "stroke_preview.png"))
	assert.NoError(err)
	assert.Equal(image.Rect(0, 0, 40, 30), prev.Bounds())
}

func TestExec_ProcessEmptyScriptFails(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	script := filepath.Join(dir, "empty.events")
	writeTestFile(t, script, "# nothing painted\nmode draw\n")

	img := makeNRGBAImage(image.Rect(0, 0, 10, 10), []color.Color{color.White})
	op := &Ops{PipeName: "-"}
	out := filepath.Join(dir, "empty.png")

	err := op.process(img, DefaultOptions(), script, out)
	assert.ErrorIs(err, ErrEmptyMask)
	assert.NoFileExists(out)
}

func TestExec_ExecuteDirectory(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "source.png")
	f, err := os.Create(src)
	assert.NoError(err)
	assert.NoError(SaveImage(f, makeNRGBAImage(image.Rect(0, 0, 32, 32), []color.Color{color.Black})))
	f.Close()

	scripts := filepath.Join(dir, "scripts")
	assert.NoError(os.Mkdir(scripts, 0755))
	writeTestFile(t, filepath.Join(scripts, "a.events"), strokeScript)
	writeTestFile(t, filepath.Join(scripts, "b.TXT"), "mode fill\ndown 3 3\n")
	writeTestFile(t, filepath.Join(scripts, "notes.md"), "ignored")

	out := filepath.Join(dir, "masks")
	op := &Ops{Image: src, Events: scripts, Out: out, PipeName: "-", Workers: 2}
	assert.NoError(op.Execute(nil))

	entries, err := os.ReadDir(out)
	assert.NoError(err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal([]string{"a.png", "b.png"}, names)

	// the fill covers the whole blank canvas
	filled, err := imaging.Open(filepath.Join(out, "b.png"))
	assert.NoError(err)
	assert.Equal(image.Rect(0, 0, 32, 32), filled.Bounds())
}

func TestExec_ExecuteReportsFailingScript(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "source.png")
	f, err := os.Create(src)
	assert.NoError(err)
	assert.NoError(SaveImage(f, makeNRGBAImage(image.Rect(0, 0, 16, 16), []color.Color{color.White})))
	f.Close()

	script := filepath.Join(dir, "bad.events")
	writeTestFile(t, script, "mode draw\nwiggle 1 2\n")

	op := &Ops{Image: src, Events: script, Out: filepath.Join(dir, "bad.png"), PipeName: "-"}
	err = op.Execute(nil)
	assert.Error(err)
	assert.Contains(err.Error(), "line 2")
}

func TestExec_RejectsDoubleStdin(t *testing.T) {
	op := &Ops{Image: "-", Events: "-", PipeName: "-"}
	assert.Error(t, op.Execute(nil))
}

func TestExec_IsValidExtension(t *testing.T) {
	assert := assert.New(t)
	assert.True(isValidExtension(".events", scriptExtensions))
	assert.True(isValidExtension(".TXT", scriptExtensions))
	assert.False(isValidExtension(".png", scriptExtensions))
	assert.False(isValidExtension("", scriptExtensions))
}

func TestExec_WalkDir(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	assert.NoError(os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	writeTestFile(t, filepath.Join(dir, "one.events"), "")
	writeTestFile(t, filepath.Join(dir, "nested", "two.txt"), "")
	writeTestFile(t, filepath.Join(dir, "skip.json"), "")

	done := make(chan struct{})
	defer close(done)
	paths, errc := walkDir(done, dir, scriptExtensions)

	var got []string
	for p := range paths {
		rel, err := filepath.Rel(dir, p)
		assert.NoError(err)
		got = append(got, rel)
	}
	assert.NoError(<-errc)
	sort.Strings(got)
	assert.Equal([]string{"nested/two.txt", "one.events"}, got)
}

func TestExec_StatusLine(t *testing.T) {
	assert := assert.New(t)
	op := &Ops{PipeName: "-"}

	empty := op.statusLine("out/a.png", errors.Wrap(ErrEmptyMask, "finalize"))
	assert.Contains(empty, utils.WarnColor)
	assert.Contains(empty, "a.png has no painted pixels")

	failed := op.statusLine("out/b.png", errors.New("line 2: unknown event"))
	assert.Contains(failed, utils.ErrorColor)
	assert.Contains(failed, "line 2")

	assert.Contains(op.statusLine("out/c.png", nil), "c.png")
	assert.Empty(op.statusLine("-", nil))
}

func TestExec_ExecuteReleasesSignalWatcher(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "source.png")
	f, err := os.Create(src)
	assert.NoError(err)
	assert.NoError(SaveImage(f, makeNRGBAImage(image.Rect(0, 0, 8, 8), []color.Color{color.White})))
	f.Close()

	script := filepath.Join(dir, "dot.events")
	writeTestFile(t, script, "mode draw\ndown 2 2\nup 2 2\n")

	op := &Ops{Image: src, Events: script, Out: filepath.Join(dir, "dot.png"), PipeName: "-"}
	assert.NoError(op.Execute(nil))
	before := runtime.NumGoroutine()

	const runs = 8
	for i := 0; i < runs; i++ {
		assert.NoError(op.Execute(nil))
	}
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Less(runtime.NumGoroutine(), before+runs)
}
