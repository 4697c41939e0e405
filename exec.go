package brush

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/maskbrush/brush/imop"
	"github.com/maskbrush/brush/utils"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// scriptExtensions lists the file extensions of event scripts.
var scriptExtensions = []string{".events", ".txt"}

// Ops describes a batch run of the command line tool: an image sizing the
// canvas and one event script, or a directory of scripts, replayed on it.
type Ops struct {
	// Image is a file path, an URL or PipeName for stdin.
	Image string
	// Events is a script file, a directory of scripts or PipeName for stdin.
	Events string
	// Out is the mask image destination: a file, PipeName for stdout or,
	// when Events is a directory, the output directory.
	Out      string
	PipeName string
	Workers  int

	// Shape also writes the labelme shape record next to the mask.
	Shape bool
	// Preview also writes the mask flattened over the image.
	Preview bool
	// Fit downscales the preview to the screen size.
	Fit   bool
	Blend imop.BlendMode
	Label string

	spinner *utils.Spinner
}

// result holds the relevant information about a processed script.
type result struct {
	path string
	err  error
}

// Execute loads the image and replays the event scripts, writing the
// finalized masks. Failures of single scripts in directory mode are
// reported and the first one is returned once every script was processed.
func (op *Ops) Execute(opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if op.Image == op.PipeName && op.Events == op.PipeName {
		return errors.New("the image and the events cannot both be read from stdin")
	}

	img, err := op.loadImage()
	if err != nil {
		return errors.Wrap(err, "failed to load the source image")
	}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("🖌 BRUSHMASK", utils.StatusMessage),
		utils.DecorateText("is replaying the strokes...", utils.DefaultMessage))
	op.spinner = utils.NewSpinner(spinnerText, time.Millisecond*100, term.IsTerminal(int(os.Stderr.Fd())))

	// Capture CTRL-C signal and restore the cursor visibility back.
	signalChan := make(chan os.Signal, 1)
	finished := make(chan struct{})
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalChan)
		close(finished)
	}()
	go func() {
		select {
		case <-signalChan:
			op.spinner.RestoreCursor()
			os.Exit(1)
		case <-finished:
		}
	}()

	now := time.Now()

	var fs os.FileInfo
	if op.Events == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(op.Events)
	}
	if err != nil {
		return errors.Wrap(err, "failed to load the events")
	}

	switch mode := fs.Mode(); {
	case mode.IsDir():
		err = op.executeDir(img, opts)
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0 || mode&os.ModeCharDevice != 0:
		op.spinner.Start()
		err = op.process(img, opts, op.Events, op.Out)
		op.spinner.Stop()
		op.printStatus(op.Out, err)
	default:
		err = errors.Errorf("unsupported events source: %s", op.Events)
	}
	if err == nil {
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	}
	return err
}

// executeDir replays every script found under the events directory with a
// bounded pool of workers.
func (op *Ops) executeDir(img *image.NRGBA, opts *Options) error {
	if op.Out == op.PipeName {
		return errors.New("a directory of events needs an output directory")
	}
	if err := os.MkdirAll(op.Out, 0755); err != nil {
		return errors.Wrap(err, "unable to create the output directory")
	}

	// Limit the concurrently running workers to maxWorkers.
	workers := op.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	var (
		wg       sync.WaitGroup
		firstErr error
		ch       = make(chan result)
		done     = make(chan struct{})
	)
	defer close(done)

	paths, errc := walkDir(done, op.Events, scriptExtensions)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(img, opts, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	op.spinner.Start()
	var results []result
	for res := range ch {
		results = append(results, res)
	}
	op.spinner.Stop()

	for _, res := range results {
		if res.err != nil && firstErr == nil {
			firstErr = errors.Wrap(res.err, filepath.Base(res.path))
		}
		op.printStatus(res.path, res.err)
	}
	if err := <-errc; err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// consumer reads the script paths from the paths channel, replays them and
// sends the results on the res channel.
func (op *Ops) consumer(
	img *image.NRGBA,
	opts *Options,
	res chan<- result,
	done <-chan struct{},
	paths <-chan string,
) {
	for src := range paths {
		name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".png"
		dst := filepath.Join(op.Out, name)
		err := op.process(img, opts, src, dst)

		select {
		case <-done:
			return
		case res <- result{path: dst, err: err}:
		}
	}
}

// process replays a single script on a blank mask sized like img and writes
// the finalized mask to out, along with the optional shape and preview.
func (op *Ops) process(img *image.NRGBA, opts *Options, script, out string) (err error) {
	events, err := op.readEvents(script)
	if err != nil {
		return err
	}

	m, err := NewMaskForImage(img, opts)
	if err != nil {
		return err
	}
	m.Label.Label = op.Label
	if err := NewSession(m).Replay(events); err != nil {
		return errors.Wrap(err, "could not replay the events")
	}

	crop, _, err := m.Finalize()
	if err != nil {
		return err
	}

	dst, err := op.createFile(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil && dst != os.Stdout {
			// remove the generated file in case of an error
			os.Remove(dst.Name())
		}
	}()
	if err := SaveImage(dst, crop.Image()); err != nil {
		return errors.Wrap(err, "could not encode the mask")
	}

	if out == op.PipeName {
		return nil
	}
	base := strings.TrimSuffix(out, filepath.Ext(out))
	if op.Shape {
		if err := writeShape(base+".json", m); err != nil {
			return err
		}
	}
	if op.Preview {
		if err := op.writePreview(base+"_preview.png", img, m, opts); err != nil {
			return err
		}
	}
	return nil
}

func (op *Ops) readEvents(script string) ([]Event, error) {
	if script == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return ParseEvents(os.Stdin)
	}
	f, err := os.Open(script)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open the events file")
	}
	defer f.Close()
	return ParseEvents(f)
}

// createFile opens the destination file, or stdout for the pipe name.
func (op *Ops) createFile(out string) (*os.File, error) {
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdout")
		}
		return os.Stdout, nil
	}
	f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create the destination file")
	}
	return f, nil
}

func (op *Ops) writePreview(path string, img *image.NRGBA, m *Mask, opts *Options) error {
	p := NewPreview(opts)
	res, err := p.Flatten(img, m, opts.Opacity, op.Blend)
	if err != nil {
		return err
	}
	if op.Fit {
		res = p.Fit(res)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "unable to create the preview file")
	}
	defer f.Close()
	return SaveImage(f, res)
}

func writeShape(path string, m *Mask) error {
	s, err := EncodeShape(m)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "unable to create the shape file")
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// loadImage reads the source image from an URL, stdin or a local file.
func (op *Ops) loadImage() (*image.NRGBA, error) {
	var src io.Reader

	switch {
	case utils.IsValidUrl(op.Image):
		f, err := utils.DownloadImage(op.Image)
		if err != nil {
			return nil, err
		}
		defer os.Remove(f.Name())
		defer f.Close()
		src = f
	case op.Image == op.PipeName:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	default:
		return LoadImageFile(op.Image)
	}
	return LoadImage(src)
}

// printStatus displays the relevant information about a processed script.
func (op *Ops) printStatus(fname string, err error) {
	fmt.Fprint(os.Stderr, op.statusLine(fname, err))
}

// statusLine describes the outcome of a script. Scripts which never painted
// a pixel are reported as warnings, other failures as errors.
func (op *Ops) statusLine(fname string, err error) string {
	switch {
	case errors.Is(err, ErrEmptyMask):
		return utils.DecorateText("\nNo mask generated: ", utils.WarnMessage) +
			utils.DecorateText(fmt.Sprintf("%s has no painted pixels\n", filepath.Base(fname)), utils.DefaultMessage)
	case err != nil:
		return utils.DecorateText("\nError generating the mask: ", utils.ErrorMessage) +
			utils.DecorateText(fmt.Sprintf("%s\n\tReason: %v\n", filepath.Base(fname), err), utils.DefaultMessage)
	case fname == op.PipeName:
		return ""
	}
	return fmt.Sprintf("\nThe mask has been saved as: %s\n",
		utils.DecorateText(filepath.Base(fname), utils.SuccessMessage))
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan struct{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() || !isValidExtension(filepath.Ext(f.Name()), srcExts) {
				return nil
			}
			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if strings.EqualFold(ex, ext) {
			return true
		}
	}
	return false
}
