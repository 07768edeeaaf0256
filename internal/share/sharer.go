package share

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// EventType names a share lifecycle event.
type EventType string

const (
	EventStaged    EventType = "share:staged"
	EventPresented EventType = "share:presented"
	EventReleased  EventType = "share:released"
	EventError     EventType = "share:error"
)

// Event is reported to the observer at each step of a share.
type Event struct {
	Type    EventType `json:"type"`
	Title   string    `json:"title,omitempty"`
	Kinds   []string  `json:"kinds,omitempty"`
	Files   []string  `json:"files,omitempty"`
	Outcome string    `json:"outcome,omitempty"`
	Target  string    `json:"target,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// SharerOption configures a Sharer.
type SharerOption func(*Sharer)

// WithExecutor sets the UI execution context. The default is a MainLoop owned
// and closed by the Sharer.
func WithExecutor(e Executor) SharerOption {
	return func(s *Sharer) {
		if e != nil {
			s.executor = e
		}
	}
}

// WithConcurrency bounds how many files of one share are staged at once.
func WithConcurrency(n int) SharerOption {
	return func(s *Sharer) {
		if n > 0 {
			s.limit = n
		}
	}
}

func WithSharerLogger(l *slog.Logger) SharerOption {
	return func(s *Sharer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers fn to receive lifecycle events. fn may be called
// from any goroutine.
func WithObserver(fn func(Event)) SharerOption {
	return func(s *Sharer) {
		s.observer = fn
	}
}

// Sharer is the public share surface: it stages payloads through a Manager,
// hands them to a Presenter on the executor and releases them once the
// presentation completes.
type Sharer struct {
	manager   *Manager
	presenter Presenter
	executor  Executor
	ownLoop   *MainLoop
	logger    *slog.Logger
	limit     int
	observer  func(Event)

	inflight atomic.Int64

	// mu orders wg.Add against Close so no share starts after Close waits.
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewSharer returns a Sharer using mgr for staging and p for presentation.
func NewSharer(mgr *Manager, p Presenter, opts ...SharerOption) *Sharer {
	s := &Sharer{
		manager:   mgr,
		presenter: p,
		logger:    slog.Default(),
		limit:     defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.executor == nil {
		s.ownLoop = NewMainLoop()
		s.executor = s.ownLoop
	}
	return s
}

// Manager returns the staging manager.
func (s *Sharer) Manager() *Manager {
	return s.manager
}

// InFlight returns the number of presentations not yet completed.
func (s *Sharer) InFlight() int {
	return int(s.inflight.Load())
}

// CanShare reports whether the presenter can show opts. A nil opts asks
// about sharing in general. Nothing is staged.
func (s *Sharer) CanShare(opts *Options) bool {
	if s.closed.Load() || s.presenter == nil {
		return false
	}
	a, ok := s.presenter.(Availability)
	if !ok {
		return true
	}

	var req Request
	if opts != nil {
		req = opts.request(nil)
		for _, f := range opts.Files {
			req.Items = append(req.Items, Item{Kind: ItemFile, Name: f.Name, MIMEType: f.MimeType})
		}
	}
	return a.CanShare(req)
}

// Share stages every file of opts, then presents text, URL and files in one
// request and waits for the presentation to complete. A cancelled share is
// not an error; a failed one returns ErrPresentation. The staged files are
// deleted in the background once the presentation completes, even when ctx
// ends the wait first.
// If any file fails to stage, the ones already written are removed and
// nothing is presented.
func (s *Sharer) Share(ctx context.Context, opts Options) error {
	const op = "share"

	if s.closed.Load() {
		return newError(op, opts.Title, ErrClosed)
	}
	if opts.empty() {
		return newError(op, opts.Title, ErrNoContent)
	}
	if !s.begin() {
		return newError(op, opts.Title, ErrClosed)
	}

	var files []*StagedFile
	if len(opts.Files) > 0 {
		var err error
		files, err = s.stage(ctx, opts.Files)
		if err != nil {
			s.wg.Done()
			s.emit(Event{Type: EventError, Title: opts.Title, Error: err.Error()})
			return err
		}
		s.emit(Event{Type: EventStaged, Title: opts.Title, Files: uniqueNames(files)})
	}

	return s.present(ctx, op, opts.request(files), files)
}

// ShareText shares a single piece of text.
func (s *Sharer) ShareText(ctx context.Context, text, title string) error {
	return s.Share(ctx, Options{Text: text, Title: title})
}

// ShareData stages one base64 payload under name and shares it.
func (s *Sharer) ShareData(ctx context.Context, data, name, title string) error {
	return s.Share(ctx, Options{
		Title: title,
		Files: []SharedFile{{Data: data, Name: name}},
	})
}

// ShareFile shares an existing file in place. The file is not copied and is
// never deleted by the Sharer.
func (s *Sharer) ShareFile(ctx context.Context, path, title string) error {
	const op = "share file"

	if s.closed.Load() {
		return newError(op, path, ErrClosed)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return newError(op, path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newError(op, path, ErrNotExist)
		}
		return newError(op, path, err)
	}
	if info.IsDir() {
		return newError(op, path, ErrIsDir)
	}
	if !s.begin() {
		return newError(op, path, ErrClosed)
	}

	req := Request{
		Title: title,
		Items: []Item{{
			Kind:     ItemFile,
			Value:    abs,
			Name:     filepath.Base(abs),
			MIMEType: DetectMIMEType(abs, nil),
		}},
	}
	return s.present(ctx, op, req, nil)
}

// Cleanup removes the staging directory. Presentations still running may
// lose their files; this is logged, not prevented.
func (s *Sharer) Cleanup() error {
	if n := s.inflight.Load(); n > 0 {
		s.logger.Warn("cleaning staging directory during active shares", "inflight", n)
	}
	return s.manager.CleanupAll()
}

// Close stops accepting shares and waits for pending releases until ctx is
// done.
func (s *Sharer) Close(ctx context.Context) error {
	s.mu.Lock()
	already := s.closed.Swap(true)
	s.mu.Unlock()
	if already {
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		s.logger.Warn("closing with shares still open", "inflight", s.inflight.Load())
	}

	if s.ownLoop != nil {
		s.ownLoop.Close()
	}
	return err
}

// begin registers a share with Close. Every successful call is matched by
// exactly one wg.Done, either on a staging failure or in finish.
func (s *Sharer) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Sharer) stage(ctx context.Context, in []SharedFile) ([]*StagedFile, error) {
	const op = "stage"

	staged := make([]*StagedFile, len(in))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i, sf := range in {
		g.Go(func() error {
			if limit := s.manager.maxSize; limit > 0 {
				if n := DecodedLen(sf.Data); n > limit {
					return newError(op, sf.Name, fmt.Errorf("%w (%d > %d bytes)", ErrTooLarge, n, limit))
				}
			}
			data, mediaType, err := DecodePayload(sf.Data)
			if err != nil {
				return newError(op, sf.Name, ErrDecode)
			}
			f, err := s.manager.Create(gctx, sf.Name, data)
			if err != nil {
				return err
			}
			switch {
			case sf.MimeType != "":
				f.MIMEType = sf.MimeType
			case mediaType != "":
				f.MIMEType = mediaType
			}
			staged[i] = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, f := range staged {
			s.manager.Release(f)
		}
		return nil, err
	}
	return staged, nil
}

// present hands req to the presenter on the executor, arranges for files to
// be released when the returned Completion resolves and waits for it.
func (s *Sharer) present(ctx context.Context, op string, req Request, files []*StagedFile) error {
	// Presentation is not bound to the caller's deadline.
	pctx := context.WithoutCancel(ctx)

	handoff := make(chan *Completion, 1)
	err := s.executor.Run(func() {
		defer func() {
			if r := recover(); r != nil {
				handoff <- Resolved(Failed(fmt.Errorf("presenter panic: %v", r)))
			}
		}()
		handoff <- s.presenter.Present(pctx, req)
	})
	if err != nil {
		s.releaseAll(files)
		s.wg.Done()
		return newError(op, req.Title, err)
	}

	comp := <-handoff
	if comp == nil {
		comp = Resolved(Failed(ErrPresentation))
	}

	for _, f := range files {
		f.markPresented()
	}
	s.emit(Event{Type: EventPresented, Title: req.Title, Kinds: req.Kinds(), Files: uniqueNames(files)})

	s.inflight.Add(1)
	comp.OnResolve(func(o Outcome) {
		go s.finish(req, files, o)
	})

	o, err := comp.Wait(ctx)
	if err != nil {
		if !comp.IsResolved() {
			return newError(op, req.Title, err)
		}
		o, _ = comp.Wait(context.Background())
	}
	if o.Kind == OutcomeFailed {
		return newError(op, req.Title, presentationError(o.Err))
	}
	return nil
}

func (s *Sharer) finish(req Request, files []*StagedFile, o Outcome) {
	defer s.wg.Done()
	defer s.inflight.Add(-1)

	s.releaseAll(files)

	ev := Event{
		Type:    EventReleased,
		Title:   req.Title,
		Kinds:   req.Kinds(),
		Files:   uniqueNames(files),
		Outcome: o.Kind.String(),
		Target:  o.Target,
	}
	if o.Err != nil {
		ev.Error = o.Err.Error()
		s.logger.Warn("share presentation failed", "title", req.Title, "error", o.Err)
	} else {
		s.logger.Info("share finished", "title", req.Title, "outcome", o.Kind, "target", o.Target, "files", len(files))
	}
	s.emit(ev)
}

func (s *Sharer) releaseAll(files []*StagedFile) {
	for _, f := range files {
		s.manager.Release(f)
	}
}

func (s *Sharer) emit(ev Event) {
	if s.observer != nil {
		s.observer(ev)
	}
}

func presentationError(err error) error {
	if err == nil || errors.Is(err, ErrPresentation) {
		return ErrPresentation
	}
	return fmt.Errorf("%w: %w", ErrPresentation, err)
}

func uniqueNames(files []*StagedFile) []string {
	if len(files) == 0 {
		return nil
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.UniqueName)
	}
	return out
}
