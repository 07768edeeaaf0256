package share

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePresenter records requests and leaves completions for the test to
// resolve unless immediate is set.
type fakePresenter struct {
	mu        sync.Mutex
	requests  []Request
	pending   []*Completion
	immediate *Outcome
	nilResult bool
	available bool
}

func (p *fakePresenter) Present(_ context.Context, req Request) *Completion {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.nilResult {
		return nil
	}
	if p.immediate != nil {
		return Resolved(*p.immediate)
	}
	c := NewCompletion()
	p.pending = append(p.pending, c)
	return c
}

func (p *fakePresenter) CanShare(Request) bool {
	return p.available
}

func (p *fakePresenter) last(t *testing.T) (Request, *Completion) {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.requests, "presenter not called")
	var c *Completion
	if len(p.pending) > 0 {
		c = p.pending[len(p.pending)-1]
	}
	return p.requests[len(p.requests)-1], c
}

// waitPending blocks until a share is waiting on an unresolved completion.
func (p *fakePresenter) waitPending(t *testing.T) (Request, *Completion) {
	t.Helper()
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return len(p.pending) > 0
	}, 2*time.Second, 5*time.Millisecond)
	return p.last(t)
}

func (p *fakePresenter) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// async runs a blocking share call and returns its result channel.
func async(fn func() error) <-chan error {
	errc := make(chan error, 1)
	go func() { errc <- fn() }()
	return errc
}

func recv(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("share did not return")
		return nil
	}
}

func closeSharer(t *testing.T, s *Sharer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))
}

func TestShareTextOnlyNeverTouchesStaging(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{immediate: &Outcome{Kind: OutcomeCompleted, Target: "clipboard"}}
	s := NewSharer(m, p)

	require.NoError(t, s.ShareText(context.Background(), "hello", "Greeting"))
	closeSharer(t, s)

	req, _ := p.last(t)
	assert.Equal(t, "Greeting", req.Title)
	assert.Equal(t, []Item{{Kind: ItemText, Value: "hello"}}, req.Items)

	_, err := os.Stat(m.Dir())
	assert.True(t, os.IsNotExist(err), "staging dir must not be created")
}

func TestShareTwoFilesCancelled(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{}
	s := NewSharer(m, p)

	errc := async(func() error {
		return s.Share(context.Background(), Options{
			Title: "Photos",
			Files: []SharedFile{
				{Data: b64("one"), Name: "a.jpg"},
				{Data: b64("two"), Name: "b.jpg"},
			},
		})
	})

	req, comp := p.waitPending(t)
	require.Eventually(t, func() bool { return s.InFlight() == 1 }, 2*time.Second, 5*time.Millisecond)
	files := req.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "a.jpg", files[0].Name)
	assert.Equal(t, "b.jpg", files[1].Name)
	assert.Equal(t, "image/jpeg", files[0].MIMEType)
	for _, f := range files {
		assert.FileExists(t, f.Value, "file must exist while presented")
	}
	for _, f := range m.Tracked() {
		assert.Equal(t, StatePresented, f.State())
	}
	select {
	case err := <-errc:
		t.Fatalf("share returned before the presentation completed: %v", err)
	default:
	}

	comp.Resolve(Cancelled())
	require.NoError(t, recv(t, errc), "cancel is not an error")
	closeSharer(t, s)

	for _, f := range files {
		assert.NoFileExists(t, f.Value)
	}
	assert.Empty(t, m.Tracked())
	assert.Equal(t, 0, s.InFlight())
}

func TestShareNoContent(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{}
	s := NewSharer(m, p, WithExecutor(Inline{}))
	defer closeSharer(t, s)

	err := s.Share(context.Background(), Options{Title: "empty"})
	assert.True(t, IsNoContent(err))
	assert.Zero(t, p.calls())
}

func TestShareRollsBackOnStagingFailure(t *testing.T) {
	tests := []struct {
		name    string
		bad     SharedFile
		wantErr error
	}{
		{"traversal", SharedFile{Data: b64("x"), Name: "../../etc/passwd"}, ErrPathTraversal},
		{"invalid name", SharedFile{Data: b64("x"), Name: "***"}, ErrInvalidName},
		{"bad base64", SharedFile{Data: "!!not-base64!!", Name: "x.txt"}, ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			p := &fakePresenter{}
			s := NewSharer(m, p, WithConcurrency(1))
			defer closeSharer(t, s)

			err := s.Share(context.Background(), Options{
				Text: "see attached",
				Files: []SharedFile{
					{Data: b64("good"), Name: "good.txt"},
					tt.bad,
				},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var shareErr *Error
			require.True(t, errors.As(err, &shareErr))
			assert.Equal(t, tt.bad.Name, shareErr.Name)

			assert.Zero(t, p.calls(), "nothing may be presented")
			assert.Empty(t, m.Tracked())
			assert.Empty(t, listDir(t, m.Dir()))
		})
	}
}

func TestShareMIMETypePrecedence(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{}
	s := NewSharer(m, p)

	errc := async(func() error {
		return s.Share(context.Background(), Options{
			Files: []SharedFile{
				{Data: b64("x"), Name: "a.bin", MimeType: "application/x-custom"},
				{Data: "data:image/webp;base64," + b64("y"), Name: "b.bin"},
				{Data: b64("z"), Name: "c.txt"},
			},
		})
	})

	req, comp := p.waitPending(t)
	files := req.Files()
	require.Len(t, files, 3)
	assert.Equal(t, "application/x-custom", files[0].MIMEType)
	assert.Equal(t, "image/webp", files[1].MIMEType)
	assert.Contains(t, files[2].MIMEType, "text/plain")

	comp.Resolve(Completed("open"))
	require.NoError(t, recv(t, errc))
	closeSharer(t, s)
}

func TestShareRequestOrder(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{immediate: &Outcome{Kind: OutcomeCompleted}}
	s := NewSharer(m, p)

	err := s.Share(context.Background(), Options{
		Title: "Link",
		Text:  "look at this",
		URL:   "https://example.com",
		Files: []SharedFile{{Data: b64("x"), Name: "x.txt"}},
	})
	require.NoError(t, err)
	closeSharer(t, s)

	req, _ := p.last(t)
	assert.Equal(t, []string{"text", "url", "file"}, req.Kinds())
	assert.Equal(t, "look at this\nhttps://example.com", req.CombinedText())
	u, ok := req.URL()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", u)
}

func TestShareData(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{}
	s := NewSharer(m, p)

	errc := async(func() error {
		return s.ShareData(context.Background(), b64("%PDF-1.4"), "report.pdf", "Report")
	})

	req, comp := p.waitPending(t)
	files := req.Files()
	require.Len(t, files, 1)
	got, err := os.ReadFile(files[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(got))

	comp.Resolve(Completed("clipboard"))
	require.NoError(t, recv(t, errc))
	closeSharer(t, s)
	assert.NoFileExists(t, files[0].Value)
}

func TestShareDataTooLargeIsNotDecoded(t *testing.T) {
	m := newTestManager(t, WithMaxSize(16))
	p := &fakePresenter{immediate: &Outcome{Kind: OutcomeCompleted}}
	s := NewSharer(m, p, WithExecutor(Inline{}))
	defer closeSharer(t, s)

	err := s.ShareData(context.Background(), b64(strings.Repeat("x", 17)), "big.bin", "")
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Zero(t, p.calls())

	_, statErr := os.Stat(m.Dir())
	assert.True(t, os.IsNotExist(statErr), "rejected before reaching the staging directory")

	require.NoError(t, s.ShareData(context.Background(), b64(strings.Repeat("x", 16)), "fits.bin", ""))
	assert.Equal(t, 1, p.calls())
}

func TestShareFile(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{immediate: &Outcome{Kind: OutcomeCompleted}}
	s := NewSharer(m, p)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o600))

	require.NoError(t, s.ShareFile(context.Background(), path, "Notes"))
	closeSharer(t, s)

	req, _ := p.last(t)
	files := req.Files()
	require.Len(t, files, 1)
	assert.Equal(t, path, files[0].Value)
	assert.Equal(t, "notes.txt", files[0].Name)
	assert.FileExists(t, path, "shared file must never be deleted")

	_, err := os.Stat(m.Dir())
	assert.True(t, os.IsNotExist(err))
}

func TestShareFileErrors(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{}
	s := NewSharer(m, p, WithExecutor(Inline{}))
	defer closeSharer(t, s)

	err := s.ShareFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), "")
	assert.True(t, IsNotExist(err))

	err = s.ShareFile(context.Background(), t.TempDir(), "")
	assert.ErrorIs(t, err, ErrIsDir)

	assert.Zero(t, p.calls())
}

func TestSharePresentationFailure(t *testing.T) {
	m := newTestManager(t)
	boom := errors.New("no display")
	p := &fakePresenter{immediate: &Outcome{Kind: OutcomeFailed, Err: boom}}
	s := NewSharer(m, p)

	err := s.ShareData(context.Background(), b64("x"), "x.txt", "")
	assert.ErrorIs(t, err, ErrPresentation)
	assert.ErrorIs(t, err, boom)

	closeSharer(t, s)
	assert.Empty(t, m.Tracked())
	assert.Empty(t, listDir(t, m.Dir()))
}

func TestShareReturnsLatePresentationFailure(t *testing.T) {
	m := newTestManager(t)
	boom := errors.New("clipboard backend missing")
	p := PresenterFunc(func(context.Context, Request) *Completion {
		c := NewCompletion()
		go func() {
			time.Sleep(20 * time.Millisecond)
			c.Resolve(Failed(boom))
		}()
		return c
	})

	var mu sync.Mutex
	var released []Event
	s := NewSharer(m, p, WithObserver(func(ev Event) {
		if ev.Type == EventReleased {
			mu.Lock()
			released = append(released, ev)
			mu.Unlock()
		}
	}))

	err := s.ShareData(context.Background(), b64("x"), "x.txt", "Late")
	assert.ErrorIs(t, err, ErrPresentation)
	assert.ErrorIs(t, err, boom)

	err = s.ShareText(context.Background(), "hi", "Late text")
	assert.ErrorIs(t, err, ErrPresentation)

	closeSharer(t, s)
	assert.Empty(t, m.Tracked())
	assert.Empty(t, listDir(t, m.Dir()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, released, 2)
	for _, ev := range released {
		assert.Equal(t, "failed", ev.Outcome)
		assert.Equal(t, boom.Error(), ev.Error)
	}
}

func TestShareCallerStopsWaiting(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{}
	s := NewSharer(m, p)

	ctx, cancel := context.WithCancel(context.Background())
	errc := async(func() error {
		return s.ShareData(ctx, b64("x"), "x.txt", "")
	})
	req, comp := p.waitPending(t)
	cancel()
	assert.ErrorIs(t, recv(t, errc), context.Canceled)

	files := req.Files()
	require.Len(t, files, 1)
	assert.FileExists(t, files[0].Value, "still presented")

	comp.Resolve(Completed("open"))
	closeSharer(t, s)
	assert.NoFileExists(t, files[0].Value)
}

func TestShareNilCompletion(t *testing.T) {
	m := newTestManager(t)
	s := NewSharer(m, &fakePresenter{nilResult: true})

	err := s.ShareData(context.Background(), b64("x"), "x.txt", "")
	assert.ErrorIs(t, err, ErrPresentation)
	closeSharer(t, s)
	assert.Empty(t, listDir(t, m.Dir()))
}

func TestSharePresenterPanics(t *testing.T) {
	m := newTestManager(t)
	p := PresenterFunc(func(context.Context, Request) *Completion {
		panic("presenter bug")
	})
	s := NewSharer(m, p)

	err := s.ShareText(context.Background(), "hi", "")
	assert.ErrorIs(t, err, ErrPresentation)
	closeSharer(t, s)
}

func TestSharePresentsOnExecutor(t *testing.T) {
	m := newTestManager(t)
	loop := NewMainLoop()
	defer loop.Close()

	var onLoop bool
	p := PresenterFunc(func(context.Context, Request) *Completion {
		onLoop = true
		return Resolved(Completed("x"))
	})
	s := NewSharer(m, p, WithExecutor(loop))
	require.NoError(t, s.ShareText(context.Background(), "hi", ""))
	closeSharer(t, s)
	assert.True(t, onLoop)
}

func TestShareIgnoresCallerCancellationAfterHandoff(t *testing.T) {
	m := newTestManager(t)
	var got context.Context
	p := PresenterFunc(func(ctx context.Context, _ Request) *Completion {
		got = ctx
		return Resolved(Completed(""))
	})
	s := NewSharer(m, p, WithExecutor(Inline{}))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.ShareText(ctx, "hi", ""))
	cancel()
	closeSharer(t, s)

	require.NotNil(t, got)
	assert.NoError(t, got.Err())
}

func TestCanShare(t *testing.T) {
	m := newTestManager(t)

	p := &fakePresenter{available: true}
	s := NewSharer(m, p)
	assert.True(t, s.CanShare(nil))
	assert.True(t, s.CanShare(&Options{Files: []SharedFile{{Name: "a.txt"}}}))

	p.available = false
	assert.False(t, s.CanShare(nil))
	closeSharer(t, s)
	assert.False(t, s.CanShare(nil), "closed sharer cannot share")

	plain := NewSharer(m, PresenterFunc(func(context.Context, Request) *Completion {
		return Resolved(Completed(""))
	}))
	assert.True(t, plain.CanShare(nil))
	closeSharer(t, plain)

	_, err := os.Stat(m.Dir())
	assert.True(t, os.IsNotExist(err), "CanShare must not stage")
}

func TestShareObserverEvents(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{}

	var mu sync.Mutex
	var events []Event
	s := NewSharer(m, p, WithObserver(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}))

	errc := async(func() error {
		return s.ShareData(context.Background(), b64("x"), "x.txt", "Doc")
	})
	_, comp := p.waitPending(t)
	comp.Resolve(Completed("clipboard"))
	require.NoError(t, recv(t, errc))
	closeSharer(t, s)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 3)
	assert.Equal(t, EventStaged, events[0].Type)
	assert.Equal(t, EventPresented, events[1].Type)
	assert.Equal(t, []string{"file"}, events[1].Kinds)
	assert.Equal(t, EventReleased, events[2].Type)
	assert.Equal(t, "completed", events[2].Outcome)
	assert.Equal(t, "clipboard", events[2].Target)
	assert.Len(t, events[2].Files, 1)
}

func TestCleanupDuringPresentation(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{}
	s := NewSharer(m, p)

	errc := async(func() error {
		return s.ShareData(context.Background(), b64("x"), "x.txt", "")
	})
	_, comp := p.waitPending(t)
	require.Eventually(t, func() bool { return s.InFlight() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, s.Cleanup())
	_, err := os.Stat(m.Dir())
	assert.True(t, os.IsNotExist(err))

	comp.Resolve(Cancelled())
	require.NoError(t, recv(t, errc))
	closeSharer(t, s)
	assert.Empty(t, m.Tracked())
}

func TestSharerClosed(t *testing.T) {
	m := newTestManager(t)
	s := NewSharer(m, &fakePresenter{})
	closeSharer(t, s)
	closeSharer(t, s)

	assert.ErrorIs(t, s.ShareText(context.Background(), "x", ""), ErrClosed)
	assert.ErrorIs(t, s.ShareFile(context.Background(), "x", ""), ErrClosed)
}

func TestSharerCloseTimeout(t *testing.T) {
	m := newTestManager(t)
	p := &fakePresenter{}
	s := NewSharer(m, p)
	errc := async(func() error {
		return s.ShareText(context.Background(), "x", "")
	})
	_, comp := p.waitPending(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Close(ctx), context.DeadlineExceeded)

	comp.Resolve(Cancelled())
	assert.NoError(t, recv(t, errc))
}

func TestSharerCloseWaitsForShareBeingPresented(t *testing.T) {
	m := newTestManager(t)
	entered := make(chan struct{})
	unblock := make(chan struct{})
	p := PresenterFunc(func(context.Context, Request) *Completion {
		close(entered)
		<-unblock
		return Resolved(Cancelled())
	})
	s := NewSharer(m, p, WithExecutor(Inline{}))

	errc := async(func() error {
		return s.ShareData(context.Background(), b64("x"), "x.txt", "")
	})
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Close(ctx), context.DeadlineExceeded, "a share already past the closed check is counted")

	close(unblock)
	assert.NoError(t, recv(t, errc))
	require.Eventually(t, func() bool { return len(m.Tracked()) == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, listDir(t, m.Dir()))
}
