package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/classroom/internal/errs"
	"github.com/and161185/classroom/internal/metrics"
	"github.com/and161185/classroom/internal/model"
	"github.com/and161185/classroom/internal/ownership"
	"github.com/and161185/classroom/internal/repository"
)

// Feed operations as reported in events and metrics.
const (
	OpList      = "list"
	OpGet       = "get"
	OpCreate    = "create"
	OpDelete    = "delete"
	OpLike      = "like"
	OpUnlike    = "unlike"
	OpComment   = "comment"
	OpUncomment = "uncomment"
)

// MutationState is the lifecycle stage of one optimistic mutation.
type MutationState int

// States.
const (
	Pending MutationState = iota + 1
	Committed
	RolledBack
)

func (s MutationState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// Event is delivered to subscribers after every change to the snapshot.
// Statuses is a private copy of the list at that moment.
type Event struct {
	Op       string
	EntityID string
	State    MutationState
	Statuses []*model.Status
	Err      error
}

// Capabilities describes optional server features.
type Capabilities struct {
	CommentDelete bool
}

// Viewer supplies the signed-in identity. identity.Cache implements it.
type Viewer interface {
	Cached() (model.Identity, bool)
}

// Feed owns the in-memory status list and applies optimistic mutations to it.
//
// Statuses are copy-on-write: a mutation swaps in a clone of the affected
// status, so a retained list keeps its exact pointers.
type Feed struct {
	repo   repository.StatusRepository
	viewer Viewer
	caps   Capabilities
	log    *zap.Logger
	met    *metrics.Metrics
	now    func() time.Time

	mu       sync.Mutex
	list     []*model.Status
	gen      uint64
	inflight map[string]struct{}
	subs     map[int]func(Event)
	nextSub  int
}

// NewFeed constructs the feed engine. viewer, log and met may be nil.
func NewFeed(repo repository.StatusRepository, viewer Viewer, caps Capabilities, log *zap.Logger, met *metrics.Metrics) *Feed {
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{
		repo:     repo,
		viewer:   viewer,
		caps:     caps,
		log:      log,
		met:      met,
		now:      time.Now,
		inflight: map[string]struct{}{},
		subs:     map[int]func(Event){},
	}
}

// Capabilities returns the configured server features.
func (f *Feed) Capabilities() Capabilities { return f.caps }

// Statuses returns a read view of the current list.
func (f *Feed) Statuses() []*model.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.Status(nil), f.list...)
}

// Subscribe registers fn for change events and returns its cancel func.
// fn runs on the goroutine that caused the change.
func (f *Feed) Subscribe(fn func(Event)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// List replaces the snapshot with the server's page. On failure the
// snapshot is left untouched.
func (f *Feed) List(ctx context.Context) ([]*model.Status, error) {
	page, err := f.repo.List(ctx)
	if err != nil {
		f.log.Warn("list statuses", zap.Error(err))
		return nil, err
	}
	f.mu.Lock()
	f.setLocked(page)
	ev := f.eventLocked(OpList, "", Committed, nil)
	f.mu.Unlock()
	f.emit(ev)
	return append([]*model.Status(nil), page...), nil
}

// Get fetches one status. When the status is in the snapshot its entry is
// replaced with the fetched value.
func (f *Feed) Get(ctx context.Context, id string) (*model.Status, error) {
	st, err := f.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	if i := f.indexLocked(id); i >= 0 {
		f.replaceLocked(i, st)
		ev := f.eventLocked(OpGet, id, Committed, nil)
		f.mu.Unlock()
		f.emit(ev)
		return st, nil
	}
	f.mu.Unlock()
	return st, nil
}

// Create prepends a placeholder, publishes content and resyncs the list.
// It returns only after commit or rollback; UI code should watch Subscribe
// for the Pending snapshot to show the placeholder immediately.
func (f *Feed) Create(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return errs.Invalid("content", "must not be empty")
	}
	const key = OpCreate
	if !f.begin(key) {
		return errs.ErrInFlight
	}
	defer f.end(key)

	zero := 0
	ph := &model.Status{
		ID:        model.NewTempID(),
		Content:   content,
		Author:    f.author(),
		LikeCount: &zero,
		CreatedAt: f.now(),
	}
	f.mu.Lock()
	f.setLocked(append([]*model.Status{ph}, f.list...))
	ev := f.eventLocked(OpCreate, ph.ID, Pending, nil)
	f.mu.Unlock()
	f.emit(ev)

	if err := f.repo.Create(ctx, content); err != nil {
		f.dropStatus(ph.ID)
		return f.rolledBack(OpCreate, ph.ID, err)
	}
	if _, err := f.List(ctx); err != nil {
		f.dropStatus(ph.ID)
		return f.stale(OpCreate, ph.ID, err)
	}
	return f.committed(OpCreate, ph.ID)
}

// Delete removes id locally, deletes it remotely and restores the prior
// list on failure. Ownership is checked by the caller.
func (f *Feed) Delete(ctx context.Context, id string) error {
	key := OpDelete + ":" + id
	if !f.begin(key) {
		return errs.ErrInFlight
	}
	defer f.end(key)

	f.mu.Lock()
	before := f.list
	idx := f.indexLocked(id)
	var removed *model.Status
	if idx >= 0 {
		removed = before[idx]
		next := make([]*model.Status, 0, len(before)-1)
		next = append(next, before[:idx]...)
		next = append(next, before[idx+1:]...)
		f.setLocked(next)
	}
	gen := f.gen
	ev := f.eventLocked(OpDelete, id, Pending, nil)
	f.mu.Unlock()
	f.emit(ev)

	if err := f.repo.Delete(ctx, id); err != nil {
		if removed != nil {
			f.mu.Lock()
			if f.gen == gen {
				f.setLocked(before)
			} else if f.indexLocked(id) < 0 {
				f.setLocked(insertAt(f.list, idx, removed))
			}
			f.mu.Unlock()
		}
		return f.rolledBack(OpDelete, id, err)
	}
	return f.committed(OpDelete, id)
}

// ToggleLike flips the viewer's like on statusID. A failed remote call
// resyncs the list instead of reverting the arithmetic locally.
func (f *Feed) ToggleLike(ctx context.Context, statusID string) error {
	key := OpLike + ":" + statusID
	if !f.begin(key) {
		return errs.ErrInFlight
	}
	defer f.end(key)

	email := f.viewerEmail()
	f.mu.Lock()
	idx := f.indexLocked(statusID)
	if idx < 0 {
		f.mu.Unlock()
		return fmt.Errorf("status %s: %w", statusID, errs.ErrNotFound)
	}
	cur := f.list[idx]
	liked := ownership.HasViewerLiked(cur, email)
	next := cur.Clone()
	count := cur.EffectiveLikeCount()
	op := OpLike
	if liked {
		op = OpUnlike
		count = max(count-1, 0)
		next.ViewerHasLiked = false
		kept := next.Likes[:0]
		for _, l := range next.Likes {
			if !ownership.IsOwnedByViewer(l, email) {
				kept = append(kept, l)
			}
		}
		next.Likes = kept
	} else {
		count++
		next.ViewerHasLiked = true
		if email != "" {
			next.Likes = append(next.Likes, model.RawAuthor(email))
		}
	}
	next.LikeCount = &count
	f.replaceLocked(idx, next)
	ev := f.eventLocked(op, statusID, Pending, nil)
	f.mu.Unlock()
	f.emit(ev)

	call := f.repo.Like
	if liked {
		call = f.repo.Unlike
	}
	if err := call(ctx, statusID); err != nil {
		if _, rerr := f.List(ctx); rerr != nil {
			f.log.Warn("resync after like failure", zap.String("status", statusID), zap.Error(rerr))
			f.mu.Lock()
			if i := f.indexLocked(statusID); i >= 0 && f.list[i] == next {
				f.replaceLocked(i, cur)
			}
			f.mu.Unlock()
		}
		return f.rolledBack(op, statusID, err)
	}
	return f.committed(op, statusID)
}

// AddComment appends a placeholder comment, posts it and reconciles the
// status with a fresh read.
func (f *Feed) AddComment(ctx context.Context, statusID, content string) error {
	if strings.TrimSpace(content) == "" {
		return errs.Invalid("content", "must not be empty")
	}
	key := OpComment + ":" + statusID
	if !f.begin(key) {
		return errs.ErrInFlight
	}
	defer f.end(key)

	ph := model.Comment{
		ID:        model.NewTempID(),
		Content:   content,
		Author:    f.author(),
		CreatedAt: f.now(),
	}
	f.mu.Lock()
	if idx := f.indexLocked(statusID); idx >= 0 {
		next := f.list[idx].Clone()
		next.Comments = append(next.Comments, ph)
		f.replaceLocked(idx, next)
	}
	ev := f.eventLocked(OpComment, statusID, Pending, nil)
	f.mu.Unlock()
	f.emit(ev)

	if err := f.repo.AddComment(ctx, statusID, content); err != nil {
		f.dropComment(statusID, ph.ID)
		return f.rolledBack(OpComment, statusID, err)
	}
	if _, err := f.Get(ctx, statusID); err != nil {
		f.dropComment(statusID, ph.ID)
		return f.stale(OpComment, statusID, err)
	}
	return f.committed(OpComment, statusID)
}

// DeleteComment removes commentID locally and remotely, restoring the prior
// comments on failure. It fails with errs.ErrUnsupported when the server
// does not offer comment deletion.
func (f *Feed) DeleteComment(ctx context.Context, commentID, statusID string) error {
	if !f.caps.CommentDelete {
		return errs.ErrUnsupported
	}
	key := OpUncomment + ":" + commentID
	if !f.begin(key) {
		return errs.ErrInFlight
	}
	defer f.end(key)

	var removed *model.Comment
	at := -1
	f.mu.Lock()
	if idx := f.indexLocked(statusID); idx >= 0 {
		cur := f.list[idx]
		next := cur.Clone()
		next.Comments = next.Comments[:0]
		for i, c := range cur.Comments {
			if c.ID == commentID && removed == nil {
				removed, at = &c, i
				continue
			}
			next.Comments = append(next.Comments, c)
		}
		f.replaceLocked(idx, next)
	}
	ev := f.eventLocked(OpUncomment, commentID, Pending, nil)
	f.mu.Unlock()
	f.emit(ev)

	if err := f.repo.DeleteComment(ctx, commentID, statusID); err != nil {
		if removed != nil {
			f.restoreComment(statusID, *removed, at)
		}
		return f.rolledBack(OpUncomment, commentID, err)
	}
	return f.committed(OpUncomment, commentID)
}

// --- helpers ---

func (f *Feed) begin(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.inflight[key]; busy {
		return false
	}
	f.inflight[key] = struct{}{}
	return true
}

func (f *Feed) end(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.inflight, key)
}

func (f *Feed) viewerEmail() string {
	if f.viewer == nil {
		return ""
	}
	id, _ := f.viewer.Cached()
	return id.Email
}

func (f *Feed) author() model.AuthorRef {
	if f.viewer == nil {
		return model.AuthorRef{}
	}
	id, ok := f.viewer.Cached()
	if !ok {
		return model.AuthorRef{}
	}
	return id.AsAuthor()
}

func (f *Feed) setLocked(list []*model.Status) {
	f.list = list
	f.gen++
}

func (f *Feed) indexLocked(id string) int {
	for i, s := range f.list {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// replaceLocked swaps entry i in a fresh copy of the list.
func (f *Feed) replaceLocked(i int, st *model.Status) {
	next := append([]*model.Status(nil), f.list...)
	next[i] = st
	f.setLocked(next)
}

func (f *Feed) dropStatus(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		return
	}
	next := make([]*model.Status, 0, len(f.list)-1)
	next = append(next, f.list[:i]...)
	next = append(next, f.list[i+1:]...)
	f.setLocked(next)
}

func (f *Feed) dropComment(statusID, commentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(statusID)
	if i < 0 {
		return
	}
	cur := f.list[i]
	next := cur.Clone()
	next.Comments = next.Comments[:0]
	for _, c := range cur.Comments {
		if c.ID != commentID {
			next.Comments = append(next.Comments, c)
		}
	}
	if len(next.Comments) != len(cur.Comments) {
		f.replaceLocked(i, next)
	}
}

// restoreComment puts c back at index at unless a newer read already has it.
func (f *Feed) restoreComment(statusID string, c model.Comment, at int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.indexLocked(statusID)
	if idx < 0 {
		return
	}
	cur := f.list[idx]
	for _, existing := range cur.Comments {
		if existing.ID == c.ID {
			return
		}
	}
	next := cur.Clone()
	at = min(at, len(next.Comments))
	next.Comments = append(next.Comments[:at], append([]model.Comment{c}, next.Comments[at:]...)...)
	f.replaceLocked(idx, next)
}

func insertAt(list []*model.Status, i int, st *model.Status) []*model.Status {
	i = min(i, len(list))
	next := make([]*model.Status, 0, len(list)+1)
	next = append(next, list[:i]...)
	next = append(next, st)
	return append(next, list[i:]...)
}

func (f *Feed) eventLocked(op, id string, state MutationState, err error) Event {
	return Event{
		Op:       op,
		EntityID: id,
		State:    state,
		Statuses: append([]*model.Status(nil), f.list...),
		Err:      err,
	}
}

func (f *Feed) emit(ev Event) {
	f.mu.Lock()
	subs := make([]func(Event), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func (f *Feed) committed(op, id string) error {
	f.met.Mutation(op, metrics.OutcomeCommitted)
	f.mu.Lock()
	ev := f.eventLocked(op, id, Committed, nil)
	f.mu.Unlock()
	f.emit(ev)
	return nil
}

func (f *Feed) rolledBack(op, id string, err error) error {
	f.met.Mutation(op, metrics.OutcomeRolledBack)
	f.log.Warn("mutation rolled back", zap.String("op", op), zap.String("id", id), zap.Error(err))
	f.mu.Lock()
	ev := f.eventLocked(op, id, RolledBack, err)
	f.mu.Unlock()
	f.emit(ev)
	return err
}

// stale reports a mutation that committed remotely but whose follow-up read failed.
func (f *Feed) stale(op, id string, err error) error {
	f.met.Mutation(op, metrics.OutcomeStale)
	f.log.Warn("mutation committed, resync failed", zap.String("op", op), zap.String("id", id), zap.Error(err))
	err = fmt.Errorf("%w: %w", errs.ErrStale, err)
	f.mu.Lock()
	ev := f.eventLocked(op, id, Committed, err)
	f.mu.Unlock()
	f.emit(ev)
	return err
}
