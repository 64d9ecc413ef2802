package service

// Shared in-memory fakes for the service tests. They enforce the same
// store-level guarantees the Mongo/Redis implementations do (unique indexes,
// atomic code consumption) so concurrency properties can be tested without a
// live store.

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

var errNotExist = errors.New("no such file")

type memVoterRepo struct {
	mu     sync.Mutex
	seq    int
	voters map[string]*domain.Voter // by ID
}

func newMemVoterRepo() *memVoterRepo {
	return &memVoterRepo{voters: make(map[string]*domain.Voter)}
}

func (r *memVoterRepo) Create(_ context.Context, v *domain.Voter) (*domain.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.voters {
		switch {
		case existing.Email == v.Email:
			return nil, domain.ErrEmailTaken
		case existing.Mobile == v.Mobile:
			return nil, domain.ErrMobileTaken
		case existing.NationalID == v.NationalID:
			return nil, domain.ErrNationalIDTaken
		case existing.VoterID == v.VoterID:
			return nil, domain.ErrVoterIDTaken
		}
	}

	r.seq++
	clone := *v
	clone.ID = "v" + strconv.Itoa(r.seq)
	r.voters[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (r *memVoterRepo) FindByID(_ context.Context, id string) (*domain.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.voters[id]
	if !ok {
		return nil, domain.ErrVoterNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *memVoterRepo) FindByEmailAndRole(_ context.Context, email, role string) (*domain.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.voters {
		if v.Email == email && v.Role == role {
			clone := *v
			return &clone, nil
		}
	}
	return nil, domain.ErrVoterNotFound
}

func (r *memVoterRepo) CheckUnique(_ context.Context, email, mobile, nationalID, voterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.voters {
		switch {
		case email != "" && v.Email == email:
			return domain.ErrEmailTaken
		case mobile != "" && v.Mobile == mobile:
			return domain.ErrMobileTaken
		case nationalID != "" && v.NationalID == nationalID:
			return domain.ErrNationalIDTaken
		case voterID != "" && v.VoterID == voterID:
			return domain.ErrVoterIDTaken
		}
	}
	return nil
}

func (r *memVoterRepo) MarkVoted(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.voters[id]
	if !ok {
		return domain.ErrVoterNotFound
	}
	if v.HasVoted {
		return domain.ErrAlreadyVoted
	}
	v.HasVoted = true
	return nil
}

type memBallotRepo struct {
	mu      sync.Mutex
	ballots map[string]*domain.Ballot // by voter ID (the unique index)
}

func newMemBallotRepo() *memBallotRepo {
	return &memBallotRepo{ballots: make(map[string]*domain.Ballot)}
}

func (r *memBallotRepo) Create(_ context.Context, b *domain.Ballot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ballots[b.VoterID]; exists {
		return domain.ErrAlreadyVoted
	}
	clone := *b
	r.ballots[b.VoterID] = &clone
	return nil
}

func (r *memBallotRepo) FindByVoterID(_ context.Context, voterID string) (*domain.Ballot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.ballots[voterID]
	if !ok {
		return nil, domain.ErrVoterNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *memBallotRepo) Tally(_ context.Context) ([]domain.TallyEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.ballots {
		counts[b.CandidateID]++
	}
	entries := make([]domain.TallyEntry, 0, len(counts))
	for id, n := range counts {
		entries = append(entries, domain.TallyEntry{CandidateID: id, Votes: n})
	}
	return entries, nil
}

type memCandidateRepo struct {
	mu         sync.Mutex
	seq        int
	candidates map[string]*domain.Candidate
}

func newMemCandidateRepo() *memCandidateRepo {
	return &memCandidateRepo{candidates: make(map[string]*domain.Candidate)}
}

func (r *memCandidateRepo) Create(_ context.Context, c *domain.Candidate) (*domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := *c
	if clone.ID == "" {
		clone.ID = "cand-" + strconv.Itoa(r.seq)
	}
	r.candidates[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memCandidateRepo) FindByID(_ context.Context, id string) (*domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *memCandidateRepo) List(_ context.Context) ([]*domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memCandidateRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[id]; !ok {
		return domain.ErrCandidateNotFound
	}
	delete(r.candidates, id)
	return nil
}

type storedCode struct {
	value     string
	expiresAt time.Time
}

// memCodeStore mirrors the Redis store: TTL expiry via timestamps, and
// consume-on-match under a single lock.
type memCodeStore struct {
	mu       sync.Mutex
	codes    map[string]storedCode
	verified map[string]time.Time
	now      func() time.Time
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{
		codes:    make(map[string]storedCode),
		verified: make(map[string]time.Time),
		now:      time.Now,
	}
}

func codeID(ch domain.Channel, identifier string) string {
	return string(ch) + ":" + identifier
}

func (s *memCodeStore) Put(_ context.Context, ch domain.Channel, identifier, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[codeID(ch, identifier)] = storedCode{value: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memCodeStore) Consume(_ context.Context, ch domain.Channel, identifier, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := codeID(ch, identifier)
	stored, ok := s.codes[key]
	if !ok || s.now().After(stored.expiresAt) {
		delete(s.codes, key)
		return domain.ErrNoActiveCode
	}
	if stored.value != code {
		return domain.ErrInvalidCode
	}
	delete(s.codes, key)
	return nil
}

func (s *memCodeStore) MarkVerified(_ context.Context, ch domain.Channel, identifier string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified[codeID(ch, identifier)] = s.now().Add(ttl)
	return nil
}

func (s *memCodeStore) IsVerified(_ context.Context, ch domain.Channel, identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.verified[codeID(ch, identifier)]
	return ok && s.now().Before(exp), nil
}

func (s *memCodeStore) ConsumeVerified(_ context.Context, ch domain.Channel, identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := codeID(ch, identifier)
	exp, ok := s.verified[key]
	delete(s.verified, key)
	return ok && s.now().Before(exp), nil
}

type sentMessage struct {
	kind    string
	to      string
	subject string
	body    string
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []sentMessage
}

func (n *recordingNotifier) EnqueueEmail(to, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, sentMessage{kind: "email", to: to, subject: subject, body: body})
}

func (n *recordingNotifier) EnqueueSMS(mobile, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, sentMessage{kind: "sms", to: mobile, body: body})
}

func (n *recordingNotifier) sent() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]sentMessage, len(n.messages))
	copy(out, n.messages)
	return out
}

// stubEmbedder returns a fixed detection list, or an error.
type stubEmbedder struct {
	detections []ports.Detection
	err        error
}

func (e *stubEmbedder) EnsureReady(context.Context) error { return nil }

func (e *stubEmbedder) Extract(context.Context, []byte) ([]ports.Detection, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.detections, nil
}

// memMedia is an in-memory photo scratch store.
type memMedia struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemMedia() *memMedia {
	return &memMedia{files: make(map[string][]byte)}
}

func (m *memMedia) put(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
}

func (m *memMedia) Read(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, errNotExist
	}
	return data, nil
}

func (m *memMedia) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		return errNotExist
	}
	delete(m.files, path)
	return nil
}

func (m *memMedia) has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}
