package services

import (
	"context"
	"time"

	"libraryplanner/internal/domain"
)

type mockUserRepository struct {
	users map[string]*domain.User // keyed by ID
	err   error
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	if user.ID == "" {
		user.ID = "generated-user-id"
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	if m.users == nil {
		m.users = map[string]*domain.User{}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type mockRoleRepository struct {
	roles    map[string]domain.Role
	assigned map[string]domain.Role
	err      error
}

func (m *mockRoleRepository) Get(ctx context.Context, userID string) (domain.Role, error) {
	if m.err != nil {
		return "", m.err
	}
	if r, ok := m.roles[userID]; ok {
		return r, nil
	}
	return domain.RoleMember, nil
}

func (m *mockRoleRepository) Assign(ctx context.Context, userID string, role domain.Role) error {
	if m.err != nil {
		return m.err
	}
	if m.assigned == nil {
		m.assigned = map[string]domain.Role{}
	}
	m.assigned[userID] = role
	return nil
}

type mockBookRepository struct {
	books map[string]*domain.Book
	err   error
}

func (m *mockBookRepository) Create(ctx context.Context, book *domain.Book) error {
	if m.err != nil {
		return m.err
	}
	if book.ID == "" {
		book.ID = "generated-book-id"
	}
	if m.books == nil {
		m.books = map[string]*domain.Book{}
	}
	m.books[book.ID] = book
	return nil
}

func (m *mockBookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	if b, ok := m.books[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockBookRepository) List(ctx context.Context, search string) ([]*domain.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Book
	for _, b := range m.books {
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBookRepository) Update(ctx context.Context, id string, upd domain.BookUpdate) (*domain.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.books[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		b.Title = *upd.Title
	}
	if upd.Author != nil {
		b.Author = *upd.Author
	}
	return b, nil
}

func (m *mockBookRepository) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.books[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.books, id)
	return nil
}

type mockBorrowRepository struct {
	borrows     map[string]*domain.Borrow // keyed by ID
	openByBook  map[string]*domain.Borrow
	checkoutErr error
	returnErr   error
	err         error
}

func (m *mockBorrowRepository) Checkout(ctx context.Context, bookID, userID string, now time.Time) (*domain.Borrow, error) {
	if m.checkoutErr != nil {
		return nil, m.checkoutErr
	}
	if _, exists := m.openByBook[bookID]; exists {
		return nil, domain.ErrBookUnavailable
	}
	borrow := &domain.Borrow{ID: "generated-borrow-id", BookID: bookID, BorrowedBy: userID, BorrowedAt: now}
	if m.borrows == nil {
		m.borrows = map[string]*domain.Borrow{}
	}
	if m.openByBook == nil {
		m.openByBook = map[string]*domain.Borrow{}
	}
	m.borrows[borrow.ID] = borrow
	m.openByBook[bookID] = borrow
	return borrow, nil
}

func (m *mockBorrowRepository) Return(ctx context.Context, borrowID, bookID string, now time.Time) error {
	if m.returnErr != nil {
		return m.returnErr
	}
	b, ok := m.borrows[borrowID]
	if !ok {
		return domain.ErrNotFound
	}
	if b.ReturnedAt != nil {
		return domain.ErrBorrowClosed
	}
	b.ReturnedAt = &now
	delete(m.openByBook, bookID)
	return nil
}

func (m *mockBorrowRepository) GetByID(ctx context.Context, id string) (*domain.Borrow, error) {
	if m.err != nil {
		return nil, m.err
	}
	if b, ok := m.borrows[id]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockBorrowRepository) GetOpenByBookID(ctx context.Context, bookID string) (*domain.Borrow, error) {
	if m.err != nil {
		return nil, m.err
	}
	if b, ok := m.openByBook[bookID]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

type mockEventRepository struct {
	events  map[string]*domain.Event
	visible []*domain.Event
	err     error
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	if event.ID == "" {
		event.ID = "generated-event-id"
	}
	if m.events == nil {
		m.events = map[string]*domain.Event{}
	}
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	if ev, ok := m.events[id]; ok {
		return ev, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockEventRepository) ListVisible(ctx context.Context, ownerID, inviteeEmail string, filter domain.EventFilter) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.visible, nil
}

func (m *mockEventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		ev.Title = *upd.Title
	}
	if upd.StartTime != nil {
		ev.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		ev.EndTime = *upd.EndTime
	}
	if upd.Status != nil {
		ev.Status = *upd.Status
	}
	return ev, nil
}

func (m *mockEventRepository) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

type mockInvitationRepository struct {
	byID          map[string]*domain.Invitation
	byEventEmail  map[string]*domain.Invitation // key eventID + ":" + email
	byToken       map[string]*domain.Invitation
	listed        []*domain.Invitation
	total         int
	createErr     error
	err           error
}

func (m *mockInvitationRepository) key(eventID, email string) string { return eventID + ":" + email }

func (m *mockInvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.byEventEmail[m.key(inv.EventID, inv.InviteeEmail)]; exists {
		return domain.ErrAlreadyInvited
	}
	if inv.ID == "" {
		inv.ID = "generated-invitation-id"
	}
	if m.byID == nil {
		m.byID = map[string]*domain.Invitation{}
	}
	if m.byEventEmail == nil {
		m.byEventEmail = map[string]*domain.Invitation{}
	}
	if m.byToken == nil {
		m.byToken = map[string]*domain.Invitation{}
	}
	m.byID[inv.ID] = inv
	m.byEventEmail[m.key(inv.EventID, inv.InviteeEmail)] = inv
	m.byToken[inv.Token] = inv
	return nil
}

func (m *mockInvitationRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Invitation, error) {
	if m.err != nil {
		return nil, m.err
	}
	if inv, ok := m.byEventEmail[m.key(eventID, email)]; ok {
		return inv, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockInvitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	if m.err != nil {
		return nil, m.err
	}
	if inv, ok := m.byToken[token]; ok {
		return inv, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockInvitationRepository) ListByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.listed, m.total, nil
}

func (m *mockInvitationRepository) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) (*domain.Invitation, error) {
	if m.err != nil {
		return nil, m.err
	}
	inv, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if inv.Status != domain.InvitationPending {
		return nil, domain.ErrAlreadyResponded
	}
	inv.Status = status
	return inv, nil
}

type mockHasher struct {
	saltErr error
	hashErr error
	fail    bool // Compare fails when true
}

func (m *mockHasher) GenerateSalt() (string, error) {
	if m.saltErr != nil {
		return "", m.saltErr
	}
	return "test-salt", nil
}

func (m *mockHasher) Hash(salt, password string) (string, error) {
	if m.hashErr != nil {
		return "", m.hashErr
	}
	return "hash:" + salt + ":" + password, nil
}

func (m *mockHasher) Compare(hash, salt, password string) error {
	if m.fail || hash != "hash:"+salt+":"+password {
		return domain.ErrInvalidInput
	}
	return nil
}

type mockTokenIssuer struct {
	token string
	err   error
}

func (m *mockTokenIssuer) Issue(userID, email string, role domain.Role, expiry time.Duration) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.token != "" {
		return m.token, nil
	}
	return "token-for-" + userID, nil
}

type mockEmailService struct {
	sent []*domain.InvitationEmailData
	err  error
}

func (m *mockEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, data)
	return nil
}
