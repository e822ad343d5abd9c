package booking_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	bookingRepo "settisfy/database/repository/booking"
	reviewRepo "settisfy/database/repository/review"
	settlerServiceRepo "settisfy/database/repository/settlerservice"
	userRepo "settisfy/database/repository/user"
	"settisfy/models"
	"settisfy/services/booking"
)

// In-memory repository mocks mirroring the conditional-update semantics of
// the mongo implementations: every guard the real store enforces is
// enforced here too, so the service tests exercise the same failure paths.

type mockBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking

	shouldFailOn string
	errorMsg     string
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (m *mockBookingRepo) failing(op string) error {
	if m.shouldFailOn == op {
		return errors.New(m.errorMsg)
	}
	return nil
}

func copyBooking(b *models.Booking) *models.Booking {
	c := *b
	return &c
}

func (m *mockBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	if err := m.failing("Create"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = copyBooking(b)
	return nil
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if err := m.failing("GetByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return copyBooking(b), nil
}

func (m *mockBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListBySettler(ctx context.Context, settlerID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.SettlerID == settlerID {
			out = append(out, *b)
			continue
		}
		for _, acc := range b.Acceptors {
			if acc.SettlerID == settlerID {
				out = append(out, *b)
				break
			}
		}
	}
	return out, nil
}

func (m *mockBookingRepo) staleStatus(b *models.Booking, expected models.BookingStatus) error {
	return fmt.Errorf("expected status %s, found %s: %w", expected, b.Status, bookingRepo.ErrStaleStatus)
}

func (m *mockBookingRepo) AppendAcceptor(ctx context.Context, id string, acc models.Acceptor) error {
	if err := m.failing("AppendAcceptor"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status != models.StatusBroadcasting {
		return m.staleStatus(b, models.StatusBroadcasting)
	}
	for _, existing := range b.Acceptors {
		if existing.SettlerID == acc.SettlerID {
			return bookingRepo.ErrBidExists
		}
	}
	b.Acceptors = append(b.Acceptors, acc)
	return nil
}

func (m *mockBookingRepo) CommitSelection(ctx context.Context, id string, sel models.SettlerSelection) error {
	if err := m.failing("CommitSelection"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.HasSettler() {
		return bookingRepo.ErrAlreadySelected
	}
	if b.Status != models.StatusBroadcasting {
		return m.staleStatus(b, models.StatusBroadcasting)
	}
	b.SettlerID = sel.SettlerID
	b.SettlerServiceID = sel.SettlerServiceID
	b.SettlerFirstName = sel.FirstName
	b.SettlerLastName = sel.LastName
	b.ServiceStartCode = sel.ServiceStartCode
	b.Status = models.StatusSettlerSelected
	return nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) error {
	if err := m.failing("UpdateStatus"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status != from {
		return m.staleStatus(b, from)
	}
	b.Status = to
	return nil
}

func (m *mockBookingRepo) ApplyQuoteProposal(ctx context.Context, id string, from models.BookingStatus, prop models.QuoteProposal) error {
	if err := m.failing("ApplyQuoteProposal"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status != from {
		return m.staleStatus(b, from)
	}
	if prop.Description != "" {
		b.NewManualQuoteDescription = prop.Description
	}
	if prop.Price != nil {
		b.NewManualQuotePrice = prop.Price
	}
	if len(prop.Addons) > 0 {
		b.NewAddons = prop.Addons
	}
	if prop.Total != nil {
		b.NewTotal = prop.Total
	}
	b.Status = models.StatusQuoteUpdatePending
	return nil
}

func (m *mockBookingRepo) ResolveQuoteUpdate(ctx context.Context, id string, accept bool) error {
	if err := m.failing("ResolveQuoteUpdate"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status != models.StatusQuoteUpdatePending {
		return m.staleStatus(b, models.StatusQuoteUpdatePending)
	}
	if accept {
		if b.NewManualQuoteDescription != "" {
			b.ManualQuoteDescription = b.NewManualQuoteDescription
		}
		if b.NewManualQuotePrice != nil {
			b.ManualQuotePrice = b.NewManualQuotePrice
			b.IsManualQuoteCompleted = true
		}
		if len(b.NewAddons) > 0 {
			b.Addons = b.NewAddons
		}
		if b.NewTotal != nil {
			b.Total = *b.NewTotal
		}
	}
	b.NewManualQuoteDescription = ""
	b.NewManualQuotePrice = nil
	b.NewAddons = nil
	b.NewTotal = nil
	b.Status = models.StatusActiveService
	return nil
}

func (m *mockBookingRepo) SetProblemReport(ctx context.Context, id string, remark string, imageURLs []string) error {
	if err := m.failing("SetProblemReport"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.HasProblemReport() {
		return bookingRepo.ErrReportExists
	}
	if b.Status != models.StatusCooldown {
		return m.staleStatus(b, models.StatusCooldown)
	}
	b.ProblemReportRemark = remark
	b.ProblemReportImageURLs = imageURLs
	return nil
}

func (m *mockBookingRepo) ClearProblemReport(ctx context.Context, id string) error {
	if err := m.failing("ClearProblemReport"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	b.ProblemReportRemark = ""
	b.ProblemReportImageURLs = nil
	return nil
}

func (m *mockBookingRepo) FlagIncompletion(ctx context.Context, id string, addons []models.AddonGroup, manualQuoteCompleted bool, newTotal float64) error {
	if err := m.failing("FlagIncompletion"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status != models.StatusCooldown {
		return m.staleStatus(b, models.StatusCooldown)
	}
	b.Addons = addons
	b.IsManualQuoteCompleted = manualQuoteCompleted
	b.NewTotal = &newTotal
	b.Status = models.StatusIncompletionFlagged
	return nil
}

func (m *mockBookingRepo) SetAdvisoryFlags(ctx context.Context, id string, visitAndFix, updateEvidence *bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if visitAndFix != nil {
		b.IsDoingVisitAndFix = *visitAndFix
	}
	if updateEvidence != nil {
		b.IsDoingUpdateEvidence = *updateEvidence
	}
	return nil
}

func (m *mockBookingRepo) Watch(ctx context.Context, id string) (<-chan models.Booking, error) {
	ch := make(chan models.Booking)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// mustGet reads the stored record directly, bypassing the repository API.
func (m *mockBookingRepo) mustGet(id string) *models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyBooking(m.bookings[id])
}

type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	return u, nil
}

type mockSettlerServiceRepo struct {
	mu       sync.Mutex
	services map[string]*models.SettlerService

	shouldFailOn string
	errorMsg     string
}

func newMockSettlerServiceRepo(services ...*models.SettlerService) *mockSettlerServiceRepo {
	m := &mockSettlerServiceRepo{services: make(map[string]*models.SettlerService)}
	for _, s := range services {
		m.services[s.ID] = s
	}
	return m
}

func (m *mockSettlerServiceRepo) GetByID(ctx context.Context, id string) (*models.SettlerService, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[id]
	if !ok {
		return nil, settlerServiceRepo.ErrNotFound
	}
	return s, nil
}

func (m *mockSettlerServiceRepo) IncrementJobsCount(ctx context.Context, id, bookingID string) error {
	if m.shouldFailOn == "IncrementJobsCount" {
		return errors.New(m.errorMsg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[id]
	if !ok {
		return settlerServiceRepo.ErrNotFound
	}
	for _, credited := range s.CreditedBookings {
		if credited == bookingID {
			return nil
		}
	}
	s.JobsCount++
	s.CreditedBookings = append(s.CreditedBookings, bookingID)
	return nil
}

func (m *mockSettlerServiceRepo) AddRating(ctx context.Context, id string, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.services[id]
	if !ok {
		return settlerServiceRepo.ErrNotFound
	}
	s.RatingsSum += rating
	s.RatingsCount++
	return nil
}

type mockReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]*models.Review // keyed by booking ID
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: make(map[string]*models.Review)}
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[review.BookingID] = review
	return nil
}

func (m *mockReviewRepo) GetByBookingID(ctx context.Context, serviceID, bookingID string) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[bookingID]
	if !ok {
		return nil, reviewRepo.ErrNotFound
	}
	return r, nil
}

type mockStorage struct {
	uploaded  [][]string
	deleted   []string
	failError error
}

func (m *mockStorage) UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error) {
	if m.failError != nil {
		return "", m.failError
	}
	return "https://cdn.example/" + destFolder + "/" + localFilePath, nil
}

func (m *mockStorage) DeleteFile(ctx context.Context, publicID string) error {
	m.deleted = append(m.deleted, publicID)
	return nil
}

func (m *mockStorage) UploadEvidence(ctx context.Context, bookingID string, localFilePaths []string) ([]string, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	m.uploaded = append(m.uploaded, localFilePaths)
	urls := make([]string, len(localFilePaths))
	for i := range localFilePaths {
		urls[i] = fmt.Sprintf("https://cdn.example/problem_reports/%s/%d", bookingID, i)
	}
	return urls, nil
}

type mockNotifier struct {
	mu     sync.Mutex
	pushes []pushRecord
}

type pushRecord struct {
	UserID string
	Title  string
	Data   map[string]string
}

func (m *mockNotifier) SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushes = append(m.pushes, pushRecord{UserID: userID, Title: title, Data: data})
	return nil
}

func (m *mockNotifier) eventsFor(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.pushes {
		if p.UserID == userID {
			out = append(out, p.Data["type"])
		}
	}
	return out
}

type mockPayments struct {
	captures  []string
	failError error
}

func (m *mockPayments) CapturePayment(ctx context.Context, b *models.Booking) (string, error) {
	if m.failError != nil {
		return "", m.failError
	}
	ref := fmt.Sprintf("pi_test_%d", len(m.captures)+1)
	m.captures = append(m.captures, b.ID)
	return ref, nil
}

// fixture bundles a booking service wired to in-memory dependencies.
type fixture struct {
	svc      *booking.DefaultBookingService
	repo     *mockBookingRepo
	users    *mockUserRepo
	services *mockSettlerServiceRepo
	reviews  *mockReviewRepo
	storage  *mockStorage
	payments *mockPayments
	notifier *mockNotifier
}

func newFixture() *fixture {
	f := &fixture{
		repo: newMockBookingRepo(),
		users: newMockUserRepo(
			&models.User{ID: "customer-1", FirstName: "Aina", LastName: "Rahman", Role: "customer"},
			&models.User{ID: "settler-a", FirstName: "Ben", LastName: "Ooi", Role: "settler"},
			&models.User{ID: "settler-b", FirstName: "Chan", LastName: "Wei", Role: "settler"},
		),
		services: newMockSettlerServiceRepo(
			&models.SettlerService{ID: "svc-a", SettlerID: "settler-a", Title: "Plumbing by Ben"},
			&models.SettlerService{ID: "svc-b", SettlerID: "settler-b", Title: "Chan Home Repairs", RatingsSum: 9, RatingsCount: 2, JobsCount: 4},
		),
		reviews:  newMockReviewRepo(),
		storage:  &mockStorage{},
		payments: &mockPayments{},
		notifier: &mockNotifier{},
	}
	f.svc = &booking.DefaultBookingService{
		Repo:     f.repo,
		Users:    f.users,
		Services: f.services,
		Reviews:  f.reviews,
		Storage:  f.storage,
		Payments: f.payments,
		Notifier: f.notifier,
	}
	return f
}

func floatPtr(v float64) *float64 { return &v }

// standardAddons is a single group with one 10.00 option, completed.
func standardAddons() []models.AddonGroup {
	return []models.AddonGroup{{
		Title: "Extras",
		Options: []models.AddonOption{
			{Label: "Deep clean", AdditionalPrice: 10, IsCompleted: true},
		},
	}}
}

// createStandardBooking makes the 50 + 10 + 2 = 62 booking used across the
// lifecycle tests.
func (f *fixture) createStandardBooking(ctx context.Context) *models.Booking {
	b, err := f.svc.CreateBooking(ctx, booking.CreateBookingInput{
		CustomerID: "customer-1",
		Catalogue:  models.CatalogueSnapshot{ServiceID: "cat-1", Title: "Home Cleaning", BasePrice: 50},
		Addons:     standardAddons(),
	})
	if err != nil {
		panic(err)
	}
	return b
}

// advanceToCooldown walks a fresh booking through bid, selection, start and
// completion so dispute tests start from cooldown.
func (f *fixture) advanceToCooldown(ctx context.Context) *models.Booking {
	b := f.createStandardBooking(ctx)
	if _, err := f.svc.AcceptBid(ctx, b.ID, "settler-a", "svc-a"); err != nil {
		panic(err)
	}
	b, err := f.svc.SelectSettler(ctx, b.ID, 0)
	if err != nil {
		panic(err)
	}
	if _, err := f.svc.ConfirmStartCode(ctx, b.ID, b.ServiceStartCode); err != nil {
		panic(err)
	}
	b, err = f.svc.ConfirmCompletion(ctx, b.ID)
	if err != nil {
		panic(err)
	}
	return b
}
