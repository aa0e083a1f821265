package service

import (
	"context"
	"sync"
	"time"

	"github.com/voluntra/signup-service/internal/models"
	"gorm.io/gorm"
)

// In-memory repositories for service tests. The mutex-guarded reserve and
// consume operations mirror the store's conditional writes, so the
// concurrency soak tests exercise the same admission semantics the SQL
// repositories provide.

type fakeEventRepo struct {
	mu         sync.Mutex
	events     map[string]*models.Event
	banned     map[string]bool
	removed    map[string]bool
	organizers map[string]bool
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:     make(map[string]*models.Event),
		banned:     make(map[string]bool),
		removed:    make(map[string]bool),
		organizers: make(map[string]bool),
	}
}

func pairKey(eventID, volunteerID string) string { return eventID + "|" + volunteerID }

func (r *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = event
	return nil
}

func (r *fakeEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *event
	return &copied, nil
}

func (r *fakeEventRepo) ReserveSeat(ctx context.Context, eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return false, nil
	}
	if event.CapacityMode == models.CapacityUnlimited || event.OccupantCount < event.MaxSeats {
		event.OccupantCount++
		return true, nil
	}
	return false, nil
}

func (r *fakeEventRepo) ReleaseSeat(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event, ok := r.events[eventID]; ok && event.OccupantCount > 0 {
		event.OccupantCount--
	}
	return nil
}

func (r *fakeEventRepo) FindCategory(ctx context.Context, eventID, slotID, categoryID string) (*models.SlotCategory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[eventID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range event.TimeSlots {
		slot := &event.TimeSlots[i]
		if slot.ID != slotID {
			continue
		}
		for j := range slot.Categories {
			if slot.Categories[j].ID == categoryID {
				copied := slot.Categories[j]
				return &copied, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEventRepo) findCategoryByID(categoryID string) *models.SlotCategory {
	for _, event := range r.events {
		for i := range event.TimeSlots {
			slot := &event.TimeSlots[i]
			for j := range slot.Categories {
				if slot.Categories[j].ID == categoryID {
					return &slot.Categories[j]
				}
			}
		}
	}
	return nil
}

func (r *fakeEventRepo) ReserveCategorySlot(ctx context.Context, categoryID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat := r.findCategoryByID(categoryID)
	if cat == nil {
		return false, nil
	}
	if cat.MaxOccupants == nil || cat.CurrentOccupants < *cat.MaxOccupants {
		cat.CurrentOccupants++
		return true, nil
	}
	return false, nil
}

func (r *fakeEventRepo) ReleaseCategorySlot(ctx context.Context, categoryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cat := r.findCategoryByID(categoryID); cat != nil && cat.CurrentOccupants > 0 {
		cat.CurrentOccupants--
	}
	return nil
}

func (r *fakeEventRepo) IsBanned(ctx context.Context, eventID, volunteerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.banned[pairKey(eventID, volunteerID)], nil
}

func (r *fakeEventRepo) Ban(ctx context.Context, eventID, volunteerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.banned[pairKey(eventID, volunteerID)] = true
	return nil
}

func (r *fakeEventRepo) Unban(ctx context.Context, eventID, volunteerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.banned, pairKey(eventID, volunteerID))
	return nil
}

func (r *fakeEventRepo) IsRemoved(ctx context.Context, eventID, volunteerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removed[pairKey(eventID, volunteerID)], nil
}

func (r *fakeEventRepo) MarkRemoved(ctx context.Context, eventID, volunteerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed[pairKey(eventID, volunteerID)] = true
	return nil
}

func (r *fakeEventRepo) ClearRemoved(ctx context.Context, eventID, volunteerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.removed, pairKey(eventID, volunteerID))
	return nil
}

func (r *fakeEventRepo) IsOrganizer(ctx context.Context, eventID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.organizers[pairKey(eventID, userID)], nil
}

func (r *fakeEventRepo) AddOrganizer(ctx context.Context, eventID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.organizers[pairKey(eventID, userID)] = true
	return nil
}

type fakeRegistrationRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Registration
	pair map[string]string // event|volunteer → registration id
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		byID: make(map[string]*models.Registration),
		pair: make(map[string]string),
	}
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(reg.EventID, reg.VolunteerID)
	if _, exists := r.pair[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	copied := *reg
	r.byID[reg.ID] = &copied
	r.pair[key] = reg.ID
	return nil
}

func (r *fakeRegistrationRepo) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *reg
	return &copied, nil
}

func (r *fakeRegistrationRepo) FindByEventAndVolunteer(ctx context.Context, eventID, volunteerID string) (*models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.pair[pairKey(eventID, volunteerID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *fakeRegistrationRepo) ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var regs []models.Registration
	for _, reg := range r.byID {
		if reg.EventID == eventID {
			regs = append(regs, *reg)
		}
	}
	return regs, nil
}

func (r *fakeRegistrationRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.pair, pairKey(reg.EventID, reg.VolunteerID))
	delete(r.byID, id)
	return true, nil
}

func (r *fakeRegistrationRepo) SetInTime(ctx context.Context, id string, t time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.byID[id]
	if !ok || reg.InTime != nil {
		return false, nil
	}
	reg.InTime = &t
	reg.HasAttended = true
	return true, nil
}

func (r *fakeRegistrationRepo) SetOutTime(ctx context.Context, id string, t time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.byID[id]
	if !ok || reg.InTime == nil || reg.OutTime != nil {
		return false, nil
	}
	reg.OutTime = &t
	return true, nil
}

func (r *fakeRegistrationRepo) UpdateTimes(ctx context.Context, id string, inTime, outTime *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if inTime != nil {
		reg.InTime = inTime
	}
	if outTime != nil {
		reg.OutTime = outTime
	}
	return nil
}

func (r *fakeRegistrationRepo) ClearAttendance(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	reg.InTime = nil
	reg.OutTime = nil
	reg.HasAttended = false
	return nil
}

type fakeCredentialRepo struct {
	mu      sync.Mutex
	byToken map[string]*models.Credential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{byToken: make(map[string]*models.Credential)}
}

func (r *fakeCredentialRepo) Create(ctx context.Context, cred *models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *cred
	r.byToken[cred.Token] = &copied
	return nil
}

func (r *fakeCredentialRepo) FindByToken(ctx context.Context, token string) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.byToken[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *cred
	return &copied, nil
}

func (r *fakeCredentialRepo) FindLive(ctx context.Context, registrationID string, kind models.CredentialKind) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cred := range r.byToken {
		if cred.RegistrationID == registrationID && cred.Kind == kind && cred.ConsumedAt == nil {
			copied := *cred
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCredentialRepo) Consume(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.byToken[token]
	if !ok || cred.ConsumedAt != nil {
		return false, nil
	}
	now := time.Now()
	cred.ConsumedAt = &now
	return true, nil
}

func (r *fakeCredentialRepo) DeleteByRegistration(ctx context.Context, registrationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, cred := range r.byToken {
		if cred.RegistrationID == registrationID {
			delete(r.byToken, token)
		}
	}
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []publishedMessage
}

type publishedMessage struct {
	topic   string
	payload any
}

func (n *fakeNotifier) Publish(routingKey string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, publishedMessage{topic: routingKey, payload: payload})
	return nil
}

func (n *fakeNotifier) count(topic string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	var c int
	for _, m := range n.messages {
		if m.topic == topic {
			c++
		}
	}
	return c
}
